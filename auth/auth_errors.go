package auth

import "errors"

var (
	ErrStoreClosed       = errors.New("session store closed")
	ErrNoExchanger       = errors.New("no credentials exchanger configured")
	ErrUnknownPolicyName = errors.New("unknown policy name")
)
