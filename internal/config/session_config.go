package config

import "time"

type SessionConfig interface {
	GetVerifyOnBoot() bool
	GetVerifyFailurePolicy() string
	GetLoginFailurePolicy() string
	GetExpiryCheckInterval() time.Duration
	GetRecheckOnResume() bool
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetVerifyOnBoot() bool {
	return GetEnvBool("VERIFY_ON_BOOT", true)
}

// GetVerifyFailurePolicy is "keepOptimistic" or "forceLogout"
func (Session) GetVerifyFailurePolicy() string {
	return GetEnv("VERIFY_FAILURE_POLICY", "keepOptimistic")
}

// GetLoginFailurePolicy is "keepSession" or "clearSession"
func (Session) GetLoginFailurePolicy() string {
	return GetEnv("LOGIN_FAILURE_POLICY", "keepSession")
}

func (Session) GetExpiryCheckInterval() time.Duration {
	return GetEnvDuration("EXPIRY_CHECK_INTERVAL", 60*time.Second)
}

func (Session) GetRecheckOnResume() bool {
	return GetEnvBool("RECHECK_ON_RESUME", true)
}
