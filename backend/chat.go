package backend

import (
	"context"
	"net/http"
)

const ChatPath = "/api/chat"

type ChatRequest struct {
	Text   string `json:"text" validate:"required,max=2000"`
	UserID string `json:"user_id,omitempty"`
}

type ChatReply struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Chat sends one message to the support assistant. userID scopes the
// conversation history on the backend and may be empty.
func (c *Client) Chat(ctx context.Context, text, userID string) (*ChatReply, error) {
	in := ChatRequest{Text: text, UserID: userID}
	if err := validateInput("Client.Chat", &in); err != nil {
		return nil, err
	}
	var out ChatReply
	if err := c.do(ctx, request{
		op:     "Client.Chat",
		method: http.MethodPost,
		path:   ChatPath,
		body:   in,
		auth:   authOptional,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
