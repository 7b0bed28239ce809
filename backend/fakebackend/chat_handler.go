package fakebackend

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/backend"
)

// chat replies with a fixed acknowledgement; the real assistant is out of
// scope for the client.
func (b *Backend) chat(w http.ResponseWriter, r *http.Request) {
	var in backend.ChatRequest
	if !decodeBody(w, r, &in) {
		return
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	writeJSON(w, http.StatusOK, backend.ChatReply{
		Message: "Thank you for sharing. You said: " + text,
		Status:  "success",
	})
}
