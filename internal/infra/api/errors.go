package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrTransport = errors.New("storefront api unreachable")
	ErrDecode    = errors.New("unexpected storefront api response")
)

// Error is a request the API answered but refused, either with a non-2xx
// status or with success=false in the body. Message is the API's own
// message when it sent one, otherwise a per-operation fallback.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unauthorized reports whether the API rejected the credentials or token.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func newError(op string, status int, body []byte, fallback string) *Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	return &Error{
		Op:      op,
		Status:  status,
		Message: firstNonEmpty(payload.Message, payload.Error, fallback),
	}
}
