package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes produced by the client itself. Server codes are passed through verbatim.
const (
	CodeNetworkError   = "NETWORK_ERROR"
	CodeOffline        = "OFFLINE"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeBadResponse    = "BAD_RESPONSE"
)

// Error is the single shape every failed call returns.
type Error struct {
	Status         int    `json:"status"`
	Message        string `json:"message"`
	Code           string `json:"code,omitempty"`
	IsNetworkError bool   `json:"isNetworkError"`
	IsServerError  bool   `json:"isServerError"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

var (
	// ErrSessionExpired is returned once a token refresh has failed and credentials were cleared.
	ErrSessionExpired = &Error{
		Status:  http.StatusUnauthorized,
		Message: "Your session has expired, please log in again",
		Code:    CodeSessionExpired,
	}
	// ErrOffline is returned for a GET made offline with nothing cached.
	ErrOffline = &Error{
		Message:        "No internet connection and no cached data available",
		Code:           CodeOffline,
		IsNetworkError: true,
	}
)

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so errors.Is(err, ErrSessionExpired) works on copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// with returns a copy of a sentinel carrying cause.
func (e *Error) with(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// StatusOf returns the HTTP status of err, or 0 when it is not an *Error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

func networkError(cause error) *Error {
	return &Error{
		Message:        "Network error: " + cause.Error(),
		Code:           CodeNetworkError,
		IsNetworkError: true,
		Err:            cause,
	}
}

// failureBody is the server's error body. Some handlers use message instead of error.
type failureBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func responseError(status int, body []byte) *Error {
	var fb failureBody
	_ = json.Unmarshal(body, &fb)
	msg := fb.Error
	if msg == "" {
		msg = fb.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{
		Status:        status,
		Message:       msg,
		Code:          fb.Code,
		IsServerError: status >= http.StatusInternalServerError,
	}
}
