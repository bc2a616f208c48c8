package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindInvalid
	KindAuth
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindInvalid:
		return "invalid"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// KindForStatus maps an HTTP status to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusBadRequest:
		return KindInvalid
	case status == http.StatusUnauthorized:
		return KindAuth
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// Error is the failure half of every Service call. Status is zero when no
// response was received.
type Error struct {
	Kind   Kind
	Status int
	// Reason is the server-provided "error" text, if any.
	Reason string
	// Details carries the server's validation details, if any.
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the text shown to the user.
func (e *Error) Message() string {
	var base string
	switch e.Kind {
	case KindInvalid:
		base = "invalid input"
	case KindAuth:
		base = "authentication required"
	case KindServer:
		base = "server error"
	default:
		base = "network error"
	}
	if e.Reason != "" {
		return base + ": " + e.Reason
	}
	return base
}

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the user-facing text for any error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}

type errorBody struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func errorFromResponse(status int, body []byte) *Error {
	e := &Error{Kind: KindForStatus(status), Status: status}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		e.Reason = eb.Error
		e.Details = eb.Details
	}
	return e
}
