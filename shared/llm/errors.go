package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an upstream failure.
type Kind string

const (
	KindNetwork   Kind = "network"   // transport failure, cancelled context
	KindStatus    Kind = "status"    // non-2xx HTTP status, quota errors included
	KindUpstream  Kind = "upstream"  // 2xx with an error object in the body
	KindMalformed Kind = "malformed" // body could not be decoded
	KindEmpty     Kind = "empty"     // decoded fine but carried no text
)

// Error is the failure variant of a Provider call.
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Provider)
	sb.WriteString(": ")
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, "HTTP %d: ", e.StatusCode)
	}
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(provider string, kind Kind, msg string, err error) *Error {
	return &Error{Provider: provider, Kind: kind, Message: msg, Err: err}
}

func statusError(provider string, code int, msg string) *Error {
	return &Error{Provider: provider, Kind: KindStatus, StatusCode: code, Message: msg}
}

// snippet trims an upstream body so it can go into an error message.
func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "no response body"
	}
	return s
}
