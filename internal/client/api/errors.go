package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/todoclient/internal/client/config"
)

// Kind classifies a failed call.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindServer
	KindInvalidResponse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindInvalidResponse:
		return "invalid response"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrNetwork         = &Error{Kind: KindNetwork, Message: config.MsgNetwork}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: config.MsgUnauthorized}
	ErrForbidden       = &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: config.MsgForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: config.MsgNotFound}
	ErrValidation      = &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: config.MsgValidation}
	ErrServer          = &Error{Kind: KindServer, Status: http.StatusInternalServerError, Message: config.MsgServer}
	ErrUnknown         = &Error{Kind: KindUnknown, Message: config.MsgUnknown}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse, Message: "invalid response from server"}
)

// FieldError is one entry of a 422 response.
type FieldError struct {
	Field   string
	Message string
}

// Error is returned by every failed Client call.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	for _, f := range e.Fields {
		fmt.Fprintf(&b, "; %s: %s", f.Field, f.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// UserMessage is the one-line notification text for err.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return config.MsgUnknown
	}
	switch e.Kind {
	case KindUnauthorized:
		return config.MsgUnauthorized
	case KindNetwork:
		return config.MsgNetwork
	case KindValidation:
		if len(e.Fields) > 0 {
			parts := make([]string, 0, len(e.Fields))
			for _, f := range e.Fields {
				if f.Field == "" {
					parts = append(parts, f.Message)
					continue
				}
				parts = append(parts, f.Field+": "+f.Message)
			}
			return strings.Join(parts, "; ")
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return config.MsgUnknown
}

func newError(kind Kind, status int, msg string, err error) *Error {
	return &Error{Kind: kind, Status: status, Message: msg, Err: err}
}
