package services

import (
	"errors"
	"strings"
)

// ErrUnauthenticated is returned by every operation that needs a current user
// when there is none. It is never folded into an empty result.
var ErrUnauthenticated = errors.New("unauthenticated")

var ErrNotFound = errors.New("not found")

// ValidationError lists the request fields that were missing or invalid.
type ValidationError struct {
	Fields []string
	Msg    string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return e.Msg + ": " + strings.Join(e.Fields, ", ")
}

func invalid(msg string, fields ...string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}
