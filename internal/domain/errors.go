package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPair     = errors.New("invalid pair")
	ErrUnsupportedPair = errors.New("unsupported pair")
	ErrInvalidParam    = errors.New("invalid parameter")
)

// UserError is caller input that can never succeed. It is never retried.
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Kind }

func NewUserError(kind error, format string, args ...any) *UserError {
	return &UserError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsUserError returns true if err is, or wraps, a UserError.
func IsUserError(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// UpstreamDataError means the upstream answered but the payload is unusable:
// success != 1, a missing sub-structure, or an unparseable field.
type UpstreamDataError struct {
	Resource string
	Detail   string
	Reason   string
}

func (e *UpstreamDataError) Error() string {
	msg := fmt.Sprintf("no %s data available", e.Resource)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsUpstreamDataError returns true if err is, or wraps, an UpstreamDataError.
func IsUpstreamDataError(err error) bool {
	var ue *UpstreamDataError
	return errors.As(err, &ue)
}
