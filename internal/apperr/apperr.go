// Package apperr defines the error kinds from spec §7 and the HTTP status
// each one maps to. Components construct these with the New* helpers and
// propagate them with fmt.Errorf("...: %w", err) the way the teacher wraps
// client/repository errors throughout the codebase.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error kinds enumerated in spec §7.
type Kind string

const (
	KindTransientNetwork Kind = "transient_network_error"
	KindRateLimited      Kind = "rate_limited_error"
	KindValidation       Kind = "validation_error"
	KindBusy             Kind = "busy_error"
	KindNotFound         Kind = "not_found_error"
	KindDependencyDown   Kind = "dependency_down_error"
	KindDeadlineExceeded Kind = "deadline_exceeded"
)

// Error is the typed error value propagated through the core.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to the status codes enumerated in spec §7.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindBusy:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindDependencyDown:
		return http.StatusServiceUnavailable
	case KindDeadlineExceeded:
		return http.StatusGatewayTimeout
	case KindTransientNetwork, KindRateLimited:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func NewTransientNetwork(msg string, err error) *Error { return newErr(KindTransientNetwork, msg, err) }
func NewRateLimited(msg string, err error) *Error       { return newErr(KindRateLimited, msg, err) }
func NewValidation(msg string) *Error                   { return newErr(KindValidation, msg, nil) }
func NewBusy(msg string) *Error                         { return newErr(KindBusy, msg, nil) }
func NewNotFound(msg string) *Error                     { return newErr(KindNotFound, msg, nil) }
func NewDependencyDown(msg string, err error) *Error    { return newErr(KindDependencyDown, msg, err) }
func NewDeadlineExceeded(msg string, err error) *Error  { return newErr(KindDeadlineExceeded, msg, err) }

// Is reports whether err (or something it wraps) is an *Error of kind k.
func Is(err error, k Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == k
	}
	return false
}

// As is a thin errors.As convenience for extracting the typed error.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
