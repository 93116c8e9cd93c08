package models

import (
	"fmt"
	"slices"
)

// UnexpectedErrorMessage is used when a failure carries no description of its own.
const UnexpectedErrorMessage = "unexpected error"

// EmptyResponseMessage is the cause of an envelope that has neither data nor error.
const EmptyResponseMessage = "Response is empty"

type ErrorKind int

const (
	KindNetwork ErrorKind = iota + 1
	KindAPI
	KindPermissionDenied
	KindUndefined
	KindUnauthorized
	KindCustom
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAPI:
		return "api"
	case KindPermissionDenied:
		return "permission_denied"
	case KindUndefined:
		return "undefined"
	case KindUnauthorized:
		return "unauthorized"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// GeneralError is the top level code and message of an API error.
type GeneralError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Field is a validation failure tied to one input field.
type Field struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the closed set of failures a request can resolve to.
// Only the members matching Kind are meaningful.
type AppError struct {
	Kind ErrorKind

	// network, undefined
	Cause error

	// api
	General  GeneralError
	Specific []Field

	// custom
	Title string
	Text  string
}

func NetworkError(cause error) *AppError {
	return &AppError{Kind: KindNetwork, Cause: cause}
}

func APIError(general GeneralError, specific []Field) *AppError {
	if specific == nil {
		specific = []Field{}
	}
	return &AppError{Kind: KindAPI, General: general, Specific: specific}
}

func PermissionDenied() *AppError {
	return &AppError{Kind: KindPermissionDenied}
}

func UndefinedError(cause error) *AppError {
	return &AppError{Kind: KindUndefined, Cause: cause}
}

func Unauthorized() *AppError {
	return &AppError{Kind: KindUnauthorized}
}

func CustomError(title, message string) *AppError {
	return &AppError{Kind: KindCustom, Title: title, Text: message}
}

// Message returns human readable text for the error. It is never empty.
func (e *AppError) Message() string {
	var msg string
	switch e.Kind {
	case KindNetwork, KindUndefined:
		msg = causeText(e.Cause)
	case KindAPI:
		msg = e.General.Message
		if msg == "" && len(e.Specific) > 0 {
			msg = e.Specific[0].Message
		}
	case KindPermissionDenied:
		msg = "permission denied"
	case KindUnauthorized:
		msg = "unauthorized"
	case KindCustom:
		msg = e.Text
		if msg == "" {
			msg = e.Title
		}
	}
	if msg == "" {
		return UnexpectedErrorMessage
	}
	return msg
}

func (e *AppError) Error() string {
	if e.Kind == KindAPI && e.General.Code != "" {
		return fmt.Sprintf("%s: [%s] %s", e.Kind, e.General.Code, e.Message())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message())
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same kind, so errors.Is(err, models.Unauthorized()) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Equal compares two errors variant by variant. Network and undefined errors
// compare by their cause text, API errors by general and specific exactly.
func Equal(a, b *AppError) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindNetwork, KindUndefined:
		return causeText(a.Cause) == causeText(b.Cause)
	case KindAPI:
		return a.General == b.General && slices.Equal(a.Specific, b.Specific)
	case KindCustom:
		return a.Title == b.Title && a.Text == b.Text
	default:
		return true
	}
}

func causeText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Result is the outcome of one request: either a payload or an AppError.
type Result[T any] struct {
	Value T
	Err   *AppError
}

func Success[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

func Failure[T any](err *AppError) Result[T] {
	return Result[T]{Err: err}
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Get returns the payload, or the AppError as a plain error.
func (r Result[T]) Get() (T, error) {
	if r.Err != nil {
		var zero T
		return zero, r.Err
	}
	return r.Value, nil
}
