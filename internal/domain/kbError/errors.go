package kbError

import (
	"errors"
	"fmt"
)

// Kind is the stable machine-readable classification that crosses the
// external interface. Raw internal error text never does.
type Kind string

const (
	KindConfiguration   Kind = "CONFIGURATION_ERROR"
	KindValidation      Kind = "VALIDATION_ERROR"
	KindEmptyIndex      Kind = "EMPTY_INDEX"
	KindNotFound        Kind = "NOT_FOUND"
	KindExternalService Kind = "EXTERNAL_SERVICE_ERROR"
)

type KBError struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *KBError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *KBError) Unwrap() error { return e.cause }

func New(kind Kind, message string) *KBError {
	return &KBError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *KBError {
	return &KBError{Kind: kind, Message: message, cause: cause}
}

// KindOf extracts the Kind from any error in the chain, defaulting to
// ExternalService for errors that were never classified.
func KindOf(err error) Kind {
	var kbErr *KBError
	if errors.As(err, &kbErr) {
		return kbErr.Kind
	}
	return KindExternalService
}

// MessageOf returns the caller-safe message for an error.
func MessageOf(err error) string {
	var kbErr *KBError
	if errors.As(err, &kbErr) {
		return kbErr.Message
	}
	return "internal error"
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
