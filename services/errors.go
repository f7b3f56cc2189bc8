package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures for the HTTP layer
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindInvalidState
	KindInvalidTransition
)

// WorkflowError is returned for every rule violation in the workflow engine
type WorkflowError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	return e.Message
}

func validationError(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf(format, args...)}
}

func invalidStateError(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindInvalidState, Code: "INVALID_STATE", Message: fmt.Sprintf(format, args...)}
}

func invalidTransitionError(format string, args ...interface{}) error {
	return &WorkflowError{Kind: KindInvalidTransition, Code: "INVALID_TRANSITION", Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a WorkflowError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var wfErr *WorkflowError
	return errors.As(err, &wfErr) && wfErr.Kind == kind
}
