package contract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies contract failures
type ErrorKind string

const (
	ErrorKindUnauthorized ErrorKind = "unauthorized"
	ErrorKindInvalidInput ErrorKind = "invalid_input"
	ErrorKindInvalidFunds ErrorKind = "invalid_funds"
	// ErrorKindStd covers query, storage and serialization failures, passed through unmodified
	ErrorKindStd ErrorKind = "std"
)

// ContractError is returned by every entrypoint. Any error aborts the whole invocation.
type ContractError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

var (
	ErrUnauthorized = &ContractError{Kind: ErrorKindUnauthorized}
	ErrInvalidInput = &ContractError{Kind: ErrorKindInvalidInput}
	ErrInvalidFunds = &ContractError{Kind: ErrorKindInvalidFunds}
)

func (e *ContractError) Error() string {
	switch e.Kind {
	case ErrorKindUnauthorized:
		return "Unauthorized"
	case ErrorKindInvalidInput:
		return "InvalidInput: " + e.Msg
	case ErrorKindInvalidFunds:
		return "Invalid Funds"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Msg
	}
}

func (e *ContractError) Unwrap() error {
	return e.Err
}

// Is matches on the kind so that errors.Is(err, ErrInvalidFunds) works for any message
func (e *ContractError) Is(target error) bool {
	t, ok := target.(*ContractError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// InvalidInput creates an InvalidInput error
func InvalidInput(format string, args ...any) error {
	return &ContractError{Kind: ErrorKindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// InvalidFunds creates an InvalidFunds error
func InvalidFunds() error {
	return &ContractError{Kind: ErrorKindInvalidFunds}
}

// Unauthorized creates an Unauthorized error
func Unauthorized() error {
	return &ContractError{Kind: ErrorKindUnauthorized}
}

// StdError wraps an infrastructure failure. Errors that already are contract errors are
// returned as they are.
func StdError(err error) error {
	if err == nil {
		return nil
	}
	var contractErr *ContractError
	if errors.As(err, &contractErr) {
		return err
	}
	return &ContractError{Kind: ErrorKindStd, Err: err}
}

// KindOf returns the kind of err, or ErrorKindStd for foreign errors
func KindOf(err error) ErrorKind {
	var contractErr *ContractError
	if errors.As(err, &contractErr) {
		return contractErr.Kind
	}
	return ErrorKindStd
}
