package errors

import (
	"errors"
)

// Exit codes returned by the CLI.
const (
	ExitCodeOK         = 0
	ExitCodeError      = 1
	ExitCodeGateFailed = 2
)

// ErrGateFailed is returned when violations trip the CI gate.
var ErrGateFailed = errors.New("compliance gate failed")

// CommandError represents an error that occurred during command execution, storing the partial result.
type CommandError struct {
	ExitCode    int
	CommonError string
	Result      interface{}
	err         error
}

// Error implements the error interface, returning the message from the common error.
func (e *CommandError) Error() string {
	return e.CommonError
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.err
}

// NewCommandError creates a new CommandError instance, encapsulating the result and the error message.
func NewCommandError(result interface{}, err error, code int) *CommandError {
	return &CommandError{
		ExitCode:    code,
		CommonError: err.Error(),
		Result:      result,
		err:         err,
	}
}

// ExitCode returns the exit code carried by err, ExitCodeError for other errors
// and ExitCodeOK for nil.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitCodeError
}
