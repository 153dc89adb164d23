package compiler

import (
	"errors"
	"fmt"
)

// ErrCompile is wrapped by every recoverable compile error.
var ErrCompile = errors.New("compile error")

// UndefinedVariableError reports a name that no enclosing frame binds.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %s", e.Name)
}

func (e *UndefinedVariableError) Unwrap() error { return ErrCompile }

// UnsupportedFormError reports a well-formed construct the compiler refuses.
type UnsupportedFormError struct {
	Reason string
}

func (e *UnsupportedFormError) Error() string {
	return "unsupported form: " + e.Reason
}

func (e *UnsupportedFormError) Unwrap() error { return ErrCompile }
