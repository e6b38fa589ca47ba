// Package failure defines the error taxonomy shared by the generation pipeline.
//
// Every failure that can happen between a user submitting answers and a policy
// coming back is one of four codes. The action layer is the only place that
// turns them into substitute values; everything below it returns *Error.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a failure class.
type Code string

const (
	CodeContractViolation       Code = "CONTRACT_VIOLATION"
	CodeGeneratorUnavailable    Code = "GENERATOR_UNAVAILABLE"
	CodeOutputContractViolation Code = "OUTPUT_CONTRACT_VIOLATION"
	CodeEmptyResult             Code = "EMPTY_RESULT"
	CodeUnknown                 Code = "UNKNOWN"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrContractViolation       = &Error{Code: CodeContractViolation}
	ErrGeneratorUnavailable    = &Error{Code: CodeGeneratorUnavailable}
	ErrOutputContractViolation = &Error{Code: CodeOutputContractViolation}
	ErrEmptyResult             = &Error{Code: CodeEmptyResult}
)

// FieldError describes one field that failed a contract.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}
	return f.Field + ": " + f.Message
}

// Error is a classified pipeline failure.
type Error struct {
	Code    Code
	Op      string // flow or component that failed
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Op != "" {
		b.WriteString(" [")
		b.WriteString(e.Op)
		b.WriteString("]")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.String()
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable is true only for generator availability problems.
func (e *Error) Retryable() bool {
	return e.Code == CodeGeneratorUnavailable
}

// ContractViolation builds an input contract failure.
func ContractViolation(op string, fields ...FieldError) *Error {
	return &Error{
		Code:    CodeContractViolation,
		Op:      op,
		Message: "input does not satisfy contract",
		Fields:  fields,
	}
}

// GeneratorUnavailable wraps a transport, timeout or provider error.
func GeneratorUnavailable(op string, err error) *Error {
	return &Error{
		Code:    CodeGeneratorUnavailable,
		Op:      op,
		Message: "generator unavailable",
		Err:     err,
	}
}

// OutputContractViolation wraps a response that could not be shaped into the output contract.
func OutputContractViolation(op string, err error, fields ...FieldError) *Error {
	return &Error{
		Code:    CodeOutputContractViolation,
		Op:      op,
		Message: "generator output does not satisfy contract",
		Fields:  fields,
		Err:     err,
	}
}

// EmptyResult marks a well-formed but empty response.
func EmptyResult(op, field string) *Error {
	return &Error{
		Code:    CodeEmptyResult,
		Op:      op,
		Message: fmt.Sprintf("%s is empty", field),
	}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeUnknown
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}
