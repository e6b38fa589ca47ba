package failure

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := GeneratorUnavailable("generatePolicy", context.DeadlineExceeded)
	wrapped := fmt.Errorf("flow: %w", err)

	assert.ErrorIs(t, wrapped, ErrGeneratorUnavailable)
	assert.NotErrorIs(t, wrapped, ErrContractViolation)
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), CodeUnknown},
		{"contract", ContractViolation("op", FieldError{Field: "companyName", Message: "required"}), CodeContractViolation},
		{"wrapped output", fmt.Errorf("x: %w", OutputContractViolation("op", errors.New("bad json"))), CodeOutputContractViolation},
		{"empty", EmptyResult("op", "privacyPolicy"), CodeEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, IsRetryable(GeneratorUnavailable("op", errors.New("503"))))
	assert.False(t, IsRetryable(ContractViolation("op")))
	assert.False(t, IsRetryable(OutputContractViolation("op", nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestErrorMessageListsFields(t *testing.T) {
	err := ContractViolation("generatePolicy",
		FieldError{Field: "companyName", Message: "required"},
		FieldError{Field: "websiteURL", Message: "must be a URI"},
	)

	msg := err.Error()
	assert.Contains(t, msg, "CONTRACT_VIOLATION [generatePolicy]")
	assert.Contains(t, msg, "companyName: required")
	assert.Contains(t, msg, "websiteURL: must be a URI")
}
