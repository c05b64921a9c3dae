package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMalformedInput, "ranking %d: empty bucket", 3)

	if err.Code != ErrCodeMalformedInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMalformedInput)
	}

	if err.Message != "ranking 3: empty bucket" {
		t.Errorf("Message = %v, want %v", err.Message, "ranking 3: empty bucket")
	}

	expected := "MALFORMED_INPUT: ranking 3: empty bucket"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("node budget exhausted")
	err := Wrap(ErrCodeSolverFailure, cause, "exact solve")

	if err.Code != ErrCodeSolverFailure {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSolverFailure)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "SOLVER_FAILURE: exact solve: node budget exhausted"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeUnsupportedScheme, "test"),
			code:     ErrCodeUnsupportedScheme,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeUnsupportedScheme, "test"),
			code:     ErrCodeSolverFailure,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeSolverFailure, New(ErrCodeUnsupportedScheme, "inner"), "outer"),
			code:     ErrCodeSolverFailure,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmtWrap(New(ErrCodeMalformedInput, "inner")),
			code:     ErrCodeMalformedInput,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func fmtWrap(err error) error {
	return &wrapper{err}
}

type wrapper struct{ err error }

func (w *wrapper) Error() string { return "context: " + w.err.Error() }
func (w *wrapper) Unwrap() error { return w.err }

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeRunNotFound, "test"),
			expected: ErrCodeRunNotFound,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAllCodes(t *testing.T) {
	unsupported := New(ErrCodeUnsupportedScheme, "a")
	failure := New(ErrCodeSolverFailure, "b")

	if AllCodes(ErrCodeUnsupportedScheme) {
		t.Error("AllCodes() with no errors = true, want false")
	}
	if !AllCodes(ErrCodeUnsupportedScheme, unsupported, unsupported) {
		t.Error("AllCodes() = false, want true")
	}
	if AllCodes(ErrCodeUnsupportedScheme, unsupported, failure) {
		t.Error("AllCodes() with mixed codes = true, want false")
	}
}
