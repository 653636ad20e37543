package main

import (
	"testing"

	"github.com/reviewloop/rcr/internal/domain"
)

func TestExitCode_ResolvedIsNil(t *testing.T) {
	if err := exitCode(domain.ExitResolved); err != nil {
		t.Errorf("expected nil for resolved, got %v", err)
	}
}

func TestExitCode_WrapsNonZero(t *testing.T) {
	tests := []struct {
		code domain.ExitCode
		want int
	}{
		{domain.ExitNeedsHuman, 1},
		{domain.ExitError, 2},
		{domain.ExitInterrupted, 130},
	}

	for _, tt := range tests {
		err := exitCode(tt.code)
		if err == nil {
			t.Fatalf("expected error for code %d", tt.code)
		}
		wrapper, ok := err.(exitCodeError)
		if !ok {
			t.Fatalf("expected exitCodeError, got %T", err)
		}
		if wrapper.code.Int() != tt.want {
			t.Errorf("expected %d, got %d", tt.want, wrapper.code.Int())
		}
		if wrapper.Error() == "" {
			t.Error("expected non-empty error message")
		}
	}
}

func TestBuildVersionString(t *testing.T) {
	if buildVersionString() == "" {
		t.Error("expected non-empty version string")
	}
}
