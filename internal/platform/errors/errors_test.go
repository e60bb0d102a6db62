package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "error with cause",
			err: Wrap(KindConfig, "load", "failed to load config",
				errors.New("file not found")),
			contains: []string{"[config:load]", "failed to load config", "file not found"},
		},
		{
			name:     "error without cause",
			err:      New(KindDomain, "validate", "invalid input"),
			contains: []string{"[domain:validate]", "invalid input"},
		},
		{
			name:     "voice kind",
			err:      New(KindPermissionDenied, "startCapture", "microphone access denied"),
			contains: []string{"[permission-denied:startCapture]", "microphone access denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errStr, substr) {
					t.Errorf("error string %q does not contain %q", errStr, substr)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(KindConfig, "test", "wrapped", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Unwrap should return the original error")
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{
			name:     "direct error kind match",
			err:      New(KindSynthesisUnauthorized, "speak", "tts api disabled"),
			kind:     KindSynthesisUnauthorized,
			expected: true,
		},
		{
			name:     "wrapped error kind match",
			err:      Wrap(KindTranscription, "upload", "request failed", errors.New("cause")),
			kind:     KindTranscription,
			expected: true,
		},
		{
			name:     "fmt wrapped error kind match",
			err:      fmt.Errorf("outer: %w", New(KindEmptyResult, "finish", "blank transcript")),
			kind:     KindEmptyResult,
			expected: true,
		},
		{
			name:     "error kind mismatch",
			err:      New(KindConfig, "test", "message"),
			kind:     KindDomain,
			expected: false,
		},
		{
			name:     "non-typed error",
			err:      errors.New("plain error"),
			kind:     KindConfig,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsKind(tt.err, tt.kind); got != tt.expected {
				t.Errorf("IsKind() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(New(KindPlayback, "play", "decoder failed")); got != KindPlayback {
		t.Errorf("KindOf() = %v, want %v", got, KindPlayback)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf() = %v, want %v", got, KindUnknown)
	}
	if got := KindOf(fmt.Errorf("wrap: %w", New(KindEmptyResult, "finish", "blank"))); got != KindEmptyResult {
		t.Errorf("KindOf() = %v, want %v", got, KindEmptyResult)
	}
}
