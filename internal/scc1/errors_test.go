package scc1

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorKindHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"invalid argument", NewInvalidArgumentError("op", "bad"), IsInvalidArgument},
		{"unsupported operation", NewUnsupportedOperationError("op", "busy"), IsUnsupportedOperation},
		{"malformed response", NewMalformedResponseError("op", "short", nil), IsMalformedResponse},
		{"unknown product", NewUnknownProductError(0x1234), IsUnknownProduct},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("helper did not match %v", tt.err)
			}

			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !tt.check(wrapped) {
				t.Errorf("helper did not match wrapped %v", wrapped)
			}
		})
	}

	if IsInvalidArgument(errors.New("plain")) {
		t.Error("IsInvalidArgument matched a plain error")
	}
	if IsMalformedResponse(NewInvalidArgumentError("op", "bad")) {
		t.Error("IsMalformedResponse matched an invalid argument error")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("invalid byte")
	err := NewMalformedResponseError("identify", "not utf-8", cause)

	msg := err.Error()
	for _, want := range []string{"identify", "malformed response", "not utf-8", "invalid byte"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find the cause")
	}
}

func TestUnknownProductMessage(t *testing.T) {
	err := NewUnknownProductError(0x070399)
	if !strings.Contains(err.Error(), "0x00070399") {
		t.Errorf("Error() = %q, want product id", err.Error())
	}
}
