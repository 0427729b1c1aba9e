package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeAlreadyLeased, "parcel 1,2 is already leased")
	if !stderrors.Is(err, New(CodeAlreadyLeased, "different message")) {
		t.Fatal("expected code match")
	}
	if stderrors.Is(err, New(CodeInvalidCaller, "")) {
		t.Fatal("expected code mismatch")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeUnknown, "append audit event", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to match")
	}
}

func TestCodeOfTraversesWrapping(t *testing.T) {
	inner := New(CodeInvalidCaller, "caller is not the admin principal")
	wrapped := fmt.Errorf("set lease duration: %w", inner)
	if got := CodeOf(wrapped); got != CodeInvalidCaller {
		t.Fatalf("code = %q, want %q", got, CodeInvalidCaller)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %q, want %q", got, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeAlreadyLeased, http.StatusConflict},
		{CodeInvalidCaller, http.StatusForbidden},
		{CodePrincipalEmpty, http.StatusBadRequest},
		{CodeCoordInvalid, http.StatusBadRequest},
		{CodeDurationInvalid, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s status = %d, want %d", tc.code, got, tc.want)
		}
	}
}
