package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := New(CodeNotFound, "task not found")
	if !stderrors.Is(err, New(CodeNotFound, "different message")) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeValidation, "task not found")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk failure")
	err := Wrap(CodeUnknown, "storage failed", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}

	wrapped := fmt.Errorf("list tasks: %w", err)
	if CodeOf(wrapped) != CodeUnknown {
		t.Fatalf("code = %q, want %q", CodeOf(wrapped), CodeUnknown)
	}
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeDuplicateEmail, http.StatusConflict},
		{CodeInvalidCredential, http.StatusUnauthorized},
		{CodeNoToken, http.StatusUnauthorized},
		{CodeTokenMalformed, http.StatusUnauthorized},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeTokenNotYetValid, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeServerMisconfigured, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := New(tc.code, "msg"); HTTPStatus(got) != tc.want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", tc.code, HTTPStatus(got), tc.want)
		}
	}

	if HTTPStatus(nil) != http.StatusOK {
		t.Fatalf("HTTPStatus(nil) = %d, want %d", HTTPStatus(nil), http.StatusOK)
	}
	if HTTPStatus(stderrors.New("boom")) != http.StatusInternalServerError {
		t.Fatal("expected untyped error to map to 500")
	}
}

func TestPublicMessageHidesInternalText(t *testing.T) {
	t.Parallel()

	internal := stderrors.New("unique constraint failed: users.email")
	if got := PublicMessage(internal); got != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("message = %q, want generic status text", got)
	}

	domain := New(CodeValidation, "title is required")
	if got := PublicMessage(domain); got != "title is required" {
		t.Fatalf("message = %q, want %q", got, "title is required")
	}
}
