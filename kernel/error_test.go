package kernel

import (
	"errors"
	"io"
	"testing"
)

func TestKernelError(t *testing.T) {
	err := &Error{
		Module:  "foo",
		Message: "error message",
	}

	if err.Error() != err.Message {
		t.Fatalf("expected to err.Error() to return %q; got %q", err.Message, err.Error())
	}

	if exp, got := "[foo] error message", err.String(); got != exp {
		t.Fatalf("expected String() to return %q; got %q", exp, got)
	}

	if exp, got := "bare", (&Error{Message: "bare"}).String(); got != exp {
		t.Fatalf("expected String() to return %q; got %q", exp, got)
	}
}

func TestWrap(t *testing.T) {
	kind := &Error{Module: "disk", Message: "read failed"}
	other := &Error{Module: "disk", Message: "read failed"}

	if got := Wrap(nil, kind); got != kind {
		t.Fatalf("expected Wrap(nil, kind) to return kind; got %v", got)
	}

	err := Wrap(io.ErrUnexpectedEOF, kind)
	if !errors.Is(err, kind) {
		t.Fatal("expected wrapped error to match its kind")
	}

	if errors.Is(err, other) {
		t.Fatal("expected kinds to be matched by identity")
	}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("expected wrapped error to unwrap to its cause")
	}

	if exp, got := "read failed: unexpected EOF", err.Error(); got != exp {
		t.Fatalf("expected error message %q; got %q", exp, got)
	}
}
