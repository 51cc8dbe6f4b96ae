package zerrors

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
)

func TestErrorCreation(t *testing.T) {
	err := Config("test error")
	if err.Category() != "Configuration" {
		t.Errorf("expected Category=Configuration, got %s", err.Category())
	}
	if err.Recoverable() {
		t.Error("configuration errors should not be recoverable")
	}
}

func TestIOWrapping(t *testing.T) {
	cause := os.ErrNotExist
	err := IO(cause, "failed to read configuration")

	if err.Category() != "I/O" {
		t.Errorf("expected Category=I/O, got %s", err.Category())
	}
	if !err.Recoverable() {
		t.Error("i/o errors should be recoverable")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
}

func TestNoteNotFound(t *testing.T) {
	err := NoteNotFound("test-note-123")
	if err.Category() != "NotFound" {
		t.Errorf("expected Category=NotFound, got %s", err.Category())
	}
	if err.NoteID != "test-note-123" {
		t.Errorf("expected NoteID=test-note-123, got %s", err.NoteID)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should match")
	}
	if IsNotFound(Config("nope")) {
		t.Error("IsNotFound should not match config errors")
	}
}

func TestErrorDisplay(t *testing.T) {
	err := InvalidContent("empty content not allowed")
	msg := err.Error()
	if !strings.Contains(msg, "invalid note content") {
		t.Errorf("message %q missing kind prefix", msg)
	}
	if !strings.Contains(msg, "empty content not allowed") {
		t.Errorf("message %q missing reason", msg)
	}
}

func TestRecoverableKinds(t *testing.T) {
	cases := []struct {
		err  *Error
		want bool
	}{
		{IO(io.ErrUnexpectedEOF, "write failed"), true},
		{Search(nil, "index locked"), true},
		{Storage("create", io.ErrClosedPipe), true},
		{TUI(nil, "render failed"), true},
		{Config("bad syntax"), false},
		{NoteNotFound("x"), false},
		{InvalidContent("empty"), false},
		{Serialization(nil, "bad yaml"), false},
		{Internal("unexpected state"), false},
	}
	for _, tc := range cases {
		if got := tc.err.Recoverable(); got != tc.want {
			t.Errorf("%s: Recoverable=%v, want %v", tc.err.Category(), got, tc.want)
		}
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	inner := Storage("update", errors.New("disk full"))
	outer := fmt.Errorf("saving note: %w", inner)

	kind, ok := KindOf(outer)
	if !ok || kind != KindStorage {
		t.Fatalf("KindOf=%v/%v, want KindStorage/true", kind, ok)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("plain errors should not report a kind")
	}
}

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NoteNotFound("abc"))
	if !errors.Is(err, &Error{Kind: KindNoteNotFound}) {
		t.Error("errors.Is should match by kind")
	}
	if errors.Is(err, &Error{Kind: KindStorage}) {
		t.Error("errors.Is should not match a different kind")
	}
}
