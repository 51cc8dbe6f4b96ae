// Package zerrors defines the tagged error taxonomy used across Zynapse.
// Every subsystem wraps its failures into an *Error carrying a Kind so the
// CLI and TUI can decide between retrying, reporting, and aborting without
// string-matching messages.
package zerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error by the subsystem and failure mode it came from.
type Kind int

const (
	KindIO Kind = iota
	KindConfig
	KindNoteNotFound
	KindInvalidContent
	KindSearch
	KindStorage
	KindSerialization
	KindCLI
	KindTUI
	KindInternal
)

// Error is the concrete error type for Zynapse operations.
type Error struct {
	Kind    Kind
	Message string
	// NoteID is set for KindNoteNotFound.
	NoteID string
	// Op names the failed operation for KindStorage errors.
	Op  string
	err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIO:
		return fmt.Sprintf("i/o operation failed: %s", e.Message)
	case KindConfig:
		return fmt.Sprintf("configuration error: %s", e.Message)
	case KindNoteNotFound:
		return fmt.Sprintf("note not found: %s", e.NoteID)
	case KindInvalidContent:
		return fmt.Sprintf("invalid note content: %s", e.Message)
	case KindSearch:
		return fmt.Sprintf("search engine error: %s", e.Message)
	case KindStorage:
		return fmt.Sprintf("storage operation failed: %s", e.Op)
	case KindSerialization:
		return fmt.Sprintf("serialization error: %s", e.Message)
	case KindCLI:
		return fmt.Sprintf("cli error: %s", e.Message)
	case KindTUI:
		return fmt.Sprintf("tui error: %s", e.Message)
	default:
		return fmt.Sprintf("internal error: %s", e.Message)
	}
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.err }

// Is reports kind equality so callers can match with errors.Is(err, &Error{Kind: ...}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Category returns a short label for the error's general area.
func (e *Error) Category() string {
	switch e.Kind {
	case KindIO:
		return "I/O"
	case KindConfig:
		return "Configuration"
	case KindNoteNotFound:
		return "NotFound"
	case KindInvalidContent:
		return "InvalidContent"
	case KindSearch:
		return "Search"
	case KindStorage:
		return "Storage"
	case KindSerialization:
		return "Serialization"
	case KindCLI:
		return "CLI"
	case KindTUI:
		return "TUI"
	default:
		return "Internal"
	}
}

// Recoverable reports whether retrying the operation can plausibly succeed.
// Transient subsystems (filesystem, search index, storage, terminal) are
// retryable; configuration and content errors are not.
func (e *Error) Recoverable() bool {
	switch e.Kind {
	case KindIO, KindSearch, KindStorage, KindTUI:
		return true
	default:
		return false
	}
}

// IO wraps a filesystem error with a context message.
func IO(err error, message string) *Error {
	return &Error{Kind: KindIO, Message: message, err: err}
}

// Config creates a configuration error.
func Config(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

// NoteNotFound creates a not-found error for the given note ID.
func NoteNotFound(id string) *Error {
	return &Error{Kind: KindNoteNotFound, NoteID: id}
}

// InvalidContent creates a content validation error.
func InvalidContent(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidContent, Message: fmt.Sprintf(format, args...)}
}

// Search wraps a search engine failure.
func Search(err error, message string) *Error {
	return &Error{Kind: KindSearch, Message: message, err: err}
}

// Storage wraps a failed storage operation.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, err: err}
}

// Serialization wraps an encode/decode failure.
func Serialization(err error, message string) *Error {
	return &Error{Kind: KindSerialization, Message: message, err: err}
}

// CLI creates a command-line error.
func CLI(format string, args ...interface{}) *Error {
	return &Error{Kind: KindCLI, Message: fmt.Sprintf(format, args...)}
}

// TUI wraps a terminal interface failure.
func TUI(err error, message string) *Error {
	return &Error{Kind: KindTUI, Message: message, err: err}
}

// Internal creates an error for unexpected conditions.
func Internal(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err, returning KindInternal and false when
// err is not (wrapping) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return KindInternal, false
}

// IsNotFound reports whether err is a note-not-found error.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNoteNotFound
}
