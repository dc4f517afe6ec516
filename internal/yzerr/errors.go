// Package yzerr defines the closed error taxonomy used across the ROM
// data engine: every public operation fails with one of a fixed set of
// Kind values instead of an ad hoc error string.
package yzerr

import "fmt"

// Kind is a closed category of failure. Public API operations never
// return an error outside this set.
type Kind string

const (
	// Io covers a ROM or project file that can't be opened, read, or written.
	Io Kind = "Io"
	// Decode covers a malformed ROM field or compressed blob.
	Decode Kind = "Decode"
	// Encoding covers a save that cannot represent the current state.
	Encoding Kind = "Encoding"
	// Configuration covers an illegal structural operation.
	Configuration Kind = "Configuration"
	// Conflict covers a save blocked by the hack manifest's write policy.
	Conflict Kind = "Conflict"
	// SlotsExhausted covers an entity insert with no deleted slot free.
	SlotsExhausted Kind = "SlotsExhausted"
	// InvalidArgument covers out-of-range indices or nil required pointers.
	InvalidArgument Kind = "InvalidArgument"
	// NotSupported covers a request predicated on a ROM-version capability
	// the current ROM lacks.
	NotSupported Kind = "NotSupported"
)

// Error is the single error type returned by every public operation in
// this module. Op names the failing operation (e.g. "Overworld.Load").
type Error struct {
	Kind    Kind
	Op      string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, yzerr.ErrConflict) as a sentinel-style check.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.cause == nil && t.Message == "" && t.Op == "" {
		return e.Kind == t.Kind
	}
	return e == t
}

// New constructs an Error with no wrapped cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Newf constructs an Error with a formatted message.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error that carries cause as its Unwrap target.
func Wrap(kind Kind, op string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, cause: cause}
}

// KindOf reports the Kind of err if it is (or wraps) a *Error, and
// whether one was found at all.
func KindOf(err error) (Kind, bool) {
	var e *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			e = asErr
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return "", false
	}
	return e.Kind, true
}

// Sentinels usable with errors.Is(err, yzerr.ErrSlotsExhausted) etc.
var (
	ErrSlotsExhausted = &Error{Kind: SlotsExhausted}
	ErrConfiguration  = &Error{Kind: Configuration}
	ErrConflict       = &Error{Kind: Conflict}
	ErrNotSupported   = &Error{Kind: NotSupported}
)
