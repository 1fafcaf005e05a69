// Package dberr defines the error taxonomy shared by every decoder in
// this module: bufcur, ber, defline, residue and seqdb.
package dberr

import "fmt"

// Kind classifies a decoding failure. Callers should switch on Kind
// (or use errors.Is against the package-level sentinels below) rather
// than matching error strings.
type Kind int

const (
	// Truncated means fewer bytes remain than a primitive read requires.
	Truncated Kind = iota
	// BadFormat means a structural violation was found: a bad BER
	// length byte, an indefinite length on a primitive element, a
	// scan loop that failed to advance, or a missing required element.
	BadFormat
	// UnsupportedVersion means the index file's version field is
	// neither 4 nor 5.
	UnsupportedVersion
	// CorruptIndex means an offset-table invariant was violated, or a
	// slice range was inverted or fell outside a companion file.
	CorruptIndex
	// UnsupportedDatabase means a consumer that only understands
	// protein data was asked to decode a nucleotide database.
	UnsupportedDatabase
)

func (k Kind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case BadFormat:
		return "bad format"
	case UnsupportedVersion:
		return "unsupported version"
	case CorruptIndex:
		return "corrupt index"
	case UnsupportedDatabase:
		return "unsupported database"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every package in this
// module. It carries a Kind for programmatic dispatch, a message for
// humans, and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("seqdb: %s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("seqdb: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so that
// errors.Is(err, dberr.New(dberr.Truncated, "")) style checks work
// without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Sentinels for errors.Is checks against a specific kind without
// constructing a message.
var (
	ErrTruncated           = &Error{Kind: Truncated}
	ErrBadFormat           = &Error{Kind: BadFormat}
	ErrUnsupportedVersion  = &Error{Kind: UnsupportedVersion}
	ErrCorruptIndex        = &Error{Kind: CorruptIndex}
	ErrUnsupportedDatabase = &Error{Kind: UnsupportedDatabase}
)
