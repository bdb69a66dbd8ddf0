// Package imgerr provides the error taxonomy shared by the picasso decoders.
package imgerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindIO indicates an open, seek, read or write failure.
	KindIO
	// KindCorrupt indicates bad magic, a truncated header or body, or
	// dimensions past the decoder's limits.
	KindCorrupt
	// KindUnsupported indicates a valid but unhandled feature.
	KindUnsupported
	// KindOutOfMemory indicates an allocation that could not be satisfied.
	KindOutOfMemory
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindCorrupt:
		return "corrupt format"
	case KindUnsupported:
		return "unsupported format"
	case KindOutOfMemory:
		return "out of memory"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrIO          = &Error{Kind: KindIO}
	ErrCorrupt     = &Error{Kind: KindCorrupt}
	ErrUnsupported = &Error{Kind: KindUnsupported}
	ErrOutOfMemory = &Error{Kind: KindOutOfMemory}
)

// Error is a decoding or file error tagged with its kind.
type Error struct {
	// Op is the operation that failed (e.g., "bmp.Decode").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s [%s]", e.Op, e.Kind)
	case e.Op == "":
		return fmt.Sprintf("[%s]: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// New returns an error of the given kind wrapping a formatted message.
func New(op string, kind Kind, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags err with op and kind. It returns nil when err is nil.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
