package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseContext     Phase = "context"     // context lifecycle
	PhaseDebug       Phase = "debug"       // debug callback and filter
	PhaseQuery       Phase = "query"       // component enumeration and info queries
	PhaseExport      Phase = "export"      // component data export
	PhaseTriangulate Phase = "triangulate" // face triangulation
	PhaseRelease     Phase = "release"     // component release
	PhaseDispatch    Phase = "dispatch"    // kernel dispatch
	PhaseLoad        Phase = "load"        // mesh loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidHandle   Kind = "invalid_handle"
	KindInvalidArgument Kind = "invalid_argument"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindAllocation      Kind = "allocation"
	KindInvalidData     Kind = "invalid_data"
)

// Sentinels match any error of their kind regardless of phase:
//
//	if errors.Is(err, meshcuterrors.ErrInvalidHandle) { ... }
var (
	ErrInvalidHandle   = &Error{Kind: KindInvalidHandle}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrOutOfBounds     = &Error{Kind: KindOutOfBounds}
	ErrAllocation      = &Error{Kind: KindAllocation}
	ErrInvalidData     = &Error{Kind: KindInvalidData}
)

// Error is the structured error type used throughout the library
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Channel string
	Detail  string
	Path    []string
	Handle  uint64
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Handle != 0 || e.Channel != "" {
		b.WriteString(": ")
		if e.Handle != 0 && e.Channel != "" {
			fmt.Fprintf(&b, "handle %#x, channel %s", e.Handle, e.Channel)
		} else if e.Handle != 0 {
			fmt.Fprintf(&b, "handle %#x", e.Handle)
		} else {
			b.WriteString("channel ")
			b.WriteString(e.Channel)
		}
	}

	if e.Detail != "" {
		if e.Handle != 0 || e.Channel != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase == "" {
		return e.Kind == t.Kind
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Is reports whether any error in err's chain matches target.
// It lets callers importing this package skip the standard errors package.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Handle sets the offending handle
func (b *Builder) Handle(h uint64) *Builder {
	b.err.Handle = h
	return b
}

// Channel sets the export channel name
func (b *Builder) Channel(name string) *Builder {
	b.err.Channel = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidHandle creates an unknown-handle error
func InvalidHandle(phase Phase, what string, h uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidHandle,
		Handle: h,
		Detail: fmt.Sprintf("unknown %s", what),
	}
}

// InvalidArgument creates an invalid argument error
func InvalidArgument(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidArgument,
		Detail: detail,
	}
}

// OutOfBounds creates an error for a request larger than what is available
func OutOfBounds(phase Phase, channel string, requested, available uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOutOfBounds,
		Channel: channel,
		Detail:  fmt.Sprintf("requested %d bytes, %d available", requested, available),
		Value:   requested,
	}
}

// Misaligned creates an error for a byte count that is not a whole number of elements
func Misaligned(phase Phase, channel string, requested, unit uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidArgument,
		Channel: channel,
		Detail:  fmt.Sprintf("%d bytes is not a multiple of %d", requested, unit),
		Value:   requested,
	}
}

// VariantMismatch creates an error for a channel requested on the wrong component type
func VariantMismatch(phase Phase, channel, variant string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidArgument,
		Channel: channel,
		Detail:  fmt.Sprintf("not available on %s components", variant),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("allocate %s", what),
		Cause:  cause,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
