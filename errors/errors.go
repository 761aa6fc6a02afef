package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bridge the error occurred
type Phase string

const (
	PhaseIsolate  Phase = "isolate"  // isolate lifecycle
	PhaseContext  Phase = "context"  // context lifecycle and script execution
	PhaseValue    Phase = "value"    // value construction and conversion
	PhaseTemplate Phase = "template" // template construction and realization
	PhaseCallback Phase = "callback" // host callback dispatch
	PhaseBigInt   Phase = "bigint"   // bigint word encoding
	PhaseJSON     Phase = "json"     // JSON parse/stringify
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidUTF8  Kind = "invalid_utf8"
	KindInvalidInput Kind = "invalid_input"
	KindDisposed     Kind = "disposed"
	KindNotFound     Kind = "not_found"
	KindNotAFunction Kind = "not_a_function"
	KindNotAnObject  Kind = "not_an_object"
	KindUnsupported  Kind = "unsupported"
)

// Error is the structured error type used for host-side (non-script)
// failures throughout the bridge.
type Error struct {
	Phase  Phase
	Kind   Kind
	Detail string
	Cause  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
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

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, data string) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Disposed creates an error for operations on a disposed resource
func Disposed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDisposed,
		Detail: fmt.Sprintf("%s has been disposed", what),
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, ref int32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %d not found", what, ref),
	}
}

// NotAFunction creates an error for calling a non-callable value
func NotAFunction(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotAFunction,
		Detail: "value is not a function",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
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
