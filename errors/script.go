package errors

import (
	"fmt"
	"io"
)

// TerminatedMessage is the fixed sentinel message used when script
// execution was cancelled cooperatively rather than failing on its own.
const TerminatedMessage = "ExecutionTerminated: script execution has been terminated"

// ScriptError is the boundary representation of a JavaScript exception.
// Message is always present. Location ("resource:line:column", column
// 1-based) and Stack are set only when the engine could provide them; an
// exception manufactured by the bridge itself may lack script context
// entirely.
type ScriptError struct {
	Message  string
	Location string
	Stack    string
}

// Error implements the error interface; it returns only the message.
// Use the %+v format verb to include location and stack.
func (e *ScriptError) Error() string {
	return e.Message
}

// Format implements fmt.Formatter to expose the full triple via %+v.
func (e *ScriptError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			io.WriteString(s, e.Message)
			if e.Location != "" {
				io.WriteString(s, " (")
				io.WriteString(s, e.Location)
				io.WriteString(s, ")")
			}
			if e.Stack != "" {
				io.WriteString(s, "\n")
				io.WriteString(s, e.Stack)
			}
			return
		}
		fallthrough
	case 's':
		io.WriteString(s, e.Message)
	case 'q':
		fmt.Fprintf(s, "%q", e.Message)
	}
}

// Is reports whether target matches this error. Two ScriptErrors match on
// equal messages; this makes IsTerminated work through error chains.
func (e *ScriptError) Is(target error) bool {
	if t, ok := target.(*ScriptError); ok {
		return e.Message == t.Message
	}
	return false
}

// Terminated returns the distinguished ScriptError for cooperative
// cancellation. Location and stack are absent: the engine's exception
// state is unreliable mid-termination.
func Terminated() *ScriptError {
	return &ScriptError{Message: TerminatedMessage}
}

// IsTerminated reports whether err is the termination sentinel.
func IsTerminated(err error) bool {
	if err == nil {
		return false
	}
	e, ok := err.(*ScriptError)
	return ok && e.Message == TerminatedMessage
}

// Script builds a ScriptError from a plain message with no script context.
func Script(message string) *ScriptError {
	return &ScriptError{Message: message}
}
