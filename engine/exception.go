package engine

import (
	stderrors "errors"
	"regexp"
	"strings"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

// tryCatch runs fn under a catch scope and converts anything it raises
// into a *errors.ScriptError. Engine exceptions arrive two ways: as error
// returns from compile/run entry points, and as panics from object
// operations (a throwing getter, ToObject on null). Both are funneled
// through extractError; panics that are not engine exceptions propagate.
func (iso *Isolate) tryCatch(origin string, fn func() error) (serr *errors.ScriptError) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch ex := r.(type) {
		case *goja.InterruptedError:
			serr = iso.extractError(ex, origin)
		case *goja.Exception:
			serr = iso.extractError(ex, origin)
		default:
			panic(r)
		}
	}()
	if err := fn(); err != nil {
		serr = iso.extractError(err, origin)
	}
	return serr
}

// frameLocation matches the "file:line:column(pc)" tail of an engine
// stack frame line.
var frameLocation = regexp.MustCompile(`([^ \t()]+):(\d+):(\d+)\(\d+\)`)

// compileLocation matches the "Line N:M" part of a compile-stage syntax
// error message.
var compileLocation = regexp.MustCompile(`Line (\d+):(\d+)`)

// extractError converts an engine error into the boundary triple: the
// message is always present; location ("resource:line:column", columns
// already 1-based) and stack are filled in when the engine has them.
// Termination wins over everything: once the pending-termination flag is
// set, whatever error the unwinding script produced is reported as the
// fixed termination sentinel and the flag is cleared.
func (iso *Isolate) extractError(err error, origin string) *errors.ScriptError {
	var intr *goja.InterruptedError
	if stderrors.As(err, &intr) || iso.terminating.Load() {
		iso.clearTermination()
		return errors.Terminated()
	}

	var ex *goja.Exception
	if stderrors.As(err, &ex) {
		msg := ex.Error()
		if v := ex.Value(); v != nil {
			msg = v.String()
		}
		stack := strings.TrimRight(ex.String(), "\n")
		return &errors.ScriptError{
			Message:  msg,
			Location: firstFrameLocation(stack),
			Stack:    stack,
		}
	}

	var syn *goja.CompilerSyntaxError
	if stderrors.As(err, &syn) {
		msg := err.Error()
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		loc := ""
		if m := compileLocation.FindStringSubmatch(msg); m != nil {
			loc = origin + ":" + m[1] + ":" + m[2]
		}
		return &errors.ScriptError{Message: msg, Location: loc}
	}

	return errors.Script(err.Error())
}

// firstFrameLocation pulls the topmost script frame's location out of a
// rendered stack. Native frames carry no position and are skipped.
func firstFrameLocation(stack string) string {
	for _, line := range strings.Split(stack, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "at ") {
			continue
		}
		if m := frameLocation.FindStringSubmatch(line); m != nil {
			return m[1] + ":" + m[2] + ":" + m[3]
		}
	}
	return ""
}
