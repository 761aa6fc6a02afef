// Package errors provides structured error types for the js-runtime library.
//
// Two families of errors cross the boundary:
//
// ScriptError is the wire representation of a JavaScript exception: a
// message (always present), an optional "resource:line:column" source
// location, and an optional stack trace. It is produced only by the
// engine's error extractor and is what callers of RunScript and friends
// receive when script code throws:
//
//	val, err := ctx.RunScript(src, "main.js")
//	var jsErr *errors.ScriptError
//	if stderrors.As(err, &jsErr) {
//	    fmt.Println(jsErr.Message, jsErr.Location)
//	}
//
// Error is the bridge's own structured error for host-side failures,
// categorized by Phase (where the error occurred) and Kind (error
// category), in the same shape used for `errors.Is` matching:
//
//	err := errors.InvalidInput(errors.PhaseBigInt, "negative word count")
//
// Cooperative termination is a distinguished ScriptError with a fixed
// sentinel message; use IsTerminated to detect it.
package errors
