// Package errors augments standard errors with detail messages and
// stack traces while preserving the identity of the root error.
//
// Pipeline stages report faults as sentinel errors wrapped with
// call-site detail; callers compare against the sentinel with Root.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

const stackTraceSize = 10

// StackFrame is a single entry in an error's stack trace.
type StackFrame struct {
	Func string
	File string
	Line int
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s:%d - %s", f.File, f.Line, f.Func)
}

type wrapperError struct {
	msg    string
	detail []string
	stack  []StackFrame
	root   error
}

func (e wrapperError) Error() string {
	return e.msg
}

// Root returns the original error wrapped by one or more calls to Wrap
// or WithDetail. If err does not wrap another error it is returned
// as-is.
func Root(err error) error {
	if werr, ok := err.(wrapperError); ok {
		return werr.root
	}
	return err
}

func wrap(err error, msg string, stackSkip int) error {
	if err == nil {
		return nil
	}
	werr, ok := err.(wrapperError)
	if !ok {
		werr.root = err
		werr.msg = err.Error()
		werr.stack = getStack(stackSkip+2, stackTraceSize)
	}
	if msg != "" {
		werr.msg = msg + ": " + werr.msg
	}
	return werr
}

// Wrap adds a context message and stack trace to err. Arguments are
// handled as in fmt.Print. Wrap returns nil if err is nil.
func Wrap(err error, a ...interface{}) error {
	return wrap(err, fmt.Sprint(a...), 1)
}

// Wrapf is like Wrap, but arguments are handled as in fmt.Printf.
func Wrapf(err error, format string, a ...interface{}) error {
	return wrap(err, fmt.Sprintf(format, a...), 1)
}

// WithDetail wraps err with text retrievable through Detail.
func WithDetail(err error, text string) error {
	if err == nil {
		return nil
	}
	if text == "" {
		return err
	}
	e1 := wrap(err, text, 1).(wrapperError)
	e1.detail = append(e1.detail, text)
	return e1
}

// WithDetailf is like WithDetail, with fmt.Printf-style arguments.
func WithDetailf(err error, format string, v ...interface{}) error {
	if err == nil {
		return nil
	}
	text := fmt.Sprintf(format, v...)
	e1 := wrap(err, text, 1).(wrapperError)
	e1.detail = append(e1.detail, text)
	return e1
}

// Detail returns the detail messages attached to err, if any.
func Detail(err error) string {
	wrapper, _ := err.(wrapperError)
	return strings.Join(wrapper.detail, "; ")
}

// Stack returns the stack trace recorded when err was first wrapped.
func Stack(err error) []StackFrame {
	if werr, ok := err.(wrapperError); ok {
		return werr.stack
	}
	return nil
}

func getStack(skip, size int) []StackFrame {
	var (
		pc    = make([]uintptr, size)
		calls = runtime.Callers(skip+1, pc)
		trace []StackFrame
	)
	for i := 0; i < calls; i++ {
		f := runtime.FuncForPC(pc[i])
		file, line := f.FileLine(pc[i] - 1)
		trace = append(trace, StackFrame{Func: f.Name(), File: file, Line: line})
	}
	return trace
}
