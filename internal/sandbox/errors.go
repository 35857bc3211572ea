package sandbox

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// Kind classifies loader and executor failures.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindCompile         Kind = "compile"
	KindRuntime         Kind = "runtime"
	KindNotFound        Kind = "not_found"
	KindProvider        Kind = "provider"
)

// Sentinels for errors.Is matching against *Error values of the same kind.
var (
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrCompile         = &Error{Kind: KindCompile}
	ErrRuntime         = &Error{Kind: KindRuntime}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrProvider        = &Error{Kind: KindProvider}
)

// Error is the single error type returned by the executor and the registry.
type Error struct {
	Kind    Kind
	Module  string
	Message string
	Cause   error

	// Go error carried by a GoError exception in Cause
	thrown error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Module != "" {
		msg += " " + e.Module
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, 2)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	if e.thrown != nil {
		errs = append(errs, e.thrown)
	}
	return errs
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, module, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Module:  module,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidArgument builds a KindInvalidArgument error.
func InvalidArgument(module, format string, args ...interface{}) *Error {
	return newError(KindInvalidArgument, module, format, args...)
}

// NotFound builds a KindNotFound error.
func NotFound(module string, cause error) *Error {
	return &Error{Kind: KindNotFound, Module: module, Message: "module not found", Cause: cause}
}

// ProviderError builds a KindProvider error for a source lookup that failed
// for a reason other than the module being unknown.
func ProviderError(module string, cause error) *Error {
	return &Error{Kind: KindProvider, Module: module, Message: "source lookup failed", Cause: cause}
}

// RuntimeError classifies an error returned by goja while running module code.
// Errors that already are *Error values pass through untouched.
func RuntimeError(module string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Module == module {
		return err
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &Error{Kind: KindRuntime, Module: module, Message: "execution interrupted", Cause: err}
	}
	return &Error{Kind: KindRuntime, Module: module, Cause: err, thrown: thrownError(err)}
}

// thrownError digs out the Go error of an exception raised through
// goja.Runtime.NewGoError, so errors.Is sees through nested requires.
func thrownError(err error) error {
	exc, ok := Exception(err)
	if !ok {
		return nil
	}
	obj, ok := exc.Value().(*goja.Object)
	if !ok {
		return nil
	}
	v := obj.Get("value")
	if v == nil {
		return nil
	}
	inner, _ := v.Export().(error)
	return inner
}

// Exception returns the JS exception carried by err, if any.
func Exception(err error) (*goja.Exception, bool) {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return exc, true
	}
	return nil, false
}
