/*
Copyright 2026 The Vitess Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package vterrors provides simple error handling primitives for the
// position tracking packages.
//
// Every error created here carries an ErrorCode and, optionally, a State
// that names the exact failure (for example InvalidInterval). Callers
// branch on those with Code(err) and ErrState(err) instead of matching
// error strings:
//
//	if vterrors.ErrState(err) == vterrors.EmptySourceEntry {
//		...
//	}
//
// Wrap and Wrapf annotate an existing error with a message while keeping
// its code and state reachable through errors.Unwrap.
package vterrors

import (
	"context"
	"errors"
	"fmt"
)

type fundamental struct {
	msg   string
	code  ErrorCode
	state State
}

func (f *fundamental) Error() string { return f.msg }

func (f *fundamental) ErrorCode() ErrorCode { return f.code }

func (f *fundamental) ErrorState() State { return f.state }

// New returns an error with the supplied message.
func New(code ErrorCode, message string) error {
	return &fundamental{msg: message, code: code}
}

// Errorf formats according to a format specifier and returns the string
// as a value that satisfies error.
func Errorf(code ErrorCode, format string, args ...any) error {
	return &fundamental{msg: fmt.Sprintf(format, args...), code: code}
}

// NewErrorf formats according to a format specifier and returns the string
// as a value that satisfies error, carrying both a code and a state.
func NewErrorf(code ErrorCode, state State, format string, args ...any) error {
	return &fundamental{msg: fmt.Sprintf(format, args...), code: code, state: state}
}

type wrapping struct {
	cause error
	msg   string
}

func (w *wrapping) Error() string { return w.msg + ": " + w.cause.Error() }

func (w *wrapping) Cause() error { return w.cause }

func (w *wrapping) Unwrap() error { return w.cause }

// Wrap returns an error annotating err with the supplied message.
// If err is nil, Wrap returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrapping{cause: err, msg: message}
}

// Wrapf returns an error annotating err with the format specifier.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrapping{cause: err, msg: fmt.Sprintf(format, args...)}
}

// Code returns the error code if it's a vterror.
// If err is nil, it returns OK.
func Code(err error) ErrorCode {
	if err == nil {
		return OK
	}
	var withCode ErrorWithCode
	if errors.As(err, &withCode) {
		return withCode.ErrorCode()
	}
	// Handle some special cases.
	switch {
	case errors.Is(err, context.Canceled):
		return Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return DeadlineExceeded
	}
	return Unknown
}

// ErrState returns the error state if it's a vterror.
// If err is nil, it returns Undefined.
func ErrState(err error) State {
	var withState ErrorWithState
	if errors.As(err, &withState) {
		return withState.ErrorState()
	}
	return Undefined
}

// Cause returns the immediate cause of an error, or nil if it has none.
func Cause(err error) error {
	type causer interface {
		Cause() error
	}
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	return nil
}

// RootCause returns the underlying cause of the error, if possible.
func RootCause(err error) error {
	for {
		cause := Cause(err)
		if cause == nil {
			return err
		}
		err = cause
	}
}
