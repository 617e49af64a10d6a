package shikigami

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies every failure the lexer, parser and evaluator can
// produce. Kinds are comparable with errors.Is:
//
//	if errors.Is(err, shikigami.ErrUndefinedVariable) { ... }
type ErrorKind string

const (
	ErrDivisionByZero              ErrorKind = "DivisionByZero"
	ErrUnterminatedString          ErrorKind = "UnterminatedString"
	ErrUnexpectedEndOfInput        ErrorKind = "UnexpectedEndOfInput"
	ErrUnexpectedToken             ErrorKind = "UnexpectedToken"
	ErrExpectedCloseParen          ErrorKind = "ExpectedCloseParen"
	ErrInvalidParameterName        ErrorKind = "InvalidParameterName"
	ErrInvalidAssignmentExpression ErrorKind = "InvalidAssignmentExpression"
	ErrUndefinedVariable           ErrorKind = "UndefinedVariable"
	ErrUndefinedFunction           ErrorKind = "UndefinedFunction"
	ErrArityMismatch               ErrorKind = "ArityMismatch"
	ErrInvalidStringOperator       ErrorKind = "InvalidStringOperator"
	ErrTypeMismatch                ErrorKind = "TypeMismatch"
	ErrUnknownOperator             ErrorKind = "UnknownOperator"
	ErrUnknownNodeType             ErrorKind = "UnknownNodeType"
	ErrRecursionLimitExceeded      ErrorKind = "RecursionLimitExceeded"
	ErrNestingLimitExceeded        ErrorKind = "NestingLimitExceeded"
	ErrStepQuotaExceeded           ErrorKind = "StepQuotaExceeded"
	ErrCanceled                    ErrorKind = "Canceled"
)

func (k ErrorKind) Error() string {
	return string(k)
}

// StackFrame names a function call site active when an error was raised.
type StackFrame struct {
	Function string
	Pos      Position
}

const (
	errorFrameHead = 8
	errorFrameTail = 8
)

// Error is the single error type returned by the language core.
type Error struct {
	Kind      ErrorKind
	Message   string
	Pos       Position
	CodeFrame string
	Frames    []StackFrame
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(e.CodeFrame)
	}
	renderFrame := func(frame StackFrame) {
		if frame.Pos.Line > 0 && frame.Pos.Column > 0 {
			fmt.Fprintf(&b, "\n  at %s (%d:%d)", frame.Function, frame.Pos.Line, frame.Pos.Column)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Function)
		}
	}

	if len(e.Frames) <= errorFrameHead+errorFrameTail {
		for _, frame := range e.Frames {
			renderFrame(frame)
		}
		return b.String()
	}

	for _, frame := range e.Frames[:errorFrameHead] {
		renderFrame(frame)
	}
	omitted := len(e.Frames) - (errorFrameHead + errorFrameTail)
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", omitted)
	for _, frame := range e.Frames[len(e.Frames)-errorFrameTail:] {
		renderFrame(frame)
	}
	return b.String()
}

// Is reports whether target is the ErrorKind of e.
func (e *Error) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e.Kind
}

func newError(kind ErrorKind, pos Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// KindOf returns the ErrorKind carried by err, or "" when err did not come
// from this package.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind
	}
	return ""
}

// ErrorText renders err the way Execute reports failures: a fixed prefix
// followed by the message without code frame or stack trace.
func ErrorText(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return ErrorPrefix + e.Message
	}
	return ErrorPrefix + err.Error()
}

// ErrorPrefix marks a failed Execute result.
const ErrorPrefix = "Error: "
