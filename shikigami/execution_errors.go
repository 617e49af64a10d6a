package shikigami

import "errors"

func (exec *Execution) step(pos Position) error {
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return exec.errorAt(ErrStepQuotaExceeded, pos, "step quota exceeded (%d)", exec.quota)
	}
	select {
	case <-exec.ctx.Done():
		return exec.errorAt(ErrCanceled, pos, "execution canceled: %v", exec.ctx.Err())
	default:
	}
	return nil
}

func (exec *Execution) pushFrame(function string, pos Position) error {
	if exec.recursionCap > 0 && len(exec.callStack) >= exec.recursionCap {
		return exec.errorAt(ErrRecursionLimitExceeded, pos, "recursion depth exceeded (limit %d)", exec.recursionCap)
	}
	exec.callStack = append(exec.callStack, callFrame{Function: function, Pos: pos})
	return nil
}

func (exec *Execution) popFrame() {
	if len(exec.callStack) == 0 {
		return
	}
	exec.callStack = exec.callStack[:len(exec.callStack)-1]
}

// errorAt builds an Error carrying a code frame for pos and the active call
// stack, innermost call first.
func (exec *Execution) errorAt(kind ErrorKind, pos Position, format string, args ...any) error {
	err := newError(kind, pos, format, args...)
	exec.decorate(err)
	return err
}

func (exec *Execution) decorate(err *Error) {
	err.CodeFrame = formatCodeFrame(exec.source, err.Pos)
	frames := make([]StackFrame, 0, len(exec.callStack)+1)
	if len(exec.callStack) == 0 {
		frames = append(frames, StackFrame{Function: "<program>", Pos: err.Pos})
	} else {
		current := exec.callStack[len(exec.callStack)-1]
		frames = append(frames, StackFrame{Function: current.Function, Pos: err.Pos})
		for i := len(exec.callStack) - 1; i >= 0; i-- {
			frames = append(frames, StackFrame(exec.callStack[i]))
		}
	}
	err.Frames = frames
}

// wrapError positions an error raised by a Rational operation.
func (exec *Execution) wrapError(err error, pos Position) error {
	var e *Error
	if !errors.As(err, &e) {
		return exec.errorAt(ErrUnknownOperator, pos, "%v", err)
	}
	if e.Pos == (Position{}) {
		e.Pos = pos
	}
	exec.decorate(e)
	return e
}
