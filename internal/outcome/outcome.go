// Package outcome carries the result of a best-effort pipeline step together with
// whether the step succeeded, degraded to an empty value, or failed outright.
package outcome

import "fmt"

type State int

const (
	OK State = iota
	Degraded
	Fatal
)

func (s State) String() string {
	switch s {
	case OK:
		return "ok"
	case Degraded:
		return "degraded"
	case Fatal:
		return "fatal"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is the value produced by a step plus its state. Err is nil only for OK.
type Result[T any] struct {
	Value T
	State State
	Err   error
}

func Success[T any](v T) Result[T] {
	return Result[T]{Value: v, State: OK}
}

// Degrade returns an empty value flagged as degraded. The pipeline keeps going.
func Degrade[T any](err error) Result[T] {
	var zero T
	return Result[T]{Value: zero, State: Degraded, Err: err}
}

// Fail marks a result the caller must not continue with.
func Fail[T any](err error) Result[T] {
	var zero T
	return Result[T]{Value: zero, State: Fatal, Err: err}
}

func (r Result[T]) IsOK() bool       { return r.State == OK }
func (r Result[T]) IsDegraded() bool { return r.State == Degraded }
func (r Result[T]) IsFatal() bool    { return r.State == Fatal }

// Partial is a degraded result that still carries the value computed before the failures.
func Partial[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, State: Degraded, Err: err}
}
