// Package fetch describes the outcome of a call to an unreliable upstream.
package fetch

// Status tells callers whether a value is live, a fallback, or absent.
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	default:
		return "failed"
	}
}

// Result carries a value together with how it was obtained.
// A Degraded result holds fallback data and the error that caused it.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// OK wraps a value fetched successfully.
func OK[T any](value T) Result[T] {
	return Result[T]{Value: value, Status: StatusOK}
}

// Degraded wraps fallback data served because of err.
func Degraded[T any](value T, err error) Result[T] {
	return Result[T]{Value: value, Status: StatusDegraded, Err: err}
}

// Failed reports that nothing usable could be produced.
func Failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}

// IsFallback reports whether the value is fallback data.
func (r Result[T]) IsFallback() bool {
	return r.Status == StatusDegraded
}

// Unwrap returns the value, or the error when the fetch failed.
func (r Result[T]) Unwrap() (T, error) {
	if r.Status == StatusFailed {
		var zero T

		return zero, r.Err
	}

	return r.Value, nil
}

// OrElse degrades a failed result to the given fallback.
func (r Result[T]) OrElse(fallback T) Result[T] {
	if r.Status != StatusFailed {
		return r
	}

	return Degraded(fallback, r.Err)
}
