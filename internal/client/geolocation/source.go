// Package geolocation provides position fixes to the sharing client.
package geolocation

import (
	"context"
	"time"

	"safeguard/internal/domain/entity"
	"safeguard/internal/errors"
)

// PermissionState is the user's answer to the location permission prompt.
type PermissionState int

const (
	PermissionPrompt PermissionState = iota
	PermissionGranted
	PermissionDenied
)

func (s PermissionState) String() string {
	switch s {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "prompt"
	}
}

// ErrorCode classifies a failed fix. Values match the browser Geolocation API.
type ErrorCode int

const (
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
)

// PositionError is a recoverable failure to obtain a fix.
type PositionError struct {
	Code ErrorCode
	Err  error
}

// Sentinels for errors.Is; only the code is compared.
var (
	ErrPermissionDenied    = &PositionError{Code: CodePermissionDenied}
	ErrPositionUnavailable = &PositionError{Code: CodePositionUnavailable}
	ErrTimeout             = &PositionError{Code: CodeTimeout}
)

func (e *PositionError) Error() string {
	reason := e.Reason()
	if e.Err != nil {
		return reason + ": " + e.Err.Error()
	}

	return reason
}

// Reason is the message shown to the user.
func (e *PositionError) Reason() string {
	switch e.Code {
	case CodePermissionDenied:
		return "location permission denied"
	case CodeTimeout:
		return "timed out waiting for a position fix"
	default:
		return "position unavailable"
	}
}

func (e *PositionError) Unwrap() error {
	return e.Err
}

func (e *PositionError) Is(target error) bool {
	t, ok := target.(*PositionError)

	return ok && t.Code == e.Code
}

// Classify turns any fix failure into a *PositionError. Deadline overruns become timeouts.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var posErr *PositionError
	if errors.As(err, &posErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &PositionError{Code: CodeTimeout, Err: err}
	}

	return &PositionError{Code: CodePositionUnavailable, Err: err}
}

// Options tune a fix request.
type Options struct {
	HighAccuracy bool
	Timeout      time.Duration
}

// Update is one event from a watch. Exactly one of Position or Err is meaningful.
type Update struct {
	Position entity.Position
	Err      error
}

// Source produces position fixes.
type Source interface {
	// Permission reports the current permission without prompting.
	Permission(ctx context.Context) (PermissionState, error)

	// RequestPermission prompts the user when the state is PermissionPrompt.
	RequestPermission(ctx context.Context) (PermissionState, error)

	// CurrentPosition returns a single fix, honoring opts.Timeout and ctx.
	CurrentPosition(ctx context.Context, opts Options) (entity.Position, error)

	// Watch streams fixes until ctx is done, then closes the channel.
	Watch(ctx context.Context, opts Options) (<-chan Update, error)
}

// withTimeout bounds ctx by opts.Timeout when set.
func withTimeout(ctx context.Context, opts Options) (context.Context, context.CancelFunc) {
	if opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, opts.Timeout)
}
