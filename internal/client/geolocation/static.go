package geolocation

import (
	"context"
	"sync"
	"time"

	"safeguard/internal/domain/entity"
)

// Static always reports the same point. It is used by the CLI when coordinates are given
// on the command line and by tests.
type Static struct {
	mu         sync.Mutex
	position   entity.Position
	permission PermissionState
	// grantOnRequest decides the outcome of RequestPermission from the prompt state.
	grantOnRequest bool
	err            error
}

// StaticOption configures a Static source.
type StaticOption func(*Static)

// WithPermission sets the initial permission state.
func WithPermission(state PermissionState, grantOnRequest bool) StaticOption {
	return func(s *Static) {
		s.permission = state
		s.grantOnRequest = grantOnRequest
	}
}

// WithError makes every fix fail with err.
func WithError(err error) StaticOption {
	return func(s *Static) {
		s.err = err
	}
}

// NewStatic creates a source fixed at lat, lng with permission already granted.
func NewStatic(lat, lng float64, opts ...StaticOption) *Static {
	s := &Static{
		position:   entity.Position{Latitude: lat, Longitude: lng},
		permission: PermissionGranted,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// MoveTo changes the reported point.
func (s *Static) MoveTo(lat, lng float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.position.Latitude = lat
	s.position.Longitude = lng
}

func (s *Static) Permission(context.Context) (PermissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.permission, nil
}

func (s *Static) RequestPermission(context.Context) (PermissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permission == PermissionPrompt {
		if s.grantOnRequest {
			s.permission = PermissionGranted
		} else {
			s.permission = PermissionDenied
		}
	}

	return s.permission, nil
}

func (s *Static) CurrentPosition(ctx context.Context, opts Options) (entity.Position, error) {
	ctx, cancel := withTimeout(ctx, opts)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return entity.Position{}, Classify(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.permission != PermissionGranted {
		return entity.Position{}, ErrPermissionDenied
	}
	if s.err != nil {
		return entity.Position{}, Classify(s.err)
	}

	pos := s.position
	pos.Timestamp = time.Now().UTC()

	return pos, nil
}

// Watch emits the current point whenever it changes, polling every second.
func (s *Static) Watch(ctx context.Context, opts Options) (<-chan Update, error) {
	if _, err := s.CurrentPosition(ctx, Options{}); err != nil {
		return nil, err
	}

	return poll(ctx, time.Second, func() (entity.Position, error) {
		return s.CurrentPosition(ctx, opts)
	}), nil
}

// poll emits a fix whenever it differs from the previous one.
func poll(ctx context.Context, every time.Duration, fix func() (entity.Position, error)) <-chan Update {
	out := make(chan Update, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(every)
		defer ticker.Stop()

		var last *entity.Position
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			pos, err := fix()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				send(ctx, out, Update{Err: err})

				continue
			}
			if last != nil && last.Latitude == pos.Latitude && last.Longitude == pos.Longitude {
				continue
			}
			last = &pos
			send(ctx, out, Update{Position: pos})
		}
	}()

	return out
}

func send(ctx context.Context, out chan<- Update, u Update) {
	select {
	case out <- u:
	case <-ctx.Done():
	}
}
