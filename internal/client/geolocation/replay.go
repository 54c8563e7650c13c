package geolocation

import (
	"context"
	"sync"
	"time"

	"safeguard/internal/domain/entity"
	"safeguard/internal/errors"
)

// Replay walks a recorded track, advancing one point per interval. After the last
// point it keeps reporting that point.
type Replay struct {
	mu       sync.Mutex
	points   []entity.Position
	interval time.Duration
	cursor   int
}

// NewReplay creates a source over points. It fails when points is empty.
func NewReplay(points []entity.Position, interval time.Duration) (*Replay, error) {
	if len(points) == 0 {
		return nil, errors.New("replay needs at least one point")
	}
	if interval <= 0 {
		interval = time.Second
	}

	return &Replay{points: points, interval: interval}, nil
}

func (r *Replay) Permission(context.Context) (PermissionState, error) {
	return PermissionGranted, nil
}

func (r *Replay) RequestPermission(context.Context) (PermissionState, error) {
	return PermissionGranted, nil
}

func (r *Replay) CurrentPosition(ctx context.Context, _ Options) (entity.Position, error) {
	if err := ctx.Err(); err != nil {
		return entity.Position{}, Classify(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stamp(r.points[r.cursor]), nil
}

// Watch advances the cursor every interval and emits each new point.
func (r *Replay) Watch(ctx context.Context, _ Options) (<-chan Update, error) {
	out := make(chan Update, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			pos, ok := r.advance()
			if !ok {
				continue
			}
			send(ctx, out, Update{Position: pos})
		}
	}()

	return out, nil
}

func (r *Replay) advance() (entity.Position, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cursor >= len(r.points)-1 {
		return entity.Position{}, false
	}
	r.cursor++

	return r.stamp(r.points[r.cursor]), true
}

func (r *Replay) stamp(p entity.Position) entity.Position {
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}

	return p
}
