// Package sharing drives live location sharing from a device: it takes a first fix,
// pushes it, then keeps the backend fresh on movement and on a fixed interval.
package sharing

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"safeguard/config"
	"safeguard/internal/client/api"
	"safeguard/internal/client/geolocation"
	"safeguard/internal/domain/entity"
	"safeguard/internal/errors"

	"github.com/google/uuid"
)

// State is the controller lifecycle.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateSharing
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateSharing:
		return "sharing"
	case StateStopping:
		return "stopping"
	default:
		return "idle"
	}
}

var (
	// ErrAlreadySharing is returned by StartSharing outside the idle state.
	ErrAlreadySharing = errors.New("sharing already started")
	// ErrBusy is returned while a start or stop is in flight.
	ErrBusy = errors.New("sharing state change in progress")
	// ErrClosed is returned by StartSharing when Close runs before sharing begins.
	ErrClosed = errors.New("sharing controller closed")
)

// LocationAPI is the backend surface used by the controller. *api.Client satisfies it.
type LocationAPI interface {
	ShareLocation(ctx context.Context, req *api.ShareRequest) (*entity.LiveLocation, bool, error)
	UpdateSharingSettings(ctx context.Context, isSharing bool, shareWith []uuid.UUID) (*entity.LiveLocation, error)
	StopSharing(ctx context.Context) error
	VisibleLocations(ctx context.Context, includeOwn bool) ([]*entity.LiveLocation, error)
}

// Settings tune the controller.
type Settings struct {
	Name            string
	RefreshInterval time.Duration
	PositionTimeout time.Duration
	// MoveThreshold is in degrees per axis.
	MoveThreshold float64
}

// SettingsFromConfig reads the tracker section.
func SettingsFromConfig(cfg *config.TrackerConfig, name string) Settings {
	return Settings{
		Name:            name,
		RefreshInterval: cfg.RefreshInterval,
		PositionTimeout: cfg.PositionTimeout,
		MoveThreshold:   cfg.MoveThreshold,
	}
}

// PushResult reports the outcome of one background push.
type PushResult struct {
	Position entity.Position
	Location *entity.LiveLocation
	Err      error
	// Trigger is "start", "move" or "refresh".
	Trigger string
}

// Controller owns the sharing state machine. All methods are safe for concurrent use.
type Controller struct {
	source   geolocation.Source
	api      LocationAPI
	settings Settings
	logger   *slog.Logger
	onPush   func(PushResult)

	mu          sync.Mutex
	state       State
	recipients  []uuid.UUID
	last        entity.Position
	cancel      context.CancelFunc
	stopPending bool
	wg          sync.WaitGroup
}

// Option customizes a Controller.
type Option func(*Controller)

// WithPushHook receives every push, including failed ones.
func WithPushHook(fn func(PushResult)) Option {
	return func(c *Controller) {
		c.onPush = fn
	}
}

// New creates an idle controller.
func New(source geolocation.Source, locationAPI LocationAPI, settings Settings, logger *slog.Logger, opts ...Option) *Controller {
	if settings.RefreshInterval <= 0 {
		settings.RefreshInterval = 30 * time.Second
	}
	if settings.PositionTimeout <= 0 {
		settings.PositionTimeout = 15 * time.Second
	}
	if settings.MoveThreshold <= 0 {
		settings.MoveThreshold = 0.0001
	}

	c := &Controller{
		source:   source,
		api:      locationAPI,
		settings: settings,
		logger:   logger,
		onPush:   func(PushResult) {},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Recipients returns the current recipient list.
func (c *Controller) Recipients() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.recipients)
}

// StartSharing takes one fix, pushes it to recipients, then starts the movement watch
// and the refresh timer. On any failure the controller returns to idle. Position
// failures are *geolocation.PositionError values.
func (c *Controller) StartSharing(ctx context.Context, recipients []uuid.UUID) error {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
	case StateSharing:
		c.mu.Unlock()

		return ErrAlreadySharing
	default:
		c.mu.Unlock()

		return ErrBusy
	}
	// Background work outlives ctx; it ends on StopSharing or Close. Close during the
	// start cancels runCtx, which also aborts the first fix and push.
	runCtx, cancel := context.WithCancel(context.Background())
	c.state = StateStarting
	c.recipients = slices.Clone(recipients)
	c.cancel = cancel
	c.mu.Unlock()

	startCtx, stopStart := context.WithCancel(ctx)
	defer stopStart()
	defer context.AfterFunc(runCtx, stopStart)()

	pos, err := c.firstFix(startCtx)
	if err == nil && runCtx.Err() == nil {
		_, err = c.push(startCtx, pos, "start")
	}
	if err != nil || runCtx.Err() != nil {
		return c.abortStart(runCtx, cancel, err)
	}

	opts := c.fixOptions()
	updates, err := c.source.Watch(runCtx, opts)
	if err != nil {
		c.logger.Warn("Position watch unavailable, relying on refresh timer", slog.Any("error", err))
		updates = nil
	}

	c.mu.Lock()
	if runCtx.Err() != nil {
		c.state = StateIdle
		c.mu.Unlock()

		return ErrClosed
	}
	c.state = StateSharing
	c.stopPending = false
	if updates != nil {
		c.wg.Add(1)
		go c.watchLoop(runCtx, updates)
	}
	c.wg.Add(1)
	go c.refreshLoop(runCtx, opts)
	c.mu.Unlock()

	c.logger.Info("Location sharing started", slog.Int("recipient_count", len(recipients)))

	return nil
}

// abortStart returns the controller to idle after a failed or closed start.
func (c *Controller) abortStart(runCtx context.Context, cancel context.CancelFunc, err error) error {
	c.mu.Lock()
	closed := runCtx.Err() != nil
	if !closed {
		c.cancel = nil
	}
	c.state = StateIdle
	c.mu.Unlock()
	cancel()

	if closed {
		return ErrClosed
	}

	return err
}

// StopSharing cancels background work and turns sharing off on the backend.
// Calling it while idle succeeds without a request, unless an earlier stop failed.
func (c *Controller) StopSharing(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateIdle:
		pending := c.stopPending
		c.mu.Unlock()
		if !pending {
			return nil
		}

		return c.finishStop(ctx)
	case StateSharing:
	default:
		c.mu.Unlock()

		return ErrBusy
	}
	c.state = StateStopping
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()

	err := c.finishStop(ctx)
	c.setState(StateIdle)

	return err
}

func (c *Controller) finishStop(ctx context.Context) error {
	if err := c.api.StopSharing(ctx); err != nil {
		c.mu.Lock()
		c.stopPending = true
		c.mu.Unlock()

		return errors.Wrap(err, "stop sharing")
	}

	c.mu.Lock()
	c.stopPending = false
	c.mu.Unlock()
	c.logger.Info("Location sharing stopped")

	return nil
}

// UpdateSharingSettings replaces the recipient list on the backend without sending a
// position. The watch and timer keep running.
func (c *Controller) UpdateSharingSettings(ctx context.Context, recipients []uuid.UUID) error {
	isSharing := c.State() == StateSharing

	if _, err := c.api.UpdateSharingSettings(ctx, isSharing, recipients); err != nil {
		return errors.Wrap(err, "update sharing settings")
	}

	c.mu.Lock()
	c.recipients = slices.Clone(recipients)
	c.mu.Unlock()

	return nil
}

// RefreshLocations fetches the positions currently shared with this user.
func (c *Controller) RefreshLocations(ctx context.Context, includeOwn bool) ([]*entity.LiveLocation, error) {
	locations, err := c.api.VisibleLocations(ctx, includeOwn)

	return locations, errors.Wrap(err, "refresh locations")
}

// Close cancels background work without contacting the backend. A start in progress
// is aborted and returns ErrClosed.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state == StateSharing {
		c.state = StateIdle
	}
	c.mu.Unlock()

	c.wg.Wait()

	return nil
}

func (c *Controller) firstFix(ctx context.Context) (entity.Position, error) {
	state, err := c.source.Permission(ctx)
	if err != nil {
		return entity.Position{}, geolocation.Classify(err)
	}
	if state == geolocation.PermissionPrompt {
		if state, err = c.source.RequestPermission(ctx); err != nil {
			return entity.Position{}, geolocation.Classify(err)
		}
	}
	if state != geolocation.PermissionGranted {
		return entity.Position{}, geolocation.ErrPermissionDenied
	}

	return c.fix(ctx, c.fixOptions())
}

func (c *Controller) fix(ctx context.Context, opts geolocation.Options) (entity.Position, error) {
	fixCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	pos, err := c.source.CurrentPosition(fixCtx, opts)

	return pos, geolocation.Classify(err)
}

func (c *Controller) fixOptions() geolocation.Options {
	return geolocation.Options{HighAccuracy: true, Timeout: c.settings.PositionTimeout}
}

// push sends pos with the current recipients and records it as the last fix on success.
func (c *Controller) push(ctx context.Context, pos entity.Position, trigger string) (*entity.LiveLocation, error) {
	c.mu.Lock()
	recipients := slices.Clone(c.recipients)
	c.mu.Unlock()

	sharing := true
	loc, _, err := c.api.ShareLocation(ctx, &api.ShareRequest{
		Name:      c.settings.Name,
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Accuracy:  pos.Accuracy,
		Heading:   pos.Heading,
		Speed:     pos.Speed,
		IsSharing: &sharing,
		ShareWith: recipients,
	})
	if err == nil {
		c.mu.Lock()
		c.last = pos
		c.mu.Unlock()
	}
	c.onPush(PushResult{Position: pos, Location: loc, Err: err, Trigger: trigger})

	return loc, errors.Wrap(err, "push location")
}

func (c *Controller) lastFix() entity.Position {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}

func (c *Controller) watchLoop(ctx context.Context, updates <-chan geolocation.Update) {
	defer c.wg.Done()

	for update := range updates {
		if ctx.Err() != nil {
			return
		}
		if update.Err != nil {
			c.logger.Warn("Position watch error", slog.Any("error", update.Err))

			continue
		}
		if !update.Position.MovedBeyond(c.lastFix(), c.settings.MoveThreshold) {
			continue
		}
		if _, err := c.push(ctx, update.Position, "move"); err != nil && ctx.Err() == nil {
			c.logger.Warn("Failed to push moved location", slog.Any("error", err))
		}
	}
}

func (c *Controller) refreshLoop(ctx context.Context, opts geolocation.Options) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.settings.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pos, err := c.fix(ctx, opts)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("Periodic position fix failed", slog.Any("error", err))
			}

			continue
		}
		if _, err := c.push(ctx, pos, "refresh"); err != nil && ctx.Err() == nil {
			c.logger.Warn("Failed to push periodic location", slog.Any("error", err))
		}
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = s
}
