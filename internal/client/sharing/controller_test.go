package sharing

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"safeguard/internal/client/api"
	"safeguard/internal/client/geolocation"
	"safeguard/internal/domain/entity"
	"safeguard/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	pushes    []api.ShareRequest
	settings  [][]uuid.UUID
	stops     int
	stopErr   error
	pushErr   error
	locations []*entity.LiveLocation
}

func (f *fakeAPI) ShareLocation(_ context.Context, req *api.ShareRequest) (*entity.LiveLocation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pushErr != nil {
		return nil, false, f.pushErr
	}
	f.pushes = append(f.pushes, *req)

	return &entity.LiveLocation{Latitude: req.Latitude, Longitude: req.Longitude, IsSharing: true}, len(f.pushes) == 1, nil
}

func (f *fakeAPI) UpdateSharingSettings(_ context.Context, isSharing bool, shareWith []uuid.UUID) (*entity.LiveLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.settings = append(f.settings, shareWith)

	return &entity.LiveLocation{IsSharing: isSharing, ShareWith: shareWith}, nil
}

func (f *fakeAPI) StopSharing(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stops++

	return f.stopErr
}

func (f *fakeAPI) VisibleLocations(context.Context, bool) ([]*entity.LiveLocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.locations, nil
}

func (f *fakeAPI) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.pushes)
}

func (f *fakeAPI) lastPush() api.ShareRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pushes[len(f.pushes)-1]
}

// blockingSource never produces a fix.
type blockingSource struct {
	*geolocation.Static
}

func (blockingSource) CurrentPosition(ctx context.Context, _ geolocation.Options) (entity.Position, error) {
	<-ctx.Done()

	return entity.Position{}, geolocation.Classify(ctx.Err())
}

// gatedSource holds the first fix until release is closed, ignoring cancellation.
type gatedSource struct {
	*geolocation.Static
	entered chan struct{}
	release chan struct{}
}

func newGatedSource(lat, lng float64) *gatedSource {
	return &gatedSource{
		Static:  geolocation.NewStatic(lat, lng),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (g *gatedSource) CurrentPosition(ctx context.Context, opts geolocation.Options) (entity.Position, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release

	return g.Static.CurrentPosition(context.WithoutCancel(ctx), opts)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func slowSettings() Settings {
	return Settings{Name: "Phone", RefreshInterval: time.Hour, PositionTimeout: time.Second, MoveThreshold: 0.0001}
}

func TestController_StartPushesFirstFix(t *testing.T) {
	fake := &fakeAPI{}
	recipient := uuid.New()
	c := New(geolocation.NewStatic(40.0, -73.0), fake, slowSettings(), testLogger())
	defer c.Close()

	require.NoError(t, c.StartSharing(context.Background(), []uuid.UUID{recipient}))
	assert.Equal(t, StateSharing, c.State())

	require.Equal(t, 1, fake.pushCount())
	push := fake.lastPush()
	assert.InDelta(t, 40.0, push.Latitude, 1e-12)
	assert.Equal(t, []uuid.UUID{recipient}, push.ShareWith)
	assert.Equal(t, "Phone", push.Name)
	require.NotNil(t, push.IsSharing)
	assert.True(t, *push.IsSharing)

	assert.ErrorIs(t, c.StartSharing(context.Background(), nil), ErrAlreadySharing)
}

func TestController_PermissionDeniedStaysIdle(t *testing.T) {
	fake := &fakeAPI{}
	source := geolocation.NewStatic(40, -73, geolocation.WithPermission(geolocation.PermissionPrompt, false))
	c := New(source, fake, slowSettings(), testLogger())

	err := c.StartSharing(context.Background(), nil)
	assert.ErrorIs(t, err, geolocation.ErrPermissionDenied)
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, fake.pushCount())
}

func TestController_PromptGrantedStarts(t *testing.T) {
	fake := &fakeAPI{}
	source := geolocation.NewStatic(40, -73, geolocation.WithPermission(geolocation.PermissionPrompt, true))
	c := New(source, fake, slowSettings(), testLogger())
	defer c.Close()

	require.NoError(t, c.StartSharing(context.Background(), nil))
	assert.Equal(t, StateSharing, c.State())
}

func TestController_FixFailures(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		settings := slowSettings()
		settings.PositionTimeout = 20 * time.Millisecond
		c := New(&blockingSource{Static: geolocation.NewStatic(0, 0)}, &fakeAPI{}, settings, testLogger())

		err := c.StartSharing(context.Background(), nil)
		assert.ErrorIs(t, err, geolocation.ErrTimeout)
		assert.Equal(t, StateIdle, c.State())
	})

	t.Run("unavailable", func(t *testing.T) {
		source := geolocation.NewStatic(0, 0, geolocation.WithError(errors.New("no signal")))
		c := New(source, &fakeAPI{}, slowSettings(), testLogger())

		err := c.StartSharing(context.Background(), nil)
		assert.ErrorIs(t, err, geolocation.ErrPositionUnavailable)
		assert.Equal(t, StateIdle, c.State())
	})

	t.Run("push rejected", func(t *testing.T) {
		c := New(geolocation.NewStatic(0, 0), &fakeAPI{pushErr: errors.New("unauthorized")}, slowSettings(), testLogger())

		assert.Error(t, c.StartSharing(context.Background(), nil))
		assert.Equal(t, StateIdle, c.State())
	})
}

func TestController_MovementTriggersPush(t *testing.T) {
	track := []entity.Position{
		{Latitude: 40.0, Longitude: -73.0},
		{Latitude: 40.00001, Longitude: -73.0}, // below threshold
		{Latitude: 40.001, Longitude: -73.0},
	}
	source, err := geolocation.NewReplay(track, 5*time.Millisecond)
	require.NoError(t, err)

	fake := &fakeAPI{}
	c := New(source, fake, slowSettings(), testLogger())
	defer c.Close()

	require.NoError(t, c.StartSharing(context.Background(), nil))
	require.Eventually(t, func() bool { return fake.pushCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 40.001, fake.lastPush().Latitude, 1e-12)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 2, fake.pushCount(), "small moves are not pushed")
}

func TestController_RefreshTimerPushesWithoutMovement(t *testing.T) {
	settings := slowSettings()
	settings.RefreshInterval = 10 * time.Millisecond

	fake := &fakeAPI{}
	c := New(geolocation.NewStatic(40, -73), fake, settings, testLogger())
	defer c.Close()

	require.NoError(t, c.StartSharing(context.Background(), nil))
	require.Eventually(t, func() bool { return fake.pushCount() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestController_StopSharing(t *testing.T) {
	settings := slowSettings()
	settings.RefreshInterval = 10 * time.Millisecond

	fake := &fakeAPI{}
	c := New(geolocation.NewStatic(40, -73), fake, settings, testLogger())

	require.NoError(t, c.StopSharing(context.Background()), "stop while idle is a no-op")
	assert.Zero(t, fake.stops)

	require.NoError(t, c.StartSharing(context.Background(), nil))
	require.NoError(t, c.StopSharing(context.Background()))
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 1, fake.stops)

	pushes := fake.pushCount()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, pushes, fake.pushCount(), "no pushes after stop")

	require.NoError(t, c.StopSharing(context.Background()))
	assert.Equal(t, 1, fake.stops)
}

func TestController_FailedStopIsRetried(t *testing.T) {
	fake := &fakeAPI{}
	c := New(geolocation.NewStatic(40, -73), fake, slowSettings(), testLogger())

	require.NoError(t, c.StartSharing(context.Background(), nil))

	fake.mu.Lock()
	fake.stopErr = errors.New("network down")
	fake.mu.Unlock()
	assert.Error(t, c.StopSharing(context.Background()))
	assert.Equal(t, StateIdle, c.State())

	fake.mu.Lock()
	fake.stopErr = nil
	fake.mu.Unlock()
	require.NoError(t, c.StopSharing(context.Background()))
	assert.Equal(t, 2, fake.stops)

	require.NoError(t, c.StopSharing(context.Background()))
	assert.Equal(t, 2, fake.stops)
}

func TestController_UpdateSharingSettings(t *testing.T) {
	fake := &fakeAPI{}
	c := New(geolocation.NewStatic(40, -73), fake, slowSettings(), testLogger())
	defer c.Close()

	require.NoError(t, c.StartSharing(context.Background(), nil))

	recipient := uuid.New()
	require.NoError(t, c.UpdateSharingSettings(context.Background(), []uuid.UUID{recipient}))
	assert.Equal(t, []uuid.UUID{recipient}, c.Recipients())
	assert.Equal(t, 1, fake.pushCount(), "settings do not push a position")
	assert.Equal(t, StateSharing, c.State())
}

func TestController_RefreshLocations(t *testing.T) {
	peer := &entity.LiveLocation{UserID: uuid.New(), Latitude: 1, Longitude: 2}
	c := New(geolocation.NewStatic(0, 0), &fakeAPI{locations: []*entity.LiveLocation{peer}}, slowSettings(), testLogger())

	got, err := c.RefreshLocations(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, peer.UserID, got[0].UserID)
}

func TestController_CloseStopsBackgroundWork(t *testing.T) {
	settings := slowSettings()
	settings.RefreshInterval = 10 * time.Millisecond

	fake := &fakeAPI{}
	c := New(geolocation.NewStatic(40, -73), fake, settings, testLogger())

	require.NoError(t, c.StartSharing(context.Background(), nil))
	require.NoError(t, c.Close())
	assert.Equal(t, StateIdle, c.State())

	pushes := fake.pushCount()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, pushes, fake.pushCount())
	assert.Zero(t, fake.stops, "close does not contact the backend")
}

func TestController_CloseDuringStartAbortsStart(t *testing.T) {
	settings := slowSettings()
	settings.RefreshInterval = 10 * time.Millisecond

	fake := &fakeAPI{}
	source := newGatedSource(40, -73)
	c := New(source, fake, settings, testLogger())

	started := make(chan error, 1)
	go func() {
		started <- c.StartSharing(context.Background(), nil)
	}()

	<-source.entered
	assert.Equal(t, StateStarting, c.State())
	require.NoError(t, c.Close())
	close(source.release)

	select {
	case err := <-started:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("StartSharing did not return after Close")
	}
	assert.Equal(t, StateIdle, c.State())

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, fake.pushCount(), "no pushes after Close")
	assert.Equal(t, StateIdle, c.State())

	require.NoError(t, c.StartSharing(context.Background(), nil), "a closed start does not wedge the controller")
	require.NoError(t, c.Close())
}
