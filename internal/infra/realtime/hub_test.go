package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"safeguard/internal/domain/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestHub_DeliversOnlyToRecipients(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := uuid.MustParse(r.URL.Query().Get("user"))
		assert.NoError(t, hub.Serve(w, r, userID))
	}))
	defer srv.Close()

	owner, recipient, stranger := uuid.New(), uuid.New(), uuid.New()
	recipientConn := dial(t, srv, recipient)
	strangerConn := dial(t, srv, stranger)

	require.Eventually(t, func() bool {
		return hub.Connections(recipient) == 1 && hub.Connections(stranger) == 1
	}, time.Second, 10*time.Millisecond)

	hub.NotifyLiveLocation(context.Background(), &service.LiveLocationEvent{
		EventID:    "evt-1",
		Type:       service.LiveLocationUpdated,
		UserID:     owner.String(),
		Latitude:   40,
		Longitude:  -73,
		Recipients: []string{recipient.String()},
	})

	require.NoError(t, recipientConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := recipientConn.ReadMessage()
	require.NoError(t, err)

	var got service.LiveLocationEvent
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "evt-1", got.EventID)
	assert.Equal(t, owner.String(), got.UserID)

	require.NoError(t, strangerConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = strangerConn.ReadMessage()
	assert.Error(t, err, "stranger receives nothing")
}

func TestHub_LeaveOnDisconnect(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, hub.Serve(w, r, uuid.MustParse(r.URL.Query().Get("user"))))
	}))
	defer srv.Close()

	userID := uuid.New()
	conn := dial(t, srv, userID)
	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_FirstSighting(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.True(t, hub.firstSighting("evt-1"))
	assert.False(t, hub.firstSighting("evt-1"), "relayed copy is dropped")
	assert.True(t, hub.firstSighting(""))
	assert.True(t, hub.firstSighting(""), "events without id are never deduplicated")

	for i := range recentEvents {
		hub.firstSighting("fill-" + strconv.Itoa(i))
	}
	assert.True(t, hub.firstSighting("evt-1"), "old ids are forgotten")
}

func TestHub_DuplicateEventDeliveredOnce(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, hub.Serve(w, r, uuid.MustParse(r.URL.Query().Get("user"))))
	}))
	defer srv.Close()

	owner := uuid.New()
	conn := dial(t, srv, owner)
	require.Eventually(t, func() bool { return hub.Connections(owner) == 1 }, time.Second, 10*time.Millisecond)

	event := &service.LiveLocationEvent{EventID: "evt-dup", Type: service.LiveLocationStopped, UserID: owner.String()}
	hub.NotifyLiveLocation(context.Background(), event)
	hub.NotifyLiveLocation(context.Background(), event)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "second copy is not delivered")
}
