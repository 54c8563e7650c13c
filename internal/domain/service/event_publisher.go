package service

import (
	"context"
	"time"
)

// LiveLocationEventType tells consumers what happened to a live location.
type LiveLocationEventType string

const (
	LiveLocationUpdated LiveLocationEventType = "live_location.updated"
	LiveLocationStopped LiveLocationEventType = "live_location.stopped"
)

// LiveLocationEvent is emitted after a live location is written.
type LiveLocationEvent struct {
	RequestID  string                `json:"request_id,omitempty"` // For distributed tracing
	EventID    string                `json:"event_id"`
	Type       LiveLocationEventType `json:"type"`
	UserID     string                `json:"user_id"`
	Name       string                `json:"name"`
	Latitude   float64               `json:"lat"`
	Longitude  float64               `json:"lng"`
	IsSharing  bool                  `json:"is_sharing"`
	Recipients []string              `json:"recipients"` // Users allowed to receive this event
	OccurredAt time.Time             `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	PublishLiveLocationEvent(ctx context.Context, event *LiveLocationEvent) error

	// Close releases any resources held by the publisher
	Close() error
}

// LocationNotifier pushes events to connected recipients in real time.
type LocationNotifier interface {
	NotifyLiveLocation(ctx context.Context, event *LiveLocationEvent)
}
