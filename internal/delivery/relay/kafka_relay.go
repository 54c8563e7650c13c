// Package relay consumes live location events from the message bus and hands them
// to the streams connected to this instance.
package relay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"safeguard/config"
	"safeguard/internal/delivery"
	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/domain/constants"
	"safeguard/internal/domain/service"
	"safeguard/internal/errors"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
)

const (
	defaultGroupPrefix = "safeguard-relay"
	fetchRetryDelay    = time.Second
)

// messageReader is the part of *kafka.Reader the relay needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRelayParams holds dependencies for the kafka relay, injected by Fx.
type KafkaRelayParams struct {
	fx.In

	Lc       fx.Lifecycle
	Config   *config.Config
	Logger   *slog.Logger
	Notifier service.LocationNotifier
}

// kafkaRelay reads every event on the topic through a consumer group of its own,
// so each instance sees the full stream and fans it out to its local subscribers.
// Events this instance published itself are dropped by the hub's event id check.
type kafkaRelay struct {
	reader     messageReader
	notifier   service.LocationNotifier
	logger     *slog.Logger
	retryDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// disabledRelay stands in when the bus is not kafka.
type disabledRelay struct{}

func (disabledRelay) Serve(context.Context) error {
	return nil
}

// NewKafkaRelay returns the relay delivery; it does nothing unless the kafka provider is configured.
func NewKafkaRelay(params KafkaRelayParams) delivery.Delivery {
	cfg := params.Config.PubSub
	if cfg == nil || cfg.Provider != constants.PubSubProviderKafka {
		return disabledRelay{}
	}

	prefix := cfg.Kafka.GroupPrefix
	if prefix == "" {
		prefix = defaultGroupPrefix
	}
	groupID := prefix + "-" + uuid.NewString()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.Topic,
		GroupID:     groupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	params.Logger.Info("Relaying kafka events to local streams",
		slog.String("topic", cfg.Kafka.Topic),
		slog.String("group_id", groupID),
	)

	r := newKafkaRelay(reader, params.Notifier, params.Logger)
	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return r.stop()
		},
	})

	return r
}

func newKafkaRelay(reader messageReader, notifier service.LocationNotifier, logger *slog.Logger) *kafkaRelay {
	ctx, cancel := context.WithCancel(context.Background())

	return &kafkaRelay{
		reader:     reader,
		notifier:   notifier,
		logger:     logger,
		retryDelay: fetchRetryDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Serve fetches until stop is called or the reader is closed.
func (r *kafkaRelay) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(r.ctx, cancel)()

	for {
		msg, err := r.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			r.logger.Warn("[Relay] Failed to fetch kafka message", slog.Any("error", err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.retryDelay):
			}

			continue
		}

		r.relay(ctx, msg)

		if err := r.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			r.logger.Warn("[Relay] Failed to commit kafka message",
				slog.Int64("offset", msg.Offset),
				slog.Any("error", err),
			)
		}
	}
}

// relay decodes one message. Undecodable messages are logged and skipped.
func (r *kafkaRelay) relay(ctx context.Context, msg kafka.Message) {
	var event service.LiveLocationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil || event.EventID == "" {
		r.logger.Error("[Relay] Dropping malformed live location event",
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Any("error", err),
		)

		return
	}

	requestID := event.RequestID
	for _, h := range msg.Headers {
		if h.Key == "request_id" && len(h.Value) > 0 {
			requestID = string(h.Value)
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	reqLogger := r.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Debug("[Relay] Relaying live location event",
		slog.String("event_id", event.EventID),
		slog.String("type", string(event.Type)),
	)

	r.notifier.NotifyLiveLocation(ctx, &event)
}

func (r *kafkaRelay) stop() error {
	r.cancel()

	return errors.WithStack(r.reader.Close())
}
