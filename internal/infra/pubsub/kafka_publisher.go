package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"safeguard/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// kafkaBatchTimeout bounds how long a single synchronous write waits for a batch to fill.
// kafka-go's one second default would stall every live location update.
const kafkaBatchTimeout = 10 * time.Millisecond

// kafkaPublisher writes events keyed by user id so one user's events share a partition
type kafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a synchronous Kafka publisher
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) service.EventPublisher {
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           kafkaBatchTimeout,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

func (p *kafkaPublisher) PublishLiveLocationEvent(ctx context.Context, event *service.LiveLocationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	headers := make([]kafka.Header, 0, 4)
	for k, v := range eventAttributes(event) {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(event.UserID),
		Value:   value,
		Headers: headers,
	}); err != nil {
		return errors.Wrap(err, "failed to write kafka message")
	}

	p.logger.Debug("[Kafka] Event published",
		slog.String("topic", p.writer.Topic),
		slog.String("event_id", event.EventID),
	)

	return nil
}

func (p *kafkaPublisher) Close() error {
	return errors.WithStack(p.writer.Close())
}
