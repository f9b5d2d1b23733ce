package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/weather-dashboard-service/internal/config"
	"github.com/couchcryptid/weather-dashboard-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	publishAttempts = 3
	initialBackoff  = 200 * time.Millisecond
	maxBackoff      = 2 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher produces weather bundles to a Kafka topic, keyed by session.
// It implements dashboard.BundlePublisher.
type Publisher struct {
	writer messageWriter
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured bundle topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaBundleTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes the bundle and writes it, retrying transient broker
// errors a few times with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, sessionID, label string, bundle domain.Bundle) error {
	msg, err := serializeToMessage(sessionID, label, bundle)
	if err != nil {
		return err
	}

	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			return nil
		}
		if attempt == publishAttempts || ctx.Err() != nil {
			return fmt.Errorf("publish bundle for session %s: %w", sessionID, err)
		}
		p.logger.Warn("bundle publish failed, retrying", "session", sessionID, "attempt", attempt, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("publish bundle for session %s: %w", sessionID, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// bundleMessage is the wire form of a published bundle.
type bundleMessage struct {
	SessionID string        `json:"session_id"`
	Location  string        `json:"location"`
	Bundle    domain.Bundle `json:"bundle"`
}

func serializeToMessage(sessionID, label string, bundle domain.Bundle) (kafkago.Message, error) {
	data, err := json.Marshal(bundleMessage{SessionID: sessionID, Location: label, Bundle: bundle})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize weather bundle: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(sessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "location", Value: []byte(label)},
			{Key: "alert_count", Value: []byte(strconv.Itoa(len(bundle.Alerts)))},
			{Key: "fetched_at", Value: []byte(bundle.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
