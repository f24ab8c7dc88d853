// Package review publishes REVIEW_REQUIRED match scores to a Kafka topic
// for the human-in-the-loop merge workflow.
//
// Publishing happens after the batch completes and is synchronous: a review
// pair that cannot be queued is a delivery failure the operator must see,
// not a silently dropped record.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"unify/internal/resolution/models"
)

// Publisher emits review-queue events.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the brokers and ensures the review topic exists.
func NewPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &Publisher{client: client, topic: topic, logger: logger}
	if err := p.ensureTopic(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureTopic(ctx context.Context) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

// PublishReviewQueue produces one event per REVIEW_REQUIRED match, keyed by
// the pair key so replays of the same batch compact cleanly. Returns the
// number of events published.
func (p *Publisher) PublishReviewQueue(ctx context.Context, matches []models.MatchScore) (int, error) {
	published := 0
	for i := range matches {
		m := &matches[i]
		if m.MergeAction != models.MergeActionReviewRequired {
			continue
		}
		value, err := json.Marshal(m)
		if err != nil {
			return published, fmt.Errorf("marshal review event %s: %w", m.Key(), err)
		}
		record := &kgo.Record{
			Topic: p.topic,
			Key:   []byte(m.Key()),
			Value: value,
		}
		if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			return published, fmt.Errorf("publish review event %s: %w", m.Key(), err)
		}
		published++
	}
	p.logger.Info("review queue published", "topic", p.topic, "events", published)
	return published, nil
}

// Close flushes and releases the Kafka client.
func (p *Publisher) Close() {
	p.client.Close()
}
