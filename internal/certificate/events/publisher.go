// Package events publishes certificate lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"certifier/internal/certificate/models"
	"certifier/internal/platform/kafka/producer"
	"certifier/pkg/requestcontext"
)

// Producer is the part of the Kafka producer the publisher uses.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// wireEvent is the JSON published on the lifecycle topic.
type wireEvent struct {
	Type        models.EventType `json:"type"`
	LearnerID   string           `json:"learner_id"`
	CourseID    string           `json:"course_id"`
	Status      models.Status    `json:"status"`
	ExternalKey string           `json:"external_key,omitempty"`
	Grade       float64          `json:"grade"`
	Reason      string           `json:"reason,omitempty"`
	OccurredAt  string           `json:"occurred_at"`
	RequestID   string           `json:"request_id,omitempty"`
}

// Encode renders an event as the lifecycle topic message value.
func Encode(ctx context.Context, event models.LifecycleEvent) ([]byte, error) {
	return json.Marshal(wireEvent{
		Type:        event.Type,
		LearnerID:   event.LearnerID.String(),
		CourseID:    event.CourseID.String(),
		Status:      event.Status,
		ExternalKey: event.ExternalKey,
		Grade:       event.Grade,
		Reason:      event.Reason,
		OccurredAt:  event.OccurredAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		RequestID:   requestcontext.RequestID(ctx),
	})
}

// KafkaPublisher publishes lifecycle events keyed by learner and course so a
// certificate's events stay ordered.
type KafkaPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

func NewKafkaPublisher(p Producer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.LifecycleEvent) error {
	value, err := Encode(ctx, event)
	if err != nil {
		return fmt.Errorf("encode lifecycle event: %w", err)
	}
	return p.producer.Produce(ctx, &producer.Message{
		Topic: p.topic,
		Key:   []byte(event.PartitionKey()),
		Value: value,
		Headers: map[string]string{
			"event_type": string(event.Type),
			"course_id":  event.CourseID.String(),
		},
	})
}

// LogPublisher writes events to the log. Used when Kafka is not configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event models.LifecycleEvent) error {
	p.logger.DebugContext(ctx, "certificate lifecycle event",
		"event", string(event.Type),
		"learner_id", event.LearnerID.String(),
		"course_id", event.CourseID.String(),
		"status", event.Status.String(),
	)
	return nil
}

// Recorder keeps published events in memory for tests.
type Recorder struct {
	mu     sync.Mutex
	events []models.LifecycleEvent
}

func (r *Recorder) Publish(_ context.Context, event models.LifecycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []models.LifecycleEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.LifecycleEvent(nil), r.events...)
}
