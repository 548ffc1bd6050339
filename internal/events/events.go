// Package events publishes domain events after the write that caused them
// has committed. Delivery is best effort: a failed publish never rolls back
// or fails the action.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	"github.com/google/uuid"
)

type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New wraps payload in an event. key identifies the aggregate (order id,
// reservation id, room id) and keeps its events ordered on partitioned
// brokers.
func New(eventType, key string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    data,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Fanout publishes every event to all of its publishers.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher only logs events. It is the default driver for local runs.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info("EVENTS", fmt.Sprintf("%s key=%s payload=%s", e.Type, e.Key, e.Payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Emit builds and publishes an event, logging rather than returning any
// failure. Services call it after commit.
func Emit(ctx context.Context, p Publisher, log *logger.Logger, eventType, key string, payload any) {
	if p == nil {
		return
	}
	e, err := New(eventType, key, payload)
	if err != nil {
		log.Errorf("EVENTS", "build %s: %v", eventType, err)
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		log.Errorf("EVENTS", "publish %s key=%s: %v", eventType, key, err)
	}
}
