// Package events carries order lifecycle notifications to Kafka and to live admin feeds.
package events

import (
	"context"
	"errors"
	"time"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderDeleted       = "order.deleted"
)

type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

// New stamps an event with the current time.
func New(eventType, key string, data any) Event {
	return Event{Type: eventType, Key: key, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Fanout delivers each event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
