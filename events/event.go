package events

import (
	"context"
	"sync"
	"time"
)

const (
	QueueCreated       = "queue.created"
	QueueStatusChanged = "queue.status_changed"
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
	TableStatusChanged = "table.status_changed"
)

// Event adalah payload domain yang dikirim ke broker dan dashboard.
type Event struct {
	Type         string      `json:"type"`
	RestaurantID uint        `json:"restaurantId"`
	QueueID      uint        `json:"queueId,omitempty"`
	QueueNo      string      `json:"queueNo,omitempty"`
	OrderID      uint        `json:"orderId,omitempty"`
	Status       string      `json:"status,omitempty"`
	TableID      *uint       `json:"tableId,omitempty"`
	TimeSlot     *time.Time  `json:"timeSlot,omitempty"`
	Payload      interface{} `json:"payload,omitempty"`
	OccurredAt   time.Time   `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Multi meneruskan event ke semua publisher, error pertama dikembalikan.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Recorder menyimpan event di memori, dipakai di test.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
	return nil
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		out = append(out, ev.Type)
	}
	return out
}
