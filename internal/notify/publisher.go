// Package notify pushes domain events (new chat messages, payment changes)
// to an external broker so that other building systems can react to them.
package notify

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type EventType string

const (
	EventMessageCreated EventType = "messages"
	EventPaymentCreated EventType = "payments"
	EventPaymentStatus  EventType = "payment-status"
)

type Event struct {
	Type    EventType `json:"type"`
	UnitID  uint      `json:"unitId"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sentAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

const sendTimeout = 2 * time.Second

// Send publishes e and logs failures. Notifications never fail the request
// that produced them.
func Send(pub Publisher, log *logrus.Logger, e Event) {
	if pub == nil {
		return
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := pub.Publish(ctx, e); err != nil {
		log.WithFields(logrus.Fields{
			"event":   e.Type,
			"unit_id": e.UnitID,
		}).WithError(err).Warn("notification not delivered")
	}
}
