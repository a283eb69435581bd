package event

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	TypeUserCreated = "UserCreated"
	TypeUserUpdated = "UserUpdated"
	TypeUserDeleted = "UserDeleted"
)

// CurrentVersion is the schema version stamped on newly built events.
const CurrentVersion = 1

// DomainEvent is something that happened to an aggregate.
// Implementations are plain values; receivers get their own copy.
type DomainEvent interface {
	Meta() Base
}

// Base carries the fields shared by every domain event.
type Base struct {
	ID          string    `json:"event_id"`
	Type        string    `json:"event_type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredOn  time.Time `json:"occurred_on"`
	Version     int       `json:"event_version"`
}

func (b Base) Meta() Base { return b }

// MessageType names the event on outbound transports.
func (b Base) MessageType() string { return b.Type }

func newBase(eventType, aggregateID string) Base {
	now := time.Now().UTC()
	return Base{
		ID:          newEventID(now),
		Type:        eventType,
		AggregateID: aggregateID,
		OccurredOn:  now,
		Version:     CurrentVersion,
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// newEventID returns "<unix millis>-<9 random base36 chars>".
func newEventID(now time.Time) string {
	suffix := make([]byte, 9)
	radix := big.NewInt(int64(len(base36)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		suffix[i] = base36[n.Int64()]
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// Publisher hands events to whoever consumes them. Implementations must not
// block the caller on handler execution.
type Publisher interface {
	Publish(ctx context.Context, e DomainEvent) error
}

// Handler reacts to a domain event.
type Handler interface {
	Handle(ctx context.Context, e DomainEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e DomainEvent) error

func (f HandlerFunc) Handle(ctx context.Context, e DomainEvent) error { return f(ctx, e) }

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, DomainEvent) error { return nil }
