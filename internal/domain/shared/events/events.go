// Package events defines the envelope shared by the domain events that
// feed the transactional outbox.
package events

import "time"

// DomainEvent is implemented by anything that crosses the service
// boundary through the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Base carries the identity every event needs. Embed it and build it
// with New; the fields are unexported so a zero Base is obviously wrong.
type Base struct {
	name      string
	aggregate string
	at        time.Time
}

func New(name, aggregate string, at time.Time) Base {
	return Base{name: name, aggregate: aggregate, at: at.UTC()}
}

func (b Base) EventName() string { return b.name }

func (b Base) AggregateID() string { return b.aggregate }

func (b Base) OccurredAt() time.Time { return b.at }
