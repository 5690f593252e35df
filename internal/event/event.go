// Package event provides the editor's notification bus.
//
// Replaying an undo action must tell the surface that owns the edited
// entity to re-derive its caches (connection ticks, arrangement,
// navmesh regions). The engine publishes notifications on a
// hierarchical topic bus; surfaces subscribe to the topics they care
// about.
//
// Dispatch is synchronous and in publish order: all editing and
// replay happens on one logical editor thread, so handlers run inline
// before the publishing operation returns.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/nodestorm/internal/event/topic"
)

// Event is one notification published on the bus.
// Events are immutable once created.
type Event struct {
	// Type is the hierarchical event type (e.g. "graph.value.changed").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload any

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata contains standard information attached to every event.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string
}

// New creates an event with fresh metadata.
func New(t topic.Topic, payload any, source string) Event {
	return Event{
		Type:    t,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}
