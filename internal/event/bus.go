package event

import (
	"errors"
	"sync"

	"github.com/dshills/nodestorm/internal/event/topic"
)

// Errors returned by bus operations.
var (
	// ErrNilHandler indicates Subscribe was called with a nil handler.
	ErrNilHandler = errors.New("nil handler")

	// ErrNotSubscribed indicates Unsubscribe was called with an
	// unknown or already-removed subscription.
	ErrNotSubscribed = errors.New("not subscribed")
)

// HandlerFunc processes one published event.
type HandlerFunc func(Event)

// Subscription identifies one registered handler.
type Subscription struct {
	id int
}

// Stats reports bus activity counters.
type Stats struct {
	// Published is the total number of events published.
	Published uint64
	// Delivered is the total number of handler invocations.
	Delivered uint64
	// Subscriptions is the current number of active subscriptions.
	Subscriptions int
}

type subscriber struct {
	id      int
	pattern topic.Topic
	fn      HandlerFunc
}

// Bus delivers events to pattern-matched subscribers synchronously,
// in subscription order.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	subs      []subscriber
	published uint64
	delivered uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every event whose type matches pattern.
func (b *Bus) Subscribe(pattern topic.Topic, fn HandlerFunc) (Subscription, error) {
	if fn == nil {
		return Subscription{}, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := subscriber{id: b.nextID, pattern: pattern, fn: fn}
	b.subs = append(b.subs, sub)
	return Subscription{id: sub.id}, nil
}

// Unsubscribe removes a subscription.
func (b *Bus) Unsubscribe(sub Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == sub.id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrNotSubscribed
}

// Publish delivers ev to every matching subscriber before returning.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	b.published++
	// Copy so handlers may subscribe/unsubscribe without corrupting
	// the iteration.
	matched := make([]HandlerFunc, 0, len(b.subs))
	for _, s := range b.subs {
		if ev.Type.Match(s.pattern) {
			matched = append(matched, s.fn)
		}
	}
	b.delivered += uint64(len(matched))
	b.mu.Unlock()

	for _, fn := range matched {
		fn(ev)
	}
}

// Stats returns current activity counters.
func (b *Bus) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Published:     b.published,
		Delivered:     b.delivered,
		Subscriptions: len(b.subs),
	}
}
