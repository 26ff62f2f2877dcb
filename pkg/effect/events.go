package effect

import (
	"sync"
	"time"
)

// Event types published by EventBroker.
const (
	EventCurrentChanged  = "current_effect_changed"
	EventListDirty       = "effect_list_dirty"
	EventEnabledChanged  = "effect_enabled_changed"
	EventIntervalChanged = "interval_changed"
)

// Event is one manager notification in a form that can be queued.
type Event struct {
	Type       string    `json:"type"`
	Index      int       `json:"index,omitempty"`
	Enabled    bool      `json:"enabled,omitempty"`
	IntervalMs int64     `json:"intervalMs,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventBroker turns Listener callbacks into events on subscriber channels.
// Slow subscribers miss events rather than blocking the manager.
type EventBroker struct {
	subscribers   []chan Event
	subscribersMu sync.Mutex
	now           func() time.Time
}

var _ Listener = (*EventBroker)(nil)

// NewEventBroker returns a broker with no subscribers.
func NewEventBroker() *EventBroker {
	return &EventBroker{now: time.Now}
}

// Subscribe returns a channel that receives every later event.
func (b *EventBroker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.subscribersMu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.subscribersMu.Unlock()
	return ch
}

// Unsubscribe removes and closes ch.
func (b *EventBroker) Unsubscribe(ch chan Event) {
	b.subscribersMu.Lock()
	defer b.subscribersMu.Unlock()
	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *EventBroker) publish(evt Event) {
	evt.Timestamp = b.now()
	b.subscribersMu.Lock()
	defer b.subscribersMu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *EventBroker) OnCurrentEffectChanged(index int) {
	b.publish(Event{Type: EventCurrentChanged, Index: index})
}

func (b *EventBroker) OnEffectListDirty() {
	b.publish(Event{Type: EventListDirty})
}

func (b *EventBroker) OnEffectEnabledStateChanged(index int, enabled bool) {
	b.publish(Event{Type: EventEnabledChanged, Index: index, Enabled: enabled})
}

func (b *EventBroker) OnIntervalChanged(interval time.Duration) {
	b.publish(Event{Type: EventIntervalChanged, IntervalMs: interval.Milliseconds()})
}
