package syncer

import (
	"sync"
	"time"
)

// EventType discriminates the engine's notifications to the UI layer.
type EventType string

const (
	EventNetworkStatus       EventType = "network_status"
	EventSyncStart           EventType = "sync_start"
	EventSyncComplete        EventType = "sync_complete"
	EventSyncError           EventType = "sync_error"
	EventSyncStatus          EventType = "sync_status"
	EventOfflineModeEnabled  EventType = "offline_mode_enabled"
	EventOfflineModeDisabled EventType = "offline_mode_disabled"
)

// Event is the tagged union delivered to subscribers. Only the fields
// relevant to Type are set: Online for network status changes, Status for
// status updates, Err for sync errors.
type Event struct {
	Type   EventType
	Online bool
	Status Status
	Err    error
	Time   time.Time
}

// Bus fans events out to per-type subscriber sets. Dispatch is synchronous
// and in subscription order; subscribers must not block.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[EventType]map[int]func(Event)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[EventType]map[int]func(Event))}
}

// Subscribe registers fn for events of type t and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(t EventType, fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[t] == nil {
		b.subs[t] = make(map[int]func(Event))
	}
	b.subs[t][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[t], id)
	}
}

func (b *Bus) publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	b.mu.RLock()
	fns := make([]func(Event), 0, len(b.subs[e.Type]))
	for _, fn := range b.subs[e.Type] {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
