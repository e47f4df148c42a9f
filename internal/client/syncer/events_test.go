package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversToMatchingSubscribers(t *testing.T) {
	b := NewBus()

	var network, sync int
	b.Subscribe(EventNetworkStatus, func(Event) { network++ })
	b.Subscribe(EventSyncComplete, func(Event) { sync++ })

	b.publish(Event{Type: EventNetworkStatus, Online: true})
	b.publish(Event{Type: EventNetworkStatus, Online: false})
	b.publish(Event{Type: EventSyncComplete})

	assert.Equal(t, 2, network)
	assert.Equal(t, 1, sync)
}

func TestBusUnsubscribe(t *testing.T) {
	b := NewBus()

	calls := 0
	off := b.Subscribe(EventSyncStart, func(Event) { calls++ })

	b.publish(Event{Type: EventSyncStart})
	off()
	off() // second call is harmless
	b.publish(Event{Type: EventSyncStart})

	assert.Equal(t, 1, calls)
}

func TestBusStampsEventTime(t *testing.T) {
	b := NewBus()

	var got Event
	b.Subscribe(EventSyncStart, func(e Event) { got = e })
	b.publish(Event{Type: EventSyncStart})

	assert.False(t, got.Time.IsZero())
}
