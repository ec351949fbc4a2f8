package events

import (
	"sync"

	"github.com/andrescamacho/empire-go/internal/adapters/metrics"
	"github.com/andrescamacho/empire-go/internal/domain/village"
)

// DefaultBufferSize is the channel buffer given to each subscription
const DefaultBufferSize = 32

// VillageEventBus provides pub/sub for committed village events.
// Subscribers register for one village or for every village.
// Thread-safe; publishing never blocks: events for a subscriber whose
// buffer is full are dropped.
type VillageEventBus struct {
	mu sync.RWMutex
	// villageSubscribers[villageID] = []channels
	villageSubscribers map[string][]chan village.Event
	// allSubscribers receive events of every village
	allSubscribers []chan village.Event
	bufferSize     int
}

var _ village.EventPublisher = (*VillageEventBus)(nil)

// NewVillageEventBus creates a new event bus. A non-positive buffer size
// falls back to DefaultBufferSize.
func NewVillageEventBus(bufferSize int) *VillageEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &VillageEventBus{
		villageSubscribers: make(map[string][]chan village.Event),
		bufferSize:         bufferSize,
	}
}

// Publish delivers events to the village's subscribers and to global subscribers.
// Implements village.EventPublisher.
func (b *VillageEventBus) Publish(events ...village.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		for _, ch := range b.villageSubscribers[event.VillageID.String()] {
			deliver(ch, event)
		}
		for _, ch := range b.allSubscribers {
			deliver(ch, event)
		}
	}
}

func deliver(ch chan village.Event, event village.Event) {
	// Non-blocking send - skip if channel buffer is full
	select {
	case ch <- event:
	default:
		metrics.RecordEventDropped(string(event.Type))
	}
}

// Subscribe subscribes to events of one village.
// Caller must Unsubscribe when done.
func (b *VillageEventBus) Subscribe(villageID village.VillageID) <-chan village.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := villageID.String()
	ch := make(chan village.Event, b.bufferSize)
	b.villageSubscribers[key] = append(b.villageSubscribers[key], ch)
	metrics.SetEventSubscribers(b.countLocked())

	return ch
}

// SubscribeAll subscribes to events of every village.
// Caller must UnsubscribeAll when done.
func (b *VillageEventBus) SubscribeAll() <-chan village.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan village.Event, b.bufferSize)
	b.allSubscribers = append(b.allSubscribers, ch)
	metrics.SetEventSubscribers(b.countLocked())

	return ch
}

// Unsubscribe removes a village subscription and closes its channel
func (b *VillageEventBus) Unsubscribe(villageID village.VillageID, ch <-chan village.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := villageID.String()
	b.villageSubscribers[key] = remove(b.villageSubscribers[key], ch)
	if len(b.villageSubscribers[key]) == 0 {
		delete(b.villageSubscribers, key)
	}
	metrics.SetEventSubscribers(b.countLocked())
}

// UnsubscribeAll removes a global subscription and closes its channel
func (b *VillageEventBus) UnsubscribeAll(ch <-chan village.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.allSubscribers = remove(b.allSubscribers, ch)
	metrics.SetEventSubscribers(b.countLocked())
}

func remove(channels []chan village.Event, ch <-chan village.Event) []chan village.Event {
	for i, c := range channels {
		if c == ch {
			close(c)
			// order doesn't matter, swap with last
			channels[i] = channels[len(channels)-1]
			return channels[:len(channels)-1]
		}
	}
	return channels
}

// SubscriberCount returns the number of subscribers for a specific village
func (b *VillageEventBus) SubscriberCount(villageID village.VillageID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.villageSubscribers[villageID.String()])
}

// TotalSubscriberCount returns the total number of active subscriptions
func (b *VillageEventBus) TotalSubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.countLocked()
}

func (b *VillageEventBus) countLocked() int {
	total := len(b.allSubscribers)
	for _, channels := range b.villageSubscribers {
		total += len(channels)
	}
	return total
}
