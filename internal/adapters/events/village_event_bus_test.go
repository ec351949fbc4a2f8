package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/empire-go/internal/domain/village"
)

func TestVillageEventBus_DeliversToVillageSubscriber(t *testing.T) {
	// Arrange
	bus := NewVillageEventBus(4)
	target := village.NewVillageID()
	other := village.NewVillageID()
	ch := bus.Subscribe(target)
	defer bus.Unsubscribe(target, ch)

	// Act
	bus.Publish(
		village.Event{Type: village.EventUpgradeStarted, VillageID: other},
		village.Event{Type: village.EventUpgradeCompleted, VillageID: target, Level: 2},
	)

	// Assert
	select {
	case event := <-ch:
		assert.Equal(t, village.EventUpgradeCompleted, event.Type)
		assert.Equal(t, 2, event.Level)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Empty(t, ch, "events of other villages must not be delivered")
}

func TestVillageEventBus_GlobalSubscriberSeesEveryVillage(t *testing.T) {
	// Arrange
	bus := NewVillageEventBus(4)
	ch := bus.SubscribeAll()
	defer bus.UnsubscribeAll(ch)

	// Act
	bus.Publish(
		village.Event{Type: village.EventVillageFounded, VillageID: village.NewVillageID()},
		village.Event{Type: village.EventVillageFounded, VillageID: village.NewVillageID()},
	)

	// Assert
	assert.Len(t, ch, 2)
}

func TestVillageEventBus_FullBufferDoesNotBlock(t *testing.T) {
	// Arrange
	bus := NewVillageEventBus(1)
	id := village.NewVillageID()
	ch := bus.Subscribe(id)
	defer bus.Unsubscribe(id, ch)

	done := make(chan struct{})

	// Act
	go func() {
		bus.Publish(
			village.Event{Type: village.EventResourcesGranted, VillageID: id},
			village.Event{Type: village.EventResourcesGranted, VillageID: id},
			village.Event{Type: village.EventResourcesGranted, VillageID: id},
		)
		close(done)
	}()

	// Assert
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	assert.Len(t, ch, 1)
}

func TestVillageEventBus_UnsubscribeClosesChannel(t *testing.T) {
	// Arrange
	bus := NewVillageEventBus(0)
	id := village.NewVillageID()
	first := bus.Subscribe(id)
	second := bus.Subscribe(id)
	global := bus.SubscribeAll()
	require.Equal(t, 2, bus.SubscriberCount(id))
	require.Equal(t, 3, bus.TotalSubscriberCount())

	// Act
	bus.Unsubscribe(id, first)
	bus.UnsubscribeAll(global)

	// Assert
	_, open := <-first
	assert.False(t, open)
	_, open = <-global
	assert.False(t, open)
	assert.Equal(t, 1, bus.SubscriberCount(id))

	bus.Unsubscribe(id, second)
	assert.Equal(t, 0, bus.TotalSubscriberCount())
}
