package stream

import (
	"context"
	"testing"

	"github.com/Abdulla090/knote/internal/utils/identifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Type string
	ID   string
}

func TestHubSubscribeAndBroadcast(t *testing.T) {
	hub := NewHub[testEvent](4)

	sub, cancel := hub.Subscribe(identifier.NewULID())
	defer cancel()

	assert.Equal(t, 1, hub.SubscriberCount())

	hub.Broadcast(context.Background(), testEvent{Type: "note.created", ID: "n1"})

	ev := <-sub.Ch
	assert.Equal(t, "note.created", ev.Type)
	assert.Equal(t, "n1", ev.ID)
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub[testEvent](4)

	subA, cancelA := hub.Subscribe(identifier.NewULID())
	defer cancelA()
	subB, cancelB := hub.Subscribe(identifier.NewULID())
	defer cancelB()

	hub.Broadcast(context.Background(), testEvent{Type: "note.updated", ID: "n2"})

	assert.Equal(t, "n2", (<-subA.Ch).ID)
	assert.Equal(t, "n2", (<-subB.Ch).ID)
}

func TestHubUnsubscribeClosesChannels(t *testing.T) {
	hub := NewHub[testEvent](4)

	connID := identifier.NewULID()
	sub, _ := hub.Subscribe(connID)

	hub.Unsubscribe(connID)
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-sub.Ch
	assert.False(t, open)

	select {
	case <-sub.Done:
	default:
		t.Fatal("done channel should be closed")
	}

	// Double unsubscribe is a no-op.
	hub.Unsubscribe(connID)
}

func TestHubDropsWhenOutboxFull(t *testing.T) {
	hub := NewHub[testEvent](1)

	sub, cancel := hub.Subscribe(identifier.NewULID())
	defer cancel()

	hub.Broadcast(context.Background(), testEvent{ID: "kept"})
	hub.Broadcast(context.Background(), testEvent{ID: "dropped"})

	subscribers, dropped := hub.Stats()
	assert.Equal(t, 1, subscribers)
	assert.Equal(t, uint64(1), dropped)

	ev := <-sub.Ch
	require.Equal(t, "kept", ev.ID)
}
