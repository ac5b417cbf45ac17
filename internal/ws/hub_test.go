package ws

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/relay"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/testutil"
)

func newTestHub() *Hub {
	return NewHub(testutil.NopLogger())
}

func newTestClient(hub *Hub, playerID model.PlayerID, buffer int) *Client {
	return &Client{
		hub:      hub,
		playerID: playerID,
		send:     make(chan []byte, buffer),
		logger:   testutil.NopLogger(),
	}
}

func receiveEvent(t *testing.T, client *Client) relay.Event {
	t.Helper()
	select {
	case data := <-client.send:
		var event relay.Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	default:
		t.Fatal("no message queued for client")
		return relay.Event{}
	}
}

func TestToPlayerDeliversToConnectedClient(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "alice", 4)
	hub.Register(client)

	hub.ToPlayer("alice", relay.Event{
		Type:    model.EventTypingIndicator,
		Payload: model.TypingIndicatorPayload{IsTyping: true},
	})

	event := receiveEvent(t, client)
	assert.Equal(t, model.EventTypingIndicator, event.Type)
}

func TestToPlayerIgnoresDisconnectedPlayer(t *testing.T) {
	hub := newTestHub()
	// Must not panic or block
	hub.ToPlayer("ghost", relay.Event{Type: model.EventError})
}

func TestToRoomFansOutToMembers(t *testing.T) {
	hub := newTestHub()
	alice := newTestClient(hub, "alice", 4)
	bob := newTestClient(hub, "bob", 4)
	carol := newTestClient(hub, "carol", 4)
	hub.Register(alice)
	hub.Register(bob)
	hub.Register(carol)

	hub.JoinRoom("GAME1234", "alice")
	hub.JoinRoom("GAME1234", "bob")

	hub.ToRoom("GAME1234", relay.Event{Type: model.EventRestartGame})

	assert.Equal(t, model.EventRestartGame, receiveEvent(t, alice).Type)
	assert.Equal(t, model.EventRestartGame, receiveEvent(t, bob).Type)
	assert.Empty(t, carol.send)
}

func TestCloseRoomStopsDelivery(t *testing.T) {
	hub := newTestHub()
	alice := newTestClient(hub, "alice", 4)
	hub.Register(alice)
	hub.JoinRoom("GAME1234", "alice")

	hub.CloseRoom("GAME1234")
	hub.ToRoom("GAME1234", relay.Event{Type: model.EventRestartGame})

	assert.Empty(t, alice.send)
}

func TestRegisterDisplacesExistingConnection(t *testing.T) {
	hub := newTestHub()
	first := newTestClient(hub, "alice", 4)
	second := newTestClient(hub, "alice", 4)
	hub.Register(first)
	hub.Register(second)

	// Old connection's send channel is closed so its write pump exits
	_, open := <-first.send
	assert.False(t, open)

	hub.ToPlayer("alice", relay.Event{Type: model.EventSearchingForPartner})
	assert.Equal(t, model.EventSearchingForPartner, receiveEvent(t, second).Type)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestUnregisterOnlyRemovesCurrentConnection(t *testing.T) {
	hub := newTestHub()
	first := newTestClient(hub, "alice", 4)
	second := newTestClient(hub, "alice", 4)
	hub.Register(first)
	hub.Register(second)

	// The displaced connection's read pump unregisters on its way out; the
	// replacement must survive it
	hub.Unregister(first)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(second)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestDeliveryDuringConnectionChurn(t *testing.T) {
	// Emitter goroutines (bot replies, settle delays) race against
	// connects and disconnects; a delivery must never hit a closed
	// send channel
	hub := newTestHub()
	done := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					hub.ToPlayer("alice", relay.Event{Type: model.EventTypingIndicator})
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		client := newTestClient(hub, "alice", 1)
		hub.Register(client)
		hub.Unregister(client)
	}

	close(done)
	wg.Wait()
	assert.Equal(t, 0, hub.ClientCount())
}

func TestDeliveryDroppedWhenBufferFull(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "alice", 1)
	hub.Register(client)

	hub.ToPlayer("alice", relay.Event{Type: model.EventSearchingForPartner})
	hub.ToPlayer("alice", relay.Event{Type: model.EventSearchingForPartner})

	assert.Len(t, client.send, 1)
}
