package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case data := <-c.send:
		var evt Event
		require.NoError(t, json.Unmarshal(data, &evt))
		return &evt
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return nil
	}
}

func TestHubBroadcastToUser(t *testing.T) {
	h := NewHub()
	go h.Run()

	alice := NewClient(h, nil, uuid.New())
	bob := NewClient(h, nil, uuid.New())
	h.register <- alice
	h.register <- bob

	evt, err := NewEvent(EventTypeNotification, nil, map[string]string{"title": "hi"})
	require.NoError(t, err)
	h.BroadcastToUser(bob.userID, evt)

	got := recvEvent(t, bob)
	assert.Equal(t, EventTypeNotification, got.Type)

	// Alice vidi samo presence za Boba, ne i njegovu notifikaciju
	got = recvEvent(t, alice)
	assert.Equal(t, EventTypePresence, got.Type)
	select {
	case data := <-alice.send:
		t.Fatalf("unexpected event: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastToUnknownUser(t *testing.T) {
	h := NewHub()
	go h.Run()

	evt, err := NewEvent(EventTypeNotification, nil, map[string]string{"title": "hi"})
	require.NoError(t, err)

	// Nitko nije spojen; poziv ne smije blokirati ni panicati
	h.BroadcastToUser(uuid.New(), evt)
}

// Notifikacije stizu s raznih goroutina (servisi, river worker) dok se
// klijenti spajaju i odspajaju; sve mora ici kroz hub petlju.
func TestHubConcurrentUserSends(t *testing.T) {
	h := NewHub()
	go h.Run()

	userIDs := make([]uuid.UUID, 8)
	for i := range userIDs {
		userIDs[i] = uuid.New()
	}

	evt, err := NewEvent(EventTypeNotification, nil, map[string]string{"title": "hi"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range userIDs {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				h.BroadcastToUser(id, evt)
			}
		}(id)
	}

	for i := 0; i < 20; i++ {
		client := NewClient(h, nil, userIDs[i%len(userIDs)])
		h.register <- client
		h.unregister <- client
	}
	wg.Wait()
}
