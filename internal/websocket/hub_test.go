package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, householdID string) *Client {
	return &Client{
		hub:         hub,
		conn:        nil,
		householdID: householdID,
		send:        make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "h1")
	c2 := mockClient(hub, "h1")

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount("h1"); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount("h1"); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount("h1"); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "h1")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount("h1"); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastScopedToHousehold(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "h1")
	c2 := mockClient(hub, "h1")
	other := mockClient(hub, "h2")
	hub.Register(c1)
	hub.Register(c2)
	hub.Register(other)

	msg := NewMessage("chore", "completed", "chore-42", map[string]any{"points": float64(5)})
	hub.Broadcast("h1", msg)

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "chore_completed" {
				t.Errorf("expected type chore_completed, got %s", got.Type)
			}
			if got.Entity != "chore" {
				t.Errorf("expected entity chore, got %s", got.Entity)
			}
			if got.ID != "chore-42" {
				t.Errorf("expected id chore-42, got %s", got.ID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	// The other household hears nothing.
	select {
	case data := <-other.send:
		t.Fatalf("other household received %s", data)
	default:
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
	hub.Unregister(other)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	msg := NewMessage("chore", "completed", "c1", nil)
	hub.Broadcast("h1", msg)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, "h1")
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast("h1", NewMessage("test", "fill", fmt.Sprintf("%d", i), nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast("h1", NewMessage("test", "dropped", "overflow", nil))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("badge", "earned", "fifty_chores", nil)
	if msg.Type != "badge_earned" {
		t.Errorf("expected type badge_earned, got %s", msg.Type)
	}
	if msg.Entity != "badge" {
		t.Errorf("expected entity badge, got %s", msg.Entity)
	}
	if msg.Action != "earned" {
		t.Errorf("expected action earned, got %s", msg.Action)
	}
	if msg.ID != "fifty_chores" {
		t.Errorf("expected id fifty_chores, got %s", msg.ID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Register, broadcast, and unregister concurrently across two households
	for i := 0; i < 20; i++ {
		wg.Add(1)
		householdID := fmt.Sprintf("h%d", i%2)
		go func() {
			defer wg.Done()
			c := mockClient(hub, householdID)
			hub.Register(c)
			hub.Broadcast(householdID, NewMessage("test", "concurrent", "", nil))
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount("h0") + hub.ClientCount("h1"); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
