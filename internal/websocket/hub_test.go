package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockClient has a send channel but no connection.
func mockClient(hub *Hub) *Client {
	return &Client{
		id:   "mock",
		hub:  hub,
		send: make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)
	// Second unregister must not panic on the closed channel.
	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	c1 := mockClient(hub)
	c2 := mockClient(hub)
	hub.Register(c1)
	hub.Register(c2)
	defer hub.Unregister(c1)
	defer hub.Unregister(c2)

	hub.Broadcast(NewMessage(EntityGroceryList, ActionUpdated, 0, map[string]any{"addedCount": float64(3)}))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "grocery_list_updated" {
				t.Errorf("type = %s, want grocery_list_updated", got.Type)
			}
			if got.Extra["addedCount"] != float64(3) {
				t.Errorf("extra = %v", got.Extra)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestBroadcastEntityFilter(t *testing.T) {
	hub := NewHub(testLogger())

	all := mockClient(hub)
	groceryOnly := NewClient(hub, nil, EntityGroceryItem, EntityGroceryList)
	hub.Register(all)
	hub.Register(groceryOnly)
	defer hub.Unregister(all)
	defer hub.Unregister(groceryOnly)

	hub.Broadcast(NewMessage(EntityPantryItem, ActionCreated, 1, nil))
	hub.Broadcast(NewMessage(EntityGroceryList, ActionUpdated, 0, nil))

	if got := len(all.send); got != 2 {
		t.Errorf("unfiltered client buffered %d, want 2", got)
	}
	if got := len(groceryOnly.send); got != 1 {
		t.Fatalf("filtered client buffered %d, want 1", got)
	}
	var got Message
	if err := json.Unmarshal(<-groceryOnly.send, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Entity != EntityGroceryList {
		t.Errorf("entity = %s, want %s", got.Entity, EntityGroceryList)
	}
}

func TestParseEntities(t *testing.T) {
	got := parseEntities(" pantry_item, ,grocery_list ")
	if len(got) != 2 || got[0] != "pantry_item" || got[1] != "grocery_list" {
		t.Errorf("parseEntities = %q", got)
	}
	if got := parseEntities(""); got != nil {
		t.Errorf("parseEntities(\"\") = %q, want nil", got)
	}
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(testLogger())
	c := mockClient(hub)
	hub.Register(c)
	defer hub.Unregister(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage(EntityPantryItem, ActionUpdated, int64(i), nil))
	}
	// Dropped rather than blocking.
	hub.Broadcast(NewMessage(EntityPantryItem, ActionDeleted, 999, nil))

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("buffered = %d, want %d", got, sendBufferSize)
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(EntityPantryItem, ActionReordered, 5, nil)
	if msg.Type != "pantry_item_reordered" {
		t.Errorf("type = %s", msg.Type)
	}
	if msg.Entity != EntityPantryItem || msg.Action != ActionReordered || msg.ID != 5 {
		t.Errorf("message = %+v", msg)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(testLogger())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub)
			hub.Register(c)
			hub.Broadcast(NewMessage(EntityCategory, ActionCreated, 0, nil))
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

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients, got %d", got)
	}
}

func TestHandleWebSocketDelivers(t *testing.T) {
	hub := NewHub(testLogger())
	srv := httptest.NewServer(HandleWebSocket(hub, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.Broadcast(NewMessage(EntityCategory, ActionDeleted, 7, nil))

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "category_deleted" || got.ID != 7 {
		t.Errorf("message = %+v", got)
	}
}
