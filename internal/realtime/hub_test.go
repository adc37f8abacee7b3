package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"backend/internal/events"
	"backend/internal/models"
)

func dialTestHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/admin/ws", ServeWS(hub))
	server := httptest.NewServer(router)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/admin/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("dial failed: %v", err)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", want, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastReachesClient(t *testing.T) {
	hub := NewHub()
	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()

	waitForClients(t, hub, 1)

	hub.Broadcast(map[string]string{"event": "ping"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg map[string]string
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}
	if msg["event"] != "ping" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestAdminPublisherNewOrderMessage(t *testing.T) {
	hub := NewHub()
	conn, cleanup := dialTestHub(t, hub)
	defer cleanup()

	waitForClients(t, hub, 1)

	order := &models.Order{
		OrderNumber:   "123456",
		CustomerName:  "Thandi M",
		OrderType:     models.OrderTypeDelivery,
		Status:        models.StatusPending,
		PaymentMethod: models.PaymentCash,
		Subtotal:      80,
		DeliveryFee:   30,
		Total:         110,
		Items: []models.OrderItem{
			{ProductName: "Loaded Fries", Size: "medium", Quantity: 2, UnitPrice: 40, TotalPrice: 80},
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	NewAdminPublisher(hub).HandleOrderCreated(events.OrderCreated{Order: order})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading broadcast: %v", err)
	}

	var msg adminMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal broadcast: %v", err)
	}

	if msg.Event != "new-order" {
		t.Fatalf("expected new-order event, got %q", msg.Event)
	}
	if msg.Payload.OrderNumber != "123456" || msg.Payload.Total != 110 {
		t.Fatalf("unexpected payload: %+v", msg.Payload)
	}
	if msg.Payload.StatusLabel != "Pending" || msg.Payload.OrderTypeLabel != "Delivery" {
		t.Fatalf("expected display labels in payload, got %+v", msg.Payload)
	}
	if msg.Payload.ItemsCount != 1 || len(msg.Payload.Items) != 1 || msg.Payload.Items[0].ProductName != "Loaded Fries" {
		t.Fatalf("unexpected items: %+v", msg.Payload.Items)
	}
}

func TestBroadcastWithNoClientsIsHarmless(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(map[string]string{"event": "ping"})
	if hub.ClientCount() != 0 {
		t.Fatal("expected no clients")
	}
}

// The connection here is registered without a read loop, so only
// Broadcast's write-failure path can remove it.
func TestBroadcastDropsDeadClient(t *testing.T) {
	hub := NewHub()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		hub.register(conn)
	})
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	waitForClients(t, hub, 1)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("dead client was never dropped, have %d clients", hub.ClientCount())
		}
		hub.Broadcast(map[string]string{"event": "ping"})
		time.Sleep(10 * time.Millisecond)
	}
}
