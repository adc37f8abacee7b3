package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/events"
	"backend/internal/models"
)

type fakeRecipients struct {
	tokens []string
	subs   []models.WebPushSubscription
}

func (f *fakeRecipients) TokensForOrder(context.Context, *models.Order) ([]string, error) {
	return f.tokens, nil
}

func (f *fakeRecipients) SubscriptionsForOrder(context.Context, *models.Order) ([]models.WebPushSubscription, error) {
	return f.subs, nil
}

type fakeTokenDispatcher struct {
	mu      sync.Mutex
	calls   int
	tokens  []string
	payload Payload
}

func (f *fakeTokenDispatcher) Send(_ context.Context, tokens []string, payload Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.tokens = tokens
	f.payload = payload
}

type fakeSubDispatcher struct {
	mu      sync.Mutex
	calls   int
	subs    []models.WebPushSubscription
	payload Payload
}

func (f *fakeSubDispatcher) Send(_ context.Context, subs []models.WebPushSubscription, payload Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.subs = subs
	f.payload = payload
}

func testOrder() *models.Order {
	return &models.Order{
		ID:          primitive.NewObjectID(),
		OrderNumber: "123456",
		Status:      models.StatusConfirmed,
	}
}

func TestRouterDispatchesToBothChannels(t *testing.T) {
	mobile := &fakeTokenDispatcher{}
	web := &fakeSubDispatcher{}
	router := NewRouter(&fakeRecipients{
		tokens: []string{"ExponentPushToken[abc]"},
		subs:   []models.WebPushSubscription{{Endpoint: "https://push.example/ep1"}},
	}, mobile, web)

	router.HandleOrderStatusChanged(events.OrderStatusChanged{
		Order:     testOrder(),
		OldStatus: models.StatusPending,
		NewStatus: models.StatusConfirmed,
	})

	if mobile.calls != 1 {
		t.Fatalf("expected one mobile dispatch, got %d", mobile.calls)
	}
	if web.calls != 1 {
		t.Fatalf("expected one web dispatch, got %d", web.calls)
	}
	if mobile.payload.Title != "Order Confirmed!" {
		t.Fatalf("unexpected title: %q", mobile.payload.Title)
	}
	if mobile.payload.Data["status"] != "confirmed" || mobile.payload.Data["orderNumber"] != "123456" {
		t.Fatalf("unexpected payload data: %v", mobile.payload.Data)
	}
	if len(mobile.tokens) != 1 || len(web.subs) != 1 {
		t.Fatal("expected full recipient batches to be passed through")
	}
}

func TestRouterSkipsDispatcherWithNoRecipients(t *testing.T) {
	mobile := &fakeTokenDispatcher{}
	web := &fakeSubDispatcher{}
	router := NewRouter(&fakeRecipients{}, mobile, web)

	router.HandleOrderStatusChanged(events.OrderStatusChanged{
		Order:     testOrder(),
		OldStatus: models.StatusPending,
		NewStatus: models.StatusConfirmed,
	})

	if mobile.calls != 0 {
		t.Fatalf("mobile dispatcher must not run with zero recipients, got %d calls", mobile.calls)
	}
	if web.calls != 0 {
		t.Fatalf("web dispatcher must not run with zero recipients, got %d calls", web.calls)
	}
}

func TestStatusPayloadTemplates(t *testing.T) {
	estimate := time.Date(2026, 3, 1, 19, 5, 0, 0, time.UTC)
	order := testOrder()
	order.EstimatedReadyAt = &estimate

	cases := []struct {
		status    models.OrderStatus
		wantTitle string
		wantBody  string
	}{
		{models.StatusPending, "Order Received", "We've received your order #123456."},
		{models.StatusConfirmed, "Order Confirmed!", "Your order #123456 has been confirmed."},
		{models.StatusPreparing, "Preparing Your Order", "We're preparing your delicious fries!"},
		{models.StatusReady, "Order Ready!", "Your order #123456 is ready for delivery."},
		{models.StatusOutForDelivery, "On The Way!", "Your order is on its way! Estimated arrival: 19:05"},
		{models.StatusDelivered, "Order Delivered", "Your order #123456 has been delivered. Enjoy!"},
		{models.StatusCancelled, "Order Cancelled", "Your order #123456 has been cancelled."},
	}

	for _, tc := range cases {
		payload := statusPayload(order, tc.status)
		if payload.Title != tc.wantTitle {
			t.Errorf("%s: title %q, want %q", tc.status, payload.Title, tc.wantTitle)
		}
		if payload.Body != tc.wantBody {
			t.Errorf("%s: body %q, want %q", tc.status, payload.Body, tc.wantBody)
		}
		if payload.Data["type"] != "order_status_update" {
			t.Errorf("%s: missing type in data: %v", tc.status, payload.Data)
		}
	}
}
