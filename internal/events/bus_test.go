package events

import (
	"sync"
	"testing"
	"time"

	"backend/internal/models"
)

func TestPublishOrderCreatedReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	var seen []string

	bus.SubscribeOrderCreated(func(ev OrderCreated) {
		mu.Lock()
		seen = append(seen, "first:"+ev.Order.OrderNumber)
		mu.Unlock()
		wg.Done()
	})
	bus.SubscribeOrderCreated(func(ev OrderCreated) {
		mu.Lock()
		seen = append(seen, "second:"+ev.Order.OrderNumber)
		mu.Unlock()
		wg.Done()
	})

	bus.PublishOrderCreated(OrderCreated{Order: &models.Order{OrderNumber: "123456"}})

	if waitTimeout(&wg, time.Second) {
		t.Fatal("subscribers were not invoked in time")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", seen)
	}
}

func TestPanickingSubscriberDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	bus.SubscribeOrderStatusChanged(func(OrderStatusChanged) {
		panic("subscriber blew up")
	})
	bus.SubscribeOrderStatusChanged(func(ev OrderStatusChanged) {
		if ev.OldStatus != models.StatusPending || ev.NewStatus != models.StatusConfirmed {
			t.Errorf("unexpected statuses: %s -> %s", ev.OldStatus, ev.NewStatus)
		}
		wg.Done()
	})

	bus.PublishOrderStatusChanged(OrderStatusChanged{
		Order:     &models.Order{OrderNumber: "123456"},
		OldStatus: models.StatusPending,
		NewStatus: models.StatusConfirmed,
	})

	if waitTimeout(&wg, time.Second) {
		t.Fatal("surviving subscriber was not invoked")
	}
}

func TestPublishWithoutSubscribersIsHarmless(t *testing.T) {
	bus := NewBus()
	bus.PublishOrderCreated(OrderCreated{Order: &models.Order{}})
	bus.PublishOrderStatusChanged(OrderStatusChanged{Order: &models.Order{}})
}

func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return false
	case <-time.After(timeout):
		return true
	}
}
