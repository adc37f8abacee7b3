package events

import (
	"log"
	"sync"

	"backend/internal/models"
)

// OrderCreated fires once per order, after the creating transaction has
// committed.
type OrderCreated struct {
	Order *models.Order
}

// OrderStatusChanged fires after a status transition has been persisted.
type OrderStatusChanged struct {
	Order     *models.Order
	OldStatus models.OrderStatus
	NewStatus models.OrderStatus
}

// Bus is an in-process publisher with an explicit subscriber list.
// Publishing is fire-and-forget: each event is delivered on its own
// goroutine, so lifecycle callers never block on (or fail because of)
// subscriber work. A panicking subscriber is logged and does not affect
// the others.
type Bus struct {
	mu          sync.RWMutex
	createdSubs []func(OrderCreated)
	statusSubs  []func(OrderStatusChanged)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) SubscribeOrderCreated(fn func(OrderCreated)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createdSubs = append(b.createdSubs, fn)
}

func (b *Bus) SubscribeOrderStatusChanged(fn func(OrderStatusChanged)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusSubs = append(b.statusSubs, fn)
}

func (b *Bus) PublishOrderCreated(ev OrderCreated) {
	b.mu.RLock()
	subs := make([]func(OrderCreated), len(b.createdSubs))
	copy(subs, b.createdSubs)
	b.mu.RUnlock()

	go func() {
		for _, fn := range subs {
			callContained(func() { fn(ev) })
		}
	}()
}

func (b *Bus) PublishOrderStatusChanged(ev OrderStatusChanged) {
	b.mu.RLock()
	subs := make([]func(OrderStatusChanged), len(b.statusSubs))
	copy(subs, b.statusSubs)
	b.mu.RUnlock()

	go func() {
		for _, fn := range subs {
			callContained(func() { fn(ev) })
		}
	}()
}

func callContained(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EVENTS] [ERROR] subscriber panic recovered: %v", r)
		}
	}()
	fn()
}
