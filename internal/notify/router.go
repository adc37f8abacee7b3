package notify

import (
	"context"
	"log"
	"sync"

	"backend/internal/events"
	"backend/internal/models"
)

// RecipientSource resolves the recipient sets for an order.
type RecipientSource interface {
	TokensForOrder(ctx context.Context, order *models.Order) ([]string, error)
	SubscriptionsForOrder(ctx context.Context, order *models.Order) ([]models.WebPushSubscription, error)
}

// TokenDispatcher delivers one payload to a batch of mobile tokens.
// Dispatchers never report errors upward; failures stay inside them.
type TokenDispatcher interface {
	Send(ctx context.Context, tokens []string, payload Payload)
}

// SubscriptionDispatcher delivers one payload to a batch of web-push
// subscriptions.
type SubscriptionDispatcher interface {
	Send(ctx context.Context, subs []models.WebPushSubscription, payload Payload)
}

// Router subscribes to lifecycle events, composes the per-status payload
// and fans it out to both push channels. Dispatch is fire-and-forget: the
// router logs resolution failures and never raises.
type Router struct {
	recipients RecipientSource
	mobile     TokenDispatcher
	web        SubscriptionDispatcher
}

func NewRouter(recipients RecipientSource, mobile TokenDispatcher, web SubscriptionDispatcher) *Router {
	return &Router{recipients: recipients, mobile: mobile, web: web}
}

// HandleOrderStatusChanged resolves both channels' recipients and sends
// the composed payload to each in parallel. A channel with an empty
// recipient set is skipped entirely.
func (r *Router) HandleOrderStatusChanged(ev events.OrderStatusChanged) {
	ctx := context.Background()
	payload := statusPayload(ev.Order, ev.NewStatus)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		tokens, err := r.recipients.TokensForOrder(ctx, ev.Order)
		if err != nil {
			log.Printf("[PUSH] [ERROR] resolving device tokens for order %s: %v", ev.Order.OrderNumber, err)
			return
		}
		if len(tokens) == 0 {
			return
		}
		r.mobile.Send(ctx, tokens, payload)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		subs, err := r.recipients.SubscriptionsForOrder(ctx, ev.Order)
		if err != nil {
			log.Printf("[PUSH] [ERROR] resolving web subscriptions for order %s: %v", ev.Order.OrderNumber, err)
			return
		}
		if len(subs) == 0 {
			return
		}
		r.web.Send(ctx, subs, payload)
	}()

	wg.Wait()
}
