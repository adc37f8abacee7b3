package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"backend/internal/models"
)

// SubscriptionPruner removes permanently expired subscriptions after a
// dispatch pass.
type SubscriptionPruner interface {
	DeleteSubscriptions(ctx context.Context, endpoints []string) error
}

// VapidConfig carries the web-push signing material.
type VapidConfig struct {
	Subject    string
	PublicKey  string
	PrivateKey string
}

type webPushSend func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

type webPushBody struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Icon  string            `json:"icon"`
	Badge string            `json:"badge"`
}

// WebPushDispatcher delivers payloads to browser push endpoints. Each
// endpoint gets its own request; one failing endpoint never blocks the
// rest. Endpoints the push service reports gone (404/410) are pruned in a
// single batch after the pass.
type WebPushDispatcher struct {
	vapid  VapidConfig
	pruner SubscriptionPruner
	send   webPushSend
}

func NewWebPushDispatcher(vapid VapidConfig, pruner SubscriptionPruner) *WebPushDispatcher {
	return &WebPushDispatcher{
		vapid:  vapid,
		pruner: pruner,
		send:   webpush.SendNotificationWithContext,
	}
}

func (d *WebPushDispatcher) Send(ctx context.Context, subs []models.WebPushSubscription, payload Payload) {
	if len(subs) == 0 {
		return
	}
	if d.vapid.PublicKey == "" || d.vapid.PrivateKey == "" {
		log.Println("[PUSH] [WARN] web push skipped: VAPID keys not configured")
		return
	}

	message, err := json.Marshal(webPushBody{
		Title: payload.Title,
		Body:  payload.Body,
		Data:  payload.Data,
		Icon:  "/icons/icon-192x192.png",
		Badge: "/icons/icon-72x72.png",
	})
	if err != nil {
		log.Printf("[PUSH] [ERROR] web push payload marshal failed: %v", err)
		return
	}

	opts := &webpush.Options{
		Subscriber:      d.vapid.Subject,
		VAPIDPublicKey:  d.vapid.PublicKey,
		VAPIDPrivateKey: d.vapid.PrivateKey,
		TTL:             60,
	}

	var expired []string
	for _, sub := range subs {
		resp, err := d.send(ctx, message, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dhKey,
				Auth:   sub.AuthKey,
			},
		}, opts)
		if err != nil {
			log.Printf("[PUSH] [WARN] web push delivery failed for %q: %v", sub.Endpoint, err)
			continue
		}
		if subscriptionGone(resp.StatusCode) {
			log.Printf("[PUSH] [WARN] web push endpoint gone (%d): %q", resp.StatusCode, sub.Endpoint)
			expired = append(expired, sub.Endpoint)
		} else if resp.StatusCode >= 400 {
			log.Printf("[PUSH] [WARN] web push returned status %d for %q", resp.StatusCode, sub.Endpoint)
		}
		resp.Body.Close()
	}

	if len(expired) > 0 {
		if err := d.pruner.DeleteSubscriptions(ctx, expired); err != nil {
			log.Printf("[PUSH] [ERROR] pruning expired subscriptions failed: %v", err)
			return
		}
		log.Printf("[PUSH] [INFO] removed %d expired web push subscriptions", len(expired))
	}
}

// subscriptionGone reports whether the push service says the subscription
// no longer exists. 404 and 410 are the permanent cases; anything else is
// treated as transient.
func subscriptionGone(statusCode int) bool {
	return statusCode == http.StatusNotFound || statusCode == http.StatusGone
}
