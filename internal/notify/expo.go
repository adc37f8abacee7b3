package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// DefaultExpoPushURL is the Expo push gateway.
const DefaultExpoPushURL = "https://exp.host/--/api/v2/push/send"

// TokenPruner removes permanently dead tokens after a dispatch pass.
type TokenPruner interface {
	DeleteDeviceTokens(ctx context.Context, tokens []string) error
}

type expoMessage struct {
	To    string            `json:"to"`
	Sound string            `json:"sound"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type expoTicket struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

type expoResponse struct {
	Data []expoTicket `json:"data"`
}

// ExpoDispatcher delivers payloads to the Expo push gateway in a single
// batched request. Per-token failures are classified from the returned
// tickets: DeviceNotRegistered means the token is permanently dead and is
// pruned; everything else is logged and ignored as transient.
type ExpoDispatcher struct {
	url    string
	client *http.Client
	pruner TokenPruner
}

func NewExpoDispatcher(url string, pruner TokenPruner) *ExpoDispatcher {
	if url == "" {
		url = DefaultExpoPushURL
	}
	return &ExpoDispatcher{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		pruner: pruner,
	}
}

func (d *ExpoDispatcher) Send(ctx context.Context, tokens []string, payload Payload) {
	if len(tokens) == 0 {
		return
	}

	messages := make([]expoMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, expoMessage{
			To:    token,
			Sound: "default",
			Title: payload.Title,
			Body:  payload.Body,
			Data:  payload.Data,
		})
	}

	body, err := json.Marshal(messages)
	if err != nil {
		log.Printf("[PUSH] [ERROR] expo payload marshal failed: %v", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		log.Printf("[PUSH] [ERROR] expo request build failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("[PUSH] [ERROR] expo push request failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[PUSH] [ERROR] expo push returned status %d", resp.StatusCode)
		return
	}

	var parsed expoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("[PUSH] [ERROR] expo response decode failed: %v", err)
		return
	}

	var dead []string
	for i, ticket := range parsed.Data {
		if i >= len(tokens) {
			break
		}
		if ticket.Status == "ok" {
			continue
		}
		log.Printf("[PUSH] [WARN] expo delivery failed for token %q: %s (%s)", tokens[i], ticket.Message, ticket.Details.Error)
		if ticket.Details.Error == "DeviceNotRegistered" {
			dead = append(dead, tokens[i])
		}
	}

	if len(dead) > 0 {
		if err := d.pruner.DeleteDeviceTokens(ctx, dead); err != nil {
			log.Printf("[PUSH] [ERROR] pruning dead device tokens failed: %v", err)
			return
		}
		log.Printf("[PUSH] [INFO] removed %d dead device tokens", len(dead))
	}
}
