package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type fakeTokenPruner struct {
	mu      sync.Mutex
	deleted [][]string
}

func (f *fakeTokenPruner) DeleteDeviceTokens(_ context.Context, tokens []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, tokens)
	return nil
}

func TestExpoDispatcherPrunesDeadTokensOnly(t *testing.T) {
	var received []expoMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		// Second token is permanently dead, third fails transiently.
		_, _ = w.Write([]byte(`{"data":[
			{"status":"ok"},
			{"status":"error","message":"not registered","details":{"error":"DeviceNotRegistered"}},
			{"status":"error","message":"rate limited","details":{"error":"MessageRateExceeded"}}
		]}`))
	}))
	defer server.Close()

	pruner := &fakeTokenPruner{}
	dispatcher := NewExpoDispatcher(server.URL, pruner)

	tokens := []string{"token-a", "token-b", "token-c"}
	dispatcher.Send(context.Background(), tokens, Payload{Title: "Order Confirmed!", Body: "body"})

	if len(received) != 3 {
		t.Fatalf("expected 3 messages in the batch, got %d", len(received))
	}
	if received[1].To != "token-b" || received[0].Title != "Order Confirmed!" {
		t.Fatalf("unexpected batch contents: %+v", received)
	}

	if len(pruner.deleted) != 1 {
		t.Fatalf("expected exactly one batch deletion, got %d", len(pruner.deleted))
	}
	if len(pruner.deleted[0]) != 1 || pruner.deleted[0][0] != "token-b" {
		t.Fatalf("expected only token-b pruned, got %v", pruner.deleted[0])
	}
}

func TestExpoDispatcherTransportFailureIsContained(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	pruner := &fakeTokenPruner{}
	dispatcher := NewExpoDispatcher(server.URL, pruner)

	// Must not panic and must not prune anything on a transport failure.
	dispatcher.Send(context.Background(), []string{"token-a"}, Payload{Title: "t", Body: "b"})

	if len(pruner.deleted) != 0 {
		t.Fatalf("no tokens should be pruned on transport failure, got %v", pruner.deleted)
	}
}

func TestExpoDispatcherNoTokensNoRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	dispatcher := NewExpoDispatcher(server.URL, &fakeTokenPruner{})
	dispatcher.Send(context.Background(), nil, Payload{Title: "t", Body: "b"})

	if called {
		t.Fatal("no request should be made for an empty batch")
	}
}
