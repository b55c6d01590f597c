package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/salesmesh/config"
)

func TestSlackSink_PostsWebhookPayload(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewSlackSink(config.SlackConfig{
		WebhookURL: srv.URL,
		Channel:    "wd-leads",
		Username:   "Winnicki Digital Bot",
		IconEmoji:  ":globe_with_meridians:",
	})

	err := sink.Send(context.Background(), Report{Summary: "🎯 *New Lead: Acme*"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if payload["text"] != "🎯 *New Lead: Acme*" {
		t.Errorf("unexpected text: %q", payload["text"])
	}
	if payload["username"] != "Winnicki Digital Bot" {
		t.Errorf("unexpected username: %q", payload["username"])
	}
	if payload["icon_emoji"] != ":globe_with_meridians:" {
		t.Errorf("unexpected icon: %q", payload["icon_emoji"])
	}
	if payload["channel"] != "wd-leads" {
		t.Errorf("unexpected channel: %q", payload["channel"])
	}
}

func TestSlackSink_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	sink := NewSlackSink(config.SlackConfig{WebhookURL: srv.URL})

	err := sink.Send(context.Background(), Report{Summary: "hello"})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestSlackSink_OmitsEmptyChannel(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
	}))
	defer srv.Close()

	sink := NewSlackSink(config.SlackConfig{WebhookURL: srv.URL})
	if err := sink.Send(context.Background(), Report{Summary: "hi"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, ok := payload["channel"]; ok {
		t.Error("expected channel key to be omitted when unset")
	}
}
