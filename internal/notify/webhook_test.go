package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/lherron/fixq/internal/notify"
)

func TestNewWebhookNormalizesURLs(t *testing.T) {
	w := notify.NewWebhook([]string{
		"http://example.com/hook/",
		" http://example.com/hook ",
		"ftp://invalid.example.com/hook",
		"",
		"https://other.example.com",
		"http:///missing-host",
	})

	want := []string{"http://example.com/hook", "https://other.example.com"}
	if got := w.URLs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWebhookPostsToEveryURL(t *testing.T) {
	var mu sync.Mutex
	var received []notify.Notification

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		var n notify.Notification
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			t.Errorf("decode body: %v", err)
		}
		mu.Lock()
		received = append(received, n)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := notify.NewWebhook([]string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"})
	n := notify.Notification{Type: "info", Location: "settings-privacy", Message: "hello"}
	if err := w.Add(context.Background(), n); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if len(received) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(received))
	}
	if received[0] != n {
		t.Errorf("expected %+v, got %+v", n, received[0])
	}
}

func TestWebhookSwallowsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	url := srv.URL
	srv.Close()

	if err := notify.NewWebhook([]string{url}).Add(context.Background(), notify.Notification{Message: "x"}); err != nil {
		t.Fatalf("expected delivery failure to be logged only, got %v", err)
	}
}

func TestCollectorAndMulti(t *testing.T) {
	a, b := &notify.Collector{}, &notify.Collector{}
	sink := notify.Multi(a, notify.Discard, b)
	if err := sink.Add(context.Background(), notify.Notification{Message: "one"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if len(a.Notifications()) != 1 || len(b.Notifications()) != 1 {
		t.Errorf("expected both collectors to receive the notification")
	}
}
