package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout     = 500 * time.Millisecond
	defaultConcurrency = 4
)

// Webhook POSTs each notification as JSON to every configured URL.
// Delivery failures are logged, never returned.
type Webhook struct {
	urls        []string
	client      *http.Client
	concurrency int
}

// NewWebhook creates a Webhook for urls. Blank, duplicate and non-http(s)
// URLs are dropped.
func NewWebhook(urls []string) *Webhook {
	return &Webhook{
		urls:        normalizeURLs(urls),
		client:      &http.Client{Timeout: defaultTimeout},
		concurrency: defaultConcurrency,
	}
}

// URLs returns the normalized delivery targets.
func (w *Webhook) URLs() []string {
	return append([]string(nil), w.urls...)
}

func (w *Webhook) Add(ctx context.Context, n Notification) error {
	if len(w.urls) == 0 {
		return nil
	}

	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	workers := w.concurrency
	if len(w.urls) < workers {
		workers = len(w.urls)
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for endpoint := range jobs {
				w.send(ctx, endpoint, body)
			}
		}()
	}

	for _, endpoint := range w.urls {
		jobs <- endpoint
	}
	close(jobs)
	wg.Wait()
	return nil
}

func (w *Webhook) send(ctx context.Context, endpoint string, body []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		log.Printf("notify: build request %q failed: %v", endpoint, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		log.Printf("notify: request to %q failed: %v", endpoint, err)
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("notify: %q responded %s", endpoint, resp.Status)
	}
}

func normalizeURLs(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	var normalized []string

	for _, raw := range urls {
		trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
		if trimmed == "" {
			continue
		}
		if !isValidURL(trimmed) {
			log.Printf("notify: skipping invalid url %q", trimmed)
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized
}

func isValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
