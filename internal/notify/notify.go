// Package notify delivers one-time user-facing notifications raised by
// upgrade tasks.
package notify

import (
	"context"
	"sync"
)

// Notification is one message for the site administrator.
type Notification struct {
	Type        string `json:"type" yaml:"type"`
	Location    string `json:"location" yaml:"location"`
	Message     string `json:"message" yaml:"message"`
	Dismissible bool   `json:"dismissible" yaml:"dismissible"`
}

// Sink accepts notifications. Implementations must not block the caller on
// slow delivery for longer than their own timeout.
type Sink interface {
	Add(ctx context.Context, n Notification) error
}

type discard struct{}

func (discard) Add(context.Context, Notification) error { return nil }

// Discard drops every notification.
var Discard Sink = discard{}

// Collector keeps notifications in memory so they can be reported after a run.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

func (c *Collector) Add(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
	return nil
}

// Notifications returns a copy of everything collected.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

type multi []Sink

func (m multi) Add(ctx context.Context, n Notification) error {
	for _, s := range m {
		if err := s.Add(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Multi fans a notification out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}
