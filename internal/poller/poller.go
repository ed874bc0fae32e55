// Package poller periodically refreshes the conversation inbox from the
// backend and pushes the result to connected console clients.
package poller

import (
	"log"
	"time"

	"console-gateway/internal/models"
)

// Source provides the current conversation listing.
type Source interface {
	GetConversations() ([]models.Conversation, error)
}

// Notifier receives each refreshed listing.
type Notifier interface {
	BroadcastEvent(eventType string, data interface{})
}

type Poller struct {
	Source   Source
	Notifier Notifier
	Interval time.Duration
}

func New(source Source, notifier Notifier, interval time.Duration) *Poller {
	return &Poller{Source: source, Notifier: notifier, Interval: interval}
}

// Run polls until stop is closed. Backend errors are logged and the next
// tick retries; a flaky backend must not kill the refresh loop.
func (p *Poller) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	conversations, err := p.Source.GetConversations()
	if err != nil {
		log.Printf("Error polling conversations: %v", err)
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	p.Notifier.BroadcastEvent("conversations", conversations)
}
