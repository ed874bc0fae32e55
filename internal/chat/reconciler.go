package chat

import (
	"log"
	"sync"
	"time"

	"console-gateway/internal/models"

	"github.com/google/uuid"
)

// Sender performs the actual backend send.
type Sender interface {
	SendMessage(conversationID, text string) (models.Message, error)
}

// Notifier pushes console events to connected clients.
type Notifier interface {
	BroadcastEvent(eventType string, data interface{})
}

// Reconciler coordinates optimistic sends: insert a placeholder
// synchronously, dispatch the backend call, then replace or roll back once
// the response arrives. Each send carries its own uuid, so concurrent sends
// to one conversation resolve independently of response order.
type Reconciler struct {
	Store    *Store
	Sender   Sender
	Notifier Notifier

	// OnResult, when set, receives the outcome of every resolved send. The
	// error is nil on success.
	OnResult func(conversationID, content string, err error)

	wg sync.WaitGroup
}

func NewReconciler(store *Store, sender Sender, notifier Notifier) *Reconciler {
	return &Reconciler{Store: store, Sender: sender, Notifier: notifier}
}

// Send inserts the placeholder and returns it immediately; the backend call
// runs in the background. There is no automatic retry and no cancellation of
// an in-flight send.
func (r *Reconciler) Send(conversationID, text string) models.Message {
	placeholder := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        text,
		Sender:         models.SenderOperator,
		Kind:           models.KindText,
		Status:         models.StatusPending,
		Timestamp:      time.Now(),
	}

	r.Store.ApplyOptimistic(conversationID, placeholder)
	r.notify("message_pending", placeholder)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.resolve(conversationID, placeholder)
	}()

	return placeholder
}

func (r *Reconciler) resolve(conversationID string, placeholder models.Message) {
	server, err := r.Sender.SendMessage(conversationID, placeholder.Content)
	if err != nil {
		log.Printf("Send to %s failed, rolling back %s: %v", conversationID, placeholder.ID, err)
		r.Store.ReconcileFailure(conversationID, placeholder.ID)
		r.notify("message_failed", map[string]interface{}{
			"conversationId": conversationID,
			"tempId":         placeholder.ID,
			"error":          err.Error(),
		})
		r.report(conversationID, placeholder.Content, err)
		return
	}

	server.ConversationID = conversationID
	if server.Status == "" || server.Status == models.StatusPending {
		server.Status = models.StatusSent
	}
	if !r.Store.ReconcileSuccess(conversationID, placeholder.ID, server) {
		log.Printf("Placeholder %s gone before reconciliation (history purged?)", placeholder.ID)
	}
	r.notify("message_sent", server)
	r.report(conversationID, placeholder.Content, nil)
}

func (r *Reconciler) report(conversationID, content string, err error) {
	if r.OnResult != nil {
		r.OnResult(conversationID, content, err)
	}
}

func (r *Reconciler) notify(eventType string, data interface{}) {
	if r.Notifier != nil {
		r.Notifier.BroadcastEvent(eventType, data)
	}
}

// Wait blocks until every in-flight send has resolved. Used on shutdown and
// in tests.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
