// Package chat owns the console-side message cache and the optimistic send
// flow: a placeholder is visible immediately, then replaced by the server
// message or rolled back.
package chat

import (
	"sync"

	"console-gateway/internal/models"
)

// ApplyOptimistic appends a placeholder to a conversation's message list.
// The input slice is not mutated.
func ApplyOptimistic(list []models.Message, msg models.Message) []models.Message {
	out := make([]models.Message, len(list), len(list)+1)
	copy(out, list)
	return append(out, msg)
}

// ReconcileSuccess replaces the placeholder identified by tempID with the
// server-confirmed message, preserving its position. Unknown tempIDs leave
// the list unchanged.
func ReconcileSuccess(list []models.Message, tempID string, server models.Message) []models.Message {
	out := make([]models.Message, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == tempID {
			out[i] = server
			break
		}
	}
	return out
}

// ReconcileFailure removes the placeholder identified by tempID, restoring
// the pre-send list.
func ReconcileFailure(list []models.Message, tempID string) []models.Message {
	out := make([]models.Message, 0, len(list))
	for _, m := range list {
		if m.ID == tempID {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Store keeps per-conversation message lists. Lists are keyed strictly by
// conversation id, so a send resolving after the operator switched away still
// lands on its own conversation.
type Store struct {
	mu             sync.Mutex
	byConversation map[string][]models.Message
}

func NewStore() *Store {
	return &Store{byConversation: make(map[string][]models.Message)}
}

// Messages returns a copy of the conversation's current list.
func (s *Store) Messages(conversationID string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byConversation[conversationID]
	out := make([]models.Message, len(list))
	copy(out, list)
	return out
}

func (s *Store) ApplyOptimistic(conversationID string, msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byConversation[conversationID] = ApplyOptimistic(s.byConversation[conversationID], msg)
}

// ReconcileSuccess reports whether the placeholder was found.
func (s *Store) ReconcileSuccess(conversationID, tempID string, server models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byConversation[conversationID]
	found := false
	for _, m := range list {
		if m.ID == tempID {
			found = true
			break
		}
	}
	s.byConversation[conversationID] = ReconcileSuccess(list, tempID, server)
	return found
}

func (s *Store) ReconcileFailure(conversationID, tempID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byConversation[conversationID] = ReconcileFailure(s.byConversation[conversationID], tempID)
}

// Merge adopts a freshly fetched list as the new truth, re-appending any
// still-pending placeholders so a poll landing mid-send cannot drop an
// unconfirmed message. Last fetch wins for everything else.
func (s *Store) Merge(conversationID string, fetched []models.Message) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]models.Message, len(fetched))
	copy(merged, fetched)
	for _, m := range s.byConversation[conversationID] {
		if m.Status == models.StatusPending {
			merged = append(merged, m)
		}
	}
	s.byConversation[conversationID] = merged

	out := make([]models.Message, len(merged))
	copy(out, merged)
	return out
}

// Clear drops a conversation's cached list, used after a history purge.
func (s *Store) Clear(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byConversation, conversationID)
}
