package chat

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"console-gateway/internal/models"
)

type mockSender struct {
	mu      sync.Mutex
	calls   int
	respond func(conversationID, text string) (models.Message, error)
}

func (m *mockSender) SendMessage(conversationID, text string) (models.Message, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.respond(conversationID, text)
}

func existing(id, content string) models.Message {
	return models.Message{
		ID:        id,
		Content:   content,
		Sender:    models.SenderUser,
		Kind:      models.KindText,
		Status:    models.StatusRead,
		Timestamp: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSendInsertsPlaceholderImmediately(t *testing.T) {
	store := NewStore()
	block := make(chan struct{})
	sender := &mockSender{respond: func(_, text string) (models.Message, error) {
		<-block
		return models.Message{ID: "srv-1", Content: text}, nil
	}}
	r := NewReconciler(store, sender, nil)

	placeholder := r.Send("33612345678", "Bonjour")

	msgs := store.Messages("33612345678")
	if len(msgs) != 1 {
		t.Fatalf("Placeholder should be visible before the send resolves, got %d messages", len(msgs))
	}
	if msgs[0].ID != placeholder.ID || msgs[0].Status != models.StatusPending {
		t.Errorf("Unexpected placeholder: %+v", msgs[0])
	}
	if msgs[0].Sender != models.SenderOperator {
		t.Errorf("Placeholder sender should be operator, got %s", msgs[0].Sender)
	}

	close(block)
	r.Wait()

	msgs = store.Messages("33612345678")
	if len(msgs) != 1 || msgs[0].ID != "srv-1" {
		t.Fatalf("Placeholder not replaced by server message: %+v", msgs)
	}
	if msgs[0].Status != models.StatusSent {
		t.Errorf("Reconciled message should be sent, got %s", msgs[0].Status)
	}
}

func TestSendFailureRollsBack(t *testing.T) {
	store := NewStore()
	store.Merge("33612345678", []models.Message{existing("m1", "Bonjour"), existing("m2", "Des disponibilités en juillet ?")})
	before := store.Messages("33612345678")

	sender := &mockSender{respond: func(_, _ string) (models.Message, error) {
		return models.Message{}, errors.New("network unreachable")
	}}
	r := NewReconciler(store, sender, nil)

	r.Send("33612345678", "Je vérifie cela")
	r.Wait()

	after := store.Messages("33612345678")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Rollback should restore the pre-send list.\nbefore: %+v\nafter:  %+v", before, after)
	}
}

func TestConcurrentSendsResolveOutOfOrder(t *testing.T) {
	store := NewStore()
	first := make(chan struct{})
	second := make(chan struct{})

	sender := &mockSender{respond: func(_, text string) (models.Message, error) {
		switch text {
		case "premier":
			<-first
			return models.Message{ID: "srv-premier", Content: text}, nil
		default:
			<-second
			return models.Message{ID: "srv-second", Content: text}, nil
		}
	}}
	r := NewReconciler(store, sender, nil)

	p1 := r.Send("conv", "premier")
	p2 := r.Send("conv", "second")
	if p1.ID == p2.ID {
		t.Fatal("Placeholders must get distinct local ids")
	}

	// Second response arrives first.
	close(second)
	deadline := time.Now().Add(2 * time.Second)
	for {
		msgs := store.Messages("conv")
		if len(msgs) == 2 && msgs[1].ID == "srv-second" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Second response never reconciled: %+v", msgs)
		}
		time.Sleep(time.Millisecond)
	}

	// First placeholder still pending in position 0.
	msgs := store.Messages("conv")
	if msgs[0].ID != p1.ID || msgs[0].Status != models.StatusPending {
		t.Fatalf("First placeholder disturbed by second response: %+v", msgs)
	}

	close(first)
	r.Wait()

	msgs = store.Messages("conv")
	if msgs[0].ID != "srv-premier" || msgs[1].ID != "srv-second" {
		t.Errorf("Cross-assigned reconciliation: %+v", msgs)
	}
	if msgs[0].Content != "premier" || msgs[1].Content != "second" {
		t.Errorf("Message contents swapped: %+v", msgs)
	}
}

func TestSendReportsResultOutcome(t *testing.T) {
	store := NewStore()
	sender := &mockSender{respond: func(_, text string) (models.Message, error) {
		if text == "échec" {
			return models.Message{}, errors.New("backend down")
		}
		return models.Message{ID: "srv-1", Content: text}, nil
	}}
	r := NewReconciler(store, sender, nil)

	var mu sync.Mutex
	results := make(map[string]error)
	r.OnResult = func(_, content string, err error) {
		mu.Lock()
		results[content] = err
		mu.Unlock()
	}

	r.Send("conv", "bonjour")
	r.Send("conv", "échec")
	r.Wait()

	if err, ok := results["bonjour"]; !ok || err != nil {
		t.Errorf("Successful send should report a nil error, got %v (reported %v)", err, ok)
	}
	if err, ok := results["échec"]; !ok || err == nil {
		t.Error("Failed send must report its error")
	} else if err.Error() != "backend down" {
		t.Errorf("Unexpected reported error: %v", err)
	}
}

func TestMergeKeepsPendingPlaceholders(t *testing.T) {
	store := NewStore()
	block := make(chan struct{})
	sender := &mockSender{respond: func(_, text string) (models.Message, error) {
		<-block
		return models.Message{ID: "srv-1", Content: text}, nil
	}}
	r := NewReconciler(store, sender, nil)

	placeholder := r.Send("conv", "en attente")

	// A poll lands while the send is still in flight.
	fetched := []models.Message{existing("m1", "Bonjour")}
	merged := store.Merge("conv", fetched)

	if len(merged) != 2 {
		t.Fatalf("Merge dropped the pending placeholder: %+v", merged)
	}
	if merged[1].ID != placeholder.ID {
		t.Errorf("Placeholder should survive the merge, got %+v", merged[1])
	}

	close(block)
	r.Wait()
}

func TestMergeLastFetchWins(t *testing.T) {
	store := NewStore()
	store.Merge("conv", []models.Message{existing("m1", "ancien"), existing("m2", "périmé")})

	fresh := []models.Message{existing("m1", "ancien"), existing("m3", "nouveau")}
	merged := store.Merge("conv", fresh)

	if !reflect.DeepEqual(merged, fresh) {
		t.Errorf("Non-pending cache entries must be superseded by the fetch: %+v", merged)
	}
}

func TestReducersArePure(t *testing.T) {
	list := []models.Message{existing("m1", "Bonjour")}
	placeholder := models.Message{ID: "tmp", Status: models.StatusPending}

	withPlaceholder := ApplyOptimistic(list, placeholder)
	if len(list) != 1 {
		t.Error("ApplyOptimistic mutated its input")
	}

	ReconcileSuccess(withPlaceholder, "tmp", existing("srv", "ok"))
	if withPlaceholder[1].ID != "tmp" {
		t.Error("ReconcileSuccess mutated its input")
	}

	ReconcileFailure(withPlaceholder, "tmp")
	if len(withPlaceholder) != 2 {
		t.Error("ReconcileFailure mutated its input")
	}
}

func TestReconcileUnknownTempIDIsNoOp(t *testing.T) {
	list := []models.Message{existing("m1", "Bonjour")}
	out := ReconcileSuccess(list, "missing", existing("srv", "ok"))
	if !reflect.DeepEqual(out, list) {
		t.Errorf("Unknown temp id should leave the list unchanged: %+v", out)
	}
}
