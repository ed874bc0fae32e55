package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"console-gateway/internal/models"
)

func TestGetMessagesValidatesWire(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/messages/33612345678" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"messageId":"m1","content":"Bonjour","sender":"user","type":"text","status":"read","timestamp":"2026-06-01T10:00:00Z"},
			{"messageId":"m2","content":"Voici la photo","sender":"bot","type":"image","status":"delivered","timestamp":"2026-06-01T10:01:00Z","mediaId":"med-1","mimeType":"image/jpeg","caption":"Cabine balcon"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	messages, err := client.GetMessages("33612345678")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}

	if len(messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(messages))
	}
	if messages[0].Sender != models.SenderUser || messages[0].Kind != models.KindText {
		t.Errorf("First message mistyped: %+v", messages[0])
	}
	if messages[1].Sender != models.SenderOperator {
		t.Errorf("Backend 'bot' sender should map to operator, got %s", messages[1].Sender)
	}
	if messages[1].Media == nil || messages[1].Media.MediaID != "med-1" {
		t.Errorf("Media preview not decoded: %+v", messages[1].Media)
	}
	if messages[0].ConversationID != "33612345678" {
		t.Errorf("ConversationID not stamped: %+v", messages[0])
	}
}

func TestGetMessagesRejectsUnknownKind(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"messageId":"m1","type":"hologram","sender":"user"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetMessages("u"); err == nil {
		t.Error("Unknown message type must be rejected at the client boundary")
	}
}

func TestSendMessageReturnsTypedMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/messages" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["userId"] != "33612345678" || body["message"] != "Bonjour" {
			t.Errorf("Unexpected payload: %v", body)
		}
		w.Write([]byte(`{"messageId":"srv-1","content":"Bonjour","sender":"bot","type":"text","status":"sent","timestamp":"2026-06-01T10:00:00Z"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	msg, err := client.SendMessage("33612345678", "Bonjour")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.ID != "srv-1" || msg.Status != models.StatusSent || msg.Sender != models.SenderOperator {
		t.Errorf("Unexpected message: %+v", msg)
	}
}

func TestNon2xxBecomesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "user not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetMessages("missing"); err == nil {
		t.Error("Expected error for 404 response")
	}
}

func TestGetAppointmentsRejectsUnknownStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"user_name":"John Doe","appointment_date":"2026-06-15","appointment_time":"10:00","status":"maybe"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.GetAppointments(0, 20); err == nil {
		t.Error("Unknown appointment status must be rejected")
	}
}

func TestGetTemplates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"welcome","displayName":"Message de bienvenue","variables":[{"name":"customerName","label":"Nom du client","type":"text"}]}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	templates, err := client.GetTemplates()
	if err != nil {
		t.Fatalf("GetTemplates failed: %v", err)
	}
	if len(templates) != 1 || templates[0].Name != "welcome" || len(templates[0].Variables) != 1 {
		t.Errorf("Unexpected templates: %+v", templates)
	}
}
