package api

import (
	"log"
	"net/http"

	"console-gateway/internal/backend"
	"console-gateway/internal/chat"
	"console-gateway/internal/database"
	"console-gateway/internal/format"
	"console-gateway/internal/models"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	Client     *backend.Client
	Store      *chat.Store
	Reconciler *chat.Reconciler
}

func NewMessageHandler(client *backend.Client, store *chat.Store, reconciler *chat.Reconciler) *MessageHandler {
	if reconciler != nil {
		// Log each send once its outcome is known, so the send log can tell
		// delivered messages from rolled-back ones.
		reconciler.OnResult = func(conversationID, content string, err error) {
			status := "sent"
			if err != nil {
				status = "failed"
			}
			recordSentMessage(conversationID, content, "text", status)
		}
	}
	return &MessageHandler{Client: client, Store: store, Reconciler: reconciler}
}

func (h *MessageHandler) GetConversations(c *gin.Context) {
	conversations, err := h.Client.GetConversations()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}
	c.JSON(http.StatusOK, conversations)
}

func (h *MessageHandler) DeleteConversationHistory(c *gin.Context) {
	userID := c.Param("userId")
	if err := h.Client.DeleteConversationHistory(userID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.Store.Clear(userID)
	c.JSON(http.StatusOK, gin.H{"status": "History deleted"})
}

// GetMessages fetches from the backend and merges in any still-pending
// optimistic placeholders, so an in-flight send stays visible across
// refreshes.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID := c.Param("userId")
	fetched, err := h.Client.GetMessages(userID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Store.Merge(userID, fetched))
}

type SendRequest struct {
	UserID  string `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SendMessage inserts the optimistic placeholder and returns it right away;
// reconciliation happens in the background and is pushed over the websocket.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	placeholder := h.Reconciler.Send(req.UserID, req.Message)
	c.JSON(http.StatusAccepted, placeholder)
}

func (h *MessageHandler) GetMessageStatus(c *gin.Context) {
	status, err := h.Client.GetMessageStatus(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", status)
}

func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	if err := h.Client.MarkMessageRead(c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Message marked as read"})
}

type FormatRequest struct {
	Content string `json:"content"`
}

// FormatMessage returns the display blocks for a raw message body.
func (h *MessageHandler) FormatMessage(c *gin.Context) {
	var req FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	blocks := format.Format(req.Content)
	if blocks == nil {
		blocks = []format.Block{}
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

// recordSentMessage logs an outbound send, fire and forget.
func recordSentMessage(recipient, content, kind, status string) {
	db := database.GormDB
	if db == nil {
		return
	}
	go func() {
		entry := models.SentMessage{
			Recipient: recipient,
			Content:   content,
			Kind:      kind,
			Status:    status,
		}
		if err := db.Create(&entry).Error; err != nil {
			log.Printf("Error logging sent message: %v", err)
		}
	}()
}
