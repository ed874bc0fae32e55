package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"console-gateway/internal/backend"
	"console-gateway/internal/broadcast"
	"console-gateway/internal/database"
	"console-gateway/internal/distribution"
	"console-gateway/internal/models"
	"console-gateway/internal/ws"

	"github.com/gin-gonic/gin"
)

type BroadcastHandler struct {
	Client     *backend.Client
	Lists      distribution.Repository
	Dispatcher *broadcast.Dispatcher
	Hub        *ws.Hub
}

func NewBroadcastHandler(client *backend.Client, lists distribution.Repository, dispatcher *broadcast.Dispatcher, hub *ws.Hub) *BroadcastHandler {
	return &BroadcastHandler{Client: client, Lists: lists, Dispatcher: dispatcher, Hub: hub}
}

func (h *BroadcastHandler) GetTemplates(c *gin.Context) {
	templates, err := h.Client.GetTemplates()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if templates == nil {
		templates = []models.Template{}
	}
	c.JSON(http.StatusOK, templates)
}

type TemplateSendRequest struct {
	TemplateName string            `json:"templateName" binding:"required"`
	Recipient    string            `json:"recipient" binding:"required"`
	Variables    map[string]string `json:"variables"`
}

// SendTemplate sends one template message to one recipient, validating the
// variable bindings against the template definition first.
func (h *BroadcastHandler) SendTemplate(c *gin.Context) {
	var req TemplateSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tmpl, err := h.findTemplate(req.TemplateName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := broadcast.ValidateVariables(tmpl, req.Variables); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipient, err := distribution.NormalizeNumber(req.Recipient)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Client.SendTemplateMessage(req.TemplateName, recipient, req.Variables); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	recordSentMessage(recipient, req.TemplateName, "template", "sent")

	c.JSON(http.StatusOK, gin.H{"status": "Template sent", "recipient": recipient})
}

type BroadcastRequest struct {
	TemplateName string            `json:"templateName" binding:"required"`
	ListID       uint              `json:"listId" binding:"required"`
	Variables    map[string]string `json:"variables"`
}

// SendBroadcast dispatches a template to every number of a distribution
// list, sequentially and with the configured delay between sends. Progress
// is pushed to console clients after every recipient.
func (h *BroadcastHandler) SendBroadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := h.Lists.Get(req.ListID)
	if err != nil {
		if errors.Is(err, distribution.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(list.Numbers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "distribution list has no numbers"})
		return
	}

	tmpl, err := h.findTemplate(req.TemplateName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	dispatcher := *h.Dispatcher
	send := dispatcher.Send
	dispatcher.Send = func(templateName, recipient string, variables map[string]string) error {
		err := send(templateName, recipient, variables)
		if err == nil {
			recordSentMessage(recipient, templateName, "template", "sent")
		} else {
			recordSentMessage(recipient, templateName, "template", "failed")
		}
		return err
	}
	dispatcher.OnProgress = func(p broadcast.Progress) {
		if h.Hub != nil {
			h.Hub.BroadcastEvent("broadcast_progress", p)
		}
	}

	result, err := dispatcher.Dispatch(list.Numbers, tmpl, req.Variables)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.recordRun(tmpl.Name, *list, *result)

	c.JSON(http.StatusOK, gin.H{
		"listName":      list.Name,
		"total":         len(list.Numbers),
		"success":       result.Success,
		"failed":        result.Failed,
		"failedNumbers": result.FailedNumbers,
	})
}

// GetBroadcastHistory lists past runs, newest first.
func (h *BroadcastHandler) GetBroadcastHistory(c *gin.Context) {
	if database.GormDB == nil {
		c.JSON(http.StatusOK, []models.BroadcastRun{})
		return
	}
	var runs []models.BroadcastRun
	if err := database.GormDB.Order("created_at desc").Limit(50).Find(&runs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *BroadcastHandler) findTemplate(name string) (models.Template, error) {
	templates, err := h.Client.GetTemplates()
	if err != nil {
		return models.Template{}, err
	}
	for _, tmpl := range templates {
		if tmpl.Name == name {
			return tmpl, nil
		}
	}
	return models.Template{}, fmt.Errorf("unknown template %q", name)
}

func (h *BroadcastHandler) recordRun(templateName string, list distribution.List, result broadcast.Result) {
	if database.GormDB == nil {
		return
	}
	failed, _ := json.Marshal(result.FailedNumbers)
	run := models.BroadcastRun{
		TemplateName:  templateName,
		ListName:      list.Name,
		Total:         len(list.Numbers),
		Success:       result.Success,
		Failed:        result.Failed,
		FailedNumbers: string(failed),
	}
	if err := database.GormDB.Create(&run).Error; err != nil {
		log.Printf("Error recording broadcast run: %v", err)
	}
}
