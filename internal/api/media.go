package api

import (
	"io"
	"net/http"

	"console-gateway/internal/backend"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	Client *backend.Client
}

func NewMediaHandler(client *backend.Client) *MediaHandler {
	return &MediaHandler{Client: client}
}

// UploadMedia forwards a multipart upload to the backend and returns the
// media ID to attach to a later send.
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	mediaType := c.PostForm("type")
	if mediaType == "" {
		mediaType = "document"
	}

	upload, err := h.Client.UploadMedia(data, mediaType, header.Filename)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, upload)
}

type MediaSendRequest struct {
	RecipientID string `json:"recipientId" binding:"required"`
	MediaID     string `json:"mediaId" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Caption     string `json:"caption"`
	Filename    string `json:"filename"`
}

func (h *MediaHandler) SendMedia(c *gin.Context) {
	var req MediaSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Client.SendMediaMessage(req.RecipientID, req.Type, req.MediaID, req.Caption, req.Filename); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	recordSentMessage(req.RecipientID, req.MediaID, req.Type, "sent")

	c.JSON(http.StatusOK, gin.H{"status": "Media sent"})
}

// DownloadMedia streams media bytes from the backend through to the
// console, preserving the content type.
func (h *MediaHandler) DownloadMedia(c *gin.Context) {
	body, contentType, err := h.Client.DownloadMedia(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, body)
}

func (h *MediaHandler) GetMediaInfo(c *gin.Context) {
	info, err := h.Client.GetMediaInfo(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", info)
}
