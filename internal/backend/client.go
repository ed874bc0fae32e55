// Package backend is the typed REST client for the upstream messaging
// backend. Wire payloads are validated into domain models here, so internal
// logic never branches on untyped shapes.
package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"console-gateway/internal/models"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{},
	}
}

// --- Wire Structures ---

type wireMessage struct {
	MessageID string    `json:"messageId"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	MediaID   string    `json:"mediaId"`
	MimeType  string    `json:"mimeType"`
	Caption   string    `json:"caption"`
	Filename  string    `json:"filename"`
}

type wireAppointment struct {
	ID       int    `json:"id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Date     string `json:"appointment_date"`
	Time     string `json:"appointment_time"`
	Status   string `json:"status"`
	Notes    string `json:"notes"`
}

// MediaUpload is the backend's answer to a media upload.
type MediaUpload struct {
	MediaID string `json:"mediaId"`
}

// AppointmentRequest carries the mutable appointment fields.
type AppointmentRequest struct {
	UserID     string `json:"userId,omitempty"`
	Date       string `json:"appointmentDate,omitempty"`
	Time       string `json:"appointmentTime,omitempty"`
	UserName   string `json:"userName,omitempty"`
	Notes      string `json:"description,omitempty"`
	NotifyUser bool   `json:"notifyUser"`
}

func messageFromWire(w wireMessage) (models.Message, error) {
	kind, err := models.ParseKind(w.Type)
	if err != nil {
		return models.Message{}, err
	}
	status, err := models.ParseDeliveryStatus(w.Status)
	if err != nil {
		return models.Message{}, err
	}

	sender := models.SenderUser
	// The backend labels its own outbound side "bot".
	if w.Sender == "bot" || w.Sender == string(models.SenderOperator) {
		sender = models.SenderOperator
	}

	msg := models.Message{
		ID:        w.MessageID,
		Content:   w.Content,
		Sender:    sender,
		Kind:      kind,
		Status:    status,
		Timestamp: w.Timestamp,
	}
	if w.MediaID != "" {
		msg.Media = &models.MediaPreview{
			MediaID:  w.MediaID,
			MimeType: w.MimeType,
			Caption:  w.Caption,
			Filename: w.Filename,
		}
	}
	return msg, nil
}

func appointmentFromWire(w wireAppointment) (models.Appointment, error) {
	status, err := models.ParseAppointmentStatus(w.Status)
	if err != nil {
		return models.Appointment{}, fmt.Errorf("appointment %d: %w", w.ID, err)
	}
	return models.Appointment{
		ID:       w.ID,
		UserID:   w.UserID,
		UserName: w.UserName,
		Date:     w.Date,
		Time:     w.Time,
		Status:   status,
		Notes:    w.Notes,
	}, nil
}

// --- Helper Functions ---

func (c *Client) sendRequest(method, path string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return respBody, fmt.Errorf("backend error: %s - %s", resp.Status, string(respBody))
	}

	return respBody, nil
}

func (c *Client) getJSON(path string, out interface{}) error {
	resp, err := c.sendRequest("GET", path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(resp, out)
}

// --- Conversations ---

func (c *Client) GetConversations() ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := c.getJSON("/api/conversations", &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (c *Client) DeleteConversationHistory(userID string) error {
	_, err := c.sendRequest("DELETE", "/api/conversations/"+url.PathEscape(userID)+"/history", nil)
	return err
}

// --- Messages ---

func (c *Client) GetMessages(userID string) ([]models.Message, error) {
	var wires []wireMessage
	if err := c.getJSON("/api/messages/"+url.PathEscape(userID), &wires); err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(wires))
	for _, w := range wires {
		msg, err := messageFromWire(w)
		if err != nil {
			return nil, fmt.Errorf("message %s: %w", w.MessageID, err)
		}
		msg.ConversationID = userID
		messages = append(messages, msg)
	}
	return messages, nil
}

func (c *Client) SendMessage(userID, text string) (models.Message, error) {
	resp, err := c.sendRequest("POST", "/api/messages", map[string]string{
		"userId":  userID,
		"message": text,
	})
	if err != nil {
		return models.Message{}, err
	}

	var w wireMessage
	if err := json.Unmarshal(resp, &w); err != nil {
		return models.Message{}, err
	}
	msg, err := messageFromWire(w)
	if err != nil {
		return models.Message{}, err
	}
	msg.ConversationID = userID
	if msg.Content == "" {
		msg.Content = text
	}
	msg.Sender = models.SenderOperator
	return msg, nil
}

func (c *Client) GetMessageStatus(messageID string) (json.RawMessage, error) {
	resp, err := c.sendRequest("GET", "/api/messages/status/"+url.PathEscape(messageID), nil)
	return json.RawMessage(resp), err
}

func (c *Client) MarkMessageRead(messageID string) error {
	_, err := c.sendRequest("POST", "/api/messages/read/"+url.PathEscape(messageID), nil)
	return err
}

// --- Media ---

func (c *Client) UploadMedia(fileData []byte, mediaType, filename string) (*MediaUpload, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	part.Write(fileData)
	writer.WriteField("type", mediaType)
	writer.Close()

	req, err := http.NewRequest("POST", c.BaseURL+"/api/media/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("upload failed: %s - %s", resp.Status, string(respBody))
	}

	var upload MediaUpload
	if err := json.Unmarshal(respBody, &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

func (c *Client) SendMediaMessage(recipientID, mediaType, mediaID, caption, filename string) error {
	_, err := c.sendRequest("POST", "/api/media/send", map[string]string{
		"recipientId": recipientID,
		"mediaType":   mediaType,
		"mediaId":     mediaID,
		"caption":     caption,
		"filename":    filename,
	})
	return err
}

// DownloadMedia streams the media bytes; the caller must close the reader.
func (c *Client) DownloadMedia(mediaID string) (io.ReadCloser, string, error) {
	resp, err := c.HTTP.Get(c.BaseURL + "/api/media/" + url.PathEscape(mediaID) + "/download")
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, "", fmt.Errorf("download failed: %s - %s", resp.Status, string(body))
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) GetMediaInfo(mediaID string) (json.RawMessage, error) {
	resp, err := c.sendRequest("GET", "/api/media/"+url.PathEscape(mediaID)+"/info", nil)
	return json.RawMessage(resp), err
}

// --- Templates ---

func (c *Client) GetTemplates() ([]models.Template, error) {
	var templates []models.Template
	if err := c.getJSON("/api/templates", &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func (c *Client) SendTemplateMessage(templateName, recipient string, variables map[string]string) error {
	_, err := c.sendRequest("POST", "/api/templates/send", map[string]interface{}{
		"templateName": templateName,
		"recipient":    recipient,
		"variables":    variables,
	})
	return err
}

// --- Appointments ---

func (c *Client) appointments(path string) ([]models.Appointment, error) {
	var wires []wireAppointment
	if err := c.getJSON(path, &wires); err != nil {
		return nil, err
	}
	appointments := make([]models.Appointment, 0, len(wires))
	for _, w := range wires {
		a, err := appointmentFromWire(w)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, nil
}

func (c *Client) GetAppointments(page, limit int) ([]models.Appointment, error) {
	return c.appointments(fmt.Sprintf("/api/appointments?page=%d&limit=%d", page, limit))
}

func (c *Client) GetUserAppointments(userID string) ([]models.Appointment, error) {
	return c.appointments("/api/appointments/user/" + url.PathEscape(userID))
}

func (c *Client) GetAppointmentDetails(id int) (models.Appointment, error) {
	var w wireAppointment
	if err := c.getJSON("/api/appointments/"+strconv.Itoa(id), &w); err != nil {
		return models.Appointment{}, err
	}
	return appointmentFromWire(w)
}

func (c *Client) CreateAppointment(req AppointmentRequest) (models.Appointment, error) {
	resp, err := c.sendRequest("POST", "/api/appointments", req)
	if err != nil {
		return models.Appointment{}, err
	}
	var w wireAppointment
	if err := json.Unmarshal(resp, &w); err != nil {
		return models.Appointment{}, err
	}
	return appointmentFromWire(w)
}

func (c *Client) UpdateAppointment(id int, req AppointmentRequest) error {
	_, err := c.sendRequest("PUT", "/api/appointments/"+strconv.Itoa(id), req)
	return err
}

func (c *Client) CancelAppointment(id int, notifyUser bool) error {
	_, err := c.sendRequest("POST", "/api/appointments/"+strconv.Itoa(id)+"/cancel",
		map[string]bool{"notifyUser": notifyUser})
	return err
}

func (c *Client) SendAppointmentReminder(id int) error {
	_, err := c.sendRequest("POST", "/api/appointments/"+strconv.Itoa(id)+"/remind", nil)
	return err
}

func (c *Client) GetAppointmentSlots(date string) (json.RawMessage, error) {
	resp, err := c.sendRequest("GET", "/api/appointments/slots/"+url.PathEscape(date), nil)
	return json.RawMessage(resp), err
}

// --- NPS ---

func (c *Client) GetNpsStats(startDate, endDate string) (json.RawMessage, error) {
	query := url.Values{}
	if startDate != "" {
		query.Set("startDate", startDate)
	}
	if endDate != "" {
		query.Set("endDate", endDate)
	}
	path := "/api/nps/stats"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	resp, err := c.sendRequest("GET", path, nil)
	return json.RawMessage(resp), err
}

func (c *Client) GetNpsFeedbacks(category string, limit int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if category != "" {
		query.Set("category", category)
	}
	resp, err := c.sendRequest("GET", "/api/nps/feedbacks?"+query.Encode(), nil)
	return json.RawMessage(resp), err
}

func (c *Client) TriggerNpsSurvey(userID string) error {
	_, err := c.sendRequest("POST", "/api/nps/trigger/"+url.PathEscape(userID), nil)
	return err
}

func (c *Client) GetUserNpsResponses(userID string) (json.RawMessage, error) {
	resp, err := c.sendRequest("GET", "/api/nps/user/"+url.PathEscape(userID)+"/responses", nil)
	return json.RawMessage(resp), err
}

// --- Metrics & System ---

func (c *Client) GetMetrics() (json.RawMessage, error) {
	resp, err := c.sendRequest("GET", "/api/metrics", nil)
	return json.RawMessage(resp), err
}

func (c *Client) Health() (json.RawMessage, error) {
	resp, err := c.sendRequest("GET", "/health", nil)
	return json.RawMessage(resp), err
}
