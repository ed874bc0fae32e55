package models

import (
	"fmt"
	"time"
)

// Sender identifies which side of a conversation produced a message.
type Sender string

const (
	SenderUser     Sender = "user"
	SenderOperator Sender = "operator"
)

// DeliveryStatus is the lifecycle of an outbound message.
type DeliveryStatus string

const (
	StatusPending   DeliveryStatus = "pending"
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
	StatusFailed    DeliveryStatus = "failed"
)

// MessageKind tags the payload variant of a message.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindImage    MessageKind = "image"
	KindVideo    MessageKind = "video"
	KindAudio    MessageKind = "audio"
	KindDocument MessageKind = "document"
)

// AppointmentStatus is the appointment state machine. Operators may move
// confirmed appointments to cancelled; completion is backend-driven.
type AppointmentStatus string

const (
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Message is a chat message as the console sees it.
type Message struct {
	ID             string         `json:"messageId"`
	ConversationID string         `json:"conversationId"`
	Content        string         `json:"content"`
	Sender         Sender         `json:"sender"`
	Kind           MessageKind    `json:"type"`
	Status         DeliveryStatus `json:"status"`
	Timestamp      time.Time      `json:"timestamp"`
	Media          *MediaPreview  `json:"media,omitempty"`
}

// MediaPreview carries what the console needs to render an attachment.
type MediaPreview struct {
	MediaID  string `json:"mediaId"`
	MimeType string `json:"mimeType"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// Conversation is a summary row in the inbox. MessageCount and LastActive are
// display-derived; the backend owns the authoritative values.
type Conversation struct {
	ID           string    `json:"id"`
	PhoneNumber  string    `json:"phoneNumber"`
	LastActive   time.Time `json:"lastActive"`
	MessageCount int       `json:"messageCount"`
	IsOnline     bool      `json:"isOnline"`
	LastMessage  string    `json:"lastMessage"`
}

// Appointment mirrors the backend's appointment record.
type Appointment struct {
	ID       int               `json:"id"`
	UserID   string            `json:"user_id"`
	UserName string            `json:"user_name"`
	Date     string            `json:"appointment_date"` // ISO date, 2006-01-02
	Time     string            `json:"appointment_time"`
	Status   AppointmentStatus `json:"status"`
	Notes    string            `json:"notes"`
}

// Template is a backend-defined parameterized message format.
type Template struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"displayName"`
	Variables   []TemplateVariable `json:"variables"`
}

type TemplateVariable struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// DistributionList is a client-side named set of recipient numbers. Numbers
// are stored JSON-encoded in a single column.
type DistributionList struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Numbers   string    `gorm:"type:text" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (DistributionList) TableName() string {
	return "distribution_lists"
}

// SentMessage logs every outbound send, chat or broadcast.
type SentMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Recipient string    `gorm:"index;not null" json:"recipient"`
	Content   string    `gorm:"type:text" json:"content"`
	Kind      string    `gorm:"type:varchar(50)" json:"kind"`
	Status    string    `gorm:"type:varchar(20)" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SentMessage) TableName() string {
	return "sent_messages"
}

// BroadcastRun records one completed bulk dispatch.
type BroadcastRun struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TemplateName  string    `gorm:"type:varchar(255)" json:"template_name"`
	ListName      string    `gorm:"type:varchar(255)" json:"list_name"`
	Total         int       `json:"total"`
	Success       int       `json:"success"`
	Failed        int       `json:"failed"`
	FailedNumbers string    `gorm:"type:text" json:"failed_numbers"` // JSON array
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (BroadcastRun) TableName() string {
	return "broadcast_runs"
}

var validKinds = map[MessageKind]bool{
	KindText: true, KindImage: true, KindVideo: true, KindAudio: true, KindDocument: true,
}

var validStatuses = map[DeliveryStatus]bool{
	StatusPending: true, StatusSent: true, StatusDelivered: true, StatusRead: true, StatusFailed: true,
}

var validAppointmentStatuses = map[AppointmentStatus]bool{
	AppointmentConfirmed: true, AppointmentCompleted: true, AppointmentCancelled: true,
}

// ParseKind validates a wire message type. An empty value means text, the
// backend's default.
func ParseKind(s string) (MessageKind, error) {
	if s == "" {
		return KindText, nil
	}
	k := MessageKind(s)
	if !validKinds[k] {
		return "", fmt.Errorf("unknown message type %q", s)
	}
	return k, nil
}

func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	if s == "" {
		return StatusSent, nil
	}
	st := DeliveryStatus(s)
	if !validStatuses[st] {
		return "", fmt.Errorf("unknown delivery status %q", s)
	}
	return st, nil
}

func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	st := AppointmentStatus(s)
	if !validAppointmentStatuses[st] {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return st, nil
}
