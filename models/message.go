package models

import "time"

// Message is one entry of an open conversation's log
type Message struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Sender        string    `json:"sender"`
	DisplaySender string    `json:"displaySender"`
	MediaURL      string    `json:"media_url,omitempty"`
	SentAt        time.Time `json:"sent_at"`
	IsOptimistic  bool      `json:"isOptimistic,omitempty"`
}

// MediaPlaceholder marks an attachment that has not been uploaded yet
const MediaPlaceholder = "placeholder"

// HistoryEntry is one message as returned by the chat history endpoint.
// The backend has used two field names for most values over time.
type HistoryEntry struct {
	ID        FlexibleID `json:"id"`
	Sender    string     `json:"sender"`
	FromUser  string     `json:"from_user"`
	Content   string     `json:"content"`
	Message   string     `json:"message"`
	MediaURL  *string    `json:"media_url"`
	SentAt    string     `json:"sent_at"`
	Timestamp string     `json:"timestamp"`
}

// SentMessage is the canonical representation returned after a send
type SentMessage struct {
	ID       FlexibleID `json:"id"`
	Content  string     `json:"content"`
	Sender   string     `json:"sender,omitempty"`
	Receiver string     `json:"receiver,omitempty"`
	MediaURL *string    `json:"media_url"`
	SentAt   string     `json:"sent_at"`
}

// SendResponse wraps SentMessage the way the send endpoint does
type SendResponse struct {
	Data SentMessage `json:"data"`
}

// ChatPush is the payload pushed over the chat socket
type ChatPush struct {
	ID       string  `json:"id"`
	Message  string  `json:"message"`
	Sender   string  `json:"sender"`
	Receiver string  `json:"receiver"`
	MediaURL *string `json:"media_url"`
	SentAt   string  `json:"sent_at"`
}

// ControlFrame is a socket frame that never enters a message log
type ControlFrame struct {
	Type    string `json:"type"` // "ping", "pong", "error"
	Message string `json:"message,omitempty"`
}
