package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"linkup/models"
)

// ErrMalformedFrame is returned for frames that are not JSON objects of a
// recognized shape
var ErrMalformedFrame = errors.New("malformed frame")

// FrameKind classifies an inbound socket frame
type FrameKind string

const (
	FramePing  FrameKind = "ping"
	FramePong  FrameKind = "pong"
	FrameError FrameKind = "error"
	FrameChat  FrameKind = "chat"
	FrameOther FrameKind = "other"
)

// Frame is a parsed inbound socket frame. Both historical field names of
// the chat payload are folded into one set of fields here.
type Frame struct {
	Kind     FrameKind
	Error    string
	ID       string
	Content  string
	Sender   string
	Receiver string
	MediaURL string
	SentAt   time.Time
}

type wireFrame struct {
	Type      string            `json:"type"`
	ID        models.FlexibleID `json:"id"`
	Message   *string           `json:"message"`
	Content   *string           `json:"content"`
	Sender    string            `json:"sender"`
	FromUser  string            `json:"from_user"`
	Receiver  string            `json:"receiver"`
	ToUser    string            `json:"to_user"`
	MediaURL  *string           `json:"media_url"`
	SentAt    string            `json:"sent_at"`
	Timestamp string            `json:"timestamp"`
}

// ParseFrame decodes one inbound frame. receivedAt stands in for a missing
// or unreadable timestamp.
func ParseFrame(raw []byte, receivedAt time.Time) (Frame, error) {
	var w wireFrame
	if err := json.Unmarshal(raw, &w); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch w.Type {
	case "pong":
		return Frame{Kind: FramePong}, nil
	case "ping":
		return Frame{Kind: FramePing}, nil
	case "error":
		var msg string
		if w.Message != nil {
			msg = *w.Message
		}
		return Frame{Kind: FrameError, Error: msg}, nil
	}

	if w.Message == nil && w.Content == nil {
		return Frame{Kind: FrameOther}, nil
	}

	f := Frame{
		Kind:     FrameChat,
		ID:       w.ID.String(),
		Content:  firstNonEmpty(deref(w.Message), deref(w.Content)),
		Sender:   firstNonEmpty(w.Sender, w.FromUser),
		Receiver: firstNonEmpty(w.Receiver, w.ToUser),
		MediaURL: deref(w.MediaURL),
		SentAt:   receivedAt,
	}
	if t, ok := ParseTimestamp(firstNonEmpty(w.SentAt, w.Timestamp)); ok {
		f.SentAt = t
	}
	return f, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses the ISO-8601 variants the backend emits. Values
// without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
