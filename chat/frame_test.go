package chat

import (
	"errors"
	"testing"
	"time"
)

func TestParseFrameChatAliases(t *testing.T) {
	received := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want Frame
	}{
		{
			name: "primary names",
			raw:  `{"id":42,"message":"hi","sender":"bob","receiver":"alice","media_url":null,"sent_at":"2024-05-01T10:00:00Z"}`,
			want: Frame{Kind: FrameChat, ID: "42", Content: "hi", Sender: "bob", Receiver: "alice", SentAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		},
		{
			name: "alternate names",
			raw:  `{"id":"abc","content":"yo","from_user":"bob","to_user":"alice","timestamp":"2024-05-01 10:00:00"}`,
			want: Frame{Kind: FrameChat, ID: "abc", Content: "yo", Sender: "bob", Receiver: "alice", SentAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		},
		{
			name: "missing timestamp uses receipt time",
			raw:  `{"message":"hey","sender":"bob","receiver":"alice","media_url":"/media/a.png"}`,
			want: Frame{Kind: FrameChat, Content: "hey", Sender: "bob", Receiver: "alice", MediaURL: "/media/a.png", SentAt: received},
		},
		{
			name: "empty content still counts as chat",
			raw:  `{"message":"","sender":"bob","receiver":"alice"}`,
			want: Frame{Kind: FrameChat, Sender: "bob", Receiver: "alice", SentAt: received},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrame([]byte(tt.raw), received)
			if err != nil {
				t.Fatalf("ParseFrame: %v", err)
			}
			if !got.SentAt.Equal(tt.want.SentAt) {
				t.Errorf("SentAt = %v, want %v", got.SentAt, tt.want.SentAt)
			}
			got.SentAt, tt.want.SentAt = time.Time{}, time.Time{}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFrameControl(t *testing.T) {
	tests := []struct {
		raw  string
		kind FrameKind
	}{
		{`{"type":"pong"}`, FramePong},
		{`{"type":"ping"}`, FramePing},
		{`{"type":"error","message":"bad token"}`, FrameError},
		{`{"type":"typing","sender":"bob"}`, FrameOther},
		{`{}`, FrameOther},
	}
	for _, tt := range tests {
		f, err := ParseFrame([]byte(tt.raw), time.Now())
		if err != nil {
			t.Fatalf("ParseFrame(%s): %v", tt.raw, err)
		}
		if f.Kind != tt.kind {
			t.Errorf("ParseFrame(%s).Kind = %s, want %s", tt.raw, f.Kind, tt.kind)
		}
	}

	f, _ := ParseFrame([]byte(`{"type":"error","message":"bad token"}`), time.Now())
	if f.Error != "bad token" {
		t.Errorf("Error = %q", f.Error)
	}
}

func TestParseFrameMalformed(t *testing.T) {
	for _, raw := range []string{`not json`, `[1,2]`, `"text"`, `{"id":{}}`} {
		if _, err := ParseFrame([]byte(raw), time.Now()); !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("ParseFrame(%s) err = %v, want ErrMalformedFrame", raw, err)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 500_000_000, time.UTC)
	for _, s := range []string{
		"2024-05-01T10:00:00.5Z",
		"2024-05-01T12:00:00.5+02:00",
		"2024-05-01T10:00:00.500000",
		"2024-05-01 10:00:00.5",
	} {
		got, ok := ParseTimestamp(s)
		if !ok {
			t.Errorf("ParseTimestamp(%q) failed", s)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", s, got, want)
		}
	}

	if _, ok := ParseTimestamp("yesterday"); ok {
		t.Errorf("Expected garbage timestamp to be rejected")
	}
	if _, ok := ParseTimestamp(""); ok {
		t.Errorf("Expected empty timestamp to be rejected")
	}
}
