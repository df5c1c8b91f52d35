package logger

import (
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	got := RedactURL("ws://localhost:8000/ws/chat/alice/?token=secret")
	if strings.Contains(got, "secret") {
		t.Fatalf("token leaked: %s", got)
	}
	if !strings.Contains(got, "/ws/chat/alice/") {
		t.Errorf("path lost: %s", got)
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init("chatty", false); err == nil {
		t.Errorf("Expected error for unknown level")
	}
}
