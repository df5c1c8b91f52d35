package chat

import (
	"testing"
	"time"

	"linkup/models"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func msg(id, content, sender string, at time.Time) models.Message {
	return models.Message{ID: id, Content: content, Sender: sender, SentAt: at}
}

func ids(msgs []models.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func equalIDs(t *testing.T, got []models.Message, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func TestLogAcceptDedup(t *testing.T) {
	l := NewLog()
	if !l.Accept(msg("1", "hi", "bob", t0)) {
		t.Fatalf("first message rejected")
	}

	tests := []struct {
		name string
		m    models.Message
		want bool
	}{
		{"same id", msg("1", "other", "carol", t0.Add(time.Hour)), false},
		{"same content and sender within window", msg("2", "hi", "bob", t0.Add(1500*time.Millisecond)), false},
		{"same content and sender before", msg("3", "hi", "bob", t0.Add(-1999*time.Millisecond)), false},
		{"exactly at window edge", msg("4", "hi", "bob", t0.Add(DedupWindow)), true},
		{"different sender", msg("5", "hi", "carol", t0), true},
		{"different content", msg("6", "hello", "bob", t0), true},
	}
	for _, tt := range tests {
		l := NewLog()
		l.Accept(msg("1", "hi", "bob", t0))
		if got := l.Accept(tt.m); got != tt.want {
			t.Errorf("%s: Accept = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLogReplaceInPlace(t *testing.T) {
	l := NewLog()
	l.Append(msg("a", "first", "alice", t0))
	pending := msg("tmp", "second", "alice", t0.Add(time.Second))
	pending.IsOptimistic = true
	l.Append(pending)
	l.Append(msg("c", "third", "bob", t0.Add(2*time.Second)))

	confirmed := msg("77", "second", "alice", t0.Add(time.Second))
	if !l.Replace("tmp", confirmed) {
		t.Fatalf("Replace returned false")
	}
	equalIDs(t, l.Messages(), "a", "77", "c")
	if l.Contains("tmp") {
		t.Errorf("optimistic id still indexed")
	}
	if l.Messages()[1].IsOptimistic {
		t.Errorf("confirmed entry still optimistic")
	}

	if l.Replace("tmp", confirmed) {
		t.Errorf("second Replace should find nothing")
	}
}

func TestLogReplaceWhenEchoAlreadyPresent(t *testing.T) {
	l := NewLog()
	pending := msg("tmp", "hi", "alice", t0)
	pending.IsOptimistic = true
	l.Append(pending)
	l.Append(msg("77", "hi", "alice", t0))

	l.Replace("tmp", msg("77", "hi", "alice", t0))
	equalIDs(t, l.Messages(), "77")
}

func TestLogRemoveOnlyOptimistic(t *testing.T) {
	l := NewLog()
	l.Append(msg("a", "kept", "alice", t0))
	pending := msg("tmp", "gone", "alice", t0)
	pending.IsOptimistic = true
	l.Append(pending)

	if l.Remove("a") {
		t.Errorf("Remove must not touch confirmed entries")
	}
	if !l.Remove("tmp") {
		t.Fatalf("Remove(tmp) = false")
	}
	equalIDs(t, l.Messages(), "a")
}

func TestLogMerge(t *testing.T) {
	l := NewLog()
	// arrived over the socket before history loaded
	l.Accept(msg("s1", "already in history", "bob", t0.Add(3*time.Second)))
	l.Accept(msg("s2", "new", "bob", t0.Add(time.Minute)))

	l.Merge([]models.Message{
		msg("h1", "old", "bob", t0),
		msg("h2", "already in history", "bob", t0.Add(3*time.Second)),
	})
	equalIDs(t, l.Messages(), "h1", "h2", "s2")
}

func TestLogMessagesIsCopy(t *testing.T) {
	l := NewLog()
	l.Append(msg("a", "x", "bob", t0))
	out := l.Messages()
	out[0].Content = "changed"
	if l.Messages()[0].Content != "x" {
		t.Errorf("Messages exposed internal state")
	}
}
