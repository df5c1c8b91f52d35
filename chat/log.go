package chat

import (
	"time"

	"linkup/models"
)

// DedupWindow is how close two timestamps must be for messages with equal
// content and sender to count as the same message
const DedupWindow = 2 * time.Second

// Log is the ordered message log of one conversation. Entries keep their
// insertion order and ids are unique.
type Log struct {
	entries []models.Message
	ids     map[string]struct{}
}

// NewLog returns an empty log
func NewLog() *Log {
	return &Log{ids: make(map[string]struct{})}
}

// Len returns the number of entries
func (l *Log) Len() int {
	return len(l.entries)
}

// Messages returns a copy of the entries
func (l *Log) Messages() []models.Message {
	out := make([]models.Message, len(l.entries))
	copy(out, l.entries)
	return out
}

// Contains reports whether an entry with id exists
func (l *Log) Contains(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Append adds m at the end unless its id is already present
func (l *Log) Append(m models.Message) bool {
	if l.Contains(m.ID) {
		return false
	}
	l.entries = append(l.entries, m)
	l.ids[m.ID] = struct{}{}
	return true
}

// IsDuplicate reports whether m is already represented in the log, either
// by id or by an entry with the same content and sender sent within
// DedupWindow
func (l *Log) IsDuplicate(m models.Message) bool {
	if l.Contains(m.ID) {
		return true
	}
	for i := range l.entries {
		e := &l.entries[i]
		if e.Content == m.Content && e.Sender == m.Sender && absDuration(e.SentAt.Sub(m.SentAt)) < DedupWindow {
			return true
		}
	}
	return false
}

// Accept appends m unless it is a duplicate
func (l *Log) Accept(m models.Message) bool {
	if l.IsDuplicate(m) {
		return false
	}
	return l.Append(m)
}

// Replace swaps the optimistic entry id for m in place. When another
// entry already carries m's id the optimistic entry is dropped instead.
func (l *Log) Replace(id string, m models.Message) bool {
	i := l.optimisticIndex(id)
	if i < 0 {
		return false
	}
	if m.ID != id && l.Contains(m.ID) {
		l.removeAt(i)
		return true
	}
	delete(l.ids, id)
	l.entries[i] = m
	l.ids[m.ID] = struct{}{}
	return true
}

// Remove deletes the optimistic entry id
func (l *Log) Remove(id string) bool {
	i := l.optimisticIndex(id)
	if i < 0 {
		return false
	}
	l.removeAt(i)
	return true
}

// Merge makes base the head of the log. Entries already present that are
// not duplicates of anything in base keep their relative order after it.
func (l *Log) Merge(base []models.Message) {
	previous := l.entries
	l.entries = nil
	l.ids = make(map[string]struct{}, len(base)+len(previous))

	for _, m := range base {
		l.Append(m)
	}
	for _, m := range previous {
		l.Accept(m)
	}
}

func (l *Log) optimisticIndex(id string) int {
	for i := range l.entries {
		if l.entries[i].ID == id && l.entries[i].IsOptimistic {
			return i
		}
	}
	return -1
}

func (l *Log) removeAt(i int) {
	delete(l.ids, l.entries[i].ID)
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
