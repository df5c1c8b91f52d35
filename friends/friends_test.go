package friends

import (
	"context"
	"errors"
	"testing"

	"linkup/models"
)

type stubBackend struct {
	list    []models.FriendRequest
	listErr error
	actions []string
	sendErr error
}

func (b *stubBackend) ListFriendRequests(ctx context.Context) ([]models.FriendRequest, error) {
	return b.list, b.listErr
}

func (b *stubBackend) SendFriendRequest(ctx context.Context, toUserID string) error {
	b.actions = append(b.actions, "send "+toUserID)
	return b.sendErr
}

func (b *stubBackend) RespondFriendRequest(ctx context.Context, requestID, action string) error {
	b.actions = append(b.actions, action+" "+requestID)
	for i := range b.list {
		if b.list[i].ID.String() == requestID {
			b.list[i].Status = models.FriendStatus(action + "ed")
		}
	}
	return nil
}

func (b *stubBackend) CancelFriendRequest(ctx context.Context, requestID string) error {
	b.actions = append(b.actions, "cancel "+requestID)
	return nil
}

func sampleRequests() []models.FriendRequest {
	return []models.FriendRequest{
		{ID: "1", FromUser: "bob", Status: models.FriendStatusPending},
		{ID: "2", FromUser: "carol", Status: models.FriendStatusPending},
		{ID: "3", FromUser: "dan", Status: models.FriendStatusAccepted},
	}
}

func TestFetchAndPendingCount(t *testing.T) {
	m := NewManager(&stubBackend{list: sampleRequests()}, nil)
	reqs, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(reqs) != 3 || m.PendingCount() != 2 {
		t.Errorf("requests = %d, pending = %d", len(reqs), m.PendingCount())
	}
}

func TestFetchFailureKeepsList(t *testing.T) {
	b := &stubBackend{list: sampleRequests()}
	m := NewManager(b, nil)
	m.Fetch(context.Background())

	b.listErr = errors.New("offline")
	reqs, err := m.Fetch(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(reqs) != 3 || len(m.Requests()) != 3 {
		t.Errorf("previous list lost")
	}
}

func TestAcceptNotifiesAndRefreshes(t *testing.T) {
	b := &stubBackend{list: sampleRequests()}
	m := NewManager(b, nil)
	var accepted []string
	m.OnAccepted = func(id string) { accepted = append(accepted, id) }

	if err := m.Accept(context.Background(), "1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if len(accepted) != 1 || accepted[0] != "1" {
		t.Errorf("OnAccepted calls = %v", accepted)
	}
	if m.PendingCount() != 1 {
		t.Errorf("pending = %d after accept", m.PendingCount())
	}

	if err := m.Reject(context.Background(), "2"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if len(accepted) != 1 {
		t.Errorf("OnAccepted ran on reject")
	}
	if m.PendingCount() != 0 {
		t.Errorf("pending = %d after reject", m.PendingCount())
	}
}

func TestSendFailure(t *testing.T) {
	b := &stubBackend{sendErr: errors.New("409")}
	m := NewManager(b, nil)
	if err := m.Send(context.Background(), "9"); err == nil {
		t.Errorf("expected error")
	}
}

func TestCancel(t *testing.T) {
	b := &stubBackend{}
	m := NewManager(b, nil)
	if err := m.Cancel(context.Background(), "4"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if len(b.actions) != 1 || b.actions[0] != "cancel 4" {
		t.Errorf("actions = %v", b.actions)
	}
}
