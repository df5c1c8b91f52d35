package friends

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"linkup/models"
)

// Backend is the friend request part of the REST client
type Backend interface {
	ListFriendRequests(ctx context.Context) ([]models.FriendRequest, error)
	SendFriendRequest(ctx context.Context, toUserID string) error
	RespondFriendRequest(ctx context.Context, requestID, action string) error
	CancelFriendRequest(ctx context.Context, requestID string) error
}

// Manager holds the last fetched friend request list
type Manager struct {
	backend Backend
	log     *zap.Logger

	// OnAccepted runs after a request was accepted
	OnAccepted func(requestID string)

	mu       sync.RWMutex
	requests []models.FriendRequest
}

func NewManager(backend Backend, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{backend: backend, log: log}
}

// Requests returns a copy of the cached list
func (m *Manager) Requests() []models.FriendRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.FriendRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// PendingCount counts requests still waiting for an answer
func (m *Manager) PendingCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, r := range m.requests {
		if r.Status == models.FriendStatusPending {
			n++
		}
	}
	return n
}

// Fetch reloads the list. On failure the previous list is kept.
func (m *Manager) Fetch(ctx context.Context) ([]models.FriendRequest, error) {
	reqs, err := m.backend.ListFriendRequests(ctx)
	if err != nil {
		m.log.Warn("friend_requests_fetch_failed", zap.Error(err))
		return m.Requests(), fmt.Errorf("fetch friend requests: %w", err)
	}
	m.mu.Lock()
	m.requests = reqs
	m.mu.Unlock()
	return m.Requests(), nil
}

// Send asks toUserID to become a friend
func (m *Manager) Send(ctx context.Context, toUserID string) error {
	if err := m.backend.SendFriendRequest(ctx, toUserID); err != nil {
		m.log.Warn("friend_request_send_failed", zap.String("to_user", toUserID), zap.Error(err))
		return fmt.Errorf("send friend request: %w", err)
	}
	m.refresh(ctx)
	return nil
}

// Accept accepts a received request
func (m *Manager) Accept(ctx context.Context, requestID string) error {
	if err := m.respond(ctx, requestID, "accept"); err != nil {
		return err
	}
	if m.OnAccepted != nil {
		m.OnAccepted(requestID)
	}
	m.refresh(ctx)
	return nil
}

// Reject declines a received request
func (m *Manager) Reject(ctx context.Context, requestID string) error {
	if err := m.respond(ctx, requestID, "reject"); err != nil {
		return err
	}
	m.refresh(ctx)
	return nil
}

// Cancel withdraws a request the user sent
func (m *Manager) Cancel(ctx context.Context, requestID string) error {
	if err := m.backend.CancelFriendRequest(ctx, requestID); err != nil {
		m.log.Warn("friend_request_cancel_failed", zap.String("request_id", requestID), zap.Error(err))
		return fmt.Errorf("cancel friend request: %w", err)
	}
	m.refresh(ctx)
	return nil
}

func (m *Manager) respond(ctx context.Context, requestID, action string) error {
	if err := m.backend.RespondFriendRequest(ctx, requestID, action); err != nil {
		m.log.Warn("friend_request_respond_failed",
			zap.String("request_id", requestID),
			zap.String("action", action),
			zap.Error(err),
		)
		return fmt.Errorf("%s friend request: %w", action, err)
	}
	return nil
}

// refresh reloads the list after a successful mutation. The mutation has
// already happened, so a failed reload is only logged.
func (m *Manager) refresh(ctx context.Context) {
	if _, err := m.Fetch(ctx); err != nil {
		m.log.Info("friend_requests_stale", zap.Error(err))
	}
}
