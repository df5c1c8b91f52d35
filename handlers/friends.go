package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"linkup/database"
	"linkup/middleware"
	"linkup/models"
)

type createFriendRequest struct {
	ToUser models.FlexibleID `json:"to_user"`
}

// ListFriendRequests returns the requests the caller sent or received
func (s *Server) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requests, err := s.db.FriendRequestsFor(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get friend requests")
		return
	}

	out := make([]models.FriendRequest, 0, len(requests))
	for i := range requests {
		out = append(out, friendRequest(&requests[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateFriendRequest sends a friend request
func (s *Server) CreateFriendRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	toID, err := strconv.ParseInt(strings.TrimSpace(req.ToUser.String()), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if toID == user.ID {
		writeError(w, http.StatusBadRequest, "You cannot add yourself as a friend")
		return
	}

	friend, err := s.db.GetUserByID(toID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	// Check if friendship already exists
	if existing, err := s.db.GetFriendship(user.ID, friend.ID); err == nil {
		switch models.FriendStatus(existing.Status) {
		case models.FriendStatusAccepted:
			writeError(w, http.StatusConflict, "Already friends")
		case models.FriendStatusPending:
			writeError(w, http.StatusConflict, "Friend request already pending")
		default:
			writeError(w, http.StatusConflict, "Cannot add this user")
		}
		return
	}

	created, err := s.db.CreateFriendRequest(user.ID, friend.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send friend request")
		return
	}
	writeJSON(w, http.StatusCreated, friendRequest(created))
}

// RespondFriendRequest accepts or rejects a pending request addressed to
// the caller
func (s *Server) RespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var body models.FriendAction
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var status models.FriendStatus
	switch body.Action {
	case "accept":
		status = models.FriendStatusAccepted
	case "reject":
		status = models.FriendStatusRejected
	default:
		writeError(w, http.StatusBadRequest, "Action must be accept or reject")
		return
	}

	if err := s.db.RespondFriendRequest(requestID, user.ID, string(status)); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "Friend request not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update friend request")
		return
	}

	updated, err := s.db.GetFriendRequest(requestID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load friend request")
		return
	}
	writeJSON(w, http.StatusOK, friendRequest(updated))
}

// CancelFriendRequest withdraws a pending request the caller sent
func (s *Server) CancelFriendRequest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	if err := s.db.CancelFriendRequest(requestID, user.ID); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "Friend request not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to cancel friend request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Friend request cancelled",
	})
}

func friendRequest(r *database.FriendRequest) models.FriendRequest {
	name := r.FromFullName
	if name == "" {
		name = r.FromUsername
	}
	return models.FriendRequest{
		ID:             numericID(r.ID),
		FromUser:       r.FromUsername,
		FromUserID:     numericID(r.FromUserID),
		FromUserName:   name,
		FromUserAvatar: r.FromImage,
		ToUser:         r.ToUsername,
		Status:         models.FriendStatus(r.Status),
		CreatedAt:      r.CreatedAt,
	}
}
