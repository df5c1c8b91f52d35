package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"linkup/database"
	"linkup/metrics"
	"linkup/middleware"
	"linkup/models"
)

const (
	defaultHistoryLimit = 200
	maxHistoryLimit     = 500
)

// ChatHistory returns the conversation between the caller and a user,
// oldest first
func (s *Server) ChatHistory(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	other, err := s.db.GetUserByUsername(mux.Vars(r)["username"])
	if isNotFound(err) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxHistoryLimit {
			limit = parsed
		}
	}

	messages, err := s.db.MessagesBetween(user.ID, other.ID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get messages")
		return
	}

	out := make([]models.SentMessage, 0, len(messages))
	for i := range messages {
		out = append(out, sentMessage(&messages[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// SendMessage stores a message and pushes it to both participants
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	receiverName := strings.TrimSpace(r.FormValue("receiver_username"))
	content := strings.TrimSpace(r.FormValue("content"))

	receiver, err := s.db.GetUserByUsername(receiverName)
	if err != nil {
		writeError(w, http.StatusNotFound, "Recipient not found")
		return
	}

	var mediaURL string
	if file, hdr, err := r.FormFile("media"); err == nil {
		defer file.Close()
		mediaURL, err = s.saveUpload(file, hdr, "chat")
		if err != nil {
			s.log.Error("chat_media_save_failed", zap.Int64("user_id", user.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to store media")
			return
		}
	}

	if content == "" && mediaURL == "" {
		writeError(w, http.StatusBadRequest, "Message content is required")
		return
	}

	message, err := s.db.CreateMessage(user.ID, receiver.ID, content, mediaURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}
	metrics.DevserverMessages.Inc()

	push := chatPush(message)
	s.hub.SendToUser(receiver.ID, push)
	if receiver.ID != user.ID {
		s.hub.SendToUser(user.ID, push)
	}

	writeJSON(w, http.StatusCreated, models.SendResponse{Data: sentMessage(message)})
}

func mediaPtr(url string) *string {
	if url == "" {
		return nil
	}
	return &url
}

func sentMessage(m *database.Message) models.SentMessage {
	return models.SentMessage{
		ID:       numericID(m.ID),
		Content:  m.Content,
		Sender:   m.SenderUsername,
		Receiver: m.ReceiverUsername,
		MediaURL: mediaPtr(m.MediaURL),
		SentAt:   formatTime(m.SentAt),
	}
}

func chatPush(m *database.Message) models.ChatPush {
	return models.ChatPush{
		ID:       strconv.FormatInt(m.ID, 10),
		Message:  m.Content,
		Sender:   m.SenderUsername,
		Receiver: m.ReceiverUsername,
		MediaURL: mediaPtr(m.MediaURL),
		SentAt:   formatTime(m.SentAt),
	}
}
