package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"linkup/database"
	"linkup/middleware"
	"linkup/models"
)

// GetAllUsers returns every account with its friendship state relative to
// the caller
func (s *Server) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	all, err := s.db.AllUsers()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get users")
		return
	}

	out := make([]models.UserResponse, 0, len(all))
	for i := range all {
		out = append(out, s.userResponse(user.ID, &all[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetUser returns one account
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	other, err := s.db.GetUserByID(id)
	if isNotFound(err) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, s.userResponse(user.ID, other))
}

// UpdateUser applies a multipart profile update. An empty profile_image
// field removes the picture.
func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if id != user.ID {
		writeError(w, http.StatusForbidden, "You can only edit your own profile")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	var upd database.UserUpdate
	if v, ok := r.MultipartForm.Value["full_name"]; ok && len(v) > 0 {
		upd.FullName = &v[0]
	}
	if v, ok := r.MultipartForm.Value["status"]; ok && len(v) > 0 {
		upd.Status = &v[0]
	}
	if file, hdr, err := r.FormFile("profile_image"); err == nil {
		defer file.Close()
		p, err := s.saveUpload(file, hdr, "profile")
		if err != nil {
			s.log.Error("profile_image_save_failed", zap.Int64("user_id", user.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to store image")
			return
		}
		upd.ProfileImage = &p
	} else if _, ok := r.MultipartForm.Value["profile_image"]; ok {
		empty := ""
		upd.ProfileImage = &empty
	}

	updated, err := s.db.UpdateUser(user.ID, upd)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, accountUser(updated))
}

func (s *Server) userResponse(viewerID int64, u *database.User) models.UserResponse {
	return models.UserResponse{
		ID:           numericID(u.ID),
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		ProfileImage: u.ProfileImage,
		Status:       u.Status,
		IsFriend:     s.friendState(viewerID, u.ID),
	}
}

// friendState renders the friendship between two users the way the client
// expects it: "True", "Pending" or "False"
func (s *Server) friendState(userID, otherID int64) string {
	if userID == otherID {
		return "False"
	}
	f, err := s.db.GetFriendship(userID, otherID)
	if err != nil {
		return "False"
	}
	switch models.FriendStatus(f.Status) {
	case models.FriendStatusAccepted:
		return "True"
	case models.FriendStatusPending:
		return "Pending"
	}
	return "False"
}
