package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"linkup/database"
	"linkup/middleware"
	"linkup/models"
)

// refreshTokenTTL is the lifetime of issued refresh tokens
const refreshTokenTTL = 30 * 24 * time.Hour

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"username_or_email_or_phone"`
	Password   string `json:"password"`
}

// Register handles account creation. The username is derived from the
// email address.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "Full name is required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}

	if _, err := s.db.GetUserByLogin(req.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}

	username, err := s.db.AvailableUsername(usernameFromEmail(req.Email))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	user, err := s.db.CreateUser(username, req.Email, req.FullName, string(hashedPassword))
	if err != nil {
		s.log.Error("user_create_failed", zap.String("email", req.Email), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	res, err := s.issueTokens(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}
	s.log.Info("user_registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	writeJSON(w, http.StatusCreated, res)
}

// Login handles authentication by username or email
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := s.db.GetUserByLogin(req.Identifier)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
		return
	}

	res, err := s.issueTokens(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) issueTokens(user *database.User) (*models.AuthResponse, error) {
	access, err := middleware.GenerateToken(user.ID, user.Username, s.secret)
	if err != nil {
		return nil, err
	}
	refresh := uuid.NewString()
	if err := s.db.CreateRefreshToken(refresh, user.ID, time.Now().Add(refreshTokenTTL)); err != nil {
		return nil, err
	}
	return &models.AuthResponse{
		Tokens: models.Tokens{Access: access, Refresh: refresh},
		User:   accountUser(user),
	}, nil
}

func accountUser(u *database.User) models.AccountUser {
	return models.AccountUser{
		ID:           numericID(u.ID),
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		ProfileImage: u.ProfileImage,
		Status:       u.Status,
	}
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
