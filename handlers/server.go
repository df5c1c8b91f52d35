package handlers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"linkup/database"
	"linkup/metrics"
	"linkup/middleware"
	"linkup/models"
)

// maxUploadSize bounds multipart bodies
const maxUploadSize = 10 << 20

// Server is the development backend. It serves the REST and websocket
// contract the client consumes, backed by the SQLite database.
type Server struct {
	db       *database.DB
	hub      *Hub
	secret   string
	mediaDir string
	log      *zap.Logger
}

// NewServer returns a server. The hub must be running.
func NewServer(db *database.DB, hub *Hub, secret, mediaDir string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{db: db, hub: hub, secret: secret, mediaDir: mediaDir, log: log}
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/users/register/", s.Register).Methods(http.MethodPost)
	r.HandleFunc("/users/login/", s.Login).Methods(http.MethodPost)
	r.Handle("/metrics", metrics.Handler())
	r.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(s.mediaDir))))

	auth := middleware.Auth(s.db, s.secret)

	users := r.PathPrefix("/users").Subrouter()
	users.Use(auth)
	users.HandleFunc("/get/all/", s.GetAllUsers).Methods(http.MethodGet)
	users.HandleFunc("/get/{id}/", s.GetUser).Methods(http.MethodGet)
	users.HandleFunc("/api/chat/history/{username}/", s.ChatHistory).Methods(http.MethodGet)
	users.HandleFunc("/api/chat/send/", s.SendMessage).Methods(http.MethodPost)
	users.HandleFunc("/friend-requests/", s.ListFriendRequests).Methods(http.MethodGet)
	users.HandleFunc("/friend-requests/", s.CreateFriendRequest).Methods(http.MethodPost)
	users.HandleFunc("/friend-requests/{id}/", s.RespondFriendRequest).Methods(http.MethodPut)
	users.HandleFunc("/friend-requests/{id}/cancel/", s.CancelFriendRequest).Methods(http.MethodPost)
	users.HandleFunc("/{id}/", s.UpdateUser).Methods(http.MethodPatch)

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(auth)
	ws.HandleFunc("/chat/{username}/", s.HandleChatSocket)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func numericID(id int64) models.FlexibleID {
	return models.FlexibleID(strconv.FormatInt(id, 10))
}

// saveUpload stores an uploaded file below mediaDir/sub and returns its
// public path
func (s *Server) saveUpload(file multipart.File, hdr *multipart.FileHeader, sub string) (string, error) {
	dir := filepath.Join(s.mediaDir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(hdr.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path.Join("/media", sub, name), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijacking not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)),
		)
	})
}
