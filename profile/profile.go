package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"linkup/api"
	"linkup/models"
	"linkup/securestore"
)

var (
	ErrNotAuthenticated = errors.New("authentication error, please log in again")
	ErrEmptyName        = errors.New("name cannot be empty")
)

// Backend is the profile endpoint of the REST client
type Backend interface {
	UpdateProfile(ctx context.Context, userID string, upd api.ProfileUpdate) (*models.AccountUser, error)
	BaseURL() string
}

// Editor updates the signed in user's profile and keeps the stored copy
// of the user in sync with the server
type Editor struct {
	backend Backend
	store   securestore.Store
	log     *zap.Logger
}

func NewEditor(backend Backend, store securestore.Store, log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{backend: backend, store: store, log: log}
}

// Current returns the stored user
func (e *Editor) Current() (*models.AccountUser, error) {
	_, u, err := e.identity()
	return u, err
}

// UpdateName sets the display name
func (e *Editor) UpdateName(ctx context.Context, name string) (*models.AccountUser, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return e.update(ctx, "name", api.ProfileUpdate{FullName: &name}, keepImage)
}

// UpdateStatus sets the status line
func (e *Editor) UpdateStatus(ctx context.Context, status string) (*models.AccountUser, error) {
	return e.update(ctx, "status", api.ProfileUpdate{Status: &status}, keepImage)
}

// UpdateImage uploads the image at path as the profile picture
func (e *Editor) UpdateImage(ctx context.Context, path string) (*models.AccountUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	upd := api.ProfileUpdate{Image: &api.Upload{Filename: filepath.Base(path), Reader: f}}
	u, err := e.update(ctx, "image", upd, keepImage)
	if err != nil {
		return nil, err
	}
	if err := e.store.Set(securestore.KeyProfileImage, path); err != nil {
		return nil, fmt.Errorf("store profile image: %w", err)
	}
	return u, nil
}

// RemoveImage clears the profile picture
func (e *Editor) RemoveImage(ctx context.Context) (*models.AccountUser, error) {
	u, err := e.update(ctx, "image", api.ProfileUpdate{Image: &api.Upload{}}, dropImage)
	if err != nil {
		return nil, err
	}
	if err := e.store.Delete(securestore.KeyProfileImage); err != nil {
		return nil, fmt.Errorf("delete profile image: %w", err)
	}
	return u, nil
}

type imagePolicy int

const (
	keepImage imagePolicy = iota
	dropImage
)

func (e *Editor) identity() (string, *models.AccountUser, error) {
	token, err := securestore.Token(e.store)
	if err != nil {
		return "", nil, err
	}
	u, err := securestore.LoadUser(e.store)
	if errors.Is(err, securestore.ErrNotFound) || (err == nil && (token == "" || u.ID == "")) {
		return "", nil, ErrNotAuthenticated
	}
	if err != nil {
		return "", nil, err
	}
	return u.ID.String(), u, nil
}

func (e *Editor) update(ctx context.Context, field string, upd api.ProfileUpdate, images imagePolicy) (*models.AccountUser, error) {
	id, stored, err := e.identity()
	if err != nil {
		return nil, err
	}

	updated, err := e.backend.UpdateProfile(ctx, id, upd)
	if err != nil {
		e.log.Warn("profile_update_failed", zap.String("field", field), zap.Error(err))
		return nil, fmt.Errorf("update %s: %w", field, err)
	}

	switch {
	case images == dropImage:
		updated.ProfileImage = ""
	case updated.ProfileImage != "":
		updated.ProfileImage = models.ResolveMediaURL(e.backend.BaseURL(), updated.ProfileImage)
	default:
		updated.ProfileImage = stored.ProfileImage
	}

	if err := securestore.SaveUser(e.store, updated); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}
	e.log.Info("profile_updated", zap.String("field", field), zap.String("user_id", id))
	return updated, nil
}
