package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"linkup/models"
)

// ErrUserNotFound is returned when a user cannot be resolved by any endpoint
var ErrUserNotFound = errors.New("user not found")

// LoginRequest is the body of the login call
type LoginRequest struct {
	Identifier string `json:"username_or_email_or_phone"`
	Password   string `json:"password"`
}

// RegisterRequest is the body of the register call
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for tokens
func (c *Client) Login(ctx context.Context, identifier, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/login/", LoginRequest{identifier, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its tokens
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/users/register/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches one user by id
func (c *Client) GetUser(ctx context.Context, id string) (*models.UserResponse, error) {
	var out models.UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/users/get/"+url.PathEscape(id)+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllUsers fetches every user
func (c *Client) GetAllUsers(ctx context.Context) ([]models.UserResponse, error) {
	var out []models.UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/users/get/all/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolvePeer fetches a user by id, falling back to a scan of all users
// when the single-user endpoint fails
func (c *Client) ResolvePeer(ctx context.Context, id string) (models.User, error) {
	u, err := c.GetUser(ctx, id)
	if err == nil {
		return u.ToUser(c.baseURL), nil
	}
	c.log.Info("peer_lookup_fallback", zap.String("peer_id", id), zap.Error(err))

	all, err := c.GetAllUsers(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("resolve peer %s: %w", id, err)
	}
	for i := range all {
		if all[i].ID.String() == id {
			return all[i].ToUser(c.baseURL), nil
		}
	}
	return models.User{}, fmt.Errorf("resolve peer %s: %w", id, ErrUserNotFound)
}

// ProfileUpdate holds the optional fields of a profile PATCH.
// An Image with a nil Reader clears the profile image.
type ProfileUpdate struct {
	FullName *string
	Status   *string
	Image    *Upload
}

// Upload is a file sent as a multipart part
type Upload struct {
	Filename string
	Reader   io.Reader
}

// UpdateProfile PATCHes the user's profile
func (c *Client) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.AccountUser, error) {
	f := newForm()
	if upd.FullName != nil {
		if err := f.field("full_name", *upd.FullName); err != nil {
			return nil, err
		}
	}
	if upd.Status != nil {
		if err := f.field("status", *upd.Status); err != nil {
			return nil, err
		}
	}
	if upd.Image != nil {
		var err error
		if upd.Image.Reader == nil {
			err = f.field("profile_image", "")
		} else {
			err = f.file("profile_image", upd.Image.Filename, upd.Image.Reader)
		}
		if err != nil {
			return nil, err
		}
	}

	var out models.AccountUser
	if err := c.doForm(ctx, http.MethodPatch, "/users/"+url.PathEscape(userID)+"/", f, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
