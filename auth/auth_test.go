package auth

import (
	"context"
	"errors"
	"testing"

	"linkup/api"
	"linkup/models"
	"linkup/securestore"
)

type stubBackend struct {
	loginErr error
	register api.RegisterRequest
}

func (b *stubBackend) Login(ctx context.Context, identifier, password string) (*models.AuthResponse, error) {
	if b.loginErr != nil {
		return nil, b.loginErr
	}
	return &models.AuthResponse{
		Tokens: models.Tokens{Access: "a1", Refresh: "r1"},
		User:   models.AccountUser{ID: "7", Username: identifier},
	}, nil
}

func (b *stubBackend) Register(ctx context.Context, req api.RegisterRequest) (*models.AuthResponse, error) {
	b.register = req
	return &models.AuthResponse{
		Tokens: models.Tokens{Access: "a2", Refresh: "r2"},
		User:   models.AccountUser{ID: "8", Username: "newbie", FullName: req.FullName, Email: req.Email},
	}, nil
}

func TestLoginStoresCredentials(t *testing.T) {
	store := securestore.NewMemoryStore()
	svc := NewService(&stubBackend{}, store, nil)

	u, err := svc.Login(context.Background(), " alice ", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("username = %q", u.Username)
	}
	if tok, _ := store.Get(securestore.KeyAccessToken); tok != "a1" {
		t.Errorf("access token = %q", tok)
	}
	if tok, _ := store.Get(securestore.KeyRefreshToken); tok != "r1" {
		t.Errorf("refresh token = %q", tok)
	}

	cur, err := svc.CurrentUser()
	if err != nil || cur.ID != "7" {
		t.Errorf("CurrentUser = %+v, %v", cur, err)
	}
}

func TestLoginValidation(t *testing.T) {
	svc := NewService(&stubBackend{}, securestore.NewMemoryStore(), nil)
	for _, c := range [][2]string{{"", "pw"}, {"alice", ""}, {"  ", "  "}} {
		if _, err := svc.Login(context.Background(), c[0], c[1]); !errors.Is(err, ErrMissingFields) {
			t.Errorf("Login(%q, %q) = %v, want ErrMissingFields", c[0], c[1], err)
		}
	}
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	store := securestore.NewMemoryStore()
	svc := NewService(&stubBackend{loginErr: &api.Error{Status: 401}}, store, nil)

	if _, err := svc.Login(context.Background(), "alice", "wrong"); !api.IsStatus(err, 401) {
		t.Fatalf("Login = %v", err)
	}
	if _, err := svc.CurrentUser(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("CurrentUser = %v, want ErrNotAuthenticated", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(&stubBackend{}, securestore.NewMemoryStore(), nil)
	tests := []struct {
		in   RegisterInput
		want error
	}{
		{RegisterInput{Email: "a@x.io", Password: "secret1", ConfirmPassword: "secret1"}, ErrMissingFields},
		{RegisterInput{FullName: "A", Email: "a@x.io", Password: "secret1", ConfirmPassword: "secret2"}, ErrPasswordMismatch},
		{RegisterInput{FullName: "A", Email: "a@x.io", Password: "abc", ConfirmPassword: "abc"}, ErrPasswordTooShort},
	}
	for _, tt := range tests {
		if _, err := svc.Register(context.Background(), tt.in); !errors.Is(err, tt.want) {
			t.Errorf("Register(%+v) = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestRegisterSignsIn(t *testing.T) {
	backend := &stubBackend{}
	store := securestore.NewMemoryStore()
	svc := NewService(backend, store, nil)

	u, err := svc.Register(context.Background(), RegisterInput{
		FullName: " Nova Lee ", Email: "nova@x.io", Password: "secret1", ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if backend.register.FullName != "Nova Lee" {
		t.Errorf("full name not trimmed: %q", backend.register.FullName)
	}
	if u.Username != "newbie" {
		t.Errorf("user = %+v", u)
	}
	if tok, _ := securestore.Token(store); tok != "a2" {
		t.Errorf("token = %q", tok)
	}
}

func TestLogout(t *testing.T) {
	store := securestore.NewMemoryStore()
	svc := NewService(&stubBackend{}, store, nil)
	svc.Login(context.Background(), "alice", "secret1")
	store.Set(securestore.KeyProfileImage, "file:///me.png")

	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	for _, k := range []string{securestore.KeyAccessToken, securestore.KeyRefreshToken, securestore.KeyUser} {
		if _, err := store.Get(k); !errors.Is(err, securestore.ErrNotFound) {
			t.Errorf("%s still stored", k)
		}
	}
	if _, err := store.Get(securestore.KeyProfileImage); err != nil {
		t.Errorf("profile image should survive logout")
	}
	if err := svc.Logout(); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}
