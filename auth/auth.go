package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"linkup/api"
	"linkup/models"
	"linkup/securestore"
)

const MinPasswordLength = 6

var (
	ErrMissingFields    = errors.New("please fill in all fields")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrNotAuthenticated = errors.New("not signed in")
)

// Backend is the part of the REST client used for signing in
type Backend interface {
	Login(ctx context.Context, identifier, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*models.AuthResponse, error)
}

// Service signs users in and out, keeping the credential store current
type Service struct {
	backend Backend
	store   securestore.Store
	log     *zap.Logger
}

func NewService(backend Backend, store securestore.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backend: backend, store: store, log: log}
}

// RegisterInput is what the sign up form collects
type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (in RegisterInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" || in.ConfirmPassword == "" {
		return ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(in.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Login authenticates with a username, email or phone number
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.AccountUser, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingFields
	}

	res, err := s.backend.Login(ctx, identifier, password)
	if err != nil {
		s.log.Warn("login_failed", zap.String("identifier", identifier), zap.Error(err))
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.persist(res); err != nil {
		return nil, err
	}
	s.log.Info("login_succeeded", zap.String("username", res.User.Username))
	return &res.User, nil
}

// Register creates an account and signs it in
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.AccountUser, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	res, err := s.backend.Register(ctx, api.RegisterRequest{
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	})
	if err != nil {
		s.log.Warn("register_failed", zap.String("email", in.Email), zap.Error(err))
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := s.persist(res); err != nil {
		return nil, err
	}
	s.log.Info("register_succeeded", zap.String("username", res.User.Username))
	return &res.User, nil
}

func (s *Service) persist(res *models.AuthResponse) error {
	if err := s.store.Set(securestore.KeyAccessToken, res.Tokens.Access); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := s.store.Set(securestore.KeyRefreshToken, res.Tokens.Refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return securestore.SaveUser(s.store, &res.User)
}

// Logout forgets the tokens and the stored user
func (s *Service) Logout() error {
	return securestore.Clear(s.store)
}

// CurrentUser returns the signed in user. Both a token and a stored user
// are required.
func (s *Service) CurrentUser() (*models.AccountUser, error) {
	token, err := securestore.Token(s.store)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	u, err := securestore.LoadUser(s.store)
	if errors.Is(err, securestore.ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	return u, err
}
