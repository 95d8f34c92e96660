package services

import (
	"context"
	"errors"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/enjoys-in/airsend-webmail/internal/core/api/repository"
	"github.com/enjoys-in/airsend-webmail/internal/interfaces"
	"github.com/enjoys-in/airsend-webmail/internal/utils/encryption"
)

type authService struct {
	users    repository.AuthRepository
	sessions repository.SessionRepository
	opts     Options
}

// NewAuthService returns the interfaces.AuthService backed by the given
// user and session repositories.
func NewAuthService(users repository.AuthRepository, sessions repository.SessionRepository, opts Options) interfaces.AuthService {
	return &authService{users: users, sessions: sessions, opts: opts.withDefaults()}
}

// Register creates an account. The address is stored lower-cased and
// doubles as the login name.
func (a *authService) Register(ctx context.Context, req interfaces.RegisterRequest) (*repository.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, invalid("Email and password are required.")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("Invalid email address.")
	}
	if req.Password != req.Confirmation {
		return nil, invalid("Passwords must match.")
	}

	hash, err := encryption.GeneratePassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &repository.User{
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Password:  hash,
		CreatedAt: a.opts.Now().UTC(),
	}
	if err := a.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	log.WithField("user", u.Email).Info("User registered")
	return u, nil
}

// Login checks the credentials and opens a new session.
func (a *authService) Login(ctx context.Context, email, password string) (*interfaces.LoginResult, error) {
	u, err := a.users.FindOne(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := encryption.ValidatePassword(u.Password, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	now := a.opts.Now().UTC()
	if n, err := a.sessions.DeleteExpired(ctx, now); err != nil {
		log.WithError(err).Warn("Failed to prune expired sessions")
	} else if n > 0 {
		log.WithField("count", n).Debug("Pruned expired sessions")
	}

	s := &repository.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.opts.SessionTTL),
	}
	if err := a.sessions.Create(ctx, s); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"user": u.Email, "expires": s.ExpiresAt}).Info("User logged in")
	return &interfaces.LoginResult{Token: s.Token, ExpiresAt: s.ExpiresAt, User: u}, nil
}

func (a *authService) Logout(ctx context.Context, token string) error {
	return a.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token to its user. Expired sessions
// are removed on sight.
func (a *authService) Authenticate(ctx context.Context, token string) (*repository.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	s, err := a.sessions.Find(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	if !a.opts.Now().Before(s.ExpiresAt) {
		if err := a.sessions.Delete(ctx, token); err != nil {
			log.WithError(err).Warn("Failed to delete expired session")
		}
		return nil, ErrUnauthenticated
	}
	u, err := a.users.FindByID(ctx, s.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	return u, err
}
