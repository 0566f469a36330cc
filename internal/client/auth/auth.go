// Package auth manages the signed-in session on the client side.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hobbyhub/internal/client/api"
	"hobbyhub/internal/client/storage"
	"hobbyhub/internal/models"

	"github.com/pkg/errors"
)

const (
	pathMe     = "/auth/me"
	pathLogout = "/auth/logout"
)

// Session is what login, register and social sign-in return.
type Session struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

// Service wraps the auth endpoints and keeps local credentials in sync with them.
type Service struct {
	client *api.Client
	store  storage.Store
	log    *slog.Logger
}

func NewService(client *api.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, store: client.Store(), log: logger}
}

// Login signs in with email and password and persists the session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	return s.startSession(ctx, api.PathLogin, map[string]string{
		"email":    strings.TrimSpace(email),
		"password": password,
	})
}

// Register creates an account and persists the session.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	return s.startSession(ctx, api.PathRegister, in)
}

// SocialAuth exchanges a provider access token (google, github, ...) for a session.
func (s *Service) SocialAuth(ctx context.Context, provider, token string) (*Session, error) {
	return s.startSession(ctx, api.PathSocial, map[string]string{
		"provider": strings.ToLower(provider),
		"token":    token,
	})
}

func (s *Service) startSession(ctx context.Context, path string, body any) (*Session, error) {
	env, err := s.client.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}
	session, err := api.Decode[*Session](env)
	if err != nil {
		return nil, err
	}
	if session == nil || session.AccessToken == "" {
		return nil, &api.Error{Status: http.StatusOK, Message: "sign-in response has no token", Code: api.CodeBadResponse}
	}

	// cached responses may belong to a previous account
	if err := s.client.ClearCache(ctx); err != nil {
		s.log.Warn("could not clear response cache", "error", err)
	}
	if err := storage.SaveCredentials(ctx, s.store, storage.Credentials{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}); err != nil {
		return nil, err
	}
	if session.User != nil {
		if err := storage.SaveUser(ctx, s.store, session.User); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// GetCurrentUser fetches the signed-in user. A 401 (including an expired session)
// clears local credentials and returns nil without an error.
func (s *Service) GetCurrentUser(ctx context.Context) (*models.User, error) {
	env, err := s.client.Do(ctx, api.Request{Method: http.MethodGet, Path: pathMe, NoCache: true})
	if err != nil {
		if api.StatusOf(err) == http.StatusUnauthorized {
			if cerr := storage.ClearCredentials(ctx, s.store); cerr != nil {
				return nil, cerr
			}
			return nil, nil
		}
		return nil, err
	}
	user, err := api.Decode[*models.User](env)
	if err != nil {
		return nil, err
	}
	if user != nil {
		if err := storage.SaveUser(ctx, s.store, user); err != nil {
			s.log.Warn("could not store current user", "error", err)
		}
	}
	return user, nil
}

// Logout tells the server to revoke the session, then clears local credentials and the
// response cache whatever the server said.
func (s *Service) Logout(ctx context.Context) error {
	if s.IsAuthenticated(ctx) {
		_, err := s.client.Do(ctx, api.Request{Method: http.MethodPost, Path: pathLogout, NoRetry: true})
		if err != nil {
			s.log.Warn("server logout failed, clearing local session anyway", "error", err)
		}
	}
	if err := storage.ClearCredentials(ctx, s.store); err != nil {
		return errors.Wrap(err, "logout")
	}
	if err := s.client.ClearCache(ctx); err != nil {
		s.log.Warn("could not clear response cache", "error", err)
	}
	return nil
}

// IsAuthenticated reports whether an access token is stored.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	creds, err := storage.LoadCredentials(ctx, s.store)
	return err == nil && creds.AccessToken != ""
}

// StoredUser returns the user saved at the last sign-in, or nil.
func (s *Service) StoredUser(ctx context.Context) (*models.User, error) {
	var user models.User
	ok, err := storage.LoadUser(ctx, s.store, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}
