// Package storage is the device-local key/value store the API client keeps
// credentials and cached responses in.
package storage

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Fixed storage keys.
const (
	KeyAccessToken  = "@hobbyhub:accessToken"
	KeyRefreshToken = "@hobbyhub:refreshToken"
	KeyUser         = "@hobbyhub:user"

	// CachePrefix prefixes every cached GET response.
	CachePrefix = "@hobbyhub:cache:"
)

// Store is a string key/value store. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes the keys; missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
}

// Credentials is the persisted token pair.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SaveCredentials persists both tokens. An empty refresh token leaves the stored one in place.
func SaveCredentials(ctx context.Context, s Store, creds Credentials) error {
	if err := s.Set(ctx, KeyAccessToken, creds.AccessToken); err != nil {
		return errors.Wrap(err, "save access token")
	}
	if creds.RefreshToken == "" {
		return nil
	}
	if err := s.Set(ctx, KeyRefreshToken, creds.RefreshToken); err != nil {
		return errors.Wrap(err, "save refresh token")
	}
	return nil
}

// LoadCredentials returns the stored pair. Missing keys yield empty strings.
func LoadCredentials(ctx context.Context, s Store) (Credentials, error) {
	var creds Credentials
	access, _, err := s.Get(ctx, KeyAccessToken)
	if err != nil {
		return creds, errors.Wrap(err, "load access token")
	}
	refresh, _, err := s.Get(ctx, KeyRefreshToken)
	if err != nil {
		return creds, errors.Wrap(err, "load refresh token")
	}
	creds.AccessToken = access
	creds.RefreshToken = refresh
	return creds, nil
}

// ClearCredentials removes the token pair and the stored user.
func ClearCredentials(ctx context.Context, s Store) error {
	return errors.Wrap(s.Remove(ctx, KeyAccessToken, KeyRefreshToken, KeyUser), "clear credentials")
}

// SaveUser stores user as JSON under KeyUser.
func SaveUser(ctx context.Context, s Store, user any) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "encode user")
	}
	return errors.Wrap(s.Set(ctx, KeyUser, string(raw)), "save user")
}

// LoadUser decodes the stored user into out and reports whether one was stored.
func LoadUser(ctx context.Context, s Store, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, KeyUser)
	if err != nil || !ok || raw == "" {
		return false, errors.Wrap(err, "load user")
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, errors.Wrap(err, "decode user")
	}
	return true, nil
}

// KeysWithPrefix filters Keys by prefix.
func KeysWithPrefix(ctx context.Context, s Store, prefix string) ([]string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}
