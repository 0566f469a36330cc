package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

var (
	ErrUnknownProvider   = errors.New("unknown social provider")
	ErrSocialAuthFailed  = errors.New("social authentication failed")
	socialRequestTimeout = 10 * time.Second
)

// provider name -> userinfo endpoint
var socialProviders = map[string]string{}

// ConfigureSocial installs the userinfo endpoint per provider name.
func ConfigureSocial(providers map[string]string) {
	m := make(map[string]string, len(providers))
	for name, endpoint := range providers {
		m[strings.ToLower(name)] = endpoint
	}
	socialProviders = m
}

// SocialProfile is the identity a provider vouches for.
type SocialProfile struct {
	Provider  string
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// VerifySocialToken calls the provider's userinfo endpoint with the client's access token and
// returns the profile it describes. Any non-200 answer means the token is not valid.
func VerifySocialToken(ctx context.Context, provider, accessToken string) (*SocialProfile, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	endpoint, ok := socialProviders[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	if accessToken == "" {
		return nil, ErrSocialAuthFailed
	}

	ctx, cancel := context.WithTimeout(ctx, socialRequestTimeout)
	defer cancel()

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocialAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider answered %d", ErrSocialAuthFailed, resp.StatusCode)
	}

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrSocialAuthFailed, err)
	}

	profile := &SocialProfile{
		Provider:  provider,
		ID:        firstString(info, "sub", "id"),
		Email:     firstString(info, "email"),
		Name:      firstString(info, "name", "login"),
		AvatarURL: firstString(info, "picture", "avatar_url"),
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("%w: userinfo has no subject", ErrSocialAuthFailed)
	}
	return profile, nil
}

// firstString returns the first non-empty value among keys. GitHub ids are JSON numbers.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
