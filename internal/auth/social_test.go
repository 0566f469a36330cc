package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeProvider(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifySocialToken(t *testing.T) {
	google := fakeProvider(t, `{"sub":"g-123","email":"ann@example.com","name":"Ann","picture":"https://img/ann.png"}`)
	github := fakeProvider(t, `{"id":98765,"login":"octo","avatar_url":"https://img/octo.png"}`)
	ConfigureSocial(map[string]string{"Google": google.URL, "github": github.URL})
	t.Cleanup(func() { ConfigureSocial(nil) })

	profile, err := VerifySocialToken(context.Background(), "google", "good-token")
	require.NoError(t, err)
	require.Equal(t, "g-123", profile.ID)
	require.Equal(t, "ann@example.com", profile.Email)
	require.Equal(t, "Ann", profile.Name)

	profile, err = VerifySocialToken(context.Background(), "github", "good-token")
	require.NoError(t, err)
	require.Equal(t, "98765", profile.ID)
	require.Equal(t, "octo", profile.Name)
	require.Equal(t, "https://img/octo.png", profile.AvatarURL)

	_, err = VerifySocialToken(context.Background(), "google", "bad-token")
	require.ErrorIs(t, err, ErrSocialAuthFailed)

	_, err = VerifySocialToken(context.Background(), "myspace", "good-token")
	require.ErrorIs(t, err, ErrUnknownProvider)
}
