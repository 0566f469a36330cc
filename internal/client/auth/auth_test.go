package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	serverauth "hobbyhub/internal/auth"
	"hobbyhub/internal/client/api"
	"hobbyhub/internal/client/storage"
	"hobbyhub/internal/logging"
	"hobbyhub/internal/testutil/apiserver"

	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, baseURL string) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	client, err := api.New(api.Options{
		BaseURL: baseURL,
		Store:   store,
		Logger:  logging.Discard(),
		Sleep:   func(context.Context, time.Duration) error { return nil },
	})
	require.NoError(t, err)
	return NewService(client, logging.Discard()), store
}

func TestRegisterThenCurrentUser(t *testing.T) {
	srv := apiserver.Start(t)
	svc, store := newService(t, apiserver.APIURL(srv))
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Username: "ada", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.Equal(t, "ada@example.com", session.User.Email)

	creds, err := storage.LoadCredentials(ctx, store)
	require.NoError(t, err)
	require.Equal(t, session.AccessToken, creds.AccessToken)
	require.Equal(t, session.RefreshToken, creds.RefreshToken)
	require.True(t, svc.IsAuthenticated(ctx))

	stored, err := svc.StoredUser(ctx)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, stored.ID)

	me, err := svc.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "ada", me.Username)

	_, err = svc.Register(ctx, RegisterInput{Email: "ada@example.com", Username: "ada2", Password: "correct-horse"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "EMAIL_TAKEN", apiErr.Code)
}

func TestLogin(t *testing.T) {
	srv := apiserver.Start(t)
	svc, _ := newService(t, apiserver.APIURL(srv))
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Email: "grace@example.com", Username: "grace", Password: "hopper-1906"})
	require.NoError(t, err)

	fresh, store := newService(t, apiserver.APIURL(srv))
	_, err = fresh.Login(ctx, "grace@example.com", "wrong-password")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	require.False(t, fresh.IsAuthenticated(ctx))

	session, err := fresh.Login(ctx, "grace@example.com", "hopper-1906")
	require.NoError(t, err)
	require.Equal(t, "grace", session.User.Username)
	creds, err := storage.LoadCredentials(ctx, store)
	require.NoError(t, err)
	require.Equal(t, session.AccessToken, creds.AccessToken)
}

func TestGetCurrentUser_RefreshesExpiredAccessToken(t *testing.T) {
	srv := apiserver.Start(t)
	svc, store := newService(t, apiserver.APIURL(srv))
	ctx := context.Background()
	session, err := svc.Register(ctx, RegisterInput{Email: "lin@example.com", Username: "lin", Password: "password-123"})
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, storage.KeyAccessToken, "expired-or-garbage"))
	me, err := svc.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, session.User.ID, me.ID)

	creds, err := storage.LoadCredentials(ctx, store)
	require.NoError(t, err)
	require.NotEqual(t, "expired-or-garbage", creds.AccessToken)
	require.NotEqual(t, session.RefreshToken, creds.RefreshToken, "refresh tokens rotate")
}

func TestGetCurrentUser_UnauthorizedClearsAndReturnsNil(t *testing.T) {
	srv := apiserver.Start(t)
	svc, store := newService(t, apiserver.APIURL(srv))
	ctx := context.Background()
	require.NoError(t, storage.SaveCredentials(ctx, store, storage.Credentials{AccessToken: "bad", RefreshToken: "also-bad"}))
	require.NoError(t, storage.SaveUser(ctx, store, map[string]string{"id": "ghost"}))

	me, err := svc.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Nil(t, me)
	require.False(t, svc.IsAuthenticated(ctx))
	user, err := svc.StoredUser(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestLogout_RevokesOnServerAndClearsLocally(t *testing.T) {
	srv := apiserver.Start(t)
	svc, store := newService(t, apiserver.APIURL(srv))
	ctx := context.Background()
	session, err := svc.Register(ctx, RegisterInput{Email: "ken@example.com", Username: "ken", Password: "password-123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	require.False(t, svc.IsAuthenticated(ctx))
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)

	// the old refresh token no longer works
	other, otherStore := newService(t, apiserver.APIURL(srv))
	require.NoError(t, storage.SaveCredentials(ctx, otherStore, storage.Credentials{AccessToken: "x", RefreshToken: session.RefreshToken}))
	me, err := other.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Nil(t, me)
}

func TestLogout_ClearsEvenWhenServerUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	base := dead.URL + "/api"
	dead.Close()

	svc, store := newService(t, base)
	ctx := context.Background()
	require.NoError(t, storage.SaveCredentials(ctx, store, storage.Credentials{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, storage.SaveUser(ctx, store, map[string]string{"id": "u"}))
	require.NoError(t, store.Set(ctx, storage.CachePrefix+base+"/hobbies{}", `{"data":{},"expiry":0}`))

	require.NoError(t, svc.Logout(ctx))
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestSocialAuth(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer provider-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-42","email":"mary@example.com","name":"mary","picture":"https://img/m.png"}`))
	}))
	t.Cleanup(provider.Close)
	serverauth.ConfigureSocial(map[string]string{"google": provider.URL})

	srv := apiserver.Start(t)
	svc, _ := newService(t, apiserver.APIURL(srv))
	ctx := context.Background()

	session, err := svc.SocialAuth(ctx, "Google", "provider-token")
	require.NoError(t, err)
	require.Equal(t, "mary@example.com", session.User.Email)
	require.True(t, svc.IsAuthenticated(ctx))

	_, err = svc.SocialAuth(ctx, "google", "stolen")
	require.Equal(t, http.StatusUnauthorized, api.StatusOf(err))

	_, err = svc.SocialAuth(ctx, "myspace", "whatever")
	require.Equal(t, http.StatusBadRequest, api.StatusOf(err))
}
