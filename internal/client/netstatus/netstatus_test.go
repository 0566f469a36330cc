package netstatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPProber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	prober := NewHTTPProber(srv.URL + "/health")
	require.True(t, prober.Online(context.Background()), "any response means reachable")

	srv.Close()
	require.False(t, prober.Online(context.Background()))
}

func TestStaticAndFunc(t *testing.T) {
	require.True(t, Static(true).Online(context.Background()))
	require.False(t, Static(false).Online(context.Background()))

	calls := 0
	f := Func(func(context.Context) bool { calls++; return calls > 1 })
	require.False(t, f.Online(context.Background()))
	require.True(t, f.Online(context.Background()))
}
