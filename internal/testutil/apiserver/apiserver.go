// Package apiserver runs the real backend on an in-memory database for client tests.
package apiserver

import (
	"net/http/httptest"
	"testing"

	"hobbyhub/internal/database"
	"hobbyhub/internal/metrics"
	"hobbyhub/internal/middleware"
	"hobbyhub/internal/realtime"
	"hobbyhub/internal/routes"
	"hobbyhub/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Start serves the full router on a fresh in-memory database. The API lives under
// srv.URL + "/api". Tests using it must not run in parallel, the database handle is global.
func Start(t testing.TB) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	srv := httptest.NewServer(routes.SetupRoutes(routes.Options{
		RateLimiter: middleware.NewRateLimiter(1000, 1000),
		Metrics:     metrics.New(),
		Hub:         realtime.GetHub(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

// APIURL is the client base URL for srv.
func APIURL(srv *httptest.Server) string {
	return srv.URL + "/api"
}
