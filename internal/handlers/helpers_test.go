package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hobbyhub/internal/auth"
	"hobbyhub/internal/database"
	"hobbyhub/internal/middleware"
	"hobbyhub/internal/models"
	"hobbyhub/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// envelope mirrors the success/failure bodies for decoding in tests.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   int             `json:"count"`
	Total   int64           `json:"total"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	r := gin.New()
	a := r.Group("/api/auth")
	a.POST("/register", Register)
	a.POST("/login", Login)
	a.POST("/social", SocialAuth)
	a.POST("/refresh-token", RefreshToken)

	p := r.Group("/api")
	p.Use(middleware.JWTAuthMiddleware())
	p.GET("/auth/me", Me)
	p.POST("/auth/logout", Logout)
	p.GET("/hobbies", GetHobbies)
	p.GET("/hobbies/:id", GetHobbyByID)
	p.POST("/hobbies", CreateHobby)
	p.PUT("/hobbies/:id", UpdateHobby)
	p.DELETE("/hobbies/:id", DeleteHobby)
	p.POST("/hobbies/:id/join", JoinHobby)
	p.DELETE("/hobbies/:id/join", LeaveHobby)
	p.GET("/events", GetEvents)
	p.GET("/events/nearby", GetNearbyEvents)
	p.GET("/events/:id", GetEventByID)
	p.POST("/events", CreateEvent)
	p.PUT("/events/:id", UpdateEvent)
	p.DELETE("/events/:id", DeleteEvent)
	p.POST("/events/:id/attend", AttendEvent)
	p.DELETE("/events/:id/attend", UnattendEvent)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// seedUser inserts a user directly and returns an access token for it.
func seedUser(t *testing.T, name string) (models.User, string) {
	t.Helper()
	user := models.User{ID: uuid.NewString(), Email: name + "@example.com", Username: name}
	require.NoError(t, database.DB.Create(&user).Error)
	issued, err := auth.GenerateToken(user.ID, user.Email, auth.TokenTypeAccess)
	require.NoError(t, err)
	return user, issued.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
