package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hobbyhub/internal/auth"
	"hobbyhub/internal/database"
	"hobbyhub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterRequest represents the register request payload
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SocialAuthRequest carries a provider access token obtained by the app.
type SocialAuthRequest struct {
	Provider string `json:"provider" binding:"required"`
	Token    string `json:"token" binding:"required"`
}

// RefreshTokenRequest represents the refresh-token request payload
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthPayload is the data returned by every endpoint that starts a session.
type AuthPayload struct {
	User         *models.User `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    time.Time    `json:"expiresAt"`
}

// issueTokens signs a new access/refresh pair and records the refresh token.
func issueTokens(db *gorm.DB, user *models.User) (*AuthPayload, error) {
	access, err := auth.GenerateToken(user.ID, user.Email, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateToken(user.ID, user.Email, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	record := models.RefreshToken{
		ID:        refresh.ID,
		UserID:    user.ID,
		TokenHash: auth.HashToken(refresh.Token),
		ExpiresAt: refresh.ExpiresAt,
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &AuthPayload{
		User:         user,
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpiresAt:    access.ExpiresAt,
	}, nil
}

// Register handles POST /api/auth/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	db := database.GetDB()
	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to check email")
		return
	}
	if existing > 0 {
		respondError(c, http.StatusConflict, CodeEmailTaken, "An account with this email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to hash password")
		return
	}

	user := models.User{
		ID:          uuid.NewString(),
		Email:       email,
		Username:    strings.TrimSpace(req.Username),
		DisplayName: req.DisplayName,
		Password:    hash,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}

	payload, err := createAccount(db, &user)
	if errors.Is(err, errEmailTaken) {
		respondError(c, http.StatusConflict, CodeEmailTaken, "An account with this email already exists")
		return
	}
	if err != nil {
		slog.Error("Register failed", "email", email, "error", err)
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to create account")
		return
	}

	respondData(c, http.StatusCreated, payload, "Registration successful")
}

var errEmailTaken = errors.New("email already registered")

// createAccount inserts user and issues its first token pair in one transaction. A
// registration that loses the race on users.email gets errEmailTaken.
func createAccount(db *gorm.DB, user *models.User) (*AuthPayload, error) {
	var payload *AuthPayload
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			if isDuplicateKey(err) {
				return errEmailTaken
			}
			return err
		}
		var err error
		payload, err = issueTokens(tx, user)
		return err
	})
	return payload, err
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Login handles POST /api/auth/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Email and password are required")
		return
	}

	db := database.GetDB()
	var user models.User
	err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch user")
		return
	}
	if err != nil || auth.CheckPassword(user.Password, req.Password) != nil {
		respondError(c, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password")
		return
	}

	payload, err := issueTokens(db, &user)
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to generate token")
		return
	}
	respondData(c, http.StatusOK, payload, "Login successful")
}

// SocialAuth handles POST /api/auth/social
// The provider token is checked against the provider's userinfo endpoint; the matching
// account is found by provider identity, then by email, and created otherwise.
func SocialAuth(c *gin.Context) {
	var req SocialAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Provider and token are required")
		return
	}

	profile, err := auth.VerifySocialToken(c.Request.Context(), req.Provider, req.Token)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownProvider) {
			respondError(c, http.StatusBadRequest, CodeUnknownProvider, "Unsupported provider")
			return
		}
		slog.Warn("Social token rejected", "provider", req.Provider, "error", err)
		respondError(c, http.StatusUnauthorized, CodeSocialAuthFailed, "Could not verify social login")
		return
	}

	var payload *AuthPayload
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		user, err := findOrCreateSocialUser(tx, profile)
		if err != nil {
			return err
		}
		payload, err = issueTokens(tx, user)
		return err
	})
	if err != nil {
		slog.Error("Social login failed", "provider", profile.Provider, "error", err)
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to complete social login")
		return
	}
	respondData(c, http.StatusOK, payload, "Login successful")
}

func findOrCreateSocialUser(tx *gorm.DB, profile *auth.SocialProfile) (*models.User, error) {
	var user models.User
	err := tx.Where("provider = ? AND provider_id = ?", profile.Provider, profile.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := strings.ToLower(profile.Email)
	if email != "" {
		err = tx.Where("email = ?", email).First(&user).Error
		if err == nil {
			// link the provider to the existing password account
			user.Provider = profile.Provider
			user.ProviderID = profile.ID
			if user.AvatarURL == "" {
				user.AvatarURL = profile.AvatarURL
			}
			return &user, tx.Save(&user).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		email = fmt.Sprintf("%s-%s@users.hobbyhub.local", profile.Provider, profile.ID)
	}

	username := profile.Name
	if username == "" {
		username = profile.Provider + "-" + profile.ID
	}
	user = models.User{
		ID:          uuid.NewString(),
		Email:       email,
		Username:    username,
		DisplayName: username,
		AvatarURL:   profile.AvatarURL,
		Provider:    profile.Provider,
		ProviderID:  profile.ID,
	}
	return &user, tx.Create(&user).Error
}

// RefreshToken handles POST /api/auth/refresh-token
// Refresh tokens rotate: the presented token is revoked and a new pair is issued. Presenting
// an already revoked token revokes every token of that user.
func RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "refreshToken is required")
		return
	}

	claims, err := auth.ValidateToken(req.RefreshToken, auth.TokenTypeRefresh)
	if err != nil {
		respondError(c, http.StatusUnauthorized, CodeInvalidRefreshToken, "Invalid or expired refresh token")
		return
	}

	db := database.GetDB()
	var record models.RefreshToken
	if err := db.Where("id = ? AND user_id = ?", claims.ID, claims.UserID).First(&record).Error; err != nil {
		respondError(c, http.StatusUnauthorized, CodeInvalidRefreshToken, "Invalid or expired refresh token")
		return
	}
	if record.TokenHash != auth.HashToken(req.RefreshToken) {
		respondError(c, http.StatusUnauthorized, CodeInvalidRefreshToken, "Invalid or expired refresh token")
		return
	}
	if record.RevokedAt != nil {
		slog.Warn("Revoked refresh token presented, revoking all sessions", "user_id", record.UserID)
		_ = revokeAll(db, record.UserID)
		respondError(c, http.StatusUnauthorized, CodeInvalidRefreshToken, "Refresh token has been revoked")
		return
	}
	if !record.Active(time.Now()) {
		respondError(c, http.StatusUnauthorized, CodeInvalidRefreshToken, "Invalid or expired refresh token")
		return
	}

	var payload *AuthPayload
	err = db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", record.UserID).First(&user).Error; err != nil {
			return err
		}
		revoked := time.Now()
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", record.ID).
			Update("revoked_at", revoked)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost a race with a concurrent refresh of the same token
			return auth.ErrInvalidToken
		}
		var err error
		payload, err = issueTokens(tx, &user)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, auth.ErrInvalidToken) {
			respondError(c, http.StatusUnauthorized, CodeInvalidRefreshToken, "Invalid or expired refresh token")
			return
		}
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to refresh token")
		return
	}

	payload.User = nil
	respondData(c, http.StatusOK, payload, "")
}

// Me handles GET /api/auth/me
func Me(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}

	var user models.User
	if err := database.GetDB().Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, CodeUserNotFound, "User not found")
		} else {
			respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch user")
		}
		return
	}
	respondData(c, http.StatusOK, user, "")
}

// Logout handles POST /api/auth/logout by revoking every refresh token of the caller.
func Logout(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	if err := revokeAll(database.GetDB(), userID); err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to log out")
		return
	}
	respondData(c, http.StatusOK, nil, "Logged out")
}

func revokeAll(db *gorm.DB, userID string) error {
	return db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now()).Error
}
