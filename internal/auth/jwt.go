package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"hobbyhub/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens so one can never stand in for the other.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

var (
	jwtSecret   = []byte("development-insecure-secret-change-me")
	jwtIssuer   = "hobbyhub-api"
	jwtAudience = "hobbyhub-clients"
	accessTTL   = 15 * time.Minute
	refreshTTL  = 30 * 24 * time.Hour
)

// now is a small indirection to allow test stubbing.
var now = time.Now

// Configure installs signing settings. Call once at startup.
func Configure(cfg config.AuthConfig) {
	jwtSecret = []byte(cfg.JWTSecret)
	jwtIssuer = cfg.Issuer
	jwtAudience = cfg.Audience
	accessTTL = cfg.AccessTTL
	refreshTTL = cfg.RefreshTTL
}

// Claims represents the JWT claims
type Claims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token plus the metadata the server persists about it.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// GenerateToken signs a token of the given type for the user.
func GenerateToken(userID, email string, typ TokenType) (IssuedToken, error) {
	ttl := accessTTL
	if typ == TokenTypeRefresh {
		ttl = refreshTTL
	}
	issuedAt := now()
	expiresAt := issuedAt.Add(ttl)
	id := uuid.NewString()

	claims := Claims{
		UserID: userID,
		Email:  email,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    jwtIssuer,
			Audience:  jwt.ClaimStrings{jwtAudience},
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: signed, ID: id, ExpiresAt: expiresAt}, nil
}

// ValidateToken verifies signature, issuer, audience, expiry and type, and returns the claims.
func ValidateToken(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithAudience(jwtAudience),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// HashToken is the at-rest form of a refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
