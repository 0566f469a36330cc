package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account. Social accounts have Provider/ProviderID set and no password.
type User struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	Username    string         `json:"username" gorm:"not null"`
	DisplayName string         `json:"displayName"`
	Password    string         `json:"-"`
	AvatarURL   string         `json:"avatarUrl" gorm:"column:avatar_url"`
	Bio         string         `json:"bio"`
	Provider    string         `json:"provider,omitempty" gorm:"index:idx_users_provider"`
	ProviderID  string         `json:"-" gorm:"column:provider_id;index:idx_users_provider"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// RefreshToken is the server-side record of an issued refresh token, keyed by its JWT ID.
// Only a hash of the token is stored.
type RefreshToken struct {
	ID        string     `gorm:"primaryKey"`
	UserID    string     `gorm:"column:user_id;index;not null"`
	TokenHash string     `gorm:"column:token_hash;not null"`
	ExpiresAt time.Time  `gorm:"column:expires_at"`
	RevokedAt *time.Time `gorm:"column:revoked_at"`
	CreatedAt time.Time
}

// TableName specifies the table name for RefreshToken Model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Active reports whether the token is neither revoked nor expired at now.
func (t RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
