package models

import (
	"time"

	"gorm.io/gorm"
)

// HobbyCategory is a coarse grouping used for browsing.
type HobbyCategory string

const (
	CategoryOutdoor HobbyCategory = "outdoor"
	CategoryArts    HobbyCategory = "arts"
	CategoryMusic   HobbyCategory = "music"
	CategorySports  HobbyCategory = "sports"
	CategoryGames   HobbyCategory = "games"
	CategoryCrafts  HobbyCategory = "crafts"
	CategoryFood    HobbyCategory = "food"
	CategoryTech    HobbyCategory = "tech"
	CategoryOther   HobbyCategory = "other"
)

// Valid reports whether c is a known category.
func (c HobbyCategory) Valid() bool {
	switch c {
	case CategoryOutdoor, CategoryArts, CategoryMusic, CategorySports, CategoryGames,
		CategoryCrafts, CategoryFood, CategoryTech, CategoryOther:
		return true
	}
	return false
}

// Hobby is a community users can join.
type Hobby struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Category    HobbyCategory  `json:"category" gorm:"index;default:'other'"`
	ImageURL    string         `json:"imageUrl" gorm:"column:image_url"`
	OwnerID     string         `json:"ownerId" gorm:"column:owner_id;index"`
	MemberCount int            `json:"memberCount" gorm:"column:member_count;default:0"`
	Joined      bool           `json:"joined" gorm:"-"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for Hobby Model
func (Hobby) TableName() string {
	return "hobbies"
}

// HobbyMember links a user to a hobby they joined.
type HobbyMember struct {
	HobbyID  string    `json:"hobbyId" gorm:"primaryKey;column:hobby_id"`
	UserID   string    `json:"userId" gorm:"primaryKey;column:user_id"`
	JoinedAt time.Time `json:"joinedAt" gorm:"column:joined_at"`
}

// TableName specifies the table name for HobbyMember Model
func (HobbyMember) TableName() string {
	return "hobby_members"
}
