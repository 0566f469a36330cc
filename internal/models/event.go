package models

import (
	"time"

	"gorm.io/gorm"
)

// Event is a scheduled, located meetup belonging to a hobby.
type Event struct {
	ID            string         `json:"id" gorm:"primaryKey"`
	HobbyID       string         `json:"hobbyId" gorm:"column:hobby_id;index"`
	Title         string         `json:"title" gorm:"not null"`
	Description   string         `json:"description"`
	StartsAt      time.Time      `json:"startsAt" gorm:"column:starts_at;index"`
	EndsAt        time.Time      `json:"endsAt" gorm:"column:ends_at"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	Address       string         `json:"address"`
	Capacity      int            `json:"capacity"`
	AttendeeCount int            `json:"attendeeCount" gorm:"column:attendee_count;default:0"`
	OrganizerID   string         `json:"organizerId" gorm:"column:organizer_id;index"`
	Attending     bool           `json:"attending" gorm:"-"`
	DistanceKm    *float64       `json:"distanceKm,omitempty" gorm:"-"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for Event Model
func (Event) TableName() string {
	return "events"
}

// Full reports whether a capacity-limited event has no seats left. Capacity 0 means unlimited.
func (e Event) Full() bool {
	return e.Capacity > 0 && e.AttendeeCount >= e.Capacity
}

// EventAttendee links a user to an event they are attending.
type EventAttendee struct {
	EventID   string    `json:"eventId" gorm:"primaryKey;column:event_id"`
	UserID    string    `json:"userId" gorm:"primaryKey;column:user_id"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for EventAttendee Model
func (EventAttendee) TableName() string {
	return "event_attendees"
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Hobby{},
		&HobbyMember{},
		&Event{},
		&EventAttendee{},
	}
}
