package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"hobbyhub/internal/database"
	"hobbyhub/internal/geo"
	"hobbyhub/internal/models"
	"hobbyhub/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultEventDuration = 2 * time.Hour
	defaultNearbyKm      = 10.0
	maxNearbyKm          = 200.0
	kmPerDegreeLat       = 111.0
)

var errEventFull = errors.New("event full")

// CreateEventRequest represents the request payload for creating an event
type CreateEventRequest struct {
	HobbyID     string    `json:"hobbyId" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Address     string    `json:"address"`
	Capacity    int       `json:"capacity" binding:"min=0"`
}

// UpdateEventRequest represents the request payload for updating an event
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	Address     *string    `json:"address"`
	Capacity    *int       `json:"capacity"`
}

// validateEvent enforces schedule, location and capacity invariants, returning a code and message on failure.
func validateEvent(e *models.Event) (string, string) {
	if strings.TrimSpace(e.Title) == "" {
		return CodeInvalidRequest, "Title must not be empty"
	}
	if e.StartsAt.IsZero() {
		return CodeInvalidSchedule, "startsAt is required"
	}
	if e.EndsAt.IsZero() {
		e.EndsAt = e.StartsAt.Add(defaultEventDuration)
	}
	if !e.EndsAt.After(e.StartsAt) {
		return CodeInvalidSchedule, "endsAt must be after startsAt"
	}
	if !geo.Valid(e.Latitude, e.Longitude) {
		return CodeInvalidLocation, "latitude/longitude out of range"
	}
	if e.Capacity < 0 {
		return CodeInvalidRequest, "capacity must not be negative"
	}
	if e.Capacity > 0 && e.AttendeeCount > e.Capacity {
		return CodeInvalidRequest, "capacity is below the current attendee count"
	}
	return "", ""
}

// markAttending sets Attending on the events userID attends.
func markAttending(db *gorm.DB, userID string, events []models.Event) {
	if len(events) == 0 {
		return
	}
	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	var attending []string
	if err := db.Model(&models.EventAttendee{}).
		Where("user_id = ? AND event_id IN ?", userID, ids).
		Pluck("event_id", &attending).Error; err != nil {
		return
	}
	set := make(map[string]struct{}, len(attending))
	for _, id := range attending {
		set[id] = struct{}{}
	}
	for i := range events {
		_, events[i].Attending = set[events[i].ID]
	}
}

// loadEvent fetches an event or writes the 404/500 response and returns false.
func loadEvent(c *gin.Context, db *gorm.DB, id string) (*models.Event, bool) {
	var event models.Event
	if err := db.Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, CodeEventNotFound, "Event not found")
		} else {
			respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch event")
		}
		return nil, false
	}
	return &event, true
}

func attendeeIDs(db *gorm.DB, eventID string) []string {
	var ids []string
	_ = db.Model(&models.EventAttendee{}).Where("event_id = ?", eventID).Pluck("user_id", &ids).Error
	return ids
}

func parseTimeQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, key+" must be an RFC3339 timestamp")
		return time.Time{}, false
	}
	return t, true
}

/*
GetEvents handles GET /api/events
Optional query params: hobbyId, from, to (RFC3339), page, limit. Sorted by start time.
*/
func GetEvents(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	p := parsePage(c)
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}

	db := database.GetDB()
	query := db.Model(&models.Event{})
	if hobbyID := c.Query("hobbyId"); hobbyID != "" {
		query = query.Where("hobby_id = ?", hobbyID)
	}
	if !from.IsZero() {
		query = query.Where("starts_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("starts_at <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to count events")
		return
	}

	var events []models.Event
	if err := query.Session(&gorm.Session{}).
		Order("starts_at asc").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&events).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch events")
		return
	}
	markAttending(db, userID, events)

	respondPage(c, events, len(events), p, total)
}

/*
GetNearbyEvents handles GET /api/events/nearby?lat=&lng=&radius=
Returns events that have not ended yet within radius km (default 10, max 200), nearest first.
*/
func GetNearbyEvents(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil || !geo.Valid(lat, lng) {
		respondError(c, http.StatusBadRequest, CodeInvalidLocation, "lat and lng are required and must be valid coordinates")
		return
	}
	radius := defaultNearbyKm
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			respondError(c, http.StatusBadRequest, CodeInvalidRequest, "radius must be a positive number of km")
			return
		}
		radius = r
	}
	if radius > maxNearbyKm {
		radius = maxNearbyKm
	}

	// latitude bounding box in SQL, exact haversine filter below
	dLat := radius / kmPerDegreeLat
	db := database.GetDB()
	var candidates []models.Event
	if err := db.Where("ends_at >= ? AND latitude BETWEEN ? AND ?", time.Now().UTC(), lat-dLat, lat+dLat).
		Find(&candidates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch events")
		return
	}

	origin := geo.Point{Lat: lat, Lng: lng}
	events := make([]models.Event, 0, len(candidates))
	for _, e := range candidates {
		d := geo.Distance(origin, geo.Point{Lat: e.Latitude, Lng: e.Longitude})
		if d <= radius {
			e.DistanceKm = &d
			events = append(events, e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return *events[i].DistanceKm < *events[j].DistanceKm })
	markAttending(db, userID, events)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    events,
		"count":   len(events),
	})
}

// GetEventByID handles GET /api/events/:id
func GetEventByID(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	event, ok := loadEvent(c, db, c.Param("id"))
	if !ok {
		return
	}
	list := []models.Event{*event}
	markAttending(db, userID, list)
	respondData(c, http.StatusOK, list[0], "")
}

// CreateEvent handles POST /api/events. The caller becomes the organizer.
func CreateEvent(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	db := database.GetDB()
	if _, ok := loadHobby(c, db, req.HobbyID); !ok {
		return
	}

	event := models.Event{
		ID:          uuid.NewString(),
		HobbyID:     req.HobbyID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Address:     req.Address,
		Capacity:    req.Capacity,
		OrganizerID: userID,
	}
	if code, msg := validateEvent(&event); code != "" {
		respondError(c, http.StatusBadRequest, code, msg)
		return
	}

	if err := db.Create(&event).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to create event")
		return
	}

	realtime.GetHub().Notify(realtime.Notification{Type: realtime.EventCreated, EntityID: event.ID, ActorID: userID})
	respondData(c, http.StatusCreated, event, "")
}

// UpdateEvent handles PUT /api/events/:id (organizer only)
func UpdateEvent(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	event, ok := loadEvent(c, db, c.Param("id"))
	if !ok {
		return
	}
	if event.OrganizerID != userID {
		respondError(c, http.StatusForbidden, CodeForbidden, "Only the organizer can edit this event")
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if req.Latitude != nil {
		event.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		event.Longitude = *req.Longitude
	}
	if req.Address != nil {
		event.Address = *req.Address
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if code, msg := validateEvent(event); code != "" {
		respondError(c, http.StatusBadRequest, code, msg)
		return
	}

	if err := db.Save(event).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to update event")
		return
	}

	realtime.GetHub().Notify(realtime.Notification{Type: realtime.EventUpdated, EntityID: event.ID, ActorID: userID},
		append(attendeeIDs(db, event.ID), userID)...)

	list := []models.Event{*event}
	markAttending(db, userID, list)
	respondData(c, http.StatusOK, list[0], "")
}

// DeleteEvent handles DELETE /api/events/:id (organizer only)
func DeleteEvent(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	event, ok := loadEvent(c, db, c.Param("id"))
	if !ok {
		return
	}
	if event.OrganizerID != userID {
		respondError(c, http.StatusForbidden, CodeForbidden, "Only the organizer can delete this event")
		return
	}

	notify := attendeeIDs(db, event.ID)
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.EventAttendee{}).Error; err != nil {
			return err
		}
		return tx.Delete(event).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to delete event")
		return
	}

	if len(notify) > 0 {
		realtime.GetHub().Notify(realtime.Notification{Type: realtime.EventDeleted, EntityID: event.ID, ActorID: userID}, notify...)
	}
	respondData(c, http.StatusOK, gin.H{"id": event.ID}, "Event deleted successfully")
}

// AttendEvent handles POST /api/events/:id/attend. Attending twice is a no-op; a full event answers 409.
func AttendEvent(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	event, ok := loadEvent(c, db, c.Param("id"))
	if !ok {
		return
	}

	joined := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var current models.Event
		if err := tx.Where("id = ?", event.ID).First(&current).Error; err != nil {
			return err
		}
		var existing int64
		if err := tx.Model(&models.EventAttendee{}).
			Where("event_id = ? AND user_id = ?", event.ID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}
		if current.Full() {
			return errEventFull
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.EventAttendee{EventID: event.ID, UserID: userID})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		joined = true
		return tx.Model(&models.Event{}).Where("id = ?", event.ID).
			Update("attendee_count", gorm.Expr("attendee_count + 1")).Error
	})
	if err != nil {
		if errors.Is(err, errEventFull) {
			respondError(c, http.StatusConflict, CodeEventFull, "This event is full")
			return
		}
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to attend event")
		return
	}

	if joined {
		realtime.GetHub().Notify(realtime.Notification{Type: realtime.AttendeeJoined, EntityID: event.ID, ActorID: userID}, event.OrganizerID)
	}
	GetEventByID(c)
}

// UnattendEvent handles DELETE /api/events/:id/attend
func UnattendEvent(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	event, ok := loadEvent(c, db, c.Param("id"))
	if !ok {
		return
	}

	left := false
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("event_id = ? AND user_id = ?", event.ID, userID).Delete(&models.EventAttendee{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		left = true
		return tx.Model(&models.Event{}).Where("id = ? AND attendee_count > 0", event.ID).
			Update("attendee_count", gorm.Expr("attendee_count - 1")).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to leave event")
		return
	}

	if left {
		realtime.GetHub().Notify(realtime.Notification{Type: realtime.AttendeeLeft, EntityID: event.ID, ActorID: userID}, event.OrganizerID)
	}
	GetEventByID(c)
}
