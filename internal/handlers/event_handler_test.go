package handlers

import (
	"net/http"
	"testing"
	"time"

	"hobbyhub/internal/models"

	"github.com/stretchr/testify/require"
)

func createEvent(t *testing.T, r http.Handler, token string, body map[string]any) models.Event {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/api/events", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Event](t, env.Data)
}

func eventBody(hobbyID, title string, startsIn time.Duration, lat, lng float64, capacity int) map[string]any {
	return map[string]any{
		"hobbyId":   hobbyID,
		"title":     title,
		"startsAt":  time.Now().Add(startsIn).UTC().Format(time.RFC3339),
		"latitude":  lat,
		"longitude": lng,
		"capacity":  capacity,
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	r := newTestRouter(t)
	_, alice := seedUser(t, "alice")
	hobby := createHobby(t, r, alice, "Astronomy", models.CategoryOutdoor)

	event := createEvent(t, r, alice, eventBody(hobby.ID, "Star party", 24*time.Hour, 51.5, -0.12, 0))
	require.Equal(t, 2*time.Hour, event.EndsAt.Sub(event.StartsAt))

	body := eventBody(hobby.ID, "Backwards", 24*time.Hour, 51.5, -0.12, 0)
	body["endsAt"] = time.Now().UTC().Format(time.RFC3339)
	w, env := doJSON(t, r, http.MethodPost, "/api/events", alice, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, CodeInvalidSchedule, env.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/events", alice, eventBody(hobby.ID, "Nowhere", time.Hour, 95, 0, 0))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, CodeInvalidLocation, env.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/events", alice, eventBody("missing", "Orphan", time.Hour, 0, 0, 0))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, CodeHobbyNotFound, env.Code)
}

func TestAttendEvent_CapacityAndIdempotence(t *testing.T) {
	r := newTestRouter(t)
	_, alice := seedUser(t, "alice")
	_, bob := seedUser(t, "bob")
	_, carol := seedUser(t, "carol")
	hobby := createHobby(t, r, alice, "Board games", models.CategoryGames)
	event := createEvent(t, r, alice, eventBody(hobby.ID, "Catan night", time.Hour, 40.7, -74.0, 1))
	path := "/api/events/" + event.ID + "/attend"

	w, env := doJSON(t, r, http.MethodPost, path, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Event](t, env.Data)
	require.Equal(t, 1, got.AttendeeCount)
	require.True(t, got.Attending)

	w, _ = doJSON(t, r, http.MethodPost, path, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodPost, path, carol, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, CodeEventFull, env.Code)

	_, env = doJSON(t, r, http.MethodDelete, path, bob, nil)
	require.Equal(t, 0, decode[models.Event](t, env.Data).AttendeeCount)

	w, _ = doJSON(t, r, http.MethodPost, path, carol, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetNearbyEvents_SortedByDistance(t *testing.T) {
	r := newTestRouter(t)
	_, alice := seedUser(t, "alice")
	hobby := createHobby(t, r, alice, "Cycling", models.CategorySports)

	far := createEvent(t, r, alice, eventBody(hobby.ID, "Far", time.Hour, 40.76, -73.98, 0))
	near := createEvent(t, r, alice, eventBody(hobby.ID, "Near", time.Hour, 40.713, -74.006, 0))
	createEvent(t, r, alice, eventBody(hobby.ID, "Other city", time.Hour, 34.05, -118.24, 0))

	w, env := doJSON(t, r, http.MethodGet, "/api/events/nearby?lat=40.7128&lng=-74.0060&radius=10", alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	events := decode[[]models.Event](t, env.Data)
	require.Len(t, events, 2)
	require.Equal(t, near.ID, events[0].ID)
	require.Equal(t, far.ID, events[1].ID)
	require.NotNil(t, events[0].DistanceKm)
	require.Less(t, *events[0].DistanceKm, *events[1].DistanceKm)

	w, env = doJSON(t, r, http.MethodGet, "/api/events/nearby?lat=abc&lng=0", alice, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, CodeInvalidLocation, env.Code)
}

func TestGetEvents_FilterAndOrganizerRules(t *testing.T) {
	r := newTestRouter(t)
	_, alice := seedUser(t, "alice")
	_, bob := seedUser(t, "bob")
	hobby := createHobby(t, r, alice, "Knitting", models.CategoryCrafts)
	other := createHobby(t, r, bob, "Jazz", models.CategoryMusic)

	later := createEvent(t, r, alice, eventBody(hobby.ID, "Later", 48*time.Hour, 0, 0, 0))
	sooner := createEvent(t, r, alice, eventBody(hobby.ID, "Sooner", 24*time.Hour, 0, 0, 0))
	createEvent(t, r, bob, eventBody(other.ID, "Jam", 24*time.Hour, 0, 0, 0))

	_, env := doJSON(t, r, http.MethodGet, "/api/events?hobbyId="+hobby.ID, bob, nil)
	events := decode[[]models.Event](t, env.Data)
	require.Len(t, events, 2)
	require.Equal(t, sooner.ID, events[0].ID)
	require.Equal(t, later.ID, events[1].ID)

	w, _ := doJSON(t, r, http.MethodGet, "/api/events?from=yesterday", bob, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPut, "/api/events/"+later.ID, bob, map[string]string{"title": "Hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w, env = doJSON(t, r, http.MethodPut, "/api/events/"+later.ID, alice, map[string]int{"capacity": 12})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 12, decode[models.Event](t, env.Data).Capacity)

	w, _ = doJSON(t, r, http.MethodDelete, "/api/events/"+later.ID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/api/events/"+later.ID, alice, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
