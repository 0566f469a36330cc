package handlers

import (
	"net/http"
	"testing"

	"hobbyhub/internal/models"

	"github.com/stretchr/testify/require"
)

func createHobby(t *testing.T, r http.Handler, token, name string, category models.HobbyCategory) models.Hobby {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/api/hobbies", token, map[string]any{
		"name": name, "description": "d", "category": category,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Hobby](t, env.Data)
}

func TestCreateHobby_OwnerIsFirstMember(t *testing.T) {
	r := newTestRouter(t)
	_, token := seedUser(t, "alice")

	hobby := createHobby(t, r, token, "Bouldering", models.CategorySports)
	require.Equal(t, 1, hobby.MemberCount)
	require.True(t, hobby.Joined)

	w, env := doJSON(t, r, http.MethodPost, "/api/hobbies", token, map[string]any{
		"name": "Bad", "category": "underwater-basketweaving",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, CodeInvalidCategory, env.Code)
}

func TestGetHobbies_FiltersAndPaging(t *testing.T) {
	r := newTestRouter(t)
	_, alice := seedUser(t, "alice")
	_, bob := seedUser(t, "bob")

	createHobby(t, r, alice, "Bouldering", models.CategorySports)
	createHobby(t, r, alice, "Watercolour", models.CategoryArts)
	createHobby(t, r, bob, "Trail running", models.CategorySports)

	w, env := doJSON(t, r, http.MethodGet, "/api/hobbies?category=sports", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, env.Count)
	require.EqualValues(t, 2, env.Total)

	_, env = doJSON(t, r, http.MethodGet, "/api/hobbies?search=WATER", bob, nil)
	list := decode[[]models.Hobby](t, env.Data)
	require.Len(t, list, 1)
	require.Equal(t, "Watercolour", list[0].Name)
	require.False(t, list[0].Joined)

	_, env = doJSON(t, r, http.MethodGet, "/api/hobbies?limit=2&page=2", bob, nil)
	require.Equal(t, 1, env.Count)
	require.EqualValues(t, 3, env.Total)
}

func TestJoinLeaveHobby(t *testing.T) {
	r := newTestRouter(t)
	_, alice := seedUser(t, "alice")
	_, bob := seedUser(t, "bob")
	hobby := createHobby(t, r, alice, "Chess", models.CategoryGames)

	path := "/api/hobbies/" + hobby.ID + "/join"
	_, env := doJSON(t, r, http.MethodPost, path, bob, nil)
	joined := decode[models.Hobby](t, env.Data)
	require.Equal(t, 2, joined.MemberCount)
	require.True(t, joined.Joined)

	// second join is a no-op
	_, env = doJSON(t, r, http.MethodPost, path, bob, nil)
	require.Equal(t, 2, decode[models.Hobby](t, env.Data).MemberCount)

	_, env = doJSON(t, r, http.MethodDelete, path, bob, nil)
	left := decode[models.Hobby](t, env.Data)
	require.Equal(t, 1, left.MemberCount)
	require.False(t, left.Joined)

	w, env := doJSON(t, r, http.MethodPost, "/api/hobbies/missing/join", bob, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, CodeHobbyNotFound, env.Code)
}

func TestUpdateDeleteHobby_OwnerOnly(t *testing.T) {
	r := newTestRouter(t)
	_, alice := seedUser(t, "alice")
	_, bob := seedUser(t, "bob")
	hobby := createHobby(t, r, alice, "Pottery", models.CategoryCrafts)
	path := "/api/hobbies/" + hobby.ID

	w, env := doJSON(t, r, http.MethodPut, path, bob, map[string]string{"name": "Mine now"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, CodeForbidden, env.Code)

	w, env = doJSON(t, r, http.MethodPut, path, alice, map[string]string{"name": "Wheel pottery"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Wheel pottery", decode[models.Hobby](t, env.Data).Name)

	w, _ = doJSON(t, r, http.MethodDelete, path, bob, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, path, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, path, alice, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
