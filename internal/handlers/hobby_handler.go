package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"hobbyhub/internal/database"
	"hobbyhub/internal/models"
	"hobbyhub/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateHobbyRequest represents the request payload for creating a hobby
type CreateHobbyRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Category    models.HobbyCategory `json:"category"`
	ImageURL    string               `json:"imageUrl"`
}

// UpdateHobbyRequest represents the request payload for updating a hobby
type UpdateHobbyRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Category    *models.HobbyCategory `json:"category"`
	ImageURL    *string               `json:"imageUrl"`
}

// markJoined sets Joined on the hobbies userID is a member of.
func markJoined(db *gorm.DB, userID string, hobbies []models.Hobby) {
	if len(hobbies) == 0 {
		return
	}
	ids := make([]string, len(hobbies))
	for i := range hobbies {
		ids[i] = hobbies[i].ID
	}
	var joined []string
	if err := db.Model(&models.HobbyMember{}).
		Where("user_id = ? AND hobby_id IN ?", userID, ids).
		Pluck("hobby_id", &joined).Error; err != nil {
		return
	}
	set := make(map[string]struct{}, len(joined))
	for _, id := range joined {
		set[id] = struct{}{}
	}
	for i := range hobbies {
		_, hobbies[i].Joined = set[hobbies[i].ID]
	}
}

// loadHobby fetches a hobby or writes the 404/500 response and returns false.
func loadHobby(c *gin.Context, db *gorm.DB, id string) (*models.Hobby, bool) {
	var hobby models.Hobby
	if err := db.Where("id = ?", id).First(&hobby).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, CodeHobbyNotFound, "Hobby not found")
		} else {
			respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch hobby")
		}
		return nil, false
	}
	return &hobby, true
}

/*
GetHobbies handles GET /api/hobbies
Optional query params: category, search (name substring), page, limit.
*/
func GetHobbies(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	p := parsePage(c)

	db := database.GetDB()
	query := db.Model(&models.Hobby{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to count hobbies")
		return
	}

	var hobbies []models.Hobby
	if err := query.Session(&gorm.Session{}).
		Order("member_count desc, name asc").
		Limit(p.Limit).Offset(p.Offset()).
		Find(&hobbies).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to fetch hobbies")
		return
	}
	markJoined(db, userID, hobbies)

	respondPage(c, hobbies, len(hobbies), p, total)
}

// GetHobbyByID handles GET /api/hobbies/:id
func GetHobbyByID(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	hobby, ok := loadHobby(c, db, c.Param("id"))
	if !ok {
		return
	}
	list := []models.Hobby{*hobby}
	markJoined(db, userID, list)
	respondData(c, http.StatusOK, list[0], "")
}

// CreateHobby handles POST /api/hobbies. The creator becomes the owner and first member.
func CreateHobby(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}

	var req CreateHobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	category := req.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		respondError(c, http.StatusBadRequest, CodeInvalidCategory, "Invalid category")
		return
	}

	hobby := models.Hobby{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    category,
		ImageURL:    req.ImageURL,
		OwnerID:     userID,
		MemberCount: 1,
		Joined:      true,
	}
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hobby).Error; err != nil {
			return err
		}
		return tx.Create(&models.HobbyMember{HobbyID: hobby.ID, UserID: userID, JoinedAt: time.Now()}).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to create hobby")
		return
	}

	realtime.GetHub().Notify(realtime.Notification{Type: realtime.HobbyCreated, EntityID: hobby.ID, ActorID: userID})
	respondData(c, http.StatusCreated, hobby, "")
}

// UpdateHobby handles PUT /api/hobbies/:id (owner only)
func UpdateHobby(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	hobby, ok := loadHobby(c, db, c.Param("id"))
	if !ok {
		return
	}
	if hobby.OwnerID != userID {
		respondError(c, http.StatusForbidden, CodeForbidden, "Only the owner can edit this hobby")
		return
	}

	var req UpdateHobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Name must not be empty")
			return
		}
		hobby.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		hobby.Description = *req.Description
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			respondError(c, http.StatusBadRequest, CodeInvalidCategory, "Invalid category")
			return
		}
		hobby.Category = *req.Category
	}
	if req.ImageURL != nil {
		hobby.ImageURL = *req.ImageURL
	}

	if err := db.Save(hobby).Error; err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to update hobby")
		return
	}
	list := []models.Hobby{*hobby}
	markJoined(db, userID, list)
	respondData(c, http.StatusOK, list[0], "")
}

// DeleteHobby handles DELETE /api/hobbies/:id (owner only)
func DeleteHobby(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	hobby, ok := loadHobby(c, db, c.Param("id"))
	if !ok {
		return
	}
	if hobby.OwnerID != userID {
		respondError(c, http.StatusForbidden, CodeForbidden, "Only the owner can delete this hobby")
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hobby_id = ?", hobby.ID).Delete(&models.HobbyMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(hobby).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to delete hobby")
		return
	}
	respondData(c, http.StatusOK, gin.H{"id": hobby.ID}, "Hobby deleted successfully")
}

// JoinHobby handles POST /api/hobbies/:id/join. Joining twice is a no-op.
func JoinHobby(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	hobby, ok := loadHobby(c, db, c.Param("id"))
	if !ok {
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		member := models.HobbyMember{HobbyID: hobby.ID, UserID: userID, JoinedAt: time.Now()}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Hobby{}).Where("id = ?", hobby.ID).
			Update("member_count", gorm.Expr("member_count + 1")).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to join hobby")
		return
	}
	GetHobbyByID(c)
}

// LeaveHobby handles DELETE /api/hobbies/:id/join
func LeaveHobby(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		return
	}
	db := database.GetDB()
	hobby, ok := loadHobby(c, db, c.Param("id"))
	if !ok {
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("hobby_id = ? AND user_id = ?", hobby.ID, userID).Delete(&models.HobbyMember{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Model(&models.Hobby{}).Where("id = ? AND member_count > 0", hobby.ID).
			Update("member_count", gorm.Expr("member_count - 1")).Error
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to leave hobby")
		return
	}
	GetHobbyByID(c)
}
