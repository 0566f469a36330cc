package handlers

import (
	"net/http"
	"strconv"

	"hobbyhub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "code" field of failure bodies.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeUnknownProvider     = "UNKNOWN_PROVIDER"
	CodeSocialAuthFailed    = "SOCIAL_AUTH_FAILED"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeHobbyNotFound       = "HOBBY_NOT_FOUND"
	CodeEventNotFound       = "EVENT_NOT_FOUND"
	CodeInvalidCategory     = "INVALID_CATEGORY"
	CodeInvalidLocation     = "INVALID_LOCATION"
	CodeInvalidSchedule     = "INVALID_SCHEDULE"
	CodeEventFull           = "EVENT_FULL"
	CodeInternal            = "INTERNAL_ERROR"
)

// respondError writes the failure body {error, code}.
func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}

// respondData writes the success envelope {success, data[, message]}.
func respondData(c *gin.Context, status int, data any, message string) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// respondPage writes a list envelope with the page size in "count" and the match total.
func respondPage(c *gin.Context, data any, count int, p page, total int64) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"count":   count,
		"total":   total,
		"page":    p.Number,
		"limit":   p.Limit,
	})
}

// currentUserID returns the authenticated user or writes a 401 and returns "".
func currentUserID(c *gin.Context) string {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "User ID not found in token")
	}
	return userID
}

type page struct {
	Number int
	Limit  int
}

func (p page) Offset() int { return (p.Number - 1) * p.Limit }

// parsePage reads ?page (default 1) and ?limit (default 20, capped at 100).
func parsePage(c *gin.Context) page {
	p := page{Number: 1, Limit: 20}
	if n, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && n >= 1 {
		p.Number = n
	}
	if n, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && n >= 1 {
		p.Limit = n
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}
