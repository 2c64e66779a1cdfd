package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contriboard/contriboard/internal/apperrors"
	"github.com/contriboard/contriboard/internal/services"
)

type UserHandler struct {
	leaderboardService *services.LeaderboardService
	userCache          *services.UserCacheService
}

func NewUserHandler(leaderboardService *services.LeaderboardService, userCache *services.UserCacheService) *UserHandler {
	return &UserHandler{
		leaderboardService: leaderboardService,
		userCache:          userCache,
	}
}

type adjustPointsRequest struct {
	Points      *int   `json:"points"`
	Description string `json:"description"`
}

type setUserTypeRequest struct {
	Type string `json:"type"`
}

// GetUser serves a contributor's points, type and details, preferring the
// per-user cache.
func (h *UserHandler) GetUser(c *gin.Context) {
	username := c.Param("username")

	if view, ok := h.userCache.Get(c.Request.Context(), username); ok {
		c.JSON(http.StatusOK, view)
		return
	}

	record, err := h.leaderboardService.GetUser(username)
	if err != nil {
		respondError(c, err)
		return
	}

	h.userCache.Refresh(c.Request.Context(), record)

	c.JSON(http.StatusOK, services.UserView{
		Username: record.Username,
		Points:   record.Points,
		UserType: record.UserType,
		Details:  record.Details,
	})
}

// AdjustPoints applies a manual point delta to a contributor
func (h *UserHandler) AdjustPoints(c *gin.Context) {
	username := c.Param("username")

	var req adjustPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}
	if req.Points == nil {
		respondError(c, apperrors.Wrapf(apperrors.ErrInvalidInput, "points is required"))
		return
	}

	oldPoints, newPoints, err := h.leaderboardService.AdjustPoints(c.Request.Context(), username, *req.Points, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":   username,
		"old_points": oldPoints,
		"new_points": newPoints,
	})
}

// SetUserType sets or toggles a contributor's classification
func (h *UserHandler) SetUserType(c *gin.Context) {
	username := c.Param("username")

	var req setUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	oldType, newType, err := h.leaderboardService.SetUserType(c.Request.Context(), username, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": username,
		"old_type": oldType,
		"new_type": newType,
	})
}
