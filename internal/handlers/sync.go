package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contriboard/contriboard/internal/services"
)

type SyncHandler struct {
	cacheService *services.LeaderboardCacheService
}

func NewSyncHandler(cacheService *services.LeaderboardCacheService) *SyncHandler {
	return &SyncHandler{cacheService: cacheService}
}

// TriggerSync re-runs the pipeline for a repository and refreshes every
// cached leaderboard view for it.
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")

	if err := h.cacheService.RefreshRepository(c.Request.Context(), owner, repo); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "synced",
		"repository": fmt.Sprintf("%s/%s", owner, repo),
	})
}
