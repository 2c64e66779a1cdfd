package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/contriboard/contriboard/internal/services"
	"github.com/contriboard/contriboard/pkg/logger"
)

type LeaderboardHandler struct {
	cacheService *services.LeaderboardCacheService
}

func NewLeaderboardHandler(cacheService *services.LeaderboardCacheService) *LeaderboardHandler {
	return &LeaderboardHandler{cacheService: cacheService}
}

// GetLeaderboard serves the cached leaderboard view for a repository
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")
	userType := c.Query("user_type")

	payload, err := h.cacheService.GetLeaderboard(c.Request.Context(), owner, repo, userType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", payload)
}

// ExportLeaderboard serves the leaderboard as an xlsx download
func (h *LeaderboardHandler) ExportLeaderboard(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")
	userType := c.Query("user_type")

	raw, err := h.cacheService.GetLeaderboard(c.Request.Context(), owner, repo, userType)
	if err != nil {
		respondError(c, err)
		return
	}

	var payload services.LeaderboardPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		respondError(c, err)
		return
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Leaderboard"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		respondError(c, err)
		return
	}

	headers := []string{"Rank", "Username", "Points", "Contributions", "User Type"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(sheet, cell, header)
	}

	for i, entry := range payload.Leaderboard {
		row := i + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%d", row), entry.Rank)
		file.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.Username)
		file.SetCellValue(sheet, fmt.Sprintf("C%d", row), entry.Points)
		file.SetCellValue(sheet, fmt.Sprintf("D%d", row), entry.Contributions)
		file.SetCellValue(sheet, fmt.Sprintf("E%d", row), string(entry.UserType))
	}

	filename := fmt.Sprintf("leaderboard-%s-%s.xlsx", owner, repo)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if _, err := file.WriteTo(c.Writer); err != nil {
		logger.WithError(err).Errorf("Failed to write leaderboard export for %s/%s", owner, repo)
	}
}
