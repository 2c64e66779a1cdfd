package services

import (
	"strings"

	"github.com/contriboard/contriboard/internal/models"
)

// PointConfig is the label-to-points table used for scoring. It is built
// once at startup and never mutated afterwards.
type PointConfig struct {
	Base           int
	Difficulty     map[string]int
	Special        map[string]int
	FirstTimeBonus int
}

// DefaultPointConfig returns the standard scoring table
func DefaultPointConfig() PointConfig {
	return PointConfig{
		Base: 5,
		Difficulty: map[string]int{
			"easy":   5,
			"medium": 10,
			"hard":   20,
		},
		Special: map[string]int{
			"feature":           25,
			"critical-bug":      30,
			"major-improvement": 20,
			"enhancement":       15,
			"security":          35,
			"performance":       20,
		},
		FirstTimeBonus: 15,
	}
}

type PointsService struct {
	config PointConfig
}

func NewPointsService(config PointConfig) *PointsService {
	return &PointsService{config: config}
}

// Calculate scores a single work item. Label matching is case-insensitive.
// At most one difficulty bonus applies (the first matching label in item
// order wins); special bonuses are additive across every matching label.
// The first-time bonus applies once, when the caller flags the item as the
// contributor's first in the current aggregation pass.
func (s *PointsService) Calculate(item *models.WorkItem, firstTime bool) (int, models.PointBreakdown) {
	breakdown := models.PointBreakdown{Base: s.config.Base}

	for _, label := range item.Labels {
		if value, ok := s.config.Difficulty[strings.ToLower(label)]; ok {
			breakdown.Difficulty = value
			break
		}
	}

	for _, label := range item.Labels {
		if value, ok := s.config.Special[strings.ToLower(label)]; ok {
			breakdown.Special += value
		}
	}

	if firstTime {
		breakdown.FirstTime = s.config.FirstTimeBonus
	}

	return breakdown.Total(), breakdown
}

// ScoreItem scores a work item and packages the result as a detail entry
func (s *PointsService) ScoreItem(item *models.WorkItem, firstTime bool) models.ContributionDetail {
	points, breakdown := s.Calculate(item, firstTime)

	return models.ContributionDetail{
		Type:      item.Type(),
		Title:     item.Title,
		URL:       item.URL,
		CreatedAt: item.CreatedAt,
		Labels:    item.Labels,
		Points:    points,
		Breakdown: breakdown,
	}
}
