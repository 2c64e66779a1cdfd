package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contriboard/contriboard/internal/models"
)

func TestCalculate(t *testing.T) {
	service := NewPointsService(DefaultPointConfig())

	testCases := []struct {
		name              string
		labels            []string
		firstTime         bool
		expectedTotal     int
		expectedBreakdown models.PointBreakdown
	}{
		{
			name:              "No labels gives base only",
			labels:            nil,
			expectedTotal:     5,
			expectedBreakdown: models.PointBreakdown{Base: 5},
		},
		{
			name:              "Unknown labels contribute nothing",
			labels:            []string{"wontfix", "question"},
			expectedTotal:     5,
			expectedBreakdown: models.PointBreakdown{Base: 5},
		},
		{
			name:              "Single difficulty label",
			labels:            []string{"medium"},
			expectedTotal:     15,
			expectedBreakdown: models.PointBreakdown{Base: 5, Difficulty: 10},
		},
		{
			name:              "First difficulty match wins",
			labels:            []string{"easy", "hard"},
			expectedTotal:     10,
			expectedBreakdown: models.PointBreakdown{Base: 5, Difficulty: 5},
		},
		{
			name:              "Special bonuses are additive",
			labels:            []string{"security", "feature"},
			expectedTotal:     65,
			expectedBreakdown: models.PointBreakdown{Base: 5, Special: 60},
		},
		{
			name:              "Difficulty plus two specials",
			labels:            []string{"hard", "security", "performance"},
			expectedTotal:     80,
			expectedBreakdown: models.PointBreakdown{Base: 5, Difficulty: 20, Special: 55},
		},
		{
			name:              "Label matching is case-insensitive",
			labels:            []string{"HARD", "Security"},
			expectedTotal:     60,
			expectedBreakdown: models.PointBreakdown{Base: 5, Difficulty: 20, Special: 35},
		},
		{
			name:              "First-time bonus applies once",
			labels:            []string{"hard", "security"},
			firstTime:         true,
			expectedTotal:     75,
			expectedBreakdown: models.PointBreakdown{Base: 5, Difficulty: 20, Special: 35, FirstTime: 15},
		},
		{
			name:              "Follow-up item has no first-time bonus",
			labels:            []string{"easy"},
			expectedTotal:     10,
			expectedBreakdown: models.PointBreakdown{Base: 5, Difficulty: 5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item := closedIssue("alice", "https://example.com/1", tc.labels...)

			total, breakdown := service.Calculate(&item, tc.firstTime)

			assert.Equal(t, tc.expectedTotal, total)
			assert.Equal(t, tc.expectedBreakdown, breakdown)
			assert.Equal(t, breakdown.Total(), total)
		})
	}
}

func TestScoreItem(t *testing.T) {
	service := NewPointsService(DefaultPointConfig())

	item := mergedPR("bob", "https://example.com/pr/7", "enhancement")
	detail := service.ScoreItem(&item, true)

	assert.Equal(t, models.WorkItemTypePullRequest, detail.Type)
	assert.Equal(t, item.Title, detail.Title)
	assert.Equal(t, item.URL, detail.URL)
	assert.Equal(t, []string{"enhancement"}, detail.Labels)
	assert.Equal(t, 35, detail.Points) // 5 base + 15 enhancement + 15 first-time
	assert.Equal(t, 35, detail.Breakdown.Total())
}

func TestCalculateReturnsFreshBreakdowns(t *testing.T) {
	service := NewPointsService(DefaultPointConfig())
	item := closedIssue("alice", "https://example.com/2", "hard")

	_, first := service.Calculate(&item, true)
	_, second := service.Calculate(&item, false)

	// Each call builds its own breakdown; the earlier value must not be
	// mutated by later calls.
	assert.Equal(t, 15, first.FirstTime)
	assert.Equal(t, 0, second.FirstTime)
}
