package models

import "time"

// PointBreakdown itemizes how a contribution's points were earned.
// All components are non-negative; the total is their sum.
type PointBreakdown struct {
	Base       int `json:"base"`
	Difficulty int `json:"difficulty"`
	Special    int `json:"special"`
	FirstTime  int `json:"first_time"`
}

// Total returns the sum of all breakdown components
func (b PointBreakdown) Total() int {
	return b.Base + b.Difficulty + b.Special + b.FirstTime
}

// ContributionDetail records one scored contribution. Immutable once
// created; appended to a summary in processing order.
type ContributionDetail struct {
	Type      WorkItemType   `json:"type"`
	Title     string         `json:"title"`
	URL       string         `json:"url"`
	CreatedAt time.Time      `json:"created_at"`
	Labels    []string       `json:"labels"`
	Points    int            `json:"points"`
	Breakdown PointBreakdown `json:"breakdown"`
}

// ContributorSummary is the per-username fold of one aggregation pass.
// It is not retained across passes; persisted totals live in the store.
type ContributorSummary struct {
	Username      string               `json:"username"`
	Points        int                  `json:"points"`
	Contributions int                  `json:"contributions"`
	Details       []ContributionDetail `json:"details"`
	FirstTime     bool                 `json:"first_time"`
}

// NewContributorSummary creates an empty summary for a username
func NewContributorSummary(username string) *ContributorSummary {
	return &ContributorSummary{
		Username: username,
		Details:  make([]ContributionDetail, 0),
	}
}

// Add folds one scored contribution into the summary
func (s *ContributorSummary) Add(detail ContributionDetail) {
	s.Points += detail.Points
	s.Contributions++
	s.Details = append(s.Details, detail)
}
