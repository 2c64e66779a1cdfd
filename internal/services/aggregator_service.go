package services

import (
	"sort"

	"github.com/contriboard/contriboard/internal/models"
	"github.com/contriboard/contriboard/pkg/logger"
)

// AggregatorService folds fetched work items into per-contributor summaries
type AggregatorService struct {
	pointsService *PointsService
}

func NewAggregatorService(pointsService *PointsService) *AggregatorService {
	return &AggregatorService{pointsService: pointsService}
}

// Aggregate folds issues and pull requests into one summary per contributor,
// sorted by points descending (ties broken by username ascending). Only
// closed non-PR issues and merged pull requests count. Items without a
// resolvable author (deleted accounts, some bots) are dropped silently.
//
// The first-time flag is scoped to this pass: a username's first item here
// earns the bonus whether or not the user has contributed before. Issues are
// processed before pull requests, each in API response order, so ordering
// decides which item carries the bonus but never changes a user's total.
func (s *AggregatorService) Aggregate(issues, pullRequests []models.WorkItem) []*models.ContributorSummary {
	summaries := make(map[string]*models.ContributorSummary)
	firstSeenInPass := make(map[string]bool)
	var order []string

	items := make([]models.WorkItem, 0, len(issues)+len(pullRequests))
	for _, issue := range issues {
		if !issue.IsPullRequest && issue.Countable() {
			items = append(items, issue)
		}
	}
	for _, pr := range pullRequests {
		if pr.IsPullRequest && pr.Countable() {
			items = append(items, pr)
		}
	}

	for i := range items {
		item := &items[i]
		if item.Author == "" {
			logger.Debugf("Skipping work item %d: no resolvable author", item.ID)
			continue
		}

		// Checked before insertion: only the very first item for a
		// username in this pass is flagged first-time.
		firstTime := !firstSeenInPass[item.Author]
		firstSeenInPass[item.Author] = true

		summary, ok := summaries[item.Author]
		if !ok {
			summary = models.NewContributorSummary(item.Author)
			summary.FirstTime = firstTime
			summaries[item.Author] = summary
			order = append(order, item.Author)
		}

		summary.Add(s.pointsService.ScoreItem(item, firstTime))
	}

	result := make([]*models.ContributorSummary, 0, len(summaries))
	for _, username := range order {
		result = append(result, summaries[username])
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Points != result[j].Points {
			return result[i].Points > result[j].Points
		}
		return result[i].Username < result[j].Username
	})

	return result
}
