package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contriboard/contriboard/internal/models"
)

func newAggregator() *AggregatorService {
	return NewAggregatorService(NewPointsService(DefaultPointConfig()))
}

func TestAggregateFiltering(t *testing.T) {
	aggregator := newAggregator()

	openIssue := models.WorkItem{Author: "alice", URL: "u1", State: "open"}
	prShapedIssue := mergedPR("alice", "u2")
	unmergedPR := models.WorkItem{Author: "bob", URL: "u3", State: "closed", IsPullRequest: true}

	summaries := aggregator.Aggregate(
		[]models.WorkItem{openIssue, prShapedIssue, closedIssue("carol", "u4")},
		[]models.WorkItem{unmergedPR, mergedPR("dave", "u5")},
	)

	require.Len(t, summaries, 2)
	usernames := []string{summaries[0].Username, summaries[1].Username}
	assert.ElementsMatch(t, []string{"carol", "dave"}, usernames)
}

func TestAggregateFirstTimePerPass(t *testing.T) {
	aggregator := newAggregator()

	// The documented two-item example: the first item for a previously
	// unseen user earns 5+20+35+15=75, the second earns 5+5=10.
	summaries := aggregator.Aggregate(
		[]models.WorkItem{
			closedIssue("alice", "https://example.com/1", "hard", "security"),
			closedIssue("alice", "https://example.com/2", "easy"),
		},
		nil,
	)

	require.Len(t, summaries, 1)
	summary := summaries[0]

	assert.Equal(t, "alice", summary.Username)
	assert.Equal(t, 85, summary.Points)
	assert.Equal(t, 2, summary.Contributions)
	assert.True(t, summary.FirstTime)

	require.Len(t, summary.Details, 2)
	assert.Equal(t, 75, summary.Details[0].Points)
	assert.Equal(t, 15, summary.Details[0].Breakdown.FirstTime)
	assert.Equal(t, 10, summary.Details[1].Points)
	assert.Equal(t, 0, summary.Details[1].Breakdown.FirstTime)
}

func TestAggregateFirstTimeSpansIssuesAndPRs(t *testing.T) {
	aggregator := newAggregator()

	// Issues are processed before pull requests, so the issue carries the
	// first-time bonus even though both items belong to the same user.
	summaries := aggregator.Aggregate(
		[]models.WorkItem{closedIssue("alice", "u1")},
		[]models.WorkItem{mergedPR("alice", "u2")},
	)

	require.Len(t, summaries, 1)
	require.Len(t, summaries[0].Details, 2)
	assert.Equal(t, models.WorkItemTypeIssue, summaries[0].Details[0].Type)
	assert.Equal(t, 15, summaries[0].Details[0].Breakdown.FirstTime)
	assert.Equal(t, 0, summaries[0].Details[1].Breakdown.FirstTime)
}

func TestAggregateSkipsMissingAuthor(t *testing.T) {
	aggregator := newAggregator()

	ghost := closedIssue("", "u1")
	summaries := aggregator.Aggregate([]models.WorkItem{ghost, closedIssue("alice", "u2")}, nil)

	require.Len(t, summaries, 1)
	assert.Equal(t, "alice", summaries[0].Username)
}

func TestAggregateSorting(t *testing.T) {
	aggregator := newAggregator()

	summaries := aggregator.Aggregate(
		[]models.WorkItem{
			closedIssue("zoe", "u1"),          // 5 + 15 first-time = 20
			closedIssue("amy", "u2"),          // 20
			closedIssue("mel", "u3", "hard"),  // 40
		},
		nil,
	)

	require.Len(t, summaries, 3)
	assert.Equal(t, "mel", summaries[0].Username)
	// Equal points tie-break by username ascending
	assert.Equal(t, "amy", summaries[1].Username)
	assert.Equal(t, "zoe", summaries[2].Username)
}

func TestAggregateDetailOrder(t *testing.T) {
	aggregator := newAggregator()

	base := time.Now()
	first := closedIssue("alice", "u1")
	first.CreatedAt = base.Add(-48 * time.Hour)
	second := closedIssue("alice", "u2")
	second.CreatedAt = base.Add(-24 * time.Hour)

	summaries := aggregator.Aggregate([]models.WorkItem{first, second}, nil)

	require.Len(t, summaries, 1)
	require.Len(t, summaries[0].Details, 2)
	assert.Equal(t, "u1", summaries[0].Details[0].URL)
	assert.Equal(t, "u2", summaries[0].Details[1].URL)
}

func TestAggregateEmptyInput(t *testing.T) {
	aggregator := newAggregator()

	summaries := aggregator.Aggregate(nil, nil)
	assert.Empty(t, summaries)
}
