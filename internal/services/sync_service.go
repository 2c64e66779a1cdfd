package services

import (
	"context"
	"sync"
	"time"

	"github.com/contriboard/contriboard/internal/models"
	"github.com/contriboard/contriboard/pkg/logger"
)

// SyncService drives one aggregation pass: fetch work items, score and fold
// them, persist the resulting summaries.
type SyncService struct {
	provider       WorkItemProvider
	aggregator     *AggregatorService
	leaderboard    *LeaderboardService
	requestTimeout time.Duration
}

func NewSyncService(provider WorkItemProvider, aggregator *AggregatorService, leaderboard *LeaderboardService, requestTimeout time.Duration) *SyncService {
	return &SyncService{
		provider:       provider,
		aggregator:     aggregator,
		leaderboard:    leaderboard,
		requestTimeout: requestTimeout,
	}
}

// SyncRepository runs the full pipeline for one repository and returns the
// summaries of the pass. Issues and pull requests are fetched concurrently;
// a provider failure on either aborts the pass. Persistence failures on
// individual contributors are logged inside PersistSummaries and surfaced
// as a combined error, but do not prevent the other contributors from being
// written.
func (s *SyncService) SyncRepository(ctx context.Context, owner, repo string) ([]*models.ContributorSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	logger.Infof("Syncing %s/%s", owner, repo)

	var (
		wg        sync.WaitGroup
		issues    []models.WorkItem
		prs       []models.WorkItem
		issuesErr error
		prsErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		issues, issuesErr = s.provider.ListIssues(ctx, owner, repo)
	}()
	go func() {
		defer wg.Done()
		prs, prsErr = s.provider.ListPullRequests(ctx, owner, repo)
	}()
	wg.Wait()

	if issuesErr != nil {
		return nil, issuesErr
	}
	if prsErr != nil {
		return nil, prsErr
	}

	summaries := s.aggregator.Aggregate(issues, prs)

	if err := s.leaderboard.PersistSummaries(summaries); err != nil {
		return summaries, err
	}

	logger.Infof("Synced %s/%s: %d contributors from %d issues and %d pull requests",
		owner, repo, len(summaries), len(issues), len(prs))

	return summaries, nil
}
