package services

import (
	"context"
	"strings"
	"time"

	"github.com/contriboard/contriboard/pkg/logger"
)

// SchedulerService re-runs the sync pipeline for the configured
// repositories once a day at a fixed hour.
type SchedulerService struct {
	cacheService *LeaderboardCacheService
	repositories []string
	hour         int
}

func NewSchedulerService(cacheService *LeaderboardCacheService, repositories []string, hour int) *SchedulerService {
	return &SchedulerService{
		cacheService: cacheService,
		repositories: repositories,
		hour:         hour,
	}
}

// Start launches the scheduler loop. It wakes at the top of each hour and
// runs the daily sync when the configured hour comes around.
func (s *SchedulerService) Start(ctx context.Context) {
	go func() {
		var lastRun time.Time

		for {
			now := time.Now()

			if now.Hour() == s.hour && !sameDay(now, lastRun) {
				s.runDailySync(ctx)
				lastRun = now
			}

			// Sleep until the next hour
			nextHour := now.Add(1 * time.Hour)
			nextHour = time.Date(nextHour.Year(), nextHour.Month(), nextHour.Day(), nextHour.Hour(), 0, 0, 0, nextHour.Location())

			select {
			case <-ctx.Done():
				logger.Infof("Scheduler stopping")
				return
			case <-time.After(nextHour.Sub(now)):
			}
		}
	}()
}

// runDailySync syncs every configured repository in turn. One repository's
// failure is logged and does not abort the rest of the run.
func (s *SchedulerService) runDailySync(ctx context.Context) {
	logger.Infof("Starting scheduled sync for %d repositories", len(s.repositories))

	for _, fullName := range s.repositories {
		owner, repo, ok := splitRepoFullName(fullName)
		if !ok {
			logger.Warnf("Skipping malformed repository name %q", fullName)
			continue
		}

		if err := s.cacheService.RefreshRepository(ctx, owner, repo); err != nil {
			logger.WithError(err).Errorf("Scheduled sync failed for %s", fullName)
			continue
		}

		logger.Infof("Scheduled sync completed for %s", fullName)
	}
}

// splitRepoFullName splits "owner/name" into its parts
func splitRepoFullName(fullName string) (string, string, bool) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
