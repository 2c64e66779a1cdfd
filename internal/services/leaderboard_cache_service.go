package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/contriboard/contriboard/internal/apperrors"
	"github.com/contriboard/contriboard/internal/models"
	"github.com/contriboard/contriboard/pkg/cache"
	"github.com/contriboard/contriboard/pkg/logger"
)

// LeaderboardEntry is one row of the served leaderboard payload
type LeaderboardEntry struct {
	Rank          int                         `json:"rank"`
	Username      string                      `json:"username"`
	Points        int                         `json:"points"`
	Contributions int                         `json:"contributions"`
	UserType      models.UserType             `json:"user_type"`
	FirstTime     bool                        `json:"first_time"`
	Details       []models.ContributionDetail `json:"details"`
}

// PayloadMetadata describes when and for what a payload was generated
type PayloadMetadata struct {
	Repository  string    `json:"repository"`
	UserType    string    `json:"user_type"`
	GeneratedAt time.Time `json:"generated_at"`
}

// LeaderboardPayload is the served leaderboard view
type LeaderboardPayload struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	TotalItems  int                `json:"total_items"`
	Metadata    PayloadMetadata    `json:"metadata"`
}

// LeaderboardCacheService is the read-through cache in front of the sync
// pipeline. Hits are served verbatim with no freshness check beyond the
// TTL; misses and cache failures recompute and refill.
type LeaderboardCacheService struct {
	store       cache.Store
	syncService *SyncService
	leaderboard *LeaderboardService
	ttl         time.Duration
}

func NewLeaderboardCacheService(store cache.Store, syncService *SyncService, leaderboard *LeaderboardService, ttl time.Duration) *LeaderboardCacheService {
	return &LeaderboardCacheService{
		store:       store,
		syncService: syncService,
		leaderboard: leaderboard,
		ttl:         ttl,
	}
}

// GetLeaderboard returns the leaderboard payload for a repository and user
// type filter (empty means everyone), serving from cache when possible.
// The returned bytes are exactly what was cached, so repeated calls within
// the TTL are byte-identical.
func (s *LeaderboardCacheService) GetLeaderboard(ctx context.Context, owner, repo, userType string) ([]byte, error) {
	if userType != "" && !models.UserType(userType).Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown user type %q", userType)
	}

	key := leaderboardKey(owner, repo, userType)

	cached, err := s.store.Get(ctx, key)
	if err == nil {
		return []byte(cached), nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.WithError(err).Warnf("Leaderboard cache unavailable for %s, recomputing", key)
	}

	summaries, err := s.syncService.SyncRepository(ctx, owner, repo)
	if err != nil && summaries == nil {
		return nil, err
	}
	if err != nil {
		// Partial persistence failure: the pass itself completed, so the
		// view is still served from its summaries.
		logger.WithError(err).Warnf("Serving leaderboard for %s/%s despite persistence errors", owner, repo)
	}

	payload, err := s.buildPayload(owner, repo, userType, summaries)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, key, string(payload), s.ttl); err != nil {
		logger.WithError(err).Warnf("Failed to cache leaderboard for %s", key)
	}

	return payload, nil
}

// RefreshRepository recomputes the repository's leaderboard once and
// overwrites the cached payloads for every user type view. Used by the
// scheduler and the explicit sync endpoint.
func (s *LeaderboardCacheService) RefreshRepository(ctx context.Context, owner, repo string) error {
	summaries, err := s.syncService.SyncRepository(ctx, owner, repo)
	if err != nil && summaries == nil {
		return err
	}
	if err != nil {
		logger.WithError(err).Warnf("Refreshing leaderboard for %s/%s despite persistence errors", owner, repo)
	}

	for _, userType := range []string{"", string(models.UserTypeInternal), string(models.UserTypeExternal)} {
		payload, err := s.buildPayload(owner, repo, userType, summaries)
		if err != nil {
			return err
		}

		key := leaderboardKey(owner, repo, userType)
		if err := s.store.Set(ctx, key, string(payload), s.ttl); err != nil {
			logger.WithError(err).Warnf("Failed to cache leaderboard for %s", key)
		}
	}

	return nil
}

// buildPayload assembles the served view from pass summaries, attaching
// each contributor's persisted classification and ranking after the user
// type filter is applied.
func (s *LeaderboardCacheService) buildPayload(owner, repo, userType string, summaries []*models.ContributorSummary) ([]byte, error) {
	types, err := s.leaderboard.UserTypes()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(summaries))
	for _, summary := range summaries {
		contributorType, ok := types[strings.ToLower(summary.Username)]
		if !ok {
			contributorType = models.UserTypeExternal
		}
		if userType != "" && string(contributorType) != userType {
			continue
		}

		entries = append(entries, LeaderboardEntry{
			Rank:          len(entries) + 1,
			Username:      summary.Username,
			Points:        summary.Points,
			Contributions: summary.Contributions,
			UserType:      contributorType,
			FirstTime:     summary.FirstTime,
			Details:       summary.Details,
		})
	}

	payload := LeaderboardPayload{
		Leaderboard: entries,
		TotalItems:  len(entries),
		Metadata: PayloadMetadata{
			Repository:  fmt.Sprintf("%s/%s", owner, repo),
			UserType:    userType,
			GeneratedAt: time.Now(),
		},
	}

	return json.Marshal(payload)
}

func leaderboardKey(owner, repo, userType string) string {
	if userType == "" {
		userType = "all"
	}
	return fmt.Sprintf("leaderboard:%s/%s:%s", owner, repo, userType)
}
