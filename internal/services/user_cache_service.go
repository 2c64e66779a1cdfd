package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/contriboard/contriboard/internal/models"
	"github.com/contriboard/contriboard/pkg/cache"
	"github.com/contriboard/contriboard/pkg/logger"
)

// UserView is the cached per-user snapshot
type UserView struct {
	Username string          `json:"username"`
	Points   int             `json:"points"`
	UserType models.UserType `json:"user_type"`
	Details  string          `json:"details"`
}

// UserCacheService maintains the per-user cache keys (points, type,
// details). The keys are refreshed write-through whenever a record is
// mutated; cache failures are logged and never fatal.
type UserCacheService struct {
	store cache.Store
	ttl   time.Duration
}

func NewUserCacheService(store cache.Store, ttl time.Duration) *UserCacheService {
	return &UserCacheService{store: store, ttl: ttl}
}

// Refresh writes a record's points, type and details to the per-user keys
func (s *UserCacheService) Refresh(ctx context.Context, record *models.LeaderboardRecord) {
	username := strings.ToLower(record.Username)

	entries := map[string]string{
		userKey(username, "points"):  strconv.Itoa(record.Points),
		userKey(username, "type"):    string(record.UserType),
		userKey(username, "details"): record.Details,
	}

	for key, value := range entries {
		if err := s.store.Set(ctx, key, value, s.ttl); err != nil {
			logger.WithError(err).Warnf("Failed to refresh cache key %s", key)
		}
	}
}

// Get returns the cached view for a username, or false when any sub-key is
// absent or the cache is unreachable.
func (s *UserCacheService) Get(ctx context.Context, username string) (*UserView, bool) {
	key := strings.ToLower(username)

	points, err := s.store.Get(ctx, userKey(key, "points"))
	if err != nil {
		s.logMiss(err, username)
		return nil, false
	}
	userType, err := s.store.Get(ctx, userKey(key, "type"))
	if err != nil {
		s.logMiss(err, username)
		return nil, false
	}
	details, err := s.store.Get(ctx, userKey(key, "details"))
	if err != nil {
		s.logMiss(err, username)
		return nil, false
	}

	pointsValue, err := strconv.Atoi(points)
	if err != nil {
		logger.Warnf("Discarding unreadable cached points for %s: %q", username, points)
		return nil, false
	}

	return &UserView{
		Username: username,
		Points:   pointsValue,
		UserType: models.UserType(userType),
		Details:  details,
	}, true
}

func (s *UserCacheService) logMiss(err error, username string) {
	if !errors.Is(err, cache.ErrMiss) {
		logger.WithError(err).Warnf("User cache unavailable for %s", username)
	}
}

func userKey(username, field string) string {
	return fmt.Sprintf("user:%s:%s", username, field)
}
