package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/contriboard/contriboard/internal/apperrors"
	"github.com/contriboard/contriboard/internal/models"
	"github.com/contriboard/contriboard/internal/repositories"
	"github.com/contriboard/contriboard/pkg/logger"
)

// keyedMutex hands out one mutex per key so writes for the same username
// are serialized within this process. Cross-process exclusion would need a
// unique index on the store side.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	return lock
}

// LeaderboardService persists contributor summaries and applies manual
// mutations to leaderboard records.
type LeaderboardService struct {
	recordRepo *repositories.LeaderboardRecordRepository
	userCache  *UserCacheService
	userLocks  *keyedMutex
}

func NewLeaderboardService(recordRepo *repositories.LeaderboardRecordRepository, userCache *UserCacheService) *LeaderboardService {
	return &LeaderboardService{
		recordRepo: recordRepo,
		userCache:  userCache,
		userLocks:  newKeyedMutex(),
	}
}

// UpsertSummary persists one contributor summary unless an identical record
// already exists. The dedup key is the case-insensitive username plus the
// byte-identical comma-joined contribution URL string: a re-sync that found
// no new items matches an earlier row and is a no-op, while a re-sync with
// even one new item produces a different URL string and therefore a new row
// alongside the old one. That is the compatibility behavior the tests pin
// down; see DESIGN.md for the username-keyed alternative.
func (s *LeaderboardService) UpsertSummary(summary *models.ContributorSummary) (bool, error) {
	if summary.Username == "" {
		return false, apperrors.Wrapf(apperrors.ErrInvalidInput, "summary has no username")
	}

	record, err := buildRecord(summary)
	if err != nil {
		return false, err
	}

	lock := s.userLocks.get(strings.ToLower(summary.Username))
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.recordRepo.GetByUsername(summary.Username)
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	for _, candidate := range existing {
		if candidate.ContributionURLs == record.ContributionURLs {
			return false, nil
		}
	}

	if err := s.recordRepo.Create(record); err != nil {
		return false, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	return true, nil
}

// PersistSummaries upserts a batch of summaries. A failure on one
// contributor is logged and collected but does not block the rest.
func (s *LeaderboardService) PersistSummaries(summaries []*models.ContributorSummary) error {
	var result *multierror.Error

	for _, summary := range summaries {
		created, err := s.UpsertSummary(summary)
		if err != nil {
			logger.WithError(err).Errorf("Failed to persist summary for %s", summary.Username)
			result = multierror.Append(result, err)
			continue
		}
		if created {
			logger.Debugf("Created leaderboard record for %s (%d points)", summary.Username, summary.Points)
		}
	}

	return result.ErrorOrNil()
}

// AdjustPoints adds delta (which may be negative) to a contributor's points
// and appends an entry to the record's adjustment log. Both fields are
// written in one statement. No floor is enforced; totals can go negative.
func (s *LeaderboardService) AdjustPoints(ctx context.Context, username string, delta int, reason string) (int, int, error) {
	if username == "" {
		return 0, 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "username is required")
	}

	lock := s.userLocks.get(strings.ToLower(username))
	lock.Lock()
	defer lock.Unlock()

	record, err := s.primaryRecord(username)
	if err != nil {
		return 0, 0, err
	}

	var adjustments []models.PointAdjustment
	if record.Adjustments != "" {
		if err := json.Unmarshal([]byte(record.Adjustments), &adjustments); err != nil {
			logger.WithError(err).Warnf("Resetting unreadable adjustment log for %s", username)
			adjustments = nil
		}
	}
	adjustments = append(adjustments, models.PointAdjustment{
		Delta:      delta,
		Reason:     reason,
		AdjustedAt: time.Now(),
	})

	adjustmentsJSON, err := json.Marshal(adjustments)
	if err != nil {
		return 0, 0, err
	}

	oldPoints := record.Points
	newPoints := oldPoints + delta

	if err := s.recordRepo.UpdatePoints(record.ID, newPoints, string(adjustmentsJSON)); err != nil {
		return 0, 0, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	record.Points = newPoints
	record.Adjustments = string(adjustmentsJSON)
	s.userCache.Refresh(ctx, record)

	return oldPoints, newPoints, nil
}

// SetUserType sets a contributor's classification. An empty requested type
// toggles Internal and External. A value that is neither Internal nor
// External is ignored and the current type is returned unchanged.
func (s *LeaderboardService) SetUserType(ctx context.Context, username, requested string) (models.UserType, models.UserType, error) {
	if username == "" {
		return "", "", apperrors.Wrapf(apperrors.ErrInvalidInput, "username is required")
	}

	lock := s.userLocks.get(strings.ToLower(username))
	lock.Lock()
	defer lock.Unlock()

	records, err := s.recordRepo.GetByUsername(username)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		return "", "", apperrors.Wrapf(apperrors.ErrNotFound, "no record for username %s", username)
	}

	oldType := records[0].UserType
	var newType models.UserType
	switch {
	case requested == "":
		newType = oldType.Toggle()
	case models.UserType(requested).Valid():
		newType = models.UserType(requested)
	default:
		logger.Warnf("Ignoring unknown user type %q for %s", requested, username)
		return oldType, oldType, nil
	}

	if newType != oldType {
		// All rows for the username change together so divergent legacy
		// rows never disagree about classification.
		for _, record := range records {
			if err := s.recordRepo.UpdateUserType(record.ID, newType); err != nil {
				return "", "", apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
			}
			record.UserType = newType
		}
	}

	s.userCache.Refresh(ctx, records[0])

	return oldType, newType, nil
}

// GetUser returns the oldest record for a username, the same row mutations
// apply to.
func (s *LeaderboardService) GetUser(username string) (*models.LeaderboardRecord, error) {
	if username == "" {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "username is required")
	}
	return s.primaryRecord(username)
}

// GetRecords returns persisted records, optionally filtered by user type
func (s *LeaderboardService) GetRecords(userType models.UserType) ([]*models.LeaderboardRecord, error) {
	var (
		records []*models.LeaderboardRecord
		err     error
	)

	if userType == "" {
		records, err = s.recordRepo.GetAll()
	} else {
		records, err = s.recordRepo.GetByUserType(userType)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	return records, nil
}

// UserTypes returns each username's classification, keyed by lowercased
// username.
func (s *LeaderboardService) UserTypes() (map[string]models.UserType, error) {
	records, err := s.recordRepo.GetAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}

	types := make(map[string]models.UserType, len(records))
	for _, record := range records {
		key := strings.ToLower(record.Username)
		if _, ok := types[key]; !ok {
			types[key] = record.UserType
		}
	}
	return types, nil
}

// primaryRecord returns the oldest record for a username. Mutations always
// target this row even when legacy duplicates exist.
func (s *LeaderboardService) primaryRecord(username string) (*models.LeaderboardRecord, error) {
	records, err := s.recordRepo.GetByUsername(username)
	if err != nil && err != sql.ErrNoRows {
		return nil, apperrors.Wrap(apperrors.ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "no record for username %s", username)
	}
	return records[0], nil
}

// buildRecord converts a summary into a persistable record. Contribution
// types and URLs are comma-joined in scoring order.
func buildRecord(summary *models.ContributorSummary) (*models.LeaderboardRecord, error) {
	types := make([]string, 0, len(summary.Details))
	urls := make([]string, 0, len(summary.Details))
	for _, detail := range summary.Details {
		types = append(types, string(detail.Type))
		urls = append(urls, detail.URL)
	}

	detailsJSON, err := json.Marshal(summary.Details)
	if err != nil {
		return nil, err
	}

	record := models.NewLeaderboardRecord(summary.Username)
	record.Points = summary.Points
	record.ContributionTypes = strings.Join(types, ",")
	record.ContributionURLs = strings.Join(urls, ",")
	record.Details = string(detailsJSON)
	record.Adjustments = "[]"

	return record, nil
}
