package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/contriboard/contriboard/internal/models"
	"github.com/contriboard/contriboard/pkg/cache"
)

const testSchema = `
CREATE TABLE leaderboard_records (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    points INTEGER NOT NULL DEFAULT 0,
    contribution_types TEXT NOT NULL DEFAULT '',
    contribution_urls TEXT NOT NULL DEFAULT '',
    details TEXT NOT NULL DEFAULT '[]',
    adjustments TEXT NOT NULL DEFAULT '[]',
    user_type TEXT NOT NULL DEFAULT 'External',
    last_updated DATETIME NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

// fakeCacheStore is an in-memory cache.Store with TTL handling and a
// failure switch.
type fakeCacheStore struct {
	mu      sync.Mutex
	data    map[string]fakeEntry
	failing bool
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{data: make(map[string]fakeEntry)}
}

func (f *fakeCacheStore) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return "", errors.New("cache down")
	}

	entry, ok := f.data[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", cache.ErrMiss
	}
	return entry.value, nil
}

func (f *fakeCacheStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failing {
		return errors.New("cache down")
	}

	f.data[key] = fakeEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (f *fakeCacheStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.data, key)
	return nil
}

// fakeProvider serves canned work items and counts fetches
type fakeProvider struct {
	issues []models.WorkItem
	prs    []models.WorkItem
	err    error

	mu         sync.Mutex
	issueCalls int
	prCalls    int
}

func (f *fakeProvider) ListIssues(ctx context.Context, owner, repo string) ([]models.WorkItem, error) {
	f.mu.Lock()
	f.issueCalls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.issues, nil
}

func (f *fakeProvider) ListPullRequests(ctx context.Context, owner, repo string) ([]models.WorkItem, error) {
	f.mu.Lock()
	f.prCalls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.prs, nil
}

func (f *fakeProvider) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueCalls + f.prCalls
}

func closedIssue(author, url string, labels ...string) models.WorkItem {
	closed := time.Now()
	return models.WorkItem{
		Author:    author,
		Title:     "issue " + url,
		URL:       url,
		State:     "closed",
		CreatedAt: time.Now().Add(-24 * time.Hour),
		ClosedAt:  &closed,
		Labels:    labels,
	}
}

func mergedPR(author, url string, labels ...string) models.WorkItem {
	merged := time.Now()
	return models.WorkItem{
		Author:        author,
		Title:         "pr " + url,
		URL:           url,
		State:         "closed",
		CreatedAt:     time.Now().Add(-24 * time.Hour),
		MergedAt:      &merged,
		Labels:        labels,
		IsPullRequest: true,
	}
}
