package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// UserType classifies a contributor as inside or outside the organization
type UserType string

const (
	UserTypeInternal UserType = "Internal"
	UserTypeExternal UserType = "External"
)

// Valid reports whether the value is one of the known user types
func (t UserType) Valid() bool {
	return t == UserTypeInternal || t == UserTypeExternal
}

// Toggle returns the opposite user type
func (t UserType) Toggle() UserType {
	if t == UserTypeInternal {
		return UserTypeExternal
	}
	return UserTypeInternal
}

// PointAdjustment is one manual points change appended to a record's log
type PointAdjustment struct {
	Delta      int       `json:"delta"`
	Reason     string    `json:"reason"`
	AdjustedAt time.Time `json:"adjusted_at"`
}

// LeaderboardRecord is a persisted leaderboard row for one contributor.
// ContributionTypes and ContributionURLs are comma-joined in the order the
// contributions were scored; the URL string doubles as the dedup key
// together with the username.
type LeaderboardRecord struct {
	ID                string    `json:"id" db:"id"`
	Username          string    `json:"username" db:"username"`
	Points            int       `json:"points" db:"points"`
	ContributionTypes string    `json:"contribution_types" db:"contribution_types"`
	ContributionURLs  string    `json:"contribution_urls" db:"contribution_urls"`
	Details           string    `json:"details" db:"details"`
	Adjustments       string    `json:"adjustments" db:"adjustments"`
	UserType          UserType  `json:"user_type" db:"user_type"`
	LastUpdated       time.Time `json:"last_updated" db:"last_updated"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// NewLeaderboardRecord creates a record with a generated UUID. New
// contributors default to External until reclassified.
func NewLeaderboardRecord(username string) *LeaderboardRecord {
	now := time.Now()
	return &LeaderboardRecord{
		ID:          uuid.New().String(),
		Username:    username,
		UserType:    UserTypeExternal,
		LastUpdated: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate validates the LeaderboardRecord fields
func (r *LeaderboardRecord) Validate() error {
	if r.Username == "" {
		return errors.New("username is required")
	}
	if !r.UserType.Valid() {
		return errors.New("user type must be Internal or External")
	}
	return nil
}
