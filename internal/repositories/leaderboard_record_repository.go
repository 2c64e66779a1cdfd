package repositories

import (
	"database/sql"
	"time"

	"github.com/contriboard/contriboard/internal/models"
)

type LeaderboardRecordRepository struct {
	db *sql.DB
}

func NewLeaderboardRecordRepository(db *sql.DB) *LeaderboardRecordRepository {
	return &LeaderboardRecordRepository{db: db}
}

func (r *LeaderboardRecordRepository) Create(record *models.LeaderboardRecord) error {
	query := `
		INSERT INTO leaderboard_records (
			id, username, points, contribution_types, contribution_urls,
			details, adjustments, user_type, last_updated, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.ID, record.Username, record.Points, record.ContributionTypes,
		record.ContributionURLs, record.Details, record.Adjustments,
		record.UserType, record.LastUpdated, record.CreatedAt, record.UpdatedAt,
	)

	return err
}

func (r *LeaderboardRecordRepository) GetByID(id string) (*models.LeaderboardRecord, error) {
	query := `SELECT * FROM leaderboard_records WHERE id = ?`

	var record models.LeaderboardRecord
	err := r.db.QueryRow(query, id).Scan(
		&record.ID, &record.Username, &record.Points, &record.ContributionTypes,
		&record.ContributionURLs, &record.Details, &record.Adjustments,
		&record.UserType, &record.LastUpdated, &record.CreatedAt, &record.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &record, nil
}

// GetByUsername returns all records for a username, oldest first. The lookup
// is case-insensitive. Multiple rows can exist for one username because the
// legacy dedup key allows divergent re-sync rows.
func (r *LeaderboardRecordRepository) GetByUsername(username string) ([]*models.LeaderboardRecord, error) {
	query := `SELECT * FROM leaderboard_records WHERE username = ? COLLATE NOCASE ORDER BY created_at ASC`

	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetAll returns every record, highest points first
func (r *LeaderboardRecordRepository) GetAll() ([]*models.LeaderboardRecord, error) {
	query := `SELECT * FROM leaderboard_records ORDER BY points DESC, username ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByUserType returns records for one user type, highest points first
func (r *LeaderboardRecordRepository) GetByUserType(userType models.UserType) ([]*models.LeaderboardRecord, error) {
	query := `SELECT * FROM leaderboard_records WHERE user_type = ? ORDER BY points DESC, username ASC`

	rows, err := r.db.Query(query, userType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (r *LeaderboardRecordRepository) Update(record *models.LeaderboardRecord) error {
	record.UpdatedAt = time.Now()

	query := `
		UPDATE leaderboard_records SET
			username = ?, points = ?, contribution_types = ?, contribution_urls = ?,
			details = ?, adjustments = ?, user_type = ?, last_updated = ?, updated_at = ?
		WHERE id = ?
	`

	_, err := r.db.Exec(query,
		record.Username, record.Points, record.ContributionTypes, record.ContributionURLs,
		record.Details, record.Adjustments, record.UserType, record.LastUpdated,
		record.UpdatedAt, record.ID,
	)

	return err
}

// UpdatePoints writes the new point total and the adjustment log in a
// single statement so callers observe both fields change together.
func (r *LeaderboardRecordRepository) UpdatePoints(id string, points int, adjustments string) error {
	query := `
		UPDATE leaderboard_records SET
			points = ?, adjustments = ?, last_updated = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now()
	_, err := r.db.Exec(query, points, adjustments, now, now, id)
	return err
}

// UpdateUserType writes the new user type for a record
func (r *LeaderboardRecordRepository) UpdateUserType(id string, userType models.UserType) error {
	query := `UPDATE leaderboard_records SET user_type = ?, updated_at = ? WHERE id = ?`

	_, err := r.db.Exec(query, userType, time.Now(), id)
	return err
}

func (r *LeaderboardRecordRepository) Delete(id string) error {
	query := `DELETE FROM leaderboard_records WHERE id = ?`
	_, err := r.db.Exec(query, id)
	return err
}

func scanRecords(rows *sql.Rows) ([]*models.LeaderboardRecord, error) {
	var records []*models.LeaderboardRecord
	for rows.Next() {
		var record models.LeaderboardRecord
		err := rows.Scan(
			&record.ID, &record.Username, &record.Points, &record.ContributionTypes,
			&record.ContributionURLs, &record.Details, &record.Adjustments,
			&record.UserType, &record.LastUpdated, &record.CreatedAt, &record.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}
