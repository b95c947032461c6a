package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/fieldguard/internal/database"
	apperrors "github.com/allisson/fieldguard/internal/errors"
	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
)

// MySQLSubmissionRepository implements the submission store for MySQL.
//
// Database schema requirements:
//   - submission_key: VARCHAR(64) PRIMARY KEY
//   - value: BLOB
//   - expires_at: DATETIME(6)
//   - created_at: DATETIME(6)
type MySQLSubmissionRepository struct {
	db *sql.DB
}

// NewMySQLSubmissionRepository creates a new MySQL submission repository.
func NewMySQLSubmissionRepository(db *sql.DB) *MySQLSubmissionRepository {
	return &MySQLSubmissionRepository{db: db}
}

// SetIfAbsent inserts key, or takes over an expired row, in one statement.
//
// MySQL reports 1 affected row for an insert, 2 for an update that changed the row and
// 0 when the live row was left untouched. Assignments run left to right, so expires_at
// is replaced last and every IF reads the previous expiry.
func (m *MySQLSubmissionRepository) SetIfAbsent(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO submissions (submission_key, value, expires_at, created_at)
			  VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  value = IF(expires_at <= VALUES(created_at), VALUES(value), value),
			  created_at = IF(expires_at <= VALUES(created_at), VALUES(created_at), created_at),
			  expires_at = IF(expires_at <= VALUES(created_at), VALUES(expires_at), expires_at)`

	now := time.Now().UTC()
	res, err := querier.ExecContext(ctx, query, key, value, now.Add(ttl), now)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to store submission")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}
	return rows == 1 || rows == 2, nil
}

// Get returns the live value under key.
func (m *MySQLSubmissionRepository) Get(ctx context.Context, key string) ([]byte, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT value FROM submissions WHERE submission_key = ? AND expires_at > ?`

	var value []byte
	err := querier.QueryRowContext(ctx, query, key, time.Now().UTC()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, validationDomain.ErrSubmissionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get submission")
	}
	return value, nil
}

// Delete removes key.
func (m *MySQLSubmissionRepository) Delete(ctx context.Context, key string) error {
	querier := database.GetTx(ctx, m.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM submissions WHERE submission_key = ?`, key); err != nil {
		return apperrors.Wrap(err, "failed to delete submission")
	}
	return nil
}

// DeleteExpired removes rows that expired at or before now.
func (m *MySQLSubmissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	res, err := querier.ExecContext(ctx, `DELETE FROM submissions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired submissions")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return rows, nil
}
