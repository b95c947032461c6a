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

// PostgreSQLSubmissionRepository implements the submission store for PostgreSQL.
//
// Database schema requirements:
//   - submission_key: TEXT PRIMARY KEY
//   - value: BYTEA
//   - expires_at: TIMESTAMP WITH TIME ZONE
//   - created_at: TIMESTAMP WITH TIME ZONE
type PostgreSQLSubmissionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSubmissionRepository creates a new PostgreSQL submission repository.
func NewPostgreSQLSubmissionRepository(db *sql.DB) *PostgreSQLSubmissionRepository {
	return &PostgreSQLSubmissionRepository{db: db}
}

// SetIfAbsent inserts key, or takes over an expired row, in one statement. A live row
// makes the conditional update a no-op and zero rows are affected.
func (p *PostgreSQLSubmissionRepository) SetIfAbsent(
	ctx context.Context,
	key string,
	value []byte,
	ttl time.Duration,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO submissions (submission_key, value, expires_at, created_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (submission_key) DO UPDATE
			  SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
			  WHERE submissions.expires_at <= EXCLUDED.created_at`

	now := time.Now().UTC()
	res, err := querier.ExecContext(ctx, query, key, value, now.Add(ttl), now)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to store submission")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to read affected rows")
	}
	return rows == 1, nil
}

// Get returns the live value under key.
func (p *PostgreSQLSubmissionRepository) Get(ctx context.Context, key string) ([]byte, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT value FROM submissions WHERE submission_key = $1 AND expires_at > $2`

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
func (p *PostgreSQLSubmissionRepository) Delete(ctx context.Context, key string) error {
	querier := database.GetTx(ctx, p.db)

	if _, err := querier.ExecContext(ctx, `DELETE FROM submissions WHERE submission_key = $1`, key); err != nil {
		return apperrors.Wrap(err, "failed to delete submission")
	}
	return nil
}

// DeleteExpired removes rows that expired at or before now.
func (p *PostgreSQLSubmissionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	res, err := querier.ExecContext(ctx, `DELETE FROM submissions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired submissions")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return rows, nil
}
