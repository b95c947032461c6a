package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/allisson/fieldguard/internal/database"
	apperrors "github.com/allisson/fieldguard/internal/errors"
	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

const pgUniqueViolation = "23505"

// PostgreSQLVaultKeyRepository implements vault key persistence for PostgreSQL.
//
// Database schema requirements:
//   - id: UUID PRIMARY KEY
//   - name: TEXT UNIQUE
//   - algorithm: TEXT
//   - key_material: BYTEA
//   - wrapped: BOOLEAN
//   - created_at: TIMESTAMP WITH TIME ZONE
type PostgreSQLVaultKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLVaultKeyRepository creates a new PostgreSQL vault key repository.
func NewPostgreSQLVaultKeyRepository(db *sql.DB) *PostgreSQLVaultKeyRepository {
	return &PostgreSQLVaultKeyRepository{db: db}
}

// Create inserts key. A duplicate name returns ErrVaultKeyAlreadyExists.
func (p *PostgreSQLVaultKeyRepository) Create(ctx context.Context, key *vaultDomain.VaultKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO vault_keys (id, name, algorithm, key_material, wrapped, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
		key.Name,
		string(key.Algorithm),
		key.Material,
		key.Wrapped,
		key.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return vaultDomain.ErrVaultKeyAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create vault key")
	}
	return nil
}

// GetByName returns the key stored under name.
func (p *PostgreSQLVaultKeyRepository) GetByName(ctx context.Context, name string) (*vaultDomain.VaultKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, algorithm, key_material, wrapped, created_at
			  FROM vault_keys WHERE name = $1`

	var key vaultDomain.VaultKey
	var algorithm string
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&key.ID,
		&key.Name,
		&algorithm,
		&key.Material,
		&key.Wrapped,
		&key.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrVaultKeyNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get vault key")
	}

	key.Algorithm = vaultDomain.Algorithm(algorithm)
	return &key, nil
}
