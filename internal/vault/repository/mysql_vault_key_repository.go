package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/fieldguard/internal/database"
	apperrors "github.com/allisson/fieldguard/internal/errors"
	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

const mysqlDuplicateEntry = 1062

// MySQLVaultKeyRepository implements vault key persistence for MySQL.
//
// Database schema requirements:
//   - id: BINARY(16) PRIMARY KEY
//   - name: VARCHAR(255) UNIQUE
//   - algorithm: VARCHAR(32)
//   - key_material: BLOB
//   - wrapped: BOOLEAN
//   - created_at: DATETIME(6)
type MySQLVaultKeyRepository struct {
	db *sql.DB
}

// NewMySQLVaultKeyRepository creates a new MySQL vault key repository.
func NewMySQLVaultKeyRepository(db *sql.DB) *MySQLVaultKeyRepository {
	return &MySQLVaultKeyRepository{db: db}
}

// Create inserts key. A duplicate name returns ErrVaultKeyAlreadyExists.
func (m *MySQLVaultKeyRepository) Create(ctx context.Context, key *vaultDomain.VaultKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO vault_keys (id, name, algorithm, key_material, wrapped, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal vault key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		key.Name,
		string(key.Algorithm),
		key.Material,
		key.Wrapped,
		key.CreatedAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return vaultDomain.ErrVaultKeyAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create vault key")
	}
	return nil
}

// GetByName returns the key stored under name.
func (m *MySQLVaultKeyRepository) GetByName(ctx context.Context, name string) (*vaultDomain.VaultKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, algorithm, key_material, wrapped, created_at
			  FROM vault_keys WHERE name = ?`

	var key vaultDomain.VaultKey
	var id []byte
	var algorithm string
	err := querier.QueryRowContext(ctx, query, name).Scan(
		&id,
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

	if err := key.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal vault key id")
	}
	key.Algorithm = vaultDomain.Algorithm(algorithm)
	return &key, nil
}
