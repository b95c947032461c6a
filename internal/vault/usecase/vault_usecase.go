package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/fieldguard/internal/database"
	apperrors "github.com/allisson/fieldguard/internal/errors"
	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
	vaultService "github.com/allisson/fieldguard/internal/vault/service"
)

// vaultUseCase implements VaultUseCase.
type vaultUseCase struct {
	txManager database.TxManager
	keys      KeyRepository
	keeper    vaultDomain.KMSKeeper
	name      string
	algorithm vaultDomain.Algorithm
	logger    *slog.Logger

	mu     sync.Mutex
	cipher vaultService.AEAD
}

// NewVaultUseCase creates a VaultUseCase. keeper may be nil, in which case key material is
// stored unwrapped. txManager may be nil for stores without transactions.
func NewVaultUseCase(
	txManager database.TxManager,
	keys KeyRepository,
	keeper vaultDomain.KMSKeeper,
	name string,
	algorithm vaultDomain.Algorithm,
	logger *slog.Logger,
) VaultUseCase {
	if name == "" {
		name = vaultDomain.DefaultKeyName
	}
	if algorithm == "" {
		algorithm = vaultDomain.AESGCM
	}
	return &vaultUseCase{
		txManager: txManager,
		keys:      keys,
		keeper:    keeper,
		name:      name,
		algorithm: algorithm,
		logger:    logger,
	}
}

// Encrypt seals plaintext under the vault key, creating the key on first use.
func (v *vaultUseCase) Encrypt(ctx context.Context, plaintext string) (string, error) {
	c, err := v.loadCipher(ctx, true)
	if err != nil {
		v.logger.Error("failed to load vault key", slog.String("key_name", v.name), slog.Any("error", err))
		return "", vaultDomain.ErrSecureFailed
	}

	sealed, err := c.Seal([]byte(plaintext), v.aad())
	if err != nil {
		v.logger.Error("failed to seal value", slog.Any("error", err))
		return "", vaultDomain.ErrSecureFailed
	}

	return vaultDomain.CiphertextPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. It never creates a key.
func (v *vaultUseCase) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	encoded, ok := strings.CutPrefix(ciphertext, vaultDomain.CiphertextPrefix)
	if !ok {
		return "", vaultDomain.ErrMalformedCiphertext
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", vaultDomain.ErrMalformedCiphertext
	}

	c, err := v.loadCipher(ctx, false)
	if err != nil {
		if errors.Is(err, vaultDomain.ErrVaultKeyNotFound) {
			return "", vaultDomain.ErrKeyNotFound
		}
		v.logger.Error("failed to load vault key", slog.String("key_name", v.name), slog.Any("error", err))
		return "", vaultDomain.ErrDecryptFailed
	}

	plaintext, err := c.Open(sealed, v.aad())
	if err != nil {
		v.logger.Error("failed to open value", slog.Any("error", err))
		return "", vaultDomain.ErrDecryptFailed
	}
	return string(plaintext), nil
}

// CreateKey generates and stores the vault key.
func (v *vaultUseCase) CreateKey(ctx context.Context) (*vaultDomain.VaultKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key, raw, err := v.newKey(ctx)
	if err != nil {
		return nil, err
	}
	defer vaultDomain.Zero(raw)

	err = v.withTx(ctx, func(ctx context.Context) error {
		_, err := v.keys.GetByName(ctx, v.name)
		switch {
		case err == nil:
			return vaultDomain.ErrVaultKeyAlreadyExists
		case !errors.Is(err, vaultDomain.ErrVaultKeyNotFound):
			return err
		}
		return v.keys.Create(ctx, key)
	})
	if err != nil {
		return nil, err
	}

	v.logger.Info("vault key created",
		slog.String("key_id", key.ID.String()),
		slog.String("key_name", key.Name),
		slog.String("algorithm", string(key.Algorithm)),
		slog.Bool("wrapped", key.Wrapped),
	)
	return key, nil
}

func (v *vaultUseCase) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if v.txManager == nil {
		return fn(ctx)
	}
	return v.txManager.WithTx(ctx, fn)
}

func (v *vaultUseCase) aad() []byte {
	return []byte(v.name)
}

// loadCipher returns the cached cipher, fetching the key on first use. With create set a
// missing key is generated; a concurrent creator winning the insert is read back.
func (v *vaultUseCase) loadCipher(ctx context.Context, create bool) (vaultService.AEAD, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cipher != nil {
		return v.cipher, nil
	}

	key, err := v.keys.GetByName(ctx, v.name)
	if errors.Is(err, vaultDomain.ErrVaultKeyNotFound) && create {
		var raw []byte
		key, raw, err = v.newKey(ctx)
		if err != nil {
			return nil, err
		}
		vaultDomain.Zero(raw)

		err = v.keys.Create(ctx, key)
		if errors.Is(err, vaultDomain.ErrVaultKeyAlreadyExists) {
			key, err = v.keys.GetByName(ctx, v.name)
		} else if err == nil {
			v.logger.Info("vault key generated", slog.String("key_id", key.ID.String()))
		}
	}
	if err != nil {
		return nil, err
	}

	material, err := v.unwrap(ctx, key)
	if err != nil {
		return nil, err
	}
	defer vaultDomain.Zero(material)

	c, err := vaultService.NewCipher(material, key.Algorithm)
	if err != nil {
		return nil, err
	}
	v.cipher = c
	return c, nil
}

// newKey generates key material and returns the storable key together with the raw
// material. Callers zero the raw material.
func (v *vaultUseCase) newKey(ctx context.Context) (*vaultDomain.VaultKey, []byte, error) {
	raw, err := vaultService.GenerateKey()
	if err != nil {
		return nil, nil, err
	}

	key := &vaultDomain.VaultKey{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      v.name,
		Algorithm: v.algorithm,
		Material:  append([]byte(nil), raw...),
		CreatedAt: time.Now().UTC(),
	}

	if v.keeper != nil {
		wrapped, err := v.keeper.Encrypt(ctx, raw)
		if err != nil {
			vaultDomain.Zero(raw)
			return nil, nil, apperrors.Wrap(err, "failed to wrap vault key")
		}
		vaultDomain.Zero(key.Material)
		key.Material = wrapped
		key.Wrapped = true
	}

	return key, raw, nil
}

func (v *vaultUseCase) unwrap(ctx context.Context, key *vaultDomain.VaultKey) ([]byte, error) {
	if !key.Wrapped {
		return append([]byte(nil), key.Material...), nil
	}
	if v.keeper == nil {
		return nil, apperrors.New("vault key is wrapped but no KMS keeper is configured")
	}
	material, err := v.keeper.Decrypt(ctx, key.Material)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap vault key")
	}
	return material, nil
}
