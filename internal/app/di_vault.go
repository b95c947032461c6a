package app

import (
	"fmt"

	"github.com/allisson/fieldguard/internal/config"
	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
	vaultRepository "github.com/allisson/fieldguard/internal/vault/repository"
	vaultService "github.com/allisson/fieldguard/internal/vault/service"
	vaultUseCase "github.com/allisson/fieldguard/internal/vault/usecase"
)

// KMSKeeper returns the keeper that wraps the vault key. It is nil when KMS_KEY_URI is empty.
func (c *Container) KMSKeeper() (vaultDomain.KMSKeeper, error) {
	var err error
	c.kmsKeeperInit.Do(func() {
		c.kmsKeeper, err = c.initKMSKeeper()
		if err != nil {
			c.initErrors["kmsKeeper"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["kmsKeeper"]; exists {
		return nil, storedErr
	}
	return c.kmsKeeper, nil
}

// VaultKeyRepository returns the vault key store for the configured driver.
func (c *Container) VaultKeyRepository() (vaultUseCase.KeyRepository, error) {
	var err error
	c.vaultKeyRepoInit.Do(func() {
		c.vaultKeyRepo, err = c.initVaultKeyRepository()
		if err != nil {
			c.initErrors["vaultKeyRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultKeyRepo"]; exists {
		return nil, storedErr
	}
	return c.vaultKeyRepo, nil
}

// VaultUseCase returns the sensitive data vault.
func (c *Container) VaultUseCase() (vaultUseCase.VaultUseCase, error) {
	var err error
	c.vaultUseCaseInit.Do(func() {
		c.vaultUseCase, err = c.initVaultUseCase()
		if err != nil {
			c.initErrors["vaultUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultUseCase"]; exists {
		return nil, storedErr
	}
	return c.vaultUseCase, nil
}

// initKMSKeeper opens the configured gocloud.dev secrets keeper.
func (c *Container) initKMSKeeper() (vaultDomain.KMSKeeper, error) {
	if c.config.KMSKeyURI == "" {
		return nil, nil
	}

	keeper, err := vaultService.NewKeeperOpener().OpenKeeper(c.ctx, c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open kms keeper: %w", err)
	}
	return keeper, nil
}

// initVaultKeyRepository selects the vault key store based on the database driver.
func (c *Container) initVaultKeyRepository() (vaultUseCase.KeyRepository, error) {
	if c.config.DBDriver == config.DriverMemory {
		return vaultRepository.NewMemoryVaultKeyRepository(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for vault key repository: %w", err)
	}

	switch c.config.DBDriver {
	case config.DriverMySQL:
		return vaultRepository.NewMySQLVaultKeyRepository(db), nil
	case config.DriverPostgres:
		return vaultRepository.NewPostgreSQLVaultKeyRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initVaultUseCase creates the vault with its key store and optional keeper.
func (c *Container) initVaultUseCase() (vaultUseCase.VaultUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for vault use case: %w", err)
	}

	keys, err := c.VaultKeyRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault key repository for vault use case: %w", err)
	}

	keeper, err := c.KMSKeeper()
	if err != nil {
		return nil, fmt.Errorf("failed to get kms keeper for vault use case: %w", err)
	}

	baseUseCase := vaultUseCase.NewVaultUseCase(
		txManager,
		keys,
		keeper,
		c.config.VaultKeyID,
		vaultDomain.Algorithm(c.config.VaultAlgorithm),
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for vault use case: %w", err)
		}
		return vaultUseCase.NewVaultUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
