package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/allisson/fieldguard/internal/config"
	"github.com/allisson/fieldguard/internal/metrics"
	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

// memoryConfig returns a configuration that needs no external services.
func memoryConfig() *config.Config {
	return &config.Config{
		ServerHost:                  "localhost",
		ServerPort:                  8080,
		DBDriver:                    config.DriverMemory,
		LogLevel:                    "error",
		MetricsNamespace:            "fieldguard_test",
		MetricsPort:                 8081,
		VaultAlgorithm:              string(vaultDomain.AESGCM),
		VaultKeyID:                  vaultDomain.DefaultKeyName,
		SecurityMaxAttempts:         3,
		SecurityBlockDuration:       15 * time.Minute,
		SecurityCheckSQLInjection:   true,
		SecurityCheckXSS:            true,
		SecurityCheckSensitiveData:  true,
		SecurityRateLimitingEnabled: true,
		DuplicateSubmissionWindow:   5 * time.Second,
		SubmissionCleanupInterval:   10 * time.Millisecond,
		LockoutCleanupInterval:      10 * time.Millisecond,
	}
}

// TestNewContainer verifies that a new container can be created with a valid configuration.
func TestNewContainer(t *testing.T) {
	cfg := memoryConfig()

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

// TestContainerLogger verifies that the logger is a singleton.
func TestContainerLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "invalid"} {
		t.Run(level, func(t *testing.T) {
			container := NewContainer(&config.Config{LogLevel: level})

			logger := container.Logger()
			require.NotNil(t, logger)
			assert.Same(t, logger, container.Logger())
		})
	}
}

// TestContainerInitializationErrors verifies that initialization errors are cached.
func TestContainerInitializationErrors(t *testing.T) {
	container := NewContainer(&config.Config{DBDriver: "invalid_driver"})

	_, err := container.DB()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")

	_, err = container.DB()
	assert.Error(t, err, "second call returns the stored error")

	_, err = container.SubmissionRepository()
	assert.Error(t, err)

	_, err = container.VaultKeyRepository()
	assert.Error(t, err)
}

// TestContainerLazyInitialization verifies that components are only initialized when accessed.
func TestContainerLazyInitialization(t *testing.T) {
	container := NewContainer(memoryConfig())

	assert.Nil(t, container.logger)
	assert.Nil(t, container.validationUseCase)

	_, err := container.ValidationUseCase()
	require.NoError(t, err)

	assert.NotNil(t, container.logger)
	assert.NotNil(t, container.vaultUseCase, "the field validator pulls in the vault")
	assert.NotNil(t, container.lockoutTracker)
}

// TestContainerMemoryMode verifies that the memory driver needs no database.
func TestContainerMemoryMode(t *testing.T) {
	container := NewContainer(memoryConfig())
	t.Cleanup(func() { _ = container.Shutdown(context.Background()) })

	db, err := container.DB()
	require.NoError(t, err)
	assert.Nil(t, db)

	txManager, err := container.TxManager()
	require.NoError(t, err)
	assert.Nil(t, txManager)

	server, err := container.HTTPServer()
	require.NoError(t, err)
	assert.NotNil(t, server.GetHandler())

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, metricsServer, "metrics are disabled")

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.IsType(t, &metrics.NoOpBusinessMetrics{}, businessMetrics)
}

// TestContainerValidationFlow runs a form and an SSN field through the assembled graph.
func TestContainerValidationFlow(t *testing.T) {
	ctx := context.Background()
	container := NewContainer(memoryConfig())
	t.Cleanup(func() { _ = container.Shutdown(ctx) })

	useCase, err := container.ValidationUseCase()
	require.NoError(t, err)

	schema, err := validationDomain.SchemaByName(validationDomain.SchemaLogin)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result := useCase.ValidateForm(ctx, map[string]any{"email": "not-an-email"}, schema, "user-1")
		assert.False(t, result.IsValid)
	}
	locked := useCase.ValidateForm(ctx, map[string]any{"email": "a@b.co"}, schema, "user-1")
	assert.True(t, locked.HasCode(validationDomain.CodeAccountLocked))
	assert.True(t, useCase.LockoutStats(ctx, "user-1").Locked)

	result := useCase.ValidateField(ctx, "ssn", "123-45-6789", []validationDomain.Rule{{Kind: validationDomain.KindSsn}})
	require.True(t, result.IsValid, "%v", result.Errors)

	ciphertext, ok := result.SanitizedValue.(string)
	require.True(t, ok)
	assert.Contains(t, ciphertext, vaultDomain.CiphertextPrefix)

	vault, err := container.VaultUseCase()
	require.NoError(t, err)
	plaintext, err := vault.Decrypt(ctx, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "123456789", plaintext)
}

// TestContainerKMSKeeper verifies that a keeper URI wraps the vault key at rest.
func TestContainerKMSKeeper(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	cfg.KMSKeyURI = "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

	container := NewContainer(cfg)
	t.Cleanup(func() { _ = container.Shutdown(ctx) })

	keeper, err := container.KMSKeeper()
	require.NoError(t, err)
	require.NotNil(t, keeper)

	vault, err := container.VaultUseCase()
	require.NoError(t, err)

	key, err := vault.CreateKey(ctx)
	require.NoError(t, err)
	assert.True(t, key.Wrapped)

	ciphertext, err := vault.Encrypt(ctx, "021000021")
	require.NoError(t, err)
	plaintext, err := vault.Decrypt(ctx, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "021000021", plaintext)
}

// TestContainerInvalidKMSKeyURI verifies that a bad keeper URI fails the vault.
func TestContainerInvalidKMSKeyURI(t *testing.T) {
	cfg := memoryConfig()
	cfg.KMSKeyURI = "nosuchscheme://key"

	container := NewContainer(cfg)

	_, err := container.VaultUseCase()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kms keeper")

	_, err = container.ValidationUseCase()
	assert.Error(t, err, "the field validator depends on the vault")
}

// TestContainerInvalidSecurityConfig verifies that out of range limits fail early.
func TestContainerInvalidSecurityConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.SecurityMaxAttempts = 0

	container := NewContainer(cfg)

	_, err := container.SecurityConfigStore()
	require.Error(t, err)
	assert.ErrorIs(t, err, validationDomain.ErrInvalidSecurityConfig)

	_, err = container.LockoutTracker()
	assert.Error(t, err)
}

// TestContainerMetricsEnabled verifies that metrics components are created when enabled.
func TestContainerMetricsEnabled(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	cfg.MetricsEnabled = true

	container := NewContainer(cfg)
	t.Cleanup(func() { _ = container.Shutdown(ctx) })

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	require.NotNil(t, provider)

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	_, isFindingRecorder := businessMetrics.(metrics.FindingRecorder)
	assert.True(t, isFindingRecorder)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.NotNil(t, metricsServer)

	_, err = container.ValidationUseCase()
	require.NoError(t, err)
}

// TestContainerBackgroundJobs verifies that Shutdown stops the cleanup goroutines.
func TestContainerBackgroundJobs(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	container := NewContainer(memoryConfig())

	require.NoError(t, container.StartBackgroundJobs())
	require.NoError(t, container.StartBackgroundJobs(), "second start is a no-op")

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, container.Shutdown(context.Background()))
}

// TestContainerShutdown verifies that the shutdown method can be called safely.
func TestContainerShutdown(t *testing.T) {
	container := NewContainer(&config.Config{LogLevel: "info"})

	assert.NoError(t, container.Shutdown(context.TODO()))
}
