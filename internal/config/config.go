// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	vaultDomain "github.com/allisson/fieldguard/internal/vault/domain"
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// DBDriver selects the store for vault keys and submissions ("postgres", "mysql", "memory").
	DBDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// RateLimitEnabled turns on per-IP rate limiting for the /v1 API.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for per-IP rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// KMSKeyURI is the gocloud.dev secrets URI used to wrap the vault key at rest.
	// Empty stores the key unwrapped.
	KMSKeyURI string
	// VaultAlgorithm is the AEAD used for sensitive values ("aes-gcm", "chacha20-poly1305").
	VaultAlgorithm string
	// VaultKeyID names the vault key in the key store.
	VaultKeyID string

	// SecurityMaxAttempts is the number of failed validations before a user is locked.
	SecurityMaxAttempts int
	// SecurityBlockDuration is the lockout length and the attempt-counting window.
	SecurityBlockDuration time.Duration
	// SecurityCheckSQLInjection enables the SQL injection scan.
	SecurityCheckSQLInjection bool
	// SecurityCheckXSS enables the XSS scan.
	SecurityCheckXSS bool
	// SecurityCheckCommandInjection enables the shell command injection scan.
	SecurityCheckCommandInjection bool
	// SecurityCheckPathTraversal enables the path traversal scan.
	SecurityCheckPathTraversal bool
	// SecurityCheckNoSQLInjection enables the NoSQL operator injection scan.
	SecurityCheckNoSQLInjection bool
	// SecurityCheckNullByte enables the null byte scan.
	SecurityCheckNullByte bool
	// SecurityCheckXMLInjection enables the XML/XXE injection scan.
	SecurityCheckXMLInjection bool
	// SecurityCheckHomograph enables lookalike and invisible character detection.
	SecurityCheckHomograph bool
	// SecurityCheckSensitiveData enables sensitive data warnings.
	SecurityCheckSensitiveData bool
	// SecurityCheckProfanity enables profanity warnings.
	SecurityCheckProfanity bool
	// SecurityRateLimitingEnabled enables per-user lockout tracking.
	SecurityRateLimitingEnabled bool

	// DuplicateSubmissionWindow is how long an identical payload is rejected.
	DuplicateSubmissionWindow time.Duration
	// SubmissionCleanupInterval is how often expired submission keys are purged.
	SubmissionCleanupInterval time.Duration
	// LockoutCleanupInterval is how often stale attempt and lockout entries are swept.
	LockoutCleanupInterval time.Duration
	// ValidationMaxConcurrency bounds concurrent field evaluation per form (0 is unbounded).
	ValidationMaxConcurrency int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Database configuration
		DBDriver:             env.GetString("DB_DRIVER", DriverMemory),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Rate Limiting (per client IP)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "fieldguard"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Sensitive data vault
		KMSKeyURI:      env.GetString("KMS_KEY_URI", ""),
		VaultAlgorithm: env.GetString("VAULT_ALGORITHM", string(vaultDomain.AESGCM)),
		VaultKeyID:     env.GetString("VAULT_KEY_ID", vaultDomain.DefaultKeyName),

		// Security screening and lockout
		SecurityMaxAttempts: env.GetInt("SECURITY_MAX_ATTEMPTS", validationDomain.DefaultMaxAttempts),
		SecurityBlockDuration: env.GetDuration(
			"SECURITY_BLOCK_DURATION_MINUTES",
			int64(validationDomain.DefaultBlockDuration/time.Minute),
			time.Minute,
		),
		SecurityCheckSQLInjection:     env.GetBool("SECURITY_CHECK_SQL_INJECTION", true),
		SecurityCheckXSS:              env.GetBool("SECURITY_CHECK_XSS", true),
		SecurityCheckCommandInjection: env.GetBool("SECURITY_CHECK_COMMAND_INJECTION", true),
		SecurityCheckPathTraversal:    env.GetBool("SECURITY_CHECK_PATH_TRAVERSAL", true),
		SecurityCheckNoSQLInjection:   env.GetBool("SECURITY_CHECK_NOSQL_INJECTION", true),
		SecurityCheckNullByte:         env.GetBool("SECURITY_CHECK_NULL_BYTE", true),
		SecurityCheckXMLInjection:     env.GetBool("SECURITY_CHECK_XML_INJECTION", true),
		SecurityCheckHomograph:        env.GetBool("SECURITY_CHECK_HOMOGRAPH", true),
		SecurityCheckSensitiveData:    env.GetBool("SECURITY_CHECK_SENSITIVE_DATA", true),
		SecurityCheckProfanity:        env.GetBool("SECURITY_CHECK_PROFANITY", true),
		SecurityRateLimitingEnabled:   env.GetBool("SECURITY_RATE_LIMITING_ENABLED", true),

		// Form orchestration
		DuplicateSubmissionWindow: env.GetDuration("DUPLICATE_SUBMISSION_WINDOW_SECONDS", 5, time.Second),
		SubmissionCleanupInterval: env.GetDuration("SUBMISSION_CLEANUP_INTERVAL_SECONDS", 60, time.Second),
		LockoutCleanupInterval:    env.GetDuration("LOCKOUT_CLEANUP_INTERVAL_MINUTES", 5, time.Minute),
		ValidationMaxConcurrency:  env.GetInt("VALIDATION_MAX_CONCURRENCY", 0),
	}
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DBDriver,
			validation.Required,
			validation.In(DriverPostgres, DriverMySQL, DriverMemory),
		),
		validation.Field(&c.DBConnectionString, validation.When(c.DBDriver != DriverMemory, validation.Required)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.RateLimitRequestsPerSec, validation.When(c.RateLimitEnabled, validation.Required)),
		validation.Field(&c.RateLimitBurst, validation.When(c.RateLimitEnabled, validation.Required)),
		validation.Field(&c.MetricsPort, validation.When(c.MetricsEnabled,
			validation.Required, validation.Min(1), validation.Max(65535),
		)),
		validation.Field(&c.VaultAlgorithm, validation.In(string(vaultDomain.AESGCM), string(vaultDomain.ChaCha20))),
		validation.Field(&c.VaultKeyID, validation.Required, validation.Length(1, 255)),
		validation.Field(&c.SecurityMaxAttempts, validation.Required, validation.Min(1), validation.Max(1000)),
		validation.Field(&c.SecurityBlockDuration, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.DuplicateSubmissionWindow, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.SubmissionCleanupInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.LockoutCleanupInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.ValidationMaxConcurrency, validation.Min(0)),
	)
}

// SecurityConfig builds the initial screening and lockout settings.
func (c *Config) SecurityConfig() validationDomain.SecurityConfig {
	return validationDomain.SecurityConfig{
		EnableSQLInjectionCheck:     c.SecurityCheckSQLInjection,
		EnableXSSCheck:              c.SecurityCheckXSS,
		EnableCommandInjectionCheck: c.SecurityCheckCommandInjection,
		EnablePathTraversalCheck:    c.SecurityCheckPathTraversal,
		EnableNoSQLInjectionCheck:   c.SecurityCheckNoSQLInjection,
		EnableNullByteCheck:         c.SecurityCheckNullByte,
		EnableXMLInjectionCheck:     c.SecurityCheckXMLInjection,
		EnableHomographCheck:        c.SecurityCheckHomograph,
		EnableSensitiveDataCheck:    c.SecurityCheckSensitiveData,
		EnableProfanityCheck:        c.SecurityCheckProfanity,
		EnableRateLimiting:          c.SecurityRateLimitingEnabled,
		MaxAttempts:                 c.SecurityMaxAttempts,
		BlockDuration:               c.SecurityBlockDuration,
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
