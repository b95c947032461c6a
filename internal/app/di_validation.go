package app

import (
	"fmt"

	"github.com/allisson/fieldguard/internal/config"
	validationHTTP "github.com/allisson/fieldguard/internal/validation/http"
	validationRepository "github.com/allisson/fieldguard/internal/validation/repository"
	validationService "github.com/allisson/fieldguard/internal/validation/service"
	validationUseCase "github.com/allisson/fieldguard/internal/validation/usecase"
)

// PatternLibrary returns the shared pattern library.
func (c *Container) PatternLibrary() *validationService.PatternLibrary {
	c.patternsInit.Do(func() {
		c.patterns = validationService.DefaultPatternLibrary()
	})
	return c.patterns
}

// StrengthScorer returns the password strength scorer.
func (c *Container) StrengthScorer() *validationService.StrengthScorer {
	c.strengthScorerInit.Do(func() {
		c.strengthScorer = validationService.NewStrengthScorer(c.PatternLibrary())
	})
	return c.strengthScorer
}

// Scanner returns the security scanner.
func (c *Container) Scanner() validationService.Scanner {
	c.scannerInit.Do(func() {
		c.scanner = validationService.NewRegexScanner(c.PatternLibrary())
	})
	return c.scanner
}

// FileValidator returns the file upload validator.
func (c *Container) FileValidator() *validationService.FileValidator {
	c.fileValidatorInit.Do(func() {
		c.fileValidator = validationService.NewFileValidator(c.PatternLibrary())
	})
	return c.fileValidator
}

// SecurityConfigStore returns the live security configuration seeded from the environment.
func (c *Container) SecurityConfigStore() (*validationService.SecurityConfigStore, error) {
	var err error
	c.securityConfigInit.Do(func() {
		c.securityConfig, err = c.initSecurityConfigStore()
		if err != nil {
			c.initErrors["securityConfig"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["securityConfig"]; exists {
		return nil, storedErr
	}
	return c.securityConfig, nil
}

// LockoutTracker returns the per-user attempt tracker.
func (c *Container) LockoutTracker() (*validationService.LockoutTracker, error) {
	var err error
	c.lockoutTrackerInit.Do(func() {
		c.lockoutTracker, err = c.initLockoutTracker()
		if err != nil {
			c.initErrors["lockoutTracker"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lockoutTracker"]; exists {
		return nil, storedErr
	}
	return c.lockoutTracker, nil
}

// FieldValidator returns the single-rule field validator.
func (c *Container) FieldValidator() (*validationService.FieldValidator, error) {
	var err error
	c.fieldValidatorInit.Do(func() {
		c.fieldValidator, err = c.initFieldValidator()
		if err != nil {
			c.initErrors["fieldValidator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["fieldValidator"]; exists {
		return nil, storedErr
	}
	return c.fieldValidator, nil
}

// SubmissionRepository returns the duplicate-submission store for the configured driver.
func (c *Container) SubmissionRepository() (validationUseCase.SubmissionRepository, error) {
	var err error
	c.submissionRepoInit.Do(func() {
		c.submissionRepo, err = c.initSubmissionRepository()
		if err != nil {
			c.initErrors["submissionRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["submissionRepo"]; exists {
		return nil, storedErr
	}
	return c.submissionRepo, nil
}

// ValidationUseCase returns the form orchestrator.
func (c *Container) ValidationUseCase() (validationUseCase.ValidationUseCase, error) {
	var err error
	c.validationUseCaseInit.Do(func() {
		c.validationUseCase, err = c.initValidationUseCase()
		if err != nil {
			c.initErrors["validationUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["validationUseCase"]; exists {
		return nil, storedErr
	}
	return c.validationUseCase, nil
}

// ValidationHandler returns the HTTP handler for the validation API.
func (c *Container) ValidationHandler() (*validationHTTP.ValidationHandler, error) {
	var err error
	c.validationHandlerInit.Do(func() {
		c.validationHandler, err = c.initValidationHandler()
		if err != nil {
			c.initErrors["validationHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["validationHandler"]; exists {
		return nil, storedErr
	}
	return c.validationHandler, nil
}

// initSecurityConfigStore seeds the store from the environment. Out of range values fail here.
func (c *Container) initSecurityConfigStore() (*validationService.SecurityConfigStore, error) {
	store, err := validationService.NewSecurityConfigStore(c.config.SecurityConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create security config store: %w", err)
	}
	return store, nil
}

// initLockoutTracker creates the tracker reading limits from the security config store.
func (c *Container) initLockoutTracker() (*validationService.LockoutTracker, error) {
	store, err := c.SecurityConfigStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get security config for lockout tracker: %w", err)
	}
	return validationService.NewLockoutTracker(store, nil, c.Logger()), nil
}

// initFieldValidator creates the field validator using the vault to protect SSN values.
func (c *Container) initFieldValidator() (*validationService.FieldValidator, error) {
	vault, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault use case for field validator: %w", err)
	}
	return validationService.NewFieldValidator(c.PatternLibrary(), c.StrengthScorer(), vault, c.Logger()), nil
}

// initSubmissionRepository selects the submission store based on the database driver.
func (c *Container) initSubmissionRepository() (validationUseCase.SubmissionRepository, error) {
	if c.config.DBDriver == config.DriverMemory {
		return validationRepository.NewMemorySubmissionRepository(nil), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for submission repository: %w", err)
	}

	switch c.config.DBDriver {
	case config.DriverMySQL:
		return validationRepository.NewMySQLSubmissionRepository(db), nil
	case config.DriverPostgres:
		return validationRepository.NewPostgreSQLSubmissionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initValidationUseCase creates the orchestrator with all its dependencies.
func (c *Container) initValidationUseCase() (validationUseCase.ValidationUseCase, error) {
	fieldValidator, err := c.FieldValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to get field validator for validation use case: %w", err)
	}

	tracker, err := c.LockoutTracker()
	if err != nil {
		return nil, fmt.Errorf("failed to get lockout tracker for validation use case: %w", err)
	}

	store, err := c.SecurityConfigStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get security config for validation use case: %w", err)
	}

	submissions, err := c.SubmissionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get submission repository for validation use case: %w", err)
	}

	baseUseCase := validationUseCase.NewValidationUseCase(
		fieldValidator,
		c.Scanner(),
		c.StrengthScorer(),
		c.FileValidator(),
		tracker,
		store,
		submissions,
		c.Logger(),
		validationUseCase.Options{
			SubmissionWindow: c.config.DuplicateSubmissionWindow,
			MaxConcurrency:   c.config.ValidationMaxConcurrency,
		},
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for validation use case: %w", err)
		}
		return validationUseCase.NewValidationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initValidationHandler creates the validation HTTP handler.
func (c *Container) initValidationHandler() (*validationHTTP.ValidationHandler, error) {
	useCase, err := c.ValidationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get validation use case for validation handler: %w", err)
	}
	return validationHTTP.NewValidationHandler(useCase, c.Logger()), nil
}
