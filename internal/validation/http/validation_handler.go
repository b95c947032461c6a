// Package http provides HTTP handlers for form, field and file validation.
// Validation outcomes are returned as 200 responses carrying the result; only malformed
// requests produce error statuses.
package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/fieldguard/internal/httputil"
	customValidation "github.com/allisson/fieldguard/internal/validation"
	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
	"github.com/allisson/fieldguard/internal/validation/http/dto"
	validationUseCase "github.com/allisson/fieldguard/internal/validation/usecase"
)

// ValidationHandler handles HTTP requests for validation operations.
type ValidationHandler struct {
	validationUseCase validationUseCase.ValidationUseCase
	logger            *slog.Logger
}

// NewValidationHandler creates a new validation handler with required dependencies.
func NewValidationHandler(
	validationUseCase validationUseCase.ValidationUseCase,
	logger *slog.Logger,
) *ValidationHandler {
	return &ValidationHandler{
		validationUseCase: validationUseCase,
		logger:            logger,
	}
}

// ListSchemasHandler lists the pre-built schemas.
// GET /v1/forms - Returns 200 OK with schema names.
func (h *ValidationHandler) ListSchemasHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SchemaListResponse{Schemas: validationDomain.SchemaNames()})
}

// ValidateSchemaHandler validates data against a pre-built schema.
// POST /v1/forms/:schema/validate - Returns 200 OK with the form result.
func (h *ValidationHandler) ValidateSchemaHandler(c *gin.Context) {
	schema, err := validationDomain.SchemaByName(strings.TrimSpace(c.Param("schema")))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var req dto.ValidateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result := h.validationUseCase.ValidateForm(c.Request.Context(), req.Data, schema, req.UserID)
	c.JSON(http.StatusOK, result)
}

// ValidateAdHocHandler validates data against a schema supplied in the request body.
// POST /v1/forms/validate - Returns 200 OK with the form result.
func (h *ValidationHandler) ValidateAdHocHandler(c *gin.Context) {
	var req dto.AdHocFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	schema, err := req.Schema.ToSchema()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	result := h.validationUseCase.ValidateForm(c.Request.Context(), req.Data, schema, req.UserID)
	c.JSON(http.StatusOK, result)
}

// CheckSubmissionHandler runs the duplicate-submission guard.
// POST /v1/submissions/check - Returns 200 OK for a fresh payload, 409 Conflict for a
// duplicate inside the window.
func (h *ValidationHandler) CheckSubmissionHandler(c *gin.Context) {
	var req dto.CheckSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if dup := h.validationUseCase.CheckDuplicateSubmission(c.Request.Context(), req.Data); dup != nil {
		c.JSON(http.StatusConflict, dto.SubmissionCheckResponse{Duplicate: true, Error: dup})
		return
	}
	c.JSON(http.StatusOK, dto.SubmissionCheckResponse{})
}

// ValidateFileHandler validates file upload metadata and optional content.
// POST /v1/files/validate - Returns 200 OK with the validation result.
func (h *ValidationHandler) ValidateFileHandler(c *gin.Context) {
	var req dto.ValidateFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	file, opts := req.ToDomain()
	result := h.validationUseCase.ValidateFileUpload(c.Request.Context(), file, opts)
	c.JSON(http.StatusOK, result)
}

// PasswordStrengthHandler scores a password.
// POST /v1/passwords/strength - Returns 200 OK with the strength.
func (h *ValidationHandler) PasswordStrengthHandler(c *gin.Context) {
	var req dto.PasswordStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	c.JSON(http.StatusOK, h.validationUseCase.PasswordStrength(c.Request.Context(), req.Password))
}

// GetLockoutHandler returns a user's attempt and lockout snapshot.
// GET /v1/lockouts/:user_id - Returns 200 OK with the snapshot.
func (h *ValidationHandler) GetLockoutHandler(c *gin.Context) {
	userID := c.Param("user_id")
	if err := customValidation.Identifier.Validate(userID); err != nil || userID == "" {
		httputil.HandleBadRequestGin(c, errInvalidUserID, h.logger)
		return
	}

	c.JSON(http.StatusOK, h.validationUseCase.LockoutStats(c.Request.Context(), userID))
}

// ResetLockoutHandler clears a user's attempts and lockout.
// DELETE /v1/lockouts/:user_id - Returns 204 No Content.
func (h *ValidationHandler) ResetLockoutHandler(c *gin.Context) {
	userID := c.Param("user_id")
	if err := customValidation.Identifier.Validate(userID); err != nil || userID == "" {
		httputil.HandleBadRequestGin(c, errInvalidUserID, h.logger)
		return
	}

	h.validationUseCase.ResetUserAttempts(c.Request.Context(), userID)
	c.Status(http.StatusNoContent)
}

// GetSecurityConfigHandler returns the live security configuration.
// GET /v1/security-config - Returns 200 OK with the configuration.
func (h *ValidationHandler) GetSecurityConfigHandler(c *gin.Context) {
	cfg := h.validationUseCase.SecurityConfig(c.Request.Context())
	c.JSON(http.StatusOK, dto.MapSecurityConfigToResponse(cfg))
}

// UpdateSecurityConfigHandler replaces the live security configuration.
// PUT /v1/security-config - Returns 200 OK with the applied configuration.
func (h *ValidationHandler) UpdateSecurityConfigHandler(c *gin.Context) {
	var req dto.SecurityConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	cfg := req.ToDomain()
	if err := h.validationUseCase.UpdateSecurityConfig(c.Request.Context(), cfg); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSecurityConfigToResponse(cfg))
}
