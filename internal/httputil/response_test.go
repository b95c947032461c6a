package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/fieldguard/internal/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", apperrors.Wrap(apperrors.ErrNotFound, "schema not found"), http.StatusNotFound, "not_found", ""},
		{"conflict", apperrors.ErrConflict, http.StatusConflict, "conflict", ""},
		{
			"invalid input echoes message",
			apperrors.Wrap(apperrors.ErrInvalidInput, "invalid validation rule"),
			http.StatusUnprocessableEntity,
			"invalid_input",
			"invalid validation rule: invalid input",
		},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", ""},
		{"locked", apperrors.ErrLocked, http.StatusLocked, "user_locked", ""},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden", ""},
		{
			"unknown error hides details",
			errors.New("pq: connection refused"),
			http.StatusInternalServerError,
			"internal_error",
			"An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext()

			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Error)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Message)
			}
		})
	}
}

func TestHandleErrorGin_NilErrorWritesNothing(t *testing.T) {
	c, w := newContext()

	HandleErrorGin(c, nil, nil)

	assert.False(t, c.Writer.Written())
	assert.Empty(t, w.Body.String())
}

func TestHandleErrorGin_LogsLevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, _ := newContext()
	HandleErrorGin(c, apperrors.ErrNotFound, logger)
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	buf.Reset()
	c, _ = newContext()
	HandleErrorGin(c, errors.New("boom"), logger)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"error_code":"internal_error"`)
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newContext()

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "bad_request", body.Error)
	assert.Equal(t, "unexpected EOF", body.Message)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newContext()

	HandleValidationErrorGin(c, errors.New("name: cannot be blank."), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "validation_error", body.Error)
	assert.Equal(t, "name: cannot be blank.", body.Message)
}
