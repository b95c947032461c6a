package http

import (
	apperrors "github.com/allisson/fieldguard/internal/errors"
)

var errInvalidUserID = apperrors.New("user id must contain only letters, digits and _ . : @ -")
