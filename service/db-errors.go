package service

import (
	"cedupscore/app_error"
	"errors"

	"gorm.io/gorm"
)

func notFoundOr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return app_error.NotFound(entity)
	}
	return err
}

// duplicateOr maps a unique constraint violation at the store boundary to a
// Conflict the caller may retry; anything else passes through untouched.
func duplicateOr(err error, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return app_error.Conflict(message)
	}
	return err
}
