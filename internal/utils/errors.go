package utils

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all service handlers. The gateway maps these to
// HTTP statuses: ErrValidation -> 400, ErrNotFound -> 404, ErrStore -> 500.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store error")
)

func ValidationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

func NotFoundErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

func StoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStore, err)
}
