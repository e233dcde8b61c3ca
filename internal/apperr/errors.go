// Package apperr holds the sentinel errors shared across cvdraft packages.
package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrBusy         = errors.New("operation already in progress")
	ErrInvalidInput = errors.New("invalid input")
)
