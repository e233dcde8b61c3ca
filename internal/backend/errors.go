package backend

import (
	"fmt"
	"net/http"

	"github.com/starford/cvdraft/internal/apperr"
)

// Op names a backend call in error messages.
type Op string

const (
	OpEnhance Op = "ai enhancement"
	OpSave    Op = "resume save"
	OpList    Op = "list resumes"
	OpGet     Op = "fetch resume"
)

// StatusError is returned when the service answers outside the 2xx range.
type StatusError struct {
	Op         Op
	StatusCode int
	// Status is the status line text, e.g. "500 Internal Server Error".
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Status)
}

// Unwrap lets a 404 match apperr.ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return apperr.ErrNotFound
	}
	return nil
}
