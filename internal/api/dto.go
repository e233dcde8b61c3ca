package api

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cvdraft/internal/storage"
)

// FieldUpdateRequest is the body of the PATCH entry routes.
type FieldUpdateRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

func (r FieldUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Field, validation.Required),
		validation.Field(&r.Value, validation.Required),
	)
}

// SummaryRequest is the body of PUT /draft/summary.
type SummaryRequest struct {
	Summary string `json:"summary"`
}

// ExportWriteResponse is returned after an export is written to disk.
type ExportWriteResponse = storage.FileInfo

// SavedListResponse lists resumes stored by the backend.
type SavedListResponse struct {
	Resumes []string `json:"resumes"`
	Count   int      `json:"count"`
}
