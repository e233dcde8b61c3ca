package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cvdraft/internal/editor"
	"github.com/starford/cvdraft/internal/history"
	"github.com/starford/cvdraft/internal/resume"
	"github.com/starford/cvdraft/internal/storage"
)

const maxJSONBody = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	s       *editor.Session
	exports storage.Provider
	history history.Log
	now     func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{s: d.Session, exports: d.Exports, history: d.History, now: now}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// decodeFieldUpdate reads a PATCH body.
func decodeFieldUpdate(w http.ResponseWriter, r *http.Request) (FieldUpdateRequest, bool) {
	var req FieldUpdateRequest
	if !decodeBody(w, r, &req) {
		return req, false
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return req, false
	}
	return req, true
}

// GetDraft handles GET /api/draft.
func (h *Handler) GetDraft(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.s.Snapshot())
}

// StartFromScratch handles POST /api/start.
func (h *Handler) StartFromScratch(w http.ResponseWriter, _ *http.Request) {
	h.s.StartFromScratch()
	writeJSON(w, http.StatusOK, h.s.Snapshot())
}

// ShowUpload handles POST /api/view/upload.
func (h *Handler) ShowUpload(w http.ResponseWriter, _ *http.Request) {
	h.s.ShowUpload()
	writeJSON(w, http.StatusOK, h.s.Snapshot())
}

// SetPersonalInfo handles PUT /api/draft/personal-info.
func (h *Handler) SetPersonalInfo(w http.ResponseWriter, r *http.Request) {
	var info resume.PersonalInfo
	if !decodeBody(w, r, &info) {
		return
	}
	h.s.PersonalInfo().Set(info)
	writeJSON(w, http.StatusOK, info)
}

// SetSummary handles PUT /api/draft/summary.
func (h *Handler) SetSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.s.Summary().Set(req.Summary)
	writeJSON(w, http.StatusOK, req)
}

// AddExperience handles POST /api/draft/experience.
func (h *Handler) AddExperience(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, h.s.Experience().Add())
}

// UpdateExperience handles PATCH /api/draft/experience/{id}.
func (h *Handler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFieldUpdate(w, r)
	if !ok {
		return
	}
	u, err := resume.ParseExperienceUpdate(req.Field, req.Value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	e, err := h.s.Experience().Update(chi.URLParam(r, "id"), u)
	if err != nil {
		writeError(w, "update experience", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// RemoveExperience handles DELETE /api/draft/experience/{id}.
func (h *Handler) RemoveExperience(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Experience().Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, "remove experience", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddEducation handles POST /api/draft/education.
func (h *Handler) AddEducation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, h.s.Education().Add())
}

// UpdateEducation handles PATCH /api/draft/education/{id}.
func (h *Handler) UpdateEducation(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFieldUpdate(w, r)
	if !ok {
		return
	}
	u, err := resume.ParseEducationUpdate(req.Field, req.Value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	e, err := h.s.Education().Update(chi.URLParam(r, "id"), u)
	if err != nil {
		writeError(w, "update education", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// RemoveEducation handles DELETE /api/draft/education/{id}.
func (h *Handler) RemoveEducation(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Education().Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, "remove education", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddSkill handles POST /api/draft/skills.
func (h *Handler) AddSkill(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, h.s.Skills().Add())
}

// UpdateSkill handles PATCH /api/draft/skills/{id}.
func (h *Handler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFieldUpdate(w, r)
	if !ok {
		return
	}
	u, err := resume.ParseSkillUpdate(req.Field, req.Value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	sk, err := h.s.Skills().Update(chi.URLParam(r, "id"), u)
	if err != nil {
		writeError(w, "update skill", err)
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

// RemoveSkill handles DELETE /api/draft/skills/{id}.
func (h *Handler) RemoveSkill(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Skills().Remove(chi.URLParam(r, "id")); err != nil {
		writeError(w, "remove skill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Missing handles GET /api/draft/missing.
func (h *Handler) Missing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"missing": resume.MissingRequired(h.s.Resume()),
	})
}

// EnhanceSummary handles POST /api/draft/summary/enhance.
func (h *Handler) EnhanceSummary(w http.ResponseWriter, r *http.Request) {
	out, err := h.s.EnhanceSummary(r.Context())
	h.writeOutcome(w, "enhance summary", out, err)
}

// EnhanceExperience handles POST /api/draft/experience/{id}/enhance.
func (h *Handler) EnhanceExperience(w http.ResponseWriter, r *http.Request) {
	out, err := h.s.EnhanceExperience(r.Context(), chi.URLParam(r, "id"))
	h.writeOutcome(w, "enhance experience", out, err)
}

// EnhanceSkills handles POST /api/draft/skills/enhance.
func (h *Handler) EnhanceSkills(w http.ResponseWriter, r *http.Request) {
	out, err := h.s.EnhanceSkills(r.Context())
	h.writeOutcome(w, "enhance skills", out, err)
}

func (h *Handler) writeOutcome(w http.ResponseWriter, op string, out editor.Outcome, err error) {
	if err != nil {
		writeError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ListNotices handles GET /api/notices.
func (h *Handler) ListNotices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"notices": h.s.Notices()})
}

// DismissNotice handles DELETE /api/notices/{id}.
func (h *Handler) DismissNotice(w http.ResponseWriter, r *http.Request) {
	if err := h.s.DismissNotice(chi.URLParam(r, "id")); err != nil {
		writeError(w, "dismiss notice", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var errNoHistory = errors.New("save history is disabled")
