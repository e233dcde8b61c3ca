package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cvdraft/internal/editor"
	"github.com/starford/cvdraft/internal/history"
	"github.com/starford/cvdraft/internal/storage"
)

// Deps are the collaborators the API needs. History and Events may be nil.
type Deps struct {
	Session     *editor.Session
	Exports     storage.Provider
	History     history.Log
	Events      http.Handler
	AuthEnabled bool
	Token       string
	// Now defaults to time.Now; it dates export file names.
	Now func() time.Time
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(d Deps) chi.Router {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(d.AuthEnabled, d.Token))

	// Views.
	r.Get("/draft", h.GetDraft)
	r.Post("/upload", h.Upload)
	r.Post("/start", h.StartFromScratch)
	r.Post("/view/upload", h.ShowUpload)

	// Sections.
	r.Put("/draft/personal-info", h.SetPersonalInfo)
	r.Put("/draft/summary", h.SetSummary)
	r.Post("/draft/summary/enhance", h.EnhanceSummary)

	r.Post("/draft/experience", h.AddExperience)
	r.Patch("/draft/experience/{id}", h.UpdateExperience)
	r.Delete("/draft/experience/{id}", h.RemoveExperience)
	r.Post("/draft/experience/{id}/enhance", h.EnhanceExperience)

	r.Post("/draft/education", h.AddEducation)
	r.Patch("/draft/education/{id}", h.UpdateEducation)
	r.Delete("/draft/education/{id}", h.RemoveEducation)

	r.Post("/draft/skills", h.AddSkill)
	r.Patch("/draft/skills/{id}", h.UpdateSkill)
	r.Delete("/draft/skills/{id}", h.RemoveSkill)
	r.Post("/draft/skills/enhance", h.EnhanceSkills)

	r.Get("/draft/missing", h.Missing)

	// Actions.
	r.Post("/save", h.Save)
	r.Get("/export", h.DownloadExport)
	r.Post("/export", h.WriteExport)
	r.Get("/exports", h.ListExports)
	r.Get("/exports/{name}", h.ReadExport)
	r.Delete("/exports/{name}", h.DeleteExport)
	r.Get("/saved", h.ListSaved)
	r.Post("/saved/{id}/open", h.OpenSaved)
	r.Get("/history", h.History)

	// Notices.
	r.Get("/notices", h.ListNotices)
	r.Delete("/notices/{id}", h.DismissNotice)

	// SSE endpoint (protected by same auth middleware).
	if d.Events != nil {
		r.Get("/events", d.Events.ServeHTTP)
	}

	return r
}
