package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/cvdraft/internal/checksum"
	"github.com/starford/cvdraft/internal/storage"
	"github.com/starford/cvdraft/internal/upload"
)

// multipartSlack covers form boundaries and headers around the file.
const multipartSlack = 1 << 20

// Upload handles POST /api/upload (multipart/form-data, field "file").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxSize+multipartSlack)
	if err := r.ParseMultipartForm(upload.MaxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge,
				errorBody(fmt.Sprintf("file too large: the limit is %d MB", upload.MaxSize>>20)))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("invalid multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files, err := upload.FromMultipart(r.MultipartForm.File["file"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	f, err := h.s.Upload(r.Context(), files...)
	if err != nil {
		writeError(w, "upload", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file":  map[string]any{"name": f.Name, "size": f.Size, "mime": f.MIME},
		"draft": h.s.Snapshot(),
	})
}

// Save handles POST /api/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.s.Save(r.Context())
	if err != nil {
		writeError(w, "save", err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// DownloadExport handles GET /api/export.
func (h *Handler) DownloadExport(w http.ResponseWriter, _ *http.Request) {
	f, err := h.s.Export(h.now())
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeAttachment(w, f.Name, f.Body)
}

func writeAttachment(w http.ResponseWriter, name string, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ReadExport handles GET /api/exports/{name}.
func (h *Handler) ReadExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := h.exports.Read(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("export not found"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeAttachment(w, name, body)
}

// WriteExport handles POST /api/export: the file lands in the export directory.
func (h *Handler) WriteExport(w http.ResponseWriter, _ *http.Request) {
	f, err := h.s.Export(h.now())
	if err == nil {
		err = h.exports.Write(f.Name, f.Body)
	}
	if err != nil {
		slog.Error("export write failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, ExportWriteResponse{
		Name:      f.Name,
		Size:      int64(len(f.Body)),
		Checksum:  checksum.Sum(f.Body),
		UpdatedAt: h.now(),
	})
}

// ListExports handles GET /api/exports.
func (h *Handler) ListExports(w http.ResponseWriter, _ *http.Request) {
	files, err := h.exports.List()
	if err != nil {
		slog.Error("list exports failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]storage.FileInfo{"exports": files})
}

// DeleteExport handles DELETE /api/exports/{name}.
func (h *Handler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.exports.Delete(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("export not found"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSaved handles GET /api/saved.
func (h *Handler) ListSaved(w http.ResponseWriter, r *http.Request) {
	ids, err := h.s.ListSaved(r.Context())
	if err != nil {
		writeError(w, "list saved", err)
		return
	}
	writeJSON(w, http.StatusOK, SavedListResponse{Resumes: ids, Count: len(ids)})
}

// OpenSaved handles POST /api/saved/{id}/open.
func (h *Handler) OpenSaved(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Load(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "open saved", err)
		return
	}
	writeJSON(w, http.StatusOK, h.s.Snapshot())
}

// History handles GET /api/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, errorBody(errNoHistory.Error()))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	receipts, err := h.history.List(r.Context(), limit)
	if err != nil {
		slog.Error("history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saves": receipts})
}
