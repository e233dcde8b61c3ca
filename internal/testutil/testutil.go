// Package testutil provides shared test helpers: an in-memory backend, a
// temporary save log and an export directory.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/starford/cvdraft/internal/backend"
	"github.com/starford/cvdraft/internal/history"
	"github.com/starford/cvdraft/internal/resume"
	"github.com/starford/cvdraft/internal/storage"
)

// FakeBackend is an in-memory stand-in for the resume service.
// Set EnhanceFunc or SaveErr to change its answers.
type FakeBackend struct {
	mu sync.Mutex

	EnhanceFunc func(ctx context.Context, section, content string) (*backend.EnhanceResponse, error)
	SaveErr     error

	saved        map[string]resume.Data
	enhanceCalls []backend.EnhanceRequest
	seq          int
}

// NewFakeBackend returns a backend that prefixes enhanced text with "Enhanced: ".
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{saved: make(map[string]resume.Data)}
}

func (f *FakeBackend) EnhanceContent(ctx context.Context, section, content string) (*backend.EnhanceResponse, error) {
	f.mu.Lock()
	f.enhanceCalls = append(f.enhanceCalls, backend.EnhanceRequest{Section: section, Content: content})
	fn := f.EnhanceFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, section, content)
	}
	return &backend.EnhanceResponse{
		EnhancedContent: "Enhanced: " + content,
		Suggestions:     []string{"Quantify achievements"},
	}, nil
}

func (f *FakeBackend) SaveResume(_ context.Context, data resume.Data) (*backend.SaveReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SaveErr != nil {
		return nil, f.SaveErr
	}
	f.seq++
	id := fmt.Sprintf("resume_%03d", f.seq)
	f.saved[id] = data.Normalize()
	return &backend.SaveReceipt{
		Message:  "Resume saved successfully",
		ResumeID: id,
		SavedAt:  "2026-10-19T10:00:00",
	}, nil
}

func (f *FakeBackend) ListResumes(_ context.Context) (*backend.ResumeList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.saved))
	for id := range f.saved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &backend.ResumeList{Resumes: ids, Count: len(ids)}, nil
}

func (f *FakeBackend) GetResume(_ context.Context, id string) (resume.Data, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.saved[id]
	if !ok {
		return resume.Data{}, &backend.StatusError{
			Op:         backend.OpGet,
			StatusCode: http.StatusNotFound,
			Status:     "404 Not Found",
		}
	}
	return d, nil
}

// Put stores d under id as if it had been saved earlier.
func (f *FakeBackend) Put(id string, d resume.Data) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[id] = d.Normalize()
}

// EnhanceCalls returns every enhance request received so far.
func (f *FakeBackend) EnhanceCalls() []backend.EnhanceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.EnhanceRequest(nil), f.enhanceCalls...)
}

// TestHistory opens a save log in a temporary directory.
func TestHistory(t *testing.T) *history.DB {
	t.Helper()
	db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestExportDir creates a temporary export directory with a storage.Provider.
func TestExportDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}
