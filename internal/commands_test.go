package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/cvdraft/internal/resume"
)

func testConfig(t *testing.T, backendURL string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Backend.BaseURL = backendURL
	cfg.Export.Path = filepath.Join(t.TempDir(), "exports")
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	return cfg
}

func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /resumes", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"resumes": []string{"resume_1", "resume_2"}, "count": 2})
	})
	mux.HandleFunc("GET /resume/resume_1", func(w http.ResponseWriter, _ *http.Request) {
		d := resume.Sample()
		_ = json.NewEncoder(w).Encode(d)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil || !strings.Contains(err.Error(), "config is required") {
		t.Errorf("err = %v", err)
	}
}

func TestListSaved(t *testing.T) {
	srv := fakeService(t)
	var out bytes.Buffer
	err := ListSaved(context.Background(), &out, WithConfig(testConfig(t, srv.URL)), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("ListSaved: %v", err)
	}
	if out.String() != "resume_1\nresume_2\n" {
		t.Errorf("out = %q", out.String())
	}
}

func TestFetch(t *testing.T) {
	srv := fakeService(t)
	cfg := testConfig(t, srv.URL)

	name, err := Fetch(context.Background(), "resume_1", WithConfig(cfg), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Export.Path, name))
	if err != nil {
		t.Fatal(err)
	}
	var got resume.Data
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.PersonalInfo.FullName != "John Doe" {
		t.Errorf("fetched = %+v", got.PersonalInfo)
	}

	if _, err := Fetch(context.Background(), "resume_9", WithConfig(cfg), WithLogOutput(io.Discard)); err == nil {
		t.Error("expected error for unknown resume")
	}
}
