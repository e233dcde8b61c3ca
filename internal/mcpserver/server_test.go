package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/cvdraft/internal/editor"
	"github.com/starford/cvdraft/internal/resume"
	"github.com/starford/cvdraft/internal/testutil"
)

func testServer(t *testing.T) (*Server, *testutil.FakeBackend, string) {
	t.Helper()

	fb := testutil.NewFakeBackend()
	dir, exports := testutil.TestExportDir(t)
	session := editor.NewSession(fb,
		editor.WithSaveLog(testutil.TestHistory(t)),
		editor.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	srv := New(session, exports)
	srv.now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }
	return srv, fb, dir
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"get_resume":          srv.getResume,
		"get_resume_contract": srv.getResumeContract,
		"upload_resume":       srv.uploadResume,
		"set_summary":         srv.setSummary,
		"set_personal_info":   srv.setPersonalInfo,
		"add_entry":           srv.addEntry,
		"update_entry":        srv.updateEntry,
		"remove_entry":        srv.removeEntry,
		"enhance":             srv.enhance,
		"save_resume":         srv.saveResume,
		"export_resume":       srv.exportResume,
		"list_saved":          srv.listSaved,
		"open_saved":          srv.openSaved,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSummaryAndGetResume(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "set_summary", map[string]interface{}{"summary": "Builds compilers"})
	if r.IsError {
		t.Fatalf("set_summary: %s", resultText(r))
	}

	r = callTool(t, srv, "get_resume", nil)
	var snap editor.Snapshot
	if err := json.Unmarshal([]byte(resultText(r)), &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Resume.Summary != "Builds compilers" {
		t.Errorf("summary = %q", snap.Resume.Summary)
	}
}

func TestSetPersonalInfoKeepsOmittedFields(t *testing.T) {
	srv, _, _ := testServer(t)
	srv.session.PersonalInfo().Set(resume.PersonalInfo{FullName: "Ada", Phone: "123"})

	r := callTool(t, srv, "set_personal_info", map[string]interface{}{"email": "ada@example.com"})
	if r.IsError {
		t.Fatalf("set_personal_info: %s", resultText(r))
	}
	got := srv.session.PersonalInfo().Get()
	if got.FullName != "Ada" || got.Phone != "123" || got.Email != "ada@example.com" {
		t.Errorf("info = %+v", got)
	}

	r = callTool(t, srv, "set_personal_info", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error when no field is given")
	}
}

func TestEntryLifecycle(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "add_entry", map[string]interface{}{"section": "experience"})
	var e resume.Experience
	if err := json.Unmarshal([]byte(resultText(r)), &e); err != nil {
		t.Fatal(err)
	}

	r = callTool(t, srv, "update_entry", map[string]interface{}{
		"section": "experience", "id": e.ID, "field": "current", "value": "true",
	})
	if r.IsError {
		t.Fatalf("update current: %s", resultText(r))
	}
	r = callTool(t, srv, "update_entry", map[string]interface{}{
		"section": "experience", "id": e.ID, "field": "title", "value": "Engineer",
	})
	if r.IsError {
		t.Fatalf("update title: %s", resultText(r))
	}
	got := srv.session.Experience().List()[0]
	if !got.Current || got.Title != "Engineer" {
		t.Errorf("entry = %+v", got)
	}

	r = callTool(t, srv, "update_entry", map[string]interface{}{
		"section": "experience", "id": e.ID, "field": "current", "value": "maybe",
	})
	if !r.IsError {
		t.Error("expected error for bad boolean")
	}
	r = callTool(t, srv, "update_entry", map[string]interface{}{
		"section": "skills", "id": "nope", "field": "name", "value": "Go",
	})
	if !r.IsError {
		t.Error("expected error for unknown id")
	}

	r = callTool(t, srv, "remove_entry", map[string]interface{}{"section": "experience", "id": e.ID})
	if resultText(r) != "removed: "+e.ID {
		t.Errorf("remove = %q", resultText(r))
	}
	if n := len(srv.session.Experience().List()); n != 0 {
		t.Errorf("entries left = %d", n)
	}

	r = callTool(t, srv, "add_entry", map[string]interface{}{"section": "hobbies"})
	if !r.IsError {
		t.Error("expected error for unknown section")
	}
}

func TestEnhanceTool(t *testing.T) {
	srv, _, _ := testServer(t)
	srv.session.Summary().Set("writes code")

	r := callTool(t, srv, "enhance", map[string]interface{}{"target": "summary"})
	if r.IsError {
		t.Fatalf("enhance: %s", resultText(r))
	}
	if got := srv.session.Summary().Get(); got != "Enhanced: writes code" {
		t.Errorf("summary = %q", got)
	}

	r = callTool(t, srv, "enhance", map[string]interface{}{"target": "experience"})
	if !r.IsError {
		t.Error("expected error without id")
	}
}

func TestSaveListOpen(t *testing.T) {
	srv, _, _ := testServer(t)
	srv.session.Summary().Set("first")

	r := callTool(t, srv, "save_resume", nil)
	if r.IsError || !strings.Contains(resultText(r), "resume_001") {
		t.Fatalf("save = %s", resultText(r))
	}

	r = callTool(t, srv, "list_saved", nil)
	if resultText(r) != "resume_001" {
		t.Errorf("list = %q", resultText(r))
	}

	srv.session.Summary().Set("second")
	r = callTool(t, srv, "open_saved", map[string]interface{}{"id": "resume_001"})
	if r.IsError {
		t.Fatalf("open: %s", resultText(r))
	}
	if got := srv.session.Summary().Get(); got != "first" {
		t.Errorf("summary = %q", got)
	}

	r = callTool(t, srv, "open_saved", map[string]interface{}{"id": "resume_999"})
	if !r.IsError {
		t.Error("expected error for unknown resume")
	}
}

func TestExportTool(t *testing.T) {
	srv, _, dir := testServer(t)
	r := callTool(t, srv, "export_resume", nil)
	if resultText(r) != "exported: resume_2026-10-19.json" {
		t.Fatalf("export = %q", resultText(r))
	}
	if _, err := os.Stat(filepath.Join(dir, "resume_2026-10-19.json")); err != nil {
		t.Errorf("export file: %v", err)
	}
}

func TestUploadResumeDataURI(t *testing.T) {
	srv, _, _ := testServer(t)

	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4\n%%EOF\n"))
	r := callTool(t, srv, "upload_resume", map[string]interface{}{
		"url": "data:application/pdf;base64," + pdf,
	})
	if r.IsError {
		t.Fatalf("upload: %s", resultText(r))
	}
	var res uploadResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	if res.Name != "resume.pdf" || res.View != string(editor.ViewEdit) {
		t.Errorf("result = %+v", res)
	}

	srv.session.ShowUpload()
	txt := base64.StdEncoding.EncodeToString([]byte("just text"))
	r = callTool(t, srv, "upload_resume", map[string]interface{}{
		"url": "data:application/pdf;base64," + txt, "filename": "../cv.pdf",
	})
	if !r.IsError || !strings.Contains(resultText(r), "only PDF and DOCX") {
		t.Errorf("expected rejection, got %q", resultText(r))
	}
}

func TestUploadResumeBlockedHost(t *testing.T) {
	srv, _, _ := testServer(t)
	r := callTool(t, srv, "upload_resume", map[string]interface{}{"url": "http://127.0.0.1/cv.pdf"})
	if !r.IsError || !strings.Contains(resultText(r), "blocked host") {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"../../etc/cv.pdf": "cv.pdf",
		"my cv (1).docx":   "my_cv__1_.docx",
		"":                 "resume",
	}
	for in, want := range tests {
		if got := cleanName(in); got != want {
			t.Errorf("cleanName(%q) = %q, want %q", in, got, want)
		}
	}
}
