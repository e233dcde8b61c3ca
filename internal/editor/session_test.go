package editor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/starford/cvdraft/internal/apperr"
	"github.com/starford/cvdraft/internal/backend"
	"github.com/starford/cvdraft/internal/resume"
	"github.com/starford/cvdraft/internal/testutil"
	"github.com/starford/cvdraft/internal/upload"
)

func newTestSession(t *testing.T, opts ...Option) (*Session, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewSession(fb, opts...), fb
}

func pdfFile() upload.File {
	head := []byte("%PDF-1.7\n%%EOF\n")
	return upload.File{Name: "cv.pdf", Size: int64(len(head)), Head: head}
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) types() []EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EventType, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Type
	}
	return out
}

func TestNewSession(t *testing.T) {
	s, _ := newTestSession(t)
	if s.View() != ViewUpload {
		t.Errorf("view = %q", s.View())
	}
	if !reflect.DeepEqual(s.Resume(), resume.New()) {
		t.Errorf("record = %+v", s.Resume())
	}
	if s.Dirty() {
		t.Error("empty session should not be dirty")
	}
}

func TestStartFromScratchKeepsRecord(t *testing.T) {
	s, _ := newTestSession(t)
	s.Summary().Set("draft")
	before := s.Resume()

	var log eventLog
	s.OnChange(log.record)
	s.StartFromScratch()

	if s.View() != ViewEdit {
		t.Errorf("view = %q", s.View())
	}
	if !reflect.DeepEqual(s.Resume(), before) {
		t.Error("record changed")
	}
	if got := log.types(); !reflect.DeepEqual(got, []EventType{EventViewChanged}) {
		t.Errorf("events = %v", got)
	}

	s.ShowUpload()
	if s.View() != ViewUpload || s.Resume().Summary != "draft" {
		t.Errorf("ShowUpload: view=%q summary=%q", s.View(), s.Resume().Summary)
	}
}

func TestUploadValidFileSeeds(t *testing.T) {
	s, _ := newTestSession(t)
	f, err := s.Upload(context.Background(), pdfFile())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if f.MIME != upload.MIMEPDF {
		t.Errorf("mime = %q", f.MIME)
	}
	if s.View() != ViewEdit {
		t.Errorf("view = %q", s.View())
	}
	if !reflect.DeepEqual(s.Resume(), resume.Sample()) {
		t.Errorf("record not seeded: %+v", s.Resume())
	}
}

func TestUploadRejectedKeepsView(t *testing.T) {
	s, _ := newTestSession(t)
	cases := [][]upload.File{
		{{Name: "cv.txt", Size: 5, Head: []byte("hello")}},
		{{Name: "big.pdf", Size: upload.MaxSize + 1, Head: pdfFile().Head}},
		{pdfFile(), pdfFile()},
		nil,
	}
	for _, files := range cases {
		if _, err := s.Upload(context.Background(), files...); err == nil {
			t.Errorf("upload %+v should fail", files)
		}
		if s.View() != ViewUpload {
			t.Fatalf("view changed to %q", s.View())
		}
		if !reflect.DeepEqual(s.Resume(), resume.New()) {
			t.Fatal("record changed")
		}
	}
}

type seederFunc func(context.Context, upload.File) (resume.Data, error)

func (f seederFunc) Seed(ctx context.Context, file upload.File) (resume.Data, error) {
	return f(ctx, file)
}

func TestUploadCustomSeeder(t *testing.T) {
	seed := resume.New()
	seed.Summary = "parsed"
	s, _ := newTestSession(t, WithSeeder(seederFunc(func(context.Context, upload.File) (resume.Data, error) {
		return seed, nil
	})))
	if _, err := s.Upload(context.Background(), pdfFile()); err != nil {
		t.Fatal(err)
	}
	if s.Resume().Summary != "parsed" {
		t.Errorf("summary = %q", s.Resume().Summary)
	}
}

func TestImportOnlyFromUploadView(t *testing.T) {
	s, _ := newTestSession(t)
	s.StartFromScratch()
	s.Summary().Set("mine")

	_, err := s.Import(context.Background(), pdfFile())
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if s.Resume().Summary != "mine" {
		t.Error("draft was replaced")
	}

	s.ShowUpload()
	if _, err := s.Import(context.Background(), pdfFile()); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if s.View() != ViewEdit || s.Resume().PersonalInfo.FullName != "John Doe" {
		t.Errorf("import did not seed: view=%q", s.View())
	}
}

func TestLoadSaved(t *testing.T) {
	s, fb := newTestSession(t)
	saved := resume.Sample()
	saved.Summary = "from backend"
	fb.Put("resume_x", saved)

	if err := s.Load(context.Background(), "resume_x"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.View() != ViewEdit || s.Resume().Summary != "from backend" {
		t.Errorf("load: view=%q summary=%q", s.View(), s.Resume().Summary)
	}

	err := s.Load(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(s.Notices()) != 1 {
		t.Errorf("notices = %+v", s.Notices())
	}
}

func TestListSaved(t *testing.T) {
	s, fb := newTestSession(t)
	fb.Put("b", resume.New())
	fb.Put("a", resume.New())
	ids, err := s.ListSaved(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"a", "b"}) {
		t.Errorf("ids = %v", ids)
	}
}

func TestMergeKeepsOtherSlices(t *testing.T) {
	s, _ := newTestSession(t)
	s.Experience().Add()
	s.Skills().Add()
	before := s.Resume()

	s.Summary().Set("new summary")
	after := s.Resume()

	if &after.Experience[0] != &before.Experience[0] {
		t.Error("experience slice should be untouched by a summary edit")
	}
	if &after.Skills[0] != &before.Skills[0] {
		t.Error("skills slice should be untouched by a summary edit")
	}
	if before.Summary != "" {
		t.Error("earlier snapshot changed")
	}
}

func TestListSectionOperations(t *testing.T) {
	s, _ := newTestSession(t)
	exp := s.Experience()

	a := exp.Add()
	b := exp.Add()
	c := exp.Add()
	if a.ID == b.ID || b.ID == c.ID || a.ID == c.ID {
		t.Fatalf("ids not unique: %s %s %s", a.ID, b.ID, c.ID)
	}
	if a.Current || a.Title != "" {
		t.Errorf("defaults = %+v", a)
	}

	if _, err := exp.Update(b.ID, resume.SetExperienceTitle("Engineer")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	list := exp.List()
	if list[1].Title != "Engineer" || list[0] != a || list[2] != c {
		t.Errorf("update touched other entries: %+v", list)
	}

	if err := exp.Remove(a.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	list = exp.List()
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != c.ID {
		t.Errorf("remove reordered: %+v", list)
	}

	if err := exp.Remove("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("remove unknown: %v", err)
	}
	if _, err := exp.Update("nope", resume.SetExperienceTitle("x")); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update unknown: %v", err)
	}
	if len(exp.List()) != 2 {
		t.Error("unknown id changed the list")
	}
}

func TestSkillDefaultsAndUpdate(t *testing.T) {
	s, _ := newTestSession(t)
	sk := s.Skills().Add()
	if sk.Category != resume.CategoryTechnical || sk.Proficiency != resume.ProficiencyIntermediate {
		t.Errorf("defaults = %+v", sk)
	}
	got, err := s.Skills().Update(sk.ID, resume.SetSkillCategory(resume.CategoryLanguage))
	if err != nil {
		t.Fatal(err)
	}
	if got.Category != resume.CategoryLanguage || got.Proficiency != resume.ProficiencyIntermediate {
		t.Errorf("skill = %+v", got)
	}

	ed := s.Education().Add()
	if _, err := s.Education().Update(ed.ID, resume.SetEducationHonors("Cum Laude")); err != nil {
		t.Fatal(err)
	}
	if s.Education().List()[0].Honors != "Cum Laude" {
		t.Error("honors not set")
	}
}

func TestEndDateIgnoredWhileCurrent(t *testing.T) {
	s, _ := newTestSession(t)
	e := s.Experience().Add()
	_, _ = s.Experience().Update(e.ID, resume.SetExperienceEndDate("2023-01"))
	_, _ = s.Experience().Update(e.ID, resume.SetExperienceCurrent(true))
	got, _ := s.Experience().Update(e.ID, resume.SetExperienceEndDate("2025-01"))
	if !got.Current || got.EndDate != "2023-01" {
		t.Errorf("entry = %+v", got)
	}
}

func TestPersonalInfoSet(t *testing.T) {
	s, _ := newTestSession(t)
	info := resume.PersonalInfo{FullName: "Ada", Email: "not-an-email"}
	s.PersonalInfo().Set(info)
	if s.PersonalInfo().Get() != info {
		t.Errorf("info = %+v", s.PersonalInfo().Get())
	}
	snap := s.Snapshot()
	if len(snap.Missing) != 2 {
		t.Errorf("missing = %v", snap.Missing)
	}
}

func TestSectionEventsCarrySlice(t *testing.T) {
	s, _ := newTestSession(t)
	var log eventLog
	s.OnChange(log.record)

	s.Summary().Set("x")
	s.Education().Add()
	_ = s.Education().Remove("unknown")

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.events) != 2 {
		t.Fatalf("events = %+v", log.events)
	}
	if log.events[0].Section != resume.SliceSummary || log.events[1].Section != resume.SliceEducation {
		t.Errorf("events = %+v", log.events)
	}
}

func TestNoticesDismiss(t *testing.T) {
	s, fb := newTestSession(t, WithClock(func() time.Time { return time.Unix(0, 0) }))
	fb.SaveErr = &backend.StatusError{Op: backend.OpSave, StatusCode: 500, Status: "500 Internal Server Error"}

	if _, err := s.Save(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	notices := s.Notices()
	if len(notices) != 1 {
		t.Fatalf("notices = %+v", notices)
	}
	if err := s.DismissNotice(notices[0].ID); err != nil {
		t.Fatal(err)
	}
	if len(s.Notices()) != 0 {
		t.Error("notice not dismissed")
	}
	if err := s.DismissNotice(notices[0].ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second dismiss: %v", err)
	}
}

func TestSnapshotJSON(t *testing.T) {
	s, _ := newTestSession(t)
	out, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if back["view"] != "upload" {
		t.Errorf("view = %v", back["view"])
	}
	if _, ok := back["last_saved"]; ok {
		t.Error("last_saved should be omitted before the first save")
	}
}
