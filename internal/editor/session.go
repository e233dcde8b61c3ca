// Package editor holds the single in-process resume draft and the operations
// the HTTP and MCP surfaces run against it.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/cvdraft/internal/apperr"
	"github.com/starford/cvdraft/internal/backend"
	"github.com/starford/cvdraft/internal/history"
	"github.com/starford/cvdraft/internal/resume"
	"github.com/starford/cvdraft/internal/upload"
)

// View is the screen the editor is on.
type View string

const (
	ViewUpload View = "upload"
	ViewEdit   View = "edit"
)

// maxNotices bounds the notice list; the oldest notice is dropped first.
const maxNotices = 20

// Backend is the subset of the remote service the session uses.
type Backend interface {
	EnhanceContent(ctx context.Context, section, content string) (*backend.EnhanceResponse, error)
	SaveResume(ctx context.Context, data resume.Data) (*backend.SaveReceipt, error)
	ListResumes(ctx context.Context) (*backend.ResumeList, error)
	GetResume(ctx context.Context, id string) (resume.Data, error)
}

var _ Backend = (*backend.Client)(nil)

// Notice is a dismissible failure message.
type Notice struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Session owns the view and the draft record. All state sits behind mu;
// backend calls are made without holding it.
type Session struct {
	mu          sync.Mutex
	view        View
	data        resume.Data
	busy        map[string]struct{}
	suggestions map[string][]string
	lastSaved   *history.Receipt
	notices     []Notice
	observers   []func(Event)

	backend Backend
	seeder  upload.Seeder
	saveLog history.Log
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithSeeder replaces the sample seeder used after an upload.
func WithSeeder(sd upload.Seeder) Option {
	return func(s *Session) { s.seeder = sd }
}

// WithSaveLog records every successful save.
func WithSaveLog(l history.Log) Option {
	return func(s *Session) { s.saveLog = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession returns a session on the upload view with an empty record.
func NewSession(b Backend, opts ...Option) *Session {
	s := &Session{
		view:        ViewUpload,
		data:        resume.New(),
		busy:        make(map[string]struct{}),
		suggestions: make(map[string][]string),
		backend:     b,
		seeder:      upload.SampleSeeder{},
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn for every state change. fn runs on the goroutine
// that made the change, after the session lock is released.
func (s *Session) OnChange(fn func(Event)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Session) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	obs := append(([]func(Event))(nil), s.observers...)
	s.mu.Unlock()
	for _, ev := range events {
		for _, fn := range obs {
			fn(ev)
		}
	}
}

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Resume returns the current record. Lists are never changed in place, so
// the returned value stays valid after later edits.
func (s *Session) Resume() resume.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Snapshot is everything a client needs to render the editor.
type Snapshot struct {
	View        View                `json:"view"`
	Resume      resume.Data         `json:"resume"`
	Busy        []string            `json:"busy"`
	Suggestions map[string][]string `json:"suggestions"`
	Missing     []string            `json:"missing"`
	LastSaved   *history.Receipt    `json:"last_saved,omitempty"`
	Dirty       bool                `json:"dirty"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	busy := make([]string, 0, len(s.busy))
	for k := range s.busy {
		busy = append(busy, k)
	}
	sort.Strings(busy)

	sugg := make(map[string][]string, len(s.suggestions))
	for k, v := range s.suggestions {
		sugg[k] = append([]string(nil), v...)
	}

	var last *history.Receipt
	if s.lastSaved != nil {
		cp := *s.lastSaved
		last = &cp
	}

	return Snapshot{
		View:        s.view,
		Resume:      s.data,
		Busy:        busy,
		Suggestions: sugg,
		Missing:     resume.MissingRequired(s.data),
		LastSaved:   last,
		Dirty:       s.dirtyLocked(),
	}
}

// Busy reports whether an enhancement or save is in flight for target.
func (s *Session) Busy(target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.busy[target]
	return ok
}

// Suggestions returns the last suggestions received for target.
func (s *Session) Suggestions(target string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.suggestions[target]...)
}

// StartFromScratch opens the edit view without touching the record.
func (s *Session) StartFromScratch() {
	s.setView(ViewEdit)
}

// ShowUpload returns to the upload view. The record is kept.
func (s *Session) ShowUpload() {
	s.setView(ViewUpload)
}

func (s *Session) setView(v View) {
	s.mu.Lock()
	changed := s.view != v
	s.view = v
	s.mu.Unlock()
	if changed {
		s.emit(Event{Type: EventViewChanged, View: v})
	}
}

// Upload validates files, replaces the record with the seeded one and opens
// the edit view. A rejected upload leaves the session untouched.
func (s *Session) Upload(ctx context.Context, files ...upload.File) (upload.File, error) {
	return s.seed(ctx, false, files)
}

// Import is Upload for files that arrive without the user on the upload
// view, e.g. from the inbox folder. It returns apperr.ErrConflict when the
// editor is already editing so a dropped file never clobbers a draft.
func (s *Session) Import(ctx context.Context, f upload.File) (upload.File, error) {
	return s.seed(ctx, true, []upload.File{f})
}

func (s *Session) seed(ctx context.Context, onlyFromUpload bool, files []upload.File) (upload.File, error) {
	f, err := upload.Validate(files...)
	if err != nil {
		return upload.File{}, err
	}
	if onlyFromUpload && s.View() != ViewUpload {
		return upload.File{}, fmt.Errorf("import %s: %w", f.Name, apperr.ErrConflict)
	}

	data, err := s.seeder.Seed(ctx, f)
	if err != nil {
		return upload.File{}, fmt.Errorf("seed from %s: %w", f.Name, err)
	}

	s.mu.Lock()
	if onlyFromUpload && s.view != ViewUpload {
		s.mu.Unlock()
		return upload.File{}, fmt.Errorf("import %s: %w", f.Name, apperr.ErrConflict)
	}
	events := s.replaceLocked(data.Normalize())
	s.mu.Unlock()

	s.logger.Info("resume seeded from upload", slog.String("file", f.Name), slog.String("mime", f.MIME))
	s.emit(events...)
	return f, nil
}

// Load replaces the record with a saved resume from the backend.
func (s *Session) Load(ctx context.Context, id string) error {
	data, err := s.backend.GetResume(ctx, id)
	if err != nil {
		return s.fail(fmt.Sprintf("open saved resume %s", id), err)
	}

	s.mu.Lock()
	events := s.replaceLocked(data)
	s.mu.Unlock()

	s.logger.Info("saved resume opened", slog.String("resume_id", id))
	s.emit(events...)
	return nil
}

// ListSaved returns the ids of resumes stored by the backend.
func (s *Session) ListSaved(ctx context.Context) ([]string, error) {
	list, err := s.backend.ListResumes(ctx)
	if err != nil {
		return nil, s.fail("list saved resumes", err)
	}
	return list.Resumes, nil
}

// replaceLocked swaps the whole record, switches to the edit view and drops
// suggestions that belonged to the previous record.
func (s *Session) replaceLocked(data resume.Data) []Event {
	s.data = data
	s.suggestions = make(map[string][]string)
	events := []Event{
		{Type: EventSectionUpdated, Section: resume.SlicePersonalInfo},
		{Type: EventSectionUpdated, Section: resume.SliceSummary},
		{Type: EventSectionUpdated, Section: resume.SliceExperience},
		{Type: EventSectionUpdated, Section: resume.SliceEducation},
		{Type: EventSectionUpdated, Section: resume.SliceSkills},
	}
	if s.view != ViewEdit {
		s.view = ViewEdit
		events = append(events, Event{Type: EventViewChanged, View: ViewEdit})
	}
	return events
}

// fail logs a backend failure, records a notice and returns err wrapped with op.
func (s *Session) fail(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Error(op+" failed", slog.String("error", err.Error()))

	n := Notice{
		ID:      uuid.NewString(),
		Message: fmt.Sprintf("%s: %v", op, err),
		At:      s.now(),
	}
	s.mu.Lock()
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = append([]Notice(nil), s.notices[len(s.notices)-maxNotices:]...)
	}
	s.mu.Unlock()

	s.emit(Event{Type: EventNoticeAdded, Notice: &n})
	return fmt.Errorf("%s: %w", op, err)
}

// Notices returns the undismissed notices, oldest first.
func (s *Session) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice{}, s.notices...)
}

// DismissNotice removes a notice.
func (s *Session) DismissNotice(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i:i], s.notices[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}
