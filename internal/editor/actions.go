package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/cvdraft/internal/apperr"
	"github.com/starford/cvdraft/internal/checksum"
	"github.com/starford/cvdraft/internal/history"
	"github.com/starford/cvdraft/internal/resume"
)

// ExportFile is a serialized record ready to download or write to disk.
type ExportFile struct {
	Name string
	Body []byte
}

// ExportName returns resume_<YYYY-MM-DD>.json for the UTC date of t.
func ExportName(t time.Time) string {
	return "resume_" + t.UTC().Format(time.DateOnly) + ".json"
}

// Encode renders d as indented JSON with keys in record order.
func Encode(d resume.Data) ([]byte, error) {
	body, err := json.MarshalIndent(d.Normalize(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode resume: %w", err)
	}
	return append(body, '\n'), nil
}

// Export serializes the record as it is now. It makes no network call.
func (s *Session) Export(now time.Time) (ExportFile, error) {
	body, err := Encode(s.Resume())
	if err != nil {
		return ExportFile{}, err
	}
	return ExportFile{Name: ExportName(now), Body: body}, nil
}

// Save sends the record to the backend. On success the receipt becomes the
// last-saved marker and is appended to the save log.
func (s *Session) Save(ctx context.Context) (*history.Receipt, error) {
	s.mu.Lock()
	if _, busy := s.busy[TargetSave]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("save: %w", apperr.ErrBusy)
	}
	s.busy[TargetSave] = struct{}{}
	data := s.data
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		delete(s.busy, TargetSave)
		s.mu.Unlock()
	}

	body, err := Encode(data)
	if err != nil {
		release()
		return nil, err
	}

	resp, err := s.backend.SaveResume(ctx, data)
	if err != nil {
		release()
		return nil, s.fail("save resume", err)
	}

	r := history.Receipt{
		ResumeID:   resp.ResumeID,
		Message:    resp.Message,
		SavedAt:    resp.SavedAt,
		FullName:   data.PersonalInfo.FullName,
		Checksum:   checksum.Sum(body),
		RecordedAt: s.now(),
	}

	s.mu.Lock()
	s.lastSaved = &r
	delete(s.busy, TargetSave)
	s.mu.Unlock()

	if s.saveLog != nil {
		if err := s.saveLog.Record(ctx, r); err != nil {
			s.logger.Warn("save receipt not recorded",
				slog.String("resume_id", r.ResumeID),
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("resume saved", slog.String("resume_id", r.ResumeID))
	s.emit(Event{Type: EventResumeSaved, ResumeID: r.ResumeID})
	cp := r
	return &cp, nil
}

// LastSaved returns the receipt of the last successful save in this
// process, or nil.
func (s *Session) LastSaved() *history.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSaved == nil {
		return nil
	}
	cp := *s.lastSaved
	return &cp
}

// Dirty reports whether the record differs from what was last saved. A
// session that never saved is dirty once the record is not empty.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Session) dirtyLocked() bool {
	body, err := Encode(s.data)
	if err != nil {
		return true
	}
	if s.lastSaved == nil {
		empty, _ := Encode(resume.New())
		return !checksum.Matches(body, checksum.Sum(empty))
	}
	return !checksum.Matches(body, s.lastSaved.Checksum)
}
