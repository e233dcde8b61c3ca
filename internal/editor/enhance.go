package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/cvdraft/internal/apperr"
	"github.com/starford/cvdraft/internal/backend"
	"github.com/starford/cvdraft/internal/resume"
)

// Busy marker keys.
const (
	TargetSummary = "summary"
	TargetSkills  = "skills"
	TargetSave    = "save"
)

// ExperienceTarget is the busy marker key of one experience entry.
func ExperienceTarget(id string) string { return "experience:" + id }

// Outcome is the result of an enhancement request.
type Outcome struct {
	Target string `json:"target"`
	// Skipped is set when there was no text to send.
	Skipped bool `json:"skipped"`
	// Stale is set when the field was edited while the request was in
	// flight; the edit wins and the enhanced text is not applied.
	Stale       bool     `json:"stale"`
	Applied     bool     `json:"applied"`
	Enhanced    string   `json:"enhanced,omitempty"`
	Suggestions []string `json:"suggestions"`
}

// enhanceJob describes one enhancement target.
type enhanceJob struct {
	target  string
	section string
	// read returns the text to send.
	read func(resume.Data) (string, error)
	// apply stores the enhanced text if the field still holds sent. nil
	// means the response never changes the record.
	apply func(d resume.Data, sent, enhanced string) (resume.Data, bool)
	slice resume.Slice
}

// EnhanceSummary sends the summary to the backend and replaces it with the
// enhanced text.
func (s *Session) EnhanceSummary(ctx context.Context) (Outcome, error) {
	return s.enhance(ctx, enhanceJob{
		target:  TargetSummary,
		section: backend.SectionSummary,
		slice:   resume.SliceSummary,
		read:    func(d resume.Data) (string, error) { return d.Summary, nil },
		apply: func(d resume.Data, sent, enhanced string) (resume.Data, bool) {
			if d.Summary != sent {
				return d, false
			}
			return resume.WithSummary(d, enhanced), true
		},
	})
}

// EnhanceExperience enhances the description of one experience entry.
func (s *Session) EnhanceExperience(ctx context.Context, id string) (Outcome, error) {
	return s.enhance(ctx, enhanceJob{
		target:  ExperienceTarget(id),
		section: backend.SectionExperience,
		slice:   resume.SliceExperience,
		read: func(d resume.Data) (string, error) {
			e, ok := resume.Find(d.Experience, id)
			if !ok {
				return "", fmt.Errorf("experience entry %q: %w", id, apperr.ErrNotFound)
			}
			return e.Description, nil
		},
		apply: func(d resume.Data, sent, enhanced string) (resume.Data, bool) {
			e, ok := resume.Find(d.Experience, id)
			if !ok || e.Description != sent {
				return d, false
			}
			list, _ := resume.Update(d.Experience, id, resume.SetExperienceDescription(enhanced).Apply)
			return resume.WithExperience(d, list), true
		},
	})
}

// EnhanceSkills sends the skill names for review. The response only yields
// suggestions; the skills list is never changed by it.
func (s *Session) EnhanceSkills(ctx context.Context) (Outcome, error) {
	return s.enhance(ctx, enhanceJob{
		target:  TargetSkills,
		section: backend.SectionSkills,
		slice:   resume.SliceSkills,
		read: func(d resume.Data) (string, error) {
			names := make([]string, 0, len(d.Skills))
			for _, sk := range d.Skills {
				if n := strings.TrimSpace(sk.Name); n != "" {
					names = append(names, n)
				}
			}
			return strings.Join(names, ", "), nil
		},
	})
}

func (s *Session) enhance(ctx context.Context, job enhanceJob) (Outcome, error) {
	out := Outcome{Target: job.target, Suggestions: []string{}}

	s.mu.Lock()
	content, err := job.read(s.data)
	if err != nil {
		s.mu.Unlock()
		return out, err
	}
	if strings.TrimSpace(content) == "" {
		s.mu.Unlock()
		out.Skipped = true
		return out, nil
	}
	if _, busy := s.busy[job.target]; busy {
		s.mu.Unlock()
		return out, fmt.Errorf("%s: %w", job.target, apperr.ErrBusy)
	}
	s.busy[job.target] = struct{}{}
	s.mu.Unlock()
	s.emit(Event{Type: EventEnhanceStarted, Target: job.target})

	resp, err := s.backend.EnhanceContent(ctx, job.section, content)

	s.mu.Lock()
	delete(s.busy, job.target)
	if err != nil {
		s.mu.Unlock()
		s.emit(Event{Type: EventEnhanceFinished, Target: job.target})
		return out, s.fail("enhance "+job.target, err)
	}

	out.Enhanced = resp.EnhancedContent
	if resp.Suggestions != nil {
		out.Suggestions = append(out.Suggestions, resp.Suggestions...)
	}
	s.suggestions[job.target] = append([]string(nil), out.Suggestions...)

	events := []Event{{Type: EventEnhanceFinished, Target: job.target}}
	if job.apply != nil {
		next, ok := job.apply(s.data, content, resp.EnhancedContent)
		if ok {
			s.data = next
			out.Applied = true
			events = append(events, Event{Type: EventSectionUpdated, Section: job.slice})
		} else {
			out.Stale = true
		}
	}
	s.mu.Unlock()

	if out.Stale {
		s.logger.Info("enhanced text dropped, field changed during request", slog.String("target", job.target))
	} else if job.apply == nil {
		s.logger.Info("enhancement suggestions received",
			slog.String("target", job.target),
			slog.Any("suggestions", out.Suggestions))
	}
	s.emit(events...)
	return out, nil
}
