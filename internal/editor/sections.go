package editor

import (
	"fmt"

	"github.com/starford/cvdraft/internal/apperr"
	"github.com/starford/cvdraft/internal/resume"
)

// PersonalInfoSection edits the contact block.
type PersonalInfoSection struct{ b Binding[resume.PersonalInfo] }

func (s *Session) PersonalInfo() PersonalInfoSection {
	return PersonalInfoSection{b: s.personalInfoBinding()}
}

func (p PersonalInfoSection) Get() resume.PersonalInfo { return p.b.Load() }

// Set replaces the whole block. Values are stored as given.
func (p PersonalInfoSection) Set(v resume.PersonalInfo) {
	p.b.Modify(func(resume.PersonalInfo) resume.PersonalInfo { return v })
}

// SummarySection edits the summary text.
type SummarySection struct{ b Binding[string] }

func (s *Session) Summary() SummarySection {
	return SummarySection{b: s.summaryBinding()}
}

func (p SummarySection) Get() string { return p.b.Load() }

func (p SummarySection) Set(v string) {
	p.b.Modify(func(string) string { return v })
}

// listSection implements add, remove and update for one entry list.
type listSection[T resume.Entry] struct {
	b       Binding[[]T]
	newItem func(id string) T
}

// List returns the entries in insertion order.
func (l listSection[T]) List() []T { return l.b.Load() }

// Add appends an entry with default fields and a fresh id.
func (l listSection[T]) Add() T {
	item := l.newItem(resume.NewID())
	l.b.Modify(func(cur []T) []T { return resume.Append(cur, item) })
	return item
}

// Remove drops the entry with id. It returns apperr.ErrNotFound, and changes
// nothing, when no entry matches.
func (l listSection[T]) Remove(id string) error {
	_, ok := l.b.TryModify(func(cur []T) ([]T, bool) {
		if _, found := resume.Find(cur, id); !found {
			return cur, false
		}
		return resume.Remove(cur, id), true
	})
	if !ok {
		return fmt.Errorf("%s entry %q: %w", l.b.Slice(), id, apperr.ErrNotFound)
	}
	return nil
}

func (l listSection[T]) update(id string, apply func(T) T) (T, error) {
	var updated T
	_, ok := l.b.TryModify(func(cur []T) ([]T, bool) {
		next, found := resume.Update(cur, id, func(e T) T {
			updated = apply(e)
			return updated
		})
		return next, found
	})
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s entry %q: %w", l.b.Slice(), id, apperr.ErrNotFound)
	}
	return updated, nil
}

// ExperienceSection edits the work history.
type ExperienceSection struct{ listSection[resume.Experience] }

func (s *Session) Experience() ExperienceSection {
	return ExperienceSection{listSection[resume.Experience]{b: s.experienceBinding(), newItem: resume.NewExperience}}
}

// Update applies u to the entry with id.
func (e ExperienceSection) Update(id string, u resume.ExperienceUpdate) (resume.Experience, error) {
	return e.update(id, u.Apply)
}

// EducationSection edits the education list.
type EducationSection struct{ listSection[resume.Education] }

func (s *Session) Education() EducationSection {
	return EducationSection{listSection[resume.Education]{b: s.educationBinding(), newItem: resume.NewEducation}}
}

func (e EducationSection) Update(id string, u resume.EducationUpdate) (resume.Education, error) {
	return e.update(id, u.Apply)
}

// SkillsSection edits the skills list.
type SkillsSection struct{ listSection[resume.Skill] }

func (s *Session) Skills() SkillsSection {
	return SkillsSection{listSection[resume.Skill]{b: s.skillsBinding(), newItem: resume.NewSkill}}
}

func (e SkillsSection) Update(id string, u resume.SkillUpdate) (resume.Skill, error) {
	return e.update(id, u.Apply)
}
