package editor

import "github.com/starford/cvdraft/internal/resume"

// Binding gives a section read access to its slice of the record and a way
// to replace it. Every write goes through the matching resume.With* merge.
type Binding[T any] struct {
	s     *Session
	slice resume.Slice
	get   func(resume.Data) T
	set   func(resume.Data, T) resume.Data
}

// Slice names the bound field.
func (b Binding[T]) Slice() resume.Slice { return b.slice }

// Load returns the current value of the slice.
func (b Binding[T]) Load() T {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return b.get(b.s.data)
}

// Modify replaces the slice with fn(current) and returns the new value.
func (b Binding[T]) Modify(fn func(T) T) T {
	v, _ := b.TryModify(func(cur T) (T, bool) { return fn(cur), true })
	return v
}

// TryModify is Modify where fn may decline the change by returning false.
// Nothing is stored or announced in that case.
func (b Binding[T]) TryModify(fn func(T) (T, bool)) (T, bool) {
	b.s.mu.Lock()
	next, ok := fn(b.get(b.s.data))
	if ok {
		b.s.data = b.set(b.s.data, next)
	}
	b.s.mu.Unlock()

	if ok {
		b.s.emit(Event{Type: EventSectionUpdated, Section: b.slice})
	}
	return next, ok
}

func (s *Session) personalInfoBinding() Binding[resume.PersonalInfo] {
	return Binding[resume.PersonalInfo]{
		s: s, slice: resume.SlicePersonalInfo,
		get: func(d resume.Data) resume.PersonalInfo { return d.PersonalInfo },
		set: resume.WithPersonalInfo,
	}
}

func (s *Session) summaryBinding() Binding[string] {
	return Binding[string]{
		s: s, slice: resume.SliceSummary,
		get: func(d resume.Data) string { return d.Summary },
		set: resume.WithSummary,
	}
}

func (s *Session) experienceBinding() Binding[[]resume.Experience] {
	return Binding[[]resume.Experience]{
		s: s, slice: resume.SliceExperience,
		get: func(d resume.Data) []resume.Experience { return d.Experience },
		set: resume.WithExperience,
	}
}

func (s *Session) educationBinding() Binding[[]resume.Education] {
	return Binding[[]resume.Education]{
		s: s, slice: resume.SliceEducation,
		get: func(d resume.Data) []resume.Education { return d.Education },
		set: resume.WithEducation,
	}
}

func (s *Session) skillsBinding() Binding[[]resume.Skill] {
	return Binding[[]resume.Skill]{
		s: s, slice: resume.SliceSkills,
		get: func(d resume.Data) []resume.Skill { return d.Skills },
		set: resume.WithSkills,
	}
}
