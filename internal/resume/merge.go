package resume

import "fmt"

// Slice names one top-level field of Data.
type Slice string

// Slices of the record.
const (
	SlicePersonalInfo Slice = "personal_info"
	SliceSummary      Slice = "summary"
	SliceExperience   Slice = "experience"
	SliceEducation    Slice = "education"
	SliceSkills       Slice = "skills"
)

// ParseSlice maps a section name to a Slice.
func ParseSlice(s string) (Slice, error) {
	switch v := Slice(s); v {
	case SlicePersonalInfo, SliceSummary, SliceExperience, SliceEducation, SliceSkills:
		return v, nil
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// The With* functions return d with one field replaced. Every other field is
// carried over as is, lists included, so callers can detect change by comparing
// slice headers.

// WithPersonalInfo replaces the personal info block.
func WithPersonalInfo(d Data, v PersonalInfo) Data {
	d.PersonalInfo = v
	return d
}

// WithSummary replaces the summary.
func WithSummary(d Data, v string) Data {
	d.Summary = v
	return d
}

// WithExperience replaces the experience list.
func WithExperience(d Data, v []Experience) Data {
	d.Experience = v
	return d
}

// WithEducation replaces the education list.
func WithEducation(d Data, v []Education) Data {
	d.Education = v
	return d
}

// WithSkills replaces the skills list.
func WithSkills(d Data, v []Skill) Data {
	d.Skills = v
	return d
}
