package resume

import (
	"encoding/json"
	"fmt"
)

// ExperienceField is the closed set of editable Experience fields.
type ExperienceField string

// Experience fields, named after their JSON keys.
const (
	ExperienceTitle       ExperienceField = "title"
	ExperienceCompany     ExperienceField = "company"
	ExperienceLocation    ExperienceField = "location"
	ExperienceStartDate   ExperienceField = "startDate"
	ExperienceEndDate     ExperienceField = "endDate"
	ExperienceCurrent     ExperienceField = "current"
	ExperienceDescription ExperienceField = "description"
)

// ExperienceUpdate replaces exactly one field of an Experience.
// Build it with the SetExperience* constructors or ParseExperienceUpdate.
type ExperienceUpdate struct {
	field ExperienceField
	text  string
	flag  bool
}

func SetExperienceTitle(v string) ExperienceUpdate {
	return ExperienceUpdate{field: ExperienceTitle, text: v}
}

func SetExperienceCompany(v string) ExperienceUpdate {
	return ExperienceUpdate{field: ExperienceCompany, text: v}
}

func SetExperienceLocation(v string) ExperienceUpdate {
	return ExperienceUpdate{field: ExperienceLocation, text: v}
}

func SetExperienceStartDate(v string) ExperienceUpdate {
	return ExperienceUpdate{field: ExperienceStartDate, text: v}
}

func SetExperienceEndDate(v string) ExperienceUpdate {
	return ExperienceUpdate{field: ExperienceEndDate, text: v}
}

func SetExperienceCurrent(v bool) ExperienceUpdate {
	return ExperienceUpdate{field: ExperienceCurrent, flag: v}
}

func SetExperienceDescription(v string) ExperienceUpdate {
	return ExperienceUpdate{field: ExperienceDescription, text: v}
}

// Field reports which field the update touches.
func (u ExperienceUpdate) Field() ExperienceField { return u.field }

// Apply returns e with the field replaced. While e.Current is set, endDate
// edits are dropped; toggling Current never clears EndDate.
func (u ExperienceUpdate) Apply(e Experience) Experience {
	switch u.field {
	case ExperienceTitle:
		e.Title = u.text
	case ExperienceCompany:
		e.Company = u.text
	case ExperienceLocation:
		e.Location = u.text
	case ExperienceStartDate:
		e.StartDate = u.text
	case ExperienceEndDate:
		if !e.Current {
			e.EndDate = u.text
		}
	case ExperienceCurrent:
		e.Current = u.flag
	case ExperienceDescription:
		e.Description = u.text
	}
	return e
}

// ParseExperienceUpdate decodes a field name and a JSON value.
func ParseExperienceUpdate(field string, raw json.RawMessage) (ExperienceUpdate, error) {
	f := ExperienceField(field)
	switch f {
	case ExperienceCurrent:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return ExperienceUpdate{}, fmt.Errorf("experience.%s: %w", field, err)
		}
		return SetExperienceCurrent(b), nil
	case ExperienceTitle, ExperienceCompany, ExperienceLocation,
		ExperienceStartDate, ExperienceEndDate, ExperienceDescription:
		s, err := decodeText(raw)
		if err != nil {
			return ExperienceUpdate{}, fmt.Errorf("experience.%s: %w", field, err)
		}
		return ExperienceUpdate{field: f, text: s}, nil
	}
	return ExperienceUpdate{}, fmt.Errorf("unknown experience field %q", field)
}

// EducationField is the closed set of editable Education fields.
type EducationField string

// Education fields, named after their JSON keys.
const (
	EducationDegree         EducationField = "degree"
	EducationInstitution    EducationField = "institution"
	EducationLocation       EducationField = "location"
	EducationGraduationDate EducationField = "graduationDate"
	EducationGPA            EducationField = "gpa"
	EducationHonors         EducationField = "honors"
)

// EducationUpdate replaces exactly one field of an Education entry.
type EducationUpdate struct {
	field EducationField
	text  string
}

func SetEducationDegree(v string) EducationUpdate {
	return EducationUpdate{field: EducationDegree, text: v}
}

func SetEducationInstitution(v string) EducationUpdate {
	return EducationUpdate{field: EducationInstitution, text: v}
}

func SetEducationLocation(v string) EducationUpdate {
	return EducationUpdate{field: EducationLocation, text: v}
}

func SetEducationGraduationDate(v string) EducationUpdate {
	return EducationUpdate{field: EducationGraduationDate, text: v}
}

func SetEducationGPA(v string) EducationUpdate {
	return EducationUpdate{field: EducationGPA, text: v}
}

func SetEducationHonors(v string) EducationUpdate {
	return EducationUpdate{field: EducationHonors, text: v}
}

// Field reports which field the update touches.
func (u EducationUpdate) Field() EducationField { return u.field }

// Apply returns e with the field replaced.
func (u EducationUpdate) Apply(e Education) Education {
	switch u.field {
	case EducationDegree:
		e.Degree = u.text
	case EducationInstitution:
		e.Institution = u.text
	case EducationLocation:
		e.Location = u.text
	case EducationGraduationDate:
		e.GraduationDate = u.text
	case EducationGPA:
		e.GPA = u.text
	case EducationHonors:
		e.Honors = u.text
	}
	return e
}

// ParseEducationUpdate decodes a field name and a JSON value.
func ParseEducationUpdate(field string, raw json.RawMessage) (EducationUpdate, error) {
	f := EducationField(field)
	switch f {
	case EducationDegree, EducationInstitution, EducationLocation,
		EducationGraduationDate, EducationGPA, EducationHonors:
		s, err := decodeText(raw)
		if err != nil {
			return EducationUpdate{}, fmt.Errorf("education.%s: %w", field, err)
		}
		return EducationUpdate{field: f, text: s}, nil
	}
	return EducationUpdate{}, fmt.Errorf("unknown education field %q", field)
}

// SkillField is the closed set of editable Skill fields.
type SkillField string

// Skill fields, named after their JSON keys.
const (
	SkillName        SkillField = "name"
	SkillCategory    SkillField = "category"
	SkillProficiency SkillField = "proficiency"
)

// SkillUpdate replaces exactly one field of a Skill.
type SkillUpdate struct {
	field       SkillField
	name        string
	category    Category
	proficiency Proficiency
}

func SetSkillName(v string) SkillUpdate {
	return SkillUpdate{field: SkillName, name: v}
}

func SetSkillCategory(v Category) SkillUpdate {
	return SkillUpdate{field: SkillCategory, category: v}
}

func SetSkillProficiency(v Proficiency) SkillUpdate {
	return SkillUpdate{field: SkillProficiency, proficiency: v}
}

// Field reports which field the update touches.
func (u SkillUpdate) Field() SkillField { return u.field }

// Apply returns s with the field replaced.
func (u SkillUpdate) Apply(s Skill) Skill {
	switch u.field {
	case SkillName:
		s.Name = u.name
	case SkillCategory:
		s.Category = u.category
	case SkillProficiency:
		s.Proficiency = u.proficiency
	}
	return s
}

// ParseSkillUpdate decodes a field name and a JSON value. Unknown categories
// and proficiency levels are rejected.
func ParseSkillUpdate(field string, raw json.RawMessage) (SkillUpdate, error) {
	switch SkillField(field) {
	case SkillName:
		s, err := decodeText(raw)
		if err != nil {
			return SkillUpdate{}, fmt.Errorf("skills.%s: %w", field, err)
		}
		return SetSkillName(s), nil
	case SkillCategory:
		var c Category
		if err := json.Unmarshal(raw, &c); err != nil {
			return SkillUpdate{}, fmt.Errorf("skills.%s: %w", field, err)
		}
		return SetSkillCategory(c), nil
	case SkillProficiency:
		var p Proficiency
		if err := json.Unmarshal(raw, &p); err != nil {
			return SkillUpdate{}, fmt.Errorf("skills.%s: %w", field, err)
		}
		return SetSkillProficiency(p), nil
	}
	return SkillUpdate{}, fmt.Errorf("unknown skill field %q", field)
}

func decodeText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}
