// Package resume defines the resume record edited by cvdraft and the pure
// operations used to change it.
package resume

import (
	"fmt"

	"github.com/google/uuid"
)

// PersonalInfo holds the contact block at the top of a resume.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
}

// Experience is one work history entry. Dates use YYYY-MM.
// When Current is true EndDate is ignored, even if it still holds a value.
type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// EntryID implements Entry.
func (e Experience) EntryID() string { return e.ID }

// Education is one degree entry.
type Education struct {
	ID             string `json:"id"`
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	Location       string `json:"location"`
	GraduationDate string `json:"graduationDate"`
	GPA            string `json:"gpa,omitempty"`
	Honors         string `json:"honors,omitempty"`
}

// EntryID implements Entry.
func (e Education) EntryID() string { return e.ID }

// Category groups skills.
type Category string

// Skill categories.
const (
	CategoryTechnical Category = "technical"
	CategorySoft      Category = "soft"
	CategoryLanguage  Category = "language"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryTechnical, CategorySoft, CategoryLanguage:
		return true
	}
	return false
}

// UnmarshalText rejects unknown categories.
func (c *Category) UnmarshalText(b []byte) error {
	v := Category(b)
	if !v.Valid() {
		return fmt.Errorf("unknown skill category %q", string(b))
	}
	*c = v
	return nil
}

// Proficiency is an ordered skill level. The order only drives display emphasis.
type Proficiency string

// Proficiency levels, lowest first.
const (
	ProficiencyBeginner     Proficiency = "beginner"
	ProficiencyIntermediate Proficiency = "intermediate"
	ProficiencyAdvanced     Proficiency = "advanced"
	ProficiencyExpert       Proficiency = "expert"
)

// Rank returns 1..4 for known levels and 0 otherwise.
func (p Proficiency) Rank() int {
	switch p {
	case ProficiencyBeginner:
		return 1
	case ProficiencyIntermediate:
		return 2
	case ProficiencyAdvanced:
		return 3
	case ProficiencyExpert:
		return 4
	}
	return 0
}

// Valid reports whether p is one of the known levels.
func (p Proficiency) Valid() bool { return p.Rank() > 0 }

// UnmarshalText rejects unknown levels.
func (p *Proficiency) UnmarshalText(b []byte) error {
	v := Proficiency(b)
	if !v.Valid() {
		return fmt.Errorf("unknown proficiency %q", string(b))
	}
	*p = v
	return nil
}

// Skill is one entry of the skills list.
type Skill struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    Category    `json:"category"`
	Proficiency Proficiency `json:"proficiency"`
}

// EntryID implements Entry.
func (s Skill) EntryID() string { return s.ID }

// Data is the whole resume record. Field order is the export key order.
type Data struct {
	PersonalInfo PersonalInfo `json:"personal_info"`
	Summary      string       `json:"summary"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []Skill      `json:"skills"`
}

// New returns an empty record.
func New() Data {
	return Data{
		Experience: []Experience{},
		Education:  []Education{},
		Skills:     []Skill{},
	}
}

// Normalize replaces nil lists with empty ones so exports never carry null.
func (d Data) Normalize() Data {
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	return d
}

// NewID returns a fresh entry identifier. UUIDv7 is time ordered, so ids
// generated in one process sort by creation.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewExperience returns an experience entry with default fields.
func NewExperience(id string) Experience {
	return Experience{ID: id}
}

// NewEducation returns an education entry with default fields.
func NewEducation(id string) Education {
	return Education{ID: id}
}

// NewSkill returns a skill with the default category and proficiency.
func NewSkill(id string) Skill {
	return Skill{ID: id, Category: CategoryTechnical, Proficiency: ProficiencyIntermediate}
}
