package resume

import (
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate reports the empty required fields of the contact block.
func (p PersonalInfo) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Required),
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Phone, validation.Required),
		validation.Field(&p.Location, validation.Required),
	)
}

// Validate reports the empty required fields of an experience entry.
func (e Experience) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Title, validation.Required),
		validation.Field(&e.Company, validation.Required),
		validation.Field(&e.StartDate, validation.Required),
	)
}

// Validate reports the empty required fields of an education entry.
func (e Education) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Degree, validation.Required),
		validation.Field(&e.Institution, validation.Required),
	)
}

// MissingRequired lists required fields that are still empty, e.g.
// "personal_info.email" or "experience[0].company". It only feeds the
// required-field markers; nothing refuses to save or export an incomplete record.
func MissingRequired(d Data) []string {
	var out []string
	out = appendMissing(out, string(SlicePersonalInfo), d.PersonalInfo.Validate())
	for i, e := range d.Experience {
		out = appendMissing(out, fmt.Sprintf("%s[%d]", SliceExperience, i), e.Validate())
	}
	for i, e := range d.Education {
		out = appendMissing(out, fmt.Sprintf("%s[%d]", SliceEducation, i), e.Validate())
	}
	return out
}

func appendMissing(out []string, prefix string, err error) []string {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return out
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, prefix+"."+k)
	}
	return out
}
