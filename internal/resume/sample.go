package resume

// Sample returns the record loaded in place of parsing an uploaded file.
// Each call returns fresh slices.
func Sample() Data {
	return Data{
		PersonalInfo: PersonalInfo{
			FullName: "John Doe",
			Email:    "john.doe@email.com",
			Phone:    "+1 (555) 123-4567",
			Location: "San Francisco, CA",
			LinkedIn: "https://linkedin.com/in/johndoe",
			Website:  "https://johndoe.dev",
		},
		Summary: "Experienced software developer with 5+ years of expertise in full-stack development, " +
			"specializing in React, Node.js, and cloud technologies.",
		Experience: []Experience{
			{
				ID:        "1",
				Title:     "Senior Software Engineer",
				Company:   "Tech Solutions Inc.",
				Location:  "San Francisco, CA",
				StartDate: "2021-03",
				Current:   true,
				Description: "Led development of scalable web applications serving 100K+ users. " +
					"Mentored junior developers and improved deployment efficiency by 40%.",
			},
		},
		Education: []Education{
			{
				ID:             "1",
				Degree:         "Bachelor of Science in Computer Science",
				Institution:    "University of California, Berkeley",
				Location:       "Berkeley, CA",
				GraduationDate: "2019-05",
				GPA:            "3.8/4.0",
				Honors:         "Magna Cum Laude",
			},
		},
		Skills: []Skill{
			{ID: "1", Name: "JavaScript", Category: CategoryTechnical, Proficiency: ProficiencyExpert},
			{ID: "2", Name: "React", Category: CategoryTechnical, Proficiency: ProficiencyExpert},
			{ID: "3", Name: "Leadership", Category: CategorySoft, Proficiency: ProficiencyAdvanced},
		},
	}
}
