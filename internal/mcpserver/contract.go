package mcpserver

// ResumeFormatContract describes the resume record and the field names the
// editing tools accept.
const ResumeFormatContract = `# cvdraft Resume Format

The draft is one JSON record. Exports use exactly this layout, pretty printed
with two-space indentation.

` + "```" + `json
{
  "personal_info": {
    "fullName": "Ada Lovelace",        // required
    "email": "ada@example.com",        // required
    "phone": "+44 20 7946 0000",       // required
    "location": "London, UK",          // required
    "linkedin": "https://linkedin.com/in/ada",
    "website": "https://ada.dev"
  },
  "summary": "Mathematician and first programmer.",
  "experience": [
    {
      "id": "0192...",
      "title": "Analyst",              // required
      "company": "Analytical Engines", // required
      "location": "London",
      "startDate": "1842-01",          // required, YYYY-MM
      "endDate": "1843-09",            // YYYY-MM, ignored while current is true
      "current": false,
      "description": "Wrote the first published algorithm."
    }
  ],
  "education": [
    {
      "id": "0192...",
      "degree": "Private tutoring",    // required
      "institution": "Home",           // required
      "location": "London",
      "graduationDate": "1835-06",
      "gpa": "",
      "honors": ""
    }
  ],
  "skills": [
    {
      "id": "0192...",
      "name": "Mathematics",
      "category": "technical",         // technical | soft | language
      "proficiency": "expert"          // beginner | intermediate | advanced | expert
    }
  ]
}
` + "```" + `

## Rules

1. **Ids** are assigned by ` + "`" + `add_entry` + "`" + `. Never invent them; read them back with ` + "`" + `get_resume` + "`" + `.
2. **update_entry** changes one field per call. ` + "`" + `field` + "`" + ` is the JSON name above
   (the ` + "`" + `id` + "`" + ` field cannot be changed).
3. **current** takes ` + "`" + `true` + "`" + ` or ` + "`" + `false` + "`" + `. Setting it to true keeps the stored
   ` + "`" + `endDate` + "`" + ` but ` + "`" + `endDate` + "`" + ` edits are ignored until it is false again.
4. **Dates** are ` + "`" + `YYYY-MM` + "`" + ` strings and are not validated.
5. **Enhancement** of summary or an experience description replaces the text.
   Skills enhancement only returns suggestions; apply them yourself.
6. **Required fields** may stay empty while editing. ` + "`" + `get_resume` + "`" + ` lists them under
   ` + "`" + `missing` + "`" + `; saving and exporting never refuse an incomplete record.
`
