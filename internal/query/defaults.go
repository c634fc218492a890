package query

import "github.com/jonathan/placement-engine/internal/types"

// DefaultConfig is the built-in role search configuration, used when no
// configuration file is supplied. Search field order encodes relevance
// priority.
func DefaultConfig() *Config {
	return &Config{
		Roles: map[string]RoleConfig{
			"student": {
				Collections: []CollectionConfig{
					{
						Key:          types.CollectionInternships,
						Label:        "Internships",
						SearchFields: []string{"role", "company", "required_skills", "location", "description"},
						Filters: []FilterSchema{
							{Field: "location", Kind: FilterMembership},
							{Field: "department", Kind: FilterMembership},
							{Field: "seats", Kind: FilterRange},
							{Field: "stipend", Kind: FilterRange},
						},
					},
					{
						Key:          types.CollectionApplications,
						Label:        "My Applications",
						SearchFields: []string{"status"},
						Filters: []FilterSchema{
							{Field: "status", Kind: FilterMembership, Options: []string{
								types.StatusApplied, types.StatusPending, types.StatusInterviewing,
								types.StatusOffered, types.StatusAccepted, types.StatusRejected,
							}},
						},
					},
				},
			},
			"recruiter": {
				Collections: []CollectionConfig{
					{
						Key:          types.CollectionStudents,
						Label:        "Students",
						SearchFields: []string{"name", "skills", "major", "university", "bio"},
						Filters: []FilterSchema{
							{Field: "department", Kind: FilterMembership},
							{Field: "university", Kind: FilterMembership},
							{Field: "graduation_year", Kind: FilterRange},
							{Field: "gpa", Kind: FilterRange},
						},
					},
					{
						Key:          types.CollectionInternships,
						Label:        "My Postings",
						SearchFields: []string{"role", "location", "required_skills"},
						Filters: []FilterSchema{
							{Field: "location", Kind: FilterMembership},
							{Field: "seats", Kind: FilterRange},
						},
					},
				},
			},
			"admin": {
				Collections: []CollectionConfig{
					{
						Key:          types.CollectionStudents,
						Label:        "Students",
						SearchFields: []string{"name", "email", "university", "major", "skills"},
						Filters: []FilterSchema{
							{Field: "department", Kind: FilterMembership},
							{Field: "graduation_year", Kind: FilterRange},
						},
					},
					{
						Key:          types.CollectionInternships,
						Label:        "Internships",
						SearchFields: []string{"role", "company", "location", "required_skills"},
						Filters: []FilterSchema{
							{Field: "department", Kind: FilterMembership},
							{Field: "seats", Kind: FilterRange},
						},
					},
					{
						Key:          types.CollectionApplications,
						Label:        "Applications",
						SearchFields: []string{"status"},
						Filters: []FilterSchema{
							{Field: "status", Kind: FilterMembership, Options: []string{
								types.StatusApplied, types.StatusPending, types.StatusInterviewing,
								types.StatusOffered, types.StatusAccepted, types.StatusRejected,
							}},
						},
					},
				},
			},
		},
	}
}
