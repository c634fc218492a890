// Package types defines the record types for the three live collections and
// the derived value objects produced by the search and analytics layers.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Collection names. These are the only collections that participate in
// cross-collection joins.
const (
	CollectionStudents     = "students"
	CollectionInternships  = "internships"
	CollectionApplications = "applications"
)

// Application status values.
const (
	StatusApplied      = "applied"
	StatusPending      = "pending"
	StatusInterviewing = "interviewing"
	StatusOffered      = "offered"
	StatusAccepted     = "accepted"
	StatusRejected     = "rejected"
)

// SuccessStatuses is the terminal-success set used by placement aggregates.
var SuccessStatuses = map[string]bool{
	StatusOffered:  true,
	StatusAccepted: true,
}

// Record is the collection-agnostic view of an item. Identity is immutable;
// every other field may change between snapshots.
type Record interface {
	// RecordID returns the stable identifier of the record.
	RecordID() uuid.UUID
	// Collection returns the name of the collection the record belongs to.
	Collection() string
	// Field returns a named field value. Values are one of string, int,
	// float64, []string, or time.Time. The second return is false for
	// unknown field names.
	Field(name string) (any, bool)
	// FieldNames returns the record's field names in declaration order.
	FieldNames() []string
}

// Student is a record in the "students" collection.
type Student struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	University     string    `json:"university"`
	Major          string    `json:"major"`
	GraduationYear int       `json:"graduation_year"`
	Skills         []string  `json:"skills"`
	ResumeURL      string    `json:"resume_url"`
	Bio            string    `json:"bio"`
	GPA            float64   `json:"gpa"`
	Department     string    `json:"department"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordID implements Record.
func (s Student) RecordID() uuid.UUID { return s.ID }

// Collection implements Record.
func (s Student) Collection() string { return CollectionStudents }

// Field implements Record.
func (s Student) Field(name string) (any, bool) {
	switch name {
	case "id":
		return s.ID.String(), true
	case "name":
		return s.Name, true
	case "email":
		return s.Email, true
	case "phone":
		return s.Phone, true
	case "university":
		return s.University, true
	case "major":
		return s.Major, true
	case "graduation_year":
		return s.GraduationYear, true
	case "skills":
		return s.Skills, true
	case "resume_url":
		return s.ResumeURL, true
	case "bio":
		return s.Bio, true
	case "gpa":
		return s.GPA, true
	case "department":
		return s.Department, true
	case "created_at":
		return s.CreatedAt, true
	}
	return nil, false
}

// FieldNames implements Record.
func (s Student) FieldNames() []string {
	return []string{"id", "name", "email", "phone", "university", "major",
		"graduation_year", "skills", "resume_url", "bio", "gpa", "department", "created_at"}
}

// Internship is a record in the "internships" collection.
type Internship struct {
	ID             uuid.UUID `json:"id"`
	Role           string    `json:"role"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"required_skills"`
	Seats          int       `json:"seats"`
	Stipend        float64   `json:"stipend"`
	Department     string    `json:"department"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordID implements Record.
func (i Internship) RecordID() uuid.UUID { return i.ID }

// Collection implements Record.
func (i Internship) Collection() string { return CollectionInternships }

// Field implements Record.
func (i Internship) Field(name string) (any, bool) {
	switch name {
	case "id":
		return i.ID.String(), true
	case "role":
		return i.Role, true
	case "company":
		return i.Company, true
	case "location":
		return i.Location, true
	case "description":
		return i.Description, true
	case "required_skills":
		return i.RequiredSkills, true
	case "seats":
		return i.Seats, true
	case "stipend":
		return i.Stipend, true
	case "department":
		return i.Department, true
	case "created_at":
		return i.CreatedAt, true
	}
	return nil, false
}

// FieldNames implements Record.
func (i Internship) FieldNames() []string {
	return []string{"id", "role", "company", "location", "description",
		"required_skills", "seats", "stipend", "department", "created_at"}
}

// Application links a student to an internship and carries a status enum.
type Application struct {
	ID           uuid.UUID `json:"id"`
	StudentID    uuid.UUID `json:"student_id"`
	InternshipID uuid.UUID `json:"internship_id"`
	Status       string    `json:"status"`
	AppliedAt    time.Time `json:"applied_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RecordID implements Record.
func (a Application) RecordID() uuid.UUID { return a.ID }

// Collection implements Record.
func (a Application) Collection() string { return CollectionApplications }

// Field implements Record.
func (a Application) Field(name string) (any, bool) {
	switch name {
	case "id":
		return a.ID.String(), true
	case "student_id":
		return a.StudentID.String(), true
	case "internship_id":
		return a.InternshipID.String(), true
	case "status":
		return a.Status, true
	case "applied_at":
		return a.AppliedAt, true
	case "created_at":
		// Applications are created when applied; aliased so the default
		// newest-first ordering works across all collections.
		return a.AppliedAt, true
	case "updated_at":
		return a.UpdatedAt, true
	}
	return nil, false
}

// FieldNames implements Record.
func (a Application) FieldNames() []string {
	return []string{"id", "student_id", "internship_id", "status", "applied_at", "updated_at"}
}
