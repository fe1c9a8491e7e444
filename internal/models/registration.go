package models

import "time"

// Registration enrolls a student in a term. The (term, student) pair is
// unique; repeated registration attempts are idempotent no-ops.
type Registration struct {
	ID           string    `db:"id" json:"id"`
	TermID       string    `db:"term_id" json:"term_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SectionID    *string   `db:"section_id" json:"section_id"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// RegistrationDetail joins the registered student's identity.
type RegistrationDetail struct {
	Registration
	StudentRegistrationID string `db:"student_registration_id" json:"student_registration_id"`
	StudentFullName       string `db:"student_full_name" json:"student_full_name"`
	StudentEmail          string `db:"student_email" json:"student_email"`
}
