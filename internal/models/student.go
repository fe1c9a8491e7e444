package models

import "time"

// Student is an enrolled person identified by a unique registration ID and
// email. StudySemestersCount is a historical high-water mark: it increments
// once per distinct term registration and never decrements.
type Student struct {
	ID                  string    `db:"id" json:"id"`
	RegistrationID      string    `db:"registration_id" json:"registration_id"`
	FullName            string    `db:"full_name" json:"full_name"`
	Email               string    `db:"email" json:"email"`
	DepartmentID        string    `db:"department_id" json:"department_id"`
	MotherName          string    `db:"mother_name" json:"mother_name"`
	Phone               string    `db:"phone" json:"phone"`
	PasswordHash        string    `db:"password_hash" json:"-"`
	StudySemestersCount int       `db:"study_semesters_count" json:"study_semesters_count"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the student's department for list/detail payloads.
type StudentDetail struct {
	Student
	DepartmentName string `db:"department_name" json:"department_name"`
	DepartmentCode string `db:"department_code" json:"department_code"`
}

// StudentFilter defines filters supported by the student list endpoint.
type StudentFilter struct {
	Search       string
	DepartmentID string
	Page         int
	PageSize     int
}
