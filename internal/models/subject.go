package models

import "time"

// Subject is a course in the curriculum. Every subject is linked to at
// least one department through the department_subjects join table.
type Subject struct {
	ID                 string    `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	Code               string    `db:"code" json:"code"`
	Units              int       `db:"units" json:"units"`
	CurriculumSemester int       `db:"curriculum_semester" json:"curriculum_semester"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectDetail carries the subject's department links.
type SubjectDetail struct {
	Subject
	Departments []DepartmentRef `json:"departments"`
}

// SubjectFilter defines filters supported by the subject list endpoint.
type SubjectFilter struct {
	Search       string
	DepartmentID string
}
