package models

// Offering marks a subject as available within a term. A subject must be
// offered before it can be assigned to students or placed on the timetable.
type Offering struct {
	ID        string `db:"id" json:"id"`
	TermID    string `db:"term_id" json:"term_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
}

// OfferedSubject is an offering joined with its subject and departments.
type OfferedSubject struct {
	SubjectID          string          `db:"subject_id" json:"subject_id"`
	Name               string          `db:"name" json:"name"`
	Code               string          `db:"code" json:"code"`
	Units              int             `db:"units" json:"units"`
	CurriculumSemester int             `db:"curriculum_semester" json:"curriculum_semester"`
	Departments        []DepartmentRef `json:"departments"`
}
