package models

// MaxSubjectsPerTerm caps the number of concurrent subject assignments a
// student may hold within a single term.
const MaxSubjectsPerTerm = 7

// Assignment links a student to a subject within a term, optionally graded.
// The (term, student, subject) triple is unique.
type Assignment struct {
	ID        string   `db:"id" json:"id"`
	TermID    string   `db:"term_id" json:"term_id"`
	StudentID string   `db:"student_id" json:"student_id"`
	SubjectID string   `db:"subject_id" json:"subject_id"`
	Grade     *float64 `db:"grade" json:"grade"`
}

// AssignmentDetail joins subject information for listing.
type AssignmentDetail struct {
	SubjectID          string   `db:"subject_id" json:"subject_id"`
	Grade              *float64 `db:"grade" json:"grade"`
	Name               string   `db:"name" json:"name"`
	Code               string   `db:"code" json:"code"`
	Units              int      `db:"units" json:"units"`
	CurriculumSemester int      `db:"curriculum_semester" json:"curriculum_semester"`
}
