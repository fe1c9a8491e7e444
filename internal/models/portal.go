package models

import "github.com/golang-jwt/jwt/v5"

// PortalClaims are the JWT claims issued to a student portal session.
type PortalClaims struct {
	StudentID      string `json:"student_id"`
	RegistrationID string `json:"registration_id"`
	jwt.RegisteredClaims
}

// AcademicTerm summarises one registered term in the student's record.
type AcademicTerm struct {
	TermID    string           `json:"term_id"`
	TermName  string           `json:"term_name"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Courses   []AcademicCourse `json:"courses"`
}

// AcademicCourse is one graded (or ungraded) subject within a term.
type AcademicCourse struct {
	SubjectID   string   `json:"subject_id"`
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	CreditHours int      `json:"credit_hours"`
	Grade       *float64 `json:"grade"`
}

// PortalDashboard is the student-facing payload after login.
type PortalDashboard struct {
	Token          string         `json:"token"`
	FullName       string         `json:"full_name"`
	RegistrationID string         `json:"registration_id"`
	Email          string         `json:"email"`
	Department     DepartmentRef  `json:"department"`
	CurrentTerm    *AcademicTerm  `json:"current_term"`
	AcademicRecord []AcademicTerm `json:"academic_record"`
}

// ScheduleSlot is one public schedule row joined across timetable, period
// and subject.
type ScheduleSlot struct {
	ID           string    `db:"id" json:"id"`
	DayOfWeek    DayOfWeek `db:"day_of_week" json:"day_of_week"`
	StartTime    string    `db:"start_time" json:"start_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	SubjectCode  string    `db:"subject_code" json:"subject_code"`
	SubjectTitle string    `db:"subject_title" json:"subject_title"`
	CreditHours  int       `db:"credit_hours" json:"credit_hours"`
}
