package models

// DayOfWeek enumerates the teaching days. Friday is not a teaching day.
type DayOfWeek string

const (
	DaySaturday  DayOfWeek = "saturday"
	DaySunday    DayOfWeek = "sunday"
	DayMonday    DayOfWeek = "monday"
	DayTuesday   DayOfWeek = "tuesday"
	DayWednesday DayOfWeek = "wednesday"
	DayThursday  DayOfWeek = "thursday"
)

// TeachingDays lists teaching days in week order.
var TeachingDays = []DayOfWeek{
	DaySaturday,
	DaySunday,
	DayMonday,
	DayTuesday,
	DayWednesday,
	DayThursday,
}

// Valid reports whether d is one of the six teaching days.
func (d DayOfWeek) Valid() bool {
	switch d {
	case DaySaturday, DaySunday, DayMonday, DayTuesday, DayWednesday, DayThursday:
		return true
	}
	return false
}

// TimetableEntry schedules an offered subject in a day/period slot of a
// term. The (term, day, period, subject) tuple is unique; different subjects
// may share the same day and period.
type TimetableEntry struct {
	ID           string    `db:"id" json:"id"`
	TermID       string    `db:"term_id" json:"term_id"`
	DayOfWeek    DayOfWeek `db:"day_of_week" json:"day_of_week"`
	PeriodID     string    `db:"period_id" json:"period_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	RoomText     *string   `db:"room_text" json:"room_text"`
	LecturerText *string   `db:"lecturer_text" json:"lecturer_text"`
}

// TimetableEntryDetail joins period and subject context for listing.
type TimetableEntryDetail struct {
	TimetableEntry
	PeriodLabel string `db:"period_label" json:"period_label"`
	PeriodStart string `db:"period_start" json:"period_start"`
	PeriodEnd   string `db:"period_end" json:"period_end"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
}
