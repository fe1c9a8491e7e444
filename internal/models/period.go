package models

// Period is one of the fixed daily time slots. The set is seeded once and
// its size never changes; only labels and times are editable.
type Period struct {
	ID        string `db:"id" json:"id"`
	Label     string `db:"label" json:"label"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
}
