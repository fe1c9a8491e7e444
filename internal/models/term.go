package models

import "time"

// Term is an academic period with a closed date range. At most one term is
// active system-wide and no two term ranges may intersect.
type Term struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	IsArchived bool      `db:"is_archived" json:"is_archived"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TermFilter defines filters supported by the term list endpoint.
type TermFilter struct {
	IncludeArchived bool
}
