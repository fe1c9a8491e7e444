package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Sentinel errors surfaced by transactional invariant checks. Services
// translate these into domain conflicts instead of leaking storage errors.
var (
	// ErrTermOverlap reports that a term's date range intersects another
	// term's closed [start, end] interval.
	ErrTermOverlap = errors.New("term dates overlap")

	// ErrDuplicateSlot reports a duplicate (term, day, period, subject)
	// timetable tuple.
	ErrDuplicateSlot = errors.New("duplicate timetable slot")
)

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. Used as the race backstop when an application-level existence
// check passed but a concurrent writer won the insert.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key
// constraint violation.
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}
