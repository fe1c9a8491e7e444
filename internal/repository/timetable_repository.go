package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/alqalam-institute/registry-api/internal/models"
)

// TimetableRepository manages the weekly schedule grid of a term.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableDetailQuery = `SELECT te.id, te.term_id, te.day_of_week, te.period_id, te.subject_id,
    te.room_text, te.lecturer_text,
    p.label AS period_label, p.start_time AS period_start, p.end_time AS period_end,
    s.name AS subject_name, s.code AS subject_code
    FROM timetable_entries te
    JOIN periods p ON p.id = te.period_id
    JOIN subjects s ON s.id = te.subject_id`

// ListByTerm returns a term's full schedule joined with period and subject
// context, ordered for grid rendering.
func (r *TimetableRepository) ListByTerm(ctx context.Context, termID string) ([]models.TimetableEntryDetail, error) {
	query := timetableDetailQuery + ` WHERE te.term_id = $1
        ORDER BY array_position(ARRAY['saturday','sunday','monday','tuesday','wednesday','thursday'], te.day_of_week),
        p.sort_order ASC, s.code ASC`

	entries := []models.TimetableEntryDetail{}
	if err := r.db.SelectContext(ctx, &entries, query, termID); err != nil {
		return nil, fmt.Errorf("list timetable: %w", err)
	}
	return entries, nil
}

// ScheduleByTerm returns the public schedule view of a term.
func (r *TimetableRepository) ScheduleByTerm(ctx context.Context, termID string) ([]models.ScheduleSlot, error) {
	const query = `SELECT te.id, te.day_of_week, p.start_time, p.end_time,
        s.id AS subject_id, s.code AS subject_code, s.name AS subject_title, s.units AS credit_hours
        FROM timetable_entries te
        JOIN periods p ON p.id = te.period_id
        JOIN subjects s ON s.id = te.subject_id
        WHERE te.term_id = $1
        ORDER BY array_position(ARRAY['saturday','sunday','monday','tuesday','wednesday','thursday'], te.day_of_week),
        p.sort_order ASC, s.code ASC`

	slots := []models.ScheduleSlot{}
	if err := r.db.SelectContext(ctx, &slots, query, termID); err != nil {
		return nil, fmt.Errorf("list public schedule: %w", err)
	}
	return slots, nil
}

// FindByID looks up a single schedule entry with its joined context.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.TimetableEntryDetail, error) {
	var entry models.TimetableEntryDetail
	err := r.db.GetContext(ctx, &entry, timetableDetailQuery+` WHERE te.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find timetable entry: %w", err)
	}
	return &entry, nil
}

// SlotExists reports whether another entry already occupies the same
// (term, day, period, subject) slot. excludeID skips the entry being updated;
// pass an empty string on create.
func (r *TimetableRepository) SlotExists(ctx context.Context, termID string, day models.DayOfWeek, periodID, subjectID, excludeID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM timetable_entries
         WHERE term_id = $1 AND day_of_week = $2 AND period_id = $3 AND subject_id = $4 AND id <> $5)`,
		termID, day, periodID, subjectID, excludeID)
	if err != nil {
		return false, fmt.Errorf("check timetable slot: %w", err)
	}
	return exists, nil
}

// Create inserts a schedule entry. A duplicate slot surfaces as
// ErrDuplicateSlot whether caught by the pre-check or by the unique index.
func (r *TimetableRepository) Create(ctx context.Context, entry *models.TimetableEntry) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable create: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM timetable_entries
         WHERE term_id = $1 AND day_of_week = $2 AND period_id = $3 AND subject_id = $4)`,
		entry.TermID, entry.DayOfWeek, entry.PeriodID, entry.SubjectID)
	if err != nil {
		err = fmt.Errorf("check timetable slot: %w", err)
		return err
	}
	if exists {
		err = ErrDuplicateSlot
		return err
	}

	entry.ID = uuid.NewString()
	_, err = tx.NamedExecContext(ctx, `INSERT INTO timetable_entries
        (id, term_id, day_of_week, period_id, subject_id, room_text, lecturer_text)
        VALUES (:id, :term_id, :day_of_week, :period_id, :subject_id, :room_text, :lecturer_text)`, entry)
	if err != nil {
		if IsUniqueViolation(err) {
			err = ErrDuplicateSlot
			return err
		}
		err = fmt.Errorf("insert timetable entry: %w", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable create: %w", err)
	}
	return nil
}

// Update rewrites an entry's slot and free-text fields. The term is fixed at
// creation. A move into an occupied slot surfaces as ErrDuplicateSlot.
func (r *TimetableRepository) Update(ctx context.Context, entry *models.TimetableEntry) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin timetable update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM timetable_entries
         WHERE term_id = $1 AND day_of_week = $2 AND period_id = $3 AND subject_id = $4 AND id <> $5)`,
		entry.TermID, entry.DayOfWeek, entry.PeriodID, entry.SubjectID, entry.ID)
	if err != nil {
		err = fmt.Errorf("check timetable slot: %w", err)
		return err
	}
	if exists {
		err = ErrDuplicateSlot
		return err
	}

	_, err = tx.NamedExecContext(ctx, `UPDATE timetable_entries SET
        day_of_week = :day_of_week, period_id = :period_id, subject_id = :subject_id,
        room_text = :room_text, lecturer_text = :lecturer_text
        WHERE id = :id`, entry)
	if err != nil {
		if IsUniqueViolation(err) {
			err = ErrDuplicateSlot
			return err
		}
		err = fmt.Errorf("update timetable entry: %w", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable update: %w", err)
	}
	return nil
}

// Delete removes an entry and reports whether it existed.
func (r *TimetableRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete timetable entry: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete timetable entry result: %w", err)
	}
	return affected > 0, nil
}
