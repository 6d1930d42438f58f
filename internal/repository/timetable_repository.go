package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/scolaire/timetable-api/internal/models"
)

// TimetableRepository persists the grid cells of every class section. Cells
// are inserted with ON CONFLICT DO NOTHING: a manually edited cell is never
// overwritten by a generation pass.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository builds the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// InsertBatch inserts the given cells, skipping positions already occupied.
func (r *TimetableRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.TimetableEntry) error {
	if len(entries) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO timetable_entries (id, class_id, time_slot, day_of_week, subject, teacher_name, room_name, created_at)
VALUES (:id, :class_id, :time_slot, :day_of_week, :subject, :teacher_name, :room_name, :created_at)
ON CONFLICT (class_id, time_slot, day_of_week) DO NOTHING`

	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entry); err != nil {
			return fmt.Errorf("insert timetable entry: %w", err)
		}
	}
	return nil
}

// ListAll returns every stored cell ordered for deterministic book
// reconstruction.
func (r *TimetableRepository) ListAll(ctx context.Context) ([]models.TimetableEntry, error) {
	const query = `SELECT id, class_id, time_slot, day_of_week, subject, teacher_name, room_name, created_at
FROM timetable_entries ORDER BY class_id ASC, time_slot ASC, day_of_week ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ListByClass returns the stored cells for one class section.
func (r *TimetableRepository) ListByClass(ctx context.Context, classID string) ([]models.TimetableEntry, error) {
	const query = `SELECT id, class_id, time_slot, day_of_week, subject, teacher_name, room_name, created_at
FROM timetable_entries WHERE class_id = $1 ORDER BY time_slot ASC, day_of_week ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, classID); err != nil {
		return nil, fmt.Errorf("list timetable entries for class: %w", err)
	}
	return entries, nil
}
