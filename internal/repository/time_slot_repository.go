package repository // repository for the fixed time slot catalog

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"strings"      // strings builds IN () placeholder lists

	"github.com/turftown/turf-booking/internal/model"
)

// TimeSlotRepo encapsulates database reads of the time_slots table.
// The catalog is reference data: it is seeded by operators, shared by
// every turf and (almost) never mutated at runtime, so the repository
// exposes only reads.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo constructs a TimeSlotRepo given a DB handle.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo {
	return &TimeSlotRepo{db: db}
}

// ListAll returns the full slot catalog ordered by start time
// ascending.  Both the availability resolver and the pricing engine
// consume this ordering; it must stay stable across calls.
func (r *TimeSlotRepo) ListAll(ctx context.Context) ([]model.TimeSlot, error) {
	const q = `SELECT id, start_time, end_time, period FROM time_slots ORDER BY start_time, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.TimeSlot, 0)
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.Period); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// GetByIDs returns the catalog entries for the given ids, ordered by
// start time.  Unknown ids are simply absent from the result; the
// caller compares lengths to detect them.  Passing an empty slice
// returns an empty result without touching the database.
func (r *TimeSlotRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.TimeSlot, error) {
	if len(ids) == 0 {
		return []model.TimeSlot{}, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT id, start_time, end_time, period FROM time_slots WHERE id IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY start_time, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.TimeSlot, 0, len(ids))
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.Period); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}
