// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for turfs and their sports sets. A
// turf is a venue owned by a single user; sports offered are stored as a
// set of rows in turf_sports and loaded alongside the turf.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used for sentinel comparisons
	"strings"      // strings builds IN () placeholder lists

	"github.com/turftown/turf-booking/internal/model"
)

// TurfRepo encapsulates all database queries related to turfs.  It
// depends on a sql.DB connection which should be configured elsewhere.
type TurfRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewTurfRepo constructs a TurfRepo with the provided DB handle.  This
// function allows dependency injection of the database in tests and at
// startup.  There is no initialization logic beyond assigning the field.
func NewTurfRepo(db *sql.DB) *TurfRepo {
	return &TurfRepo{db: db}
}

// DB exposes the underlying handle so handlers can open transactions
// that span multiple repositories.
func (r *TurfRepo) DB() *sql.DB { return r.db }

// Create inserts a new turf together with its sports set.  On success
// the turf's ID field is populated with the auto-generated value and a
// follow-up SELECT fills the timestamp defaults so callers receive a
// fully populated record.  New turfs start unverified.
func (r *TurfRepo) Create(ctx context.Context, t *model.Turf, sports []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const qInsert = "INSERT INTO turfs (owner_id, name, location, description, base_price_cents) VALUES (?, ?, ?, ?, ?)"
	res, err := tx.ExecContext(ctx, qInsert, t.OwnerID, t.Name, t.Location, t.Description, t.BasePriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	if err := r.replaceSportsTx(ctx, tx, t.ID, sports); err != nil {
		return err
	}
	const qSelect = "SELECT is_verified, created_at, updated_at FROM turfs WHERE id = ?"
	if err := tx.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.IsVerified, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// replaceSportsTx rewrites the turf_sports set for a turf inside the
// given transaction. Sports are lower-cased and de-duplicated.
func (r *TurfRepo) replaceSportsTx(ctx context.Context, tx *sql.Tx, turfID uint64, sports []string) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM turf_sports WHERE turf_id = ?", turfID); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(sports))
	values := make([]string, 0, len(sports))
	args := make([]interface{}, 0, len(sports)*2)
	for _, sp := range sports {
		sp = strings.ToLower(strings.TrimSpace(sp))
		if sp == "" {
			continue
		}
		if _, ok := seen[sp]; ok {
			continue
		}
		seen[sp] = struct{}{}
		values = append(values, "(?, ?)")
		args = append(args, turfID, sp)
	}
	if len(values) == 0 {
		return nil
	}
	q := "INSERT INTO turf_sports (turf_id, sport) VALUES " + strings.Join(values, ",")
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// Sports returns the sports offered by a turf, ordered alphabetically
// for deterministic responses.
func (r *TurfRepo) Sports(ctx context.Context, turfID uint64) ([]string, error) {
	const q = "SELECT sport FROM turf_sports WHERE turf_id = ? ORDER BY sport"
	rows, err := r.db.QueryContext(ctx, q, turfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sports := make([]string, 0)
	for rows.Next() {
		var sp string
		if err := rows.Scan(&sp); err != nil {
			return nil, err
		}
		sports = append(sports, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sports, nil
}

// OffersSport reports whether the turf lists the given sport.
func (r *TurfRepo) OffersSport(ctx context.Context, turfID uint64, sport string) (bool, error) {
	const q = "SELECT 1 FROM turf_sports WHERE turf_id = ? AND sport = ? LIMIT 1"
	var one int
	err := r.db.QueryRowContext(ctx, q, turfID, strings.ToLower(strings.TrimSpace(sport))).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID fetches a turf by its ID regardless of owner.  It returns
// ErrTurfNotFound if no row is found.  Callers can use this method
// when they don't need to enforce ownership in the repository layer.
func (r *TurfRepo) GetByID(ctx context.Context, id uint64) (*model.Turf, error) {
	const q = "SELECT id, owner_id, name, location, description, base_price_cents, is_verified, created_at, updated_at FROM turfs WHERE id = ?"
	var t model.Turf
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Location, &t.Description, &t.BasePriceCents, &t.IsVerified, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTurfNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetByIDAndOwner fetches a turf by id but only if it belongs to the
// specified owner.  If the turf doesn't exist or is owned by someone
// else, ErrTurfNotFound is returned so that enumeration of other
// owners' ids is not possible.
func (r *TurfRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Turf, error) {
	const q = "SELECT id, owner_id, name, location, description, base_price_cents, is_verified, created_at, updated_at FROM turfs WHERE id = ? AND owner_id = ?"
	var t model.Turf
	if err := r.db.QueryRowContext(ctx, q, id, ownerID).Scan(&t.ID, &t.OwnerID, &t.Name, &t.Location, &t.Description, &t.BasePriceCents, &t.IsVerified, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTurfNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByOwner returns all turfs for a specific owner ordered by id.
func (r *TurfRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Turf, error) {
	const q = `SELECT id, owner_id, name, location, description, base_price_cents, is_verified, created_at, updated_at
	           FROM turfs WHERE owner_id = ? ORDER BY id`
	return r.list(ctx, q, ownerID)
}

// ListVerified returns publicly browsable turfs.  When sport is
// non-empty the list is restricted to turfs offering that sport.
func (r *TurfRepo) ListVerified(ctx context.Context, sport string) ([]*model.Turf, error) {
	if sport = strings.ToLower(strings.TrimSpace(sport)); sport != "" {
		const q = `SELECT t.id, t.owner_id, t.name, t.location, t.description, t.base_price_cents, t.is_verified, t.created_at, t.updated_at
		           FROM turfs t
		           JOIN turf_sports ts ON ts.turf_id = t.id AND ts.sport = ?
		           WHERE t.is_verified = 1 ORDER BY t.id`
		return r.list(ctx, q, sport)
	}
	const q = `SELECT id, owner_id, name, location, description, base_price_cents, is_verified, created_at, updated_at
	           FROM turfs WHERE is_verified = 1 ORDER BY id`
	return r.list(ctx, q)
}

// ListUnverified returns turfs awaiting admin verification, oldest
// first so the review queue is fair.
func (r *TurfRepo) ListUnverified(ctx context.Context) ([]*model.Turf, error) {
	const q = `SELECT id, owner_id, name, location, description, base_price_cents, is_verified, created_at, updated_at
	           FROM turfs WHERE is_verified = 0 ORDER BY created_at`
	return r.list(ctx, q)
}

func (r *TurfRepo) list(ctx context.Context, q string, args ...interface{}) ([]*model.Turf, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Turf
	for rows.Next() {
		t := new(model.Turf)
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Location, &t.Description, &t.BasePriceCents, &t.IsVerified, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateByIDAndOwner updates the mutable turf fields if the turf
// belongs to the provided owner, and rewrites the sports set when a
// non-nil slice is supplied.  It returns ErrTurfNotFound when no row
// is affected (not found / not owned).
func (r *TurfRepo) UpdateByIDAndOwner(ctx context.Context, t *model.Turf, ownerID uint64, sports []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `UPDATE turfs SET name = ?, location = ?, description = ?, base_price_cents = ?
	           WHERE id = ? AND owner_id = ?`
	res, err := tx.ExecContext(ctx, q, t.Name, t.Location, t.Description, t.BasePriceCents, t.ID, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "no change" from "no such row" with a targeted probe.
		var exists int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM turfs WHERE id = ? AND owner_id = ?", t.ID, ownerID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTurfNotFound
			}
			return err
		}
	}
	if sports != nil {
		if err := r.replaceSportsTx(ctx, tx, t.ID, sports); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Verify marks a turf as verified.  It returns ErrTurfNotFound when
// the turf does not exist and ErrConflict when it is already
// verified, so admins get an explicit signal instead of a silent
// no-op.
func (r *TurfRepo) Verify(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE turfs SET is_verified = 1 WHERE id = ? AND is_verified = 0", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var verified bool
		if err := r.db.QueryRowContext(ctx, "SELECT is_verified FROM turfs WHERE id = ?", id).Scan(&verified); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTurfNotFound
			}
			return err
		}
		if verified {
			return ErrConflict
		}
	}
	return nil
}
