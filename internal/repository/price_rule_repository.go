package repository // repository for pricing rule persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"errors"       // errors for sentinel comparisons

	"github.com/turftown/turf-booking/internal/model"
)

// PriceRuleRepo encapsulates database operations for price_rules.
// Rules belong to one (turf, sport) pair; ownership checks join
// through the turfs table so owners can only touch rules on their
// own turfs.
type PriceRuleRepo struct {
	db *sql.DB
}

// NewPriceRuleRepo constructs a PriceRuleRepo given a DB handle.
func NewPriceRuleRepo(db *sql.DB) *PriceRuleRepo {
	return &PriceRuleRepo{db: db}
}

const priceRuleColumns = `id, turf_id, sport, slot_id, day_of_week, rule_date, start_time, end_time, period, day_type, price_cents, priority, created_at`

// scanRule reads one price_rules row into a model.PriceRule,
// converting nullable columns to pointers.
func scanRule(scan func(dest ...interface{}) error) (model.PriceRule, error) {
	var (
		rule      model.PriceRule
		slotID    sql.NullInt64
		dayOfWeek sql.NullInt64
		ruleDate  sql.NullString
		startTime sql.NullString
		endTime   sql.NullString
		period    sql.NullString
		dayType   sql.NullString
	)
	err := scan(&rule.ID, &rule.TurfID, &rule.Sport, &slotID, &dayOfWeek, &ruleDate,
		&startTime, &endTime, &period, &dayType, &rule.PriceCents, &rule.Priority, &rule.CreatedAt)
	if err != nil {
		return rule, err
	}
	if slotID.Valid {
		v := uint64(slotID.Int64)
		rule.SlotID = &v
	}
	if dayOfWeek.Valid {
		v := int(dayOfWeek.Int64)
		rule.DayOfWeek = &v
	}
	if ruleDate.Valid {
		v := ruleDate.String
		rule.RuleDate = &v
	}
	if startTime.Valid {
		v := startTime.String
		rule.StartTime = &v
	}
	if endTime.Valid {
		v := endTime.String
		rule.EndTime = &v
	}
	if period.Valid {
		v := period.String
		rule.Period = &v
	}
	if dayType.Valid {
		v := dayType.String
		rule.DayType = &v
	}
	return rule, nil
}

// ListForTurfSport returns every rule for the (turf, sport) pair in
// insertion order (id ascending).  The ordering matters: the pricing
// engine breaks priority ties by position in this list, so it must
// be stable across fetches.
func (r *PriceRuleRepo) ListForTurfSport(ctx context.Context, turfID uint64, sport string) ([]model.PriceRule, error) {
	const q = `SELECT ` + priceRuleColumns + ` FROM price_rules WHERE turf_id = ? AND sport = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, turfID, sport)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rules := make([]model.PriceRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows.Scan)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// ListForTurf returns every rule on a turf across all sports, for the
// owner rule management screen.  Insertion order, same as above.
func (r *PriceRuleRepo) ListForTurf(ctx context.Context, turfID uint64) ([]model.PriceRule, error) {
	const q = `SELECT ` + priceRuleColumns + ` FROM price_rules WHERE turf_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, turfID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rules := make([]model.PriceRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows.Scan)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// Create inserts a new rule and populates the generated ID and
// CreatedAt on the passed struct.
func (r *PriceRuleRepo) Create(ctx context.Context, rule *model.PriceRule) error {
	const q = `INSERT INTO price_rules
	           (turf_id, sport, slot_id, day_of_week, rule_date, start_time, end_time, period, day_type, price_cents, priority)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rule.TurfID, rule.Sport, rule.SlotID, rule.DayOfWeek, rule.RuleDate,
		rule.StartTime, rule.EndTime, rule.Period, rule.DayType, rule.PriceCents, rule.Priority)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rule.ID = uint64(id)
	return r.db.QueryRowContext(ctx, "SELECT created_at FROM price_rules WHERE id = ?", rule.ID).Scan(&rule.CreatedAt)
}

// GetByIDForOwner returns a rule only when the caller owns the turf
// it belongs to.  ErrRuleNotFound is returned when the rule does not
// exist; ErrForbidden when it belongs to someone else's turf.
func (r *PriceRuleRepo) GetByIDForOwner(ctx context.Context, ruleID, ownerID uint64) (*model.PriceRule, error) {
	const q = `SELECT ` + priceRuleColumns + `, (SELECT owner_id FROM turfs WHERE turfs.id = price_rules.turf_id)
	           FROM price_rules WHERE id = ?`
	var actualOwnerID uint64
	rule, err := scanRuleWithOwner(r.db.QueryRowContext(ctx, q, ruleID), &actualOwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, ErrForbidden
	}
	return &rule, nil
}

// scanRuleWithOwner scans a rule row that carries a trailing owner_id
// column.
func scanRuleWithOwner(row *sql.Row, ownerID *uint64) (model.PriceRule, error) {
	var (
		rule      model.PriceRule
		slotID    sql.NullInt64
		dayOfWeek sql.NullInt64
		ruleDate  sql.NullString
		startTime sql.NullString
		endTime   sql.NullString
		period    sql.NullString
		dayType   sql.NullString
	)
	err := row.Scan(&rule.ID, &rule.TurfID, &rule.Sport, &slotID, &dayOfWeek, &ruleDate,
		&startTime, &endTime, &period, &dayType, &rule.PriceCents, &rule.Priority, &rule.CreatedAt, ownerID)
	if err != nil {
		return rule, err
	}
	if slotID.Valid {
		v := uint64(slotID.Int64)
		rule.SlotID = &v
	}
	if dayOfWeek.Valid {
		v := int(dayOfWeek.Int64)
		rule.DayOfWeek = &v
	}
	if ruleDate.Valid {
		v := ruleDate.String
		rule.RuleDate = &v
	}
	if startTime.Valid {
		v := startTime.String
		rule.StartTime = &v
	}
	if endTime.Valid {
		v := endTime.String
		rule.EndTime = &v
	}
	if period.Valid {
		v := period.String
		rule.Period = &v
	}
	if dayType.Valid {
		v := dayType.String
		rule.DayType = &v
	}
	return rule, nil
}

// UpdateByIDAndOwner rewrites a rule's matchers, price and priority
// when the caller owns the underlying turf.  The (turf, sport) pair a
// rule belongs to is immutable; delete and recreate to move a rule.
func (r *PriceRuleRepo) UpdateByIDAndOwner(ctx context.Context, rule *model.PriceRule, ownerID uint64) error {
	if _, err := r.GetByIDForOwner(ctx, rule.ID, ownerID); err != nil {
		return err
	}
	const q = `UPDATE price_rules
	           SET slot_id = ?, day_of_week = ?, rule_date = ?, start_time = ?, end_time = ?, period = ?, day_type = ?, price_cents = ?, priority = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, rule.SlotID, rule.DayOfWeek, rule.RuleDate, rule.StartTime, rule.EndTime,
		rule.Period, rule.DayType, rule.PriceCents, rule.Priority, rule.ID)
	return err
}

// DeleteByIDAndOwner removes a rule when the caller owns the
// underlying turf.  Sentinels mirror GetByIDForOwner.
func (r *PriceRuleRepo) DeleteByIDAndOwner(ctx context.Context, ruleID, ownerID uint64) error {
	if _, err := r.GetByIDForOwner(ctx, ruleID, ownerID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM price_rules WHERE id = ?", ruleID)
	return err
}
