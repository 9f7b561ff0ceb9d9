package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/turftown/turf-booking/internal/model"
)

// BookingRepo provides persistence for bookings and their slot sets.
// A booking groups one or more catalog slots for a turf on a single
// play date; manual blocks placed by owners are bookings with status
// BLOCKED and no customer attached.  Slot rows live in the
// booking_slots table together with the price each slot resolved to
// at booking time.  All timestamp fields are assumed to be stored in
// UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle for callers that need to combine
// booking writes with other repositories in one transaction.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// occupyingStatuses lists the booking states that keep slots
// unavailable.  CANCELLED and COMPLETED bookings release their slots.
const occupyingStatuses = `'PENDING','CONFIRMED','BLOCKED'`

// OccupiedSlotIDs returns the slot-id set of every occupying booking
// for (turf, date), one inner slice per booking.  When sport is
// non-empty only bookings for that sport are considered, plus rows
// stored without a sport (whole-turf manual blocks occupy every
// sport).  The availability resolver flattens the result.
func (r *BookingRepo) OccupiedSlotIDs(ctx context.Context, turfID uint64, date, sport string) ([][]uint64, error) {
	q := `SELECT b.id, bs.slot_id
	      FROM bookings b
	      JOIN booking_slots bs ON bs.booking_id = b.id
	      WHERE b.turf_id = ? AND b.play_date = ? AND b.status IN (` + occupyingStatuses + `)`
	args := []interface{}{turfID, date}
	if sport != "" {
		q += " AND (b.sport IS NULL OR b.sport = ?)"
		args = append(args, sport)
	}
	q += " ORDER BY b.id, bs.slot_id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return groupSlotIDs(rows)
}

// occupiedSlotSetTx is the transactional variant used inside the
// booking insert.  FOR UPDATE locks the matching booking_slots rows
// so that two concurrent inserts for the same slots serialize: the
// second transaction observes the first one's rows and fails with a
// conflict instead of double-booking.
func (r *BookingRepo) occupiedSlotSetTx(ctx context.Context, tx *sql.Tx, turfID uint64, date, sport string) (map[uint64]struct{}, error) {
	q := `SELECT bs.slot_id
	      FROM bookings b
	      JOIN booking_slots bs ON bs.booking_id = b.id
	      WHERE b.turf_id = ? AND b.play_date = ? AND b.status IN (` + occupyingStatuses + `)`
	args := []interface{}{turfID, date}
	if sport != "" {
		q += " AND (b.sport IS NULL OR b.sport = ?)"
		args = append(args, sport)
	}
	q += " FOR UPDATE"
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	occupied := make(map[uint64]struct{})
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		occupied[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return occupied, nil
}

// groupSlotIDs collects (booking_id, slot_id) rows ordered by booking
// into per-booking slices.
func groupSlotIDs(rows *sql.Rows) ([][]uint64, error) {
	var (
		out     [][]uint64
		current []uint64
		lastID  uint64
	)
	for rows.Next() {
		var bookingID, slotID uint64
		if err := rows.Scan(&bookingID, &slotID); err != nil {
			return nil, err
		}
		if bookingID != lastID && current != nil {
			out = append(out, current)
			current = nil
		}
		lastID = bookingID
		current = append(current, slotID)
	}
	if current != nil {
		out = append(out, current)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWithSlots inserts a booking and its slot rows atomically.
// The availability check runs INSIDE the same transaction as the
// insert with the occupied rows locked, which closes the
// check-then-write race between two concurrent booking attempts.  On
// conflict it returns ErrSlotTaken together with the slot ids that
// were already occupied so handlers can report them.  On success the
// booking's ID and timestamps are populated.
func (r *BookingRepo) CreateWithSlots(ctx context.Context, b *model.Booking, slots []model.BookingSlot) ([]uint64, error) {
	if len(slots) == 0 {
		return nil, errors.New("booking requires at least one slot")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	sport := ""
	if b.Sport != nil {
		sport = *b.Sport
	}
	occupied, err := r.occupiedSlotSetTx(ctx, tx, b.TurfID, b.PlayDate, sport)
	if err != nil {
		return nil, err
	}
	var taken []uint64
	for _, s := range slots {
		if _, ok := occupied[s.SlotID]; ok {
			taken = append(taken, s.SlotID)
		}
	}
	if len(taken) > 0 {
		return taken, ErrSlotTaken
	}
	const qBooking = `INSERT INTO bookings (turf_id, sport, play_date, user_id, amount_cents, status, payment_status, payment_ref)
	                  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, qBooking, b.TurfID, b.Sport, b.PlayDate, b.UserID, b.AmountCents, b.Status, b.PaymentStatus, b.PaymentRef)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b.ID = uint64(id)
	qSlots := `INSERT INTO booking_slots (booking_id, slot_id, price_cents) VALUES `
	args := make([]interface{}, 0, len(slots)*3)
	for i, s := range slots {
		if i > 0 {
			qSlots += ","
		}
		qSlots += "(?, ?, ?)"
		args = append(args, b.ID, s.SlotID, s.PriceCents)
	}
	if _, err := tx.ExecContext(ctx, qSlots, args...); err != nil {
		return nil, err
	}
	// Query back timestamps so callers receive a fully populated record.
	const qSel = `SELECT created_at, updated_at FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, qSel, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return nil, nil
}

// BookedSlot is one slot inside a BookingDetail, with the price it
// resolved to at booking time.
type BookedSlot struct {
	SlotID     uint64 `json:"slot_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	PriceCents uint32 `json:"price_cents"`
}

// BookingDetail encapsulates a booking along with related turf
// information and the slots taken.  It is returned by the listing
// methods for display to customers, owners and admins.
type BookingDetail struct {
	ID            uint64       `json:"id"`
	TurfID        uint64       `json:"turf_id"`
	TurfName      string       `json:"turf_name"`
	Sport         *string      `json:"sport,omitempty"`
	PlayDate      string       `json:"play_date"`
	UserID        *uint64      `json:"user_id,omitempty"`
	AmountCents   uint32       `json:"amount_cents"`
	Status        string       `json:"status"`
	PaymentStatus string       `json:"payment_status"`
	PaymentRef    *string      `json:"payment_ref,omitempty"`
	CreatedAt     string       `json:"created_at"`
	Slots         []BookedSlot `json:"slots"`
}

const bookingDetailColumns = `b.id, b.turf_id, t.name, b.sport, b.play_date, b.user_id,
	          b.amount_cents, b.status, b.payment_status, b.payment_ref, b.created_at`

// scanBookingDetail reads one joined bookings row.
func scanBookingDetail(scan func(dest ...interface{}) error) (BookingDetail, error) {
	var (
		d         BookingDetail
		sport     sql.NullString
		userID    sql.NullInt64
		payRef    sql.NullString
		createdAt time.Time
	)
	err := scan(&d.ID, &d.TurfID, &d.TurfName, &sport, &d.PlayDate, &userID,
		&d.AmountCents, &d.Status, &d.PaymentStatus, &payRef, &createdAt)
	if err != nil {
		return d, err
	}
	if sport.Valid {
		v := sport.String
		d.Sport = &v
	}
	if userID.Valid {
		v := uint64(userID.Int64)
		d.UserID = &v
	}
	if payRef.Valid {
		v := payRef.String
		d.PaymentRef = &v
	}
	d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	d.Slots = []BookedSlot{}
	return d, nil
}

// attachSlots populates the Slots field of every detail in one query,
// using an IN () list over the booking ids.
func (r *BookingRepo) attachSlots(ctx context.Context, details []BookingDetail) error {
	if len(details) == 0 {
		return nil
	}
	index := make(map[uint64]int, len(details))
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for i, d := range details {
		index[d.ID] = i
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	q := `SELECT bs.booking_id, bs.slot_id, ts.start_time, ts.end_time, bs.price_cents
	      FROM booking_slots bs
	      JOIN time_slots ts ON ts.id = bs.slot_id
	      WHERE bs.booking_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY bs.booking_id, ts.start_time`
	rows, err := r.db.QueryContext(ctx, q, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			bookingID uint64
			slot      BookedSlot
		)
		if err := rows.Scan(&bookingID, &slot.SlotID, &slot.StartTime, &slot.EndTime, &slot.PriceCents); err != nil {
			return err
		}
		i, ok := index[bookingID]
		if !ok {
			continue
		}
		details[i].Slots = append(details[i].Slots, slot)
	}
	return rows.Err()
}

// GetByIDForUser returns a single booking for the given user.  When
// no booking with the specified ID exists for the user,
// ErrBookingNotFound is returned.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
	const q = `SELECT ` + bookingDetailColumns + `
	           FROM bookings b
	           JOIN turfs t ON t.id = b.turf_id
	           WHERE b.id = ? AND b.user_id = ?`
	d, err := scanBookingDetail(r.db.QueryRowContext(ctx, q, bookingID, userID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	details := []BookingDetail{d}
	if err := r.attachSlots(ctx, details); err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListByUser returns all bookings for the given user, newest first,
// with their slots populated in a single follow-up query.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT ` + bookingDetailColumns + `
	           FROM bookings b
	           JOIN turfs t ON t.id = b.turf_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC, b.id DESC`
	return r.listDetails(ctx, q, userID)
}

// ListByTurfForOwner returns all bookings (including manual blocks)
// for a turf on one date when accessed by its owner.  It verifies
// ownership first; ErrForbidden is returned when the turf belongs to
// someone else and ErrTurfNotFound when it does not exist.
func (r *BookingRepo) ListByTurfForOwner(ctx context.Context, turfID, ownerID uint64, date string) ([]BookingDetail, error) {
	const checkQ = `SELECT owner_id FROM turfs WHERE id = ?`
	var actualOwnerID uint64
	if err := r.db.QueryRowContext(ctx, checkQ, turfID).Scan(&actualOwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTurfNotFound
		}
		return nil, err
	}
	if actualOwnerID != ownerID {
		return nil, ErrForbidden
	}
	const q = `SELECT ` + bookingDetailColumns + `
	           FROM bookings b
	           JOIN turfs t ON t.id = b.turf_id
	           WHERE b.turf_id = ? AND b.play_date = ?
	           ORDER BY b.created_at DESC, b.id DESC`
	return r.listDetails(ctx, q, turfID, date)
}

// ListAllForDate returns bookings across every turf for one date; the
// admin panel uses it.  An empty date lists everything, newest first.
func (r *BookingRepo) ListAllForDate(ctx context.Context, date string) ([]BookingDetail, error) {
	q := `SELECT ` + bookingDetailColumns + `
	      FROM bookings b
	      JOIN turfs t ON t.id = b.turf_id`
	args := []interface{}{}
	if date != "" {
		q += " WHERE b.play_date = ?"
		args = append(args, date)
	}
	q += " ORDER BY b.created_at DESC, b.id DESC"
	return r.listDetails(ctx, q, args...)
}

func (r *BookingRepo) listDetails(ctx context.Context, q string, args ...interface{}) ([]BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachSlots(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// GetForUpdate fetches the raw booking row for status transitions.
// ErrBookingNotFound is returned when no row matches.
func (r *BookingRepo) GetForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT id, turf_id, sport, play_date, user_id, amount_cents, status, payment_status, payment_ref, created_at, updated_at
	           FROM bookings WHERE id = ?`
	var (
		b      model.Booking
		sport  sql.NullString
		userID sql.NullInt64
		payRef sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(&b.ID, &b.TurfID, &sport, &b.PlayDate, &userID,
		&b.AmountCents, &b.Status, &b.PaymentStatus, &payRef, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if sport.Valid {
		v := sport.String
		b.Sport = &v
	}
	if userID.Valid {
		v := uint64(userID.Int64)
		b.UserID = &v
	}
	if payRef.Valid {
		v := payRef.String
		b.PaymentRef = &v
	}
	return &b, nil
}

// GetByPaymentRef locates the booking a gateway charge belongs to.
// The payment webhook correlates events through this lookup.
func (r *BookingRepo) GetByPaymentRef(ctx context.Context, ref string) (*model.Booking, error) {
	const q = `SELECT id FROM bookings WHERE payment_ref = ? LIMIT 1`
	var id uint64
	if err := r.db.QueryRowContext(ctx, q, ref).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return r.GetForUpdate(ctx, id)
}

// UpdateStatus transitions the booking and/or payment status.  Nil
// fields are left untouched.  ErrBookingNotFound is returned when
// the booking does not exist.
func (r *BookingRepo) UpdateStatus(ctx context.Context, bookingID uint64, status, paymentStatus, paymentRef *string) error {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *status)
	}
	if paymentStatus != nil {
		sets = append(sets, "payment_status = ?")
		args = append(args, *paymentStatus)
	}
	if paymentRef != nil {
		sets = append(sets, "payment_ref = ?")
		args = append(args, *paymentRef)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, bookingID)
	q := "UPDATE bookings SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op
		// update; probe to tell them apart.
		var exists int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM bookings WHERE id = ?", bookingID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookingNotFound
			}
			return err
		}
	}
	return nil
}

// ReleaseBlockForOwner cancels a manual block when the caller owns
// the turf it sits on.  ErrBookingNotFound when the block does not
// exist or is not a block; ErrForbidden when the turf belongs to a
// different owner.
func (r *BookingRepo) ReleaseBlockForOwner(ctx context.Context, blockID, ownerID uint64) error {
	const q = `SELECT t.owner_id, b.status
	           FROM bookings b
	           JOIN turfs t ON t.id = b.turf_id
	           WHERE b.id = ?`
	var (
		actualOwnerID uint64
		status        string
	)
	if err := r.db.QueryRowContext(ctx, q, blockID).Scan(&actualOwnerID, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		return err
	}
	if actualOwnerID != ownerID {
		return ErrForbidden
	}
	if status != model.BookingBlocked {
		return ErrBookingNotFound
	}
	cancelled := model.BookingCancelled
	return r.UpdateStatus(ctx, blockID, &cancelled, nil, nil)
}

// ExpirePending cancels PENDING bookings created before the cutoff
// that never saw a payment.  It returns the ids it cancelled so the
// sweeper can log them.  Manual blocks are untouched (they are
// BLOCKED, not PENDING).
func (r *BookingRepo) ExpirePending(ctx context.Context, cutoff time.Time) ([]uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const sel = `SELECT id FROM bookings
	             WHERE status = 'PENDING' AND payment_status = 'PENDING' AND created_at < ?
	             FOR UPDATE`
	rows, err := tx.QueryContext(ctx, sel, cutoff)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(ids) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		committed = true
		return nil, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := "UPDATE bookings SET status = 'CANCELLED' WHERE id IN (" + strings.Join(placeholders, ",") + ")"
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return ids, nil
}

// CompletePast marks CONFIRMED bookings whose play date has passed as
// COMPLETED, releasing their slots from future availability checks
// (past dates are not bookable anyway; this keeps statuses truthful).
func (r *BookingRepo) CompletePast(ctx context.Context, today string) (int64, error) {
	const q = `UPDATE bookings SET status = 'COMPLETED'
	           WHERE status = 'CONFIRMED' AND play_date < ?`
	res, err := r.db.ExecContext(ctx, q, today)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
