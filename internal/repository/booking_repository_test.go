package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turftown/turf-booking/internal/model"
)

// The expected SQL below is whitespace-collapsed; sqlmock's default
// matcher collapses the actual query the same way before matching.
const (
	lockedSlotsSQL   = `SELECT bs.slot_id FROM bookings b JOIN booking_slots bs ON bs.booking_id = b.id WHERE b.turf_id = ? AND b.play_date = ? AND b.status IN ('PENDING','CONFIRMED','BLOCKED') AND (b.sport IS NULL OR b.sport = ?) FOR UPDATE`
	insertBookingSQL = `INSERT INTO bookings (turf_id, sport, play_date, user_id, amount_cents, status, payment_status, payment_ref) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	expireSelectSQL  = `SELECT id FROM bookings WHERE status = 'PENDING' AND payment_status = 'PENDING' AND created_at < ? FOR UPDATE`
)

func newBookingRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func pendingBooking(sport string) *model.Booking {
	uid := uint64(12)
	return &model.Booking{
		TurfID:        3,
		Sport:         &sport,
		PlayDate:      "2026-09-10",
		UserID:        &uid,
		AmountCents:   220000,
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentPending,
	}
}

func TestCreateWithSlotsConflictReportsTakenIDs(t *testing.T) {
	repo, mock := newBookingRepo(t)

	// Slots 37 and 38 are already held by another booking; requesting
	// 37 and 40 must fail and name 37, and nothing may be inserted.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockedSlotsSQL)).
		WithArgs(3, "2026-09-10", "cricket").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id"}).AddRow(37).AddRow(38))
	mock.ExpectRollback()

	taken, err := repo.CreateWithSlots(context.Background(), pendingBooking("cricket"), []model.BookingSlot{
		{SlotID: 37, PriceCents: 120000},
		{SlotID: 40, PriceCents: 100000},
	})
	require.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, []uint64{37}, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithSlotsInsertsBookingAndSlots(t *testing.T) {
	repo, mock := newBookingRepo(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockedSlotsSQL)).
		WithArgs(3, "2026-09-10", "cricket").
		WillReturnRows(sqlmock.NewRows([]string{"slot_id"}))
	mock.ExpectExec(regexp.QuoteMeta(insertBookingSQL)).
		WithArgs(3, "cricket", "2026-09-10", 12, 220000, model.BookingPending, model.PaymentPending, nil).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO booking_slots (booking_id, slot_id, price_cents) VALUES (?, ?, ?),(?, ?, ?)`)).
		WithArgs(9, 37, 120000, 9, 38, 100000).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at, updated_at FROM bookings WHERE id = ?`)).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	b := pendingBooking("cricket")
	taken, err := repo.CreateWithSlots(context.Background(), b, []model.BookingSlot{
		{SlotID: 37, PriceCents: 120000},
		{SlotID: 38, PriceCents: 100000},
	})
	require.NoError(t, err)
	assert.Nil(t, taken)
	assert.Equal(t, uint64(9), b.ID)
	assert.Equal(t, now, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithSlotsRequiresSlots(t *testing.T) {
	repo, _ := newBookingRepo(t)
	_, err := repo.CreateWithSlots(context.Background(), pendingBooking("cricket"), nil)
	assert.Error(t, err)
}

func TestExpirePendingCancelsOnlyRowsBeforeCutoff(t *testing.T) {
	repo, mock := newBookingRepo(t)
	cutoff := time.Date(2026, 9, 1, 9, 55, 0, 0, time.UTC)

	// The cutoff computed by the caller is the exact value the query
	// filters created_at against.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(expireSelectSQL)).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(4))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = 'CANCELLED' WHERE id IN (?,?)`)).
		WithArgs(3, 4).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	ids, err := repo.ExpirePending(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpirePendingNoMatchesSkipsUpdate(t *testing.T) {
	repo, mock := newBookingRepo(t)
	cutoff := time.Date(2026, 9, 1, 9, 55, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(expireSelectSQL)).
		WithArgs(cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	ids, err := repo.ExpirePending(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
