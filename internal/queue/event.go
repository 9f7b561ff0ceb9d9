// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking's payment succeeds and
// the booking transitions to CONFIRMED.  It contains enough information for
// downstream consumers to log, notify, or trigger analytics without querying
// the primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	UserID           uint64   `json:"user_id"`
	TurfID           uint64   `json:"turf_id"`
	TurfName         string   `json:"turf_name"`
	Sport            string   `json:"sport"`
	PlayDate         string   `json:"play_date"`
	SlotTimes        []string `json:"slots"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled, whether by
// the customer, by an owner releasing a block, or by the expiry sweep.
type BookingCancelledEvent struct {
	BookingID   uint64 `json:"booking_id"`
	TurfID      uint64 `json:"turf_id"`
	PlayDate    string `json:"play_date"`
	Reason      string `json:"reason"` // user_cancel | expired | block_released
	CancelledAt string `json:"cancelled_at"`
}
