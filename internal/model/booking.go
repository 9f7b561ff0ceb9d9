package model

import "time"

// Booking status values.  A booking starts PENDING and is moved to
// CONFIRMED by payment, CANCELLED by the user or the expiry sweep,
// and COMPLETED after the play date passes.  BLOCKED marks a manual
// block placed by the turf owner; it occupies slots exactly like a
// paying booking but has no customer or payment attached.
const (
    BookingPending   = "PENDING"
    BookingConfirmed = "CONFIRMED"
    BookingCancelled = "CANCELLED"
    BookingCompleted = "COMPLETED"
    BookingBlocked   = "BLOCKED"
)

// Payment status values tracked alongside the booking status.
const (
    PaymentPending         = "PENDING"
    PaymentPaid            = "PAID"
    PaymentFailed          = "FAILED"
    PaymentRefundInitiated = "REFUND_INITIATED"
)

// Booking records a reservation of one or more catalog slots on a
// turf for a single play date.  The slots taken by the booking are
// stored in the booking_slots table together with the price each
// slot resolved to at confirmation time; AmountCents is their sum.
// Bookings are never physically deleted; cancellation and
// completion are status transitions so that history survives.
//
// Fields:
//  ID            – primary key identifier.
//  TurfID        – turf being booked.
//  Sport         – sport being played (nil on whole-turf manual blocks).
//  PlayDate      – calendar date of play ("YYYY-MM-DD").
//  UserID        – customer who booked (nil on manual blocks).
//  AmountCents   – total price in cents across all booked slots.
//  Status        – booking lifecycle state.
//  PaymentStatus – payment lifecycle state.
//  PaymentRef    – external gateway charge reference, if any.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
    ID            uint64    // bookings.id
    TurfID        uint64    // bookings.turf_id
    Sport         *string   // bookings.sport (nullable)
    PlayDate      string    // bookings.play_date
    UserID        *uint64   // bookings.user_id (nullable)
    AmountCents   uint32    // bookings.amount_cents
    Status        string    // bookings.status
    PaymentStatus string    // bookings.payment_status
    PaymentRef    *string   // bookings.payment_ref (nullable)
    CreatedAt     time.Time // bookings.created_at
    UpdatedAt     time.Time // bookings.updated_at
}

// BookingSlot links a booking to one catalog slot it occupies and
// pins the price the slot resolved to when the booking was made.
// Later rule edits therefore never change what a customer was
// charged.
//
// Fields:
//  ID         – primary key identifier.
//  BookingID  – reference to the booking.
//  SlotID     – catalog slot occupied.
//  PriceCents – resolved price for this slot at booking time.
type BookingSlot struct {
    ID         uint64 // booking_slots.id
    BookingID  uint64 // booking_slots.booking_id
    SlotID     uint64 // booking_slots.slot_id
    PriceCents uint32 // booking_slots.price_cents
}
