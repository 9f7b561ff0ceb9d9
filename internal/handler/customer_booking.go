package handler

import (
	"errors"   // for errors.Is comparisons
	"net/http" // HTTP status codes
	"time"     // working with timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/turftown/turf-booking/internal/model"
	"github.com/turftown/turf-booking/internal/pricing"
	"github.com/turftown/turf-booking/internal/repository"
	queue_publisher "github.com/turftown/turf-booking/internal/service"

	q "github.com/turftown/turf-booking/internal/queue"
)

// CustomerHandler groups repositories required to create, list and
// cancel bookings on behalf of customers.  All methods assume that JWT
// authentication and role validation has already been performed by
// middleware.  Methods may return 401 Unauthorized if the user ID
// cannot be extracted from the context.
type CustomerHandler struct {
	TurfRepo    *repository.TurfRepo      // access to turfs for validation
	SlotRepo    *repository.TimeSlotRepo  // access to the slot catalog
	RuleRepo    *repository.PriceRuleRepo // access to price rules for amount resolution
	BookingRepo *repository.BookingRepo   // access to bookings and booking_slots
}

// NewCustomerHandler constructs a new CustomerHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewCustomerHandler(turfRepo *repository.TurfRepo, slotRepo *repository.TimeSlotRepo, ruleRepo *repository.PriceRuleRepo, bookingRepo *repository.BookingRepo) *CustomerHandler {
	if turfRepo == nil || slotRepo == nil || ruleRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{
		TurfRepo:    turfRepo,
		SlotRepo:    slotRepo,
		RuleRepo:    ruleRepo,
		BookingRepo: bookingRepo,
	}
}

// CreateBooking handles POST /v1/bookings.  The request body carries
// {turf_id, sport, date, slot_ids}; prices are never accepted from
// the client.  Each requested slot is priced through the rule engine
// against the booking date and the total becomes the booking amount.
// The availability re-check runs inside the insert transaction, so a
// slot grabbed by a concurrent request surfaces here as 409 together
// with the conflicting slot ids.  The booking starts PENDING and must
// be paid within the expiry window or the sweep cancels it.
func (h *CustomerHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		TurfID  uint64   `json:"turf_id"`
		Sport   string   `json:"sport"`
		Date    string   `json:"date"`
		SlotIDs []uint64 `json:"slot_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TurfID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "turf_id is required"})
	}
	sport := normalizeSport(body.Sport)
	if sport == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sport is required"})
	}
	date, playDate, ok := parsePlayDate(body.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	today := time.Now().UTC().Format("2006-01-02")
	if date < today {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is in the past"})
	}
	slotIDs := dedupeIDs(body.SlotIDs)
	if len(slotIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_ids is required"})
	}

	ctx := c.Request().Context()
	turf, err := h.TurfRepo.GetByID(ctx, body.TurfID)
	if err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !turf.IsVerified {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
	}
	offers, err := h.TurfRepo.OffersSport(ctx, turf.ID, sport)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !offers {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "turf does not offer this sport"})
	}
	slots, err := h.SlotRepo.GetByIDs(ctx, slotIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(slots) != len(slotIDs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown slot ids"})
	}

	// Price every slot server-side.  The rule list comes back in
	// insertion order so priority ties resolve the same way here as on
	// the grid the customer saw.
	rules, err := h.RuleRepo.ListForTurfSport(ctx, turf.ID, sport)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	bookingSlots := make([]model.BookingSlot, 0, len(slots))
	var total uint32
	for _, s := range slots {
		price := pricing.ResolvePrice(s, playDate, rules, turf.BasePriceCents)
		total += price
		bookingSlots = append(bookingSlots, model.BookingSlot{SlotID: s.ID, PriceCents: price})
	}

	booking := &model.Booking{
		TurfID:        turf.ID,
		Sport:         &sport,
		PlayDate:      date,
		UserID:        &userID,
		AmountCents:   total,
		Status:        model.BookingPending,
		PaymentStatus: model.PaymentPending,
	}
	taken, err := h.BookingRepo.CreateWithSlots(ctx, booking, bookingSlots)
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "some slots are already booked",
				"unavailable": taken,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":   booking.ID,
		"amount_cents": booking.AmountCents,
		"status":       booking.Status,
	})
}

// ListBookings handles GET /v1/bookings.  It returns all bookings
// created by the current user along with turf and slot details.  When
// no bookings exist, it returns an empty array.
func (h *CustomerHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	details, err := h.BookingRepo.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": details,
	})
}

// GetBooking handles GET /v1/bookings/:id.  It returns the details of
// a single booking for the authenticated user.  When the booking does
// not exist or belongs to someone else, it responds with 404 so ids
// cannot be probed.
func (h *CustomerHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	detail, err := h.BookingRepo.GetByIDForUser(ctx, bookingID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item": detail,
	})
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  A customer can
// cancel a PENDING or CONFIRMED booking up to the play date.  A paid
// booking moves its payment status to REFUND_INITIATED; the refund
// itself is settled out of band with the gateway.  Returns 404 when
// the booking is missing or owned by another user, and 409 when the
// booking is already finished.
func (h *CustomerHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	b, err := h.BookingRepo.GetForUpdate(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if b.UserID == nil || *b.UserID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	if b.Status != model.BookingPending && b.Status != model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking cannot be cancelled"})
	}
	today := time.Now().UTC().Format("2006-01-02")
	if b.PlayDate < today {
		return c.JSON(http.StatusConflict, echo.Map{"error": "play date has passed"})
	}
	status := model.BookingCancelled
	var paymentStatus *string
	if b.PaymentStatus == model.PaymentPaid {
		ps := model.PaymentRefundInitiated
		paymentStatus = &ps
	}
	if err := h.BookingRepo.UpdateStatus(ctx, b.ID, &status, paymentStatus, nil); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
	}
	// Best-effort event; booking state is already persisted.
	_ = queue_publisher.PublishBookingCancelled(ctx, q.BookingCancelledEvent{
		BookingID:   b.ID,
		TurfID:      b.TurfID,
		PlayDate:    b.PlayDate,
		Reason:      "user_cancel",
		CancelledAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.NoContent(http.StatusNoContent)
}
