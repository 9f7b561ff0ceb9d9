package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turftown/turf-booking/internal/model"
	"github.com/turftown/turf-booking/internal/repository"
	queue_publisher "github.com/turftown/turf-booking/internal/service"

	q "github.com/turftown/turf-booking/internal/queue"
)

// ListTurfBookings handles GET /v1/owner/turfs/:id/bookings?date=.
// It returns every booking, including manual blocks, on the owner's
// turf for one date.
func (h *OwnerHandler) ListTurfBookings(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	turfID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date, _, ok := parsePlayDate(c.QueryParam("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	details, err := h.BookingRepo.ListByTurfForOwner(c.Request().Context(), turfID, ownerID, date)
	if err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// CreateBlock handles POST /v1/owner/turfs/:id/blocks.  A block is a
// BLOCKED booking with no customer and no amount.  When sport is
// omitted the block covers the whole turf and counts against every
// sport; otherwise only the named sport's grid shows it as booked.
// Conflicts with existing bookings surface as 409, same as customer
// bookings, because a block cannot evict a paying customer.
func (h *OwnerHandler) CreateBlock(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	turfID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Sport   string   `json:"sport"`
		Date    string   `json:"date"`
		SlotIDs []uint64 `json:"slot_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, _, ok := parsePlayDate(body.Date)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	slotIDs := dedupeIDs(body.SlotIDs)
	if len(slotIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_ids is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.TurfRepo.GetByIDAndOwner(ctx, turfID, ownerID); err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var sportPtr *string
	sport := normalizeSport(body.Sport)
	if sport != "" {
		offers, err := h.TurfRepo.OffersSport(ctx, turfID, sport)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if !offers {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "turf does not offer this sport"})
		}
		sportPtr = &sport
	}
	slots, err := h.SlotRepo.GetByIDs(ctx, slotIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if len(slots) != len(slotIDs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown slot ids"})
	}
	bookingSlots := make([]model.BookingSlot, 0, len(slots))
	for _, s := range slots {
		bookingSlots = append(bookingSlots, model.BookingSlot{SlotID: s.ID, PriceCents: 0})
	}
	block := &model.Booking{
		TurfID:        turfID,
		Sport:         sportPtr,
		PlayDate:      date,
		AmountCents:   0,
		Status:        model.BookingBlocked,
		PaymentStatus: model.PaymentPending,
	}
	taken, err := h.BookingRepo.CreateWithSlots(ctx, block, bookingSlots)
	if err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "some slots are already booked",
				"unavailable": taken,
			})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create block"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"block_id": block.ID})
}

// ReleaseBlock handles DELETE /v1/owner/blocks/:id, freeing the
// blocked slots again.
func (h *OwnerHandler) ReleaseBlock(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	blockID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	b, err := h.BookingRepo.GetForUpdate(ctx, blockID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "block not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if err := h.BookingRepo.ReleaseBlockForOwner(ctx, blockID, ownerID); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "block not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to release block"})
	}
	_ = queue_publisher.PublishBookingCancelled(ctx, q.BookingCancelledEvent{
		BookingID:   b.ID,
		TurfID:      b.TurfID,
		PlayDate:    b.PlayDate,
		Reason:      "block_released",
		CancelledAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.NoContent(http.StatusNoContent)
}
