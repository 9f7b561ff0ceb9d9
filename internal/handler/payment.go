package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/turftown/turf-booking/internal/model"
	"github.com/turftown/turf-booking/internal/payment"
	"github.com/turftown/turf-booking/internal/repository"
	queue_publisher "github.com/turftown/turf-booking/internal/service"

	q "github.com/turftown/turf-booking/internal/queue"
)

// PaymentHandler drives the checkout flow: creating gateway charges
// for pending bookings and processing the gateway's webhook.
type PaymentHandler struct {
	Gateway     *payment.Gateway
	BookingRepo *repository.BookingRepo
	TurfRepo    *repository.TurfRepo
	Currency    string // ISO currency code charges are created in
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(gw *payment.Gateway, bookingRepo *repository.BookingRepo, turfRepo *repository.TurfRepo, currency string) *PaymentHandler {
	if gw == nil || bookingRepo == nil || turfRepo == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Gateway: gw, BookingRepo: bookingRepo, TurfRepo: turfRepo, Currency: currency}
}

// Checkout handles POST /v1/bookings/:id/checkout.  The client sends
// a card token or a source id obtained from the gateway's frontend
// SDK; the charge amount always comes from the stored booking, never
// from the request.  The charge id is persisted as the booking's
// payment_ref before returning, so the webhook can correlate even if
// the client disappears.
func (h *PaymentHandler) Checkout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		CardToken string `json:"card_token"`
		SourceID  string `json:"source_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.CardToken == "" && body.SourceID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "card_token or source_id required"})
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
	if b.Status != model.BookingPending || b.PaymentStatus != model.PaymentPending {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not payable"})
	}

	res, err := h.Gateway.ChargeBooking(b.ID, b.AmountCents, h.Currency, body.CardToken, body.SourceID)
	if err != nil {
		log.Printf("checkout: charge failed for booking=%d: %v", b.ID, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment gateway error"})
	}
	if err := h.BookingRepo.UpdateStatus(ctx, b.ID, nil, nil, &res.ChargeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record charge"})
	}
	// Card charges can settle synchronously; offsite sources settle via
	// the webhook after the customer authorizes.
	if res.Status == "successful" {
		if err := h.confirmBooking(c, b, res.ChargeID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm booking"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"charge_id":     res.ChargeID,
		"status":        res.Status,
		"authorize_uri": res.AuthorizeURI,
		"amount_cents":  b.AmountCents,
	})
}

// Webhook handles POST /v1/payments/webhook.  Only the event id is
// read from the request body; the event itself is re-retrieved from
// the gateway, so forged payloads die on the authenticated lookup.
// Authentic but unprocessable events are answered 200 to stop the
// gateway from retrying forever; the problem is logged instead.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := c.Bind(&body); err != nil || body.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	ch, err := h.Gateway.WebhookCharge(body.ID)
	if err != nil {
		// Lookup failures mean we could not authenticate the event.
		log.Printf("webhook: event %s lookup failed: %v", body.ID, err)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown event"})
	}
	if ch == nil {
		// Event key we do not process.
		return c.NoContent(http.StatusOK)
	}
	bookingID, ok := payment.BookingIDFromCharge(ch)
	if !ok {
		log.Printf("webhook: charge %s carries no booking id", ch.ID)
		return c.NoContent(http.StatusOK)
	}
	ctx := c.Request().Context()
	b, err := h.BookingRepo.GetForUpdate(ctx, bookingID)
	if err != nil {
		log.Printf("webhook: booking %d not found for charge %s: %v", bookingID, ch.ID, err)
		return c.NoContent(http.StatusOK)
	}
	// Replayed events for settled bookings are no-ops.
	if b.PaymentStatus == model.PaymentPaid || b.Status == model.BookingCancelled {
		return c.NoContent(http.StatusOK)
	}
	if string(ch.Status) == "successful" {
		if err := h.confirmBooking(c, b, ch.ID); err != nil {
			log.Printf("webhook: confirm booking %d failed: %v", b.ID, err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm booking"})
		}
		return c.NoContent(http.StatusOK)
	}
	// Failed or expired charge: keep the booking PENDING for another
	// attempt but record the failed payment.
	ps := model.PaymentFailed
	if err := h.BookingRepo.UpdateStatus(ctx, b.ID, nil, &ps, &ch.ID); err != nil {
		log.Printf("webhook: record failure for booking %d failed: %v", b.ID, err)
	}
	return c.NoContent(http.StatusOK)
}

// confirmBooking flips a paid booking to CONFIRMED and publishes the
// booking.confirmed event with the slot times attached.
func (h *PaymentHandler) confirmBooking(c echo.Context, b *model.Booking, chargeID string) error {
	ctx := c.Request().Context()
	status := model.BookingConfirmed
	ps := model.PaymentPaid
	if err := h.BookingRepo.UpdateStatus(ctx, b.ID, &status, &ps, &chargeID); err != nil {
		return err
	}
	turfName := ""
	if t, err := h.TurfRepo.GetByID(ctx, b.TurfID); err == nil {
		turfName = t.Name
	}
	sport := ""
	if b.Sport != nil {
		sport = *b.Sport
	}
	var userID uint64
	if b.UserID != nil {
		userID = *b.UserID
	}
	slotTimes := make([]string, 0)
	if b.UserID != nil {
		if detail, err := h.BookingRepo.GetByIDForUser(ctx, b.ID, *b.UserID); err == nil {
			for _, s := range detail.Slots {
				slotTimes = append(slotTimes, s.StartTime+"-"+s.EndTime)
			}
		}
	}
	// Confirmation events are best-effort; the booking is already safe
	// in the database.
	_ = queue_publisher.PublishBookingConfirmed(ctx, q.BookingConfirmedEvent{
		BookingID:        b.ID,
		UserID:           userID,
		TurfID:           b.TurfID,
		TurfName:         turfName,
		Sport:            sport,
		PlayDate:         b.PlayDate,
		SlotTimes:        slotTimes,
		TotalAmountCents: b.AmountCents,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}
