package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/turftown/turf-booking/internal/repository"
)

// AdminHandler bundles repositories for platform administration:
// verifying new turfs and auditing bookings across the platform.
type AdminHandler struct {
	TurfRepo    *repository.TurfRepo
	BookingRepo *repository.BookingRepo
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil.
func NewAdminHandler(turfRepo *repository.TurfRepo, bookingRepo *repository.BookingRepo) *AdminHandler {
	if turfRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{TurfRepo: turfRepo, BookingRepo: bookingRepo}
}

// ListTurfs handles GET /v1/admin/turfs.  With ?verified=false it
// returns the review queue (oldest first); otherwise all verified
// turfs.
func (h *AdminHandler) ListTurfs(c echo.Context) error {
	ctx := c.Request().Context()
	if strings.EqualFold(c.QueryParam("verified"), "false") {
		turfs, err := h.TurfRepo.ListUnverified(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": turfs})
	}
	turfs, err := h.TurfRepo.ListVerified(ctx, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": turfs})
}

// VerifyTurf handles POST /v1/admin/turfs/:id/verify.  Verification
// makes the turf publicly browsable and bookable.  An already
// verified turf answers 409 so repeated clicks are visible.
func (h *AdminHandler) VerifyTurf(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.TurfRepo.Verify(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "turf already verified"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to verify turf"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/admin/bookings?date=.  It lists
// bookings across every turf, optionally narrowed to one play date.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	date := ""
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, _, ok := parsePlayDate(raw)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		date = d
	}
	details, err := h.BookingRepo.ListAllForDate(c.Request().Context(), date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}
