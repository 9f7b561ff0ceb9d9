// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API. These routes allow
// unauthenticated users to browse verified turfs and their day grids without
// requiring authentication. Sensitive fields (owner IDs, timestamps, etc.) are
// filtered from responses.

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/turftown/turf-booking/internal/model"
	"github.com/turftown/turf-booking/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
// It produces sanitized responses suitable for public consumption.
type PublicHandler struct {
	TurfRepo    *repository.TurfRepo      // provides access to turf data
	SlotRepo    *repository.TimeSlotRepo  // provides access to the slot catalog
	RuleRepo    *repository.PriceRuleRepo // provides access to price rules
	BookingRepo *repository.BookingRepo   // provides access to occupied slots
}

// PublicTurf represents a turf exposed via the public API. It contains
// only safe fields.
type PublicTurf struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Description    *string  `json:"description,omitempty"`
	BasePriceCents uint32   `json:"base_price_cents"`
	Sports         []string `json:"sports"`
}

// GetPublicTurfs returns all verified turfs.  An optional ?sport=
// query restricts the list to turfs offering that sport.  Response
// JSON contains an "items" array of PublicTurf.
func (h *PublicHandler) GetPublicTurfs(c echo.Context) error {
	ctx := c.Request().Context()
	sport := normalizeSport(c.QueryParam("sport"))
	turfs, err := h.TurfRepo.ListVerified(ctx, sport)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicTurf, 0, len(turfs))
	for _, t := range turfs {
		sports, err := h.TurfRepo.Sports(ctx, t.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		out = append(out, publicTurfFromModel(t, sports))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicTurf returns a single verified turf with its sports set.
func (h *PublicHandler) GetPublicTurf(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	t, err := h.TurfRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTurfNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	// Unverified turfs are invisible to the public; treat as missing so
	// ids cannot be probed.
	if !t.IsVerified {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
	}
	sports, err := h.TurfRepo.Sports(ctx, t.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, publicTurfFromModel(t, sports))
}

// GetPublicTurfGrid handles GET /v1/turfs/:id/grid?date=&sport=.  It
// returns the full slot catalog for the requested date with each slot
// tagged booked/free and priced through the rule engine, grouped by
// period.  The sport must be one the turf offers; whole-turf blocks
// count against every sport.
func (h *PublicHandler) GetPublicTurfGrid(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date, playDate, ok := parsePlayDate(c.QueryParam("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	sport := normalizeSport(c.QueryParam("sport"))
	if sport == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sport is required"})
	}
	t, err := h.TurfRepo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTurfNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !t.IsVerified {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
	}
	offers, err := h.TurfRepo.OffersSport(ctx, t.ID, sport)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !offers {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "turf does not offer this sport"})
	}
	grid, err := buildGrid(ctx, h.SlotRepo, h.RuleRepo, h.BookingRepo, t, date, playDate, sport)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, grid)
}

// publicTurfFromModel maps a turf row to its public shape.
func publicTurfFromModel(t *model.Turf, sports []string) PublicTurf {
	return PublicTurf{
		ID:             t.ID,
		Name:           t.Name,
		Location:       t.Location,
		Description:    t.Description,
		BasePriceCents: t.BasePriceCents,
		Sports:         sports,
	}
}
