package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel comparisons
	"net/http" // HTTP status codes
	"strings"  // strings provides trimming helpers

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/turftown/turf-booking/internal/model"
	"github.com/turftown/turf-booking/internal/repository" // repository holds data access layer
)

// OwnerHandler bundles repositories for owners to manage their turfs,
// pricing rules, bookings and manual blocks.
type OwnerHandler struct {
	TurfRepo    *repository.TurfRepo      // turf persistence
	SlotRepo    *repository.TimeSlotRepo  // slot catalog reads
	RuleRepo    *repository.PriceRuleRepo // price rule persistence
	BookingRepo *repository.BookingRepo   // booking and block persistence
}

// NewOwnerHandler constructs a new OwnerHandler and panics if any dependency is nil.
func NewOwnerHandler(turfRepo *repository.TurfRepo, slotRepo *repository.TimeSlotRepo, ruleRepo *repository.PriceRuleRepo, bookingRepo *repository.BookingRepo) *OwnerHandler {
	if turfRepo == nil || slotRepo == nil || ruleRepo == nil || bookingRepo == nil {
		panic("nil repository passed to NewOwnerHandler")
	}
	return &OwnerHandler{
		TurfRepo:    turfRepo,
		SlotRepo:    slotRepo,
		RuleRepo:    ruleRepo,
		BookingRepo: bookingRepo,
	}
}

type turfReq struct {
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Description    *string  `json:"description"`
	BasePriceCents uint32   `json:"base_price_cents"`
	Sports         []string `json:"sports"`
}

// CreateTurf handles POST /v1/owner/turfs.  New turfs start
// unverified and stay invisible to the public until an admin approves
// them; the owner can already configure rules and blocks meanwhile.
func (h *OwnerHandler) CreateTurf(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body turfReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Location = strings.TrimSpace(body.Location)
	if body.Name == "" || body.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and location are required"})
	}
	if body.BasePriceCents == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "base_price_cents must be positive"})
	}
	if len(body.Sports) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one sport is required"})
	}
	t := &model.Turf{
		OwnerID:        ownerID,
		Name:           body.Name,
		Location:       body.Location,
		Description:    body.Description,
		BasePriceCents: body.BasePriceCents,
	}
	if err := h.TurfRepo.Create(c.Request().Context(), t, body.Sports); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create turf"})
	}
	sports, err := h.TurfRepo.Sports(c.Request().Context(), t.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": t, "sports": sports})
}

// ListMyTurfs handles GET /v1/owner/turfs, returning every turf the
// caller owns regardless of verification state.
func (h *OwnerHandler) ListMyTurfs(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	turfs, err := h.TurfRepo.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": turfs})
}

// GetMyTurf handles GET /v1/owner/turfs/:id with the sports set attached.
func (h *OwnerHandler) GetMyTurf(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	t, err := h.TurfRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	sports, err := h.TurfRepo.Sports(ctx, t.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": t, "sports": sports})
}

// UpdateTurf handles PATCH /v1/owner/turfs/:id.  Only the caller's
// own turf can be updated; verification state is admin territory and
// never changes here.
func (h *OwnerHandler) UpdateTurf(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	t, err := h.TurfRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var body turfReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if name := strings.TrimSpace(body.Name); name != "" {
		t.Name = name
	}
	if loc := strings.TrimSpace(body.Location); loc != "" {
		t.Location = loc
	}
	if body.Description != nil {
		t.Description = body.Description
	}
	if body.BasePriceCents > 0 {
		t.BasePriceCents = body.BasePriceCents
	}
	if err := h.TurfRepo.UpdateByIDAndOwner(ctx, t, ownerID, body.Sports); err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update turf"})
	}
	sports, err := h.TurfRepo.Sports(ctx, t.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": t, "sports": sports})
}

// GetOwnerTurfGrid handles GET /v1/owner/turfs/:id/grid?date=&sport=.
// It serves the same grid customers see, so the owner's view of
// availability and pricing can never drift from the public one.
// Unverified turfs are visible to their owner here.
func (h *OwnerHandler) GetOwnerTurfGrid(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
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
	ctx := c.Request().Context()
	t, err := h.TurfRepo.GetByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
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
