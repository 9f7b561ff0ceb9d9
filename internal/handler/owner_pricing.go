package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/turftown/turf-booking/internal/model"
	"github.com/turftown/turf-booking/internal/repository"
)

// ruleReq carries a price rule's matchers and outcome.  Every matcher
// is optional; a rule with no matchers applies to every slot of every
// day, which is a legitimate way to express a seasonal base override.
type ruleReq struct {
	Sport      string  `json:"sport"`
	SlotID     *uint64 `json:"slot_id"`
	DayOfWeek  *int    `json:"day_of_week"` // 0 = Sunday
	RuleDate   *string `json:"rule_date"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Period     *string `json:"period"`
	DayType    *string `json:"day_type"`
	PriceCents uint32  `json:"price_cents"`
	Priority   int     `json:"priority"`
}

// validateRuleBody normalizes and checks the matcher fields shared by
// create and update.  It returns an error message, empty when valid.
func validateRuleBody(body *ruleReq) string {
	if body.PriceCents == 0 {
		return "price_cents must be positive"
	}
	if body.DayOfWeek != nil && (*body.DayOfWeek < 0 || *body.DayOfWeek > 6) {
		return "day_of_week must be 0..6 (0 = Sunday)"
	}
	if body.RuleDate != nil {
		d, _, ok := parsePlayDate(*body.RuleDate)
		if !ok {
			return "rule_date must be YYYY-MM-DD"
		}
		body.RuleDate = &d
	}
	// A time window matcher needs both edges; a half-open window would
	// silently match nothing useful.
	if (body.StartTime == nil) != (body.EndTime == nil) {
		return "start_time and end_time must be set together"
	}
	if body.StartTime != nil {
		st, et := strings.TrimSpace(*body.StartTime), strings.TrimSpace(*body.EndTime)
		if len(st) != 5 || len(et) != 5 || st[2] != ':' || et[2] != ':' || st >= et {
			return "start_time/end_time must be HH:MM with start before end"
		}
		body.StartTime, body.EndTime = &st, &et
	}
	if body.Period != nil {
		p := strings.ToLower(strings.TrimSpace(*body.Period))
		if p != model.PeriodDay && p != model.PeriodEvening {
			return "period must be day or evening"
		}
		body.Period = &p
	}
	return ""
}

// ListRules handles GET /v1/owner/turfs/:id/rules, returning every
// rule on the turf across sports in insertion order.
func (h *OwnerHandler) ListRules(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	turfID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.TurfRepo.GetByIDAndOwner(ctx, turfID, ownerID); err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	rules, err := h.RuleRepo.ListForTurf(ctx, turfID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rules})
}

// CreateRule handles POST /v1/owner/turfs/:id/rules.  The sport must
// be one the turf offers; the slot_id matcher, when set, must point
// at a real catalog slot.
func (h *OwnerHandler) CreateRule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	turfID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body ruleReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sport := normalizeSport(body.Sport)
	if sport == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sport is required"})
	}
	if msg := validateRuleBody(&body); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if _, err := h.TurfRepo.GetByIDAndOwner(ctx, turfID, ownerID); err != nil {
		if errors.Is(err, repository.ErrTurfNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "turf not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	offers, err := h.TurfRepo.OffersSport(ctx, turfID, sport)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !offers {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "turf does not offer this sport"})
	}
	if body.SlotID != nil {
		slots, err := h.SlotRepo.GetByIDs(ctx, []uint64{*body.SlotID})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if len(slots) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown slot_id"})
		}
	}
	rule := &model.PriceRule{
		TurfID:     turfID,
		Sport:      sport,
		SlotID:     body.SlotID,
		DayOfWeek:  body.DayOfWeek,
		RuleDate:   body.RuleDate,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		Period:     body.Period,
		DayType:    body.DayType,
		PriceCents: body.PriceCents,
		Priority:   body.Priority,
	}
	if err := h.RuleRepo.Create(ctx, rule); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create rule"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": rule})
}

// UpdateRule handles PATCH /v1/owner/rules/:id.  Matchers, price and
// priority can change; the rule's turf and sport cannot.
func (h *OwnerHandler) UpdateRule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ruleID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body ruleReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := validateRuleBody(&body); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	rule, err := h.RuleRepo.GetByIDForOwner(ctx, ruleID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rule not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if body.SlotID != nil {
		slots, err := h.SlotRepo.GetByIDs(ctx, []uint64{*body.SlotID})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		if len(slots) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown slot_id"})
		}
	}
	rule.SlotID = body.SlotID
	rule.DayOfWeek = body.DayOfWeek
	rule.RuleDate = body.RuleDate
	rule.StartTime = body.StartTime
	rule.EndTime = body.EndTime
	rule.Period = body.Period
	rule.DayType = body.DayType
	rule.PriceCents = body.PriceCents
	rule.Priority = body.Priority
	if err := h.RuleRepo.UpdateByIDAndOwner(ctx, rule, ownerID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update rule"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": rule})
}

// DeleteRule handles DELETE /v1/owner/rules/:id.
func (h *OwnerHandler) DeleteRule(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ruleID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.RuleRepo.DeleteByIDAndOwner(c.Request().Context(), ruleID, ownerID); err != nil {
		if errors.Is(err, repository.ErrRuleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rule not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete rule"})
	}
	return c.NoContent(http.StatusNoContent)
}
