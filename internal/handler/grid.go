package handler

import (
	"context"
	"log"
	"time"

	"github.com/turftown/turf-booking/internal/availability"
	"github.com/turftown/turf-booking/internal/model"
	"github.com/turftown/turf-booking/internal/pricing"
	"github.com/turftown/turf-booking/internal/repository"
)

// GridSlot is one slot of the day grid: catalog data merged with the
// booked flag and the effective price.
type GridSlot struct {
	SlotID     uint64 `json:"slot_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	IsBooked   bool   `json:"is_booked"`
	PriceCents uint32 `json:"price_cents"`
}

// GridResponse is the full grid for one (turf, date, sport), grouped
// by period so clients render the day and evening sections directly.
type GridResponse struct {
	TurfID         uint64              `json:"turf_id"`
	Date           string              `json:"date"`
	Sport          string              `json:"sport"`
	BasePriceCents uint32              `json:"base_price_cents"`
	Periods        map[string][]GridSlot `json:"periods"`
}

// buildGrid assembles the slot grid for a turf on a date.  Both the
// public endpoint and the owner endpoint call it so customers and
// owners always see the same availability and the same prices.
//
// The two data fetches degrade independently: if price rules cannot
// be loaded every slot falls back to the turf's base price, and if
// bookings cannot be loaded every slot renders as free.  A grid with
// default prices is more useful than an error page; the failure is
// logged for operators.
func buildGrid(ctx context.Context, slots *repository.TimeSlotRepo, rules *repository.PriceRuleRepo, bookings *repository.BookingRepo, turf *model.Turf, date string, playDate time.Time, sport string) (*GridResponse, error) {
	catalog, err := slots.ListAll(ctx)
	if err != nil {
		// The catalog is the skeleton of the grid; nothing renders without it.
		return nil, err
	}

	ruleSet, err := rules.ListForTurfSport(ctx, turf.ID, sport)
	if err != nil {
		log.Printf("grid: price rules unavailable for turf=%d sport=%s: %v", turf.ID, sport, err)
		ruleSet = nil
	}
	prices := pricing.ResolveAll(catalog, playDate, ruleSet, turf.BasePriceCents)

	occupiedGroups, err := bookings.OccupiedSlotIDs(ctx, turf.ID, date, sport)
	if err != nil {
		log.Printf("grid: bookings unavailable for turf=%d date=%s: %v", turf.ID, date, err)
		occupiedGroups = nil
	}
	statuses := availability.Resolve(catalog, availability.OccupiedSet(occupiedGroups))

	periods := map[string][]GridSlot{
		model.PeriodDay:     {},
		model.PeriodEvening: {},
	}
	for _, st := range statuses {
		periods[st.Slot.Period] = append(periods[st.Slot.Period], GridSlot{
			SlotID:     st.Slot.ID,
			StartTime:  st.Slot.StartTime,
			EndTime:    st.Slot.EndTime,
			IsBooked:   st.IsBooked,
			PriceCents: prices[st.Slot.ID],
		})
	}
	return &GridResponse{
		TurfID:         turf.ID,
		Date:           date,
		Sport:          sport,
		BasePriceCents: turf.BasePriceCents,
		Periods:        periods,
	}, nil
}
