// Package pricing implements the rule evaluation that turns a turf's
// pricing rules into an effective per-slot price.  The same engine is
// shared by the public booking grid, the owner dashboard and the admin
// panel so that every screen resolves prices identically.
package pricing

import (
    "time"

    "github.com/turftown/turf-booking/internal/model"
)

// Matches reports whether a rule applies to the given slot on the
// given date.  Every matcher field that is populated on the rule must
// hold; nil matcher fields are ignored.  A rule with no matcher
// fields set matches every slot and acts as a turf-wide override.
//
// Matcher semantics:
//  SlotID    – equality against the slot's catalog id.
//  DayOfWeek – equality against the date's weekday with Sunday=0.
//              The check is an explicit nil test, never truthiness,
//              so Sunday rules are honoured.
//  RuleDate  – equality against the date formatted "YYYY-MM-DD".
//  Start/End – the slot's [start,end) interval must nest fully inside
//              the rule's range; partial overlap does not match.
//  Period    – equality against the slot's period bucket.
//
// DayType is deliberately not evaluated; see DESIGN.md.
func Matches(r model.PriceRule, slot model.TimeSlot, date time.Time) bool {
    if r.SlotID != nil && *r.SlotID != slot.ID {
        return false
    }
    if r.DayOfWeek != nil && int(date.Weekday()) != *r.DayOfWeek {
        return false
    }
    if r.RuleDate != nil && date.Format("2006-01-02") != *r.RuleDate {
        return false
    }
    // Both bounds must be present for a time-range matcher.  "HH:MM"
    // strings compare lexicographically in chronological order.
    if r.StartTime != nil && r.EndTime != nil {
        if slot.StartTime < *r.StartTime || slot.EndTime > *r.EndTime {
            return false
        }
    }
    if r.Period != nil && *r.Period != slot.Period {
        return false
    }
    return true
}

// ResolvePrice returns the effective price in cents for one slot on
// one date.  Among all matching rules the one with the numerically
// highest priority wins; when several matching rules share the top
// priority the first one in the supplied order wins, so callers must
// pass rules in a stable fetch order.  When no rule matches, the
// turf's base price is returned.
func ResolvePrice(slot model.TimeSlot, date time.Time, rules []model.PriceRule, baseCents uint32) uint32 {
    var best *model.PriceRule
    for i := range rules {
        if !Matches(rules[i], slot, date) {
            continue
        }
        // Strictly-greater comparison keeps the earliest rule on ties.
        if best == nil || rules[i].Priority > best.Priority {
            best = &rules[i]
        }
    }
    if best == nil {
        return baseCents
    }
    return best.PriceCents
}

// ResolveAll evaluates the full slot catalog against one rule set and
// returns the effective price per slot id.  This is the batch path
// used when rendering a date's grid: rules are fetched once per
// (turf, sport, date) view and every slot is priced from the same
// set, avoiding a round trip per slot.
func ResolveAll(catalog []model.TimeSlot, date time.Time, rules []model.PriceRule, baseCents uint32) map[uint64]uint32 {
    prices := make(map[uint64]uint32, len(catalog))
    for _, slot := range catalog {
        prices[slot.ID] = ResolvePrice(slot, date, rules, baseCents)
    }
    return prices
}
