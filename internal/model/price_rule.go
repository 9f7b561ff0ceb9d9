package model

import "time"

// PriceRule overrides the base price of a turf for slots that it
// matches.  A rule belongs to exactly one (turf, sport) pair and is
// discriminated by which matcher fields are populated: a specific
// slot, a calendar weekday, an exact date, a nested time range or a
// period bucket.  Every populated matcher must hold for the rule to
// apply; a rule with no matchers set matches every slot and acts as
// a turf-wide override at its priority.  Among matching rules the
// highest priority wins.
//
// All matcher fields use pointers so that nil means "not set".
// DayOfWeek in particular must never be tested for truthiness:
// Sunday is 0 and a zero value is a valid matcher.
//
// Fields:
//  ID         – primary key identifier.
//  TurfID     – turf the rule belongs to.
//  Sport      – sport the rule belongs to.
//  SlotID     – matches one specific catalog slot by id.
//  DayOfWeek  – matches a weekday, 0=Sunday … 6=Saturday.
//  RuleDate   – matches one exact calendar date ("YYYY-MM-DD").
//  StartTime  – with EndTime, matches slots fully nested in the range.
//  EndTime    – see StartTime.
//  Period     – matches slots tagged "day" or "evening".
//  DayType    – "weekday"/"weekend" label collected by the authoring
//               screens; stored but not evaluated (see DESIGN.md).
//  PriceCents – price in cents charged when this rule applies.
//  Priority   – integer rank; higher wins among matching rules.
//  CreatedAt  – timestamp when the rule was created.
type PriceRule struct {
    ID         uint64    // price_rules.id
    TurfID     uint64    // price_rules.turf_id
    Sport      string    // price_rules.sport
    SlotID     *uint64   // price_rules.slot_id (nullable)
    DayOfWeek  *int      // price_rules.day_of_week (nullable, 0=Sunday)
    RuleDate   *string   // price_rules.rule_date (nullable)
    StartTime  *string   // price_rules.start_time (nullable)
    EndTime    *string   // price_rules.end_time (nullable)
    Period     *string   // price_rules.period (nullable)
    DayType    *string   // price_rules.day_type (nullable)
    PriceCents uint32    // price_rules.price_cents
    Priority   int       // price_rules.priority
    CreatedAt  time.Time // price_rules.created_at
}
