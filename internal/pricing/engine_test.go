package pricing

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/turftown/turf-booking/internal/model"
)

func u64(v uint64) *uint64 { return &v }
func i(v int) *int         { return &v }
func s(v string) *string   { return &v }

func date(t *testing.T, value string) time.Time {
    t.Helper()
    d, err := time.Parse("2006-01-02", value)
    require.NoError(t, err)
    return d
}

var (
    slot1800 = model.TimeSlot{ID: 37, StartTime: "18:00", EndTime: "18:30", Period: model.PeriodEvening}
    slot1830 = model.TimeSlot{ID: 38, StartTime: "18:30", EndTime: "19:00", Period: model.PeriodEvening}
    slot1930 = model.TimeSlot{ID: 40, StartTime: "19:30", EndTime: "20:30", Period: model.PeriodEvening}
    slot0900 = model.TimeSlot{ID: 19, StartTime: "09:00", EndTime: "09:30", Period: model.PeriodDay}
)

func TestMatchesSlotID(t *testing.T) {
    rule := model.PriceRule{SlotID: u64(37)}
    d := date(t, "2026-09-10")
    assert.True(t, Matches(rule, slot1800, d))
    assert.False(t, Matches(rule, slot1830, d))
}

func TestMatchesDayOfWeekSunday(t *testing.T) {
    // day_of_week 0 is Sunday; a nil check rather than truthiness
    // must keep Sunday rules working.
    rule := model.PriceRule{DayOfWeek: i(0)}
    assert.True(t, Matches(rule, slot1800, date(t, "2026-09-06")))  // a Sunday
    assert.False(t, Matches(rule, slot1800, date(t, "2026-09-07"))) // the Monday after
}

func TestMatchesExactDate(t *testing.T) {
    rule := model.PriceRule{RuleDate: s("2026-10-02")}
    assert.True(t, Matches(rule, slot0900, date(t, "2026-10-02")))
    assert.False(t, Matches(rule, slot0900, date(t, "2026-10-03")))
}

func TestMatchesTimeRangeRequiresFullContainment(t *testing.T) {
    rule := model.PriceRule{StartTime: s("18:00"), EndTime: s("20:00")}
    d := date(t, "2026-09-10")
    // 18:30–19:00 nests inside 18:00–20:00.
    assert.True(t, Matches(rule, slot1830, d))
    // 19:30–20:30 only partially overlaps and must not match.
    assert.False(t, Matches(rule, slot1930, d))
    // Boundary slot starting exactly at the range start still nests.
    assert.True(t, Matches(rule, slot1800, d))
}

func TestMatchesPeriod(t *testing.T) {
    rule := model.PriceRule{Period: s(model.PeriodEvening)}
    d := date(t, "2026-09-10")
    assert.True(t, Matches(rule, slot1800, d))
    assert.False(t, Matches(rule, slot0900, d))
}

func TestMatchesCombinedMatchersAllMustHold(t *testing.T) {
    rule := model.PriceRule{DayOfWeek: i(6), Period: s(model.PeriodEvening)}
    assert.True(t, Matches(rule, slot1800, date(t, "2026-09-05")))  // Saturday evening
    assert.False(t, Matches(rule, slot0900, date(t, "2026-09-05"))) // Saturday day slot
    assert.False(t, Matches(rule, slot1800, date(t, "2026-09-03"))) // Thursday evening
}

func TestMatchesNoMatchersMatchesEverything(t *testing.T) {
    rule := model.PriceRule{}
    assert.True(t, Matches(rule, slot1800, date(t, "2026-09-10")))
    assert.True(t, Matches(rule, slot0900, date(t, "2027-01-01")))
}

func TestResolvePriceFallsBackToBase(t *testing.T) {
    rules := []model.PriceRule{{SlotID: u64(99), PriceCents: 50000, Priority: 10}}
    got := ResolvePrice(slot1800, date(t, "2026-09-10"), rules, 100000)
    assert.Equal(t, uint32(100000), got)
}

func TestResolvePriceSingleMatch(t *testing.T) {
    rules := []model.PriceRule{{SlotID: u64(37), PriceCents: 120000, Priority: 1}}
    got := ResolvePrice(slot1800, date(t, "2026-09-10"), rules, 100000)
    assert.Equal(t, uint32(120000), got)
}

func TestResolvePriceHighestPriorityWins(t *testing.T) {
    // Base ₹1000, slot rule ₹1200 at priority 5, evening period rule
    // ₹900 at priority 1; both match the 18:00 slot and the slot rule
    // must win.
    rules := []model.PriceRule{
        {Period: s(model.PeriodEvening), PriceCents: 90000, Priority: 1},
        {SlotID: u64(37), PriceCents: 120000, Priority: 5},
    }
    got := ResolvePrice(slot1800, date(t, "2026-09-10"), rules, 100000)
    assert.Equal(t, uint32(120000), got)
}

func TestResolvePriceTieBreaksOnFetchOrder(t *testing.T) {
    first := model.PriceRule{Period: s(model.PeriodEvening), PriceCents: 80000, Priority: 3}
    second := model.PriceRule{Period: s(model.PeriodEvening), PriceCents: 95000, Priority: 3}
    got := ResolvePrice(slot1800, date(t, "2026-09-10"), []model.PriceRule{first, second}, 100000)
    assert.Equal(t, uint32(80000), got)
    // Reversing the order flips the winner: the tie-break is purely
    // positional.
    got = ResolvePrice(slot1800, date(t, "2026-09-10"), []model.PriceRule{second, first}, 100000)
    assert.Equal(t, uint32(95000), got)
}

func TestResolvePriceDegenerateRuleActsAsOverride(t *testing.T) {
    rules := []model.PriceRule{{PriceCents: 70000, Priority: 2}}
    assert.Equal(t, uint32(70000), ResolvePrice(slot0900, date(t, "2026-09-10"), rules, 100000))
    assert.Equal(t, uint32(70000), ResolvePrice(slot1800, date(t, "2026-09-10"), rules, 100000))
}

func TestResolveAllPricesEverySlotFromOneRuleSet(t *testing.T) {
    catalog := []model.TimeSlot{slot0900, slot1800, slot1830}
    rules := []model.PriceRule{
        {SlotID: u64(37), PriceCents: 120000, Priority: 5},
        {Period: s(model.PeriodEvening), PriceCents: 90000, Priority: 1},
    }
    prices := ResolveAll(catalog, date(t, "2026-09-10"), rules, 100000)
    require.Len(t, prices, 3)
    assert.Equal(t, uint32(100000), prices[19]) // day slot, no rule matches
    assert.Equal(t, uint32(120000), prices[37]) // slot rule beats period rule
    assert.Equal(t, uint32(90000), prices[38])  // period rule only
}

func TestResolveAllAdjacentSlotsSumIndependently(t *testing.T) {
    // Booking 18:00–18:30 and 18:30–19:00 together must charge the
    // sum of each slot's own resolved price, not twice either price.
    catalog := []model.TimeSlot{slot1800, slot1830}
    rules := []model.PriceRule{{SlotID: u64(37), PriceCents: 120000, Priority: 5}}
    prices := ResolveAll(catalog, date(t, "2026-09-10"), rules, 100000)
    total := prices[37] + prices[38]
    assert.Equal(t, uint32(220000), total)
}
