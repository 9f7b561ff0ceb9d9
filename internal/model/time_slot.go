package model

// Period values used by the time slot catalog and by pricing rules.
// A slot belongs to exactly one coarse time-of-day bucket.
const (
    PeriodDay     = "day"     // morning and afternoon slots
    PeriodEvening = "evening" // evening and night slots
)

// TimeSlot is an entry of the fixed 30-minute slot catalog.  The
// catalog is reference data seeded once by operators and shared by
// every turf; it is not tied to a turf or sport.  Slots are always
// listed ordered by start time ascending.  Times are stored as
// zero-padded 24h "HH:MM" strings so that lexicographic comparison
// matches chronological comparison.
//
// Fields:
//  ID        – primary key identifier.
//  StartTime – inclusive start of the interval ("HH:MM").
//  EndTime   – exclusive end of the interval ("HH:MM").
//  Period    – "day" or "evening" bucket the slot belongs to.
type TimeSlot struct {
    ID        uint64 // time_slots.id
    StartTime string // time_slots.start_time
    EndTime   string // time_slots.end_time
    Period    string // time_slots.period
}
