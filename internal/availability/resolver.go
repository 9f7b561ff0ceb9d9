// Package availability merges the fixed slot catalog with the set of
// slots already taken by bookings and manual blocks, producing the
// per-date grid shown to customers and owners.
package availability

import "github.com/turftown/turf-booking/internal/model"

// SlotStatus pairs a catalog slot with its booked flag for one
// (turf, date, sport) view.
type SlotStatus struct {
    Slot     model.TimeSlot `json:"slot"`
    IsBooked bool           `json:"is_booked"`
}

// OccupiedSet flattens the slot-id sets of the supplied bookings into
// one lookup set.  Callers are expected to pass only bookings that
// actually occupy slots (status neither CANCELLED nor COMPLETED);
// the repository query enforces that filter.  Manual blocks are
// bookings with status BLOCKED and occupy slots identically.
func OccupiedSet(slotIDs [][]uint64) map[uint64]struct{} {
    occupied := make(map[uint64]struct{})
    for _, ids := range slotIDs {
        for _, id := range ids {
            occupied[id] = struct{}{}
        }
    }
    return occupied
}

// Resolve tags every catalog slot with whether it is occupied.  The
// catalog order (start time ascending) is preserved so the output is
// deterministic: resolving twice with the same inputs yields an
// identical sequence.  Grouping by period is left to callers; it is
// a presentation concern, not part of the resolver contract.
func Resolve(catalog []model.TimeSlot, occupied map[uint64]struct{}) []SlotStatus {
    statuses := make([]SlotStatus, 0, len(catalog))
    for _, slot := range catalog {
        _, booked := occupied[slot.ID]
        statuses = append(statuses, SlotStatus{Slot: slot, IsBooked: booked})
    }
    return statuses
}
