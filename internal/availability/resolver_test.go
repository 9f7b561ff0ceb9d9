package availability

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/turftown/turf-booking/internal/model"
)

var catalog = []model.TimeSlot{
    {ID: 1, StartTime: "06:00", EndTime: "06:30", Period: model.PeriodDay},
    {ID: 2, StartTime: "06:30", EndTime: "07:00", Period: model.PeriodDay},
    {ID: 3, StartTime: "18:00", EndTime: "18:30", Period: model.PeriodEvening},
    {ID: 4, StartTime: "18:30", EndTime: "19:00", Period: model.PeriodEvening},
}

func TestOccupiedSetFlattensBookingSlotSets(t *testing.T) {
    occupied := OccupiedSet([][]uint64{{1, 3}, {3, 4}})
    assert.Len(t, occupied, 3)
    _, ok := occupied[1]
    assert.True(t, ok)
    _, ok = occupied[2]
    assert.False(t, ok)
}

func TestResolveTagsOccupiedSlots(t *testing.T) {
    occupied := OccupiedSet([][]uint64{{2, 3}})
    statuses := Resolve(catalog, occupied)
    require.Len(t, statuses, 4)
    assert.False(t, statuses[0].IsBooked)
    assert.True(t, statuses[1].IsBooked)
    assert.True(t, statuses[2].IsBooked)
    assert.False(t, statuses[3].IsBooked)
}

func TestResolvePreservesCatalogOrder(t *testing.T) {
    statuses := Resolve(catalog, nil)
    require.Len(t, statuses, 4)
    for idx, st := range statuses {
        assert.Equal(t, catalog[idx].ID, st.Slot.ID)
    }
}

func TestResolveIsIdempotent(t *testing.T) {
    occupied := OccupiedSet([][]uint64{{1}, {4}})
    first := Resolve(catalog, occupied)
    second := Resolve(catalog, occupied)
    assert.Equal(t, first, second)
}

func TestResolveEmptyCatalog(t *testing.T) {
    statuses := Resolve(nil, OccupiedSet([][]uint64{{1}}))
    assert.Empty(t, statuses)
}
