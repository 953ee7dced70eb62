package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
    return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestNormalizeDateStripsTimeOfDay(t *testing.T) {
    in := time.Date(2025, 3, 10, 17, 42, 9, 123456, time.Local)
    got := NormalizeDate(in)
    assert.Equal(t, day(2025, 3, 10), got)
    // already-normalized values are fixed points
    assert.Equal(t, got, NormalizeDate(got))
}

func TestWindowEndTable(t *testing.T) {
    d := day(2025, 3, 10)
    cases := []struct {
        slot Slot
        want time.Time
    }{
        {SlotMorning, time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)},
        {SlotAfternoon, time.Date(2025, 3, 10, 18, 0, 0, 0, time.Local)},
        {SlotFullDay, time.Date(2025, 3, 10, 23, 59, 59, int(999*time.Millisecond), time.Local)},
        {Slot("bogus"), time.Date(2025, 3, 10, 23, 59, 59, int(999*time.Millisecond), time.Local)},
    }
    for _, c := range cases {
        assert.Equal(t, c.want, WindowEnd(d, c.slot), "slot %q", c.slot)
    }
}

func TestWindowEndMonotonicInSlotOrder(t *testing.T) {
    d := day(2025, 3, 10)
    morning := WindowEnd(d, SlotMorning)
    afternoon := WindowEnd(d, SlotAfternoon)
    full := WindowEnd(d, SlotFullDay)
    assert.True(t, morning.Before(afternoon))
    assert.True(t, afternoon.Before(full))
}

func TestShouldExpireBoundary(t *testing.T) {
    r := &Reservation{
        Date:     day(2025, 3, 10),
        TimeSlot: SlotMorning,
        Status:   StatusActive,
    }
    before := time.Date(2025, 3, 10, 11, 59, 0, 0, time.Local)
    after := time.Date(2025, 3, 10, 12, 1, 0, 0, time.Local)
    assert.False(t, ShouldExpire(r, before), "still active one minute before noon")
    assert.True(t, ShouldExpire(r, after), "expired one minute after noon")
    // exactly the window end is still active (strictly after)
    assert.False(t, ShouldExpire(r, WindowEnd(r.Date, r.TimeSlot)))
}

func TestShouldExpireIgnoresTerminalRows(t *testing.T) {
    late := time.Date(2030, 1, 1, 0, 0, 0, 0, time.Local)
    for _, s := range []Status{StatusCancelled, StatusCompleted} {
        r := &Reservation{Date: day(2025, 3, 10), TimeSlot: SlotFullDay, Status: s}
        assert.False(t, ShouldExpire(r, late), "status %s", s)
    }
}

func TestParseSlot(t *testing.T) {
    for _, s := range []string{"morning", "afternoon", "full-day"} {
        slot, ok := ParseSlot(s)
        require.True(t, ok, s)
        assert.Equal(t, Slot(s), slot)
    }
    slot, ok := ParseSlot("")
    require.True(t, ok)
    assert.Equal(t, SlotFullDay, slot)
    _, ok = ParseSlot("evening")
    assert.False(t, ok)
}

func TestStatusTransitions(t *testing.T) {
    assert.True(t, StatusActive.CanTransitionTo(StatusCancelled))
    assert.True(t, StatusActive.CanTransitionTo(StatusCompleted))
    assert.False(t, StatusActive.CanTransitionTo(StatusActive))
    assert.False(t, StatusCancelled.CanTransitionTo(StatusCompleted))
    assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
    assert.False(t, StatusCompleted.CanTransitionTo(StatusActive))
}
