package model

import "time"

// Slot names the sub-day window a seat is booked for.  The three
// values are a closed enumeration persisted verbatim in the
// reservations.time_slot column, so they must never be renamed.
type Slot string

const (
    SlotMorning   Slot = "morning"   // ends at 12:00 local time
    SlotAfternoon Slot = "afternoon" // ends at 18:00 local time
    SlotFullDay   Slot = "full-day"  // ends at 23:59:59.999 local time
)

// ParseSlot validates a slot string supplied by a client.  An empty
// value defaults to full-day, matching the stored column default.
// Unknown values are rejected here so that bad input never reaches
// the database; WindowEnd below stays tolerant for rows that were
// persisted before this validation existed.
func ParseSlot(s string) (Slot, bool) {
    switch Slot(s) {
    case SlotMorning, SlotAfternoon, SlotFullDay:
        return Slot(s), true
    case "":
        return SlotFullDay, true
    }
    return "", false
}

// Status is the lifecycle state of a reservation.  Transitions are
// one-directional: active may move to cancelled (user) or completed
// (time elapsed); cancelled and completed are terminal.
type Status string

const (
    StatusActive    Status = "active"
    StatusCancelled Status = "cancelled"
    StatusCompleted Status = "completed"
)

// CanTransitionTo reports whether moving from s to next is a legal
// one-way transition.  Only active rows may move, and only into a
// terminal state.
func (s Status) CanTransitionTo(next Status) bool {
    if s != StatusActive {
        return false
    }
    return next == StatusCancelled || next == StatusCompleted
}

// Reservation records one intern holding one seat for one calendar
// day.  Date always carries a zero time-of-day component in the
// server's local zone; NormalizeDate is the only way a date should
// ever be produced before hitting the store.
//
// Fields:
//  ID        – primary key identifier.
//  InternID  – user who made the reservation.
//  SeatID    – seat being reserved.
//  Date      – calendar day at local midnight.
//  TimeSlot  – morning, afternoon or full-day.
//  Status    – active, cancelled or completed.
//  CreatedAt – creation timestamp, immutable.
//  UpdatedAt – last status change.
type Reservation struct {
    ID        uint64    // reservations.id
    InternID  uint64    // reservations.intern_id
    SeatID    uint64    // reservations.seat_id
    Date      time.Time // reservations.day (DATE, local midnight)
    TimeSlot  Slot      // reservations.time_slot
    Status    Status    // reservations.status
    CreatedAt time.Time // reservations.created_at
    UpdatedAt time.Time // reservations.updated_at
}

// ReservationDetail is a reservation resolved with seat and intern
// display fields for API responses.  Date is pre-formatted because
// the wire format is date-only.
type ReservationDetail struct {
    ID          uint64 `json:"id"`
    SeatID      uint64 `json:"seat_id"`
    SeatNumber  string `json:"seat_number"`
    Location    string `json:"location"`
    Date        string `json:"date"` // YYYY-MM-DD
    TimeSlot    Slot   `json:"time_slot"`
    Status      Status `json:"status"`
    InternID    uint64 `json:"intern_id"`
    InternEmail string `json:"intern_email,omitempty"`
    CreatedAt   string `json:"created_at"`
}

// DateFormat is the wire and query-parameter format for reservation dates.
const DateFormat = "2006-01-02"

// NormalizeDate strips the time-of-day component, returning local
// midnight of the same calendar day.  Every date comparison in the
// booking engine is an exact match on this normalized value.
func NormalizeDate(t time.Time) time.Time {
    y, m, d := t.In(time.Local).Date()
    return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// WindowEnd returns the instant at which a reservation's active
// window closes for the given day and slot.  This is the single
// canonical slot table: the sweeper and the lazy refresh both go
// through it.  An unrecognized slot falls back to the full-day end
// so that a corrupt row expires at end of day instead of never.
func WindowEnd(date time.Time, slot Slot) time.Time {
    y, m, d := date.In(time.Local).Date()
    switch slot {
    case SlotMorning:
        return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
    case SlotAfternoon:
        return time.Date(y, m, d, 18, 0, 0, 0, time.Local)
    default: // full-day and anything unknown
        return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.Local)
    }
}

// ShouldExpire reports whether r must transition to completed under
// the clock reading now.  Pure decision; the caller applies the
// status write.
func ShouldExpire(r *Reservation, now time.Time) bool {
    return r.Status == StatusActive && now.After(WindowEnd(r.Date, r.TimeSlot))
}
