package model

import "time"

// SeatStatus is the availability state of a seat itself, independent
// of any reservation.  It models maintenance and decommissioning,
// not booking state.
type SeatStatus string

const (
    SeatAvailable   SeatStatus = "available"
    SeatUnavailable SeatStatus = "unavailable"
    SeatMaintenance SeatStatus = "maintenance"
)

// ValidSeatStatus reports whether s is one of the three known seat states.
func ValidSeatStatus(s string) bool {
    switch SeatStatus(s) {
    case SeatAvailable, SeatUnavailable, SeatMaintenance:
        return true
    }
    return false
}

// Seat describes one bookable physical desk.  Seats are identified
// by a unique human-readable number (e.g. "A-12") plus a location
// tag such as a floor or room name.
//
// Fields:
//  ID         – primary key identifier.
//  SeatNumber – unique display label.
//  Location   – human location tag.
//  Status     – available, unavailable or maintenance.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Seat struct {
    ID         uint64     `json:"id"`          // seats.id
    SeatNumber string     `json:"seat_number"` // seats.seat_number
    Location   string     `json:"location"`    // seats.location
    Status     SeatStatus `json:"status"`      // seats.status
    CreatedAt  time.Time  `json:"created_at"`  // seats.created_at
    UpdatedAt  time.Time  `json:"updated_at"`  // seats.updated_at
}
