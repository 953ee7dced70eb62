// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/arashpm/intern-seat-reservation/internal/model"
)

// Reservation lifecycle event types.
const (
    EventReservationCreated   = "reservation.created"
    EventReservationCancelled = "reservation.cancelled"
    EventReservationCompleted = "reservation.completed"
)

// ReservationEvent is published whenever a reservation changes state.
// It carries enough information for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type ReservationEvent struct {
    EventID       string `json:"event_id"`
    Type          string `json:"type"`
    ReservationID uint64 `json:"reservation_id"`
    InternID      uint64 `json:"intern_id"`
    InternEmail   string `json:"intern_email,omitempty"`
    SeatID        uint64 `json:"seat_id"`
    SeatNumber    string `json:"seat_number,omitempty"`
    Location      string `json:"location,omitempty"`
    Date          string `json:"date"`
    TimeSlot      string `json:"time_slot"`
    Status        string `json:"status"`
    OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent builds an event of the given type from a
// resolved reservation detail.
func NewReservationEvent(typ string, d *model.ReservationDetail) ReservationEvent {
    ev := ReservationEvent{
        EventID:    uuid.NewString(),
        Type:       typ,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
    if d != nil {
        ev.ReservationID = d.ID
        ev.InternID = d.InternID
        ev.InternEmail = d.InternEmail
        ev.SeatID = d.SeatID
        ev.SeatNumber = d.SeatNumber
        ev.Location = d.Location
        ev.Date = d.Date
        ev.TimeSlot = string(d.TimeSlot)
        ev.Status = string(d.Status)
    }
    return ev
}

// NewExpiryEvent builds a completion event straight from a reservation
// row, for the sweeper which has no resolved detail at hand.
func NewExpiryEvent(r model.Reservation) ReservationEvent {
    return ReservationEvent{
        EventID:       uuid.NewString(),
        Type:          EventReservationCompleted,
        ReservationID: r.ID,
        InternID:      r.InternID,
        SeatID:        r.SeatID,
        Date:          r.Date.Format(model.DateFormat),
        TimeSlot:      string(r.TimeSlot),
        Status:        string(r.Status),
        OccurredAt:    time.Now().UTC().Format(time.RFC3339),
    }
}
