// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// booking service and handlers to distinguish between different failure
// scenarios without string matching. ErrInternTaken and ErrSeatTaken in
// particular separate "someone else just booked this" from unrelated
// storage failures, which the service layer must report differently.
package repository

import "errors"

// ErrInternTaken is returned when inserting a reservation violates the
// unique key on (intern_id, day, active). The intern already holds an
// active reservation for that date.
var ErrInternTaken = errors.New("intern already has an active reservation for this date")

// ErrSeatTaken is returned when inserting a reservation violates the
// unique key on (seat_id, day, active). The seat is already actively
// booked for that date by someone.
var ErrSeatTaken = errors.New("seat already reserved for this date")

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrEmailExists is returned when registering a user with an email that
// is already present in the users table.
var ErrEmailExists = errors.New("email already exists")
