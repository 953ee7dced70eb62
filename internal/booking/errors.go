// Package booking implements the reservation concurrency and lifecycle
// engine: conflict-checked creation, user cancellation, listings that
// always see fresh lifecycle state, and the expiry sweep.
package booking

import "errors"

// Expected, user-facing failures.  Handlers translate these into
// specific 400/404 responses; anything else coming out of the service
// is a storage failure and is reported generically.
var (
    // ErrInvalidDate means the date was missing or not parseable.
    ErrInvalidDate = errors.New("invalid date")
    // ErrInvalidSlot means the time slot is not one of the three known values.
    ErrInvalidSlot = errors.New("invalid time slot")
    // ErrSeatUnknown means the referenced seat does not exist in the catalog.
    ErrSeatUnknown = errors.New("seat does not exist")
    // ErrTooSoon means the reservation date violates the 1-hour lead-time rule.
    ErrTooSoon = errors.New("reservation lead time not met")
    // ErrInternConflict means the intern already has an active reservation for the date.
    ErrInternConflict = errors.New("intern already booked for this date")
    // ErrSeatConflict means the seat already has an active reservation for the date.
    ErrSeatConflict = errors.New("seat already booked for this date")
    // ErrNotFound covers a cancel target that is absent, owned by someone
    // else, or already terminal.  One error for all three so nothing leaks
    // about other interns' reservations.
    ErrNotFound = errors.New("reservation not found")
)
