package booking

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/arashpm/intern-seat-reservation/internal/model"
    "github.com/arashpm/intern-seat-reservation/internal/repository"
)

// ReservationStore is the persistence surface the engine needs.  The
// MySQL implementation lives in internal/repository; tests use an
// in-memory fake.  Create must be atomic with respect to concurrent
// inserts for the same intern/day and seat/day pairs and report
// repository.ErrInternTaken / repository.ErrSeatTaken on collision —
// it is the sole authority for both uniqueness invariants, the
// FindActive* methods are advisory pre-checks only.
type ReservationStore interface {
    FindActiveByIntern(ctx context.Context, internID uint64, date time.Time) (*model.Reservation, error)
    FindActiveBySeat(ctx context.Context, seatID uint64, date time.Time) (*model.Reservation, error)
    Create(ctx context.Context, res *model.Reservation) error
    SetStatus(ctx context.Context, id uint64, to model.Status) (*model.Reservation, error)
    GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
    GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error)
    ListActive(ctx context.Context) ([]model.Reservation, error)
    ListByIntern(ctx context.Context, internID uint64) ([]model.ReservationDetail, error)
    List(ctx context.Context, f repository.ListFilter) ([]model.ReservationDetail, error)
}

// SeatCatalog is the slice of the seat catalog collaborator the engine
// consumes: existence checks and display fields.  Seat availability
// status (maintenance etc.) is deliberately NOT enforced here; that is
// the catalog's concern.
type SeatCatalog interface {
    GetByID(ctx context.Context, id uint64) (*model.Seat, error)
}

// Service orchestrates reservation creation, cancellation, listing and
// expiry.  Every status-sensitive operation runs the expiry sweep
// synchronously first (lazy refresh) so stale "active" rows are never
// observable and never block a new booking.
type Service struct {
    store ReservationStore
    seats SeatCatalog
    now   func() time.Time

    // OnExpired, when set, is invoked for each reservation the sweep
    // transitions to completed.  main wires this to the event
    // publisher; it must not block for long.
    OnExpired func(model.Reservation)
}

// leadTime is the minimum gap between "now" and the reservation's
// midnight instant.  Measured against the current instant, not the
// slot start.
const leadTime = time.Hour

// NewService builds a Service on top of the given store and catalog.
func NewService(store ReservationStore, seats SeatCatalog) *Service {
    return &Service{store: store, seats: seats, now: time.Now}
}

// ParseDate parses a wire date (YYYY-MM-DD, or a full RFC3339 instant
// whose time-of-day is discarded) and normalizes it to local midnight.
func ParseDate(s string) (time.Time, error) {
    if s == "" {
        return time.Time{}, ErrInvalidDate
    }
    if t, err := time.ParseInLocation(model.DateFormat, s, time.Local); err == nil {
        return model.NormalizeDate(t), nil
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return model.NormalizeDate(t), nil
    }
    return time.Time{}, ErrInvalidDate
}

// Create books seatID for internID on the given day and slot.  Steps
// run strictly in order: lazy refresh, normalization and validation,
// lead-time gate, advisory intern/seat pre-checks, then the atomic
// insert that actually decides races.  On success the reservation is
// returned resolved with seat and intern display fields.
func (s *Service) Create(ctx context.Context, internID, seatID uint64, dateStr, slotStr string) (*model.ReservationDetail, error) {
    s.refresh(ctx)

    slot, ok := model.ParseSlot(slotStr)
    if !ok {
        return nil, ErrInvalidSlot
    }
    date, err := ParseDate(dateStr)
    if err != nil {
        return nil, err
    }
    if date.Before(s.now().Add(leadTime)) {
        return nil, ErrTooSoon
    }

    if _, err := s.seats.GetByID(ctx, seatID); err != nil {
        if errors.Is(err, repository.ErrSeatNotFound) {
            return nil, ErrSeatUnknown
        }
        return nil, err
    }

    // Advisory pre-checks: inherently racy, kept for fast and specific
    // conflict messages.  The insert below is what actually enforces
    // both invariants.
    if existing, err := s.store.FindActiveByIntern(ctx, internID, date); err != nil {
        return nil, err
    } else if existing != nil {
        return nil, ErrInternConflict
    }
    if existing, err := s.store.FindActiveBySeat(ctx, seatID, date); err != nil {
        return nil, err
    } else if existing != nil {
        return nil, ErrSeatConflict
    }

    res := &model.Reservation{
        InternID: internID,
        SeatID:   seatID,
        Date:     date,
        TimeSlot: slot,
        Status:   model.StatusActive,
    }
    if err := s.store.Create(ctx, res); err != nil {
        switch {
        case errors.Is(err, repository.ErrInternTaken):
            return nil, ErrInternConflict
        case errors.Is(err, repository.ErrSeatTaken):
            return nil, ErrSeatConflict
        }
        return nil, err
    }
    return s.detail(ctx, res)
}

// Cancel transitions the intern's own active reservation to cancelled.
// Absent, foreign and already-terminal targets all yield ErrNotFound.
func (s *Service) Cancel(ctx context.Context, internID, reservationID uint64) (*model.ReservationDetail, error) {
    s.refresh(ctx)

    r, err := s.store.GetByID(ctx, reservationID)
    if err != nil {
        return nil, err
    }
    if r == nil || r.InternID != internID || !r.Status.CanTransitionTo(model.StatusCancelled) {
        return nil, ErrNotFound
    }
    updated, err := s.store.SetStatus(ctx, reservationID, model.StatusCancelled)
    if err != nil {
        return nil, err
    }
    if updated == nil {
        // Lost a race against the sweeper: the row went terminal
        // between the read and the guarded update.
        return nil, ErrNotFound
    }
    return s.detail(ctx, updated)
}

// ListForIntern returns the intern's reservations, newest date first.
func (s *Service) ListForIntern(ctx context.Context, internID uint64) ([]model.ReservationDetail, error) {
    s.refresh(ctx)
    return s.store.ListByIntern(ctx, internID)
}

// ListAll returns reservations matching the filter.  Admin-only.
func (s *Service) ListAll(ctx context.Context, f repository.ListFilter) ([]model.ReservationDetail, error) {
    s.refresh(ctx)
    return s.store.List(ctx, f)
}

// ExpireDue runs one expiry sweep: every active reservation whose time
// window has elapsed is transitioned to completed.  Per-record
// failures are logged and skipped so one bad row cannot block the
// rest; re-running immediately finds nothing further to do.  Returns
// the number of reservations transitioned.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
    active, err := s.store.ListActive(ctx)
    if err != nil {
        return 0, err
    }
    now := s.now()
    count := 0
    for i := range active {
        r := &active[i]
        if !model.ShouldExpire(r, now) {
            continue
        }
        updated, err := s.store.SetStatus(ctx, r.ID, model.StatusCompleted)
        if err != nil {
            log.Printf("sweep: failed to complete reservation %d: %v", r.ID, err)
            continue
        }
        if updated == nil {
            // Already transitioned by a concurrent sweep or cancel.
            continue
        }
        count++
        if s.OnExpired != nil {
            s.OnExpired(*updated)
        }
    }
    return count, nil
}

// refresh is the lazy sweep executed before every status-sensitive
// call.  Failures are logged and swallowed: the periodic sweeper or
// the next request will catch up, and a refresh problem must not fail
// the user's operation.
func (s *Service) refresh(ctx context.Context) {
    if _, err := s.ExpireDue(ctx); err != nil {
        log.Printf("lazy refresh failed: %v", err)
    }
}

func (s *Service) detail(ctx context.Context, r *model.Reservation) (*model.ReservationDetail, error) {
    d, err := s.store.GetDetail(ctx, r.ID)
    if err != nil {
        return nil, err
    }
    if d == nil {
        return nil, ErrNotFound
    }
    return d, nil
}
