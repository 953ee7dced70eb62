package repository // repository defines data access for seats

import (
    "context"      // context allows query cancellation and timeouts
    "database/sql" // sql provides DB primitives
    "errors"       // errors for sentinel comparisons
    "time"

    "github.com/arashpm/intern-seat-reservation/internal/model"
)

// SeatRepo provides methods to work with the seats catalog.  The core
// booking engine only reads seat identities; the mutation methods back
// the admin CRUD surface.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
    return &SeatRepo{db: db}
}

const seatCols = `id, seat_number, location, status, created_at, updated_at`

func scanSeat(row interface{ Scan(...any) error }) (*model.Seat, error) {
    var s model.Seat
    var status string
    if err := row.Scan(&s.ID, &s.SeatNumber, &s.Location, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
        return nil, err
    }
    s.Status = model.SeatStatus(status)
    return &s, nil
}

// Create inserts a single seat record. On success the ID and
// timestamps are populated.  A duplicate seat_number surfaces as a
// plain storage error; seat numbers are an admin concern, not a
// booking invariant.
func (r *SeatRepo) Create(ctx context.Context, s *model.Seat) error {
    const q = `INSERT INTO seats (seat_number, location, status) VALUES (?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.SeatNumber, s.Location, string(s.Status))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    const sel = `SELECT ` + seatCols + ` FROM seats WHERE id = ?`
    full, err := scanSeat(r.db.QueryRowContext(ctx, sel, s.ID))
    if err != nil {
        return err
    }
    *s = *full
    return nil
}

// GetByID retrieves a seat by its id.  Returns ErrSeatNotFound when
// no such seat exists.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
    const q = `SELECT ` + seatCols + ` FROM seats WHERE id = ?`
    s, err := scanSeat(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrSeatNotFound
    }
    return s, err
}

// ListAll returns every seat ordered by location then seat number.
func (r *SeatRepo) ListAll(ctx context.Context) ([]model.Seat, error) {
    const q = `SELECT ` + seatCols + ` FROM seats ORDER BY location, seat_number`
    return r.listSeats(ctx, q)
}

// ListAvailable returns seats whose catalog status is available.  When
// date is non-nil, seats that already have an active reservation on
// that normalized day are excluded, so the result is what an intern
// can actually book.
func (r *SeatRepo) ListAvailable(ctx context.Context, date *time.Time) ([]model.Seat, error) {
    if date == nil {
        const q = `SELECT ` + seatCols + ` FROM seats WHERE status = 'available'
                   ORDER BY location, seat_number`
        return r.listSeats(ctx, q)
    }
    const q = `SELECT ` + seatCols + ` FROM seats
               WHERE status = 'available'
                 AND id NOT IN (
                     SELECT seat_id FROM reservations WHERE day = ? AND status = 'active'
                 )
               ORDER BY location, seat_number`
    return r.listSeats(ctx, q, date.Format(model.DateFormat))
}

func (r *SeatRepo) listSeats(ctx context.Context, q string, args ...any) ([]model.Seat, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := make([]model.Seat, 0)
    for rows.Next() {
        s, err := scanSeat(rows)
        if err != nil {
            return nil, err
        }
        seats = append(seats, *s)
    }
    return seats, rows.Err()
}

// Update overwrites seat_number, location and status.  Returns
// sql.ErrNoRows when the seat does not exist.
func (r *SeatRepo) Update(ctx context.Context, id uint64, seatNumber, location string, status model.SeatStatus) (*model.Seat, error) {
    const q = `UPDATE seats SET seat_number = ?, location = ?, status = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, seatNumber, location, string(status), id)
    if err != nil {
        return nil, err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // RowsAffected is 0 both for a missing row and for a no-op
        // write; re-read to tell them apart.
        s, gerr := r.GetByID(ctx, id)
        if gerr != nil {
            return nil, gerr
        }
        return s, nil
    }
    return r.GetByID(ctx, id)
}

// Delete removes a seat from the catalog.  Returns sql.ErrNoRows when
// the seat does not exist.  Past reservations referencing the seat are
// intentionally kept for audit listing.
func (r *SeatRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE id = ?`, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return sql.ErrNoRows
    }
    return nil
}
