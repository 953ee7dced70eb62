package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/arashpm/intern-seat-reservation/internal/model"
)

// ReservationRepo provides access to the reservations table.  All
// timestamp columns are DATETIME; the day column is a plain DATE so
// that equality comparisons are exact calendar-day matches.
//
// Expected schema:
//
//	CREATE TABLE reservations (
//	  id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
//	  intern_id  BIGINT UNSIGNED NOT NULL,
//	  seat_id    BIGINT UNSIGNED NOT NULL,
//	  day        DATE NOT NULL,
//	  time_slot  ENUM('morning','afternoon','full-day') NOT NULL DEFAULT 'full-day',
//	  status     ENUM('active','cancelled','completed') NOT NULL DEFAULT 'active',
//	  active_token TINYINT AS (IF(status = 'active', 1, NULL)) STORED,
//	  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
//	  UNIQUE KEY uq_intern_day_active (intern_id, day, active_token),
//	  UNIQUE KEY uq_seat_day_active   (seat_id,   day, active_token)
//	);
//
// active_token is 1 while the row is active and NULL afterwards, and
// MySQL unique indexes ignore NULLs, so terminal rows never collide.
// The insert is therefore the single atomic authority for both
// uniqueness invariants; the FindActive* pre-checks exist only to
// return friendly conflict messages before attempting the write.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, intern_id, seat_id, day, time_slot, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
    var r model.Reservation
    var slot, status string
    if err := row.Scan(&r.ID, &r.InternID, &r.SeatID, &r.Date, &slot, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
        return nil, err
    }
    r.TimeSlot = model.Slot(slot)
    r.Status = model.Status(status)
    return &r, nil
}

// FindActiveByIntern returns the intern's active reservation for the
// given normalized date, or nil when none exists.
func (r *ReservationRepo) FindActiveByIntern(ctx context.Context, internID uint64, date time.Time) (*model.Reservation, error) {
    const q = `SELECT ` + reservationCols + ` FROM reservations
               WHERE intern_id = ? AND day = ? AND status = 'active' LIMIT 1`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, internID, date.Format(model.DateFormat)))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    return res, err
}

// FindActiveBySeat returns the active reservation holding the seat on
// the given normalized date, or nil when the seat is free.
func (r *ReservationRepo) FindActiveBySeat(ctx context.Context, seatID uint64, date time.Time) (*model.Reservation, error) {
    const q = `SELECT ` + reservationCols + ` FROM reservations
               WHERE seat_id = ? AND day = ? AND status = 'active' LIMIT 1`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, seatID, date.Format(model.DateFormat)))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    return res, err
}

// Create inserts a new active reservation.  On success the generated
// ID and DB-assigned timestamps are populated on res.  A duplicate-key
// violation is classified by index name into ErrInternTaken or
// ErrSeatTaken; any other error is an ordinary storage failure.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations (intern_id, seat_id, day, time_slot, status)
               VALUES (?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        res.InternID, res.SeatID, res.Date.Format(model.DateFormat), string(res.TimeSlot), string(model.StatusActive))
    if err != nil {
        var me *mysql.MySQLError
        if errors.As(err, &me) && me.Number == 1062 {
            if strings.Contains(me.Message, "uq_seat_day_active") {
                return ErrSeatTaken
            }
            return ErrInternTaken
        }
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    // Query back the full row to populate timestamps and defaults.
    const sel = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
    full, err := scanReservation(r.db.QueryRowContext(ctx, sel, res.ID))
    if err != nil {
        return err
    }
    *res = *full
    return nil
}

// SetStatus moves an active reservation into the given terminal state
// and returns the updated row.  The status = 'active' guard makes the
// transition one-way even when a cancel races the sweeper: the loser
// affects zero rows and gets (nil, nil).
func (r *ReservationRepo) SetStatus(ctx context.Context, id uint64, to model.Status) (*model.Reservation, error) {
    const q = `UPDATE reservations SET status = ? WHERE id = ? AND status = 'active'`
    result, err := r.db.ExecContext(ctx, q, string(to), id)
    if err != nil {
        return nil, err
    }
    n, err := result.RowsAffected()
    if err != nil {
        return nil, err
    }
    if n == 0 {
        return nil, nil
    }
    const sel = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
    return scanReservation(r.db.QueryRowContext(ctx, sel, id))
}

// GetByID fetches a reservation by id, returning nil when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, nil
    }
    return res, err
}

// ListActive returns every reservation currently in status active.
// Used exclusively by the expiry sweep.
func (r *ReservationRepo) ListActive(ctx context.Context) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationCols + ` FROM reservations WHERE status = 'active'`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Reservation
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    return out, rows.Err()
}

// ListFilter narrows the admin listing.  Zero values mean "no filter".
type ListFilter struct {
    Date     *time.Time // normalized calendar day
    InternID uint64
}

// Seats and users are LEFT JOINed: reservations are never physically
// deleted, so they must keep listing even after their seat is removed
// from the catalog.
const detailQuery = `SELECT r.id, r.seat_id, s.seat_number, s.location,
                            r.day, r.time_slot, r.status,
                            r.intern_id, u.email, r.created_at
                     FROM reservations r
                     LEFT JOIN seats s ON s.id = r.seat_id
                     LEFT JOIN users u ON u.id = r.intern_id`

func scanDetail(rows *sql.Rows) (model.ReservationDetail, error) {
    var d model.ReservationDetail
    var day, createdAt time.Time
    var slot, status string
    var seatNumber, location, email sql.NullString
    err := rows.Scan(&d.ID, &d.SeatID, &seatNumber, &location,
        &day, &slot, &status, &d.InternID, &email, &createdAt)
    if err != nil {
        return d, err
    }
    d.SeatNumber = seatNumber.String
    d.Location = location.String
    d.InternEmail = email.String
    d.Date = day.Format(model.DateFormat)
    d.TimeSlot = model.Slot(slot)
    d.Status = model.Status(status)
    d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
    return d, nil
}

func collectDetails(rows *sql.Rows) ([]model.ReservationDetail, error) {
    defer rows.Close()
    details := make([]model.ReservationDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows)
        if err != nil {
            return nil, err
        }
        details = append(details, d)
    }
    return details, rows.Err()
}

// ListByIntern returns all of an intern's reservations with seat
// details, newest date first.
func (r *ReservationRepo) ListByIntern(ctx context.Context, internID uint64) ([]model.ReservationDetail, error) {
    q := detailQuery + ` WHERE r.intern_id = ? ORDER BY r.day DESC, r.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, internID)
    if err != nil {
        return nil, err
    }
    return collectDetails(rows)
}

// List returns reservations matching the filter with seat and intern
// details, newest date first.  Admin-only listing.
func (r *ReservationRepo) List(ctx context.Context, f ListFilter) ([]model.ReservationDetail, error) {
    q := detailQuery
    conds := make([]string, 0, 2)
    args := make([]any, 0, 2)
    if f.Date != nil {
        conds = append(conds, "r.day = ?")
        args = append(args, f.Date.Format(model.DateFormat))
    }
    if f.InternID != 0 {
        conds = append(conds, "r.intern_id = ?")
        args = append(args, f.InternID)
    }
    if len(conds) > 0 {
        q += " WHERE " + strings.Join(conds, " AND ")
    }
    q += ` ORDER BY r.day DESC, r.created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    return collectDetails(rows)
}

// GetDetail resolves a single reservation with seat and intern fields,
// returning nil when absent.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
    q := detailQuery + ` WHERE r.id = ?`
    rows, err := r.db.QueryContext(ctx, q, id)
    if err != nil {
        return nil, err
    }
    details, err := collectDetails(rows)
    if err != nil {
        return nil, err
    }
    if len(details) == 0 {
        return nil, nil
    }
    return &details[0], nil
}

// CountByStatus returns the number of reservations in a given status.
// Used by the health endpoint.
func (r *ReservationRepo) CountByStatus(ctx context.Context, status model.Status) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM reservations WHERE status = ?`, string(status)).Scan(&n)
    return n, err
}
