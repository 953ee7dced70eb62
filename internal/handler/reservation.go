package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arashpm/intern-seat-reservation/internal/booking"
    "github.com/arashpm/intern-seat-reservation/internal/model"
    "github.com/arashpm/intern-seat-reservation/internal/queue"
    "github.com/arashpm/intern-seat-reservation/internal/repository"
    queue_publisher "github.com/arashpm/intern-seat-reservation/internal/service"
)

// ReservationHandler exposes the booking engine over HTTP.  All
// conflict and lifecycle decisions live in the booking service; this
// layer only parses requests, maps sentinel errors to status codes and
// fires lifecycle events.
type ReservationHandler struct {
    Svc *booking.Service
}

func NewReservationHandler(svc *booking.Service) *ReservationHandler {
    if svc == nil {
        panic("nil service passed to NewReservationHandler")
    }
    return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
    SeatID   uint64 `json:"seat_id"`
    Date     string `json:"date"`      // YYYY-MM-DD
    TimeSlot string `json:"time_slot"` // morning | afternoon | full-day, defaults to full-day
}

// Create handles POST /v1/reservations.  Responds 201 with the
// resolved reservation, or 400 with a message naming the violated
// rule.  The messages deliberately do not identify whose reservation
// caused a conflict.
func (h *ReservationHandler) Create(c echo.Context) error {
    internID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.SeatID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id is required"})
    }

    detail, err := h.Svc.Create(c.Request().Context(), internID, req.SeatID, req.Date, req.TimeSlot)
    if err != nil {
        return bookingError(c, err)
    }
    publishEvent(queue.EventReservationCreated, detail)
    return c.JSON(http.StatusCreated, detail)
}

// ListMine handles GET /v1/reservations/my.  Returns the intern's own
// reservations, newest date first, after a lazy refresh.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    internID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items, err := h.Svc.ListForIntern(c.Request().Context(), internID)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Cancel handles PUT /v1/reservations/:id/cancel.  404 covers a
// missing, foreign or already-terminal reservation alike.
func (h *ReservationHandler) Cancel(c echo.Context) error {
    internID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    detail, err := h.Svc.Cancel(c.Request().Context(), internID, id)
    if err != nil {
        return bookingError(c, err)
    }
    publishEvent(queue.EventReservationCancelled, detail)
    return c.JSON(http.StatusOK, detail)
}

// ListAll handles GET /v1/admin/reservations with optional ?date= and
// ?intern= filters.  Admin-only; the role gate is applied in the router.
func (h *ReservationHandler) ListAll(c echo.Context) error {
    var f repository.ListFilter
    if ds := c.QueryParam("date"); ds != "" {
        d, err := booking.ParseDate(ds)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
        }
        f.Date = &d
    }
    if is := c.QueryParam("intern"); is != "" {
        id, err := strconv.ParseUint(is, 10, 64)
        if err != nil || id == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid intern id"})
        }
        f.InternID = id
    }
    items, err := h.Svc.ListAll(c.Request().Context(), f)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Sweep handles POST /v1/admin/reservations/sweep: a manual trigger of
// the expiry pass, returning how many reservations were completed.
func (h *ReservationHandler) Sweep(c echo.Context) error {
    count, err := h.Svc.ExpireDue(c.Request().Context())
    if err != nil {
        log.Printf("manual sweep failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"updated_count": count})
}

// bookingError maps booking sentinels onto HTTP responses.  Anything
// unrecognized is a storage failure: logged with context, reported
// generically.
func bookingError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, booking.ErrInvalidDate):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
    case errors.Is(err, booking.ErrInvalidSlot):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time slot"})
    case errors.Is(err, booking.ErrSeatUnknown):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat not found"})
    case errors.Is(err, booking.ErrTooSoon):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Seat must be reserved at least 1 hour in advance"})
    case errors.Is(err, booking.ErrInternConflict):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "You already have a reservation for this date"})
    case errors.Is(err, booking.ErrSeatConflict):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "Seat is already booked for this date"})
    case errors.Is(err, booking.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "Reservation not found or cannot be cancelled"})
    }
    log.Printf("reservation handler: storage failure: %v", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// publishEvent fires a lifecycle event without blocking or failing the
// request; the publisher logs its own errors.
func publishEvent(typ string, d *model.ReservationDetail) {
    ev := queue.NewReservationEvent(typ, d)
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        _ = queue_publisher.PublishReservationEvent(ctx, ev)
    }()
}
