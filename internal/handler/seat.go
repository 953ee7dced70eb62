package handler

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arashpm/intern-seat-reservation/internal/booking"
    "github.com/arashpm/intern-seat-reservation/internal/model"
    "github.com/arashpm/intern-seat-reservation/internal/repository"
)

// SeatHandler serves the seat catalogue: availability browsing for
// interns and full CRUD for admins.
type SeatHandler struct {
    Seats *repository.SeatRepo
    Svc   *booking.Service // lazy-refresh before availability reads
}

func NewSeatHandler(seats *repository.SeatRepo, svc *booking.Service) *SeatHandler {
    return &SeatHandler{Seats: seats, Svc: svc}
}

type seatReq struct {
    SeatNumber string `json:"seat_number"`
    Location   string `json:"location"`
    Status     string `json:"status"`
}

// ListAvailable handles GET /v1/seats.  Without ?date= it returns every
// seat in state "available"; with ?date=YYYY-MM-DD it additionally
// filters out seats already actively booked for that day, expiring
// stale reservations first so yesterday's bookings never block a seat.
func (h *SeatHandler) ListAvailable(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    var date *time.Time
    if ds := c.QueryParam("date"); ds != "" {
        d, err := booking.ParseDate(ds)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
        }
        date = &d
        if h.Svc != nil {
            if _, err := h.Svc.ExpireDue(ctx); err != nil {
                log.Printf("seat handler: expiry refresh failed: %v", err)
            }
        }
    }

    seats, err := h.Seats.ListAvailable(ctx, date)
    if err != nil {
        log.Printf("seat handler: list available failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": seats})
}

// ListAll handles GET /v1/admin/seats and returns every seat
// regardless of status.
func (h *SeatHandler) ListAll(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    seats, err := h.Seats.ListAll(ctx)
    if err != nil {
        log.Printf("seat handler: list all failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": seats})
}

// Create handles POST /v1/admin/seats.
func (h *SeatHandler) Create(c echo.Context) error {
    var req seatReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.SeatNumber == "" || req.Location == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number and location are required"})
    }
    if req.Status == "" {
        req.Status = string(model.SeatAvailable)
    }
    if !model.ValidSeatStatus(req.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat status"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    seat := &model.Seat{
        SeatNumber: req.SeatNumber,
        Location:   req.Location,
        Status:     model.SeatStatus(req.Status),
    }
    if err := h.Seats.Create(ctx, seat); err != nil {
        log.Printf("seat handler: create failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusCreated, seat)
}

// Update handles PUT /v1/admin/seats/:id.
func (h *SeatHandler) Update(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
    }
    var req seatReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.SeatNumber == "" || req.Location == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number and location are required"})
    }
    if !model.ValidSeatStatus(req.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat status"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    seat, err := h.Seats.Update(ctx, id, req.SeatNumber, req.Location, model.SeatStatus(req.Status))
    if err != nil {
        if errors.Is(err, repository.ErrSeatNotFound) || errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
        }
        log.Printf("seat handler: update failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, seat)
}

// Delete handles DELETE /v1/admin/seats/:id.  Reservations referencing
// the seat survive for audit; detail reads tolerate the missing seat.
func (h *SeatHandler) Delete(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Seats.Delete(ctx, id); err != nil {
        if errors.Is(err, sql.ErrNoRows) || errors.Is(err, repository.ErrSeatNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
        }
        log.Printf("seat handler: delete failed: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.NoContent(http.StatusNoContent)
}
