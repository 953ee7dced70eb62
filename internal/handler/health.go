package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/arashpm/intern-seat-reservation/internal/model"
    "github.com/arashpm/intern-seat-reservation/internal/repository"
)

// HealthHandler reports process liveness and database reachability.
type HealthHandler struct {
    DB           *sql.DB
    Reservations *repository.ReservationRepo
}

func NewHealthHandler(db *sql.DB, reservations *repository.ReservationRepo) *HealthHandler {
    return &HealthHandler{DB: db, Reservations: reservations}
}

// Live handles GET /healthz: a plain liveness probe with no
// dependencies, so load balancers can poll it cheaply.
func (h *HealthHandler) Live(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready handles GET /healthz/db: pings the database and reports basic
// reservation counts so an operator can see at a glance that the
// storage layer is answering queries.
func (h *HealthHandler) Ready(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
    defer cancel()

    if err := h.DB.PingContext(ctx); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{
            "status": "unavailable",
            "error":  "database unreachable",
        })
    }

    active, err := h.Reservations.CountByStatus(ctx, model.StatusActive)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{
            "status": "unavailable",
            "error":  "database error",
        })
    }
    completed, err := h.Reservations.CountByStatus(ctx, model.StatusCompleted)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{
            "status": "unavailable",
            "error":  "database error",
        })
    }

    return c.JSON(http.StatusOK, echo.Map{
        "status":                 "ok",
        "active_reservations":    active,
        "completed_reservations": completed,
    })
}
