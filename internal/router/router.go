// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/arashpm/intern-seat-reservation/internal/handler"
    "github.com/arashpm/intern-seat-reservation/internal/middleware"
    "github.com/arashpm/intern-seat-reservation/internal/model"
)

// RegisterHealth registers the unauthenticated health endpoints: a bare
// liveness probe for load balancers and a readiness probe that also
// checks the database.
func RegisterHealth(e *echo.Echo, h *handler.HealthHandler) {
    e.GET("/healthz", h.Live)
    e.GET("/healthz/db", h.Ready)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth, while the
// session-introspection endpoint lives under the protected /v1 group.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh) // rotates the refresh token
    // Logout does not require a JWT; it accepts a JSON body containing a
    // refresh_token and invalidates that token, answering 204 on success.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole(model.RoleIntern, model.RoleAdmin))
    auth.GET("/me", a.Me)
}

// RegisterBooking registers the seat browsing and reservation endpoints.
// All routes require a valid access token; admin routes additionally
// require the ADMIN role.
func RegisterBooking(e *echo.Echo, s *handler.SeatHandler, r *handler.ReservationHandler, jwtSecret string) {
    v1 := e.Group("/v1")
    v1.Use(middleware.JWTAuth(jwtSecret))
    v1.Use(middleware.RequireRole(model.RoleIntern, model.RoleAdmin))

    // Seat browsing with optional ?date= availability filtering.
    v1.GET("/seats", s.ListAvailable)

    // Reservation lifecycle for the authenticated intern.
    v1.POST("/reservations", r.Create)
    v1.GET("/reservations/my", r.ListMine)
    v1.PUT("/reservations/:id/cancel", r.Cancel)

    admin := e.Group("/v1/admin")
    admin.Use(middleware.JWTAuth(jwtSecret))
    admin.Use(middleware.RequireRole(model.RoleAdmin))

    admin.GET("/seats", s.ListAll)
    admin.POST("/seats", s.Create)
    admin.PUT("/seats/:id", s.Update)
    admin.DELETE("/seats/:id", s.Delete)

    admin.GET("/reservations", r.ListAll)
    admin.POST("/reservations/sweep", r.Sweep)
}
