package main

import (
    "context"
    "log"
    "net/http"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/arashpm/intern-seat-reservation/internal/booking"
    "github.com/arashpm/intern-seat-reservation/internal/config"
    "github.com/arashpm/intern-seat-reservation/internal/database"
    "github.com/arashpm/intern-seat-reservation/internal/handler"
    "github.com/arashpm/intern-seat-reservation/internal/middleware"
    "github.com/arashpm/intern-seat-reservation/internal/model"
    "github.com/arashpm/intern-seat-reservation/internal/queue"
    "github.com/arashpm/intern-seat-reservation/internal/repository"
    "github.com/arashpm/intern-seat-reservation/internal/router"
    queue_publisher "github.com/arashpm/intern-seat-reservation/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    seats := repository.NewSeatRepo(db)
    reservations := repository.NewReservationRepo(db)

    svc := booking.NewService(reservations, seats)
    svc.OnExpired = func(r model.Reservation) {
        ev := queue.NewExpiryEvent(r)
        go func() {
            ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
            defer cancel()
            _ = queue_publisher.PublishReservationEvent(ctx, ev)
        }()
    }

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    // Background expiry sweep; the service also refreshes lazily on reads,
    // the sweeper just bounds how stale an abandoned row can get.
    sweeper := booking.NewSweeper(svc, time.Duration(cfg.SweepIntervalMin)*time.Minute)
    go sweeper.Run(ctx)

    // Reservation event consumer writes logs/reservations.log.
    go func() {
        if err := queue.StartReservationConsumer(); err != nil {
            log.Printf("reservation consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Logger())
    e.Use(echomw.Recover())

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting disabled")
    }
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    router.RegisterHealth(e, handler.NewHealthHandler(db, reservations))
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterBooking(e, handler.NewSeatHandler(seats, svc), handler.NewReservationHandler(svc), cfg.JWTSecret)

    addr := ":" + cfg.Port
    go func() {
        log.Printf("listening on %s (env=%s)", addr, cfg.Env)
        if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    <-ctx.Done()
    log.Printf("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Printf("shutdown: %v", err)
    }
}
