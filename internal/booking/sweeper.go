package booking

import (
    "context"
    "log"
    "time"
)

// Sweeper proactively expires due reservations on a fixed interval,
// independent of request traffic.  It is an explicitly owned
// background task: main launches Run in a goroutine and stops it by
// cancelling the context, so shutdown is clean and tests can call
// Service.ExpireDue directly instead of waiting on the ticker.
type Sweeper struct {
    svc      *Service
    interval time.Duration
}

// NewSweeper returns a Sweeper driving the given service.  A
// non-positive interval falls back to one hour, the reference cadence.
func NewSweeper(svc *Service, interval time.Duration) *Sweeper {
    if interval <= 0 {
        interval = time.Hour
    }
    return &Sweeper{svc: svc, interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is
// cancelled.  Sweep errors are logged and do not stop the loop; a
// failed cycle is silently made up for by the next one or by the lazy
// refresh on the next request.
func (s *Sweeper) Run(ctx context.Context) {
    s.sweep(ctx)
    t := time.NewTicker(s.interval)
    defer t.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Printf("sweeper: stopping: %v", ctx.Err())
            return
        case <-t.C:
            s.sweep(ctx)
        }
    }
}

func (s *Sweeper) sweep(ctx context.Context) {
    n, err := s.svc.ExpireDue(ctx)
    if err != nil {
        log.Printf("sweeper: sweep failed: %v", err)
        return
    }
    if n > 0 {
        log.Printf("sweeper: completed %d expired reservations", n)
    }
}
