// Command mq-worker runs the reservation event consumer on its own, for
// deployments that keep log processing off the API servers.
package main

import (
    "log"

    "github.com/joho/godotenv"

    "github.com/arashpm/intern-seat-reservation/internal/queue"
)

func main() {
    _ = godotenv.Load()
    log.Printf("mq-worker: consuming %s", "reservation.events")
    if err := queue.StartReservationConsumer(); err != nil {
        log.Fatalf("mq-worker: %v", err)
    }
}
