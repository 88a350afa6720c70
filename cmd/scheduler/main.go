// The scheduler binary runs the daily recurring-charge batch. It also fires
// once at startup: the redis lock makes a second run on the same day a no-op,
// so operators can execute it ad hoc without double charging.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscription-billing-be/internal/bootstrap"
	"subscription-billing-be/internal/config"
	"subscription-billing-be/pkg/database"
)

func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := container.SchedulerService.StartWorker(ctx); err != nil {
		log.Panicf("Unable to start charge worker: %v", err)
	}

	runOnce := func() {
		enqueued, err := container.SchedulerService.RunDaily(ctx)
		if err != nil {
			log.Printf("Daily charge run failed: %v", err)
			return
		}
		log.Printf("Daily charge run enqueued %d subscriptions", enqueued)
	}

	runOnce()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-time.After(untilNextRun(time.Now(), cfg.Scheduler.RunHour)):
			runOnce()
		case sig := <-sigCh:
			log.Printf("Received %v, waiting for in-flight charges...", sig)
			cancel()
			container.SchedulerService.Wait()
			return
		}
	}
}

func untilNextRun(now time.Time, runHour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), runHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
