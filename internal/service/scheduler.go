package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const reindexTimeout = 30 * time.Second

// StartPINReindexer rebuilds the Redis PIN index from the active events on a
// fixed interval, starting immediately. Callers shut the scheduler down.
func (s *EventService) StartPINReindexer(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), reindexTimeout)
			defer cancel()

			n, err := s.ReindexPINs(ctx)
			if err != nil {
				log.Printf("[Scheduler] PIN reindex failed after %d events: %v", n, err)
				return
			}
			log.Printf("[Scheduler] Reindexed %d active event PINs", n)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule PIN reindex: %w", err)
	}

	sched.Start()
	return sched, nil
}
