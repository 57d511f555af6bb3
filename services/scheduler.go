// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartFreezeScheduler runs the deadline freeze once a minute: campaigns
// whose deadline has passed get their participant totals snapshotted into
// points_at_deadline and are marked frozen.
func (s *PointsService) StartFreezeScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if err := s.FreezeDuePoints(time.Now().UTC()); err != nil {
				log.Printf("[Scheduler] Failed to freeze due campaigns: %v", err)
			}
		}),
	)
}
