package jobs

import (
	"fmt"
	"log"
	"time"

	"creativedesk/internal/services"

	"github.com/go-co-op/gocron/v2"
)

// NewScheduler creates the background job scheduler.
func NewScheduler() (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return scheduler, nil
}

// RegisterAutosave schedules a periodic snapshot of the current session,
// on top of the synchronous per-mutation persist.
func RegisterAutosave(scheduler gocron.Scheduler, sessions *services.SessionService, interval time.Duration) error {
	_, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			sessions.Persist()
		}),
		gocron.WithName("session_autosave"),
	)
	if err != nil {
		return fmt.Errorf("failed to create autosave job: %w", err)
	}

	log.Printf("📅 Registered session autosave job (every %v)", interval)
	return nil
}
