// Package reminder tells the user when saved words become due while no
// session is running.
package reminder

import (
	"context"
	"log"
	"time"

	"github.com/example/wordloop/internal/storage"
	"github.com/example/wordloop/pkg/models"
	"github.com/go-co-op/gocron"
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(count int) error
}

// Config controls when reminders are sent
type Config struct {
	// Minutes between checks
	EveryMinutes int
	// Reminders are only sent from StartHour to EndHour inclusive
	StartHour int
	EndHour   int
}

// Reminder periodically counts due words in the saved state
type Reminder struct {
	scheduler *gocron.Scheduler
	store     storage.Store
	notifier  Notifier
	cfg       Config
	now       func() time.Time
}

// New creates a new reminder instance
func New(store storage.Store, notifier Notifier, cfg Config) *Reminder {
	if cfg.EveryMinutes <= 0 {
		cfg.EveryMinutes = 60
	}
	return &Reminder{
		scheduler: gocron.NewScheduler(time.Local),
		store:     store,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Start begins running the check in the background
func (r *Reminder) Start() error {
	if _, err := r.scheduler.Every(r.cfg.EveryMinutes).Minutes().Do(r.check); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled checks
func (r *Reminder) Stop() {
	r.scheduler.Stop()
}

func (r *Reminder) check() {
	if _, err := r.RunCheck(context.Background()); err != nil {
		log.Printf("Error checking due words: %v", err)
	}
}

// RunCheck counts due words now and notifies when there are any. It returns
// the number of due words, or 0 outside notification hours.
func (r *Reminder) RunCheck(ctx context.Context) (int, error) {
	now := r.now()
	if hour := now.Hour(); hour < r.cfg.StartHour || hour > r.cfg.EndHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			hour, r.cfg.StartHour, r.cfg.EndHour)
		return 0, nil
	}

	state, err := r.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	count := CountDue(state, models.FromTime(now))
	if count == 0 {
		return 0, nil
	}
	return count, r.notifier.SendReminders(count)
}

// CountDue returns how many queued words are due at now
func CountDue(state models.State, now models.Timestamp) int {
	count := 0
	for _, q := range state.Queues {
		for _, e := range q {
			if e.Due <= now {
				count++
			}
		}
	}
	return count
}
