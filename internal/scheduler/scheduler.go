package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-widget/internal/format"
)

// DefaultNudgeDelay coalesces bursts of manual refresh requests.
const DefaultNudgeDelay = 500 * time.Millisecond

// Refresher re-fetches whatever is currently displayed.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refreshes the displayed city.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
	nudge     *format.Debouncer
}

// New creates a new Scheduler. An interval of zero disables the periodic job
// but Nudge still works.
func New(target Refresher, interval, timeout time.Duration) *Scheduler {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		timeout:   timeout,
	}
	s.nudge = format.Debounce(s.run, DefaultNudgeDelay)
	return s
}

// WithNudgeDelay changes the debounce window used by Nudge.
func (s *Scheduler) WithNudgeDelay(d time.Duration) *Scheduler {
	s.nudge.Cancel()
	s.nudge = format.Debounce(s.run, d)
	return s
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("INFO: scheduler: refresh interval not set; periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Nudge requests a refresh soon. Calls within the debounce window collapse
// into one refresh.
func (s *Scheduler) Nudge() {
	s.nudge.Call()
}

// Stop stops the scheduler and cancels any pending nudge.
func (s *Scheduler) Stop() {
	s.nudge.Cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) run() {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Println("DEBUG: scheduler: refreshing displayed city")
	if err := s.target.Refresh(ctx); err != nil {
		log.Printf("ERROR: scheduler: refresh failed: %v", err)
	}
}
