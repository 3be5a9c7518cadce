package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Announcer delivers a fired reminder to the user.
type Announcer interface {
	Announce(r *Reminder)
}

// Scheduler fires reminders as they come due. It keeps a single timer armed
// to the manager's earliest due instant and re-arms whenever the manager
// signals that the front of the queue changed.
type Scheduler struct {
	manager   *Manager
	announcer Announcer
	retry     time.Duration
}

// NewScheduler builds a scheduler that announces fired reminders through
// announcer.
func NewScheduler(manager *Manager, announcer Announcer) *Scheduler {
	return &Scheduler{
		manager:   manager,
		announcer: announcer,
		retry:     30 * time.Second,
	}
}

// Run blocks until ctx is cancelled. Reminders already past due fire on the
// first pass, including ones restored from a previous run.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().Msg("reminder scheduler started")

	for {
		s.fireDue()

		var timer *time.Timer
		var timerC <-chan time.Time
		if next, ok := s.manager.NextDue(); ok {
			d := next.Sub(s.manager.Now())
			if d <= 0 {
				// Still due but could not be retired; back off instead of
				// spinning on a past-due instant.
				d = s.retry
			}
			timer = time.NewTimer(d)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			log.Info().Msg("reminder scheduler stopping")
			return nil
		case <-s.manager.Wake():
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (s *Scheduler) fireDue() {
	for _, r := range s.manager.FireDue(s.manager.Now()) {
		log.Info().Str("reminder_id", r.ID).Time("due_at", r.DueAt).Msg("reminder fired")
		s.announce(r)
	}
}

// announce shields the loop from a misbehaving announcer; a panic there
// must not take the scheduler down with it.
func (s *Scheduler) announce(r *Reminder) {
	defer func() {
		if v := recover(); v != nil {
			log.Error().Interface("panic", v).Str("reminder_id", r.ID).Msg("announcer panicked")
		}
	}()
	s.announcer.Announce(r)
}
