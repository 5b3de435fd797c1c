package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"broodcore/internal/core"
	"broodcore/pkg/domain"
)

const hatchLeadDays = 3

// Sweeper rebuilds the cocoon hatch reminders from current store state. Each
// sweep cancels the category and reschedules from scratch, so reminders stay
// consistent with cocoons hatched or failed since the last run.
type Sweeper struct {
	svc           *core.Service
	scheduler     core.ReminderScheduler
	clock         core.Clock
	log           zerolog.Logger
	lookbackDays  int
	lookaheadDays int
}

// NewSweeper constructs a sweeper. lookbackDays covers overdue cocoons;
// lookaheadDays bounds how far out reminders are created.
func NewSweeper(svc *core.Service, scheduler core.ReminderScheduler, clock core.Clock, log zerolog.Logger, lookbackDays, lookaheadDays int) *Sweeper {
	if clock == nil {
		clock = core.ClockFunc(func() time.Time { return time.Now().UTC() })
	}
	if lookaheadDays <= 0 {
		lookaheadDays = 7
	}
	return &Sweeper{
		svc:           svc,
		scheduler:     scheduler,
		clock:         clock,
		log:           log,
		lookbackDays:  lookbackDays,
		lookaheadDays: lookaheadDays,
	}
}

// Sweep runs one pass over all owners.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cancelled := s.scheduler.CancelByCategory(ctx, core.ReminderCategoryCocoon)
	scheduled := 0
	for _, ownerID := range s.svc.Owners(ctx) {
		upcoming, err := s.svc.UpcomingHatches(ctx, ownerID, s.lookbackDays, s.lookaheadDays)
		if err != nil {
			return fmt.Errorf("sweep owner %s: %w", ownerID, err)
		}
		for _, ev := range upcoming {
			hatch, err := time.Parse(domain.DateLayout, ev.Cocoon.EstimatedHatchDate)
			if err != nil {
				s.log.Warn().Str("event", ev.ID).Str("date", ev.Cocoon.EstimatedHatchDate).Msg("unparseable hatch date")
				continue
			}
			at := hatch.AddDate(0, 0, -hatchLeadDays)
			title := fmt.Sprintf("Cocoon hatch check (%s)", ev.SpecimenID)
			body := fmt.Sprintf("Cocoon %s is due to hatch around %s.", ev.ID, ev.Cocoon.EstimatedHatchDate)
			if _, ok := s.scheduler.ScheduleAt(ctx, core.ReminderCategoryCocoon, at, title, body); ok {
				scheduled++
			}
		}
	}
	s.log.Info().Int("cancelled", cancelled).Int("scheduled", scheduled).Msg("hatch sweep complete")
	return nil
}

// Start registers the sweep on a cron schedule and starts the runner. The
// returned cron owns the goroutine; callers stop it via Stop.
func (s *Sweeper) Start(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.log.Error().Err(err).Msg("hatch sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
