package core

import (
	"context"
	"fmt"
	"time"

	"broodcore/pkg/domain"
)

const (
	// defaultIncubationDays is the assumed lay-to-hatch interval when the
	// keeper does not supply an estimate.
	defaultIncubationDays = 63
	// hatchReminderLeadDays is how far ahead of the estimated hatch date the
	// reminder fires.
	hatchReminderLeadDays = 3
)

// ReminderCategoryCocoon groups cocoon hatch reminders so sweeps can cancel
// and reschedule them in bulk.
const ReminderCategoryCocoon = "cocoon"

// CocoonInput describes a newly laid egg sac.
type CocoonInput struct {
	FemaleID           string
	Date               string
	EstimatedHatchDate string
	EggCount           *int
	WantsReminder      bool
	Notes              *string
	Photos             []PhotoRef
}

// DefaultHatchDate computes the estimated hatch date for a lay date:
// 63 days (9 weeks) later.
func DefaultHatchDate(layDate string) (string, error) {
	t, err := time.Parse(domain.DateLayout, layDate)
	if err != nil {
		return "", domain.ValidationError{Field: "date", Message: "must be an ISO date (YYYY-MM-DD)"}
	}
	return t.AddDate(0, 0, defaultIncubationDays).Format(domain.DateLayout), nil
}

// LayCocoon records a new cocoon in state laid. When no estimated hatch date
// is supplied it defaults to the lay date plus 63 days, frozen at append
// time. When requested, a reminder is scheduled 3 days before the estimated
// hatch; scheduling failures are swallowed since the cocoon record is
// authoritative and the reminder is best-effort.
func (s *Service) LayCocoon(ctx context.Context, ownerID string, in CocoonInput) (LifecycleEvent, Result, error) {
	var appended LifecycleEvent
	var res Result
	err := s.instrument(ctx, "lay_cocoon", func(ctx context.Context) (string, error) {
		if err := validateISODate("date", in.Date); err != nil {
			return "", err
		}
		female, err := s.ownedSpecimen(ownerID, in.FemaleID)
		if err != nil {
			return "", err
		}
		if female.Sex != SexFemale {
			return "", domain.ValidationError{Field: "female_id", Message: "cocoon must be recorded on a female specimen"}
		}
		hatchDate := in.EstimatedHatchDate
		if hatchDate == "" {
			hatchDate, err = DefaultHatchDate(in.Date)
			if err != nil {
				return "", err
			}
		} else if err := validateISODate("estimated_hatch_date", hatchDate); err != nil {
			return "", err
		}

		ev := LifecycleEvent{
			SpecimenID:  in.FemaleID,
			OwnerID:     ownerID,
			Category:    CategoryCocoon,
			Title:       "Cocoon laid",
			Description: in.Notes,
			Date:        in.Date,
			Status:      domain.EventStatusInProgress,
			Cocoon: &CocoonData{
				FemaleID:           in.FemaleID,
				Status:             CocoonLaid,
				EstimatedHatchDate: hatchDate,
				EggCount:           in.EggCount,
			},
			Photos: in.Photos,
		}
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			appended, txErr = tx.AppendEvent(ev)
			return txErr
		})
		if err != nil {
			return "", err
		}

		if in.WantsReminder && hatchDate != "" {
			s.scheduleHatchReminder(ctx, female, hatchDate)
		}
		return appended.ID, nil
	})
	return appended, res, err
}

func (s *Service) scheduleHatchReminder(ctx context.Context, female Specimen, hatchDate string) {
	t, err := time.Parse(domain.DateLayout, hatchDate)
	if err != nil {
		return
	}
	remindAt := t.AddDate(0, 0, -hatchReminderLeadDays)
	title := fmt.Sprintf("Cocoon hatch check for %s", female.Name)
	body := fmt.Sprintf("Estimated hatch date %s is %d days away.", hatchDate, hatchReminderLeadDays)
	if _, ok := s.opts.reminders.ScheduleAt(ctx, ReminderCategoryCocoon, remindAt, title, body); !ok {
		s.opts.logger.Warn("hatch reminder not scheduled", "specimen", female.ID, "hatch_date", hatchDate)
	}
}

// cocoonTransitionFrom lists the legal source states per target state.
// Hatched and failed are absorbing.
var cocoonTransitionFrom = map[CocoonState][]CocoonState{
	CocoonIncubating: {CocoonLaid},
	CocoonFailed:     {CocoonLaid, CocoonIncubating},
	CocoonHatched:    {CocoonLaid, CocoonIncubating},
}

// transitionCocoon advances the cocoon state machine in place. Cocoon status
// fields are the sanctioned exception to event immutability.
func (s *Service) transitionCocoon(ctx context.Context, ownerID, eventID string, target CocoonState, mutate func(*CocoonData)) (LifecycleEvent, Result, error) {
	ev, err := s.ownedEvent(ownerID, eventID)
	if err != nil {
		return LifecycleEvent{}, Result{}, err
	}
	if ev.Category != CategoryCocoon || ev.Cocoon == nil {
		return LifecycleEvent{}, Result{}, domain.ValidationError{Field: "event_id", Message: "event is not a cocoon record"}
	}
	legal := false
	for _, from := range cocoonTransitionFrom[target] {
		if ev.Cocoon.Status == from {
			legal = true
			break
		}
	}
	if !legal {
		return LifecycleEvent{}, Result{}, domain.ValidationError{
			Field:   "cocoon_status",
			Message: fmt.Sprintf("cannot move cocoon from %s to %s", ev.Cocoon.Status, target),
		}
	}
	var updated LifecycleEvent
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateEvent(eventID, func(e *LifecycleEvent) error {
			e.Cocoon.Status = target
			if mutate != nil {
				mutate(e.Cocoon)
			}
			return nil
		})
		return txErr
	})
	return updated, res, err
}

// BeginIncubation moves a laid cocoon into incubation.
func (s *Service) BeginIncubation(ctx context.Context, ownerID, eventID string) (LifecycleEvent, Result, error) {
	var updated LifecycleEvent
	var res Result
	err := s.instrument(ctx, "begin_incubation", func(ctx context.Context) (string, error) {
		var err error
		updated, res, err = s.transitionCocoon(ctx, ownerID, eventID, CocoonIncubating, nil)
		return eventID, err
	})
	return updated, res, err
}

// MarkCocoonFailed moves a cocoon to the terminal failed state.
func (s *Service) MarkCocoonFailed(ctx context.Context, ownerID, eventID string) (LifecycleEvent, Result, error) {
	var updated LifecycleEvent
	var res Result
	err := s.instrument(ctx, "fail_cocoon", func(ctx context.Context) (string, error) {
		var err error
		updated, res, err = s.transitionCocoon(ctx, ownerID, eventID, CocoonFailed, func(c *CocoonData) {})
		return eventID, err
	})
	return updated, res, err
}

// HatchCocoon moves a cocoon to the terminal hatched state, records the
// hatched count, then materializes that many offspring from a template
// derived from the mother. The status update and the bulk creation are
// sequential, independent writes: a bulk failure is surfaced but the cocoon
// stays hatched.
func (s *Service) HatchCocoon(ctx context.Context, ownerID, eventID string, hatchedCount int, gen NameGenerator) (LifecycleEvent, BulkResult, error) {
	var updated LifecycleEvent
	var bulk BulkResult
	err := s.instrument(ctx, "hatch_cocoon", func(ctx context.Context) (string, error) {
		if hatchedCount < 1 {
			return eventID, domain.ValidationError{Field: "hatched_count", Message: "must be at least 1"}
		}
		ev, err := s.ownedEvent(ownerID, eventID)
		if err != nil {
			return eventID, err
		}
		if ev.Cocoon == nil {
			return eventID, domain.ValidationError{Field: "event_id", Message: "event is not a cocoon record"}
		}
		mother, err := s.ownedSpecimen(ownerID, ev.Cocoon.FemaleID)
		if err != nil {
			return eventID, err
		}

		count := hatchedCount
		updated, _, err = s.transitionCocoon(ctx, ownerID, eventID, CocoonHatched, func(c *CocoonData) {
			c.HatchedCount = &count
		})
		if err != nil {
			return eventID, err
		}

		if gen == nil {
			gen = DefaultNameGenerator(mother.Name)
		}
		template := Specimen{
			OwnerID:        ownerID,
			Species:        mother.Species,
			Sex:            SexUnknown,
			Stage:          StageBaby,
			Instar:         1,
			Active:         true,
			ParentFemaleID: &mother.ID,
			CocoonEventID:  &eventID,
		}
		bulk, err = s.CreateOffspring(ctx, template, hatchedCount, gen)
		return eventID, err
	})
	return updated, bulk, err
}

// UpcomingHatches lists the owner's open cocoons whose estimated hatch date
// falls within the lookback/lookahead window around now. Used by dashboards
// and the reminder sweep; this is a filtered read, not a separate state.
func (s *Service) UpcomingHatches(ctx context.Context, ownerID string, lookbackDays, lookaheadDays int) ([]LifecycleEvent, error) {
	events, err := s.store.ListEvents(EventQuery{
		OwnerID:  ownerID,
		Category: CategoryCocoon,
	})
	if err != nil {
		return nil, err
	}
	now := s.opts.clock.Now()
	from := now.AddDate(0, 0, -lookbackDays).Format(domain.DateLayout)
	until := now.AddDate(0, 0, lookaheadDays).Format(domain.DateLayout)
	var out []LifecycleEvent
	for _, ev := range events {
		if ev.Cocoon == nil {
			continue
		}
		if ev.Cocoon.Status != CocoonLaid && ev.Cocoon.Status != CocoonIncubating {
			continue
		}
		hatch := ev.Cocoon.EstimatedHatchDate
		if hatch == "" || hatch < from || hatch > until {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
