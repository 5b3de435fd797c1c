package core

import (
	"context"

	"broodcore/pkg/domain"
)

var validCategories = map[EventCategory]struct{}{
	CategoryMolting: {},
	CategoryMating:  {},
	CategoryCocoon:  {},
	CategoryFeeding: {},
	CategoryOther:   {},
}

var validStatuses = map[EventStatus]struct{}{
	domain.EventStatusCompleted:  {},
	domain.EventStatusScheduled:  {},
	domain.EventStatusCancelled:  {},
	domain.EventStatusInProgress: {},
}

// AppendEvent validates and appends a lifecycle event to the log. The event
// is scoped to the specimen's owning account; appends never overwrite.
func (s *Service) AppendEvent(ctx context.Context, ownerID string, ev LifecycleEvent) (LifecycleEvent, Result, error) {
	var appended LifecycleEvent
	var res Result
	err := s.instrument(ctx, "append_event", func(ctx context.Context) (string, error) {
		if ev.SpecimenID == "" {
			return "", domain.ValidationError{Field: "specimen_id", Message: "required"}
		}
		if err := validateISODate("date", ev.Date); err != nil {
			return "", err
		}
		if _, ok := validCategories[ev.Category]; !ok {
			return "", domain.ValidationError{Field: "category", Message: "unknown event category"}
		}
		if ev.Status == "" {
			ev.Status = domain.EventStatusCompleted
		}
		if _, ok := validStatuses[ev.Status]; !ok {
			return "", domain.ValidationError{Field: "status", Message: "unknown event status"}
		}
		if _, err := s.ownedSpecimen(ownerID, ev.SpecimenID); err != nil {
			return "", err
		}
		ev.OwnerID = ownerID
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			appended, txErr = tx.AppendEvent(ev)
			return txErr
		})
		return appended.ID, err
	})
	return appended, res, err
}

// SpecimenEvents lists a specimen's events newest first, optionally filtered
// by category and capped at limit.
func (s *Service) SpecimenEvents(ctx context.Context, ownerID, specimenID string, category EventCategory, limit int) ([]LifecycleEvent, error) {
	if _, err := s.ownedSpecimen(ownerID, specimenID); err != nil {
		return nil, err
	}
	return s.store.ListEvents(EventQuery{
		OwnerID:    ownerID,
		SpecimenID: specimenID,
		Category:   category,
		Limit:      limit,
	})
}

// OwnerEvents lists all events for one owning account, newest first.
func (s *Service) OwnerEvents(ctx context.Context, ownerID string, category EventCategory, limit int) ([]LifecycleEvent, error) {
	return s.store.ListEvents(EventQuery{
		OwnerID:  ownerID,
		Category: category,
		Limit:    limit,
	})
}

// Event retrieves one event scoped to its owning account.
func (s *Service) Event(ctx context.Context, ownerID, id string) (LifecycleEvent, error) {
	return s.ownedEvent(ownerID, id)
}

// DeleteEvent removes an event from the log.
func (s *Service) DeleteEvent(ctx context.Context, ownerID, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_event", func(ctx context.Context) (string, error) {
		if _, err := s.ownedEvent(ownerID, id); err != nil {
			return id, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteEvent(id)
		})
		return id, err
	})
	return res, err
}
