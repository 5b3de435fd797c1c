package core

import (
	"context"
	"fmt"

	"broodcore/pkg/domain"
)

// MoltInput describes one stage progression to record.
type MoltInput struct {
	SpecimenID       string
	Date             string
	PreviousStage    int
	NewStage         int
	PreviousLengthMM *float64
	NewLengthMM      *float64
	Notes            *string
	Photos           []PhotoRef
}

// SpecimenSyncError reports that the molt event was durably appended but the
// follow-up denormalized specimen update failed. The event log remains the
// source of truth; the specimen's instar and length are stale until the next
// successful write.
type SpecimenSyncError struct {
	EventID string
	Err     error
}

func (e SpecimenSyncError) Error() string {
	return fmt.Sprintf("event %s appended but specimen update failed: %v", e.EventID, e.Err)
}

func (e SpecimenSyncError) Unwrap() error { return e.Err }

// RecordMolt validates and appends a molting event, then updates the
// specimen's denormalized instar and last-measured length. The two effects
// are separate writes: if the specimen update fails the appended event
// stands and a SpecimenSyncError is returned.
func (s *Service) RecordMolt(ctx context.Context, ownerID string, in MoltInput) (LifecycleEvent, Result, error) {
	var appended LifecycleEvent
	var res Result
	err := s.instrument(ctx, "record_molt", func(ctx context.Context) (string, error) {
		if err := validateISODate("date", in.Date); err != nil {
			return "", err
		}
		if in.NewStage <= in.PreviousStage {
			return "", domain.ValidationError{Field: "new_stage", Message: "must be greater than previous stage"}
		}
		if _, err := s.ownedSpecimen(ownerID, in.SpecimenID); err != nil {
			return "", err
		}

		ev := LifecycleEvent{
			SpecimenID:  in.SpecimenID,
			OwnerID:     ownerID,
			Category:    CategoryMolting,
			Title:       fmt.Sprintf("Molted to instar %d", in.NewStage),
			Description: in.Notes,
			Date:        in.Date,
			Status:      domain.EventStatusCompleted,
			Molting: &MoltingData{
				PreviousStage:    in.PreviousStage,
				NewStage:         in.NewStage,
				PreviousLengthMM: in.PreviousLengthMM,
				NewLengthMM:      in.NewLengthMM,
			},
			Photos: in.Photos,
		}

		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			appended, txErr = tx.AppendEvent(ev)
			return txErr
		})
		if err != nil {
			return "", err
		}

		if _, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			_, txErr := tx.UpdateSpecimen(in.SpecimenID, func(sp *Specimen) error {
				sp.Instar = in.NewStage
				if in.NewLengthMM != nil {
					sp.Measurements.LengthMM = *in.NewLengthMM
					sp.Measurements.LastMeasured = in.Date
				}
				return nil
			})
			return txErr
		}); err != nil {
			return appended.ID, SpecimenSyncError{EventID: appended.ID, Err: err}
		}
		return appended.ID, nil
	})
	return appended, res, err
}
