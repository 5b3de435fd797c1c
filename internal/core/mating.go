package core

import (
	"context"
	"fmt"

	"broodcore/pkg/domain"
)

// MatingInput describes one pairing attempt to record. ViewedSpecimenID must
// be one of the two participants.
type MatingInput struct {
	ViewedSpecimenID string
	Date             string
	MaleID           string
	FemaleID         string
	Result           MatingResult
	Notes            *string
	Photos           []PhotoRef
}

var validMatingResults = map[MatingResult]struct{}{
	MatingSuccess:    {},
	MatingFailure:    {},
	MatingInProgress: {},
	MatingUnknown:    {},
}

// RecordMating records a pairing attempt as a symmetric pair of events, one
// visible under each participant. Payloads are identical except for the
// specimen id, so both sides show the mating in their own histories.
func (s *Service) RecordMating(ctx context.Context, ownerID string, in MatingInput) (LifecycleEvent, Result, error) {
	var viewed LifecycleEvent
	var res Result
	err := s.instrument(ctx, "record_mating", func(ctx context.Context) (string, error) {
		if err := validateISODate("date", in.Date); err != nil {
			return "", err
		}
		if in.MaleID == "" || in.FemaleID == "" {
			return "", domain.ValidationError{Field: "participants", Message: "male and female ids are required"}
		}
		if in.ViewedSpecimenID != in.MaleID && in.ViewedSpecimenID != in.FemaleID {
			return "", domain.ValidationError{Field: "viewed_specimen_id", Message: "must be one of the participants"}
		}
		if _, ok := validMatingResults[in.Result]; !ok {
			return "", domain.ValidationError{Field: "result", Message: "unknown mating result"}
		}
		viewedSpecimen, err := s.ownedSpecimen(ownerID, in.ViewedSpecimenID)
		if err != nil {
			return "", err
		}
		if viewedSpecimen.Sex == SexUnknown {
			return "", domain.ValidationError{Field: "sex", Message: "specimen sex must be known before recording a mating"}
		}
		partnerID := in.MaleID
		if in.ViewedSpecimenID == in.MaleID {
			partnerID = in.FemaleID
		}
		if _, err := s.ownedSpecimen(ownerID, partnerID); err != nil {
			return "", err
		}

		payload := MatingData{
			MaleID:     in.MaleID,
			FemaleID:   in.FemaleID,
			Result:     in.Result,
			Successful: in.Result == MatingSuccess,
		}
		base := LifecycleEvent{
			OwnerID:     ownerID,
			Category:    CategoryMating,
			Title:       fmt.Sprintf("Pairing on %s", in.Date),
			Description: in.Notes,
			Date:        in.Date,
			Status:      domain.EventStatusCompleted,
			Photos:      in.Photos,
		}

		first := base
		first.SpecimenID = in.ViewedSpecimenID
		data := payload
		first.Mating = &data
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			viewed, txErr = tx.AppendEvent(first)
			return txErr
		})
		if err != nil {
			return "", err
		}

		mirror := base
		mirror.SpecimenID = partnerID
		mirrorData := payload
		mirror.Mating = &mirrorData
		if _, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			_, txErr := tx.AppendEvent(mirror)
			return txErr
		}); err != nil {
			// The viewed side is already durable; the partner's history is
			// missing this pairing until re-recorded.
			return viewed.ID, fmt.Errorf("mirror event for %s: %w", partnerID, err)
		}
		return viewed.ID, nil
	})
	return viewed, res, err
}

// PartnerEligible reports whether candidate may be offered as a pairing
// partner for viewed: opposite sex, same species, active, and not the viewed
// specimen itself.
func PartnerEligible(viewed, candidate Specimen) bool {
	if candidate.ID == viewed.ID || !candidate.Active {
		return false
	}
	if candidate.Species != viewed.Species {
		return false
	}
	switch viewed.Sex {
	case SexMale:
		return candidate.Sex == SexFemale
	case SexFemale:
		return candidate.Sex == SexMale
	default:
		return false
	}
}

// EligiblePartners lists the owner's specimens that qualify as pairing
// partners for the given specimen.
func (s *Service) EligiblePartners(ctx context.Context, ownerID, specimenID string) ([]Specimen, error) {
	viewed, err := s.ownedSpecimen(ownerID, specimenID)
	if err != nil {
		return nil, err
	}
	var out []Specimen
	for _, sp := range s.OwnerSpecimens(ctx, ownerID) {
		if PartnerEligible(viewed, sp) {
			out = append(out, sp)
		}
	}
	return out, nil
}
