package core

import (
	"context"
	"fmt"

	"broodcore/pkg/domain"
)

// LineageIntegrityRule blocks specimen writes whose lineage references do not
// resolve: a parent female must exist and be female, and a cocoon event link
// must point at a cocoon-category event.
type LineageIntegrityRule struct{}

func (LineageIntegrityRule) Name() string { return "lineage_integrity" }

func (LineageIntegrityRule) Evaluate(ctx context.Context, view domain.RuleView, changes []Change) (Result, error) {
	var res Result
	for _, ch := range changes {
		if ch.Entity != EntitySpecimen || ch.Action == ActionDelete {
			continue
		}
		spec, ok := ch.After.(Specimen)
		if !ok {
			continue
		}
		if spec.ParentFemaleID != nil {
			parent, found := view.FindSpecimen(*spec.ParentFemaleID)
			switch {
			case !found:
				res.Violations = append(res.Violations, lineageViolation(spec.ID,
					fmt.Sprintf("parent female %s does not exist", *spec.ParentFemaleID)))
			case parent.Sex != SexFemale:
				res.Violations = append(res.Violations, lineageViolation(spec.ID,
					fmt.Sprintf("parent %s is not female", parent.ID)))
			case parent.ID == spec.ID:
				res.Violations = append(res.Violations, lineageViolation(spec.ID,
					"specimen cannot be its own parent"))
			}
		}
		if spec.CocoonEventID != nil {
			ev, found := view.FindEvent(*spec.CocoonEventID)
			switch {
			case !found:
				res.Violations = append(res.Violations, lineageViolation(spec.ID,
					fmt.Sprintf("cocoon event %s does not exist", *spec.CocoonEventID)))
			case ev.Category != CategoryCocoon:
				res.Violations = append(res.Violations, lineageViolation(spec.ID,
					fmt.Sprintf("event %s is not a cocoon record", ev.ID)))
			}
		}
	}
	return res, nil
}

func lineageViolation(specimenID, message string) Violation {
	return Violation{
		Rule:     "lineage_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   EntitySpecimen,
		EntityID: specimenID,
	}
}
