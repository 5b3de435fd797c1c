package core

import (
	"context"
	"fmt"

	"broodcore/pkg/domain"
)

var knownStages = map[Stage]bool{
	StageBaby:     true,
	StageJuvenile: true,
	StageSubadult: true,
	StageAdult:    true,
	StageSenior:   true,
}

var knownSexes = map[Sex]bool{
	SexMale:          true,
	SexFemale:        true,
	SexUnknown:       true,
	SexHermaphrodite: true,
}

// StageValidityRule blocks specimen writes carrying an unknown developmental
// stage or sex, or a non-positive instar.
type StageValidityRule struct{}

func (StageValidityRule) Name() string { return "stage_validity" }

func (StageValidityRule) Evaluate(ctx context.Context, view domain.RuleView, changes []Change) (Result, error) {
	var res Result
	for _, ch := range changes {
		if ch.Entity != EntitySpecimen || ch.Action == ActionDelete {
			continue
		}
		spec, ok := ch.After.(Specimen)
		if !ok {
			continue
		}
		if !knownStages[spec.Stage] {
			res.Violations = append(res.Violations, Violation{
				Rule:     "stage_validity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("unknown stage %q", spec.Stage),
				Entity:   EntitySpecimen,
				EntityID: spec.ID,
			})
		}
		if !knownSexes[spec.Sex] {
			res.Violations = append(res.Violations, Violation{
				Rule:     "stage_validity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("unknown sex %q", spec.Sex),
				Entity:   EntitySpecimen,
				EntityID: spec.ID,
			})
		}
		if spec.Instar < 1 {
			res.Violations = append(res.Violations, Violation{
				Rule:     "stage_validity",
				Severity: domain.SeverityBlock,
				Message:  "instar must be at least 1",
				Entity:   EntitySpecimen,
				EntityID: spec.ID,
			})
		}
	}
	return res, nil
}
