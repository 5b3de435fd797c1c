package core

import (
	"context"
	"reflect"
	"time"

	"broodcore/pkg/domain"
)

// EventImmutabilityRule blocks updates to appended lifecycle events. Cocoon
// records are the one exception: their state machine lives on the event, so
// updates touching only the cocoon status, hatched count and the update
// timestamp are allowed through.
type EventImmutabilityRule struct{}

func (EventImmutabilityRule) Name() string { return "event_immutability" }

func (EventImmutabilityRule) Evaluate(ctx context.Context, view domain.RuleView, changes []Change) (Result, error) {
	var res Result
	for _, ch := range changes {
		if ch.Entity != EntityEvent || ch.Action != ActionUpdate {
			continue
		}
		before, okB := ch.Before.(LifecycleEvent)
		after, okA := ch.After.(LifecycleEvent)
		if !okB || !okA {
			continue
		}
		if before.Category != CategoryCocoon || before.Cocoon == nil || after.Cocoon == nil {
			res.Violations = append(res.Violations, immutabilityViolation(after.ID,
				"appended events cannot be modified"))
			continue
		}
		if !cocoonUpdateAllowed(before, after) {
			res.Violations = append(res.Violations, immutabilityViolation(after.ID,
				"cocoon updates may only change status and hatched count"))
		}
	}
	return res, nil
}

// cocoonUpdateAllowed compares the two versions with the mutable fields
// normalized away. Anything else differing makes the update illegal.
func cocoonUpdateAllowed(before, after LifecycleEvent) bool {
	normalize := func(ev LifecycleEvent) LifecycleEvent {
		cocoon := *ev.Cocoon
		cocoon.Status = ""
		cocoon.HatchedCount = nil
		ev.Cocoon = &cocoon
		ev.UpdatedAt = time.Time{}
		return ev
	}
	return reflect.DeepEqual(normalize(before), normalize(after))
}

func immutabilityViolation(eventID, message string) Violation {
	return Violation{
		Rule:     "event_immutability",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   EntityEvent,
		EntityID: eventID,
	}
}

// NewDefaultRulesEngine wires the standard rule set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(StageValidityRule{})
	engine.Register(LineageIntegrityRule{})
	engine.Register(EventImmutabilityRule{})
	return engine
}
