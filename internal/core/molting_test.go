package core

import (
	"context"
	"errors"
	"testing"

	"broodcore/internal/infra/persistence/memory"
	"broodcore/pkg/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestRecordMoltAppendsEventAndSyncsSpecimen(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, adultFemale("Rosie"))
	ctx := context.Background()

	ev, _, err := svc.RecordMolt(ctx, testOwner, MoltInput{
		SpecimenID:       created.ID,
		Date:             "2024-05-10",
		PreviousStage:    10,
		NewStage:         11,
		PreviousLengthMM: floatPtr(52),
		NewLengthMM:      floatPtr(58),
	})
	if err != nil {
		t.Fatalf("record molt: %v", err)
	}
	if ev.Category != CategoryMolting || ev.Molting == nil {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Title != "Molted to instar 11" {
		t.Fatalf("unexpected title: %s", ev.Title)
	}

	sp, err := svc.Specimen(ctx, testOwner, created.ID)
	if err != nil {
		t.Fatalf("get specimen: %v", err)
	}
	if sp.Instar != 11 {
		t.Fatalf("expected instar 11, got %d", sp.Instar)
	}
	if sp.Measurements.LengthMM != 58 || sp.Measurements.LastMeasured != "2024-05-10" {
		t.Fatalf("measurements not synced: %+v", sp.Measurements)
	}
}

func TestRecordMoltRejectsNonIncreasingStage(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, adultFemale("Rosie"))

	for _, newStage := range []int{9, 10} {
		_, _, err := svc.RecordMolt(context.Background(), testOwner, MoltInput{
			SpecimenID:    created.ID,
			Date:          "2024-05-10",
			PreviousStage: 10,
			NewStage:      newStage,
		})
		var ve domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != "new_stage" {
			t.Fatalf("stage %d: expected new_stage validation error, got %v", newStage, err)
		}
	}
}

func TestRecordMoltWithoutLengthKeepsMeasurements(t *testing.T) {
	svc := newTestService(t)
	sp := adultFemale("Rosie")
	sp.Measurements = domain.Measurements{LengthMM: 50, LastMeasured: "2024-01-01"}
	created := mustCreate(t, svc, sp)

	if _, _, err := svc.RecordMolt(context.Background(), testOwner, MoltInput{
		SpecimenID:    created.ID,
		Date:          "2024-05-10",
		PreviousStage: 10,
		NewStage:      11,
	}); err != nil {
		t.Fatalf("record molt: %v", err)
	}

	got, _ := svc.Specimen(context.Background(), testOwner, created.ID)
	if got.Measurements.LengthMM != 50 || got.Measurements.LastMeasured != "2024-01-01" {
		t.Fatalf("measurements should be untouched without a new length: %+v", got.Measurements)
	}
	if got.Instar != 11 {
		t.Fatalf("instar should still sync, got %d", got.Instar)
	}
}

func TestRecordMoltSpecimenSyncFailureKeepsEvent(t *testing.T) {
	inner := memory.NewStore(NewDefaultRulesEngine())
	// Call 1 creates the specimen, call 2 appends the molt event, call 3 is
	// the denormalized specimen update.
	store := newFaultyStore(inner, 3)
	svc := NewService(store, WithClock(testClock()))
	created := mustCreate(t, svc, adultFemale("Rosie"))

	ev, _, err := svc.RecordMolt(context.Background(), testOwner, MoltInput{
		SpecimenID:    created.ID,
		Date:          "2024-05-10",
		PreviousStage: 10,
		NewStage:      11,
	})
	var syncErr SpecimenSyncError
	if !errors.As(err, &syncErr) {
		t.Fatalf("expected SpecimenSyncError, got %v", err)
	}
	if syncErr.EventID == "" || !errors.Is(err, errInjected) {
		t.Fatalf("sync error should carry event id and cause: %+v", syncErr)
	}

	// The appended event stands; the specimen is stale.
	if _, getErr := svc.Event(context.Background(), testOwner, ev.ID); getErr != nil {
		t.Fatalf("molt event should be durable: %v", getErr)
	}
	sp, _ := svc.Specimen(context.Background(), testOwner, created.ID)
	if sp.Instar != 10 {
		t.Fatalf("specimen should be stale at instar 10, got %d", sp.Instar)
	}
}
