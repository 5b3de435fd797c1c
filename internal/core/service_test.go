package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"broodcore/internal/infra/persistence/memory"
	"broodcore/pkg/domain"
)

const testOwner = "owner-1"

func testClock() Clock {
	return ClockFunc(func() time.Time {
		return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	})
}

func newTestService(t *testing.T, options ...ServiceOption) *Service {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine())
	options = append([]ServiceOption{
		WithClock(testClock()),
		WithBulkWriteRate(100000, 100000),
	}, options...)
	return NewService(store, options...)
}

func adultFemale(name string) Specimen {
	return Specimen{
		OwnerID: testOwner,
		Name:    name,
		Species: "Grammostola rosea",
		Sex:     SexFemale,
		Stage:   StageAdult,
		Instar:  10,
		Active:  true,
	}
}

func adultMale(name string) Specimen {
	sp := adultFemale(name)
	sp.Sex = SexMale
	return sp
}

func mustCreate(t *testing.T, svc *Service, sp Specimen) Specimen {
	t.Helper()
	created, _, err := svc.CreateSpecimen(context.Background(), sp)
	if err != nil {
		t.Fatalf("create specimen %s: %v", sp.Name, err)
	}
	return created
}

func TestCreateSpecimenValidation(t *testing.T) {
	svc := newTestService(t)
	cases := []struct {
		name  string
		sp    Specimen
		field string
	}{
		{"missing owner", Specimen{Name: "x", Species: "y", Stage: StageAdult, Instar: 1}, "owner_id"},
		{"missing name", Specimen{OwnerID: testOwner, Species: "y", Stage: StageAdult, Instar: 1}, "name"},
		{"missing species", Specimen{OwnerID: testOwner, Name: "x", Stage: StageAdult, Instar: 1}, "species"},
	}
	for _, tc := range cases {
		_, _, err := svc.CreateSpecimen(context.Background(), tc.sp)
		var ve domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("%s: expected validation error on %s, got %v", tc.name, tc.field, err)
		}
	}
}

func TestCreateSpecimenBlockedByStageRule(t *testing.T) {
	svc := newTestService(t)
	sp := adultFemale("Rosie")
	sp.Stage = "larva"
	_, res, err := svc.CreateSpecimen(context.Background(), sp)
	var rve RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result, got %+v", res)
	}
}

func TestSpecimenOwnerScoping(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, adultFemale("Rosie"))

	if _, err := svc.Specimen(context.Background(), testOwner, created.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	_, err := svc.Specimen(context.Background(), "intruder", created.ID)
	var ae domain.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	_, err = svc.Specimen(context.Background(), testOwner, "missing")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAndDeactivateSpecimen(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, adultFemale("Rosie"))

	updated, _, err := svc.UpdateSpecimen(context.Background(), testOwner, created.ID, func(sp *Specimen) error {
		sp.Name = "Rosie II"
		return nil
	})
	if err != nil || updated.Name != "Rosie II" {
		t.Fatalf("update: err=%v updated=%+v", err, updated)
	}

	deactivated, _, err := svc.DeactivateSpecimen(context.Background(), testOwner, created.ID)
	if err != nil || deactivated.Active {
		t.Fatalf("deactivate: err=%v active=%v", err, deactivated.Active)
	}
}

func TestDeleteSpecimenRemovesHistory(t *testing.T) {
	svc := newTestService(t)
	created := mustCreate(t, svc, adultFemale("Rosie"))
	ev, _, err := svc.AppendEvent(context.Background(), testOwner, LifecycleEvent{
		SpecimenID: created.ID,
		Category:   CategoryFeeding,
		Title:      "Cricket",
		Date:       "2024-05-01",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if _, err := svc.DeleteSpecimen(context.Background(), testOwner, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Event(context.Background(), testOwner, ev.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected cascaded event deletion, got %v", err)
	}
}

func TestOwnersAndOwnerSpecimens(t *testing.T) {
	svc := newTestService(t)
	mustCreate(t, svc, adultFemale("Rosie"))
	mustCreate(t, svc, adultMale("Bruce"))
	other := adultFemale("Tara")
	other.OwnerID = "owner-2"
	mustCreate(t, svc, other)

	owners := svc.Owners(context.Background())
	if len(owners) != 2 {
		t.Fatalf("expected 2 owners, got %v", owners)
	}
	if got := svc.OwnerSpecimens(context.Background(), testOwner); len(got) != 2 {
		t.Fatalf("expected 2 specimens for %s, got %d", testOwner, len(got))
	}
}
