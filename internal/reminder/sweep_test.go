package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"broodcore/internal/core"
	"broodcore/internal/infra/persistence/memory"
)

func sweepFixture(t *testing.T) (*core.Service, *MemoryScheduler, *Sweeper) {
	t.Helper()
	clock := fixedClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	store := memory.NewStore(core.NewDefaultRulesEngine())
	svc := core.NewService(store, core.WithClock(clock))
	scheduler := NewMemoryScheduler(clock)
	sweeper := NewSweeper(svc, scheduler, clock, zerolog.Nop(), 0, 7)
	return svc, scheduler, sweeper
}

func laidCocoon(t *testing.T, svc *core.Service, owner, hatchDate string) core.LifecycleEvent {
	t.Helper()
	ctx := context.Background()
	female, _, err := svc.CreateSpecimen(ctx, core.Specimen{
		OwnerID: owner,
		Name:    "Rosie-" + hatchDate,
		Species: "Grammostola rosea",
		Sex:     core.SexFemale,
		Stage:   core.StageAdult,
		Instar:  10,
		Active:  true,
	})
	if err != nil {
		t.Fatalf("create female: %v", err)
	}
	ev, _, err := svc.LayCocoon(ctx, owner, core.CocoonInput{
		FemaleID:           female.ID,
		Date:               "2024-05-01",
		EstimatedHatchDate: hatchDate,
	})
	if err != nil {
		t.Fatalf("lay cocoon: %v", err)
	}
	return ev
}

func TestSweepSchedulesNearTermHatches(t *testing.T) {
	svc, scheduler, sweeper := sweepFixture(t)
	ctx := context.Background()

	laidCocoon(t, svc, "owner-1", "2024-06-06")
	laidCocoon(t, svc, "owner-1", "2024-09-01") // outside lookahead
	done := laidCocoon(t, svc, "owner-2", "2024-06-05")
	if _, _, err := svc.HatchCocoon(ctx, "owner-2", done.ID, 3, nil); err != nil {
		t.Fatalf("hatch: %v", err)
	}

	if err := sweeper.Sweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	pending := scheduler.Pending()
	if len(pending) != 1 {
		t.Fatalf("expected exactly one reminder, got %+v", pending)
	}
	wantAt := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	if pending[0].Category != core.ReminderCategoryCocoon || !pending[0].At.Equal(wantAt) {
		t.Fatalf("unexpected reminder: %+v", pending[0])
	}
}

func TestSweepReplacesStaleReminders(t *testing.T) {
	svc, scheduler, sweeper := sweepFixture(t)
	ctx := context.Background()

	ev := laidCocoon(t, svc, "owner-1", "2024-06-06")
	if err := sweeper.Sweep(ctx); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if len(scheduler.Pending()) != 1 {
		t.Fatalf("expected one reminder after first sweep")
	}

	if _, _, err := svc.MarkCocoonFailed(ctx, "owner-1", ev.ID); err != nil {
		t.Fatalf("fail cocoon: %v", err)
	}
	if err := sweeper.Sweep(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if pending := scheduler.Pending(); len(pending) != 0 {
		t.Fatalf("failed cocoon must lose its reminder, got %+v", pending)
	}
}

func TestSweeperStartRejectsBadSchedule(t *testing.T) {
	_, _, sweeper := sweepFixture(t)
	if _, err := sweeper.Start(context.Background(), "not a schedule"); err == nil {
		t.Fatalf("expected schedule parse error")
	}
}
