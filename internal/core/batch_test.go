package core

import (
	"context"
	"fmt"
	"reflect"
	"testing"
)

func TestChunkIDs(t *testing.T) {
	ids := make([]string, 25)
	for i := range ids {
		ids[i] = fmt.Sprintf("sp-%02d", i)
	}
	chunks := chunkIDs(ids, statusChunkSize)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks for 25 ids, got %d", len(chunks))
	}
	if len(chunks[0]) != 10 || len(chunks[1]) != 10 || len(chunks[2]) != 5 {
		t.Fatalf("unexpected chunk sizes: %d/%d/%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}

	small := chunkIDs([]string{"a"}, statusChunkSize)
	if len(small) != 1 || len(small[0]) != 1 {
		t.Fatalf("single id should make one chunk, got %+v", small)
	}
}

func TestBatchProjectEmptyInput(t *testing.T) {
	svc := newTestService(t)
	got, err := svc.BatchMoltStatus(context.Background(), testOwner, nil)
	if err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestBatchMoltStatusAcrossChunks(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	ids := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		sp := adultFemale(fmt.Sprintf("T-%02d", i))
		created := mustCreate(t, svc, sp)
		ids = append(ids, created.ID)

		// Every third specimen has molted, the last molt winning by date.
		if i%3 == 0 {
			for _, in := range []MoltInput{
				{SpecimenID: created.ID, Date: "2024-02-01", PreviousStage: 10, NewStage: 11},
				{SpecimenID: created.ID, Date: "2024-04-01", PreviousStage: 11, NewStage: 12},
			} {
				if _, _, err := svc.RecordMolt(ctx, testOwner, in); err != nil {
					t.Fatalf("molt %s: %v", created.ID, err)
				}
			}
		}
	}

	statuses, err := svc.BatchMoltStatus(ctx, testOwner, ids)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(statuses) != 25 {
		t.Fatalf("expected an entry per requested id, got %d", len(statuses))
	}
	for i, id := range ids {
		status := statuses[id]
		if i%3 == 0 {
			if !status.HasMolt || status.LastMoltDate != "2024-04-01" || status.Instar != 12 {
				t.Fatalf("id %s: expected latest molt to win, got %+v", id, status)
			}
		} else if status.HasMolt {
			t.Fatalf("id %s: expected default status, got %+v", id, status)
		}
	}

	// A repeated read without writes yields identical projections.
	again, err := svc.BatchMoltStatus(ctx, testOwner, ids)
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if !reflect.DeepEqual(statuses, again) {
		t.Fatalf("projection not idempotent")
	}
}

func TestBatchCocoonStatusReflectsStateMachine(t *testing.T) {
	svc := newTestService(t)
	female := mustCreate(t, svc, adultFemale("Rosie"))
	ctx := context.Background()

	ev := layTestCocoon(t, svc, female.ID, CocoonInput{})
	if _, _, err := svc.BeginIncubation(ctx, testOwner, ev.ID); err != nil {
		t.Fatalf("incubate: %v", err)
	}

	statuses, err := svc.BatchCocoonStatus(ctx, testOwner, []string{female.ID})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	status := statuses[female.ID]
	if !status.HasCocoon || status.State != CocoonIncubating || status.EstimatedHatchDate != "2024-03-04" {
		t.Fatalf("unexpected cocoon status: %+v", status)
	}
}

func TestBatchStatusScopedToOwner(t *testing.T) {
	svc := newTestService(t)
	female := mustCreate(t, svc, adultFemale("Rosie"))
	ctx := context.Background()
	if _, _, err := svc.RecordMolt(ctx, testOwner, MoltInput{SpecimenID: female.ID, Date: "2024-02-01", PreviousStage: 10, NewStage: 11}); err != nil {
		t.Fatalf("molt: %v", err)
	}

	statuses, err := svc.BatchMoltStatus(ctx, "other-owner", []string{female.ID})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if statuses[female.ID].HasMolt {
		t.Fatalf("foreign owner must not see molt history: %+v", statuses[female.ID])
	}
}

func TestBatchMatingStatusUsesLatestEvent(t *testing.T) {
	svc := newTestService(t)
	female := mustCreate(t, svc, adultFemale("Rosie"))
	male := mustCreate(t, svc, adultMale("Bruce"))
	ctx := context.Background()

	for _, attempt := range []struct {
		date   string
		result MatingResult
	}{
		{"2024-03-01", MatingFailure},
		{"2024-05-01", MatingSuccess},
	} {
		if _, _, err := svc.RecordMating(ctx, testOwner, MatingInput{
			ViewedSpecimenID: female.ID,
			Date:             attempt.date,
			MaleID:           male.ID,
			FemaleID:         female.ID,
			Result:           attempt.result,
		}); err != nil {
			t.Fatalf("mating %s: %v", attempt.date, err)
		}
	}

	statuses, err := svc.BatchMatingStatus(ctx, testOwner, []string{female.ID, male.ID})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, id := range []string{female.ID, male.ID} {
		status := statuses[id]
		if !status.HasMating || status.LastMatingDate != "2024-05-01" || status.LastResult != MatingSuccess {
			t.Fatalf("id %s: expected latest success, got %+v", id, status)
		}
	}
}
