package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"broodcore/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brood.db")

	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var sp domain.Specimen
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var txErr error
		sp, txErr = tx.CreateSpecimen(domain.Specimen{OwnerID: "o", Name: "Rosie", Species: "G. rosea"})
		if txErr != nil {
			return txErr
		}
		_, txErr = tx.AppendEvent(domain.LifecycleEvent{SpecimenID: sp.ID, OwnerID: "o", Category: domain.CategoryMolting, Title: "Molt", Date: "2024-03-01"})
		return txErr
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, ok := reopened.GetSpecimen(sp.ID)
	if !ok || got.Name != "Rosie" {
		t.Fatalf("specimen not reloaded: ok=%v got=%+v", ok, got)
	}
	events, err := reopened.ListEvents(domain.EventQuery{OwnerID: "o", SpecimenID: sp.ID})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].Title != "Molt" {
		t.Fatalf("events not reloaded: %+v", events)
	}
}

func TestStoreDefaultsPath(t *testing.T) {
	// t.Chdir requires Go 1.24; replicate it for older toolchains.
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() != "broodcore.db" {
		t.Fatalf("expected default path, got %s", store.Path())
	}
}

func TestStoreFailedTransactionDoesNotPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brood.db")
	store, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, txErr := tx.CreateSpecimen(domain.Specimen{OwnerID: "o", Name: "x", Species: "y"}); txErr != nil {
			return txErr
		}
		return domain.ValidationError{Field: "test", Message: "abort"}
	})
	if err == nil {
		t.Fatalf("expected transaction error")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if got := reopened.ListSpecimens(); len(got) != 0 {
		t.Fatalf("aborted write must not persist, got %d specimens", len(got))
	}
}
