package core

import (
	"context"
	"errors"

	"broodcore/pkg/domain"
)

var errInjected = errors.New("injected store failure")

// faultyStore wraps a PersistentStore and fails selected RunInTransaction
// calls, counted from 1.
type faultyStore struct {
	PersistentStore
	calls   int
	failOn  map[int]bool
	failAll bool
}

func newFaultyStore(inner PersistentStore, failOn ...int) *faultyStore {
	set := make(map[int]bool, len(failOn))
	for _, n := range failOn {
		set[n] = true
	}
	return &faultyStore{PersistentStore: inner, failOn: set}
}

func (s *faultyStore) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.calls++
	if s.failAll || s.failOn[s.calls] {
		return Result{}, domain.TransientError{Op: "test", Err: errInjected}
	}
	return s.PersistentStore.RunInTransaction(ctx, fn)
}
