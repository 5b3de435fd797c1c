// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"broodcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Specimen aliases domain.Specimen for in-memory persistence operations.
	Specimen = domain.Specimen
	// LifecycleEvent aliases domain.LifecycleEvent.
	LifecycleEvent = domain.LifecycleEvent
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

type memoryState struct {
	specimens map[string]Specimen
	events    map[string]LifecycleEvent
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Specimens map[string]Specimen       `json:"specimens"`
	Events    map[string]LifecycleEvent `json:"events"`
}

func newMemoryState() memoryState {
	return memoryState{
		specimens: make(map[string]Specimen),
		events:    make(map[string]LifecycleEvent),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.specimens {
		cloned.specimens[k] = cloneSpecimen(v)
	}
	for k, v := range s.events {
		cloned.events[k] = cloneEvent(v)
	}
	return cloned
}

func cloneSpecimen(sp Specimen) Specimen {
	cp := sp
	cp.ParentFemaleID = clonePtr(sp.ParentFemaleID)
	cp.CocoonEventID = clonePtr(sp.CocoonEventID)
	return cp
}

func cloneEvent(ev LifecycleEvent) LifecycleEvent {
	cp := ev
	cp.Description = clonePtr(ev.Description)
	cp.Time = clonePtr(ev.Time)
	if ev.Molting != nil {
		m := *ev.Molting
		m.PreviousLengthMM = clonePtr(ev.Molting.PreviousLengthMM)
		m.NewLengthMM = clonePtr(ev.Molting.NewLengthMM)
		cp.Molting = &m
	}
	if ev.Mating != nil {
		m := *ev.Mating
		cp.Mating = &m
	}
	if ev.Cocoon != nil {
		c := *ev.Cocoon
		c.EggCount = clonePtr(ev.Cocoon.EggCount)
		c.HatchedCount = clonePtr(ev.Cocoon.HatchedCount)
		cp.Cocoon = &c
	}
	cp.Photos = append([]domain.PhotoRef(nil), ev.Photos...)
	return cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the store clock, used by tests for deterministic timestamps.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.nowFn = now
	}
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

var _ Transaction = (*transaction)(nil)

type view struct {
	state *memoryState
}

var _ TransactionView = view{}

// ListSpecimens returns all specimens within the snapshot.
func (v view) ListSpecimens() []Specimen {
	out := make([]Specimen, 0, len(v.state.specimens))
	for _, sp := range v.state.specimens {
		out = append(out, cloneSpecimen(sp))
	}
	return out
}

// ListEvents returns all events within the snapshot.
func (v view) ListEvents() []LifecycleEvent {
	out := make([]LifecycleEvent, 0, len(v.state.events))
	for _, ev := range v.state.events {
		out = append(out, cloneEvent(ev))
	}
	return out
}

// FindSpecimen retrieves a specimen by ID from the snapshot.
func (v view) FindSpecimen(id string) (Specimen, bool) {
	sp, ok := v.state.specimens[id]
	if !ok {
		return Specimen{}, false
	}
	return cloneSpecimen(sp), true
}

// FindEvent retrieves an event by ID from the snapshot.
func (v view) FindEvent(id string) (LifecycleEvent, bool) {
	ev, ok := v.state.events[id]
	if !ok {
		return LifecycleEvent{}, false
	}
	return cloneEvent(ev), true
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Registered rules evaluate against the resulting state; blocking violations
// abort the commit.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(view{state: &snapshot})
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// CreateSpecimen stores a new specimen within the transaction.
func (tx *transaction) CreateSpecimen(sp Specimen) (Specimen, error) {
	if sp.ID == "" {
		sp.ID = newID()
	}
	if _, exists := tx.state.specimens[sp.ID]; exists {
		return Specimen{}, domain.ValidationError{Field: "id", Message: "specimen already exists"}
	}
	sp.CreatedAt = tx.now
	sp.UpdatedAt = tx.now
	tx.state.specimens[sp.ID] = cloneSpecimen(sp)
	tx.recordChange(Change{Entity: domain.EntitySpecimen, Action: domain.ActionCreate, After: cloneSpecimen(sp)})
	return cloneSpecimen(sp), nil
}

// UpdateSpecimen mutates a specimen using the provided mutator function.
func (tx *transaction) UpdateSpecimen(id string, mutator func(*Specimen) error) (Specimen, error) {
	current, ok := tx.state.specimens[id]
	if !ok {
		return Specimen{}, domain.NotFoundError{Entity: domain.EntitySpecimen, ID: id}
	}
	before := cloneSpecimen(current)
	if err := mutator(&current); err != nil {
		return Specimen{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.specimens[id] = cloneSpecimen(current)
	tx.recordChange(Change{Entity: domain.EntitySpecimen, Action: domain.ActionUpdate, Before: before, After: cloneSpecimen(current)})
	return cloneSpecimen(current), nil
}

// DeleteSpecimen removes a specimen and cascades deletion to its events.
func (tx *transaction) DeleteSpecimen(id string) error {
	current, ok := tx.state.specimens[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntitySpecimen, ID: id}
	}
	delete(tx.state.specimens, id)
	tx.recordChange(Change{Entity: domain.EntitySpecimen, Action: domain.ActionDelete, Before: cloneSpecimen(current)})
	for evID, ev := range tx.state.events {
		if ev.SpecimenID != id {
			continue
		}
		delete(tx.state.events, evID)
		tx.recordChange(Change{Entity: domain.EntityEvent, Action: domain.ActionDelete, Before: cloneEvent(ev)})
	}
	return nil
}

// AppendEvent stores a new lifecycle event. Events are never overwritten.
func (tx *transaction) AppendEvent(ev LifecycleEvent) (LifecycleEvent, error) {
	if ev.ID == "" {
		ev.ID = newID()
	}
	if _, exists := tx.state.events[ev.ID]; exists {
		return LifecycleEvent{}, domain.ValidationError{Field: "id", Message: "event already exists"}
	}
	ev.CreatedAt = tx.now
	ev.UpdatedAt = tx.now
	tx.state.events[ev.ID] = cloneEvent(ev)
	tx.recordChange(Change{Entity: domain.EntityEvent, Action: domain.ActionCreate, After: cloneEvent(ev)})
	return cloneEvent(ev), nil
}

// UpdateEvent mutates an event. The event immutability rule restricts which
// fields may legally change.
func (tx *transaction) UpdateEvent(id string, mutator func(*LifecycleEvent) error) (LifecycleEvent, error) {
	current, ok := tx.state.events[id]
	if !ok {
		return LifecycleEvent{}, domain.NotFoundError{Entity: domain.EntityEvent, ID: id}
	}
	before := cloneEvent(current)
	working := cloneEvent(current)
	if err := mutator(&working); err != nil {
		return LifecycleEvent{}, err
	}
	working.ID = id
	working.UpdatedAt = tx.now
	tx.state.events[id] = cloneEvent(working)
	tx.recordChange(Change{Entity: domain.EntityEvent, Action: domain.ActionUpdate, Before: before, After: cloneEvent(working)})
	return cloneEvent(working), nil
}

// DeleteEvent removes an event from the transaction state.
func (tx *transaction) DeleteEvent(id string) error {
	current, ok := tx.state.events[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityEvent, ID: id}
	}
	delete(tx.state.events, id)
	tx.recordChange(Change{Entity: domain.EntityEvent, Action: domain.ActionDelete, Before: cloneEvent(current)})
	return nil
}

// FindSpecimen retrieves a specimen from the transaction state.
func (tx *transaction) FindSpecimen(id string) (Specimen, bool) {
	sp, ok := tx.state.specimens[id]
	if !ok {
		return Specimen{}, false
	}
	return cloneSpecimen(sp), true
}

// FindEvent retrieves an event from the transaction state.
func (tx *transaction) FindEvent(id string) (LifecycleEvent, bool) {
	ev, ok := tx.state.events[id]
	if !ok {
		return LifecycleEvent{}, false
	}
	return cloneEvent(ev), true
}

// Read helpers ---------------------------------------------------------------

// GetSpecimen retrieves a specimen by ID from committed state.
func (s *Store) GetSpecimen(id string) (Specimen, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.state.specimens[id]
	if !ok {
		return Specimen{}, false
	}
	return cloneSpecimen(sp), true
}

// ListSpecimens returns all specimens from committed state.
func (s *Store) ListSpecimens() []Specimen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Specimen, 0, len(s.state.specimens))
	for _, sp := range s.state.specimens {
		out = append(out, cloneSpecimen(sp))
	}
	return out
}

// GetEvent retrieves an event by ID from committed state.
func (s *Store) GetEvent(id string) (LifecycleEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.state.events[id]
	if !ok {
		return LifecycleEvent{}, false
	}
	return cloneEvent(ev), true
}

// ListEvents returns events matching the query, newest first. Queries whose
// id filter exceeds domain.MaxIDFilter fail with ErrIDFilterTooLarge,
// mirroring the cardinality constraint of remote backends.
func (s *Store) ListEvents(q domain.EventQuery) ([]LifecycleEvent, error) {
	if len(q.SpecimenIDs) > domain.MaxIDFilter {
		return nil, domain.ErrIDFilterTooLarge
	}
	var idSet map[string]struct{}
	if len(q.SpecimenIDs) > 0 {
		idSet = make(map[string]struct{}, len(q.SpecimenIDs))
		for _, id := range q.SpecimenIDs {
			idSet[id] = struct{}{}
		}
	}

	s.mu.RLock()
	matched := make([]LifecycleEvent, 0)
	for _, ev := range s.state.events {
		if q.OwnerID != "" && ev.OwnerID != q.OwnerID {
			continue
		}
		if q.SpecimenID != "" && ev.SpecimenID != q.SpecimenID {
			continue
		}
		if idSet != nil {
			if _, ok := idSet[ev.SpecimenID]; !ok {
				continue
			}
		}
		if q.Category != "" && ev.Category != q.Category {
			continue
		}
		if q.From != "" && ev.Date < q.From {
			continue
		}
		if q.Until != "" && ev.Date > q.Until {
			continue
		}
		matched = append(matched, cloneEvent(ev))
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return eventNewer(matched[i], matched[j])
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// eventNewer orders events newest first by date, then time, then creation
// instant, with ID as the final deterministic tie-break.
func eventNewer(a, b LifecycleEvent) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	at, bt := "", ""
	if a.Time != nil {
		at = *a.Time
	}
	if b.Time != nil {
		bt = *b.Time
	}
	if at != bt {
		return at > bt
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// ExportState returns a deep-copied snapshot of committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := Snapshot{
		Specimens: make(map[string]Specimen, len(s.state.specimens)),
		Events:    make(map[string]LifecycleEvent, len(s.state.events)),
	}
	for k, v := range s.state.specimens {
		snapshot.Specimens[k] = cloneSpecimen(v)
	}
	for k, v := range s.state.events {
		snapshot.Events[k] = cloneEvent(v)
	}
	return snapshot
}

// ImportState replaces committed state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := newMemoryState()
	for k, v := range snapshot.Specimens {
		state.specimens[k] = cloneSpecimen(v)
	}
	for k, v := range snapshot.Events {
		state.events[k] = cloneEvent(v)
	}
	s.state = state
}
