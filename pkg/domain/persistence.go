package domain

import "context"

// MaxIDFilter is the backend's maximum cardinality for an "any of these ids"
// predicate. Callers with longer id lists must chunk their queries.
const MaxIDFilter = 10

// EventQuery describes a predicate-based read over the event log. Results are
// always ordered newest first (date, then time, then creation instant).
type EventQuery struct {
	// OwnerID scopes the query to one owning account. Required.
	OwnerID string
	// SpecimenID filters to a single specimen when set.
	SpecimenID string
	// SpecimenIDs filters to any of the given ids. At most MaxIDFilter
	// entries; stores reject longer lists with ErrIDFilterTooLarge.
	SpecimenIDs []string
	// Category filters to one event category when set.
	Category EventCategory
	// Limit caps the number of returned events. Zero means no cap.
	Limit int
	// From and Until bound the event date (inclusive, ISO dates) when set.
	From  string
	Until string
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	CreateSpecimen(Specimen) (Specimen, error)
	UpdateSpecimen(id string, mutator func(*Specimen) error) (Specimen, error)
	// DeleteSpecimen removes a specimen and cascades the deletion to all of
	// its events so dependent views cannot return stale results.
	DeleteSpecimen(id string) error
	AppendEvent(LifecycleEvent) (LifecycleEvent, error)
	UpdateEvent(id string, mutator func(*LifecycleEvent) error) (LifecycleEvent, error)
	DeleteEvent(id string) error
	FindSpecimen(id string) (Specimen, bool)
	FindEvent(id string) (LifecycleEvent, bool)
}

// TransactionView provides read-only access to snapshot data. Rules consume
// the same view.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetSpecimen(id string) (Specimen, bool)
	ListSpecimens() []Specimen
	GetEvent(id string) (LifecycleEvent, bool)
	ListEvents(q EventQuery) ([]LifecycleEvent, error)
}
