// Package core implements the lifecycle event engine: the append-style event
// log, derived status projections, the cocoon state machine, and the bulk
// offspring materialization workflow.
package core

import (
	"context"
	"time"

	"broodcore/pkg/domain"

	"golang.org/x/time/rate"
)

// Service exposes the engine operations over a persistent store.
type Service struct {
	store   PersistentStore
	opts    serviceOptions
	limiter *rate.Limiter
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, options ...ServiceOption) *Service {
	opts := defaultServiceOptions()
	for _, apply := range options {
		apply(&opts)
	}
	return &Service{
		store:   store,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.bulkRate), opts.bulkBurst),
	}
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

type auditInfo struct {
	entity EntityType
	action Action
}

var auditMetadata = map[string]auditInfo{
	"create_specimen":  {EntitySpecimen, ActionCreate},
	"update_specimen":  {EntitySpecimen, ActionUpdate},
	"delete_specimen":  {EntitySpecimen, ActionDelete},
	"append_event":     {EntityEvent, ActionCreate},
	"delete_event":     {EntityEvent, ActionDelete},
	"record_molt":      {EntityEvent, ActionCreate},
	"record_mating":    {EntityEvent, ActionCreate},
	"lay_cocoon":       {EntityEvent, ActionCreate},
	"begin_incubation": {EntityEvent, ActionUpdate},
	"fail_cocoon":      {EntityEvent, ActionUpdate},
	"hatch_cocoon":     {EntityEvent, ActionUpdate},
	"create_offspring": {EntitySpecimen, ActionCreate},
}

func (s *Service) recordAudit(ctx context.Context, op, entityID string, status AuditStatus, errMsg string, duration time.Duration) {
	meta, ok := auditMetadata[op]
	if !ok {
		return
	}
	s.opts.audit.Record(ctx, AuditEntry{
		Operation: op,
		Entity:    meta.entity,
		EntityID:  entityID,
		Action:    meta.action,
		Status:    status,
		Error:     errMsg,
		Duration:  duration,
		Timestamp: s.opts.clock.Now(),
	})
}

// instrument wraps an operation with tracing, metrics and audit recording.
// fn returns the affected entity id for the audit trail.
func (s *Service) instrument(ctx context.Context, op string, fn func(ctx context.Context) (string, error)) error {
	ctx, span := s.opts.tracer.Start(ctx, op)
	start := s.opts.clock.Now()
	entityID, err := fn(ctx)
	duration := s.opts.clock.Now().Sub(start)
	s.opts.metrics.Observe(ctx, op, err == nil, duration)
	span.End(err)
	if err != nil {
		s.recordAudit(ctx, op, entityID, AuditStatusError, err.Error(), duration)
		s.opts.logger.Warn("operation failed", "op", op, "err", err)
	} else {
		s.recordAudit(ctx, op, entityID, AuditStatusSuccess, "", duration)
	}
	return err
}

// CreateSpecimen persists a new specimen record.
func (s *Service) CreateSpecimen(ctx context.Context, specimen Specimen) (Specimen, Result, error) {
	var created Specimen
	var res Result
	err := s.instrument(ctx, "create_specimen", func(ctx context.Context) (string, error) {
		if err := validateSpecimen(specimen); err != nil {
			return "", err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateSpecimen(specimen)
			return txErr
		})
		return created.ID, err
	})
	return created, res, err
}

// UpdateSpecimen mutates a specimen using the provided mutator. The update is
// owner scoped.
func (s *Service) UpdateSpecimen(ctx context.Context, ownerID, id string, mutator func(*Specimen) error) (Specimen, Result, error) {
	var updated Specimen
	var res Result
	err := s.instrument(ctx, "update_specimen", func(ctx context.Context) (string, error) {
		if _, err := s.ownedSpecimen(ownerID, id); err != nil {
			return id, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateSpecimen(id, mutator)
			return txErr
		})
		return id, err
	})
	return updated, res, err
}

// DeactivateSpecimen marks a specimen inactive (deceased or removed) without
// discarding its history.
func (s *Service) DeactivateSpecimen(ctx context.Context, ownerID, id string) (Specimen, Result, error) {
	return s.UpdateSpecimen(ctx, ownerID, id, func(sp *Specimen) error {
		sp.Active = false
		return nil
	})
}

// DeleteSpecimen removes a specimen and all of its events. Dependent read
// models are invalidated by the cascade.
func (s *Service) DeleteSpecimen(ctx context.Context, ownerID, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "delete_specimen", func(ctx context.Context) (string, error) {
		if _, err := s.ownedSpecimen(ownerID, id); err != nil {
			return id, err
		}
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteSpecimen(id)
		})
		return id, err
	})
	return res, err
}

// Specimen retrieves one specimen scoped to its owning account.
func (s *Service) Specimen(ctx context.Context, ownerID, id string) (Specimen, error) {
	return s.ownedSpecimen(ownerID, id)
}

// OwnerSpecimens lists all specimens for one owning account.
func (s *Service) OwnerSpecimens(ctx context.Context, ownerID string) []Specimen {
	var out []Specimen
	for _, sp := range s.store.ListSpecimens() {
		if sp.OwnerID == ownerID {
			out = append(out, sp)
		}
	}
	return out
}

// Owners returns the distinct owning-account ids present in the store, used
// by the reminder sweep.
func (s *Service) Owners(ctx context.Context) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, sp := range s.store.ListSpecimens() {
		if _, ok := seen[sp.OwnerID]; ok {
			continue
		}
		seen[sp.OwnerID] = struct{}{}
		out = append(out, sp.OwnerID)
	}
	return out
}

// ownedSpecimen resolves a specimen and enforces the owning-account scope.
func (s *Service) ownedSpecimen(ownerID, id string) (Specimen, error) {
	sp, ok := s.store.GetSpecimen(id)
	if !ok {
		return Specimen{}, domain.NotFoundError{Entity: EntitySpecimen, ID: id}
	}
	if sp.OwnerID != ownerID {
		return Specimen{}, domain.AuthorizationError{Entity: EntitySpecimen, ID: id, OwnerID: ownerID}
	}
	return sp, nil
}

// ownedEvent resolves an event and enforces the owning-account scope.
func (s *Service) ownedEvent(ownerID, id string) (LifecycleEvent, error) {
	ev, ok := s.store.GetEvent(id)
	if !ok {
		return LifecycleEvent{}, domain.NotFoundError{Entity: EntityEvent, ID: id}
	}
	if ev.OwnerID != ownerID {
		return LifecycleEvent{}, domain.AuthorizationError{Entity: EntityEvent, ID: id, OwnerID: ownerID}
	}
	return ev, nil
}

func validateSpecimen(sp Specimen) error {
	if sp.OwnerID == "" {
		return domain.ValidationError{Field: "owner_id", Message: "required"}
	}
	if sp.Name == "" {
		return domain.ValidationError{Field: "name", Message: "required"}
	}
	if sp.Species == "" {
		return domain.ValidationError{Field: "species", Message: "required"}
	}
	return nil
}

func validateISODate(field, value string) error {
	if value == "" {
		return domain.ValidationError{Field: field, Message: "required"}
	}
	if _, err := time.Parse(domain.DateLayout, value); err != nil {
		return domain.ValidationError{Field: field, Message: "must be an ISO date (YYYY-MM-DD)"}
	}
	return nil
}
