package core

import (
	"context"
	"sync"

	"broodcore/pkg/domain"
)

// statusChunkSize matches the backend's maximum cardinality for an
// "any of these ids" predicate.
const statusChunkSize = domain.MaxIDFilter

// BatchProject computes a per-specimen projection for an arbitrary number of
// ids. The id list is partitioned into chunks of at most statusChunkSize,
// one query is issued per chunk, and results merge into a single map using a
// most-recent-event-wins rule over lexicographic ISO date ordering. Ids with
// no matching events keep the default projection. The merge is pure and
// commutative, so chunks are dispatched concurrently.
func BatchProject[T any](ctx context.Context, store PersistentStore, ownerID string, ids []string, category EventCategory, def T, project func(LifecycleEvent) T) (map[string]T, error) {
	result := make(map[string]T, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	for _, id := range ids {
		result[id] = def
	}

	chunks := chunkIDs(ids, statusChunkSize)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	latest := make(map[string]string, len(ids))
	for _, chunk := range chunks {
		wg.Add(1)
		go func(chunk []string) {
			defer wg.Done()
			events, err := store.ListEvents(EventQuery{
				OwnerID:     ownerID,
				SpecimenIDs: chunk,
				Category:    category,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for _, ev := range events {
				key := eventOrderKey(ev)
				if prev, ok := latest[ev.SpecimenID]; ok && prev >= key {
					continue
				}
				latest[ev.SpecimenID] = key
				result[ev.SpecimenID] = project(ev)
			}
		}(chunk)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// eventOrderKey builds a lexicographically comparable recency key. ISO dates
// sort correctly as strings; the time suffix is a deterministic tie-break.
func eventOrderKey(ev LifecycleEvent) string {
	key := ev.Date
	if ev.Time != nil {
		key += "T" + *ev.Time
	}
	return key
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}

// BatchMatingStatus resolves the latest mating status for each id.
func (s *Service) BatchMatingStatus(ctx context.Context, ownerID string, ids []string) (map[string]MatingStatus, error) {
	return BatchProject(ctx, s.store, ownerID, ids, CategoryMating, MatingStatus{}, domain.ProjectMatingStatus)
}

// BatchCocoonStatus resolves the latest cocoon status for each id.
func (s *Service) BatchCocoonStatus(ctx context.Context, ownerID string, ids []string) (map[string]CocoonStatus, error) {
	return BatchProject(ctx, s.store, ownerID, ids, CategoryCocoon, CocoonStatus{}, domain.ProjectCocoonStatus)
}

// BatchMoltStatus resolves the latest molt status for each id.
func (s *Service) BatchMoltStatus(ctx context.Context, ownerID string, ids []string) (map[string]MoltStatus, error) {
	return BatchProject(ctx, s.store, ownerID, ids, CategoryMolting, MoltStatus{}, domain.ProjectMoltStatus)
}

// BatchFeedingStatus resolves the latest feeding status for each id.
func (s *Service) BatchFeedingStatus(ctx context.Context, ownerID string, ids []string) (map[string]FeedingStatus, error) {
	return BatchProject(ctx, s.store, ownerID, ids, CategoryFeeding, FeedingStatus{}, domain.ProjectFeedingStatus)
}
