package core

import (
	"context"
	"fmt"
	"strings"
)

const (
	// defaultBulkWritesPerSecond caps sustained offspring creation so a
	// large hatch does not starve concurrent writers.
	defaultBulkWritesPerSecond = 50
	// bulkThrottleEvery is the limiter burst: up to this many creations run
	// back to back before the limiter forces a pause.
	bulkThrottleEvery = 10
)

// NameGenerator produces the name for offspring i of total (1-based).
type NameGenerator func(i, total int) string

// DefaultNameGenerator numbers offspring after the mother with zero-padded
// suffixes, e.g. "Rosie-001" .. "Rosie-150".
func DefaultNameGenerator(base string) NameGenerator {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "sling"
	}
	return func(i, total int) string {
		width := len(fmt.Sprint(total))
		if width < 2 {
			width = 2
		}
		return fmt.Sprintf("%s-%0*d", base, width, i)
	}
}

// BulkError records one failed creation within a bulk run.
type BulkError struct {
	Name string
	Err  error
}

// BulkResult summarizes a bulk offspring run. Partial success is a normal
// outcome: successes are never rolled back when later items fail.
type BulkResult struct {
	Added  int
	Failed int
	Names  []string
	Errors []BulkError
}

// Succeeded reports whether at least one offspring was created.
func (r BulkResult) Succeeded() bool { return r.Added > 0 }

// BulkCreateError is returned when a bulk run creates nothing at all.
type BulkCreateError struct {
	Requested int
	First     error
}

func (e BulkCreateError) Error() string {
	return fmt.Sprintf("bulk create failed for all %d offspring: %v", e.Requested, e.First)
}

func (e BulkCreateError) Unwrap() error { return e.First }

// CreateOffspring creates count specimens from the template, naming each via
// gen. Creation is sequential and throttled by the service limiter; the
// context is checked each iteration so a cancelled caller stops promptly with
// the partial result intact.
func (s *Service) CreateOffspring(ctx context.Context, template Specimen, count int, gen NameGenerator) (BulkResult, error) {
	var result BulkResult
	err := s.instrument(ctx, "create_offspring", func(ctx context.Context) (string, error) {
		if count < 1 {
			return "", ValidationError{Field: "count", Message: "must be at least 1"}
		}
		if gen == nil {
			gen = DefaultNameGenerator(template.Name)
		}
		for i := 1; i <= count; i++ {
			if err := ctx.Err(); err != nil {
				result.Failed += count - i + 1
				result.Errors = append(result.Errors, BulkError{Name: gen(i, count), Err: err})
				break
			}
			if err := s.limiter.Wait(ctx); err != nil {
				result.Failed += count - i + 1
				result.Errors = append(result.Errors, BulkError{Name: gen(i, count), Err: err})
				break
			}
			spec := template
			spec.ID = ""
			spec.Name = gen(i, count)
			created, _, err := s.CreateSpecimen(ctx, spec)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BulkError{Name: spec.Name, Err: err})
				continue
			}
			result.Added++
			result.Names = append(result.Names, created.Name)
		}
		if result.Added == 0 {
			var first error
			if len(result.Errors) > 0 {
				first = result.Errors[0].Err
			}
			return "", BulkCreateError{Requested: count, First: first}
		}
		if result.Failed > 0 {
			s.opts.logger.Warn("bulk offspring run partially failed",
				"added", result.Added, "failed", result.Failed)
		}
		entityID := ""
		if template.ParentFemaleID != nil {
			entityID = *template.ParentFemaleID
		}
		return entityID, nil
	})
	return result, err
}
