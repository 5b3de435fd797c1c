// Package reminder provides reminder scheduling backends and the periodic
// hatch sweep.
package reminder

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"broodcore/internal/core"
)

// Entry is one scheduled reminder.
type Entry struct {
	ID       string
	Category string
	At       time.Time
	Title    string
	Body     string
}

// MemoryScheduler keeps reminders in process memory. It refuses past dates,
// which is the contract callers rely on to make scheduling best-effort.
type MemoryScheduler struct {
	mu      sync.Mutex
	clock   core.Clock
	entries map[string]Entry
}

// NewMemoryScheduler returns an empty scheduler. A nil clock defaults to UTC
// wall time.
func NewMemoryScheduler(clock core.Clock) *MemoryScheduler {
	if clock == nil {
		clock = core.ClockFunc(func() time.Time { return time.Now().UTC() })
	}
	return &MemoryScheduler{clock: clock, entries: make(map[string]Entry)}
}

// ScheduleAt registers a reminder. Past or zero dates yield ("", false).
func (s *MemoryScheduler) ScheduleAt(_ context.Context, category string, at time.Time, title, body string) (string, bool) {
	if at.IsZero() || !at.After(s.clock.Now()) {
		return "", false
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.entries[id] = Entry{ID: id, Category: category, At: at, Title: title, Body: body}
	s.mu.Unlock()
	return id, true
}

// CancelByCategory drops all reminders in category, returning the count.
func (s *MemoryScheduler) CancelByCategory(_ context.Context, category string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if e.Category == category {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Pending returns all scheduled reminders ordered by fire time.
func (s *MemoryScheduler) Pending() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
