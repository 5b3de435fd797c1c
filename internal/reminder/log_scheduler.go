package reminder

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"broodcore/internal/core"
)

// LogScheduler wraps another scheduler and logs every scheduling decision.
// Used by the sweep command where the log is the delivery channel.
type LogScheduler struct {
	next core.ReminderScheduler
	log  zerolog.Logger
}

// NewLogScheduler wraps next with structured logging.
func NewLogScheduler(next core.ReminderScheduler, log zerolog.Logger) *LogScheduler {
	return &LogScheduler{next: next, log: log}
}

func (s *LogScheduler) ScheduleAt(ctx context.Context, category string, at time.Time, title, body string) (string, bool) {
	id, ok := s.next.ScheduleAt(ctx, category, at, title, body)
	ev := s.log.Info()
	if !ok {
		ev = s.log.Warn()
	}
	ev.Str("category", category).
		Time("at", at).
		Str("title", title).
		Bool("scheduled", ok).
		Msg("reminder")
	return id, ok
}

func (s *LogScheduler) CancelByCategory(ctx context.Context, category string) int {
	n := s.next.CancelByCategory(ctx, category)
	s.log.Info().Str("category", category).Int("cancelled", n).Msg("reminders cancelled")
	return n
}
