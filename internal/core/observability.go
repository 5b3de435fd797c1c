package core

import (
	"context"
	"time"
)

// Clock abstracts time acquisition for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now invokes the wrapped function.
func (f ClockFunc) Now() time.Time { return f() }

// Logger is the minimal structured logging surface the service emits to.
// Arguments are alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// AuditStatus labels the outcome recorded in an audit entry.
type AuditStatus string

// Audit entry statuses.
const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry captures one service operation for the audit trail.
type AuditEntry struct {
	Operation string
	Entity    EntityType
	EntityID  string
	Action    Action
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives audit entries emitted by the service.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// MetricsRecorder observes per-operation outcomes and durations.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// TraceSpan ends a traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

// ReminderScheduler is the external reminder collaborator. ScheduleAt returns
// the reminder id and true on success; past dates yield ("", false) without
// side effects. Failures never propagate into the triggering write.
type ReminderScheduler interface {
	ScheduleAt(ctx context.Context, category string, at time.Time, title, body string) (string, bool)
	CancelByCategory(ctx context.Context, category string) int
}

type noopReminderScheduler struct{}

func (noopReminderScheduler) ScheduleAt(context.Context, string, time.Time, string, string) (string, bool) {
	return "", false
}

func (noopReminderScheduler) CancelByCategory(context.Context, string) int { return 0 }

type serviceOptions struct {
	clock     Clock
	logger    Logger
	audit     AuditRecorder
	metrics   MetricsRecorder
	tracer    Tracer
	reminders ReminderScheduler
	photos    PhotoStore
	bulkRate  float64
	bulkBurst int
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:     ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:    noopLogger{},
		audit:     noopAuditRecorder{},
		metrics:   noopMetricsRecorder{},
		tracer:    noopTracer{},
		reminders: noopReminderScheduler{},
		bulkRate:  defaultBulkWritesPerSecond,
		bulkBurst: bulkThrottleEvery,
	}
}

// ServiceOption customises service construction.
type ServiceOption func(*serviceOptions)

// WithClock overrides the service clock.
func WithClock(clock Clock) ServiceOption {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger wires a structured logger.
func WithLogger(logger Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAuditRecorder wires an audit trail recorder.
func WithAuditRecorder(recorder AuditRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.audit = recorder
		}
	}
}

// WithMetricsRecorder wires an operation metrics recorder.
func WithMetricsRecorder(recorder MetricsRecorder) ServiceOption {
	return func(o *serviceOptions) {
		if recorder != nil {
			o.metrics = recorder
		}
	}
}

// WithTracer wires an operation tracer.
func WithTracer(tracer Tracer) ServiceOption {
	return func(o *serviceOptions) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithReminderScheduler wires the reminder collaborator.
func WithReminderScheduler(scheduler ReminderScheduler) ServiceOption {
	return func(o *serviceOptions) {
		if scheduler != nil {
			o.reminders = scheduler
		}
	}
}

// WithPhotoStore wires the photo attachment collaborator.
func WithPhotoStore(store PhotoStore) ServiceOption {
	return func(o *serviceOptions) {
		if store != nil {
			o.photos = store
		}
	}
}

// WithBulkWriteRate tunes the offspring creation throttle (writes per second
// with the given burst).
func WithBulkWriteRate(perSecond float64, burst int) ServiceOption {
	return func(o *serviceOptions) {
		if perSecond > 0 {
			o.bulkRate = perSecond
		}
		if burst > 0 {
			o.bulkBurst = burst
		}
	}
}
