// Command hatch-sweep rebuilds cocoon hatch reminders from store state,
// either once or on a cron schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"broodcore/internal/config"
	"broodcore/internal/core"
	"broodcore/internal/reminder"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("hatch-sweep", flag.ContinueOnError)
	once := fs.Bool("once", false, "run a single sweep and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("component", "hatch-sweep").Logger()

	engine := core.NewDefaultRulesEngine()
	target := cfg.SQLitePath
	if core.StorageDriver(cfg.StorageDriver) == core.StoragePostgres {
		target = cfg.PostgresDSN
	}
	store, err := core.Open(core.StorageDriver(cfg.StorageDriver), target, engine)
	if err != nil {
		log.Error().Err(err).Msg("open store")
		return 1
	}

	scheduler := reminder.NewLogScheduler(reminder.NewMemoryScheduler(nil), log)
	svc := core.NewService(store, core.WithLogger(zerologAdapter{log}))
	sweeper := reminder.NewSweeper(svc, scheduler, nil, log, cfg.LookbackDays, cfg.LookaheadDays)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := sweeper.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("sweep failed")
			return 1
		}
		return 0
	}

	c, err := sweeper.Start(ctx, cfg.SweepSchedule)
	if err != nil {
		log.Error().Err(err).Msg("start sweep")
		return 1
	}
	log.Info().Str("schedule", cfg.SweepSchedule).Msg("sweep running")
	<-ctx.Done()
	<-c.Stop().Done()
	return 0
}

// zerologAdapter bridges the service logger interface onto zerolog.
type zerologAdapter struct {
	log zerolog.Logger
}

func (a zerologAdapter) Debug(msg string, kv ...any) { a.emit(a.log.Debug(), msg, kv) }
func (a zerologAdapter) Info(msg string, kv ...any)  { a.emit(a.log.Info(), msg, kv) }
func (a zerologAdapter) Warn(msg string, kv ...any)  { a.emit(a.log.Warn(), msg, kv) }
func (a zerologAdapter) Error(msg string, kv ...any) { a.emit(a.log.Error(), msg, kv) }

func (zerologAdapter) emit(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}
