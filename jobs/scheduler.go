package jobs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Syncer is the part of the room synchronizer the scheduler drives.
type Syncer interface {
	RunPass(ctx context.Context) services.SyncReport
	DeepPass(ctx context.Context) services.SyncReport
}

type Options struct {
	Interval    time.Duration
	DailyAt     string // "HH:MM" in Location
	PassTimeout time.Duration
	Location    *time.Location
	// RunOnStart fires the interval pass as soon as the scheduler starts.
	RunOnStart bool
}

// Scheduler runs the reconciliation passes. Each job is singleton: a pass
// that is still running when the next tick comes makes that tick reschedule.
type Scheduler struct {
	cron   gocron.Scheduler
	syncer Syncer
	opts   Options
	logger *zap.SugaredLogger
}

func New(syncer Syncer, opts Options, logger *zap.SugaredLogger) (*Scheduler, error) {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.PassTimeout <= 0 {
		opts.PassTimeout = 5 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	hour, minute, err := ParseDailyAt(opts.DailyAt)
	if err != nil {
		return nil, err
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(opts.Location))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s := &Scheduler{cron: cron, syncer: syncer, opts: opts, logger: logger}

	hourlyOpts := []gocron.JobOption{
		gocron.WithName("sync-" + services.PassHourly),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if opts.RunOnStart {
		hourlyOpts = append(hourlyOpts, gocron.WithStartAt(gocron.WithStartImmediately()))
	}
	if _, err := cron.NewJob(
		gocron.DurationJob(opts.Interval),
		gocron.NewTask(s.runPass, services.PassHourly),
		hourlyOpts...,
	); err != nil {
		return nil, fmt.Errorf("register %s sync: %w", services.PassHourly, err)
	}

	if _, err := cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(s.runPass, services.PassDeep),
		gocron.WithName("sync-"+services.PassDeep),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("register %s sync: %w", services.PassDeep, err)
	}
	return s, nil
}

func (s *Scheduler) runPass(kind string) {
	defer utils.Recover("sync-"+kind, s.logger)

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.PassTimeout)
	defer cancel()

	if kind == services.PassDeep {
		s.syncer.DeepPass(ctx)
		return
	}
	s.syncer.RunPass(ctx)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infow("scheduler started",
		"interval", s.opts.Interval,
		"dailyAt", s.opts.DailyAt,
		"location", s.opts.Location.String())
}

// Shutdown waits for running passes to return.
func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

// ParseDailyAt parses "HH:MM". An empty value means 02:00.
func ParseDailyAt(raw string) (uint, uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 2, 0, nil
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid daily time %q, expected HH:MM", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return uint(h), uint(m), nil
}
