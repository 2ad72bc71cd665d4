package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/Alien67x6/mt5-monitoring-API/internal/correlation"
	"github.com/Alien67x6/mt5-monitoring-API/internal/logger"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
	"github.com/Alien67x6/mt5-monitoring-API/internal/notifier"
)

// Evaluator is the part of the engine the scheduler drives.
type Evaluator interface {
	EvaluateAll(ctx context.Context, trigger model.TriggerType) []model.Alert
	Sizes() []correlation.Size
	Capacity() int
}

// Scheduler manages the periodic poll job and answers chat commands.
type Scheduler struct {
	Cron   *cron.Cron
	Engine Evaluator
	Ctx    context.Context

	cycles atomic.Int64
}

// NewScheduler creates a new Scheduler. Panics inside a job are recovered and
// a poll that is still running when the next tick fires is skipped.
func NewScheduler(ctx context.Context, engine Evaluator) *Scheduler {
	cl := logger.CronLogger{}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Engine: engine,
		Ctx:    ctx,
	}
}

// Register adds the poll job. pollSpec accepts descriptors such as "@every 60s".
func (s *Scheduler) Register(pollSpec string) error {
	if _, err := s.Cron.AddFunc(pollSpec, s.pollTask); err != nil {
		return fmt.Errorf("register poll task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running poll to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunNow executes one cycle immediately (RUN_ON_START).
func (s *Scheduler) RunNow() []model.Alert {
	return s.runCycle(model.TriggerStartup)
}

// Cycles returns how many cycles have run.
func (s *Scheduler) Cycles() int64 { return s.cycles.Load() }

func (s *Scheduler) pollTask() {
	s.runCycle(model.TriggerPeriodic)
}

func (s *Scheduler) runCycle(trigger model.TriggerType) []model.Alert {
	n := s.cycles.Add(1)
	logger.Debug("running %s cycle #%d", strings.ToLower(string(trigger)), n)
	alerts := s.Engine.EvaluateAll(s.Ctx, trigger)
	if len(alerts) > 0 {
		logger.Info("%s cycle #%d raised %d alert(s)", strings.ToLower(string(trigger)), n, len(alerts))
	}
	return alerts
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch strings.ToLower(strings.TrimPrefix(command, "/")) {
	case "check", "monitor":
		alerts := s.Engine.EvaluateAll(ctx, model.TriggerCommand)
		return notifier.FormatCycle(alerts)
	case "status":
		return notifier.FormatStatus(s.Engine.Sizes(), s.Engine.Capacity())
	default:
		return "Available commands:\n• /check run a detection cycle now\n• /status pending price crossovers per instrument"
	}
}
