// Package cron dispatches the scheduled jobs. The dispatcher's only
// responsibility is enqueuing due job kinds through the queue client; the
// worker pool does the actual work.
package cron

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"quizhub/internal/config"
	"quizhub/internal/jobs"
)

// Entry is one row of the scheduled-task table.
type Entry struct {
	Spec string
	Kind jobs.Kind
	Args interface{}
}

// Schedule builds the task table from configured hours: the inactivity
// reminder every day, the performance report on day 1 of each month.
func Schedule(cfg *config.ScheduleConfig) []Entry {
	return []Entry{
		{
			Spec: fmt.Sprintf("0 0 %d * * *", cfg.ReminderHour),
			Kind: jobs.KindDailyReminder,
		},
		{
			Spec: fmt.Sprintf("0 0 %d 1 * *", cfg.ReportHour),
			Kind: jobs.KindMonthlyReport,
		},
	}
}

// Dispatcher ticks the schedule and enqueues due jobs.
type Dispatcher struct {
	cron    *cron.Cron
	queue   *jobs.Queue
	entries []Entry
	logger  *zap.Logger
}

func New(queue *jobs.Queue, entries []Entry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		cron:    cron.New(cron.WithSeconds()),
		queue:   queue,
		entries: entries,
		logger:  logger,
	}
}

// Start registers the schedule and starts ticking.
func (d *Dispatcher) Start() error {
	for _, entry := range d.entries {
		entry := entry
		_, err := d.cron.AddFunc(entry.Spec, func() {
			d.logger.Debug("enqueuing scheduled job", zap.String("kind", string(entry.Kind)))
			handle, err := d.queue.Submit(context.Background(), entry.Kind, entry.Args)
			if err != nil {
				d.logger.Error("scheduled job enqueue failed",
					zap.String("kind", string(entry.Kind)), zap.Error(err))
				return
			}
			d.logger.Info("scheduled job enqueued",
				zap.String("kind", string(entry.Kind)), zap.String("job_id", handle))
		})
		if err != nil {
			return fmt.Errorf("register %s schedule: %w", entry.Kind, err)
		}
	}

	d.cron.Start()
	d.logger.Info("cron dispatcher started", zap.Int("entries", len(d.entries)))
	return nil
}

// Stop stops ticking and returns a context that is done once in-flight
// enqueue callbacks have finished.
func (d *Dispatcher) Stop() context.Context {
	return d.cron.Stop()
}
