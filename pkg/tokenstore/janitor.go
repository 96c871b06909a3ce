package tokenstore

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Janitor periodically sweeps expired records so the table does not grow
// without bound. Revoked-but-unexpired records are kept until expiry; they
// still answer "revoked" to replay attempts.
type Janitor struct {
	store    Store
	log      *slog.Logger
	schedule string
	cron     *cron.Cron
}

// NewJanitor builds a sweeper on the given cron schedule, e.g. "@hourly".
func NewJanitor(store Store, schedule string, log *slog.Logger) *Janitor {
	return &Janitor{store: store, log: log, schedule: schedule}
}

// Start registers the sweep job and starts the scheduler.
func (j *Janitor) Start() error {
	c := cron.New()
	_, err := c.AddFunc(j.schedule, func() {
		n, err := j.store.DeleteExpired(context.Background())
		if err != nil {
			j.log.Error("token sweep failed", slog.String("error", err.Error()))
			return
		}
		if n > 0 {
			j.log.Info("swept expired refresh tokens", slog.Int64("deleted", n))
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	j.cron = c
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (j *Janitor) Stop(ctx context.Context) error {
	if j.cron == nil {
		return nil
	}
	select {
	case <-j.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
