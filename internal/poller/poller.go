// Package poller drives the host update cycle. It fires on a cron schedule
// and runs one update over every entity per tick; the schedule cache's
// throttle decides whether a tick actually reaches the network.
package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"github.com/klabast/wb-services/awb-kalender/internal/logger"
)

// DefaultSchedule polls every 30 minutes.
const DefaultSchedule = "*/30 * * * *"

// maxSleepCap bounds a single sleep so clock steps, DST transitions and
// system suspend are noticed within a minute.
const maxSleepCap = 60 * time.Second

// Updater is refreshed on every tick.
type Updater interface {
	UpdateAll(ctx context.Context)
}

// Poller runs Updater.UpdateAll on a cron schedule.
type Poller struct {
	expr    string
	updater Updater
	log     logger.Logger
	now     func() time.Time
	// after is time.After, replaceable in tests
	after func(time.Duration) <-chan time.Time
}

// ValidateSchedule checks that expr is a 5-field cron expression.
func ValidateSchedule(expr string) error {
	if len(strings.Fields(expr)) != 5 {
		return fmt.Errorf("invalid cron expression %q: expected 5 fields", expr)
	}
	if !gronx.IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q", expr)
	}
	return nil
}

// New creates a poller. An empty expression selects DefaultSchedule.
func New(expr string, u Updater, log logger.Logger) (*Poller, error) {
	if expr == "" {
		expr = DefaultSchedule
	}
	if err := ValidateSchedule(expr); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Poller{
		expr:    expr,
		updater: u,
		log:     log,
		now:     time.Now,
		after:   time.After,
	}, nil
}

// NextRun returns the first tick strictly after from.
func (p *Poller) NextRun(from time.Time) (time.Time, error) {
	return gronx.NextTickAfter(p.expr, from, false)
}

// Run performs an immediate update and then one per tick until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("Starting schedule poller (cron: %s)", p.expr)
	p.updater.UpdateAll(ctx)

	next, err := p.NextRun(p.now())
	if err != nil {
		return fmt.Errorf("failed to compute next poll: %w", err)
	}

	for {
		wait := next.Sub(p.now())
		if wait > maxSleepCap {
			wait = maxSleepCap
		}
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			p.log.Info("Schedule poller stopped")
			return nil
		case <-p.after(wait):
		}

		now := p.now()
		if now.Before(next) {
			continue
		}

		p.updater.UpdateAll(ctx)

		next, err = p.NextRun(now)
		if err != nil {
			return fmt.Errorf("failed to compute next poll: %w", err)
		}
	}
}
