package autocancel

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/iotfarm-web/pkg/errors"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/metrics"
	"github.com/angelmondragon/iotfarm-web/pkg/notify"
	"github.com/angelmondragon/iotfarm-web/pkg/redis"
	"go.uber.org/multierr"
)

// JobName identifies the auto-cancel job in logs and cron metrics.
const JobName = "order-auto-cancel"

const (
	MsgAutoCancelled = "Order %s was cancelled automatically"
	defaultBatchSize = 100
)

type canceller interface {
	GetOrder(ctx context.Context, token, orderID string) (iotfarm.Order, error)
	CancelOrder(ctx context.Context, token, orderID string) error
}

// Job cancels orders whose entries are due. It satisfies cron.Job.
type Job struct {
	scheduler *Scheduler
	api       canceller
	notifier  notify.Notifier
}

func NewJob(scheduler *Scheduler, api canceller, notifier notify.Notifier) (*Job, error) {
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	if api == nil {
		return nil, fmt.Errorf("iotfarm client required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &Job{scheduler: scheduler, api: api, notifier: notifier}, nil
}

func (j *Job) Name() string { return JobName }

func (j *Job) Run(ctx context.Context) error {
	s := j.scheduler
	batch := s.cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	now := s.now().UTC()
	due, err := s.store.DueMembers(ctx, s.store.AutoCancelDueKey(), now, batch)
	if err != nil {
		return fmt.Errorf("load due orders: %w", err)
	}

	var errs error
	for _, orderID := range due {
		errs = multierr.Append(errs, j.fire(ctx, orderID, now))
	}
	s.logg.Info(s.logg.WithField(ctx, "count", len(due)), "auto-cancel sweep complete")
	return errs
}

func (j *Job) fire(ctx context.Context, orderID string, now time.Time) error {
	s := j.scheduler
	logCtx := s.logg.WithOrderID(ctx, orderID)

	raw, err := s.store.Get(ctx, s.store.AutoCancelKey(orderID))
	if err != nil {
		if redis.IsNil(err) {
			s.metrics.IncFired(metrics.AutoCancelSkipped)
			return s.Discard(ctx, orderID)
		}
		return fmt.Errorf("read entry %s: %w", orderID, err)
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "corrupt auto-cancel entry dropped")
		s.metrics.IncFired(metrics.AutoCancelDropped)
		return s.Discard(ctx, orderID)
	}
	if entry.DueAt.After(now) {
		// Index score and entry disagree; trust the entry.
		return s.store.ScheduleAt(ctx, s.store.AutoCancelDueKey(), orderID, entry.DueAt)
	}

	// The order may have been paid or cancelled since it was observed.
	order, err := j.api.GetOrder(ctx, entry.Token, orderID)
	if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		s.metrics.IncFired(metrics.AutoCancelSkipped)
		s.logg.Info(logCtx, "auto-cancel skipped, order not found")
		return s.Discard(ctx, orderID)
	}
	if err != nil {
		return j.failed(ctx, logCtx, orderID, entry, err)
	}
	if label, _ := s.table.Label(order.Status); label != enums.OrderStatusPending {
		s.metrics.IncFired(metrics.AutoCancelSkipped)
		s.logg.Info(s.logg.WithField(logCtx, "status", string(label)), "auto-cancel skipped, order no longer pending")
		return s.Discard(ctx, orderID)
	}

	cancelErr := j.api.CancelOrder(ctx, entry.Token, orderID)
	if cancelErr == nil {
		s.metrics.IncFired(metrics.AutoCancelCancelled)
		s.logg.Info(logCtx, "order auto-cancelled")
		j.toast(logCtx, entry.Identity, notify.Info(fmt.Sprintf(MsgAutoCancelled, orderID)))
		return s.Discard(ctx, orderID)
	}
	return j.failed(ctx, logCtx, orderID, entry, cancelErr)
}

// failed records one more attempt, retrying until MaxAttempts is reached.
func (j *Job) failed(ctx, logCtx context.Context, orderID string, entry Entry, cancelErr error) error {
	s := j.scheduler
	entry.Attempts++
	maxAttempts := s.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if entry.Attempts >= maxAttempts {
		s.metrics.IncFired(metrics.AutoCancelDropped)
		s.logg.Error(s.logg.WithField(logCtx, "attempts", entry.Attempts), "auto-cancel given up", cancelErr)
		j.toast(logCtx, entry.Identity, notify.Error(pkgerrors.PublicMessage(cancelErr)))
		return multierr.Append(
			fmt.Errorf("cancel order %s: %w", orderID, cancelErr),
			s.Discard(ctx, orderID),
		)
	}

	s.metrics.IncFired(metrics.AutoCancelRetry)
	payload, err := entry.encode()
	if err != nil {
		return multierr.Append(cancelErr, err)
	}
	if err := s.store.Set(ctx, s.store.AutoCancelKey(orderID), payload, s.cfg.Delay+entryGrace); err != nil {
		return multierr.Append(cancelErr, fmt.Errorf("record attempt %s: %w", orderID, err))
	}
	return fmt.Errorf("cancel order %s (attempt %d): %w", orderID, entry.Attempts, cancelErr)
}

func (j *Job) toast(ctx context.Context, identity string, toast notify.Toast) {
	if _, err := j.notifier.Push(ctx, identity, toast); err != nil {
		j.scheduler.logg.Warn(j.scheduler.logg.WithField(ctx, "error", err.Error()), "auto-cancel toast not queued")
	}
}
