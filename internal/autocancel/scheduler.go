package autocancel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/auth/session"
	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"github.com/angelmondragon/iotfarm-web/pkg/iotfarm"
	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/metrics"
	"github.com/angelmondragon/iotfarm-web/pkg/redis"
	"go.uber.org/multierr"
)

// entryGrace keeps an entry alive past its due time so a stalled worker still finds it.
const entryGrace = time.Hour

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	ScheduleAt(ctx context.Context, key, member string, at time.Time) error
	DueMembers(ctx context.Context, key string, now time.Time, limit int64) ([]string, error)
	Unschedule(ctx context.Context, key string, members ...string) error
	AutoCancelKey(orderID string) string
	AutoCancelDueKey() string
}

// Scheduler anchors PENDING orders on first observation and tracks them in Redis
// until the worker cancels them or they leave PENDING.
type Scheduler struct {
	store   store
	table   enums.StatusTable
	cfg     config.AutoCancelConfig
	metrics *metrics.AutoCancelMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewScheduler(st store, table enums.StatusTable, cfg config.AutoCancelConfig, m *metrics.AutoCancelMetrics, logg *logger.Logger) (*Scheduler, error) {
	if st == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Delay <= 0 {
		return nil, fmt.Errorf("auto-cancel delay must be positive")
	}
	return &Scheduler{
		store:   st,
		table:   table,
		cfg:     cfg,
		metrics: m,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Observe registers every PENDING order in orders and discards entries of visible
// orders that are no longer PENDING. Re-observation never moves a deadline.
// Back-office views only discard: an entry carries the owner's identity and token.
func (s *Scheduler) Observe(ctx context.Context, sess session.Session, orders []iotfarm.Order) error {
	if !sess.Authenticated() {
		return nil
	}
	var errs error
	for _, order := range orders {
		orderID := strings.TrimSpace(order.OrderID)
		if orderID == "" {
			continue
		}
		label, _ := s.table.Label(order.Status)
		if label != enums.OrderStatusPending {
			errs = multierr.Append(errs, s.Discard(ctx, orderID))
			continue
		}
		if sess.Role.IsBackOffice() {
			continue
		}
		errs = multierr.Append(errs, s.anchor(ctx, sess, orderID))
	}
	return errs
}

func (s *Scheduler) anchor(ctx context.Context, sess session.Session, orderID string) error {
	now := s.now().UTC()
	entry := Entry{
		OrderID:   orderID,
		Identity:  sess.Identity(),
		Token:     sess.Bearer(),
		FirstSeen: now,
		DueAt:     now.Add(s.cfg.Delay),
	}
	payload, err := entry.encode()
	if err != nil {
		return err
	}

	key := s.store.AutoCancelKey(orderID)
	created, err := s.store.SetNX(ctx, key, payload, s.cfg.Delay+entryGrace)
	if err != nil {
		return fmt.Errorf("anchor order %s: %w", orderID, err)
	}
	if !created {
		raw, err := s.store.Get(ctx, key)
		if err != nil {
			if redis.IsNil(err) {
				return nil
			}
			return fmt.Errorf("read entry %s: %w", orderID, err)
		}
		existing, err := decodeEntry(raw)
		if err != nil {
			return err
		}
		entry = existing
	} else {
		s.metrics.IncScheduled()
		logCtx := s.logg.WithOrderID(ctx, orderID)
		s.logg.Info(s.logg.WithField(logCtx, "due_at", entry.DueAt), "order auto-cancel scheduled")
	}

	// ZADD with an unchanged score is a no-op; repeating it heals a lost index write.
	if err := s.store.ScheduleAt(ctx, s.store.AutoCancelDueKey(), orderID, entry.DueAt); err != nil {
		return fmt.Errorf("schedule order %s: %w", orderID, err)
	}
	return nil
}

// Discard drops any pending entry for orderID.
func (s *Scheduler) Discard(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil
	}
	if err := s.store.Unschedule(ctx, s.store.AutoCancelDueKey(), orderID); err != nil {
		return fmt.Errorf("unschedule order %s: %w", orderID, err)
	}
	if err := s.store.Del(ctx, s.store.AutoCancelKey(orderID)); err != nil {
		return fmt.Errorf("delete entry %s: %w", orderID, err)
	}
	return nil
}

// Lookup returns the entry for orderID, if any.
func (s *Scheduler) Lookup(ctx context.Context, orderID string) (Entry, bool, error) {
	raw, err := s.store.Get(ctx, s.store.AutoCancelKey(orderID))
	if err != nil {
		if redis.IsNil(err) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		return Entry{}, false, err
	}
	return entry, true, nil
}
