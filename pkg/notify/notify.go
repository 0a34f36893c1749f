// Package notify queues toast notifications per identity until the browser polls them.
package notify

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"golang.org/x/crypto/blake2b"
)

const pendingTTL = 24 * time.Hour

// Toast is one user-facing notification.
type Toast struct {
	Level     enums.ToastLevel `json:"level"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

type store interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	PushCapped(ctx context.Context, key string, value any, max int64, ttl time.Duration) error
	PopAll(ctx context.Context, key string, count int) ([]string, error)
	ToastKey(identity string) string
	ToastFingerprintKey(identity, fingerprint string) string
}

// Notifier is the surface services depend on.
type Notifier interface {
	Push(ctx context.Context, identity string, toast Toast) (bool, error)
}

// Service stores toasts in Redis lists keyed by identity.
type Service struct {
	store      store
	visibleFor time.Duration
	maxPending int64
	now        func() time.Time
}

func NewService(s store, cfg config.ToastConfig) (*Service, error) {
	if s == nil {
		return nil, errors.New("toast store required")
	}
	maxPending := cfg.MaxPending
	if maxPending <= 0 {
		maxPending = 50
	}
	return &Service{
		store:      s,
		visibleFor: cfg.VisibleFor,
		maxPending: maxPending,
		now:        time.Now,
	}, nil
}

// Push queues toast for identity. An identical toast (same level and message) pushed
// while a previous one is still visible is dropped; the bool reports whether it was
// queued.
func (s *Service) Push(ctx context.Context, identity string, toast Toast) (bool, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return false, nil
	}
	if !toast.Level.IsValid() {
		return false, fmt.Errorf("invalid toast level %q", toast.Level)
	}
	if strings.TrimSpace(toast.Message) == "" {
		return false, errors.New("toast message required")
	}

	if s.visibleFor > 0 {
		fresh, err := s.store.SetNX(ctx, s.store.ToastFingerprintKey(identity, Fingerprint(toast)), 1, s.visibleFor)
		if err != nil {
			return false, fmt.Errorf("toast dedupe: %w", err)
		}
		if !fresh {
			return false, nil
		}
	}

	if toast.CreatedAt.IsZero() {
		toast.CreatedAt = s.now().UTC()
	}
	payload, err := json.Marshal(toast)
	if err != nil {
		return false, fmt.Errorf("encode toast: %w", err)
	}
	if err := s.store.PushCapped(ctx, s.store.ToastKey(identity), payload, s.maxPending, pendingTTL); err != nil {
		return false, fmt.Errorf("queue toast: %w", err)
	}
	return true, nil
}

// Drain returns and removes the pending toasts for identity, oldest first.
func (s *Service) Drain(ctx context.Context, identity string) ([]Toast, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return []Toast{}, nil
	}
	raw, err := s.store.PopAll(ctx, s.store.ToastKey(identity), int(s.maxPending))
	if err != nil {
		return nil, fmt.Errorf("drain toasts: %w", err)
	}
	out := make([]Toast, 0, len(raw))
	for _, item := range raw {
		var toast Toast
		if err := json.Unmarshal([]byte(item), &toast); err != nil {
			continue
		}
		out = append(out, toast)
	}
	return out, nil
}

// Fingerprint identifies a toast by level and message.
func Fingerprint(toast Toast) string {
	sum := blake2b.Sum256([]byte(string(toast.Level) + "\x00" + toast.Message))
	return hex.EncodeToString(sum[:16])
}

func Success(message string) Toast {
	return Toast{Level: enums.ToastLevelSuccess, Message: message}
}

func Info(message string) Toast {
	return Toast{Level: enums.ToastLevelInfo, Message: message}
}

func Error(message string) Toast {
	return Toast{Level: enums.ToastLevelError, Message: message}
}
