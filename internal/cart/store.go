package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/logger"
	"github.com/angelmondragon/iotfarm-web/pkg/redis"
)

// Store persists one cart snapshot per identity. Implementations treat an empty
// identity as logged-out: Load returns nothing and Save/Clear do nothing.
type Store interface {
	Load(ctx context.Context, identity string) ([]Item, error)
	Save(ctx context.Context, identity string, items []Item) error
	Clear(ctx context.Context, identity string) error
}

type kv interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(identity string) string
}

// RedisStore keeps snapshots under cart_<identity>.
type RedisStore struct {
	kv   kv
	ttl  time.Duration
	logg *logger.Logger
}

func NewRedisStore(client kv, ttl time.Duration, logg *logger.Logger) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RedisStore{kv: client, ttl: ttl, logg: logg}, nil
}

func (s *RedisStore) Load(ctx context.Context, identity string) ([]Item, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return []Item{}, nil
	}
	raw, err := s.kv.Get(ctx, s.kv.CartKey(identity))
	if err != nil {
		if redis.IsNil(err) {
			return []Item{}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return decodeSnapshot(ctx, s.logg, identity, raw), nil
}

func (s *RedisStore) Save(ctx context.Context, identity string, items []Item) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil
	}
	payload, err := encodeSnapshot(items)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(identity), payload, s.ttl); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, identity string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil
	}
	if err := s.kv.Del(ctx, s.kv.CartKey(identity)); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func encodeSnapshot(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(payload), nil
}

// decodeSnapshot fails open: a corrupt snapshot reads as an empty cart.
func decodeSnapshot(ctx context.Context, logg *logger.Logger, identity, raw string) []Item {
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"identity": identity,
			"error":    err.Error(),
		}), "corrupt cart snapshot ignored")
		return []Item{}
	}
	if items == nil {
		return []Item{}
	}
	return items
}
