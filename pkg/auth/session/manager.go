package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/config"
	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	redisclient "github.com/angelmondragon/iotfarm-web/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Manager owns the login/logout lifecycle of server-side sessions.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

// Loader exposes the read-only surface needed by middleware.
type Loader interface {
	Get(ctx context.Context, accessID string) (Session, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig, jwtCfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if cfg.TTL < jwtCfg.TTL() {
		return nil, fmt.Errorf("session ttl (%s) must cover access token ttl (%s)", cfg.TTL, jwtCfg.TTL())
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.TTL,
		now:   time.Now,
	}, nil
}

// Create stores a new session for a successful remote login.
func (m *Manager) Create(ctx context.Context, email string, role enums.Role, apiToken string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, fmt.Errorf("email is required")
	}
	if !role.IsValid() {
		return Session{}, fmt.Errorf("invalid role %q", role)
	}
	if strings.TrimSpace(apiToken) == "" {
		return Session{}, fmt.Errorf("api token is required")
	}

	sess := Session{
		AccessID: NewAccessID(),
		Email:    email,
		Role:     role,
		APIToken: apiToken,
		IssuedAt: m.now().UTC(),
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(sess.AccessID), payload, m.ttl); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get loads the session for accessID.
func (m *Manager) Get(ctx context.Context, accessID string) (Session, error) {
	if strings.TrimSpace(accessID) == "" {
		return Session{}, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return sess, nil
}

// Revoke deletes the session tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// NewAccessID produces the identifier used as the JWT jti and Redis key.
func NewAccessID() string {
	return uuid.NewString()
}
