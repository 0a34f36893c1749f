package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/iotfarm-web/pkg/enums"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Redis         RedisConfig
	DB            DBConfig
	JWT           JWTConfig
	Session       SessionConfig
	API           APIConfig
	Cart          CartConfig
	Orders        OrdersConfig
	Toast         ToastConfig
	AutoCancel    AutoCancelConfig
	Storage       StorageConfig
	Media         MediaConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Cart.Backend == CartBackendSQL {
		if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
			return nil, err
		}
	}
	if err := cfg.Orders.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"IOTFARM_APP_ENV" required:"true"`
	Port         string   `envconfig:"IOTFARM_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"IOTFARM_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"IOTFARM_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"IOTFARM_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"IOTFARM_REDIS_URL"`
	Address      string        `envconfig:"IOTFARM_REDIS_ADDR"`
	Password     string        `envconfig:"IOTFARM_REDIS_PASSWORD"`
	DB           int           `envconfig:"IOTFARM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"IOTFARM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IOTFARM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IOTFARM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IOTFARM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IOTFARM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// DBConfig is only consulted when the SQL cart backend is selected.
type DBConfig struct {
	DSN    string `envconfig:"IOTFARM_DB_DSN"`
	Driver string `envconfig:"IOTFARM_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"IOTFARM_DB_HOST"`
	Port     int    `envconfig:"IOTFARM_DB_PORT" default:"5432"`
	User     string `envconfig:"IOTFARM_DB_USER"`
	Password string `envconfig:"IOTFARM_DB_PASSWORD"`
	Name     string `envconfig:"IOTFARM_DB_NAME"`
	SSLMode  string `envconfig:"IOTFARM_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"IOTFARM_SQLITE_PATH" default:"iotfarm-web.db"`

	MaxOpenConns    int           `envconfig:"IOTFARM_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"IOTFARM_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"IOTFARM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"IOTFARM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"IOTFARM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"IOTFARM_JWT_ISSUER" default:"iotfarm-web"`
	ExpirationMinutes int    `envconfig:"IOTFARM_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TTL returns the browser token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type SessionConfig struct {
	TTL time.Duration `envconfig:"IOTFARM_SESSION_TTL" default:"12h"`
}

// APIConfig points at the remote IoT Farm API.
type APIConfig struct {
	BaseURL string        `envconfig:"IOTFARM_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"IOTFARM_API_TIMEOUT" default:"15s"`
}

type CartConfig struct {
	Backend string        `envconfig:"IOTFARM_CART_BACKEND" default:"redis"`
	TTL     time.Duration `envconfig:"IOTFARM_CART_TTL" default:"720h"`
}

// OrdersConfig carries the status code table. The remote enum has drifted between
// screens, so the mapping is configurable instead of hard-coded.
type OrdersConfig struct {
	StatusCodes map[string]int `envconfig:"IOTFARM_ORDER_STATUS_CODES"`
}

// StatusTable resolves the configured table, falling back to the default mapping.
func (o OrdersConfig) StatusTable() (enums.StatusTable, error) {
	return enums.NewStatusTable(o.StatusCodes)
}

func (o OrdersConfig) validate() error {
	if _, err := o.StatusTable(); err != nil {
		return fmt.Errorf("%s: %w", EnvOrderStatusCodes, err)
	}
	return nil
}

type ToastConfig struct {
	VisibleFor time.Duration `envconfig:"IOTFARM_TOAST_VISIBLE_FOR" default:"3s"`
	MaxPending int64         `envconfig:"IOTFARM_TOAST_MAX_PENDING" default:"50"`
}

type AutoCancelConfig struct {
	Delay        time.Duration `envconfig:"IOTFARM_AUTOCANCEL_DELAY" default:"5m"`
	ScanInterval time.Duration `envconfig:"IOTFARM_AUTOCANCEL_SCAN_INTERVAL" default:"15s"`
	MaxAttempts  int           `envconfig:"IOTFARM_AUTOCANCEL_MAX_ATTEMPTS" default:"3"`
	BatchSize    int64         `envconfig:"IOTFARM_AUTOCANCEL_BATCH_SIZE" default:"100"`
}

type StorageConfig struct {
	Bucket        string `envconfig:"IOTFARM_STORAGE_BUCKET"`
	Region        string `envconfig:"IOTFARM_STORAGE_REGION" default:"us-east-1"`
	Endpoint      string `envconfig:"IOTFARM_STORAGE_ENDPOINT"`
	PublicBaseURL string `envconfig:"IOTFARM_STORAGE_PUBLIC_BASE_URL"`
	PathStyle     bool   `envconfig:"IOTFARM_STORAGE_PATH_STYLE" default:"false"`
}

// Enabled reports whether an object store has been configured.
func (s StorageConfig) Enabled() bool {
	return strings.TrimSpace(s.Bucket) != ""
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"IOTFARM_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes converts the configured megabytes to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(m.MaxUploadMB) << 20
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"IOTFARM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"IOTFARM_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"IOTFARM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite  bool `envconfig:"IOTFARM_USE_SQLITE" default:"false"`
	AutoCancel bool `envconfig:"IOTFARM_FEATURE_AUTOCANCEL" default:"true"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range splitDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
