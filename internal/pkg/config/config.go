package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string        `env:"PORT,            default=8080"`
	Env             string        `env:"ENV,             default=development"`
	LogLevel        string        `env:"LOG_LEVEL,       default=info"`
	LogPretty       bool          `env:"LOG_PRETTY,      default=false"`
	ProjectFile     string        `env:"PROJECT_FILE,    default=configs/project.yaml"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL, default=http://localhost:8080"`
	CORSOrigins     []string      `env:"CORS_ORIGINS,    default=*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`
	ProbeInterval   time.Duration `env:"CONNECTIVITY_PROBE_INTERVAL, default=15s"`
	Workers         int           `env:"SIDE_EFFECT_WORKERS, default=8"`

	Mongo        MongoConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Upload       UploadConfig
	Applications ApplicationsConfig
	Broker       BrokerConfig

	// Project is read from ProjectFile, not from the environment.
	Project Project
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=jobboard"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,        default=0"`
	CacheTTL time.Duration `env:"REDIS_CACHE_TTL, default=24h"`
}

type AuthConfig struct {
	SigningSecret   string        `env:"AUTH_SIGNING_SECRET"`
	FederatedSecret string        `env:"AUTH_FEDERATED_SECRET"`
	FederatedIssuer string        `env:"AUTH_FEDERATED_ISSUER"`
	TokenTTL        time.Duration `env:"AUTH_TOKEN_TTL,     default=1h"`
	SessionTTL      time.Duration `env:"AUTH_SESSION_TTL,   default=24h"`
	MaxAttempts     int           `env:"AUTH_MAX_ATTEMPTS,  default=5"`
	AttemptWindow   time.Duration `env:"AUTH_ATTEMPT_WINDOW, default=1m"`
}

type UploadConfig struct {
	Attempts int           `env:"UPLOAD_ATTEMPTS, default=3"`
	Backoff  time.Duration `env:"UPLOAD_BACKOFF,  default=1s"`
	Timeout  time.Duration `env:"UPLOAD_TIMEOUT,  default=30s"`
}

type ApplicationsConfig struct {
	// AllowDuplicates keeps the legacy behavior of accepting a second
	// application for the same job and applicant.
	AllowDuplicates bool `env:"APPLICATIONS_ALLOW_DUPLICATES, default=false"`
}

type BrokerConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE, default=jobboard.notifications"`
}

// Project is the static client project file shared with the front end.
type Project struct {
	ProjectID     string `yaml:"project_id"`
	APIKey        string `yaml:"api_key"`
	StorageBucket string `yaml:"storage_bucket"`
	AuthDomain    string `yaml:"auth_domain"`
}

var (
	ErrMissingProjectID = errors.New("project_id is required")
	ErrMissingAPIKey    = errors.New("api_key is required")
	ErrMissingSecret    = errors.New("AUTH_SIGNING_SECRET is required")
)

// Load reads .env (when present), the environment and the project file.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	project, err := LoadProject(cfg.ProjectFile)
	if err != nil {
		return nil, err
	}
	cfg.Project = *project

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadProject reads and parses the project file.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	return &p, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Project.ProjectID == "":
		return ErrMissingProjectID
	case c.Project.APIKey == "":
		return ErrMissingAPIKey
	case c.Auth.SigningSecret == "":
		return ErrMissingSecret
	}
	return nil
}

// IsDevelopment reports whether the process runs in the development
// environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
