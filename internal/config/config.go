package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultDSN         = "host=localhost user=postgres password=postgres dbname=building port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
	minJWTSecretLength = 32
)

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")
	ErrShortJWTSecret   = fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
)

type Config struct {
	HTTPPort       string        `yaml:"http_port"`
	DatabaseDriver string        `yaml:"database_driver"`
	DatabaseDSN    string        `yaml:"database_dsn"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	CORSOrigins    string        `yaml:"cors_allowed_origins"`
	LoginRateLimit int           `yaml:"login_rate_limit"` // requests per minute per IP

	Log        LogConfig        `yaml:"log"`
	SuperAdmin SuperAdminConfig `yaml:"super_admin"`
	MQTT       MQTTConfig       `yaml:"mqtt"`

	// Warnings collects non-fatal findings (default credentials etc.) for the caller to log.
	Warnings []string `yaml:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// SuperAdminConfig seeds the first account. Seeding is skipped unless both
// username and password are set.
type SuperAdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// MQTTConfig is optional; an empty BrokerURL disables notifications.
type MQTTConfig struct {
	BrokerURL   string `yaml:"broker_url"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

func defaults() *Config {
	return &Config{
		HTTPPort:       "8080",
		DatabaseDriver: DriverPostgres,
		DatabaseDSN:    defaultDSN,
		TokenTTL:       24 * time.Hour,
		CORSOrigins:    defaultCORSOrigins,
		LoginRateLimit: 10,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		SuperAdmin: SuperAdminConfig{
			Name: "Super Admin",
		},
		MQTT: MQTTConfig{
			ClientID:    "building-backend",
			TopicPrefix: "building",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTPPort, "HTTP_PORT")
	setString(&cfg.DatabaseDriver, "DATABASE_DRIVER")
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.CORSOrigins, "CORS_ALLOWED_ORIGINS")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.SuperAdmin.Username, "SUPER_ADMIN_USERNAME")
	setString(&cfg.SuperAdmin.Password, "SUPER_ADMIN_PASSWORD")
	setString(&cfg.SuperAdmin.Name, "SUPER_ADMIN_NAME")
	setString(&cfg.MQTT.BrokerURL, "MQTT_BROKER_URL")
	setString(&cfg.MQTT.ClientID, "MQTT_CLIENT_ID")
	setString(&cfg.MQTT.Username, "MQTT_USERNAME")
	setString(&cfg.MQTT.Password, "MQTT_PASSWORD")
	setString(&cfg.MQTT.TopicPrefix, "MQTT_TOPIC_PREFIX")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}

	if v := os.Getenv("LOGIN_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing LOGIN_RATE_LIMIT: %w", err)
		}
		cfg.LoginRateLimit = n
	}

	return nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return ErrShortJWTSecret
	}

	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", c.LoginRateLimit)
	}

	if c.DatabaseDriver == DriverPostgres && c.DatabaseDSN == defaultDSN {
		c.Warnings = append(c.Warnings, "DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == defaultCORSOrigins {
		c.Warnings = append(c.Warnings, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	if c.SuperAdmin.Username == "" || c.SuperAdmin.Password == "" {
		c.Warnings = append(c.Warnings, "SUPER_ADMIN_USERNAME/SUPER_ADMIN_PASSWORD not set, super admin seeding disabled")
	}

	return nil
}

// AllowedOrigins splits the comma separated CORS list.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
