package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	ierr "github.com/lettercounsel/lettercounsel/internal/errors"
	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/spf13/viper"
)

// Configuration is the process-wide immutable configuration. It is built
// once at startup and passed explicitly; no package holds mutable copies.
type Configuration struct {
	Deployment   DeploymentConfig   `mapstructure:"deployment"`
	Server       ServerConfig       `mapstructure:"server"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Postgres     PostgresConfig     `mapstructure:"postgres"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Sentry       SentryConfig       `mapstructure:"sentry"`
	Email        EmailConfig        `mapstructure:"email"`
	AIGen        AIGenConfig        `mapstructure:"aigen"`
	Stripe       StripeConfig       `mapstructure:"stripe"`
	Notification NotificationConfig `mapstructure:"notification"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" default:"local"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" default:":8080"`
}

type AuthConfig struct {
	// Secret is the JWT signing secret shared with Supabase.
	Secret   string         `mapstructure:"secret"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host" default:"localhost"`
	Port           int    `mapstructure:"port" default:"5432"`
	User           string `mapstructure:"user" default:"postgres"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname" default:"lettercounsel"`
	SSLMode        string `mapstructure:"sslmode" default:"disable"`
	MaxOpenConns   int    `mapstructure:"max_open_conns" default:"20"`
	MaxIdleConns   int    `mapstructure:"max_idle_conns" default:"10"`
	AutoMigrate    bool   `mapstructure:"auto_migrate" default:"false"`
	MigrationsPath string `mapstructure:"migrations_path" default:"migrations"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level" default:"info"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled" default:"false"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled" default:"false"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment" default:"local"`
	SampleRate  float64 `mapstructure:"sample_rate" default:"1.0"`
}

type EmailConfig struct {
	Enabled bool `mapstructure:"enabled" default:"false"`
	// APIKey is the Resend API key.
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
	// AdminGroupAddress receives review-queue notifications.
	AdminGroupAddress string `mapstructure:"admin_group_address"`
}

type AIGenConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model" default:"counsel-draft-1"`
	// Timeout bounds a single orchestrator-visible generation call; the
	// client's internal retries all fit inside it.
	Timeout    time.Duration `mapstructure:"timeout" default:"90s"`
	MaxRetries int           `mapstructure:"max_retries" default:"2"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	// SuccessURL and CancelURL are where checkout redirects back to.
	SuccessURL string `mapstructure:"success_url"`
	CancelURL  string `mapstructure:"cancel_url"`
}

type NotificationConfig struct {
	// BufferSize is the outbound queue depth before publishes start dropping
	// with a logged warning.
	BufferSize int `mapstructure:"buffer_size" default:"256"`
}

// NewConfig loads configuration from config files and environment variables.
// Environment variables use the LETTERCOUNSEL_ prefix with underscores, e.g.
// LETTERCOUNSEL_POSTGRES_HOST.
func NewConfig() (*Configuration, error) {
	v := viper.New()

	// Optional .env for local development, ignored when absent
	_ = godotenv.Load()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("lettercounsel")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.RunModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.dbname", "lettercounsel")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 10)
	v.SetDefault("postgres.migrations_path", "migrations")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("sentry.environment", "local")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("aigen.model", "counsel-draft-1")
	v.SetDefault("aigen.timeout", "90s")
	v.SetDefault("aigen.max_retries", 2)
	v.SetDefault("notification.buffer_size", 256)
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Configuration) Validate() error {
	if c.AIGen.Timeout <= 0 {
		return ierr.NewError("aigen timeout must be positive").
			WithHint("Set aigen.timeout to a positive duration").
			Mark(ierr.ErrValidation)
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return ierr.NewError("email enabled without api key").
			WithHint("Set email.api_key or disable email").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns a configuration suitable for tests and scripts.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.RunModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		AIGen: AIGenConfig{
			Model:      "counsel-draft-1",
			Timeout:    90 * time.Second,
			MaxRetries: 2,
		},
		Notification: NotificationConfig{BufferSize: 256},
	}
}
