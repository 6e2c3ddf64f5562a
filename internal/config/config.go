package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	Environment string `toml:"-"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// time zone used to split the event log into calendar days
	Timezone string `toml:"timezone"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	MigrateOnStart bool   `toml:"migrate_on_start"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
	// api
	WriteRateLimitPerMin    int `toml:"write_rate_limit_per_min"`
	SnapshotCacheTTLSeconds int `toml:"snapshot_cache_ttl_seconds"`
	// analytics defaults
	DefaultWindowDays       int `toml:"default_window_days"`
	BaselineDays            int `toml:"baseline_days"`
	OutlierThresholdMinutes int `toml:"outlier_threshold_minutes"`
	FeedbackWindowDays      int `toml:"feedback_window_days"`
	AdjustmentWindowDays    int `toml:"adjustment_window_days"`
	// retention
	EventRetentionDays               int `toml:"event_retention_days"`
	FeedbackRetentionDays            int `toml:"feedback_retention_days"`
	RetentionCleanupIntervalMinutes int `toml:"retention_cleanup_interval_minutes"`
	// kafka
	KafkaEnabled        bool     `toml:"kafka_enabled"`
	KafkaBrokers        []string `toml:"kafka_brokers"`
	KafkaGroupID        string   `toml:"kafka_group_id"`
	KafkaEventsTopic    string   `toml:"kafka_events_topic"`
	KafkaFeedbackTopic  string   `toml:"kafka_feedback_topic"`
	KafkaRemindersTopic string   `toml:"kafka_reminders_topic"`
	KafkaAlertsTopic    string   `toml:"kafka_alerts_topic"`
	// reminders
	ReminderLeadMinutes         int `toml:"reminder_lead_minutes"`
	ReminderPlanIntervalMinutes int `toml:"reminder_plan_interval_minutes"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		if t.Development == nil {
			return nil, errors.New("development config missing")
		}
		t.Development.Environment = "development"
		return t.Development, nil
	case "prod", "production":
		if t.Production == nil {
			return nil, errors.New("production config missing")
		}
		t.Production.Environment = "production"
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the config for env
// with defaults applied.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return loadFromToml(&t, env)
}

// Parse is Load for in-memory TOML content.
func Parse(env, content string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(content, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return loadFromToml(&t, env)
}

func loadFromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", env, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Host, "localhost")
	setDefault(&c.Port, 9000)
	setDefault(&c.LogLevel, "info")
	setDefault(&c.Timezone, "Local")
	setDefault(&c.PostgresHost, "localhost")
	setDefault(&c.PostgresPort, "5432")
	setDefault(&c.PostgresDBName, "routinestats")
	setDefault(&c.RedisHost, "localhost")
	setDefault(&c.RedisPort, "6379")
	setDefault(&c.PrometheusMetricsHost, "localhost")
	setDefault(&c.PrometheusMetricsPort, "2112")
	setDefault(&c.WriteRateLimitPerMin, 60)
	setDefault(&c.SnapshotCacheTTLSeconds, 30)
	setDefault(&c.DefaultWindowDays, 7)
	setDefault(&c.BaselineDays, 7)
	setDefault(&c.OutlierThresholdMinutes, 30)
	setDefault(&c.FeedbackWindowDays, 30)
	setDefault(&c.AdjustmentWindowDays, 7)
	setDefault(&c.EventRetentionDays, 365)
	setDefault(&c.FeedbackRetentionDays, 90)
	setDefault(&c.RetentionCleanupIntervalMinutes, 8*60)
	setDefault(&c.KafkaGroupID, "routinestats")
	setDefault(&c.KafkaEventsTopic, "routine.events")
	setDefault(&c.KafkaFeedbackTopic, "routine.feedback")
	setDefault(&c.KafkaRemindersTopic, "routine.reminders")
	setDefault(&c.KafkaAlertsTopic, "routine.alerts")
	setDefault(&c.ReminderLeadMinutes, 10)
	setDefault(&c.ReminderPlanIntervalMinutes, 60)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.DefaultWindowDays < 1 || c.BaselineDays < 1 || c.FeedbackWindowDays < 1 || c.AdjustmentWindowDays < 1 {
		return errors.New("window days must be positive")
	}
	if c.OutlierThresholdMinutes < 1 {
		return fmt.Errorf("invalid outlier threshold: %d", c.OutlierThresholdMinutes)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("kafka enabled but no brokers set")
	}
	return nil
}

// Location returns the configured time zone, Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) SnapshotCacheTTL() time.Duration {
	return time.Duration(c.SnapshotCacheTTLSeconds) * time.Second
}

func (c *Config) RetentionCleanupInterval() time.Duration {
	return time.Duration(c.RetentionCleanupIntervalMinutes) * time.Minute
}

func (c *Config) ReminderPlanInterval() time.Duration {
	return time.Duration(c.ReminderPlanIntervalMinutes) * time.Minute
}
