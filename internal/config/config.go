package config

import (
	"fmt"
	"os"
	"time"

	"go-directory/internal/events"
	"go-directory/internal/shared/connection"

	"github.com/spf13/viper"
)

const (
	EnvLocal      = "local"
	EnvProduction = "production"
)

type Config struct {
	Env          string
	HTTP         HTTPConfig
	Postgres     connection.PostgresConfig
	DBMaxRetries int
	Redis        RedisConfig
	Kafka        KafkaConfig
	Web          WebConfig
}

// HTTPConfig holds the listener settings of the API server.
type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	LegacyStatus bool // answer failures with 200, body carries the code
}

type RedisConfig struct {
	Addr         string // empty disables caching and idempotency
	ListCacheTTL time.Duration
}

type KafkaConfig struct {
	Broker  string // empty disables lifecycle events
	Topic   string
	GroupID string
}

type WebConfig struct {
	Enabled    bool
	APIBaseURL string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvLocal)
	v.SetDefault("port", "3000")
	v.SetDefault("http_read_timeout", 5*time.Second)
	v.SetDefault("http_write_timeout", 10*time.Second)
	v.SetDefault("http_idle_timeout", 60*time.Second)
	v.SetDefault("http_legacy_status", false)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_max_retries", 5)
	v.SetDefault("redis_addr", "")
	v.SetDefault("employee_list_cache_ttl", 5*time.Minute)
	v.SetDefault("kafka_broker", "")
	v.SetDefault("kafka_topic", events.EmployeeLifecycleTopic)
	v.SetDefault("kafka_group_id", "go-directory-audit")
	v.SetDefault("web_enabled", true)
	v.SetDefault("web_api_base_url", "")
}

// Load reads the configuration from the environment, layered over an
// optional YAML file named by CONFIG_PATH.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	cfg := &Config{
		Env: v.GetString("env"),
		HTTP: HTTPConfig{
			Port:         v.GetString("port"),
			ReadTimeout:  v.GetDuration("http_read_timeout"),
			WriteTimeout: v.GetDuration("http_write_timeout"),
			IdleTimeout:  v.GetDuration("http_idle_timeout"),
			LegacyStatus: v.GetBool("http_legacy_status"),
		},
		Postgres: connection.PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		DBMaxRetries: v.GetInt("db_max_retries"),
		Redis: RedisConfig{
			Addr:         v.GetString("redis_addr"),
			ListCacheTTL: v.GetDuration("employee_list_cache_ttl"),
		},
		Kafka: KafkaConfig{
			Broker:  v.GetString("kafka_broker"),
			Topic:   v.GetString("kafka_topic"),
			GroupID: v.GetString("kafka_group_id"),
		},
		Web: WebConfig{
			Enabled:    v.GetBool("web_enabled"),
			APIBaseURL: v.GetString("web_api_base_url"),
		},
	}

	if cfg.Web.APIBaseURL == "" {
		cfg.Web.APIBaseURL = "http://localhost:" + cfg.HTTP.Port + "/api/v1"
	}
	if cfg.DBMaxRetries < 1 {
		return nil, fmt.Errorf("DB_MAX_RETRIES must be positive, got %d", cfg.DBMaxRetries)
	}

	return cfg, nil
}
