package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Database DatabaseConfig
	Import   ImportConfig
	Server   ServerConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	Driver     string // sqlite or postgres
	DSN        string
	MaxRetries int
	RetryDelay time.Duration
}

type ImportConfig struct {
	// HeaderRows is the number of leading sheet rows holding agenda metadata.
	HeaderRows int
}

type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	CacheTTL time.Duration
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	TopicImported string
}

type LogConfig struct {
	Dir   string
	Level string
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:     getEnv("AGENDA_DB_DRIVER", DriverSQLite),
			DSN:        getEnv("AGENDA_DB_DSN", "file:agenda.db"),
			MaxRetries: getEnvInt("AGENDA_DB_MAX_RETRIES", 5),
			RetryDelay: 2 * time.Second,
		},
		Import: ImportConfig{
			HeaderRows: getEnvInt("AGENDA_HEADER_ROWS", 15),
		},
		Server: ServerConfig{
			Addr:         getEnv("AGENDA_HTTP_ADDR", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			CacheTTL: time.Duration(getEnvInt("REDIS_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", false),
			Brokers:       getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			TopicImported: getEnv("KAFKA_TOPIC_IMPORTED", "agenda.imported"),
		},
		Log: LogConfig{
			Dir:   getEnv("AGENDA_LOG_DIR", "logs"),
			Level: getEnv("AGENDA_LOG_LEVEL", "INFO"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
