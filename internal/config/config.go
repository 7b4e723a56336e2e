package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sheikh-saqib/deposit-ledger-service/internal/events/kafka"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/logging"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/models/events"
	"github.com/sheikh-saqib/deposit-ledger-service/internal/storage/postgres"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Config struct {
	HTTP     HTTPConfig      `yaml:"http"`
	Store    string          `yaml:"store"`
	Postgres postgres.Config `yaml:"postgres"`
	Kafka    kafka.Config    `yaml:"kafka"`
	Log      logging.Config  `yaml:"log"`
}

// Default returns a configuration that runs fully in memory with events
// disabled.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store:    StoreMemory,
		Postgres: postgres.DefaultConfig(),
		Kafka: kafka.Config{
			Topic:        events.TopicDepositRecorded,
			WriteTimeout: 5 * time.Second,
		},
		Log: logging.DefaultConfig(),
	}
}

// Load builds the configuration in three layers: defaults, then the YAML
// file at configFile (if set), then environment variables. Variables from
// envFile fill in whatever the process environment does not define; a
// missing envFile is not an error.
func Load(envFile, configFile string) (Config, error) {
	dotenv := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
		if vars != nil {
			dotenv = vars
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	return load(configFile, lookup)
}

func load(configFile string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HTTP_ADDR", &cfg.HTTP.Addr)
	str("STORE", &cfg.Store)
	str("POSTGRES_HOST", &cfg.Postgres.Host)
	str("POSTGRES_USER", &cfg.Postgres.User)
	str("POSTGRES_PASSWORD", &cfg.Postgres.Password)
	str("POSTGRES_DB", &cfg.Postgres.Database)
	str("POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	str("KAFKA_TOPIC", &cfg.Kafka.Topic)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if v, ok := lookup("POSTGRES_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POSTGRES_PORT: %w", err)
		}
		cfg.Postgres.Port = port
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v, ok := lookup("LOG_DEV"); ok && v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEV: %w", err)
		}
		cfg.Log.Development = dev
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("store must be %q or %q, got %q", StoreMemory, StorePostgres, c.Store)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http addr is required")
	}
	if c.Store == StorePostgres && (c.Postgres.Port <= 0 || c.Postgres.Port > 65535) {
		return fmt.Errorf("postgres port %d out of range", c.Postgres.Port)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	return nil
}

// EventsEnabled reports whether deposit events should be published.
func (c Config) EventsEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
