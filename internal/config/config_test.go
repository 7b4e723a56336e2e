package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", envMap(nil))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StoreMemory || cfg.HTTP.Addr != ":8080" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.EventsEnabled() {
		t.Error("events should be disabled without brokers")
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
http:
  addr: ":9090"
  read_timeout: 3s
store: postgres
postgres:
  host: db.internal
  port: 6543
  database: ledger_test
kafka:
  brokers: ["k1:9092"]
log:
  level: debug
`)

	cfg, err := load(path, envMap(map[string]string{
		"POSTGRES_HOST": "override.internal",
		"KAFKA_BROKERS": "a:9092, b:9092,,",
		"LOG_DEV":       "true",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" || cfg.HTTP.ReadTimeout != 3*time.Second {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.HTTP.WriteTimeout != 15*time.Second {
		t.Errorf("unset yaml keys should keep defaults, got %v", cfg.HTTP.WriteTimeout)
	}
	if cfg.Store != StorePostgres || cfg.Postgres.Port != 6543 || cfg.Postgres.Database != "ledger_test" {
		t.Errorf("postgres = %+v", cfg.Postgres)
	}
	if cfg.Postgres.Host != "override.internal" {
		t.Errorf("env should override yaml, host = %s", cfg.Postgres.Host)
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"a:9092", "b:9092"}) {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Development {
		t.Errorf("log = %+v", cfg.Log)
	}
	if !cfg.EventsEnabled() {
		t.Error("events should be enabled")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"bad store", "", map[string]string{"STORE": "redis"}},
		{"bad port", "", map[string]string{"POSTGRES_PORT": "five"}},
		{"port out of range", "", map[string]string{"STORE": "postgres", "POSTGRES_PORT": "70000"}},
		{"bad bool", "", map[string]string{"LOG_DEV": "maybe"}},
		{"bad yaml", "store: [", nil},
		{"brokers without topic", "kafka:\n  topic: \"\"\n  brokers: [\"k:9092\"]\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "config.yaml", tt.yaml)
			}
			if _, err := load(path, envMap(tt.env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "nope.yaml"), envMap(nil)); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeFile(t, ".env", "HTTP_ADDR=:7070\nLOG_FORMAT=console\n")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf(".env value not applied, addr = %s", cfg.HTTP.Addr)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("process env should win over .env, format = %s", cfg.Log.Format)
	}
}

func TestLoad_MissingDotEnvIgnored(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), ".env"), ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
}
