package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 9090
  read_timeout: 5s
  write_timeout: 10s
  shutdown_timeout: 10s
backend:
  type: clickhouse
reddit:
  user_agent: "stockhark-test/1.0"
  subreddits: [stocks, investing]
  posts_per_subreddit: 15
collector:
  interval: 10m
aggregation:
  decay_lambda: 0.2
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "test" {
		t.Fatalf("environment = %q", c.Environment)
	}
	if c.Server.Port != 9090 {
		t.Fatalf("port = %d", c.Server.Port)
	}
	if c.Collector.Interval != 10*time.Minute {
		t.Fatalf("interval = %v", c.Collector.Interval)
	}
	if c.Aggregation.DecayLambda != 0.2 {
		t.Fatalf("decay lambda = %v", c.Aggregation.DecayLambda)
	}
	if len(c.Reddit.Subreddits) != 2 {
		t.Fatalf("subreddits = %v", c.Reddit.Subreddits)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateRejectsBadBackend(t *testing.T) {
	bad := `
environment: test
backend:
  type: carrier-pigeon
reddit:
  user_agent: "x"
  subreddits: [stocks]
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected error for unknown backend type")
	}
}

func TestValidateRequiresSubreddits(t *testing.T) {
	bad := `
environment: test
backend:
  type: kafka
reddit:
  user_agent: "x"
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected error for missing subreddits")
	}
}

func TestValidateRequiresStreamURLWhenEnabled(t *testing.T) {
	bad := `
environment: test
backend:
  type: clickhouse
reddit:
  user_agent: "x"
  subreddits: [stocks]
stream:
  enabled: true
`
	if _, err := Load(writeConfig(t, bad)); err == nil {
		t.Fatalf("expected error for enabled stream without url")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SUBREDDITS", "pennystocks,options")
	t.Setenv("BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("POSTS_PER_SUBREDDIT", "50")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Reddit.Subreddits) != 2 || c.Reddit.Subreddits[0] != "pennystocks" {
		t.Fatalf("subreddits = %v", c.Reddit.Subreddits)
	}
	if c.Backend.Type != "kafka" {
		t.Fatalf("backend = %q", c.Backend.Type)
	}
	if len(c.Kafka.Brokers) != 2 {
		t.Fatalf("brokers = %v", c.Kafka.Brokers)
	}
	if c.Reddit.PostsPerSubreddit != 50 {
		t.Fatalf("posts per subreddit = %d", c.Reddit.PostsPerSubreddit)
	}
}
