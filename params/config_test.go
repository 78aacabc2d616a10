package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"API_ADDR", "CORS_ORIGINS", "LOG_FILE", "LOG_LEVEL", "VERBOSE",
		"JOURNAL_PATH", "FEED_DRIVER", "KAFKA_BROKERS", "KAFKA_TOPIC"} {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("VERBOSE", "true")
	t.Setenv("JOURNAL_PATH", "")
	t.Setenv("FEED_DRIVER", "Sarama")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KAFKA_TOPIC", "summaries")

	cfg := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, ":9090", cfg.API.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.API.CORSOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Verbose)
	assert.Empty(t, cfg.Journal.Path, "journal disabled")
	assert.Equal(t, FeedSarama, cfg.Feed.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Feed.Brokers)
	assert.Equal(t, "summaries", cfg.Feed.Topic)
}

func TestLoadFromEnv_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "board.env")
	require.NoError(t, os.WriteFile(path, []byte("API_ADDR=:7070\nFEED_DRIVER=kafka-go\n"), 0o644))
	// godotenv.Load sets process env; undo it after the test
	t.Cleanup(func() {
		os.Unsetenv("API_ADDR")
		os.Unsetenv("FEED_DRIVER")
	})

	cfg := LoadFromEnv(path)
	assert.Equal(t, ":7070", cfg.API.Addr)
	assert.Equal(t, FeedKafka, cfg.Feed.Driver)
}
