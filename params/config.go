package params

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type API struct {
	Addr        string
	CORSOrigins []string
}

type Log struct {
	File    string // empty = stdout only
	Level   string // debug, info, warn, error
	Verbose bool
}

type Journal struct {
	// Path of the Pebble directory holding the audit journal. Empty disables it.
	Path string
}

// Feed drivers
const (
	FeedNone    = "none"
	FeedKafka   = "kafka-go"
	FeedSarama  = "sarama"
	defaultFeed = FeedNone
)

type Feed struct {
	Driver  string
	Brokers []string
	Topic   string
}

type Config struct {
	API     API
	Log     Log
	Journal Journal
	Feed    Feed
}

func Default() Config {
	return Config{
		API: API{
			Addr:        ":8080",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Log: Log{
			File:  "data/board.log",
			Level: "info",
		},
		Journal: Journal{
			Path: "data/journal",
		},
		Feed: Feed{
			Driver:  defaultFeed,
			Brokers: []string{"localhost:9092"},
			Topic:   "order-board.summary",
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg.API.Addr = getEnv("API_ADDR", cfg.API.Addr)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.API.CORSOrigins = splitList(origins)
	}

	// LOG_FILE and JOURNAL_PATH may be set to "" explicitly to disable them
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		cfg.Log.File = v
	}
	cfg.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Log.Level))
	if verbose := os.Getenv("VERBOSE"); verbose != "" {
		cfg.Log.Verbose = verbose == "true"
	}

	if v, ok := os.LookupEnv("JOURNAL_PATH"); ok {
		cfg.Journal.Path = v
	}

	cfg.Feed.Driver = strings.ToLower(getEnv("FEED_DRIVER", cfg.Feed.Driver))
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Feed.Brokers = splitList(brokers)
	}
	cfg.Feed.Topic = getEnv("KAFKA_TOPIC", cfg.Feed.Topic)

	return cfg
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
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
