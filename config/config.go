package config

import (
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Config holds the runtime configuration, populated from command-line
// flags and environment variables.
type Config struct {
	// HTTP server
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Remote bookmark service
	RaindropToken   string `long:"raindrop-token" env:"RAINDROP_TOKEN" description:"Raindrop API bearer token (required)" required:"true"`
	RaindropBaseURL string `long:"raindrop-url" env:"RAINDROP_BASE_URL" default:"https://api.raindrop.io" description:"Raindrop API base URL"`

	// Keyword extraction engine
	CohereAPIKey string `long:"cohere-api-key" env:"COHERE_API_KEY" description:"Cohere API key for keyword extraction (required)" required:"true"`
	CohereModel  string `long:"cohere-model" env:"COHERE_MODEL" default:"command-r-08-2024" description:"Cohere model for keyword extraction"`

	// Summarization engine
	GeminiAPIKey string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key for summarization"`
	GeminiModel  string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.0-flash" description:"Gemini model for summarization"`

	// Optional YouTube Data API key for video description fallback
	YouTubeAPIKey string `long:"youtube-api-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key (optional)"`

	// History store
	HistoryDBPath string `long:"history-db" env:"HISTORY_DB_PATH" default:"dropbot.db" description:"SQLite database file for processing history"`

	// Pipeline tuning
	Workers      int     `long:"workers" env:"WORKERS" default:"5" description:"Concurrent bookmarks per run"`
	EngineRPS    float64 `long:"engine-rps" env:"ENGINE_RPS" default:"0" description:"Global rate limit for engine calls (0 disables)"`
	StoplistPath string  `long:"stoplist" env:"TAG_STOPLIST" description:"YAML file with tags to drop during normalization (optional)"`

	// Optional Redis page cache
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the page cache (optional)"`

	// Optional Kafka trigger
	KafkaBrokers []string `long:"kafka-broker" env:"KAFKA_BROKERS" env-delim:"," description:"Kafka brokers for the enrichment trigger topic (optional)"`
	KafkaTopic   string   `long:"kafka-topic" env:"KAFKA_TOPIC" default:"dropbot.enrich" description:"Kafka topic carrying enrichment requests"`
	KafkaGroupID string   `long:"kafka-group" env:"KAFKA_GROUP_ID" default:"dropbot" description:"Kafka consumer group ID"`

	// Optional S3 run archive
	S3Bucket       string `long:"s3-bucket" env:"S3_BUCKET" description:"S3 bucket for archiving completed runs (optional)"`
	S3Prefix       string `long:"s3-prefix" env:"S3_PREFIX" description:"Key prefix for archived runs"`
	S3Region       string `long:"s3-region" env:"S3_REGION" description:"AWS region for the archive bucket"`
	S3Profile      string `long:"s3-profile" env:"S3_PROFILE" description:"Shared AWS config profile"`
	S3UsePathStyle bool   `long:"s3-path-style" env:"S3_USE_PATH_STYLE" description:"Force path-style S3 addressing"`
}

// Load parses configuration from flags and environment.
// A nil Config with nil error means help was requested.
func Load() (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return &cfg, nil
}
