// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable the process reads at startup.
type Config struct {
	// AnthropicAPIKey authenticates the reasoning service. Required.
	AnthropicAPIKey string

	// Model is the reasoning model identifier.
	Model string

	// MaxTokens caps reasoning-service completions.
	MaxTokens int64

	// ListenAddr is the gateway bind address.
	ListenAddr string

	// DatabasePath is the SQLite file for memory persistence. Empty
	// disables persistence.
	DatabasePath string

	// WindowSize is the conversation window bound per user.
	WindowSize int

	// MaxNeighbors bounds graph neighbors per context bundle.
	MaxNeighbors int

	// MaxEvents bounds related episodic events per context bundle.
	MaxEvents int

	// ContextBudget is the character ceiling on assembled context.
	ContextBudget int

	// SynthesisBudget is the time reserved for routing and synthesis.
	SynthesisBudget time.Duration

	// SemanticRecall toggles the vector recall layer.
	SemanticRecall bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Printf("[CONFIG] Loaded .env file")
	}

	cfg := &Config{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:           envString("EDUAI_MODEL", "claude-sonnet-4-20250514"),
		MaxTokens:       int64(envInt("EDUAI_MAX_TOKENS", 1024)),
		ListenAddr:      envString("EDUAI_LISTEN_ADDR", ":8085"),
		DatabasePath:    os.Getenv("EDUAI_DB_PATH"),
		WindowSize:      envInt("EDUAI_WINDOW_SIZE", 20),
		MaxNeighbors:    envInt("EDUAI_MAX_NEIGHBORS", 8),
		MaxEvents:       envInt("EDUAI_MAX_EVENTS", 5),
		ContextBudget:   envInt("EDUAI_CONTEXT_BUDGET", 8000),
		SynthesisBudget: envDuration("EDUAI_SYNTHESIS_BUDGET", 30*time.Second),
		SemanticRecall:  envBool("EDUAI_SEMANTIC_RECALL", true),
	}

	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[CONFIG] Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[CONFIG] Invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[CONFIG] Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
