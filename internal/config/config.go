package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrConfiguration is returned when required startup configuration is missing
// or invalid.
var ErrConfiguration = errors.New("invalid configuration")

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort string

	// Google Cloud
	ProjectID  string
	Location   string
	BucketName string

	// Model configuration
	ChatModel       string
	KeywordModel    string
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
	TopK            float32
	ResponseStyle   string // System context prepended to every chat session
	SamplesPath     string // Newline-delimited JSON few-shot example pairs

	AuditLogName string

	// Slack credentials. When the env vars are empty, the secret names below
	// are resolved through Secret Manager at startup.
	SlackBotToken          string
	SlackSigningSecret     string
	SlackBotTokenSecret    string
	SlackSigningSecretName string
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.")
	}

	cfg := &Config{
		HTTPPort:   getEnv("HTTP_PORT", "8080"),
		ProjectID:  getEnv("GCP_PROJECT_ID", ""),
		Location:   getEnv("GCP_LOCATION", "us-central1"),
		BucketName: getEnv("HISTORICAL_CHAT_BUCKET", "historical-chat-object"),

		ChatModel:       getEnv("CHAT_MODEL", "gemini-2.0-flash"),
		KeywordModel:    getEnv("KEYWORD_MODEL", "gemini-2.0-flash-lite"),
		MaxOutputTokens: int32(getEnvInt("MAX_OUTPUT_TOKENS", 500)),
		Temperature:     getEnvFloat("TEMPERATURE", 0.20),
		TopP:            getEnvFloat("TOP_P", 0.95),
		TopK:            getEnvFloat("TOP_K", 40),
		ResponseStyle:   getEnv("RESPONSE_STYLE", ""),
		SamplesPath:     getEnv("SAMPLES_PATH", "./samples/sample_input-output_pairs.jsonl"),

		AuditLogName: getEnv("AUDIT_LOG_NAME", "palm2_slack_chatbot"),

		SlackBotToken:          getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret:     getEnv("SLACK_SIGNING_SECRET", ""),
		SlackBotTokenSecret:    getEnv("SLACK_BOT_TOKEN_SECRET", "palm2-slack-chatbot-l-slack-token"),
		SlackSigningSecretName: getEnv("SLACK_SIGNING_SECRET_NAME", "palm2-slack-chatbot-l-signing-secret"),
	}

	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: GCP_PROJECT_ID environment variable is not set", ErrConfiguration)
	}

	log.Printf("Loaded config: Port=%s, Project=%s, Location=%s, Bucket=%s, ChatModel=%s",
		cfg.HTTPPort, cfg.ProjectID, cfg.Location, cfg.BucketName, cfg.ChatModel)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable, falling back (with a
// warning) on missing or unparseable values.
func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return v
}

// getEnvFloat retrieves a float environment variable, falling back (with a
// warning) on missing or unparseable values.
func getEnvFloat(key string, fallback float32) float32 {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s', using default %g. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return float32(v)
}
