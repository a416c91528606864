package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "my-project")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "my-project", cfg.ProjectID)
	assert.Equal(t, "us-central1", cfg.Location)
	assert.Equal(t, "historical-chat-object", cfg.BucketName)
	assert.Equal(t, int32(500), cfg.MaxOutputTokens)
	assert.Equal(t, float32(0.20), cfg.Temperature)
	assert.Equal(t, float32(0.95), cfg.TopP)
	assert.Equal(t, float32(40), cfg.TopK)
	assert.Equal(t, "palm2_slack_chatbot", cfg.AuditLogName)
	assert.Equal(t, "palm2-slack-chatbot-l-slack-token", cfg.SlackBotTokenSecret)
	assert.Equal(t, "palm2-slack-chatbot-l-signing-secret", cfg.SlackSigningSecretName)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "my-project")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HISTORICAL_CHAT_BUCKET", "my-bucket")
	t.Setenv("MAX_OUTPUT_TOKENS", "1024")
	t.Setenv("TEMPERATURE", "0.7")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "my-bucket", cfg.BucketName)
	assert.Equal(t, int32(1024), cfg.MaxOutputTokens)
	assert.Equal(t, float32(0.7), cfg.Temperature)
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "my-project")
	t.Setenv("MAX_OUTPUT_TOKENS", "lots")
	t.Setenv("TOP_P", "very high")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, int32(500), cfg.MaxOutputTokens)
	assert.Equal(t, float32(0.95), cfg.TopP)
}

func TestLoadConfig_MissingProject(t *testing.T) {
	t.Setenv("GCP_PROJECT_ID", "")

	cfg, err := LoadConfig()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}
