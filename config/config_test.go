package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoggedConfigOmitsSecrets(t *testing.T) {
	cfg := Config{
		Env:           "production",
		Database:      Database{Driver: "postgres", User: "traitview", Password: "db-pass-123"},
		Auth:          Auth{JWTSecret: "jwt-secret-456", TTLHours: 24},
		Telegram:      Telegram{BotToken: "bot-token-789", ChatID: 42},
		PublicBaseURL: "https://app.example.com",
		GeminiApiKey:  "gemini-key-000",
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Info().Interface("config", cfg).Msg("Config loaded")
	out := buf.String()

	for _, secret := range []string{"db-pass-123", "jwt-secret-456", "bot-token-789", "gemini-key-000"} {
		assert.NotContains(t, out, secret)
	}
	assert.Contains(t, out, "traitview")
	assert.Contains(t, out, "https://app.example.com")
}
