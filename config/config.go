package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Env           string
	Server        Server
	Database      Database
	Auth          Auth
	Session       Session
	Telegram      Telegram
	PublicBaseURL string
	GeminiApiKey  string `json:"-"`
}

type Server struct {
	Port string
}

type Database struct {
	Driver   string // "postgres" or "sqlite"
	Host     string
	Port     string
	User     string
	Password string `json:"-"`
	Name     string
	SSLMode  string
	Path     string // sqlite only
}

type Auth struct {
	JWTSecret string `json:"-"`
	TTLHours  int
}

type Session struct {
	TickSeconds int
	// IdleMinutes bounds how long an untimed session stays in memory
	// without requests.
	IdleMinutes int
}

type Telegram struct {
	BotToken string `json:"-"`
	ChatID   int64
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_PATH", "traitview.db")
	viper.SetDefault("JWT_TTL_HOURS", 24)
	viper.SetDefault("SESSION_TICK_SECONDS", 1)
	viper.SetDefault("SESSION_IDLE_MINUTES", 30)
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:5173")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Env = viper.GetString("APP_ENV")
	config.Server.Port = viper.GetString("SERVER_PORT")

	config.Database.Driver = viper.GetString("DATABASE_DRIVER")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")
	config.Database.Path = viper.GetString("DATABASE_PATH")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.TTLHours = viper.GetInt("JWT_TTL_HOURS")

	config.Session.TickSeconds = viper.GetInt("SESSION_TICK_SECONDS")
	config.Session.IdleMinutes = viper.GetInt("SESSION_IDLE_MINUTES")

	config.Telegram.BotToken = viper.GetString("TELEGRAM_BOT_TOKEN")
	config.Telegram.ChatID = viper.GetInt64("TELEGRAM_CHAT_ID")

	config.PublicBaseURL = viper.GetString("PUBLIC_BASE_URL")
	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	if config.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty, admin routes will reject every token")
	}

	log.Info().Interface("config", config).Msg("Config loaded")
	return &config, nil
}
