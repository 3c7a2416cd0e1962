package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Password       string        `mapstructure:"password"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// ConnectionString returns the URI with the <db_password> placeholder
// substituted, if one is present.
func (c MongoConfig) ConnectionString() (string, error) {
	uri := c.URI
	if strings.Contains(uri, "<db_password>") {
		if c.Password == "" {
			return "", fmt.Errorf("MONGODB_PASSWORD is required when the connection string contains <db_password>")
		}
		uri = strings.ReplaceAll(uri, "<db_password>", c.Password)
	}
	return uri, nil
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	RedirectURI        string `mapstructure:"redirect_uri"`
	FrontendURL        string `mapstructure:"frontend_url"`
	// SessionKey is the base64-encoded AES key guarding credential blobs at
	// rest in the session store.
	SessionKey string `mapstructure:"session_key"`
}

type AssistantConfig struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type SpeechConfig struct {
	APIKey  string `mapstructure:"api_key"`
	VoiceID string `mapstructure:"voice_id"`
	ModelID string `mapstructure:"model_id"`
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// File is an optional rotated log file pattern; empty disables file
	// output.
	File        string `mapstructure:"file"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	RotateHours int    `mapstructure:"rotate_hours"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.middleware_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Mongo
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "google_aio")
	v.SetDefault("mongo.connect_timeout", "30s")

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.redirect_uri", "http://localhost:3001/auth/callback")
	v.SetDefault("auth.frontend_url", "http://localhost:3000")

	// Assistant
	v.SetDefault("assistant.provider", "gemini")
	v.SetDefault("assistant.gemini.model", "gemini-2.5-flash")

	// Speech
	v.SetDefault("speech.voice_id", "21m00Tcm4TlvDq8ikWAM")
	v.SetDefault("speech.model_id", "eleven_monolingual_v1")

	// Security
	v.SetDefault("security.rate_limit.requests_per_minute", 60)
	v.SetDefault("security.rate_limit.burst", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_age_days", 7)
	v.SetDefault("logging.rotate_hours", 24)
}

func bindEnvVars(v *viper.Viper) {
	// Mongo
	v.BindEnv("mongo.uri", "MONGODB_URI")
	v.BindEnv("mongo.password", "MONGODB_PASSWORD")
	v.BindEnv("mongo.database", "MONGODB_DB_NAME")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.google_client_id", "GOOGLE_CLIENT_ID")
	v.BindEnv("auth.google_client_secret", "GOOGLE_CLIENT_SECRET")
	v.BindEnv("auth.redirect_uri", "GOOGLE_REDIRECT_URI")
	v.BindEnv("auth.session_key", "SESSION_ENCRYPTION_KEY")

	// Collaborator API keys
	v.BindEnv("assistant.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("speech.api_key", "ELEVENLABS_API_KEY")
}
