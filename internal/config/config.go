package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr             string   `mapstructure:"HTTP_ADDR"`
	DatabaseURL          string   `mapstructure:"DATABASE_URL"`
	CORSAllowedOrigins   []string `mapstructure:"-"`
	CORSAllowCredentials bool     `mapstructure:"CORS_ALLOW_CREDENTIALS"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	SessionDBPath string        `mapstructure:"SESSION_DB_PATH"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`
	MaxUploadBytes      int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	WorkerEnabled      bool          `mapstructure:"WORKER_ENABLED"`
	WorkerPollInterval time.Duration `mapstructure:"WORKER_POLL_INTERVAL"`
}

var defaults = map[string]any{
	"HTTP_ADDR":              ":8080",
	"DATABASE_URL":           "",
	"CORS_ALLOWED_ORIGINS":   "",
	"CORS_ALLOW_CREDENTIALS": false,
	"JWT_SECRET":             "",
	"SESSION_TTL":            "168h",
	"SESSION_DB_PATH":        "",
	"CLOUDINARY_CLOUD_NAME":  "",
	"CLOUDINARY_API_KEY":     "",
	"CLOUDINARY_API_SECRET":  "",
	"CLOUDINARY_FOLDER":      "onlymemes/memes",
	"MAX_UPLOAD_BYTES":       32 << 20,
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "json",
	"WORKER_ENABLED":         true,
	"WORKER_POLL_INTERVAL":   "800ms",
}

// Load reads .env (if present), an optional config.yaml from . or ./configs,
// and the process environment, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("missing env: DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("missing env: JWT_SECRET")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("invalid SESSION_TTL %q", v.GetString("SESSION_TTL"))
	}
	return cfg, nil
}

// CloudinaryConfigured reports whether all three Cloudinary credentials are set.
func (c Config) CloudinaryConfigured() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
