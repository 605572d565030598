package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Config struct {
	Port                 string
	AppURL               string
	CORSOrigins          []string
	LogLevel             string
	DBURL                string
	JWTSecret            string
	SessionTTL           time.Duration
	VerificationTokenTTL time.Duration
	GoogleAPIKey         string
	GeminiModel          string
	MaxUploadBytes       int64
	R2                   R2Config
	RabbitMQURL          string
	MailWorkers          int
	SMTP                 SMTPConfig
	ContactInbox         string
	RedisURL             string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_URL", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("VERIFICATION_TOKEN_TTL", "24h")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_WORKERS", 3)

	cfg := &Config{
		Port:                 v.GetString("PORT"),
		AppURL:               strings.TrimRight(v.GetString("APP_URL"), "/"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		DBURL:                v.GetString("DB_URL"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		SessionTTL:           v.GetDuration("SESSION_TTL"),
		VerificationTokenTTL: v.GetDuration("VERIFICATION_TOKEN_TTL"),
		GoogleAPIKey:         v.GetString("GOOGLE_API_KEY"),
		GeminiModel:          v.GetString("GEMINI_MODEL"),
		MaxUploadBytes:       v.GetInt64("MAX_UPLOAD_BYTES"),
		R2: R2Config{
			AccountID: v.GetString("R2_ACCOUNT_ID"),
			Bucket:    v.GetString("R2_BUCKET"),
			AccessKey: v.GetString("R2_ACCESS_KEY"),
			SecretKey: v.GetString("R2_SECRET_KEY"),
		},
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		MailWorkers: v.GetInt("MAIL_WORKERS"),
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
		},
		ContactInbox: v.GetString("CONTACT_INBOX"),
		RedisURL:     v.GetString("REDIS_URL"),
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.AppURL}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"DB_URL":         cfg.DBURL,
		"JWT_SECRET":     cfg.JWTSecret,
		"GOOGLE_API_KEY": cfg.GoogleAPIKey,
	}
	for _, key := range []string{"DB_URL", "JWT_SECRET", "GOOGLE_API_KEY"} {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("empty %s in environment", key))
		}
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if cfg.VerificationTokenTTL <= 0 {
		errs = append(errs, errors.New("VERIFICATION_TOKEN_TTL must be positive"))
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func (cfg *Config) R2Enabled() bool {
	return cfg.R2.AccountID != "" && cfg.R2.Bucket != "" && cfg.R2.AccessKey != "" && cfg.R2.SecretKey != ""
}

func (cfg *Config) SMTPEnabled() bool {
	return cfg.SMTP.Host != "" && cfg.SMTP.From != ""
}

func (cfg *Config) AMQPEnabled() bool {
	return cfg.RabbitMQURL != ""
}

func (cfg *Config) RedisEnabled() bool {
	return cfg.RedisURL != ""
}

func (cfg *Config) SecureCookies() bool {
	return strings.HasPrefix(cfg.AppURL, "https://")
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
