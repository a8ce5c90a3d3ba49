package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	Extractor ExtractorConfig
	Ingest    IngestConfig
	CORS      CORSConfig
	Email     EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for attachment storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds ingestion notification email settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// ExtractorProviderConfig holds settings for a single extraction provider.
type ExtractorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds document extraction settings with multi-provider support.
type ExtractorConfig struct {
	Primary   ExtractorProviderConfig `mapstructure:"primary"`
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary extractor config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ExtractorProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// IngestConfig holds pipeline tuning knobs.
type IngestConfig struct {
	BatchSize    int `mapstructure:"batch_size"`
	MaxDocuments int `mapstructure:"max_documents"`
}

// Load reads configuration from environment variables with the TRIPFOLIO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRIPFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "tripfolio")
	v.SetDefault("db.password", "tripfolio_secret")
	v.SetDefault("db.name", "tripfolio_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "tripfolio-attachments")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Extractor defaults
	v.SetDefault("extractor.primary.provider", "claude")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "")
	v.SetDefault("extractor.secondary.timeout_secs", 120)

	// Ingest defaults
	v.SetDefault("ingest.batch_size", 2)
	v.SetDefault("ingest.max_documents", 10)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@tripfolio.app")
	v.SetDefault("email.from_name", "Tripfolio")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "TRIPFOLIO_SERVER_PORT",
		"server.read_timeout":               "TRIPFOLIO_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "TRIPFOLIO_SERVER_WRITE_TIMEOUT",
		"server.environment":                "TRIPFOLIO_SERVER_ENVIRONMENT",
		"db.host":                           "TRIPFOLIO_DB_HOST",
		"db.port":                           "TRIPFOLIO_DB_PORT",
		"db.user":                           "TRIPFOLIO_DB_USER",
		"db.password":                       "TRIPFOLIO_DB_PASSWORD",
		"db.name":                           "TRIPFOLIO_DB_NAME",
		"db.sslmode":                        "TRIPFOLIO_DB_SSLMODE",
		"db.max_open":                       "TRIPFOLIO_DB_MAX_OPEN",
		"db.max_idle":                       "TRIPFOLIO_DB_MAX_IDLE",
		"s3.region":                         "TRIPFOLIO_S3_REGION",
		"s3.bucket":                         "TRIPFOLIO_S3_BUCKET",
		"s3.endpoint":                       "TRIPFOLIO_S3_ENDPOINT",
		"s3.access_key":                     "TRIPFOLIO_S3_ACCESS_KEY",
		"s3.secret_key":                     "TRIPFOLIO_S3_SECRET_KEY",
		"s3.max_file_size_mb":               "TRIPFOLIO_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                 "TRIPFOLIO_S3_PRESIGN_EXPIRY",
		"log.level":                         "TRIPFOLIO_LOG_LEVEL",
		"log.format":                        "TRIPFOLIO_LOG_FORMAT",
		"cors.allowed_origins":              "TRIPFOLIO_CORS_ALLOWED_ORIGINS",
		"extractor.primary.provider":        "TRIPFOLIO_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":         "TRIPFOLIO_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":   "TRIPFOLIO_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.timeout_secs":    "TRIPFOLIO_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.secondary.provider":      "TRIPFOLIO_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":       "TRIPFOLIO_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model": "TRIPFOLIO_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.timeout_secs":  "TRIPFOLIO_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"ingest.batch_size":                 "TRIPFOLIO_INGEST_BATCH_SIZE",
		"ingest.max_documents":              "TRIPFOLIO_INGEST_MAX_DOCUMENTS",
		"email.provider":                    "TRIPFOLIO_EMAIL_PROVIDER",
		"email.region":                      "TRIPFOLIO_EMAIL_REGION",
		"email.from_address":                "TRIPFOLIO_EMAIL_FROM_ADDRESS",
		"email.from_name":                   "TRIPFOLIO_EMAIL_FROM_NAME",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if TRIPFOLIO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TRIPFOLIO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Extractor = ExtractorConfig{
		Primary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.primary.provider"),
			APIKey:       v.GetString("extractor.primary.api_key"),
			DefaultModel: v.GetString("extractor.primary.default_model"),
			TimeoutSecs:  v.GetInt("extractor.primary.timeout_secs"),
		},
		Secondary: ExtractorProviderConfig{
			Provider:     v.GetString("extractor.secondary.provider"),
			APIKey:       v.GetString("extractor.secondary.api_key"),
			DefaultModel: v.GetString("extractor.secondary.default_model"),
			TimeoutSecs:  v.GetInt("extractor.secondary.timeout_secs"),
		},
	}

	cfg.Ingest = IngestConfig{
		BatchSize:    v.GetInt("ingest.batch_size"),
		MaxDocuments: v.GetInt("ingest.max_documents"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	return cfg, nil
}
