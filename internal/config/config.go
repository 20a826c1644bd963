package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service ServiceConfig `mapstructure:",squash"`
	Logger  LoggerConfig  `mapstructure:",squash"`
	Mongo   MongoConfig   `mapstructure:",squash"`
	Redis   RedisConfig   `mapstructure:",squash"`
	NATS    NATSConfig    `mapstructure:",squash"`
	MinIO   MinIOConfig   `mapstructure:",squash"`
	JWT     JWTConfig     `mapstructure:",squash"`
	Search  SearchConfig  `mapstructure:",squash"`
	Chat    ChatConfig    `mapstructure:",squash"`
	SMTP    SMTPConfig    `mapstructure:",squash"`
	Admin   AdminConfig   `mapstructure:",squash"`
}

type ServiceConfig struct {
	Name               string        `mapstructure:"SERVICE_NAME"`
	HTTPPort           string        `mapstructure:"HTTP_PORT"`
	MetricsPort        string        `mapstructure:"METRICS_PORT"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	OTLPEndpoint       string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"LOG_LEVEL"`
	Format     string `mapstructure:"LOG_FORMAT"`
	OutputFile string `mapstructure:"LOG_OUTPUT_FILE"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"MONGO_URI"`
	Database       string        `mapstructure:"MONGO_DATABASE"`
	ConnectTimeout time.Duration `mapstructure:"MONGO_CONNECT_TIMEOUT"`
	MaxPoolSize    uint64        `mapstructure:"MONGO_MAX_POOL_SIZE"`
}

type RedisConfig struct {
	Address         string        `mapstructure:"REDIS_ADDRESS"`
	Password        string        `mapstructure:"REDIS_PASSWORD"`
	DB              int           `mapstructure:"REDIS_DB"`
	ListingCacheTTL time.Duration `mapstructure:"LISTING_CACHE_TTL"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"NATS_URL"`
	ConnectTimeout time.Duration `mapstructure:"NATS_CONNECT_TIMEOUT"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"MINIO_ENDPOINT"`
	AccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	SecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	Bucket    string `mapstructure:"MINIO_BUCKET"`
	UseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"JWT_SECRET"`
	TTL    time.Duration `mapstructure:"JWT_TTL"`
}

// SearchConfig selects the remote completion backend. An empty key for the
// selected provider runs search in heuristic-only mode.
type SearchConfig struct {
	Provider     string        `mapstructure:"SEARCH_LLM_PROVIDER"`
	OpenAIAPIKey string        `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey string        `mapstructure:"GEMINI_API_KEY"`
	Model        string        `mapstructure:"SEARCH_LLM_MODEL"`
	BaseURL      string        `mapstructure:"SEARCH_LLM_BASE_URL"`
	Timeout      time.Duration `mapstructure:"SEARCH_LLM_TIMEOUT"`
	CacheSize    int           `mapstructure:"SEARCH_CACHE_SIZE"`
}

// APIKey returns the credential of the selected provider.
func (c SearchConfig) APIKey() string {
	if strings.EqualFold(c.Provider, "gemini") {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

type ChatConfig struct {
	CensoredWords string        `mapstructure:"CHAT_CENSORED_WORDS"`
	WriteTimeout  time.Duration `mapstructure:"CHAT_WRITE_TIMEOUT"`
}

// Words splits the comma separated censored word list.
func (c ChatConfig) Words() []string {
	var out []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

type SMTPConfig struct {
	Host     string `mapstructure:"SMTP_HOST"`
	Port     int    `mapstructure:"SMTP_PORT"`
	Username string `mapstructure:"SMTP_USERNAME"`
	Password string `mapstructure:"SMTP_PASSWORD"`
	Sender   string `mapstructure:"SMTP_SENDER"`
}

type AdminConfig struct {
	Email    string `mapstructure:"ADMIN_EMAIL"`
	Password string `mapstructure:"ADMIN_PASSWORD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "marketplace")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("SHUTDOWN_TIMEOUT", 15*time.Second)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_FILE", "stdout")

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "campus_marketplace")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("MONGO_MAX_POOL_SIZE", 50)

	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LISTING_CACHE_TTL", 5*time.Minute)

	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_CONNECT_TIMEOUT", 5*time.Second)

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "listing-photos")
	v.SetDefault("MINIO_USE_SSL", false)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 60*time.Minute)

	v.SetDefault("SEARCH_LLM_PROVIDER", "openai")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("SEARCH_LLM_MODEL", "")
	v.SetDefault("SEARCH_LLM_BASE_URL", "")
	v.SetDefault("SEARCH_LLM_TIMEOUT", 5*time.Second)
	v.SetDefault("SEARCH_CACHE_SIZE", 128)

	v.SetDefault("CHAT_CENSORED_WORDS", "")
	v.SetDefault("CHAT_WRITE_TIMEOUT", 10*time.Second)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SENDER", "")

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// LoadConfig reads .env (if present), an optional env-format config file and the
// process environment, in increasing order of precedence.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.Search.Timeout <= 0 {
		return errors.New("config: SEARCH_LLM_TIMEOUT must be positive")
	}
	if c.Search.CacheSize < 0 {
		return errors.New("config: SEARCH_CACHE_SIZE must not be negative")
	}
	return nil
}
