// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Kafka, Redis, Search, Catalog, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Search    SearchConfig    `yaml:"search"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	ConnectAttempts int           `yaml:"connectAttempts"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	DocumentUploaded string `yaml:"documentUploaded"`
	AnalyticsEvents  string `yaml:"analyticsEvents"`
}

// RedisConfig holds Redis connection and caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// SearchConfig holds the per-index result caps and the snippet length used by
// the query engine.
type SearchConfig struct {
	CategoryLimit   int `yaml:"categoryLimit"`
	DefinitionLimit int `yaml:"definitionLimit"`
	ContentLimit    int `yaml:"contentLimit"`
	SnippetMaxLen   int `yaml:"snippetMaxLen"`
}

// DefaultSearchConfig returns the caps 5/8/10 and a 100 character snippet.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		CategoryLimit:   5,
		DefinitionLimit: 8,
		ContentLimit:    10,
		SnippetMaxLen:   100,
	}
}

// WithDefaults replaces non-positive fields with their defaults.
func (s SearchConfig) WithDefaults() SearchConfig {
	d := DefaultSearchConfig()
	if s.CategoryLimit <= 0 {
		s.CategoryLimit = d.CategoryLimit
	}
	if s.DefinitionLimit <= 0 {
		s.DefinitionLimit = d.DefinitionLimit
	}
	if s.ContentLimit <= 0 {
		s.ContentLimit = d.ContentLimit
	}
	if s.SnippetMaxLen <= 0 {
		s.SnippetMaxLen = d.SnippetMaxLen
	}
	return s
}

// MaxResults is the largest number of results a single query can return.
func (s SearchConfig) MaxResults() int {
	return s.CategoryLimit + s.DefinitionLimit + s.ContentLimit
}

// CatalogConfig selects where the searcher loads its snapshot from. A
// DocumentPath takes precedence; otherwise DocumentID (or the latest upload
// when empty) is read from PostgreSQL.
type CatalogConfig struct {
	DocumentPath   string `yaml:"documentPath"`
	DocumentID     string `yaml:"documentId"`
	ReloadOnUpload bool   `yaml:"reloadOnUpload"`
}

// IngestionConfig bounds uploaded documents and how often a client may
// upload them.
type IngestionConfig struct {
	MaxDocumentBytes int64 `yaml:"maxDocumentBytes"`
	UploadsPerMinute int   `yaml:"uploadsPerMinute"`
	UploadBurst      int   `yaml:"uploadBurst"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	cfg.Search = cfg.Search.WithDefaults()
	return cfg, nil
}

// defaultConfig returns a Config with defaults for local development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "userdef",
			User:            "userdef",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectAttempts: 5,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "userdef-search",
			Topics: KafkaTopics{
				DocumentUploaded: "document-uploaded",
				AnalyticsEvents:  "search-analytics",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		Search: DefaultSearchConfig(),
		Catalog: CatalogConfig{
			ReloadOnUpload: true,
		},
		Ingestion: IngestionConfig{
			MaxDocumentBytes: 32 << 20,
			UploadsPerMinute: 30,
			UploadBurst:      5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads SP_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	setInt("SP_SERVER_PORT", &cfg.Server.Port)
	if v := os.Getenv("SP_SERVER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
	setBool("SP_POSTGRES_ENABLED", &cfg.Postgres.Enabled)
	setString("SP_POSTGRES_HOST", &cfg.Postgres.Host)
	setInt("SP_POSTGRES_PORT", &cfg.Postgres.Port)
	setString("SP_POSTGRES_DATABASE", &cfg.Postgres.Database)
	setString("SP_POSTGRES_USER", &cfg.Postgres.User)
	setString("SP_POSTGRES_PASSWORD", &cfg.Postgres.Password)
	setString("SP_POSTGRES_SSLMODE", &cfg.Postgres.SSLMode)
	setBool("SP_KAFKA_ENABLED", &cfg.Kafka.Enabled)
	if v := os.Getenv("SP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	setBool("SP_REDIS_ENABLED", &cfg.Redis.Enabled)
	setString("SP_REDIS_ADDR", &cfg.Redis.Addr)
	setString("SP_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("SP_SEARCH_CATEGORY_LIMIT", &cfg.Search.CategoryLimit)
	setInt("SP_SEARCH_DEFINITION_LIMIT", &cfg.Search.DefinitionLimit)
	setInt("SP_SEARCH_CONTENT_LIMIT", &cfg.Search.ContentLimit)
	setInt("SP_SEARCH_SNIPPET_MAX_LEN", &cfg.Search.SnippetMaxLen)
	setString("SP_CATALOG_DOCUMENT_PATH", &cfg.Catalog.DocumentPath)
	setString("SP_CATALOG_DOCUMENT_ID", &cfg.Catalog.DocumentID)
	setInt("SP_INGESTION_UPLOADS_PER_MINUTE", &cfg.Ingestion.UploadsPerMinute)
	setString("SP_LOGGING_LEVEL", &cfg.Logging.Level)
	setString("SP_LOGGING_FORMAT", &cfg.Logging.Format)
	setBool("SP_METRICS_ENABLED", &cfg.Metrics.Enabled)
	setInt("SP_METRICS_PORT", &cfg.Metrics.Port)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
