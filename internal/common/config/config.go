// internal/common/config/config.go
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Introspection IntrospectionConfig     `mapstructure:"introspection"`
	Intent        IntentConfig            `mapstructure:"intent"`
	LLM           LLMConfig               `mapstructure:"llm"`
	Analysis      AnalysisConfig          `mapstructure:"analysis"`
	History       HistoryConfig           `mapstructure:"history"`
	Team          TeamConfig              `mapstructure:"team"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	// Driver selects the survey data store: "postgres" or "mysql".
	Driver        string              `mapstructure:"driver"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	MySQL         MySQLConfig         `mapstructure:"mysql"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	// URL, when set, takes precedence over the discrete fields.
	URL string `mapstructure:"url"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type MySQLConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	Params         string `mapstructure:"params"`
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Team / Domain Configuration ---

// IntrospectionConfig selects where schema metadata comes from.
type IntrospectionConfig struct {
	Source       string `mapstructure:"source"` // "database" or "snapshot"
	Schema       string `mapstructure:"schema"`
	SnapshotPath string `mapstructure:"snapshot_path"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // milliseconds, 0 disables caching
	CachePrefix  string `mapstructure:"cache_prefix"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

// IntentConfig holds the naming conventions the intent resolver works with.
type IntentConfig struct {
	IdentifierColumn string `mapstructure:"identifier_column"`
	TableSuffix      string `mapstructure:"table_suffix"`
	ValueColumn      string `mapstructure:"value_column"`
}

type LLMConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
}

type AnalysisConfig struct {
	Narrative    bool `mapstructure:"narrative"`
	QueryTimeout int  `mapstructure:"query_timeout"` // milliseconds
	MaxRows      int  `mapstructure:"max_rows"`
}

type HistoryConfig struct {
	SessionTTL     int    `mapstructure:"session_ttl"` // milliseconds
	MaxTurns       int    `mapstructure:"max_turns"`
	ArchiveIndex   string `mapstructure:"archive_index"`
	SessionBackend string `mapstructure:"session_backend"` // "redis" or "memory"
}

type TeamConfig struct {
	ManifestPath string `mapstructure:"manifest_path"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
	DebugMode    bool   `mapstructure:"debug_mode"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	ProcessID      string `mapstructure:"process_id"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LLMHost returns the host of the configured LLM endpoint, for logging.
func (l LLMConfig) LLMHost() string {
	if l.BaseURL == "" {
		return ""
	}
	u, err := url.Parse(l.BaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
