package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Vault     VaultConfig     `mapstructure:"vault"`
	GapReport GapReportConfig `mapstructure:"gap_report"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TLS       bool   `mapstructure:"tls"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// ProviderConfig holds cloud provider API access settings. ConnectTimeout
// bounds TCP dial time, RequestTimeout bounds each individual API call.
type ProviderConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	TokenURL       string        `mapstructure:"token_url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ScannerConfig holds posture scan settings.
type ScannerConfig struct {
	Deadline           time.Duration `mapstructure:"deadline"`
	MaxConcurrentAreas int           `mapstructure:"max_concurrent_areas"`
	SecurityFeed       bool          `mapstructure:"security_feed"`
	LockTTL            time.Duration `mapstructure:"lock_ttl"`
}

// VaultConfig points at the credential vault that holds per-account
// key material or role descriptors.
type VaultConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GapReportConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/sec-comply")
	}

	// Environment variables
	v.SetEnvPrefix("SECCOMPLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("database.host", "SECCOMPLY_DATABASE_HOST")
	v.BindEnv("database.port", "SECCOMPLY_DATABASE_PORT")
	v.BindEnv("database.user", "SECCOMPLY_DATABASE_USER")
	v.BindEnv("database.password", "SECCOMPLY_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "SECCOMPLY_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "SECCOMPLY_DATABASE_SSLMODE")
	v.BindEnv("redis.host", "SECCOMPLY_REDIS_HOST")
	v.BindEnv("redis.port", "SECCOMPLY_REDIS_PORT")
	v.BindEnv("redis.password", "SECCOMPLY_REDIS_PASSWORD")
	v.BindEnv("redis.tls", "SECCOMPLY_REDIS_TLS")
	v.BindEnv("provider.base_url", "SECCOMPLY_PROVIDER_BASE_URL")
	v.BindEnv("provider.token_url", "SECCOMPLY_PROVIDER_TOKEN_URL")
	v.BindEnv("vault.base_url", "SECCOMPLY_VAULT_BASE_URL")
	v.BindEnv("vault.token", "SECCOMPLY_VAULT_TOKEN")
	v.BindEnv("app.environment", "SECCOMPLY_APP_ENVIRONMENT")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

func (c *Config) applyDefaults() {
	if c.Provider.ConnectTimeout <= 0 {
		c.Provider.ConnectTimeout = 5 * time.Second
	}
	if c.Provider.RequestTimeout <= 0 {
		c.Provider.RequestTimeout = 15 * time.Second
	}
	if c.Scanner.Deadline <= 0 {
		c.Scanner.Deadline = 60 * time.Second
	}
	if c.Scanner.MaxConcurrentAreas <= 0 {
		c.Scanner.MaxConcurrentAreas = 6
	}
	if c.Scanner.LockTTL <= 0 {
		c.Scanner.LockTTL = 2 * time.Minute
	}
	if c.Vault.Timeout <= 0 {
		c.Vault.Timeout = 10 * time.Second
	}
	if c.GapReport.CacheTTL <= 0 {
		c.GapReport.CacheTTL = 5 * time.Minute
	}
}
