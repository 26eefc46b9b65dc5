package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yadgarautos/jobfiles/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Storage    StorageConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	DynamoDB   DynamoDBConfig   `mapstructure:"dynamodb"`
	S3         S3Config         `mapstructure:"s3"`
	Auth       AuthConfig       `validate:"required"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Billing    BillingConfig    `mapstructure:"billing"`
	Sequence   SequenceConfig   `mapstructure:"sequence" validate:"required"`
	Pyroscope  PyroscopeConfig  `mapstructure:"pyroscope"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

// StorageConfig picks the backend for documents and counters
type StorageConfig struct {
	Backend types.StoreBackend `mapstructure:"backend" validate:"required,oneof=postgres dynamodb"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

// DynamoDBConfig holds configuration for DynamoDB
type DynamoDBConfig struct {
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	DocumentTable string `mapstructure:"document_table"`
	CounterTable  string `mapstructure:"counter_table"`
}

type S3Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	Region        string        `mapstructure:"region"`
	Endpoint      string        `mapstructure:"endpoint"`
	Bucket        string        `mapstructure:"bucket"`
	PublicBaseURL string        `mapstructure:"public_base_url"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

type AuthConfig struct {
	Provider types.AuthProvider `mapstructure:"provider" validate:"required,oneof=local supabase"`
	Secret   string             `mapstructure:"secret"`
	TokenTTL time.Duration      `mapstructure:"token_ttl"`
	Admin    AdminConfig        `mapstructure:"admin"`
	Supabase SupabaseConfig     `mapstructure:"supabase"`
	// login attempts per minute per client ip
	LoginRateLimit int `mapstructure:"login_rate_limit"`
}

// AdminConfig is the single back office account of the local provider
type AdminConfig struct {
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	ServiceKey string `mapstructure:"service_key"`
	JWTSecret  string `mapstructure:"jwt_secret"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	ListTTL    time.Duration `mapstructure:"list_ttl"`
}

type BillingConfig struct {
	// surcharge adds depreciation to the part price, deduct subtracts it
	DepreciationMode string `mapstructure:"depreciation_mode" validate:"omitempty,oneof=surcharge deduct"`
	// printed before amounts on invoices
	Currency string         `mapstructure:"currency"`
	Business BusinessConfig `mapstructure:"business"`
}

// BusinessConfig is the workshop printed on invoice headers
type BusinessConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	Phone   string `mapstructure:"phone"`
	Email   string `mapstructure:"email"`
}

type SequenceConfig struct {
	CounterName string `mapstructure:"counter_name" validate:"required"`
	Prefix      string `mapstructure:"prefix" validate:"required"`
	// bound on the read retries of a peek
	PeekMaxElapsed time.Duration `mapstructure:"peek_max_elapsed"`
}

type PyroscopeConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	ServerAddress   string            `mapstructure:"server_address"`
	ApplicationName string            `mapstructure:"application_name"`
	BasicAuthUser   string            `mapstructure:"basic_auth_user"`
	BasicAuthPass   string            `mapstructure:"basic_auth_pass"`
	SampleRate      uint32            `mapstructure:"sample_rate"`
	DisableGCRuns   bool              `mapstructure:"disable_gc_runs"`
	ProfileTypes    []string          `mapstructure:"profile_types"`
	Tags            map[string]string `mapstructure:"tags"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional, the real environment always wins
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/jobfiles")

	setDefaults(v)

	v.SetEnvPrefix("JOBFILES")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("storage.backend", string(types.StoreBackendPostgres))
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("dynamodb.document_table", "jobfiles_documents")
	v.SetDefault("dynamodb.counter_table", "jobfiles_counters")
	v.SetDefault("s3.presign_expiry", "15m")
	v.SetDefault("s3.max_upload_size", 10<<20)
	v.SetDefault("auth.provider", string(types.AuthProviderLocal))
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.default_ttl", "5m")
	v.SetDefault("cache.list_ttl", "30s")
	v.SetDefault("billing.depreciation_mode", "surcharge")
	v.SetDefault("billing.currency", "Rs.")
	v.SetDefault("billing.business.name", "Yadgar Autos")
	v.SetDefault("sequence.counter_name", "jobFiles")
	v.SetDefault("sequence.prefix", "YAI")
	v.SetDefault("sequence.peek_max_elapsed", "3s")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Storage:    StorageConfig{Backend: types.StoreBackendPostgres},
		Auth:       AuthConfig{Provider: types.AuthProviderLocal, TokenTTL: 12 * time.Hour, LoginRateLimit: 10},
		Cache:      CacheConfig{Enabled: true, DefaultTTL: 5 * time.Minute, ListTTL: 30 * time.Second},
		Billing:    BillingConfig{DepreciationMode: "surcharge", Currency: "Rs.", Business: BusinessConfig{Name: "Yadgar Autos"}},
		Sequence:   SequenceConfig{CounterName: "jobFiles", Prefix: "YAI", PeekMaxElapsed: 3 * time.Second},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
