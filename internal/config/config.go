package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" validate:"required,numeric"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
	Host string `mapstructure:"host"`
}

type DatasetConfig struct {
	// SchemaKey is the footer metadata key reserved for the schema
	// description; updates never modify it.
	SchemaKey       string `mapstructure:"schema_key" validate:"required"`
	InferPartitions bool   `mapstructure:"infer_partitions"`
}

type SecurityConfig struct {
	RateLimitPerMinute int  `mapstructure:"rate_limit_per_minute" validate:"gte=0"`
	RateLimitBurst     int  `mapstructure:"rate_limit_burst" validate:"gte=0"`
	EnableRateLimit    bool `mapstructure:"enable_rate_limit"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// Load reads config.yaml from ./configs or the working directory, falling
// back to defaults and environment variables (server.port -> SERVER_PORT).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	return load(v)
}

// LoadFrom reads the configuration from an explicit file path.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	// Set default values
	setDefaults(v)

	// Enable environment variable support
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Info("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks struct tags on every section.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.host", "0.0.0.0")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.root", ".")
	v.SetDefault("storage.hdfs.namenodes", []string{})
	v.SetDefault("storage.hdfs.username", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.endpoint_url", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.force_path_style", false)
	v.SetDefault("storage.minio.endpoint", "localhost:9000")
	v.SetDefault("storage.minio.bucket", "")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.region", "us-east-1")
	v.SetDefault("storage.minio.secure", false)
	v.SetDefault("storage.azure.account_name", "")
	v.SetDefault("storage.azure.account_key", "")
	v.SetDefault("storage.azure.container", "")
	v.SetDefault("storage.azure.endpoint", "")
	v.SetDefault("storage.oss.endpoint", "")
	v.SetDefault("storage.oss.access_key_id", "")
	v.SetDefault("storage.oss.access_key_secret", "")
	v.SetDefault("storage.oss.bucket", "")
	v.SetDefault("storage.cos.secret_id", "")
	v.SetDefault("storage.cos.secret_key", "")
	v.SetDefault("storage.cos.region", "")
	v.SetDefault("storage.cos.bucket", "")
	v.SetDefault("storage.cos.https", true)

	// Dataset defaults
	v.SetDefault("dataset.schema_key", "pandas")
	v.SetDefault("dataset.infer_partitions", true)

	// Security defaults
	v.SetDefault("security.rate_limit_per_minute", 60)
	v.SetDefault("security.rate_limit_burst", 10)
	v.SetDefault("security.enable_rate_limit", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
