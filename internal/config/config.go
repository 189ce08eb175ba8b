package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverMongo  = "mongodb"
	DriverMemory = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Storage     StorageConfig
	JWT         JWTConfig
	Auth        AuthConfig
	Draw        DrawConfig
	Stations    StationsConfig
	Load        LoadConfig
	LogLevel    string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI              string
	Database         string
	IdentityDatabase string
	ChangeStreams    bool
}

// StorageConfig selects the repository implementation
type StorageConfig struct {
	Driver string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// AuthConfig controls self-signup
type AuthConfig struct {
	AllowSelfSignup bool
}

// DrawConfig holds the draw schedule settings
type DrawConfig struct {
	Timezone string
}

// StationsConfig sets how many station labels exist
type StationsConfig struct {
	Count int
}

// LoadConfig controls how wager caps are applied
type LoadConfig struct {
	Cumulative bool
}

// TokenTTL returns the JWT lifetime.
func (c *JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpiresIn) * time.Second
}

// Location loads the draw timezone.
func (c *DrawConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Load reads .env, the optional config file, then environment overrides.
// Nested keys map to env vars with "_" separators (MONGODB_URI).
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is required (JWT_SECRET)")
	}
	if c.Stations.Count <= 0 {
		return errors.New("stations count must be positive")
	}
	if _, err := c.Draw.Location(); err != nil {
		return fmt.Errorf("draw timezone: %w", err)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Environment", "development")
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "lasto-station")
	v.SetDefault("MongoDB.IdentityDatabase", "lasto-station-auth")
	v.SetDefault("MongoDB.ChangeStreams", false)
	v.SetDefault("Storage.Driver", DriverMongo)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.ExpiresIn", 12*60*60)
	v.SetDefault("Auth.AllowSelfSignup", true)
	v.SetDefault("Draw.Timezone", "Asia/Manila")
	v.SetDefault("Stations.Count", 25)
	v.SetDefault("Load.Cumulative", false)
	v.SetDefault("LogLevel", "info")
}
