package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultStates seeds the state picker when the config file has none.
var DefaultStates = []string{
	"Andhra Pradesh", "Kerala", "Himachal Pradesh", "Punjab", "Bihar",
	"Goa", "Telagana", "Rajasthan", "South Bengal", "Uttar pradesh",
}

type ServerConfig struct {
	Port           string   `yaml:"port" validate:"required,numeric"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,url"`
	CORSDebug      bool     `yaml:"cors_debug"`
}

type DatabaseConfig struct {
	Driver       string        `yaml:"driver" validate:"oneof=postgres sqlite"`
	URL          string        `yaml:"url"`
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port" validate:"omitempty,numeric"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"-"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	Table        string        `yaml:"table" validate:"required,sqlident"`
	MaxOpenConns int           `yaml:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int           `yaml:"max_idle_conns" validate:"gte=0"`
	ConnLifetime time.Duration `yaml:"conn_lifetime"`
	Retries      int           `yaml:"retries" validate:"gte=1"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
}

type MongoConfig struct {
	URI        string `yaml:"uri" validate:"omitempty,uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type SearchConfig struct {
	States       []string      `yaml:"states" validate:"min=1,dive,required"`
	PriceCeiling float64       `yaml:"price_ceiling" validate:"gt=0"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// AppConfig is the root configuration. Values come from defaults, then the
// optional YAML file, then environment variables.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Search   SearchConfig   `yaml:"search"`
}

var sqlIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Default returns the configuration used when nothing else is set.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Port: "8080",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://localhost:8080",
				"http://127.0.0.1:3000",
			},
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         "5432",
			User:         "postgres",
			Name:         "red_bus_details",
			SSLMode:      "disable",
			Table:        "all_bus_details",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
			ConnLifetime: 5 * time.Minute,
			Retries:      5,
			RetryDelay:   5 * time.Second,
		},
		Mongo: MongoConfig{
			Database:   "red_bus_details",
			Collection: "feedback",
		},
		Search: SearchConfig{
			States:       append([]string(nil), DefaultStates...),
			PriceCeiling: 10000,
			SessionTTL:   30 * time.Minute,
			QueryTimeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration. An empty path skips the YAML file.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func Validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdent.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	cfg.Server.Port = getEnvWithDefault("PORT", cfg.Server.Port)
	cfg.Server.CORSDebug = getEnvAsBool("CORS_DEBUG", cfg.Server.CORSDebug)

	db := &cfg.Database
	db.Driver = getEnvWithDefault("DB_DRIVER", db.Driver)
	db.URL = getEnvWithDefault("DATABASE_URL", db.URL)
	db.Host = getEnvWithDefault("DB_HOST", db.Host)
	db.Port = getEnvWithDefault("DB_PORT", db.Port)
	db.User = getEnvWithDefault("DB_USER", db.User)
	db.Password = getEnvWithDefault("DB_PASSWORD", db.Password)
	db.Name = getEnvWithDefault("DB_NAME", db.Name)
	db.SSLMode = getEnvWithDefault("DB_SSL_MODE", db.SSLMode)
	db.Table = getEnvWithDefault("DB_TABLE", db.Table)
	db.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", db.MaxOpenConns)
	db.Retries = getEnvAsInt("DB_RETRIES", db.Retries)

	cfg.Mongo.URI = getEnvWithDefault("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnvWithDefault("MONGO_DB_NAME", cfg.Mongo.Database)
}

// Helper functions
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
