// Package config loads the application configuration from defaults,
// command-line flags and environment variables (in increasing priority),
// and validates the result.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr                 string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	ShortURLBase            string        `env:"BASE_URL" validate:"url"`
	LogLevel                string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName              string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN             string        `env:"DATABASE_DSN"`
	DBConnectionTimeout     time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir           string        `env:"MIGRATIONS_DIR"`
	SessionCookieName       string        `env:"SESSION_COOKIE_NAME"`
	SessionSigningSecretKey string        `env:"SESSION_SIGNING_SECRET_KEY"`
	SessionTTL              time.Duration `env:"SESSION_TTL"`
	TrustedSubnet           string        `env:"TRUSTED_SUBNET"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	ShortURLBase:        "http://localhost:8080",
	LogLevel:            "info",
	DBFileName:          "users.json",
	DatabaseDSN:         "",
	DBConnectionTimeout: 10 * time.Second,
	MigrationsDir:       "migrations",
	SessionCookieName:   "session",
	// base64 of a development-only secret; override in production.
	SessionSigningSecretKey: "c3VwZXJzZWNyZXRrZXk=",
	SessionTTL:              24 * time.Hour,
	TrustedSubnet:           "",
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption customizes the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips command-line flag parsing,
// which tests rely on to avoid touching os.Args.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func (c *Config) mergeNonEmpty(overlay *Config) {
	if overlay.RunAddr != "" {
		c.RunAddr = overlay.RunAddr
	}
	if overlay.ShortURLBase != "" {
		c.ShortURLBase = overlay.ShortURLBase
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.DBFileName != "" {
		c.DBFileName = overlay.DBFileName
	}
	if overlay.DatabaseDSN != "" {
		c.DatabaseDSN = overlay.DatabaseDSN
	}
	if overlay.DBConnectionTimeout != 0 {
		c.DBConnectionTimeout = overlay.DBConnectionTimeout
	}
	if overlay.MigrationsDir != "" {
		c.MigrationsDir = overlay.MigrationsDir
	}
	if overlay.SessionCookieName != "" {
		c.SessionCookieName = overlay.SessionCookieName
	}
	if overlay.SessionSigningSecretKey != "" {
		c.SessionSigningSecretKey = overlay.SessionSigningSecretKey
	}
	if overlay.SessionTTL != 0 {
		c.SessionTTL = overlay.SessionTTL
	}
	if overlay.TrustedSubnet != "" {
		c.TrustedSubnet = overlay.TrustedSubnet
	}
}

// New builds the configuration: defaults, then command-line flags,
// then environment variables (with an optional .env file preloaded).
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.ShortURLBase, "b", values.ShortURLBase, "base address of the resulting shortened URL")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with the users database")
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "a string with the database connection details")
		flag.StringVar(&values.TrustedSubnet, "t", values.TrustedSubnet, "CIDR of the subnet trusted to query internal stats")
		flag.Parse()
	}

	valuesFromEnv := &Config{}
	if err := env.Parse(valuesFromEnv); err != nil {
		return nil, err
	}
	values.mergeNonEmpty(valuesFromEnv)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
