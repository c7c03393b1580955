// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Redis for shared rate limit state (optional; in-memory when empty)
	RedisURL string `koanf:"redis_url"`

	// Path to a ranking calibration file (optional; built-in defaults when empty)
	CalibrationPath string `koanf:"calibration_path"`

	// CORS allowlist (optional; CORS disabled when empty)
	AllowedOrigins []string `koanf:"allowed_origins"`

	// Rate limits, in requests per minute
	GlobalRateLimit  int `koanf:"global_rate_limit"`
	RankingRateLimit int `koanf:"ranking_rate_limit"`
}

// Configuration validation errors.
var (
	ErrInvalidPort      = errors.New("PORT must be a valid integer")
	ErrPortOutOfRange   = errors.New("PORT must be between 1 and 65535")
	ErrInvalidRateLimit = errors.New("rate limits must be positive integers")
)

// Default values.
const (
	DefaultPort             = 8080
	DefaultEnv              = "development"
	DefaultGlobalRateLimit  = 120
	DefaultRankingRateLimit = 30
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
// If a config file path is provided and the file cannot be loaded, an error is returned.
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// Load from YAML file first if provided (lower precedence)
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	// Try DRIFTLINE_PORT first, then PORT
	port, portErr := getEnvIntOrDefaultMulti([]string{"DRIFTLINE_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	globalLimit, globalErr := getEnvIntOrDefault("GLOBAL_RATE_LIMIT", k.Int("global_rate_limit"), DefaultGlobalRateLimit)
	if globalErr != nil {
		loadErrs = append(loadErrs, globalErr)
	}

	rankingLimit, rankingErr := getEnvIntOrDefault("RANKING_RATE_LIMIT", k.Int("ranking_rate_limit"), DefaultRankingRateLimit)
	if rankingErr != nil {
		loadErrs = append(loadErrs, rankingErr)
	}

	// Build config struct, with env vars taking precedence over file values
	cfg := &Config{
		Port:             port,
		Env:              getEnvOrDefaultMulti([]string{"DRIFTLINE_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		RedisURL:         getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		CalibrationPath:  getEnvOrKoanf("CALIBRATION_PATH", k, "calibration_path"),
		AllowedOrigins:   getOrigins(k),
		GlobalRateLimit:  globalLimit,
		RankingRateLimit: rankingLimit,
	}

	// Validate and collect errors
	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getOrigins reads the CORS allowlist. The env var holds a comma-separated
// list; the YAML file holds a string slice.
func getOrigins(k *koanf.Koanf) []string {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		return k.Strings("allowed_origins")
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set, otherwise
// the koanf value, or default. Returns an error if the environment variable is
// set but cannot be parsed as an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first valid integer value found, otherwise the koanf value, or default.
// Returns an error if any environment variable is set but cannot be parsed as an integer.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all configuration values are usable.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, ErrPortOutOfRange)
	}
	if c.GlobalRateLimit <= 0 || c.RankingRateLimit <= 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// Credentials embedded in the Redis URL are masked.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":               fmt.Sprintf("%d", c.Port),
		"env":                c.Env,
		"redis_url":          maskRedisURL(c.RedisURL),
		"calibration_path":   orNotSet(c.CalibrationPath),
		"allowed_origins":    strings.Join(c.AllowedOrigins, ","),
		"global_rate_limit":  fmt.Sprintf("%d", c.GlobalRateLimit),
		"ranking_rate_limit": fmt.Sprintf("%d", c.RankingRateLimit),
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "<not set>"
	}
	return s
}

// maskRedisURL masks the password in a Redis connection URL.
func maskRedisURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return s
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
