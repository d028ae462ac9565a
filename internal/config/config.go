// Package config provides application configuration management with support for
// environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Server ServerConfig
	Import ImportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds storage configuration.
type DataConfig struct {
	// BasePath is the directory holding the badger store and search index.
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// ImportConfig holds the watch-history reconciliation tunables.
//
// The numeric defaults (0.92 / 0.5 / 3 / 2000) were chosen empirically in
// production and are deliberately strict: an unmatched row is reviewable by
// the importing user, a silently wrong ledger entry is not.
type ImportConfig struct {
	// MinScore is the minimum title similarity for a fuzzy match (0-1).
	MinScore float64
	// LengthRatio is the minimum short/long title length ratio; guards short
	// titles from absorbing unrelated longer ones ("It" vs "It Chapter Two").
	LengthRatio float64
	// YearTolerance bounds the candidate window to [year-N, year+N].
	YearTolerance int
	// CandidateLimit caps how many catalog entries one window may return.
	CandidateLimit int
	// RequiredGenreCode is the numeric genre code a movie must carry to be
	// importable. Defaults to 27 (horror, TMDB code scheme).
	RequiredGenreCode int
	// PreviewWorkers bounds the matching parallelism within one preview batch.
	PreviewWorkers int
	// RateLimitPerSecond / RateLimitBurst throttle import requests per user.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return loadConfig(flag.CommandLine, os.Args[1:])
}

// loadConfig is LoadConfig with an injectable flag set so tests can drive
// flag precedence without touching the process-wide flags.
func loadConfig(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for data storage")
	serverName := fs.String("server-name", "", "Name for the server")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	// Import tunables.
	minScore := fs.String("import-min-score", "", "Minimum fuzzy match score (default: 0.92)")
	lengthRatio := fs.String("import-length-ratio", "", "Minimum short/long title length ratio (default: 0.5)")
	yearTolerance := fs.String("import-year-tolerance", "", "Candidate window year tolerance (default: 3)")
	candidateLimit := fs.String("import-candidate-limit", "", "Candidate window size cap (default: 2000)")
	requiredGenre := fs.String("import-required-genre", "", "Required genre code for import eligibility (default: 27)")
	previewWorkers := fs.String("import-preview-workers", "", "Preview matching parallelism (default: 4)")
	rateLimitRPS := fs.String("import-rate-limit-rps", "", "Import requests per second per user (default: 1)")
	rateLimitBurst := fs.String("import-rate-limit-burst", "", "Import request burst per user (default: 3)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "WatchVault Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Import: ImportConfig{
			MinScore:           getFloatConfigValue(*minScore, "IMPORT_MIN_SCORE", 0.92),
			LengthRatio:        getFloatConfigValue(*lengthRatio, "IMPORT_LENGTH_RATIO", 0.5),
			YearTolerance:      getIntConfigValue(*yearTolerance, "IMPORT_YEAR_TOLERANCE", 3),
			CandidateLimit:     getIntConfigValue(*candidateLimit, "IMPORT_CANDIDATE_LIMIT", 2000),
			RequiredGenreCode:  getIntConfigValue(*requiredGenre, "IMPORT_REQUIRED_GENRE", 27),
			PreviewWorkers:     getIntConfigValue(*previewWorkers, "IMPORT_PREVIEW_WORKERS", 4),
			RateLimitPerSecond: getFloatConfigValue(*rateLimitRPS, "IMPORT_RATE_LIMIT_RPS", 1),
			RateLimitBurst:     getIntConfigValue(*rateLimitBurst, "IMPORT_RATE_LIMIT_BURST", 3),
		},
	}

	// Parse server timeouts.
	var err error
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Import.MinScore < 0 || c.Import.MinScore > 1 {
		return fmt.Errorf("import min score must be in [0,1], got %v", c.Import.MinScore)
	}
	if c.Import.LengthRatio < 0 || c.Import.LengthRatio > 1 {
		return fmt.Errorf("import length ratio must be in [0,1], got %v", c.Import.LengthRatio)
	}
	if c.Import.YearTolerance < 0 {
		return fmt.Errorf("import year tolerance must not be negative, got %d", c.Import.YearTolerance)
	}
	if c.Import.CandidateLimit <= 0 {
		return fmt.Errorf("import candidate limit must be positive, got %d", c.Import.CandidateLimit)
	}
	if c.Import.PreviewWorkers <= 0 {
		return fmt.Errorf("import preview workers must be positive, got %d", c.Import.PreviewWorkers)
	}

	return nil
}

// expandDataPath expands ~ and makes the path absolute.
// Defaults to ~/WatchVault/data when unset.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "WatchVault", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
