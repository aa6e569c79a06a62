// Package config reads runtime settings from ANIME_FILTER_* environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable name.
const Prefix = "ANIME_FILTER_"

// Environment variable names.
const (
	EnvInputDir       = Prefix + "INPUT_DIR"
	EnvOutputDir      = Prefix + "OUTPUT_DIR"
	EnvPresetFile     = Prefix + "PRESET_FILE"
	EnvPresets        = Prefix + "PRESETS"
	EnvWorkers        = Prefix + "WORKERS"
	EnvMaxDimension   = Prefix + "MAX_DIMENSION"
	EnvDebounceMS     = Prefix + "DEBOUNCE_MS"
	EnvPreviewQuality = Prefix + "PREVIEW_QUALITY"
	EnvLogLevel       = Prefix + "LOG_LEVEL"
	EnvLogFile        = Prefix + "LOG_FILE"
	EnvDevMode        = Prefix + "DEV_MODE"
)

// Defaults.
const (
	DefaultInputDir       = "./input"
	DefaultOutputDir      = "./output"
	DefaultPreset         = "novel_game"
	DefaultDebounce       = 300 * time.Millisecond
	DefaultPreviewQuality = 85
	DefaultLogLevel       = "info"
)

// Config holds every runtime setting.
type Config struct {
	InputDir   string
	OutputDir  string
	PresetFile string   // empty means built-in presets only
	Presets    []string // presets the batch converter applies

	Workers      int // concurrent stylize jobs
	MaxDimension int // 0 disables pre-downscaling

	Debounce       time.Duration // preview quiet period
	PreviewQuality int           // JPEG quality of preview images

	LogLevel string
	LogFile  string
	DevMode  bool
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		InputDir:       DefaultInputDir,
		OutputDir:      DefaultOutputDir,
		Presets:        []string{DefaultPreset},
		Workers:        runtime.GOMAXPROCS(0),
		Debounce:       DefaultDebounce,
		PreviewQuality: DefaultPreviewQuality,
		LogLevel:       DefaultLogLevel,
	}
}

// LoadEnvFile loads variables from a .env file without overriding ones that
// are already set. An empty path tries ./.env and ignores its absence; an
// explicit path must exist.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &Error{Code: ErrCodeInvalidValue, Message: "Failed to parse .env: " + err.Error(), Action: "Fix the syntax of .env"}
		}
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return ErrEnvFileMissing(path)
	}
	if err := godotenv.Load(path); err != nil {
		return &Error{Code: ErrCodeInvalidValue, Message: "Failed to parse " + path + ": " + err.Error(), Action: "Fix the syntax of " + path}
	}
	return nil
}

// Load reads the environment on top of Default and validates the result.
func Load() (*Config, error) {
	cfg := Default()
	var err error

	cfg.InputDir = getEnvOrDefault(EnvInputDir, cfg.InputDir)
	cfg.OutputDir = getEnvOrDefault(EnvOutputDir, cfg.OutputDir)
	cfg.PresetFile = getEnvOrDefault(EnvPresetFile, cfg.PresetFile)
	if v := os.Getenv(EnvPresets); v != "" {
		cfg.Presets = SplitList(v)
	}
	if cfg.Workers, err = parseIntEnv(EnvWorkers, cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.MaxDimension, err = parseIntEnv(EnvMaxDimension, cfg.MaxDimension); err != nil {
		return nil, err
	}
	ms, err := parseIntEnv(EnvDebounceMS, int(cfg.Debounce/time.Millisecond))
	if err != nil {
		return nil, err
	}
	cfg.Debounce = time.Duration(ms) * time.Millisecond
	if cfg.PreviewQuality, err = parseIntEnv(EnvPreviewQuality, cfg.PreviewQuality); err != nil {
		return nil, err
	}
	cfg.LogLevel = getEnvOrDefault(EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = getEnvOrDefault(EnvLogFile, cfg.LogFile)
	if cfg.DevMode, err = parseBoolEnv(EnvDevMode, cfg.DevMode); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. It is called again after flag overrides.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return ErrMissingConfig(EnvInputDir)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrMissingConfig(EnvOutputDir)
	}
	if len(c.Presets) == 0 {
		return ErrMissingConfig(EnvPresets)
	}
	if c.Workers < 1 {
		return ErrOutOfRange(EnvWorkers, c.Workers, "a positive number")
	}
	if c.MaxDimension < 0 {
		return ErrOutOfRange(EnvMaxDimension, c.MaxDimension, "0 (disabled) or a positive pixel size")
	}
	if c.Debounce < 0 {
		return ErrOutOfRange(EnvDebounceMS, c.Debounce.Milliseconds(), "0 or more milliseconds")
	}
	if c.PreviewQuality < 1 || c.PreviewQuality > 100 {
		return ErrOutOfRange(EnvPreviewQuality, c.PreviewQuality, "a value between 1 and 100")
	}
	return nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ErrInvalidValue(key, v, "an integer")
	}
	return n, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, ErrInvalidValue(key, v, "true or false")
}
