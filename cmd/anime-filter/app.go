package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/anime-filter/internal/config"
	"github.com/ironsheep/anime-filter/internal/logging"
	"github.com/ironsheep/anime-filter/internal/preset"
)

// app carries state shared by the subcommands.
type app struct {
	envFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
}

// setup loads the environment and configuration and builds the logger.
// Flags that override config are applied by each subcommand afterwards.
func (a *app) setup() error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	logger, err := logging.NewLogger(logging.Options{
		Level:       logging.ParseLevel(cfg.LogLevel, zapcore.InfoLevel),
		Development: cfg.DevMode,
		FilePath:    cfg.LogFile,
		File:        logging.DefaultFileWriterConfig(),
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration loaded",
		zap.String("input", cfg.InputDir),
		zap.String("output", cfg.OutputDir),
		zap.Strings("presets", cfg.Presets),
		zap.Int("workers", cfg.Workers),
		zap.String("preset_file", cfg.PresetFile),
	)
	return nil
}

// registry returns the built-in presets, overlaid with the preset file when
// one is configured.
func (a *app) registry() (*preset.Registry, error) {
	if a.cfg.PresetFile == "" {
		return preset.Builtin(), nil
	}
	reg, err := preset.LoadFile(a.cfg.PresetFile)
	if err != nil {
		return nil, err
	}
	a.logger.Info("loaded preset file", zap.String("path", a.cfg.PresetFile), zap.Int("presets", reg.Len()))
	return reg, nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
