package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/anime-filter/internal/batch"
	"github.com/ironsheep/anime-filter/internal/server"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "anime-filter",
		Short: "Anime-style image filter",
		Long: `anime-filter boosts saturation, posterizes, smooths and outlines images
to give them a cel-shaded look.

Settings come from ANIME_FILTER_* environment variables, optionally loaded
from a .env file. Command-line flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load variables from this file instead of ./.env")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newConvertCmd(a),
		newServeCmd(a),
		newPresetsCmd(a),
		newVersionCmd(),
	)
	return root
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		input, output, presetFile string
		presets                   []string
		workers, maxDim           int
	)
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Stylize every image in a directory",
		Long: `Stylize every JPEG, PNG, BMP and WEBP image in the input directory with each
selected preset. Results are written as PNG to <output>/<preset>/<file name>.
Use --preset all to apply every preset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("input") {
				a.cfg.InputDir = input
			}
			if flags.Changed("output") {
				a.cfg.OutputDir = output
			}
			if flags.Changed("preset") {
				a.cfg.Presets = presets
			}
			if flags.Changed("workers") {
				a.cfg.Workers = workers
			}
			if flags.Changed("max-dimension") {
				a.cfg.MaxDimension = maxDim
			}
			if flags.Changed("preset-file") {
				a.cfg.PresetFile = presetFile
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			reg, err := a.registry()
			if err != nil {
				return err
			}
			selected, err := reg.Resolve(a.cfg.Presets)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := batch.NewRunner(a.logger).Run(ctx, batch.Options{
				InputDir:     a.cfg.InputDir,
				OutputDir:    a.cfg.OutputDir,
				Presets:      selected,
				Workers:      a.cfg.Workers,
				MaxDimension: a.cfg.MaxDimension,
			})
			if report != nil {
				if werr := report.Write(cmd.OutOrStdout()); werr != nil {
					a.logger.Warn("failed to write report", zap.Error(werr))
				}
			}
			if err != nil {
				return err
			}
			if n := report.Failed(); n > 0 {
				return fmt.Errorf("%d of %d conversions failed", n, len(report.Results))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "input directory (default ./input)")
	f.StringVarP(&output, "output", "o", "", "output directory (default ./output)")
	f.StringSliceVarP(&presets, "preset", "p", nil, "preset names, repeatable or comma separated (default novel_game)")
	f.IntVarP(&workers, "workers", "w", 0, "concurrent images (default number of CPUs)")
	f.IntVar(&maxDim, "max-dimension", 0, "downscale inputs to fit this size first, 0 disables")
	f.StringVar(&presetFile, "preset-file", "", "YAML file that overrides or adds presets")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run a JSON-RPC 2.0 MCP server on stdin/stdout with a debounced preview
worker. Logs go to stderr. Configure it in your MCP client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Info("anime-filter server",
				zap.String("version", Version),
				zap.String("build_time", BuildTime),
				zap.String("commit", GitCommit),
			)
			srv := server.New(server.Options{
				Presets:             reg,
				Debounce:            a.cfg.Debounce,
				PreviewMaxDimension: a.cfg.MaxDimension,
				PreviewQuality:      a.cfg.PreviewQuality,
				Version:             Version,
				Logger:              a.logger,
			})
			// Run blocks on stdin, so a signal is handled here rather than
			// waiting for the next request.
			errc := make(chan error, 1)
			go func() { errc <- srv.Run(ctx) }()
			select {
			case err := <-errc:
				if err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("server error: %w", err)
				}
			case <-ctx.Done():
				a.logger.Info("shutting down")
			}
			return nil
		},
	}
}

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			header := color.New(color.Bold)
			name := color.New(color.FgCyan)
			header.Fprintf(w, "%-16s %10s %7s %8s %6s\n", "PRESET", "SATURATION", "LEVELS", "SMOOTH", "EDGE")
			for _, p := range reg.Presets() {
				name.Fprintf(w, "%-16s", p.Name)
				fmt.Fprintf(w, " %10.2f %7d %8.1f %6.2f\n",
					p.Params.SaturationFactor, p.Params.Levels,
					p.Params.SmoothingSpatialExtent, p.Params.EdgePreservationStrength)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "anime-filter %s\n", Version)
			fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
		},
	}
}
