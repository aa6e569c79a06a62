// Package batch converts a directory of images with one or more presets.
//
// Each input is decoded once, optionally downscaled, and then stylized with
// every selected preset in turn. Results are written to
// <output>/<preset>/<original file name> as PNG. Inputs are processed
// concurrently up to Options.Workers at a time.
//
// A failure on one image or preset is recorded in the Report and the run
// continues. Only context cancellation stops a run early.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/anime-filter/internal/imaging"
	"github.com/ironsheep/anime-filter/internal/logging"
	"github.com/ironsheep/anime-filter/internal/preset"
	"github.com/ironsheep/anime-filter/internal/stylize"
)

// ErrSkipped marks jobs that never ran because the run was cancelled.
var ErrSkipped = errors.New("skipped")

// Options configures a run.
type Options struct {
	InputDir     string
	OutputDir    string
	Presets      []preset.Preset
	Workers      int // <= 0 uses GOMAXPROCS
	MaxDimension int // 0 disables downscaling
}

// StylizeFunc renders one raster. It matches stylize.Stylize.
type StylizeFunc func(*stylize.RasterImage, stylize.Params) (*stylize.RasterImage, error)

// Runner executes batch conversions.
type Runner struct {
	logger  *zap.Logger
	stylize StylizeFunc
}

// NewRunner creates a runner. A nil logger disables logging.
func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{
		logger:  logging.OrNop(logger).Named("batch"),
		stylize: stylize.Stylize,
	}
}

// Run converts every supported image in opts.InputDir.
//
// The returned error is non-nil only when the run could not start or was
// cancelled. Per-image failures are reported in Report.Results.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	if len(opts.Presets) == 0 {
		return nil, fmt.Errorf("no presets selected")
	}
	inputs, err := Scan(opts.InputDir)
	if err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	r.logger.Info("batch started",
		zap.String("input", opts.InputDir),
		zap.String("output", opts.OutputDir),
		zap.Int("images", len(inputs)),
		zap.Int("presets", len(opts.Presets)),
		zap.Int("workers", workers))

	start := time.Now()
	results := make([]Result, 0, len(inputs)*len(opts.Presets))
	for _, input := range inputs {
		for _, p := range opts.Presets {
			results = append(results, Result{
				Input:  input,
				Preset: p.Name,
				Output: filepath.Join(opts.OutputDir, p.Name, filepath.Base(input)),
				Err:    ErrSkipped,
			})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, input := range inputs {
		input := input
		slot := results[i*len(opts.Presets) : (i+1)*len(opts.Presets)]
		g.Go(func() error {
			return r.convert(gctx, input, opts, slot)
		})
	}
	err = g.Wait()

	report := &Report{Results: results, Elapsed: time.Since(start)}
	if err != nil {
		r.logger.Warn("batch cancelled", zap.Error(err))
		return report, err
	}
	r.logger.Info("batch finished",
		zap.Int("succeeded", report.Succeeded()),
		zap.Int("failed", report.Failed()),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

// convert decodes one input and renders it with every preset, filling slot.
func (r *Runner) convert(ctx context.Context, input string, opts Options, slot []Result) error {
	fail := func(err error) {
		for i := range slot {
			slot[i].Err = err
		}
		r.logger.Error("failed to prepare image", zap.String("input", input), zap.Error(err))
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	img, err := imaging.Load(input)
	if err != nil {
		fail(err)
		return nil
	}
	src, err := imaging.ToRaster(imaging.Downscale(img, opts.MaxDimension))
	if err != nil {
		fail(err)
		return nil
	}

	for i, p := range opts.Presets {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := &slot[i]
		res.Width, res.Height = src.Width, src.Height

		began := time.Now()
		out, err := r.stylize(src, p.Params)
		if err == nil {
			err = imaging.Save(res.Output, imaging.FromRaster(out), imaging.PNG, 0)
		}
		res.Duration = time.Since(began)
		res.Err = err

		if err != nil {
			r.logger.Error("conversion failed",
				zap.String("input", input),
				zap.String("preset", p.Name),
				zap.Error(err))
			continue
		}
		r.logger.Debug("converted",
			zap.String("input", input),
			zap.String("preset", p.Name),
			zap.String("output", res.Output),
			zap.Int("width", src.Width),
			zap.Int("height", src.Height),
			zap.Duration("duration", res.Duration))
	}
	return nil
}
