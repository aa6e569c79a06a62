// Package preview renders interactive previews without piling up work.
//
// A Previewer holds at most one pending request. Each Submit replaces it, so
// a burst of parameter changes results in a single render of the last one.
// The Run worker waits until no new request has arrived for the debounce
// interval, renders, and publishes the result only if nothing newer was
// submitted in the meantime. Stale results are dropped and counted.
package preview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ironsheep/anime-filter/internal/logging"
	"github.com/ironsheep/anime-filter/internal/stylize"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// RenderFunc produces a preview image. It matches stylize.Stylize.
type RenderFunc func(*stylize.RasterImage, stylize.Params) (*stylize.RasterImage, error)

// Options configures a Previewer.
type Options struct {
	// Debounce is the quiet period before rendering. Zero uses
	// DefaultDebounce; a negative value renders immediately.
	Debounce time.Duration

	// Render defaults to stylize.Stylize.
	Render RenderFunc

	// OnResult, if set, is called from the worker for every published result.
	OnResult func(Result)

	Logger *zap.Logger
}

// Result is a published preview.
type Result struct {
	ID       string
	Label    string
	Params   stylize.Params
	Image    *stylize.RasterImage // nil when Err is set
	Err      error
	Duration time.Duration
	Rendered time.Time
}

// Stats are cumulative worker counters.
type Stats struct {
	Submitted  uint64 `json:"submitted"`
	Superseded uint64 `json:"superseded"` // replaced before rendering started
	Rendered   uint64 `json:"rendered"`
	Failed     uint64 `json:"failed"`
	Discarded  uint64 `json:"discarded"` // rendered, then dropped as stale
}

type request struct {
	id     string
	label  string
	src    *stylize.RasterImage
	params stylize.Params
	gen    uint64
}

// Previewer is safe for concurrent use. Run must be called exactly once.
type Previewer struct {
	debounce time.Duration
	render   RenderFunc
	onResult func(Result)
	logger   *zap.Logger

	wake chan struct{}

	mu      sync.Mutex
	pending *request
	gen     uint64
	latest  *Result
	stats   Stats
}

// New creates a Previewer.
func New(opts Options) *Previewer {
	p := &Previewer{
		debounce: opts.Debounce,
		render:   opts.Render,
		onResult: opts.OnResult,
		logger:   logging.OrNop(opts.Logger).Named("preview"),
		wake:     make(chan struct{}, 1),
	}
	if p.debounce == 0 {
		p.debounce = DefaultDebounce
	}
	if p.render == nil {
		p.render = stylize.Stylize
	}
	return p
}

// Submit queues src for rendering with params, replacing any request that
// has not started yet, and returns the new request id. label is carried
// through to the Result, typically the source path.
//
// Invalid input is rejected here so the caller sees the error immediately.
func (p *Previewer) Submit(src *stylize.RasterImage, params stylize.Params, label string) (string, error) {
	if err := src.Validate(); err != nil {
		return "", err
	}
	if err := params.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	p.mu.Lock()
	p.gen++
	if p.pending != nil {
		p.stats.Superseded++
	}
	p.pending = &request{id: id, label: label, src: src, params: params, gen: p.gen}
	p.stats.Submitted++
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	p.logger.Debug("preview submitted", zap.String("id", id), zap.String("label", label))
	return id, nil
}

// Latest returns the most recently published result.
func (p *Previewer) Latest() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return Result{}, false
	}
	return *p.latest, true
}

// Stats returns a snapshot of the counters.
func (p *Previewer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Run processes submissions until ctx is cancelled and returns ctx.Err().
func (p *Previewer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
		}
		if err := p.settle(ctx); err != nil {
			return err
		}

		p.mu.Lock()
		req := p.pending
		p.pending = nil
		p.mu.Unlock()
		if req == nil {
			continue
		}
		p.process(req)
	}
}

// settle blocks until no submission has arrived for the debounce interval.
func (p *Previewer) settle(ctx context.Context) error {
	if p.debounce < 0 {
		return nil
	}
	timer := time.NewTimer(p.debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
			timer.Reset(p.debounce)
		case <-timer.C:
			return nil
		}
	}
}

func (p *Previewer) process(req *request) {
	start := time.Now()
	img, err := p.safeRender(req)
	res := Result{
		ID:       req.id,
		Label:    req.label,
		Params:   req.params,
		Image:    img,
		Err:      err,
		Duration: time.Since(start),
		Rendered: time.Now(),
	}

	p.mu.Lock()
	if p.gen != req.gen {
		p.stats.Discarded++
		p.mu.Unlock()
		p.logger.Debug("stale preview dropped", zap.String("id", req.id))
		return
	}
	if err != nil {
		p.stats.Failed++
	} else {
		p.stats.Rendered++
	}
	p.latest = &res
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("preview failed", zap.String("id", req.id), zap.Error(err))
	} else {
		p.logger.Debug("preview rendered",
			zap.String("id", req.id),
			zap.Int("width", img.Width),
			zap.Int("height", img.Height),
			zap.Duration("duration", res.Duration))
	}
	if p.onResult != nil {
		p.onResult(res)
	}
}

func (p *Previewer) safeRender(req *request) (img *stylize.RasterImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("preview render panicked: %v", r)
		}
	}()
	return p.render(req.src, req.params)
}
