package batch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ironsheep/anime-filter/internal/preset"
	"github.com/ironsheep/anime-filter/internal/stylize"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, color.RGBA{220, 80, 40, 255})
			} else {
				img.Set(x, y, color.RGBA{30, 60, 200, 255})
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// setupInput creates two images, one corrupt image and two files Scan must ignore.
func setupInput(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "b.png"), 24, 16)
	writeTestPNG(t, filepath.Join(dir, "a.PNG"), 16, 16)
	if err := os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func presets(t *testing.T, names ...string) []preset.Preset {
	t.Helper()
	ps, err := preset.Builtin().Resolve(names)
	if err != nil {
		t.Fatal(err)
	}
	return ps
}

func TestScan(t *testing.T) {
	dir := setupInput(t)

	files, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if got := strings.Join(names, ","); got != "a.PNG,b.png,broken.jpg" {
		t.Errorf("got %s", got)
	}

	if _, err := Scan(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRunner_Run(t *testing.T) {
	in := setupInput(t)
	out := t.TempDir()

	report, err := NewRunner(nil).Run(context.Background(), Options{
		InputDir:  in,
		OutputDir: out,
		Presets:   presets(t, preset.NovelGame, preset.Monochrome),
		Workers:   2,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.Results) != 6 {
		t.Fatalf("got %d results, want 6", len(report.Results))
	}
	if report.Succeeded() != 4 || report.Failed() != 2 || report.Skipped() != 0 {
		t.Errorf("counts: ok=%d failed=%d skipped=%d", report.Succeeded(), report.Failed(), report.Skipped())
	}

	for _, name := range []string{"a.PNG", "b.png"} {
		for _, p := range []string{preset.NovelGame, preset.Monochrome} {
			path := filepath.Join(out, p, name)
			f, err := os.Open(path)
			if err != nil {
				t.Errorf("missing output %s: %v", path, err)
				continue
			}
			img, format, err := image.Decode(f)
			f.Close()
			if err != nil {
				t.Errorf("%s: %v", path, err)
				continue
			}
			if format != "png" {
				t.Errorf("%s: format %s, want png", path, format)
			}
			if name == "b.png" && (img.Bounds().Dx() != 24 || img.Bounds().Dy() != 16) {
				t.Errorf("%s: size %v", path, img.Bounds())
			}
		}
	}

	for _, res := range report.Results {
		if filepath.Base(res.Input) == "broken.jpg" && res.OK() {
			t.Error("corrupt input reported as converted")
		}
	}
}

func TestRunner_RunDownscales(t *testing.T) {
	in := t.TempDir()
	writeTestPNG(t, filepath.Join(in, "wide.png"), 64, 32)
	out := t.TempDir()

	report, err := NewRunner(nil).Run(context.Background(), Options{
		InputDir:     in,
		OutputDir:    out,
		Presets:      presets(t, preset.Default),
		MaxDimension: 16,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	res := report.Results[0]
	if !res.OK() || res.Width != 16 || res.Height != 8 {
		t.Errorf("result: %+v", res)
	}
}

func TestRunner_StageFailureDoesNotAbort(t *testing.T) {
	in := setupInput(t)
	r := NewRunner(nil)
	r.stylize = func(src *stylize.RasterImage, p stylize.Params) (*stylize.RasterImage, error) {
		if p.Levels == 4 {
			return nil, stylize.ErrAllocation
		}
		return stylize.Stylize(src, p)
	}

	report, err := r.Run(context.Background(), Options{
		InputDir:  in,
		OutputDir: t.TempDir(),
		Presets:   presets(t, preset.Monochrome, preset.Default),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, res := range report.Results {
		if res.Preset == preset.Monochrome && !errors.Is(res.Err, stylize.ErrAllocation) && filepath.Base(res.Input) != "broken.jpg" {
			t.Errorf("%s: got %v, want ErrAllocation", res.Input, res.Err)
		}
	}
	if report.Succeeded() != 2 {
		t.Errorf("default preset should still succeed twice, got %d", report.Succeeded())
	}
}

func TestRunner_Cancelled(t *testing.T) {
	in := setupInput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner(nil).Run(ctx, Options{
		InputDir:  in,
		OutputDir: t.TempDir(),
		Presets:   presets(t, preset.Default),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if report.Skipped() != len(report.Results) {
		t.Errorf("skipped %d of %d", report.Skipped(), len(report.Results))
	}
}

func TestRunner_NoPresets(t *testing.T) {
	if _, err := NewRunner(nil).Run(context.Background(), Options{InputDir: t.TempDir()}); err == nil {
		t.Error("expected error without presets")
	}
}

func TestReport_DurationStats(t *testing.T) {
	r := &Report{Results: []Result{
		{Duration: 1 * time.Second},
		{Duration: 2 * time.Second},
		{Duration: 3 * time.Second},
		{Duration: 50 * time.Second, Err: errors.New("failed")},
	}}

	mean, stddev := r.DurationStats()
	if mean != 2*time.Second {
		t.Errorf("mean: got %v, want 2s", mean)
	}
	if d := stddev - time.Second; d > time.Millisecond || d < -time.Millisecond {
		t.Errorf("stddev: got %v, want 1s", stddev)
	}

	empty := &Report{}
	if m, s := empty.DurationStats(); m != 0 || s != 0 {
		t.Errorf("empty report: got %v, %v", m, s)
	}
}

func TestReport_Write(t *testing.T) {
	r := &Report{
		Results: []Result{
			{Input: "in/a.png", Preset: "default", Output: "out/default/a.png", Width: 4, Height: 3, Duration: time.Millisecond},
			{Input: "in/b.png", Preset: "default", Err: errors.New("failed to decode image")},
			{Input: "in/c.png", Preset: "default", Err: ErrSkipped},
		},
		Elapsed: time.Second,
	}

	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"out/default/a.png",
		"failed to decode image",
		"in/c.png",
		"1 converted, 1 failed, 1 skipped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
