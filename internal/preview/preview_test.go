package preview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ironsheep/anime-filter/internal/stylize"
)

func testRaster(t *testing.T) *stylize.RasterImage {
	t.Helper()
	r, err := stylize.NewRasterImage(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func levels(n int) stylize.Params {
	p := stylize.DefaultParams()
	p.Levels = n
	return p
}

// start runs the worker until the test ends.
func start(t *testing.T, p *Previewer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestPreviewer_CoalescesBurst(t *testing.T) {
	var mu sync.Mutex
	var rendered []int
	p := New(Options{
		Debounce: 50 * time.Millisecond,
		Render: func(src *stylize.RasterImage, params stylize.Params) (*stylize.RasterImage, error) {
			mu.Lock()
			rendered = append(rendered, params.Levels)
			mu.Unlock()
			return src.Clone()
		},
	})
	start(t, p)

	var last string
	for i := 2; i <= 6; i++ {
		id, err := p.Submit(testRaster(t), levels(i), "burst")
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		last = id
	}

	waitFor(t, func() bool { _, ok := p.Latest(); return ok })
	res, _ := p.Latest()
	if res.ID != last {
		t.Errorf("published %s, want last request %s", res.ID, last)
	}
	if res.Params.Levels != 6 || res.Label != "burst" {
		t.Errorf("result: %+v", res)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(rendered) != 1 || rendered[0] != 6 {
		t.Errorf("rendered %v, want only [6]", rendered)
	}
	st := p.Stats()
	if st.Submitted != 5 || st.Superseded != 4 || st.Rendered != 1 || st.Discarded != 0 {
		t.Errorf("stats: %+v", st)
	}
}

func TestPreviewer_DropsStaleResult(t *testing.T) {
	started := make(chan int, 4)
	release := make(chan struct{})
	p := New(Options{
		Debounce: -1,
		Render: func(src *stylize.RasterImage, params stylize.Params) (*stylize.RasterImage, error) {
			started <- params.Levels
			<-release
			return src.Clone()
		},
	})
	start(t, p)

	first, err := p.Submit(testRaster(t), levels(2), "")
	if err != nil {
		t.Fatal(err)
	}
	if got := <-started; got != 2 {
		t.Fatalf("first render levels %d", got)
	}
	second, err := p.Submit(testRaster(t), levels(3), "")
	if err != nil {
		t.Fatal(err)
	}
	close(release)

	waitFor(t, func() bool { res, ok := p.Latest(); return ok && res.ID == second })
	st := p.Stats()
	if st.Rendered != 1 || st.Discarded != 1 {
		t.Errorf("stats: %+v", st)
	}
	if res, _ := p.Latest(); res.ID == first {
		t.Error("stale result was published")
	}
}

func TestPreviewer_OnResultAndFailure(t *testing.T) {
	results := make(chan Result, 1)
	p := New(Options{
		Debounce: -1,
		Render: func(*stylize.RasterImage, stylize.Params) (*stylize.RasterImage, error) {
			return nil, stylize.ErrAllocation
		},
		OnResult: func(r Result) { results <- r },
	})
	start(t, p)

	id, err := p.Submit(testRaster(t), levels(8), "")
	if err != nil {
		t.Fatal(err)
	}
	select {
	case res := <-results:
		if res.ID != id || !errors.Is(res.Err, stylize.ErrAllocation) || res.Image != nil {
			t.Errorf("result: %+v", res)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no result delivered")
	}
	if st := p.Stats(); st.Failed != 1 || st.Rendered != 0 {
		t.Errorf("stats: %+v", st)
	}
}

func TestPreviewer_RecoversPanic(t *testing.T) {
	p := New(Options{
		Debounce: -1,
		Render: func(*stylize.RasterImage, stylize.Params) (*stylize.RasterImage, error) {
			panic("boom")
		},
	})
	start(t, p)

	if _, err := p.Submit(testRaster(t), levels(8), ""); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { _, ok := p.Latest(); return ok })
	if res, _ := p.Latest(); res.Err == nil {
		t.Error("expected the panic to surface as an error")
	}
}

func TestPreviewer_RealRender(t *testing.T) {
	p := New(Options{Debounce: -1})
	start(t, p)

	src := testRaster(t)
	src.SetRGB(1, 1, 200, 100, 50)
	if _, err := p.Submit(src, stylize.DefaultParams(), ""); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { _, ok := p.Latest(); return ok })
	res, _ := p.Latest()
	if res.Err != nil || res.Image.Width != 4 || res.Image.Height != 4 {
		t.Errorf("result: %+v", res)
	}
}

func TestPreviewer_SubmitValidation(t *testing.T) {
	p := New(Options{})

	if _, err := p.Submit(nil, stylize.DefaultParams(), ""); !errors.Is(err, stylize.ErrUnsupportedFormat) {
		t.Errorf("nil source: got %v", err)
	}
	if _, err := p.Submit(testRaster(t), levels(0), ""); !errors.Is(err, stylize.ErrInvalidParameter) {
		t.Errorf("levels 0: got %v", err)
	}
	if st := p.Stats(); st.Submitted != 0 {
		t.Errorf("rejected submissions were counted: %+v", st)
	}
	if _, ok := p.Latest(); ok {
		t.Error("no result expected")
	}
}

func TestPreviewer_UniqueIDs(t *testing.T) {
	p := New(Options{})
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := p.Submit(testRaster(t), stylize.DefaultParams(), "")
		if err != nil {
			t.Fatal(err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
