package batch

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/stat"
)

// Result is the outcome of one image and preset pair.
type Result struct {
	Input    string        `json:"input"`
	Preset   string        `json:"preset"`
	Output   string        `json:"output"`
	Width    int           `json:"width,omitempty"`
	Height   int           `json:"height,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// OK reports whether the result was written.
func (r Result) OK() bool {
	return r.Err == nil
}

// Report summarizes a run.
type Report struct {
	Results []Result
	Elapsed time.Duration
}

// Succeeded returns the number of written outputs.
func (r *Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// Skipped returns the number of jobs that never ran.
func (r *Report) Skipped() int {
	n := 0
	for _, res := range r.Results {
		if errors.Is(res.Err, ErrSkipped) {
			n++
		}
	}
	return n
}

// Failed returns the number of jobs that ran and failed.
func (r *Report) Failed() int {
	return len(r.Results) - r.Succeeded() - r.Skipped()
}

// DurationStats returns the mean and sample standard deviation of the
// stylize-and-save time of successful jobs. Both are zero without successes.
func (r *Report) DurationStats() (mean, stddev time.Duration) {
	var secs []float64
	for _, res := range r.Results {
		if res.OK() {
			secs = append(secs, res.Duration.Seconds())
		}
	}
	switch len(secs) {
	case 0:
		return 0, 0
	case 1:
		return fromSeconds(secs[0]), 0
	}
	m, s := stat.MeanStdDev(secs, nil)
	return fromSeconds(m), fromSeconds(s)
}

func fromSeconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// Write renders a colored, human-readable summary.
func (r *Report) Write(w io.Writer) error {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	dim := color.New(color.FgHiBlack)

	for _, res := range r.Results {
		switch {
		case res.OK():
			ok.Fprintf(w, "  ✓ %s", res.Output)
			dim.Fprintf(w, " (%s, %dx%d, %v)\n", res.Preset, res.Width, res.Height, res.Duration.Round(time.Millisecond))
		case errors.Is(res.Err, ErrSkipped):
			dim.Fprintf(w, "  ○ %s [%s] skipped\n", res.Input, res.Preset)
		default:
			bad.Fprintf(w, "  ✗ %s [%s]", res.Input, res.Preset)
			dim.Fprintf(w, " - %v\n", res.Err)
		}
	}

	fmt.Fprintln(w)
	mean, stddev := r.DurationStats()
	summary := fmt.Sprintf("%d converted, %d failed, %d skipped in %v",
		r.Succeeded(), r.Failed(), r.Skipped(), r.Elapsed.Round(time.Millisecond))
	if r.Failed() == 0 && r.Skipped() == 0 {
		color.New(color.FgGreen, color.Bold).Fprint(w, summary)
	} else {
		color.New(color.FgRed, color.Bold).Fprint(w, summary)
	}
	_, err := dim.Fprintf(w, " (per image %v ± %v)\n",
		mean.Round(time.Millisecond), stddev.Round(time.Millisecond))
	return err
}
