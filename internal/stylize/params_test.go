package stylize

import (
	"errors"
	"math"
	"testing"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		levels  int
		wantErr bool
	}{
		{"one level", 1, false},
		{"eight levels", 8, false},
		{"above 256", 1000, false},
		{"zero", 0, true},
		{"negative", -4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.Levels = tt.levels
			err := p.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParameter) {
					t.Fatalf("error: got %v, want ErrInvalidParameter", err)
				}
				var pe *ParamError
				if !errors.As(err, &pe) || pe.Field != "levels" {
					t.Errorf("expected ParamError for levels, got %#v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParams_Normalized(t *testing.T) {
	p := Params{
		SaturationFactor:         -1,
		Levels:                   4096,
		SmoothingSpatialExtent:   math.NaN(),
		EdgePreservationStrength: 0,
	}.Normalized()

	if p.SaturationFactor != 0 {
		t.Errorf("SaturationFactor: got %v, want 0", p.SaturationFactor)
	}
	if p.Levels != MaxLevels {
		t.Errorf("Levels: got %d, want %d", p.Levels, MaxLevels)
	}
	if p.SmoothingSpatialExtent != 0 {
		t.Errorf("SmoothingSpatialExtent: got %v, want 0", p.SmoothingSpatialExtent)
	}
	if p.EdgePreservationStrength != MinEdgePreservation {
		t.Errorf("EdgePreservationStrength: got %v, want %v", p.EdgePreservationStrength, MinEdgePreservation)
	}
}

func TestParams_NormalizedKeepsValidValues(t *testing.T) {
	in := DefaultParams()
	if got := in.Normalized(); got != in {
		t.Errorf("Normalized changed valid params: got %+v, want %+v", got, in)
	}
}

func TestStep(t *testing.T) {
	tests := []struct {
		levels int
		want   int
	}{
		{1, 256},
		{2, 128},
		{3, 85},
		{8, 32},
		{12, 21},
		{256, 1},
		{257, 1},
	}

	for _, tt := range tests {
		if got := Step(tt.levels); got != tt.want {
			t.Errorf("Step(%d): got %d, want %d", tt.levels, got, tt.want)
		}
	}
}
