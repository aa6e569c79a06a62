package preset

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileEntry is one preset in a YAML preset file. Omitted fields inherit
// from the built-in preset of the same name, or from the default preset
// for new names.
type fileEntry struct {
	Name           string   `yaml:"name"`
	Saturation     *float64 `yaml:"saturation"`
	Levels         *int     `yaml:"levels"`
	SmoothStrength *float64 `yaml:"smooth_strength"`
	EdgeStrength   *float64 `yaml:"edge_strength"`
}

type file struct {
	Presets []fileEntry `yaml:"presets"`
}

// LoadFile reads a YAML preset file and layers it over the built-ins.
//
// Example file:
//
//	presets:
//	  - name: novel_game
//	    levels: 10
//	  - name: pastel
//	    saturation: 0.8
//	    levels: 6
//	    smooth_strength: 60
//	    edge_strength: 0.6
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset file %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes YAML preset data and layers it over the built-ins.
func Parse(data []byte) (*Registry, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode presets: %w", err)
	}

	presets := builtinPresets()
	index := make(map[string]int, len(presets))
	for i, p := range presets {
		index[p.Name] = i
	}

	seen := make(map[string]bool)
	for _, e := range f.Presets {
		if seen[e.Name] {
			return nil, fmt.Errorf("duplicate preset %q", e.Name)
		}
		seen[e.Name] = true

		i, exists := index[e.Name]
		if !exists {
			def := builtinPresets()[0]
			presets = append(presets, Preset{Name: e.Name, Params: def.Params})
			i = len(presets) - 1
			index[e.Name] = i
		}
		p := &presets[i].Params
		if e.Saturation != nil {
			p.SaturationFactor = *e.Saturation
		}
		if e.Levels != nil {
			p.Levels = *e.Levels
		}
		if e.SmoothStrength != nil {
			p.SmoothingSpatialExtent = *e.SmoothStrength
		}
		if e.EdgeStrength != nil {
			p.EdgePreservationStrength = *e.EdgeStrength
		}
	}
	return New(presets)
}
