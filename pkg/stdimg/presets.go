package stdimg

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// Preset is a named FilterParameters set.
type Preset struct {
	Name   string           `yaml:"name"`
	Params FilterParameters `yaml:"params"`
}

// UnmarshalYAML fills fields missing from the document with DefaultParameters.
func (p *Preset) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type raw Preset
	r := raw{Params: DefaultParameters()}
	if err := unmarshal(&r); err != nil {
		return err
	}
	*p = Preset(r)
	return nil
}

// BuiltinPresets returns the presets shipped with the editor, keyed by id.
func BuiltinPresets() map[string]Preset {
	enhance := DefaultParameters()
	enhance.Equalize = true
	enhance.Sharpen = 1.5

	edges := DefaultParameters()
	edges.Grayscale = true
	edges.Blur = BlurGaussian
	edges.BlurRadius = 5
	edges.Edge = EdgeHysteresis
	edges.CannyLow = 100
	edges.CannyHigh = 200

	denoise := DefaultParameters()
	denoise.Blur = BlurMedian
	denoise.BlurRadius = 5

	bw := DefaultParameters()
	bw.Grayscale = true
	bw.AdaptiveBlock = 11
	bw.AdaptiveOffset = 2

	return map[string]Preset{
		"enhance_contrast": {Name: "Enhance Contrast", Params: enhance},
		"edge_detection":   {Name: "Edge Detection", Params: edges},
		"denoise":          {Name: "Denoise", Params: denoise},
		"black_white":      {Name: "Black & White", Params: bw},
	}
}

// ParsePresets decodes a YAML map of presets and validates every entry.
func ParsePresets(b []byte) (map[string]Preset, error) {
	presets := map[string]Preset{}
	if err := yaml.Unmarshal(b, &presets); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for id, p := range presets {
		if err := p.Params.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", id, err)
		}
		if p.Name == "" {
			p.Name = id
			presets[id] = p
		}
	}
	return presets, nil
}

// LoadPresets returns the built-in presets overlaid with those defined in the
// YAML file at path. An empty path yields just the built-ins.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := BuiltinPresets()
	if path == "" {
		return presets, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets '%s': %w", path, err)
	}
	extra, err := ParsePresets(b)
	if err != nil {
		return nil, err
	}
	for id, p := range extra {
		presets[id] = p
	}
	return presets, nil
}

// PresetIDs returns the keys of presets in sorted order.
func PresetIDs(presets map[string]Preset) []string {
	ids := make([]string, 0, len(presets))
	for id := range presets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
