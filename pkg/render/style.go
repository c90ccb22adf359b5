package render

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Style is a map composition: which attribute to theme on and how to class
// and color it. Styles load from small YAML files so a chapter can tweak a
// map without touching code.
type Style struct {
	Title       string  `yaml:"title"`
	Attribute   string  `yaml:"attribute"`
	Classes     int     `yaml:"classes"`
	Method      Method  `yaml:"method"`
	Ramp        string  `yaml:"ramp"`
	StrokeWidth float64 `yaml:"stroke_width"`
}

// DefaultStyle returns a five-class quantile viridis style.
func DefaultStyle(attribute string) Style {
	return Style{
		Attribute:   attribute,
		Classes:     5,
		Method:      Quantile,
		Ramp:        "viridis",
		StrokeWidth: 0.5,
	}
}

// LoadStyle reads a style from a YAML file, filling omitted fields with
// defaults.
func LoadStyle(path string) (Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("failed to read style %s: %v", path, err)
	}

	s := DefaultStyle("")
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Style{}, fmt.Errorf("invalid style %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return Style{}, fmt.Errorf("style %s: %w", path, err)
	}
	return s, nil
}

// Validate checks a style before rendering.
func (s Style) Validate() error {
	if s.Attribute == "" {
		return fmt.Errorf("style has no attribute")
	}
	if s.Classes < 2 {
		return fmt.Errorf("style needs at least 2 classes, has %d", s.Classes)
	}
	if s.Method != EqualInterval && s.Method != Quantile {
		return fmt.Errorf("unknown classification method %q", s.Method)
	}
	if _, err := RampStops(s.Ramp); err != nil {
		return err
	}
	return nil
}
