package render

import (
	"fmt"
	"image/color"
	"strconv"
)

// Color ramps as hex stop lists. The viridis stops match the ramp commonly
// used for sequential data; blues and reds are simple light-to-dark ramps.
var ramps = map[string][]string{
	"viridis": {
		"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
		"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
	},
	"blues": {
		"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6",
		"#4292c6", "#2171b5", "#08519c", "#08306b",
	},
	"reds": {
		"#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a",
		"#ef3b2c", "#cb181d", "#a50f15", "#67000d",
	},
}

// RampStops returns the hex stops of a named ramp, for renderers that take
// color lists directly (the echarts visual map does).
func RampStops(name string) ([]string, error) {
	stops, ok := ramps[name]
	if !ok {
		return nil, fmt.Errorf("unknown color ramp %q", name)
	}
	return stops, nil
}

// Colors samples n colors evenly from a named ramp.
func Colors(name string, n int) ([]color.Color, error) {
	stops, err := RampStops(name)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("need at least 1 color, got %d", n)
	}

	out := make([]color.Color, n)
	for i := 0; i < n; i++ {
		pos := 0.0
		if n > 1 {
			pos = float64(i) / float64(n-1)
		}
		idx := int(pos * float64(len(stops)-1))
		c, err := parseHex(stops[idx])
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

func parseHex(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}
