package render

import (
	"image/color"
	"testing"
)

func TestColors(t *testing.T) {
	t.Run(
		"samples the requested count", func(t *testing.T) {
			for _, n := range []int{1, 3, 5, 9} {
				colors, err := Colors("viridis", n)
				if err != nil {
					t.Fatalf("Colors(viridis, %d): %v", n, err)
				}
				if len(colors) != n {
					t.Errorf("expected %d colors, got %d", n, len(colors))
				}
			}
		},
	)

	t.Run(
		"endpoints hit the ramp ends", func(t *testing.T) {
			colors, err := Colors("viridis", 5)
			if err != nil {
				t.Fatal(err)
			}

			first := colors[0].(color.RGBA)
			last := colors[4].(color.RGBA)
			if first != (color.RGBA{R: 0x44, G: 0x01, B: 0x54, A: 255}) {
				t.Errorf("unexpected first color: %+v", first)
			}
			if last != (color.RGBA{R: 0xfd, G: 0xe7, B: 0x25, A: 255}) {
				t.Errorf("unexpected last color: %+v", last)
			}
		},
	)

	t.Run(
		"unknown ramp", func(t *testing.T) {
			if _, err := Colors("plasma", 3); err == nil {
				t.Error("expected error for unknown ramp")
			}
		},
	)

	t.Run(
		"zero colors", func(t *testing.T) {
			if _, err := Colors("blues", 0); err == nil {
				t.Error("expected error for zero colors")
			}
		},
	)
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#1f9e89")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 0x1f || c.G != 0x9e || c.B != 0x89 || c.A != 255 {
		t.Errorf("unexpected color: %+v", c)
	}

	for _, bad := range []string{"1f9e89", "#1f9e8", "#zzzzzz"} {
		if _, err := parseHex(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
