package crs

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"4326", "EPSG:4326"},
		{"EPSG:4326", "EPSG:4326"},
		{"epsg:3857", "EPSG:3857"},
		{" 32610 ", "EPSG:32610"},
		{"", ""},
		{"+proj=longlat +datum=WGS84 +no_defs", "+proj=longlat +datum=WGS84 +no_defs"},
		{`PROJCS["WGS 84 / UTM zone 10N"]`, `PROJCS["WGS 84 / UTM zone 10N"]`},
		{"not-a-code", "not-a-code"},
	}

	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Run(
		"known code", func(t *testing.T) {
			c, err := Lookup("4326")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Name != "WGS 84" {
				t.Errorf("unexpected name %q", c.Name)
			}
			if !c.Geographic {
				t.Error("EPSG:4326 should be geographic")
			}
			if c.Unit != "degree" {
				t.Errorf("unexpected unit %q", c.Unit)
			}
		},
	)

	t.Run(
		"projected code", func(t *testing.T) {
			c, err := Lookup("EPSG:32610")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Geographic {
				t.Error("EPSG:32610 should not be geographic")
			}
			if c.Unit != "metre" {
				t.Errorf("unexpected unit %q", c.Unit)
			}
		},
	)

	t.Run(
		"unknown code", func(t *testing.T) {
			if _, err := Lookup("EPSG:99999"); err == nil {
				t.Error("expected error for unknown code")
			}
		},
	)
}

func TestIsGeographic(t *testing.T) {
	if !IsGeographic("4326") {
		t.Error("4326 should report geographic")
	}
	if IsGeographic("3857") {
		t.Error("3857 should not report geographic")
	}
	if IsGeographic("EPSG:99999") {
		t.Error("unknown code should not report geographic")
	}
}

func TestRegistered(t *testing.T) {
	codes := Registered()
	if len(codes) == 0 {
		t.Fatal("expected at least one registered CRS")
	}

	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		seen[c] = true
	}
	for _, want := range []string{"EPSG:4326", "EPSG:3857", "EPSG:32610"} {
		if !seen[want] {
			t.Errorf("expected %s in registry", want)
		}
	}
}
