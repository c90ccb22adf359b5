package crs

import (
	"fmt"
	"strings"
)

// CRS describes a coordinate reference system by its EPSG authority code.
// The proj4 text is informational; reprojection itself is delegated to the
// DuckDB spatial extension, which carries its own EPSG database.
type CRS struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Unit       string `json:"unit"`
	Proj4      string `json:"proj4"`
	Geographic bool   `json:"geographic"`
}

// registry holds the systems the course chapters use. Anything else is
// still accepted by Transform; it is handed to the engine as-is.
var registry = map[string]CRS{
	"EPSG:4326": {
		Code:       "EPSG:4326",
		Name:       "WGS 84",
		Unit:       "degree",
		Proj4:      "+proj=longlat +datum=WGS84 +no_defs",
		Geographic: true,
	},
	"EPSG:4269": {
		Code:       "EPSG:4269",
		Name:       "NAD83",
		Unit:       "degree",
		Proj4:      "+proj=longlat +datum=NAD83 +no_defs",
		Geographic: true,
	},
	"EPSG:3857": {
		Code:  "EPSG:3857",
		Name:  "WGS 84 / Pseudo-Mercator",
		Unit:  "metre",
		Proj4: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +nadgrids=@null +wgs84=0,0,0,0,0,0,0 +no_defs",
	},
	"EPSG:32610": {
		Code:  "EPSG:32610",
		Name:  "WGS 84 / UTM zone 10N",
		Unit:  "metre",
		Proj4: "+proj=utm +zone=10 +datum=WGS84 +units=m +no_defs",
	},
	"EPSG:32633": {
		Code:  "EPSG:32633",
		Name:  "WGS 84 / UTM zone 33N",
		Unit:  "metre",
		Proj4: "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs",
	},
}

// Normalize turns a bare EPSG code ("4326", "epsg:4326") into the canonical
// "EPSG:4326" form. WKT and proj4 strings pass through untouched.
func Normalize(code string) string {
	s := strings.TrimSpace(code)
	if s == "" {
		return s
	}

	// WKT or proj4 definitions are not EPSG codes.
	if strings.HasPrefix(s, "+") || strings.Contains(s, "[") {
		return s
	}

	if i := strings.IndexByte(s, ':'); i >= 0 {
		return "EPSG:" + s[i+1:]
	}

	// Bare numeric code
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	return "EPSG:" + s
}

// Lookup returns the registry entry for a code, normalizing first.
func Lookup(code string) (CRS, error) {
	c, ok := registry[Normalize(code)]
	if !ok {
		return CRS{}, fmt.Errorf("unknown CRS %q", code)
	}
	return c, nil
}

// IsGeographic reports whether a code names a known geographic (lon/lat)
// system. Unknown codes report false.
func IsGeographic(code string) bool {
	c, err := Lookup(code)
	return err == nil && c.Geographic
}

// Registered lists the codes the registry knows about.
func Registered() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	return out
}
