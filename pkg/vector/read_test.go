package vector

import (
	"context"
	"testing"

	"gis-primer/pkg/geom"

	"github.com/stretchr/testify/require"
)

func TestReadFile_GeoJSON(t *testing.T) {
	layer, err := ReadFile(context.Background(), "testdata/regions.geojson")
	require.NoError(t, err)
	defer layer.Release()

	require.Equal(t, "regions", layer.Name())
	require.Equal(t, 3, layer.FeatureCount())
	require.Equal(t, geom.POLYGON, layer.GetGeometryType())
	require.Equal(t, "EPSG:4326", layer.GetCRS())

	fields := layer.Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	require.Contains(t, names, "region")
	require.Contains(t, names, "code")
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(context.Background(), "testdata/does-not-exist.shp")
	require.Error(t, err)
}

func TestSourcePath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"data/counties.shp", "data/counties.shp"},
		{"data/counties.geojson", "data/counties.geojson"},
		{"data/counties.zip", "/vsizip/data/counties.zip"},
		{"data/COUNTIES.ZIP", "/vsizip/data/COUNTIES.ZIP"},
		{"/abs/path/archive.Zip", "/vsizip//abs/path/archive.Zip"},
		{"data/zipcodes.geojson", "data/zipcodes.geojson"},
	}

	for _, c := range cases {
		if got := sourcePath(c.path); got != c.want {
			t.Errorf("sourcePath(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestLayerName(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"data/ca_counties.zip", "ca_counties"},
		{"/abs/path/cities.geojson", "cities"},
		{"regions.shp", "regions"},
		{"noext", "noext"},
	}

	for _, c := range cases {
		if got := layerName(c.path); got != c.want {
			t.Errorf("layerName(%q) = %q, want %q", c.path, got, c.want)
		}
	}
}
