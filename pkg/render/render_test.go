package render

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gis-primer/pkg/raster"
	"gis-primer/pkg/vector"

	"github.com/stretchr/testify/require"
)

const regionsJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]]}, "properties": {"region": "a", "population": 100}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[2, 0], [4, 0], [4, 2], [2, 2], [2, 0]]]}, "properties": {"region": "b", "population": 400}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0, 2], [2, 2], [2, 4], [0, 4], [0, 2]]]}, "properties": {"region": "c", "population": 900}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[2, 2], [4, 2], [4, 4], [2, 4], [2, 2]]]}, "properties": {"region": "d", "population": 1600}}
	]
}`

const sitesJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0.5, 0.5]}, "properties": {"reading": 1.5}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1.5, 3.0]}, "properties": {"reading": 4.0}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [3.5, 1.0]}, "properties": {"reading": 9.5}}
	]
}`

func TestChoropleth(t *testing.T) {
	layer, err := vector.NewLayerFromGeoJSON("regions", []byte(regionsJSON), "EPSG:3857")
	require.NoError(t, err)
	defer layer.Release()

	style := DefaultStyle("population")
	style.Title = "Population"
	style.Classes = 4
	style.Method = EqualInterval

	path := filepath.Join(t.TempDir(), "choropleth.png")
	require.NoError(t, Choropleth(layer, style, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestChoropleth_RejectsPoints(t *testing.T) {
	layer, err := vector.NewLayerFromGeoJSON("sites", []byte(sitesJSON), "EPSG:3857")
	require.NoError(t, err)
	defer layer.Release()

	err = Choropleth(layer, DefaultStyle("reading"), filepath.Join(t.TempDir(), "bad.png"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "polygons")
}

func TestChoropleth_MissingAttribute(t *testing.T) {
	layer, err := vector.NewLayerFromGeoJSON("regions", []byte(regionsJSON), "EPSG:3857")
	require.NoError(t, err)
	defer layer.Release()

	err = Choropleth(layer, DefaultStyle("no_such_column"), filepath.Join(t.TempDir(), "bad.png"))
	require.Error(t, err)
}

func TestPointMap(t *testing.T) {
	layer, err := vector.NewLayerFromGeoJSON("sites", []byte(sitesJSON), "EPSG:3857")
	require.NoError(t, err)
	defer layer.Release()

	style := DefaultStyle("reading")
	style.Title = "Sensor readings"
	style.Classes = 3

	var buf bytes.Buffer
	require.NoError(t, PointMap(layer, style, &buf))

	html := buf.String()
	require.True(t, strings.Contains(html, "echarts"), "output does not look like an echarts page")
	require.Contains(t, html, "Sensor readings")
}

func TestPointMap_RejectsPolygons(t *testing.T) {
	layer, err := vector.NewLayerFromGeoJSON("regions", []byte(regionsJSON), "EPSG:3857")
	require.NoError(t, err)
	defer layer.Release()

	var buf bytes.Buffer
	err = PointMap(layer, DefaultStyle("population"), &buf)
	require.Error(t, err)
}

func TestHeatMap(t *testing.T) {
	values := []float64{
		1, 2, 3,
		4, -9999, 6,
		7, 8, 9,
	}
	g, err := raster.NewGrid(3, 3, 0, 0, 1, -9999, "EPSG:3857", values)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "heat.png")
	require.NoError(t, HeatMap(g, "elevation", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
