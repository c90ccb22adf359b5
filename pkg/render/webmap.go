package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gis-primer/pkg/geom"
	"gis-primer/pkg/vector"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// PointMap renders a point layer as a self-contained interactive HTML
// scatter map, colored by an attribute through a visual map. Coordinates
// plot as plain X/Y, so a projected CRS keeps shapes sensible; EPSG:4326
// still works for small extents.
func PointMap(layer *vector.Layer, style Style, w io.Writer) error {
	if err := style.Validate(); err != nil {
		return err
	}
	if layer.GetGeometryType() != geom.POINT {
		return fmt.Errorf("point map needs points, layer has %s", layer.GetGeometryType())
	}

	values, err := layer.NumericColumn(style.Attribute)
	if err != nil {
		return fmt.Errorf("failed to read attribute %s: %w", style.Attribute, err)
	}

	geoms, err := layer.GeometryStrings()
	if err != nil {
		return err
	}

	stops, err := RampStops(style.Ramp)
	if err != nil {
		return err
	}

	data := make([]opts.ScatterData, 0, len(geoms))
	minVal, maxVal := values[0], values[0]

	for i, gj := range geoms {
		var g struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		}
		if err := json.Unmarshal([]byte(gj), &g); err != nil {
			return fmt.Errorf("feature %d: invalid geometry: %w", i, err)
		}
		if len(g.Coordinates) < 2 {
			return fmt.Errorf("feature %d: point has no coordinates", i)
		}

		if values[i] < minVal {
			minVal = values[i]
		}
		if values[i] > maxVal {
			maxVal = values[i]
		}

		data = append(data, opts.ScatterData{
			Value: []interface{}{g.Coordinates[0], g.Coordinates[1], values[i]},
		})
	}

	b, err := layer.Bounds()
	if err != nil {
		return err
	}

	// Pad the axes so edge points stay visible
	padX := b.Width() * 0.05
	padY := b.Height() * 0.05
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}

	title := style.Title
	if title == "" {
		title = layer.Name()
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d features, %s, colored by %s", layer.FeatureCount(), layer.GetCRS(), style.Attribute),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: b.MinX - padX, Max: b.MaxX + padX, Name: "X"}),
		charts.WithYAxisOpts(opts.YAxis{Min: b.MinY - padY, Max: b.MaxY + padY, Name: "Y"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minVal),
			Max:        float32(maxVal),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: stops},
		}),
	)

	scatter.AddSeries(style.Attribute, data,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	return scatter.Render(w)
}
