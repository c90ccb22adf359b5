package render

import (
	"encoding/json"
	"fmt"
	"image/color"

	"gis-primer/pkg/geom"
	"gis-primer/pkg/vector"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Choropleth renders a polygon layer shaded by an attribute into a static
// image file (format from the extension: .png, .svg, .pdf). Values are
// classed with the style's method and colored from its ramp.
func Choropleth(layer *vector.Layer, style Style, path string) error {
	if err := style.Validate(); err != nil {
		return err
	}

	switch layer.GetGeometryType() {
	case geom.POLYGON, geom.MULTIPOLYGON:
	default:
		return fmt.Errorf("choropleth needs polygons, layer has %s", layer.GetGeometryType())
	}

	values, err := layer.NumericColumn(style.Attribute)
	if err != nil {
		return fmt.Errorf("failed to read attribute %s: %w", style.Attribute, err)
	}

	breaks, err := Breaks(values, style.Classes, style.Method)
	if err != nil {
		return err
	}

	colors, err := Colors(style.Ramp, style.Classes)
	if err != nil {
		return err
	}

	geoms, err := layer.GeometryStrings()
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = style.Title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	if crsName := layer.GetCRS(); crsName != "" {
		p.X.Label.Text = fmt.Sprintf("X (%s)", crsName)
		p.Y.Label.Text = fmt.Sprintf("Y (%s)", crsName)
	}

	for i, gj := range geoms {
		rings, err := polygonRings(gj)
		if err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}

		class := Classify(values[i], breaks)

		for _, ring := range rings {
			xys := make(plotter.XYs, len(ring))
			for j, pos := range ring {
				xys[j].X = pos[0]
				xys[j].Y = pos[1]
			}

			poly, err := plotter.NewPolygon(xys)
			if err != nil {
				return fmt.Errorf("feature %d: %w", i, err)
			}
			poly.Color = colors[class]
			poly.LineStyle.Width = vg.Points(style.StrokeWidth)
			poly.LineStyle.Color = color.Black
			p.Add(poly)
		}
	}

	return p.Save(7*vg.Inch, 7*vg.Inch, path)
}

// polygonRings extracts the coordinate rings of a Polygon or MultiPolygon
// GeoJSON geometry. MultiPolygon parts are flattened into one ring list;
// each ring is a closed sequence of [x, y] positions.
func polygonRings(gj string) ([][][]float64, error) {
	var g struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal([]byte(gj), &g); err != nil {
		return nil, fmt.Errorf("invalid geometry: %w", err)
	}

	switch g.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("invalid Polygon coordinates: %w", err)
		}
		return rings, nil

	case "MultiPolygon":
		var parts [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &parts); err != nil {
			return nil, fmt.Errorf("invalid MultiPolygon coordinates: %w", err)
		}
		var rings [][][]float64
		for _, part := range parts {
			rings = append(rings, part...)
		}
		return rings, nil

	default:
		return nil, fmt.Errorf("expected Polygon or MultiPolygon, got %s", g.Type)
	}
}
