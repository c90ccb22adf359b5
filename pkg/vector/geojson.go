package vector

import (
	"encoding/json"
	"fmt"

	"gis-primer/pkg/geom"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// GeoJSONFeatureCollection represents a GeoJSON FeatureCollection
type GeoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []GeoJSONFeature `json:"features"`
}

// GeoJSONFeature represents a GeoJSON Feature
type GeoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// GeoJSONGeometry carries the geometry type and its raw coordinate nesting.
// Coordinates stay opaque; the nesting depth depends on the geometry type
// and is only walked for bounds computation.
type GeoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// NewLayerFromGeoJSON creates a Layer from GeoJSON FeatureCollection bytes.
// The Arrow schema is inferred from the feature properties: the first
// non-nil value of each key decides the column type, everything else is a
// string.
func NewLayerFromGeoJSON(name string, data []byte, crs string) (*Layer, error) {
	var fc GeoJSONFeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal geojson: %w", err)
	}

	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("no features in FeatureCollection")
	}

	pool := memory.NewGoAllocator()

	// Collect property keys to build the schema
	propKeys := make(map[string]struct{})
	for _, f := range fc.Features {
		for k := range f.Properties {
			propKeys[k] = struct{}{}
		}
	}

	fields := []arrow.Field{
		{Name: geom.GeometryColumn, Type: arrow.BinaryTypes.String},
	}

	for k := range propKeys {
		var fieldType arrow.DataType = arrow.BinaryTypes.String
		for _, f := range fc.Features {
			if v, ok := f.Properties[k]; ok && v != nil {
				switch v.(type) {
				case float64:
					fieldType = arrow.PrimitiveTypes.Float64
				case int, int64:
					fieldType = arrow.PrimitiveTypes.Int64
				case bool:
					fieldType = arrow.FixedWidthTypes.Boolean
				}
				break
			}
		}
		fields = append(fields, arrow.Field{Name: k, Type: fieldType})
	}

	schema := arrow.NewSchema(fields, nil)
	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	gtype := geom.GeometryType("")

	for i, f := range fc.Features {
		var g GeoJSONGeometry
		if len(f.Geometry) == 0 {
			return nil, fmt.Errorf("feature %d has no geometry", i)
		}
		if err := json.Unmarshal(f.Geometry, &g); err != nil {
			return nil, fmt.Errorf("feature %d: invalid geometry: %w", i, err)
		}

		switch {
		case gtype == "":
			gtype = geom.GeometryType(g.Type)
		case gtype != geom.GeometryType(g.Type):
			gtype = geom.MIXED
		}

		// Re-marshal compactly so the stored column is canonical JSON.
		compact, err := json.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		builder.Field(0).(*array.StringBuilder).Append(string(compact))

		for colIdx := 1; colIdx < len(fields); colIdx++ {
			fieldName := fields[colIdx].Name
			val, ok := f.Properties[fieldName]
			if !ok || val == nil {
				builder.Field(colIdx).AppendNull()
				continue
			}

			// A property can change type between features ("pop": 1.5
			// in one, "pop": "n/a" in another). Values that do not
			// match the inferred column type become null.
			switch b := builder.Field(colIdx).(type) {
			case *array.Float64Builder:
				if fv, ok := val.(float64); ok {
					b.Append(fv)
				} else {
					b.AppendNull()
				}
			case *array.Int64Builder:
				// JSON numbers are float64 by default
				switch v := val.(type) {
				case float64:
					b.Append(int64(v))
				case int64:
					b.Append(v)
				default:
					b.AppendNull()
				}
			case *array.StringBuilder:
				b.Append(fmt.Sprint(val))
			case *array.BooleanBuilder:
				if bv, ok := val.(bool); ok {
					b.Append(bv)
				} else {
					b.AppendNull()
				}
			default:
				builder.Field(colIdx).AppendNull()
			}
		}
	}

	rec := builder.NewRecordBatch()
	return NewLayer(name, []arrow.RecordBatch{rec}, gtype, crs)
}

// ToGeoJSON converts the Layer to GeoJSON FeatureCollection bytes.
func (l *Layer) ToGeoJSON() ([]byte, error) {
	if len(l.records) == 0 {
		return nil, fmt.Errorf("no records to convert")
	}

	fc := GeoJSONFeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]GeoJSONFeature, 0, l.FeatureCount()),
	}

	for _, batch := range l.records {
		schema := batch.Schema()

		indices := schema.FieldIndices(geom.GeometryColumn)
		if len(indices) == 0 {
			return nil, fmt.Errorf("geometry column not found in records")
		}
		geomIdx := indices[0]
		geomCol := batch.Column(geomIdx)

		for rowIdx := 0; rowIdx < int(batch.NumRows()); rowIdx++ {
			gj, err := getStringValue(geomCol, rowIdx)
			if err != nil {
				return nil, fmt.Errorf("failed to get geometry at row %d: %v", rowIdx, err)
			}

			properties := make(map[string]interface{})
			for colIdx := 0; colIdx < int(batch.NumCols()); colIdx++ {
				if colIdx == geomIdx {
					continue
				}

				val, err := getColumnValue(batch.Column(colIdx), rowIdx)
				if err == nil && val != nil {
					properties[schema.Field(colIdx).Name] = val
				}
			}

			fc.Features = append(fc.Features, GeoJSONFeature{
				Type:       "Feature",
				Geometry:   json.RawMessage(gj),
				Properties: properties,
			})
		}
	}

	return json.MarshalIndent(fc, "", "  ")
}

// geometryBounds computes the bounding box of a single GeoJSON geometry by
// walking its coordinate nesting, whatever the depth.
func geometryBounds(data []byte) (geom.Bounds, error) {
	var g struct {
		Type        string `json:"type"`
		Coordinates any    `json:"coordinates"`
	}

	b := geom.EmptyBounds()

	if err := json.Unmarshal(data, &g); err != nil {
		return b, fmt.Errorf("invalid geometry: %w", err)
	}
	if g.Coordinates == nil {
		return b, fmt.Errorf("geometry %s has no coordinates", g.Type)
	}

	b, err := walkCoordinates(b, g.Coordinates)
	if err != nil {
		return b, err
	}
	if b.IsEmpty() {
		return b, fmt.Errorf("geometry %s has empty coordinates", g.Type)
	}
	return b, nil
}

func walkCoordinates(b geom.Bounds, node any) (geom.Bounds, error) {
	arr, ok := node.([]any)
	if !ok {
		return b, fmt.Errorf("unexpected coordinate node %T", node)
	}
	if len(arr) == 0 {
		return b, nil
	}

	// A position is a flat [x, y, ...] array of numbers.
	if x, ok := arr[0].(float64); ok {
		if len(arr) < 2 {
			return b, fmt.Errorf("position has fewer than 2 values")
		}
		y, ok := arr[1].(float64)
		if !ok {
			return b, fmt.Errorf("unexpected coordinate value %T", arr[1])
		}
		return b.Extend(x, y), nil
	}

	var err error
	for _, child := range arr {
		b, err = walkCoordinates(b, child)
		if err != nil {
			return b, err
		}
	}
	return b, nil
}

// sniffGeometryType inspects the geometry column of record batches and
// reports the shared geometry type, or MIXED.
func sniffGeometryType(records []arrow.RecordBatch) (geom.GeometryType, error) {
	gtype := geom.GeometryType("")

	for _, rec := range records {
		indices := rec.Schema().FieldIndices(geom.GeometryColumn)
		if len(indices) == 0 {
			return "", fmt.Errorf("geometry column not found in records")
		}
		col := rec.Column(indices[0])

		for i := 0; i < int(rec.NumRows()); i++ {
			gj, err := getStringValue(col, i)
			if err != nil {
				return "", err
			}
			if gj == "" {
				continue
			}

			var g GeoJSONGeometry
			if err := json.Unmarshal([]byte(gj), &g); err != nil {
				return "", fmt.Errorf("invalid geometry at row %d: %w", i, err)
			}

			switch {
			case gtype == "":
				gtype = geom.GeometryType(g.Type)
			case gtype != geom.GeometryType(g.Type):
				return geom.MIXED, nil
			}
		}
	}

	if gtype == "" {
		return "", fmt.Errorf("no geometries found")
	}
	return gtype, nil
}
