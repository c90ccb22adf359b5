package vector

import (
	"fmt"

	"gis-primer/pkg/geom"

	"github.com/apache/arrow-go/v18/arrow"
)

// Layer is a tabular feature collection: one row per feature, scalar
// attribute columns plus a GeoJSON-encoded geometry column, carried as
// Apache Arrow record batches. The CRS applies to the collection as a
// whole.
type Layer struct {
	name    string
	records []arrow.RecordBatch
	gtype   geom.GeometryType
	crs     string
}

// NewLayer wraps record batches as a Layer. Non-empty batches must carry
// the geometry column.
func NewLayer(name string, records []arrow.RecordBatch, gtype geom.GeometryType, crs string) (*Layer, error) {
	l := &Layer{
		name:    name,
		records: records,
		gtype:   gtype,
		crs:     crs,
	}

	if len(records) > 0 {
		schema := records[0].Schema()
		if len(schema.FieldIndices(geom.GeometryColumn)) == 0 {
			return nil, fmt.Errorf("required column %s not found in records", geom.GeometryColumn)
		}
	}

	return l, nil
}

// NewLayerFromRecords wraps record batches as a Layer, inspecting the
// geometry column to determine the geometry type. Used when batches arrive
// from outside, such as a Flight stream, without type metadata.
func NewLayerFromRecords(name string, records []arrow.RecordBatch, crs string) (*Layer, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("records are empty")
	}

	gtype, err := sniffGeometryType(records)
	if err != nil {
		return nil, err
	}

	return NewLayer(name, records, gtype, crs)
}

// Name returns the layer name (usually the source file's base name).
func (l *Layer) Name() string {
	return l.name
}

// GetCRS returns the coordinate reference system of the layer.
func (l *Layer) GetCRS() string {
	return l.crs
}

// GetRecords returns the arrow record batches.
func (l *Layer) GetRecords() []arrow.RecordBatch {
	return l.records
}

// GetGeometryType returns the geometry type shared by the features.
func (l *Layer) GetGeometryType() geom.GeometryType {
	return l.gtype
}

// GetAttributes returns layer-level metadata.
func (l *Layer) GetAttributes() map[string]any {
	return map[string]any{
		"name":          l.name,
		"geometry_type": string(l.gtype),
		"crs":           l.crs,
	}
}

// Release releases the arrow record buffers.
func (l *Layer) Release() {
	for _, rec := range l.records {
		rec.Release()
	}
	l.records = nil
}

// FeatureCount returns the number of features across all batches.
func (l *Layer) FeatureCount() int {
	n := 0
	for _, rec := range l.records {
		n += int(rec.NumRows())
	}
	return n
}

// Fields returns the attribute fields of the layer, geometry column
// excluded.
func (l *Layer) Fields() []arrow.Field {
	if len(l.records) == 0 {
		return nil
	}

	var out []arrow.Field
	for _, f := range l.records[0].Schema().Fields() {
		if f.Name == geom.GeometryColumn {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Bounds computes the bounding box of all feature geometries, in layer
// coordinates.
func (l *Layer) Bounds() (geom.Bounds, error) {
	b := geom.EmptyBounds()

	for _, rec := range l.records {
		indices := rec.Schema().FieldIndices(geom.GeometryColumn)
		if len(indices) == 0 {
			return b, fmt.Errorf("geometry column not found in records")
		}

		col := rec.Column(indices[0])
		for i := 0; i < int(rec.NumRows()); i++ {
			gj, err := getStringValue(col, i)
			if err != nil {
				return b, fmt.Errorf("failed to read geometry at row %d: %v", i, err)
			}
			if gj == "" {
				continue
			}

			gb, err := geometryBounds([]byte(gj))
			if err != nil {
				return b, fmt.Errorf("failed to compute bounds at row %d: %v", i, err)
			}
			b = b.Union(gb)
		}
	}

	if b.IsEmpty() {
		return b, fmt.Errorf("layer has no geometries")
	}
	return b, nil
}

// FeatureBounds returns the bounding box of each feature, in row order.
func (l *Layer) FeatureBounds() ([]geom.Bounds, error) {
	geoms, err := l.GeometryStrings()
	if err != nil {
		return nil, err
	}

	out := make([]geom.Bounds, 0, len(geoms))
	for i, gj := range geoms {
		if gj == "" {
			out = append(out, geom.EmptyBounds())
			continue
		}
		b, err := geometryBounds([]byte(gj))
		if err != nil {
			return nil, fmt.Errorf("failed to compute bounds at row %d: %v", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// NumericColumn returns an attribute column as float64 values, one per
// feature. Integer columns are widened.
func (l *Layer) NumericColumn(name string) ([]float64, error) {
	out := make([]float64, 0, l.FeatureCount())

	for _, rec := range l.records {
		indices := rec.Schema().FieldIndices(name)
		if len(indices) == 0 {
			return nil, fmt.Errorf("column %s not found in records", name)
		}

		col := rec.Column(indices[0])
		for i := 0; i < int(rec.NumRows()); i++ {
			v, err := getFloat64Value(col, i)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %v", name, i, err)
			}
			out = append(out, v)
		}
	}

	return out, nil
}

// GeometryStrings returns the GeoJSON geometry of every feature, in row
// order.
func (l *Layer) GeometryStrings() ([]string, error) {
	out := make([]string, 0, l.FeatureCount())

	for _, rec := range l.records {
		indices := rec.Schema().FieldIndices(geom.GeometryColumn)
		if len(indices) == 0 {
			return nil, fmt.Errorf("geometry column not found in records")
		}

		col := rec.Column(indices[0])
		for i := 0; i < int(rec.NumRows()); i++ {
			gj, err := getStringValue(col, i)
			if err != nil {
				return nil, fmt.Errorf("failed to read geometry at row %d: %v", i, err)
			}
			out = append(out, gj)
		}
	}

	return out, nil
}

// Head returns up to n features as attribute maps, geometry encoded as a
// GeoJSON string under the geometry column name. Meant for inspection in
// the tutorial chapters.
func (l *Layer) Head(n int) ([]map[string]any, error) {
	out := make([]map[string]any, 0, n)

	for _, rec := range l.records {
		schema := rec.Schema()
		for row := 0; row < int(rec.NumRows()); row++ {
			if len(out) == n {
				return out, nil
			}

			props := make(map[string]any)
			for colIdx := 0; colIdx < int(rec.NumCols()); colIdx++ {
				val, err := getColumnValue(rec.Column(colIdx), row)
				if err != nil {
					return nil, fmt.Errorf("column %s row %d: %v", schema.Field(colIdx).Name, row, err)
				}
				if val != nil {
					props[schema.Field(colIdx).Name] = val
				}
			}
			out = append(out, props)
		}
	}

	return out, nil
}
