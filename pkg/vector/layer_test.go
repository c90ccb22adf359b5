package vector

import (
	"testing"

	"gis-primer/pkg/geom"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// pointBatch builds a small record batch with a GeoJSON geometry column and
// a couple of attributes.
func pointBatch(t *testing.T) arrow.RecordBatch {
	t.Helper()

	pool := memory.NewGoAllocator()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: geom.GeometryColumn, Type: arrow.BinaryTypes.String},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "population", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	builder.Field(0).(*array.StringBuilder).Append(`{"type":"Point","coordinates":[-122.4194,37.7749]}`)
	builder.Field(1).(*array.StringBuilder).Append("San Francisco")
	builder.Field(2).(*array.Float64Builder).Append(873965)

	builder.Field(0).(*array.StringBuilder).Append(`{"type":"Point","coordinates":[-122.2712,37.8044]}`)
	builder.Field(1).(*array.StringBuilder).Append("Oakland")
	builder.Field(2).(*array.Float64Builder).Append(433031)

	return builder.NewRecordBatch()
}

func TestNewLayer(t *testing.T) {
	t.Run(
		"valid records", func(t *testing.T) {
			rec := pointBatch(t)

			layer, err := NewLayer("cities", []arrow.RecordBatch{rec}, geom.POINT, "EPSG:4326")
			if err != nil {
				t.Fatalf("failed to create layer: %v", err)
			}
			defer layer.Release()

			if layer.FeatureCount() != 2 {
				t.Errorf("expected 2 features, got %d", layer.FeatureCount())
			}
			if layer.Name() != "cities" {
				t.Errorf("unexpected name %q", layer.Name())
			}
		},
	)

	t.Run(
		"missing geometry column", func(t *testing.T) {
			pool := memory.NewGoAllocator()

			schema := arrow.NewSchema([]arrow.Field{
				{Name: "name", Type: arrow.BinaryTypes.String},
			}, nil)

			builder := array.NewRecordBuilder(pool, schema)
			defer builder.Release()
			builder.Field(0).(*array.StringBuilder).Append("nowhere")

			rec := builder.NewRecordBatch()
			defer rec.Release()

			_, err := NewLayer("bad", []arrow.RecordBatch{rec}, geom.POINT, "EPSG:4326")
			if err == nil {
				t.Error("expected error for records without geometry column")
			}
		},
	)

	t.Run(
		"empty records allowed", func(t *testing.T) {
			layer, err := NewLayer("empty", nil, geom.POINT, "EPSG:4326")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if layer.FeatureCount() != 0 {
				t.Errorf("expected 0 features, got %d", layer.FeatureCount())
			}
		},
	)
}

func TestLayerAttributes(t *testing.T) {
	rec := pointBatch(t)

	layer, err := NewLayer("cities", []arrow.RecordBatch{rec}, geom.POINT, "EPSG:4326")
	if err != nil {
		t.Fatal(err)
	}
	defer layer.Release()

	attrs := layer.GetAttributes()
	if attrs["name"] != "cities" {
		t.Errorf("unexpected name attribute: %v", attrs["name"])
	}
	if attrs["geometry_type"] != "Point" {
		t.Errorf("unexpected geometry_type attribute: %v", attrs["geometry_type"])
	}
	if attrs["crs"] != "EPSG:4326" {
		t.Errorf("unexpected crs attribute: %v", attrs["crs"])
	}
}

func TestLayerHead(t *testing.T) {
	rec := pointBatch(t)

	layer, err := NewLayer("cities", []arrow.RecordBatch{rec}, geom.POINT, "EPSG:4326")
	if err != nil {
		t.Fatal(err)
	}
	defer layer.Release()

	rows, err := layer.Head(1)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0]["name"] != "San Francisco" {
		t.Errorf("unexpected name: %v", rows[0]["name"])
	}
	if rows[0]["population"] != 873965.0 {
		t.Errorf("unexpected population: %v", rows[0]["population"])
	}

	// Asking for more rows than exist returns what there is
	rows, err = layer.Head(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
}
