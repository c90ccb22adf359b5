package geom

import "github.com/apache/arrow-go/v18/arrow"

type GeometryType string

const (
	POINT           GeometryType = "Point"
	MULTIPOINT      GeometryType = "MultiPoint"
	LINESTRING      GeometryType = "LineString"
	MULTILINESTRING GeometryType = "MultiLineString"
	POLYGON         GeometryType = "Polygon"
	MULTIPOLYGON    GeometryType = "MultiPolygon"
	MIXED           GeometryType = "GeometryCollection"
)

// WGS84 is assumed whenever a source file carries no CRS of its own.
const WGS84 = "EPSG:4326"

// GeometryColumn is the name of the GeoJSON-encoded geometry column carried
// in every record batch produced by this module.
const GeometryColumn = "geometry"

type Geometry interface {
	GetCRS() string
	GetRecords() []arrow.RecordBatch
	GetGeometryType() GeometryType
	Release()
	GetAttributes() map[string]any
}
