package main

import (
	"context"
	"fmt"
	"log"

	"gis-primer/pkg/geom"
	"gis-primer/pkg/index"
	"gis-primer/pkg/spatial"
	"gis-primer/pkg/vector"
)

const citiesJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.4194, 37.7749]}, "properties": {"name": "San Francisco", "population": 873965}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.2712, 37.8044]}, "properties": {"name": "Oakland", "population": 433031}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-121.8863, 37.3382]}, "properties": {"name": "San Jose", "population": 1013240}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.0840, 37.3861]}, "properties": {"name": "Mountain View", "population": 82376}}
	]
}`

const regionsJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[-122.55, 37.6], [-122.1, 37.6], [-122.1, 37.9], [-122.55, 37.9], [-122.55, 37.6]]]}, "properties": {"region": "Bay"}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[-122.2, 37.2], [-121.7, 37.2], [-121.7, 37.5], [-122.2, 37.5], [-122.2, 37.2]]]}, "properties": {"region": "South Bay"}}
	]
}`

func main() {
	ctx := context.Background()

	cities, err := vector.NewLayerFromGeoJSON("cities", []byte(citiesJSON), "EPSG:4326")
	if err != nil {
		log.Fatal(err)
	}
	defer cities.Release()

	regions, err := vector.NewLayerFromGeoJSON("regions", []byte(regionsJSON), "EPSG:4326")
	if err != nil {
		log.Fatal(err)
	}
	defer regions.Release()

	// Attribute query: a SQL WHERE clause over the columns
	big, err := cities.Filter(ctx, "population > 500000")
	if err != nil {
		log.Fatal(err)
	}
	defer big.Release()

	fmt.Printf("Cities over 500k: %d\n", big.FeatureCount())

	// Spatial join: tag each city with the region containing it
	tagged, err := spatial.WithinJoin(ctx, cities, regions)
	if err != nil {
		log.Fatal(err)
	}
	defer tagged.Release()

	rows, err := tagged.Head(10)
	if err != nil {
		log.Fatal(err)
	}
	for _, row := range rows {
		fmt.Printf("  %s is in %s\n", row["name"], row["region"])
	}

	// Aggregate: how many cities per region
	counts, err := spatial.CountWithin(ctx, cities, regions)
	if err != nil {
		log.Fatal(err)
	}
	defer counts.Release()

	rows, err = counts.Head(10)
	if err != nil {
		log.Fatal(err)
	}
	for _, row := range rows {
		fmt.Printf("  %s contains %v cities\n", row["region"], row["point_count"])
	}

	// Bounding-box index: fast candidate lookup without the SQL engine
	idx, err := index.Build(cities)
	if err != nil {
		log.Fatal(err)
	}

	hits, err := idx.Search(geom.Bounds{MinX: -122.5, MinY: 37.7, MaxX: -122.2, MaxY: 37.9})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Features with boxes in the viewport: %v\n", hits)
}
