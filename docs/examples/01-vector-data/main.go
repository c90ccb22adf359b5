package main

import (
	"fmt"
	"log"

	"gis-primer/pkg/vector"
)

const citiesJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.4194, 37.7749]}, "properties": {"name": "San Francisco", "population": 873965}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.2712, 37.8044]}, "properties": {"name": "Oakland", "population": 433031}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-121.8863, 37.3382]}, "properties": {"name": "San Jose", "population": 1013240}}
	]
}`

func main() {
	// Build a layer from a GeoJSON FeatureCollection
	layer, err := vector.NewLayerFromGeoJSON("cities", []byte(citiesJSON), "EPSG:4326")
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Release()

	// Basic layer info
	fmt.Printf("Layer: %s\n", layer.Name())
	fmt.Printf("Features: %d\n", layer.FeatureCount())
	fmt.Printf("Geometry type: %s\n", layer.GetGeometryType())
	fmt.Printf("CRS: %s\n", layer.GetCRS())

	// Attribute schema inferred from the GeoJSON properties
	fmt.Println("Fields:")
	for _, f := range layer.Fields() {
		fmt.Printf("  %s: %s\n", f.Name, f.Type)
	}

	// Bounding box of every feature
	b, err := layer.Bounds()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Bounds: [%.4f, %.4f] to [%.4f, %.4f]\n", b.MinX, b.MinY, b.MaxX, b.MaxY)

	// Peek at the rows
	rows, err := layer.Head(3)
	if err != nil {
		log.Fatal(err)
	}
	for _, row := range rows {
		fmt.Printf("%s: %.0f people\n", row["name"], row["population"])
	}
}
