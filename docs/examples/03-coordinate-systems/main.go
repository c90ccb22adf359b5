package main

import (
	"context"
	"fmt"
	"log"

	"gis-primer/pkg/crs"
	"gis-primer/pkg/vector"
)

const sfJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.4194, 37.7749]}, "properties": {"name": "San Francisco"}}
	]
}`

func main() {
	ctx := context.Background()

	// What the registry knows about the systems this course uses
	for _, code := range []string{"EPSG:4326", "EPSG:3857", "EPSG:32610"} {
		info, err := crs.Lookup(code)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: %s (%s, geographic=%v)\n", info.Code, info.Name, info.Unit, info.Geographic)
	}

	layer, err := vector.NewLayerFromGeoJSON("sf", []byte(sfJSON), "EPSG:4326")
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Release()

	printGeometry := func(l *vector.Layer) {
		geoms, err := l.GeometryStrings()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("  %s: %s\n", l.GetCRS(), geoms[0])
	}

	fmt.Println("San Francisco:")
	printGeometry(layer)

	// Web Mercator for display
	mercator, err := crs.Transform(ctx, layer, "EPSG:3857")
	if err != nil {
		log.Fatal(err)
	}
	defer mercator.Release()
	printGeometry(mercator)

	// UTM zone 10N for measurement
	utm, err := crs.Transform(ctx, layer, "EPSG:32610")
	if err != nil {
		log.Fatal(err)
	}
	defer utm.Release()
	printGeometry(utm)

	// Round trip back to WGS84
	back, err := crs.Transform(ctx, utm, "EPSG:4326")
	if err != nil {
		log.Fatal(err)
	}
	defer back.Release()
	fmt.Println("Round trip:")
	printGeometry(back)
}
