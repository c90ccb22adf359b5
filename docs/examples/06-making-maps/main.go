package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gis-primer/pkg/render"
	"gis-primer/pkg/vector"
)

const regionsJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [2000, 0], [2000, 2000], [0, 2000], [0, 0]]]}, "properties": {"region": "northwest", "population": 125000}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[2000, 0], [4000, 0], [4000, 2000], [2000, 2000], [2000, 0]]]}, "properties": {"region": "northeast", "population": 430000}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0, 2000], [2000, 2000], [2000, 4000], [0, 4000], [0, 2000]]]}, "properties": {"region": "southwest", "population": 87000}},
		{"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[2000, 2000], [4000, 2000], [4000, 4000], [2000, 4000], [2000, 2000]]]}, "properties": {"region": "southeast", "population": 960000}}
	]
}`

const sitesJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [500, 700]}, "properties": {"site": "A", "pm25": 4.1}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [2600, 1200]}, "properties": {"site": "B", "pm25": 12.8}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [3400, 3300]}, "properties": {"site": "C", "pm25": 31.5}},
		{"type": "Feature", "geometry": {"type": "Point", "coordinates": [900, 3600]}, "properties": {"site": "D", "pm25": 7.9}}
	]
}`

func main() {
	regions, err := vector.NewLayerFromGeoJSON("regions", []byte(regionsJSON), "EPSG:32610")
	if err != nil {
		log.Fatal(err)
	}
	defer regions.Release()

	// How the break method changes the story
	values, err := regions.NumericColumn("population")
	if err != nil {
		log.Fatal(err)
	}

	eq, err := render.Breaks(values, 3, render.EqualInterval)
	if err != nil {
		log.Fatal(err)
	}
	qu, err := render.Breaks(values, 3, render.Quantile)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Equal interval breaks: %v\n", eq)
	fmt.Printf("Quantile breaks:       %v\n", qu)

	outDir := os.TempDir()

	// Static choropleth PNG
	style := render.DefaultStyle("population")
	style.Title = "Population by region"
	style.Classes = 4
	style.Method = render.EqualInterval

	pngPath := filepath.Join(outDir, "population.png")
	if err := render.Choropleth(regions, style, pngPath); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Choropleth written to %s\n", pngPath)

	// Interactive HTML point map
	sites, err := vector.NewLayerFromGeoJSON("sites", []byte(sitesJSON), "EPSG:32610")
	if err != nil {
		log.Fatal(err)
	}
	defer sites.Release()

	htmlPath := filepath.Join(outDir, "sites.html")
	f, err := os.Create(htmlPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	siteStyle := render.DefaultStyle("pm25")
	siteStyle.Title = "PM2.5 readings"
	if err := render.PointMap(sites, siteStyle, f); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Point map written to %s (open in a browser)\n", htmlPath)
}
