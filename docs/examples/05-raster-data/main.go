package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gis-primer/pkg/raster"
	"gis-primer/pkg/render"
)

func main() {
	source := "pkg/raster/testdata/elevation.asc"
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	dem, err := raster.ReadASCII(source)
	if err != nil {
		log.Fatal(err)
	}
	dem.SetCRS("EPSG:32610")

	fmt.Printf("Grid: %d cols x %d rows, cell size %.1f\n", dem.Cols(), dem.Rows(), dem.CellSize())

	b := dem.Bounds()
	fmt.Printf("Footprint: [%.1f, %.1f] to [%.1f, %.1f]\n", b.MinX, b.MinY, b.MaxX, b.MaxY)

	// Sample a cell by map coordinates
	cx, cy := b.Center()
	v, err := dem.ValueAt(cx, cy)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Value at center (%.1f, %.1f): %.1f\n", cx, cy, v)

	// Summary statistics skip nodata cells
	s, err := dem.Stats()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("min %.1f  max %.1f  mean %.2f  stddev %.2f  (%d cells, %d nodata)\n",
		s.Min, s.Max, s.Mean, s.StdDev, s.Cells, s.NoData)

	// Paint the grid to a PNG
	out := filepath.Join(os.TempDir(), "elevation.png")
	if err := render.HeatMap(dem, "Elevation", out); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Heat map written to %s\n", out)
}
