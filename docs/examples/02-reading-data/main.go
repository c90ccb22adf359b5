package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gis-primer/pkg/catalog"
	"gis-primer/pkg/vector"
)

func main() {
	ctx := context.Background()

	// Point this at any shapefile, zipped shapefile, or GeoJSON file
	source := "pkg/vector/testdata/regions.geojson"
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	layer, err := vector.ReadFile(ctx, source)
	if err != nil {
		log.Fatal(err)
	}
	defer layer.Release()

	fmt.Printf("Loaded %s: %d features of type %s in %s\n",
		layer.Name(), layer.FeatureCount(), layer.GetGeometryType(), layer.GetCRS())

	workDir, err := os.MkdirTemp("", "gis_primer_ch02_*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(workDir)

	// Snapshot to parquet so the next load skips the GDAL drivers
	snapshot := filepath.Join(workDir, layer.Name()+".parquet")
	if err := layer.WriteParquet(snapshot); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Snapshot written to %s\n", snapshot)

	// Register the snapshot in a workspace catalog
	cat, err := catalog.Open(filepath.Join(workDir, "catalog.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer cat.Close()

	if err := cat.RegisterLayer(ctx, layer, snapshot, "parquet"); err != nil {
		log.Fatal(err)
	}

	// The catalog remembers enough to load the snapshot back later
	ds, err := cat.Get(ctx, layer.Name())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Cataloged: %s (%s, %d features)\n", ds.Name, ds.CRS, ds.FeatureCount)

	reloaded, err := vector.ReadParquet(ctx, ds.Path, ds.Name, ds.CRS)
	if err != nil {
		log.Fatal(err)
	}
	defer reloaded.Release()

	fmt.Printf("Reloaded from parquet: %d features\n", reloaded.FeatureCount())
}
