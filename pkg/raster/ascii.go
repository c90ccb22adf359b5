package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gis-primer/pkg/geom"
)

// ReadASCII reads an ESRI ASCII grid (.asc) file. The format has no CRS of
// its own, so EPSG:4326 is assumed; pass the real code through SetCRS when
// a sidecar .prj says otherwise.
func ReadASCII(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	g, err := DecodeASCII(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// DecodeASCII parses ESRI ASCII grid content from a reader.
func DecodeASCII(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	header := map[string]float64{
		"nodata_value": -9999,
	}
	required := []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize"}

	var values []float64

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)

		// Header lines are "key value" pairs with a non-numeric key
		if len(fields) == 2 {
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				v, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return nil, fmt.Errorf("invalid header line %q", line)
				}
				header[strings.ToLower(fields[0])] = v
				continue
			}
		}

		for _, fv := range fields {
			v, err := strconv.ParseFloat(fv, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid cell value %q", fv)
			}
			values = append(values, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for _, k := range required {
		if _, ok := header[k]; !ok {
			return nil, fmt.Errorf("missing header field %s", k)
		}
	}

	ncols := int(header["ncols"])
	nrows := int(header["nrows"])

	return NewGrid(
		ncols, nrows,
		header["xllcorner"], header["yllcorner"],
		header["cellsize"], header["nodata_value"],
		geom.WGS84,
		values,
	)
}

// SetCRS overrides the CRS assumed by the reader.
func (g *Grid) SetCRS(crs string) {
	g.crs = crs
}

// WriteASCII writes the grid as an ESRI ASCII grid file.
func (g *Grid) WriteASCII(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "ncols %d\n", g.ncols)
	fmt.Fprintf(w, "nrows %d\n", g.nrows)
	fmt.Fprintf(w, "xllcorner %g\n", g.xll)
	fmt.Fprintf(w, "yllcorner %g\n", g.yll)
	fmt.Fprintf(w, "cellsize %g\n", g.cellSize)
	fmt.Fprintf(w, "NODATA_value %g\n", g.nodata)

	for row := 0; row < g.nrows; row++ {
		for col := 0; col < g.ncols; col++ {
			if col > 0 {
				if err := w.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%g", g.data.At(row, col)); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}

	return w.Flush()
}
