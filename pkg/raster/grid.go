package raster

import (
	"fmt"

	"gis-primer/pkg/geom"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Grid is a raster dataset: continuous data as a regular grid of valued
// cells. Cells are stored row-major with row 0 at the top (north), the
// ESRI ASCII convention. The origin is the lower-left corner of the grid
// in CRS coordinates.
type Grid struct {
	ncols    int
	nrows    int
	xll      float64
	yll      float64
	cellSize float64
	nodata   float64
	crs      string
	data     *mat.Dense
}

// NewGrid builds a grid over existing cell values. values is row-major,
// nrows*ncols long, top row first.
func NewGrid(ncols, nrows int, xll, yll, cellSize, nodata float64, crs string, values []float64) (*Grid, error) {
	if ncols <= 0 || nrows <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", ncols, nrows)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("invalid cell size %v", cellSize)
	}
	if len(values) != ncols*nrows {
		return nil, fmt.Errorf("expected %d values, got %d", ncols*nrows, len(values))
	}

	return &Grid{
		ncols:    ncols,
		nrows:    nrows,
		xll:      xll,
		yll:      yll,
		cellSize: cellSize,
		nodata:   nodata,
		crs:      crs,
		data:     mat.NewDense(nrows, ncols, values),
	}, nil
}

func (g *Grid) Cols() int         { return g.ncols }
func (g *Grid) Rows() int         { return g.nrows }
func (g *Grid) CellSize() float64 { return g.cellSize }
func (g *Grid) NoData() float64   { return g.nodata }
func (g *Grid) GetCRS() string    { return g.crs }

// At returns the cell value at (col, row), row 0 at the top.
func (g *Grid) At(col, row int) (float64, error) {
	if col < 0 || col >= g.ncols || row < 0 || row >= g.nrows {
		return 0, fmt.Errorf("cell (%d, %d) out of range %dx%d", col, row, g.ncols, g.nrows)
	}
	return g.data.At(row, col), nil
}

// Bounds returns the grid extent in CRS coordinates.
func (g *Grid) Bounds() geom.Bounds {
	return geom.Bounds{
		MinX: g.xll,
		MinY: g.yll,
		MaxX: g.xll + float64(g.ncols)*g.cellSize,
		MaxY: g.yll + float64(g.nrows)*g.cellSize,
	}
}

// CellAt maps world coordinates to the containing cell.
func (g *Grid) CellAt(x, y float64) (col, row int, err error) {
	b := g.Bounds()
	if !b.Contains(x, y) {
		return 0, 0, fmt.Errorf("(%v, %v) outside grid extent", x, y)
	}

	col = int((x - g.xll) / g.cellSize)
	row = g.nrows - 1 - int((y-g.yll)/g.cellSize)

	// Points on the top or right edge land in the last cell
	if col == g.ncols {
		col--
	}
	if row < 0 {
		row = 0
	}
	return col, row, nil
}

// ValueAt samples the grid at world coordinates.
func (g *Grid) ValueAt(x, y float64) (float64, error) {
	col, row, err := g.CellAt(x, y)
	if err != nil {
		return 0, err
	}
	return g.data.At(row, col), nil
}

// Stats summarizes the valued cells of a grid.
type Stats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Cells  int
	NoData int
}

// Stats computes summary statistics over the grid, skipping nodata cells.
func (g *Grid) Stats() (Stats, error) {
	valid := make([]float64, 0, g.ncols*g.nrows)
	skipped := 0

	for row := 0; row < g.nrows; row++ {
		for col := 0; col < g.ncols; col++ {
			v := g.data.At(row, col)
			if v == g.nodata {
				skipped++
				continue
			}
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		return Stats{}, fmt.Errorf("grid has no valued cells")
	}

	return Stats{
		Min:    floats.Min(valid),
		Max:    floats.Max(valid),
		Mean:   stat.Mean(valid, nil),
		StdDev: stat.StdDev(valid, nil),
		Cells:  len(valid),
		NoData: skipped,
	}, nil
}

// Values returns a copy of the cell values, row-major, top row first.
func (g *Grid) Values() []float64 {
	out := make([]float64, 0, g.ncols*g.nrows)
	for row := 0; row < g.nrows; row++ {
		out = append(out, g.data.RawRowView(row)...)
	}
	return out
}
