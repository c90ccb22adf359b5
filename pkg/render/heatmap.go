package render

import (
	"fmt"
	"math"

	"gis-primer/pkg/raster"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// gridXYZ adapts a raster.Grid to the plotter.GridXYZ interface. Plot rows
// run south to north, grid rows north to south, so the row axis flips.
// NoData cells become NaN, which the heat map leaves blank.
type gridXYZ struct {
	g *raster.Grid
}

func (g gridXYZ) Dims() (int, int) {
	return g.g.Cols(), g.g.Rows()
}

func (g gridXYZ) Z(c, r int) float64 {
	v, err := g.g.At(c, g.g.Rows()-1-r)
	if err != nil || v == g.g.NoData() {
		return math.NaN()
	}
	return v
}

func (g gridXYZ) X(c int) float64 {
	b := g.g.Bounds()
	return b.MinX + (float64(c)+0.5)*g.g.CellSize()
}

func (g gridXYZ) Y(r int) float64 {
	b := g.g.Bounds()
	return b.MinY + (float64(r)+0.5)*g.g.CellSize()
}

// HeatMap renders a raster grid as a colored cell map into a static image
// file.
func HeatMap(g *raster.Grid, title, path string) error {
	if g == nil {
		return fmt.Errorf("no grid to render")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	hm := plotter.NewHeatMap(gridXYZ{g: g}, palette.Heat(12, 1))
	p.Add(hm)

	return p.Save(7*vg.Inch, 7*vg.Inch, path)
}
