package geom

import "math"

// Bounds is an axis-aligned bounding box in the coordinates of whatever CRS
// the owning dataset carries. For EPSG:4326 that means lon/lat degrees.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// EmptyBounds returns a box that any Extend call will snap to.
func EmptyBounds() Bounds {
	return Bounds{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
}

func (b Bounds) IsEmpty() bool {
	return b.MinX > b.MaxX || b.MinY > b.MaxY
}

// Extend grows the box to include the point (x, y).
func (b Bounds) Extend(x, y float64) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, x),
		MinY: math.Min(b.MinY, y),
		MaxX: math.Max(b.MaxX, x),
		MaxY: math.Max(b.MaxY, y),
	}
}

// Union grows the box to include another box.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.Extend(o.MinX, o.MinY).Extend(o.MaxX, o.MaxY)
}

func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX && b.MinY <= o.MaxY && b.MaxY >= o.MinY
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center returns the midpoint of the box.
func (b Bounds) Center() (float64, float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}
