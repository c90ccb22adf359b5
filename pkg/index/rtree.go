// Package index provides a bounding-box index over layer features for
// viewport queries. The tree itself comes from dhconnelly/rtreego; this
// package only maps features onto it.
package index

import (
	"fmt"
	"sort"

	"gis-primer/pkg/geom"
	"gis-primer/pkg/vector"

	"github.com/dhconnelly/rtreego"
)

// rtreego rejects zero-length extents, so point features are padded to a
// vanishingly small box.
const minExtent = 1e-9

// FeatureIndex is an R-tree over the bounding boxes of a layer's features.
// Query results are feature ordinals (row positions across the layer's
// batches).
type FeatureIndex struct {
	tree *rtreego.Rtree
	crs  string
	size int
}

type entry struct {
	ordinal int
	rect    rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect {
	return e.rect
}

// Build indexes every feature of a layer.
func Build(layer *vector.Layer) (*FeatureIndex, error) {
	bounds, err := layer.FeatureBounds()
	if err != nil {
		return nil, fmt.Errorf("failed to read feature bounds: %w", err)
	}

	tree := rtreego.NewTree(2, 25, 50)
	indexed := 0

	for i, b := range bounds {
		if b.IsEmpty() {
			continue
		}

		rect, err := toRect(b)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		tree.Insert(&entry{ordinal: i, rect: rect})
		indexed++
	}

	if indexed == 0 {
		return nil, fmt.Errorf("layer has no indexable features")
	}

	return &FeatureIndex{
		tree: tree,
		crs:  layer.GetCRS(),
		size: indexed,
	}, nil
}

// Size returns the number of indexed features.
func (fi *FeatureIndex) Size() int {
	return fi.size
}

// CRS returns the CRS the indexed boxes are expressed in. Query boxes must
// use the same one.
func (fi *FeatureIndex) CRS() string {
	return fi.crs
}

// Search returns the ordinals of all features whose bounding box intersects
// the query box, in ascending order.
func (fi *FeatureIndex) Search(b geom.Bounds) ([]int, error) {
	rect, err := toRect(b)
	if err != nil {
		return nil, err
	}

	hits := fi.tree.SearchIntersect(rect)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*entry).ordinal)
	}
	sort.Ints(out)
	return out, nil
}

func toRect(b geom.Bounds) (rtreego.Rect, error) {
	if b.IsEmpty() {
		return rtreego.Rect{}, fmt.Errorf("empty bounds")
	}

	w := b.Width()
	if w < minExtent {
		w = minExtent
	}
	h := b.Height()
	if h < minExtent {
		h = minExtent
	}

	return rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
}
