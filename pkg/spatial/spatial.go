// Package spatial provides point indices for neighbourhood queries in the
// layout engine.
//
// Two implementations of [Index] are available:
//
//   - [Quadtree]: recursive square partitioning with pruned range search and
//     per-cell mass aggregates for Barnes-Hut approximation
//   - [Naive]: a flat scan, used as a reference in tests
//
// Indices store point indices, not the points' owners. Callers keep their
// own position slices and resolve indices back to them.
package spatial

// Point is a position in the plane.
type Point struct{ X, Y float64 }

// Rect is an axis-aligned rectangle with inclusive bounds.
type Rect struct{ MinX, MinY, MaxX, MaxY float64 }

// Around returns the square of half-size r centred on (x, y).
func Around(x, y, r float64) Rect {
	return Rect{MinX: x - r, MinY: y - r, MaxX: x + r, MaxY: y + r}
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && r.MaxX >= o.MinX && r.MinY <= o.MaxY && r.MaxY >= o.MinY
}

// Index answers rectangular range queries over a set of points.
type Index interface {
	// Build replaces the indexed points. Point i is reported as index i.
	Build(points []Point)

	// Search calls fn for every indexed point inside r until fn returns false.
	// The order of calls is unspecified.
	Search(r Rect, fn func(i int) bool)

	// Len returns the number of indexed points.
	Len() int
}
