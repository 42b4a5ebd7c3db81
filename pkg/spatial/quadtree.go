package spatial

import "math"

// maxDepth bounds subdivision. Points closer than the cell size at this
// depth share a leaf.
const maxDepth = 32

// Cell is a square region of a Quadtree.
//
// Leaves hold point indices in Items: usually one, several when the points
// coincide. Internal cells hold four children ordered NW, NE, SW, SE
// (x then y, low before high).
//
// Weight, CX and CY are filled by [Quadtree.Accumulate]: Weight is the sum of
// point weights inside the cell and (CX, CY) their centre weighted by the
// absolute point weight.
type Cell struct {
	X0, Y0, X1, Y1 float64
	Children       [4]*Cell
	Items          []int

	Weight float64
	CX, CY float64
}

// IsLeaf reports whether the cell has no children.
func (c *Cell) IsLeaf() bool {
	return c.Children[0] == nil
}

// Size returns the side length of the cell.
func (c *Cell) Size() float64 { return c.X1 - c.X0 }

func (c *Cell) bounds() Rect {
	return Rect{MinX: c.X0, MinY: c.Y0, MaxX: c.X1, MaxY: c.Y1}
}

func (c *Cell) split() {
	mx, my := (c.X0+c.X1)/2, (c.Y0+c.Y1)/2
	c.Children = [4]*Cell{
		{X0: c.X0, Y0: c.Y0, X1: mx, Y1: my},
		{X0: mx, Y0: c.Y0, X1: c.X1, Y1: my},
		{X0: c.X0, Y0: my, X1: mx, Y1: c.Y1},
		{X0: mx, Y0: my, X1: c.X1, Y1: c.Y1},
	}
}

func (c *Cell) child(p Point) *Cell {
	mx, my := (c.X0+c.X1)/2, (c.Y0+c.Y1)/2
	i := 0
	if p.X >= mx {
		i |= 1
	}
	if p.Y >= my {
		i |= 2
	}
	return c.Children[i]
}

// Quadtree is an Index backed by a point-region quadtree over a square
// covering all finite points. Non-finite points are kept in the point list
// but never inserted, so they are invisible to queries.
type Quadtree struct {
	root   *Cell
	points []Point
}

// NewQuadtree returns an empty quadtree.
func NewQuadtree() *Quadtree { return &Quadtree{} }

// Build implements Index.
func (q *Quadtree) Build(points []Point) {
	q.points = append(q.points[:0], points...)
	q.root = nil

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range q.points {
		if !finite(p) {
			continue
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if math.IsInf(minX, 1) {
		return
	}

	size := math.Max(maxX-minX, maxY-minY)
	if size == 0 {
		size = 1
	}
	// Widen slightly so the maximum lands inside the half-open child ranges.
	size *= 1 + 1e-9
	q.root = &Cell{X0: minX, Y0: minY, X1: minX + size, Y1: minY + size}

	for i, p := range q.points {
		if finite(p) {
			q.insert(i)
		}
	}
}

func (q *Quadtree) insert(i int) {
	p := q.points[i]
	c := q.root
	for depth := 0; ; depth++ {
		if !c.IsLeaf() {
			c = c.child(p)
			continue
		}
		if len(c.Items) == 0 || depth >= maxDepth || q.points[c.Items[0]] == p {
			c.Items = append(c.Items, i)
			return
		}
		existing := c.Items
		c.Items = nil
		c.split()
		moved := c.child(q.points[existing[0]])
		moved.Items = existing
		c = c.child(p)
	}
}

// Search implements Index.
func (q *Quadtree) Search(r Rect, fn func(i int) bool) {
	if q.root != nil {
		q.search(q.root, r, fn)
	}
}

func (q *Quadtree) search(c *Cell, r Rect, fn func(i int) bool) bool {
	if !c.bounds().Intersects(r) {
		return true
	}
	if c.IsLeaf() {
		for _, i := range c.Items {
			if r.Contains(q.points[i]) && !fn(i) {
				return false
			}
		}
		return true
	}
	for _, ch := range c.Children {
		if !q.search(ch, r, fn) {
			return false
		}
	}
	return true
}

// Len implements Index.
func (q *Quadtree) Len() int { return len(q.points) }

// Root returns the root cell, or nil when no finite point is indexed.
func (q *Quadtree) Root() *Cell { return q.root }

// Point returns indexed point i.
func (q *Quadtree) Point(i int) Point { return q.points[i] }

// Visit walks the tree in pre-order. When fn returns true the children of
// that cell are skipped.
func (q *Quadtree) Visit(fn func(c *Cell) bool) {
	if q.root == nil {
		return
	}
	stack := []*Cell{q.root}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fn(c) || c.IsLeaf() {
			continue
		}
		for k := 3; k >= 0; k-- {
			stack = append(stack, c.Children[k])
		}
	}
}

// Accumulate computes cell weights and weighted centres bottom-up.
// weight(i) is the weight of point i.
func (q *Quadtree) Accumulate(weight func(i int) float64) {
	if q.root != nil {
		q.accumulate(q.root, weight)
	}
}

func (q *Quadtree) accumulate(c *Cell, weight func(i int) float64) {
	var sum, abs, x, y float64
	if c.IsLeaf() {
		for _, i := range c.Items {
			w := weight(i)
			p := q.points[i]
			sum += w
			abs += math.Abs(w)
			x += math.Abs(w) * p.X
			y += math.Abs(w) * p.Y
		}
		if abs == 0 && len(c.Items) > 0 {
			p := q.points[c.Items[0]]
			c.Weight, c.CX, c.CY = sum, p.X, p.Y
			return
		}
	} else {
		for _, ch := range c.Children {
			q.accumulate(ch, weight)
			a := math.Abs(ch.Weight)
			sum += ch.Weight
			abs += a
			x += a * ch.CX
			y += a * ch.CY
		}
	}
	c.Weight = sum
	if abs > 0 {
		c.CX, c.CY = x/abs, y/abs
	}
}

func finite(p Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

var _ Index = (*Quadtree)(nil)
