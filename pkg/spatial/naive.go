package spatial

// Naive is an Index that scans every point on each query.
type Naive struct {
	points []Point
}

// NewNaive returns an empty naive index.
func NewNaive() *Naive { return &Naive{} }

// Build implements Index.
func (n *Naive) Build(points []Point) {
	n.points = append(n.points[:0], points...)
}

// Search implements Index.
func (n *Naive) Search(r Rect, fn func(i int) bool) {
	for i, p := range n.points {
		if r.Contains(p) && !fn(i) {
			return
		}
	}
}

// Len implements Index.
func (n *Naive) Len() int { return len(n.points) }

var _ Index = (*Naive)(nil)
