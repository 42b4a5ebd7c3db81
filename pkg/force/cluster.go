package force

import (
	"math"
	"math/rand/v2"

	"github.com/marchallab/netview/pkg/spatial"
)

// =============================================================================
// Cluster
// =============================================================================

// Cluster pulls every particle towards the centroid of its group, with
// group centroids weighted by squared radius.
type Cluster struct {
	Groups   []int     // group of each particle
	Radii    []float64 // radius of each particle
	Strength float64

	particles []*Particle
	cx, cy    []float64
	weight    []float64
}

// DefaultClusterStrength is the pull applied per unit alpha.
const DefaultClusterStrength = 0.07

// NewCluster returns a cluster force for the given groups and radii.
func NewCluster(groups []int, radii []float64) *Cluster {
	return &Cluster{Groups: groups, Radii: radii, Strength: DefaultClusterStrength}
}

// Initialize implements Force.
func (f *Cluster) Initialize(particles []*Particle, _ *rand.Rand) {
	f.particles = particles
	n := 0
	for _, g := range f.Groups {
		n = max(n, g+1)
	}
	f.cx = make([]float64, n)
	f.cy = make([]float64, n)
	f.weight = make([]float64, n)
}

// Apply implements Force.
func (f *Cluster) Apply(alpha float64) {
	clear(f.cx)
	clear(f.cy)
	clear(f.weight)
	for i, p := range f.particles {
		g, k := f.Groups[i], f.Radii[i]*f.Radii[i]
		f.cx[g] += p.X * k
		f.cy[g] += p.Y * k
		f.weight[g] += k
	}
	for g := range f.weight {
		if f.weight[g] > 0 {
			f.cx[g] /= f.weight[g]
			f.cy[g] /= f.weight[g]
		}
	}

	l := alpha * f.Strength
	for i, p := range f.particles {
		g := f.Groups[i]
		if f.weight[g] == 0 {
			continue
		}
		p.VX -= (p.X - f.cx[g]) * l
		p.VY -= (p.Y - f.cy[g]) * l
	}
}

// Centroid returns the last computed centroid of group g.
func (f *Cluster) Centroid(g int) (x, y float64) {
	return f.cx[g], f.cy[g]
}

// =============================================================================
// Collide
// =============================================================================

// Collide keeps particles apart. Two particles must be at least
// r_i + r_j + padding apart, where the padding is SamePadding inside a group
// and OtherPadding across groups. Overlapping pairs are moved apart directly
// by Rigidity of the overlap; the force ignores alpha.
type Collide struct {
	Groups       []int
	Radii        []float64
	SamePadding  float64
	OtherPadding float64
	Rigidity     float64

	// Index answers the neighbourhood queries; nil uses a quadtree.
	Index spatial.Index

	particles []*Particle
	rng       *rand.Rand
	points    []spatial.Point
	reach     float64
}

// DefaultRigidity is the share of an overlap corrected per pair visit.
const DefaultRigidity = 0.5

// NewCollide returns a collision force whose paddings derive from the base
// radius: one radius within a group and four across groups.
func NewCollide(groups []int, radii []float64, baseRadius float64) *Collide {
	return &Collide{
		Groups:       groups,
		Radii:        radii,
		SamePadding:  baseRadius,
		OtherPadding: 4 * baseRadius,
		Rigidity:     DefaultRigidity,
	}
}

// Initialize implements Force.
func (f *Collide) Initialize(particles []*Particle, rng *rand.Rand) {
	f.particles = particles
	f.rng = rng
	f.points = make([]spatial.Point, len(particles))
	if f.Index == nil {
		f.Index = spatial.NewQuadtree()
	}
	maxR := 0.0
	for _, r := range f.Radii {
		maxR = math.Max(maxR, r)
	}
	f.reach = maxR + math.Max(f.SamePadding, f.OtherPadding)
}

// Apply implements Force.
func (f *Collide) Apply(float64) {
	for i, p := range f.particles {
		f.points[i] = spatial.Point{X: p.X, Y: p.Y}
	}
	f.Index.Build(f.points)

	for i, d := range f.particles {
		window := spatial.Around(d.X, d.Y, f.Radii[i]+f.reach)
		f.Index.Search(window, func(j int) bool {
			if j == i {
				return true
			}
			q := f.particles[j]
			pad := f.OtherPadding
			if f.Groups[i] == f.Groups[j] {
				pad = f.SamePadding
			}
			r := f.Radii[i] + f.Radii[j] + pad

			x, y := d.X-q.X, d.Y-q.Y
			if x == 0 && y == 0 {
				x, y = jiggle(f.rng), jiggle(f.rng)
			}
			l := math.Hypot(x, y)
			if l < r {
				l = (l - r) / l * f.Rigidity
				x *= l
				y *= l
				d.X -= x
				d.Y -= y
				q.X += x
				q.Y += y
			}
			return true
		})
	}
}

var (
	_ Force = (*Cluster)(nil)
	_ Force = (*Collide)(nil)
)
