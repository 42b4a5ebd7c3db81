package force

import (
	"math"
	"math/rand/v2"

	"github.com/marchallab/netview/pkg/spatial"
)

// ManyBody applies a charge between every pair of particles. Negative
// strength repels. Distant groups of particles are approximated by their
// centre of charge when cell size / distance < Theta.
type ManyBody struct {
	Strength    float64
	Theta       float64 // Barnes-Hut accuracy; 0 computes every pair exactly
	DistanceMin float64
	DistanceMax float64 // 0 means unbounded

	particles []*Particle
	rng       *rand.Rand
	tree      *spatial.Quadtree
	points    []spatial.Point
}

// NewManyBody returns a charge force with Theta 0.9 and DistanceMin 1.
func NewManyBody(strength float64) *ManyBody {
	return &ManyBody{Strength: strength, Theta: 0.9, DistanceMin: 1}
}

// Initialize implements Force.
func (f *ManyBody) Initialize(particles []*Particle, rng *rand.Rand) {
	f.particles = particles
	f.rng = rng
	f.tree = spatial.NewQuadtree()
	f.points = make([]spatial.Point, len(particles))
}

// Apply implements Force.
func (f *ManyBody) Apply(alpha float64) {
	for i, p := range f.particles {
		f.points[i] = spatial.Point{X: p.X, Y: p.Y}
	}
	f.tree.Build(f.points)
	f.tree.Accumulate(func(int) float64 { return f.Strength })

	theta2 := f.Theta * f.Theta
	dmin2 := f.DistanceMin * f.DistanceMin
	dmax2 := math.Inf(1)
	if f.DistanceMax > 0 {
		dmax2 = f.DistanceMax * f.DistanceMax
	}

	for i, p := range f.particles {
		f.tree.Visit(func(c *spatial.Cell) bool {
			if c.Weight == 0 {
				return true
			}
			x, y := c.CX-p.X, c.CY-p.Y
			w := c.Size()
			l := x*x + y*y

			// Far enough away: treat the cell as a single body.
			if theta2 > 0 && w*w/theta2 < l {
				if l < dmax2 {
					if x == 0 {
						x = jiggle(f.rng)
						l += x * x
					}
					if y == 0 {
						y = jiggle(f.rng)
						l += y * y
					}
					if l < dmin2 {
						l = math.Sqrt(dmin2 * l)
					}
					p.VX += x * c.Weight * alpha / l
					p.VY += y * c.Weight * alpha / l
				}
				return true
			}

			if !c.IsLeaf() || l >= dmax2 {
				return false
			}

			if len(c.Items) > 1 || c.Items[0] != i {
				if x == 0 {
					x = jiggle(f.rng)
					l += x * x
				}
				if y == 0 {
					y = jiggle(f.rng)
					l += y * y
				}
				if l < dmin2 {
					l = math.Sqrt(dmin2 * l)
				}
			}
			for _, j := range c.Items {
				if j == i {
					continue
				}
				k := f.Strength * alpha / l
				p.VX += x * k
				p.VY += y * k
			}
			return false
		})
	}
}

var _ Force = (*ManyBody)(nil)
