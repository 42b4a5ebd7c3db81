package force

import (
	"math"
	"math/rand/v2"
)

// =============================================================================
// Center
// =============================================================================

// Center translates all particles so that their mean position moves onto
// (X, Y). It acts on positions, not velocities, and does not change the
// layout's shape.
type Center struct {
	X, Y     float64
	Strength float64

	particles []*Particle
}

// NewCenter returns a centering force with full strength.
func NewCenter(x, y float64) *Center {
	return &Center{X: x, Y: y, Strength: 1}
}

// Initialize implements Force.
func (f *Center) Initialize(particles []*Particle, _ *rand.Rand) {
	f.particles = particles
}

// Apply implements Force.
func (f *Center) Apply(float64) {
	n := len(f.particles)
	if n == 0 {
		return
	}
	var sx, sy float64
	for _, p := range f.particles {
		sx += p.X
		sy += p.Y
	}
	sx = (sx/float64(n) - f.X) * f.Strength
	sy = (sy/float64(n) - f.Y) * f.Strength
	for _, p := range f.particles {
		p.X -= sx
		p.Y -= sy
	}
}

// =============================================================================
// Positioning
// =============================================================================

// PositionX pulls every particle's x towards Target.
type PositionX struct {
	Target   float64
	Strength float64

	particles []*Particle
}

// NewPositionX returns an x-positioning force.
func NewPositionX(target, strength float64) *PositionX {
	return &PositionX{Target: target, Strength: strength}
}

// Initialize implements Force.
func (f *PositionX) Initialize(particles []*Particle, _ *rand.Rand) {
	f.particles = particles
}

// Apply implements Force.
func (f *PositionX) Apply(alpha float64) {
	k := f.Strength * alpha
	for _, p := range f.particles {
		p.VX += (f.Target - p.X) * k
	}
}

// PositionY pulls every particle's y towards Target.
type PositionY struct {
	Target   float64
	Strength float64

	particles []*Particle
}

// NewPositionY returns a y-positioning force.
func NewPositionY(target, strength float64) *PositionY {
	return &PositionY{Target: target, Strength: strength}
}

// Initialize implements Force.
func (f *PositionY) Initialize(particles []*Particle, _ *rand.Rand) {
	f.particles = particles
}

// Apply implements Force.
func (f *PositionY) Apply(alpha float64) {
	k := f.Strength * alpha
	for _, p := range f.particles {
		p.VY += (f.Target - p.Y) * k
	}
}

// =============================================================================
// Link
// =============================================================================

// Spring is one link between particles Source and Target.
type Spring struct {
	Source, Target int
	Distance       float64
	Strength       float64
}

// Link pulls linked particles towards their rest distance. The correction is
// split between the endpoints in proportion to their degree, so that
// high-degree particles move less.
type Link struct {
	Springs    []Spring
	Iterations int

	particles []*Particle
	rng       *rand.Rand
	bias      []float64
}

// NewLink returns a link force over springs.
func NewLink(springs []Spring) *Link {
	return &Link{Springs: springs, Iterations: 1}
}

// Initialize implements Force.
func (f *Link) Initialize(particles []*Particle, rng *rand.Rand) {
	f.particles = particles
	f.rng = rng

	count := make([]int, len(particles))
	for _, s := range f.Springs {
		count[s.Source]++
		count[s.Target]++
	}
	f.bias = make([]float64, len(f.Springs))
	for i, s := range f.Springs {
		f.bias[i] = float64(count[s.Source]) / float64(count[s.Source]+count[s.Target])
	}
}

// Apply implements Force.
func (f *Link) Apply(alpha float64) {
	iters := max(f.Iterations, 1)
	for range iters {
		for i, s := range f.Springs {
			src, tgt := f.particles[s.Source], f.particles[s.Target]
			x := tgt.X + tgt.VX - src.X - src.VX
			if x == 0 {
				x = jiggle(f.rng)
			}
			y := tgt.Y + tgt.VY - src.Y - src.VY
			if y == 0 {
				y = jiggle(f.rng)
			}
			l := math.Sqrt(x*x + y*y)
			l = (l - s.Distance) / l * alpha * s.Strength
			x *= l
			y *= l

			b := f.bias[i]
			tgt.VX -= x * b
			tgt.VY -= y * b
			src.VX += x * (1 - b)
			src.VY += y * (1 - b)
		}
	}
}

var (
	_ Force = (*Center)(nil)
	_ Force = (*PositionX)(nil)
	_ Force = (*PositionY)(nil)
	_ Force = (*Link)(nil)
)
