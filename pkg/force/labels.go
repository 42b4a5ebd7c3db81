package force

import (
	"math"
	"math/rand/v2"
)

// Label simulation parameters.
const (
	LabelCharge        = -50
	LabelLinkStrength  = 2
	LabelAlphaTarget   = 0.3
	LabelVerticalShift = 16
)

// Labels runs an independent simulation that places text next to nodes.
// Every node owns two particles: an anchor at index 2i pinned to the node
// and a free particle at 2i+1 tied to it by a zero-length spring. Repulsion
// pushes free particles away from crowded regions, and their direction from
// the anchor decides which side of the node the text goes.
type Labels struct {
	sim *Simulation
}

// NewLabels creates a label simulation for n nodes.
func NewLabels(n int, rng *rand.Rand) *Labels {
	particles := make([]*Particle, 2*n)
	springs := make([]Spring, n)
	for i := range particles {
		particles[i] = &Particle{X: math.NaN(), Y: math.NaN()}
	}
	for i := range n {
		springs[i] = Spring{Source: 2 * i, Target: 2*i + 1, Strength: LabelLinkStrength}
	}

	var opts []Option
	if rng != nil {
		opts = append(opts, WithRand(rng))
	}
	sim := New(particles, opts...)
	sim.AddForce("charge", NewManyBody(LabelCharge))
	sim.AddForce("link", NewLink(springs))
	return &Labels{sim: sim}
}

// Simulation returns the underlying label simulation.
func (l *Labels) Simulation() *Simulation { return l.sim }

// Follow pins every anchor onto its node, reheats the label simulation and
// advances it one tick. It is called once per tick of the main simulation.
func (l *Labels) Follow(nodes []*Particle) {
	ps := l.sim.Particles()
	for i, n := range nodes {
		if 2*i >= len(ps) {
			break
		}
		ps[2*i].X, ps[2*i].Y = n.X, n.Y
		ps[2*i].Pin(n.X, n.Y)
	}
	l.sim.SetAlphaTarget(LabelAlphaTarget)
	l.sim.Restart()
	l.sim.Tick()
}

// Position returns the free label particle of node i.
func (l *Labels) Position(i int) (x, y float64) {
	p := l.sim.Particles()[2*i+1]
	return Finite(p.X), Finite(p.Y)
}

// Offset returns the translation applied to a label of width textWidth so the
// text sits on the side of node i facing its free particle: flush right of the
// node when the particle is to the right, flush left when it is to the left.
// Degenerate geometry yields 0.
func (l *Labels) Offset(i int, textWidth float64) (dx, dy float64) {
	ps := l.sim.Particles()
	anchor, free := ps[2*i], ps[2*i+1]
	diffX := free.X - anchor.X
	diffY := free.Y - anchor.Y
	dist := math.Sqrt(diffX*diffX + diffY*diffY)

	shift := textWidth * (diffX - dist) / (dist * 2)
	shift = math.Max(-textWidth, math.Min(0, shift))
	return Finite(shift), LabelVerticalShift
}
