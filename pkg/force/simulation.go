// Package force implements a velocity Verlet force simulation for laying out
// networks, together with the forces the viewer composes:
//
//   - [ManyBody]: pairwise charge with Barnes-Hut approximation
//   - [Center]: translates the centroid onto a point
//   - [PositionX], [PositionY]: springs towards a coordinate
//   - [Link]: springs along links, biased by endpoint degree
//   - [Cluster]: pulls each node towards its group's centroid
//   - [Collide]: group-aware minimum separation on a spatial index
//
// [Labels] runs a second, weaker simulation that places node labels, and
// [Drag] pins particles under the pointer.
//
// A [Simulation] cools from alpha 1 towards alphaTarget; once alpha drops
// below alphaMin it is settled and [Simulation.Step] stops moving particles.
// Raising alphaTarget and calling [Simulation.Restart] reheats it, which is
// how dragging keeps the layout live.
//
// Simulations are not safe for concurrent use.
package force

import (
	"math"
	"math/rand/v2"
)

// Simulation defaults.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
)

// DefaultAlphaDecay cools alpha from 1 to alphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Phyllotaxis placement for particles that arrive without a finite position.
const initialRadius = 10

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// State is the lifecycle state of a Simulation.
type State int

const (
	// Idle simulations have not ticked yet.
	Idle State = iota
	// Running simulations move particles on every Step.
	Running
	// Settled simulations have cooled below alphaMin.
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Settled:
		return "settled"
	}
	return "unknown"
}

// Particle is a simulated body. A pinned particle is held at (FX, FY).
type Particle struct {
	X, Y   float64
	VX, VY float64
	FX, FY float64
	Pinned bool
}

// Pin fixes the particle at (x, y).
func (p *Particle) Pin(x, y float64) {
	p.FX, p.FY, p.Pinned = x, y, true
}

// Unpin releases the particle.
func (p *Particle) Unpin() {
	p.FX, p.FY, p.Pinned = 0, 0, false
}

// Force acts on particle velocities (or, for positional forces, positions).
type Force interface {
	// Initialize binds the force to the simulation's particles. It is called
	// when the force is added and whenever the particle set changes.
	Initialize(particles []*Particle, rng *rand.Rand)

	// Apply runs one step of the force at the given alpha.
	Apply(alpha float64)
}

type namedForce struct {
	name  string
	force Force
}

// Simulation advances particles under a list of forces.
type Simulation struct {
	particles []*Particle
	forces    []namedForce
	rng       *rand.Rand

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	state State
	ticks int
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithRand sets the random source used for jiggling coincident particles.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) { s.rng = rng }
}

// WithAlphaDecay overrides the per-tick cooling rate.
func WithAlphaDecay(d float64) Option {
	return func(s *Simulation) { s.alphaDecay = d }
}

// WithVelocityDecay overrides velocity friction.
func WithVelocityDecay(d float64) Option {
	return func(s *Simulation) { s.velocityDecay = d }
}

// New creates a simulation over particles. Particles without finite
// positions are placed on a phyllotaxis spiral around the origin.
func New(particles []*Particle, opts ...Option) *Simulation {
	s := &Simulation{
		particles:     particles,
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: DefaultVelocityDecay,
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(0, 0))
	}
	for i, p := range particles {
		if !isFinite(p.X) || !isFinite(p.Y) {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			p.X, p.Y = r*math.Cos(a), r*math.Sin(a)
		}
		if !isFinite(p.VX) || !isFinite(p.VY) {
			p.VX, p.VY = 0, 0
		}
	}
	return s
}

// AddForce registers and initializes a force. Forces apply in the order they
// were added. Adding a force under an existing name replaces it in place.
func (s *Simulation) AddForce(name string, f Force) *Simulation {
	f.Initialize(s.particles, s.rng)
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return s
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
	return s
}

// Force returns the force registered under name.
func (s *Simulation) Force(name string) (Force, bool) {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force, true
		}
	}
	return nil, false
}

// Particles returns the simulated particles.
func (s *Simulation) Particles() []*Particle { return s.particles }

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the current temperature.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// AlphaTarget returns the temperature alpha decays towards.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget sets the temperature alpha decays towards.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// AlphaMin returns the temperature below which the simulation settles.
func (s *Simulation) AlphaMin() float64 { return s.alphaMin }

// State returns the lifecycle state.
func (s *Simulation) State() State { return s.state }

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Restart marks the simulation running again without changing alpha.
func (s *Simulation) Restart() {
	s.state = Running
}

// Step advances one tick unless the simulation has settled. It reports
// whether particles moved.
func (s *Simulation) Step() bool {
	if s.state == Settled {
		return false
	}
	s.state = Running
	s.Tick()
	if s.alpha < s.alphaMin {
		s.state = Settled
	}
	return true
}

// Tick advances one tick unconditionally: cool alpha, apply every force,
// then integrate velocities into positions. Pinned particles jump to their
// pin with zero velocity.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}

	keep := 1 - s.velocityDecay
	for _, p := range s.particles {
		if p.Pinned {
			p.X, p.VX = p.FX, 0
			p.Y, p.VY = p.FY, 0
			continue
		}
		p.VX *= keep
		p.VY *= keep
		p.X += p.VX
		p.Y += p.VY
	}
	s.ticks++
}

// jiggle returns a tiny random offset used to separate coincident particles.
func jiggle(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 1e-6
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite returns v, or 0 when v is NaN or infinite.
func Finite(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}
