package force

// DragAlphaTarget is the temperature the main simulation is held at while a
// node is being dragged.
const DragAlphaTarget = 0.3

// Drag pins particles under the pointer and keeps the simulation warm while
// any drag gesture is active.
type Drag struct {
	sim    *Simulation
	active map[int]bool
}

// NewDrag returns a drag controller for sim.
func NewDrag(sim *Simulation) *Drag {
	return &Drag{sim: sim, active: make(map[int]bool)}
}

// Start begins dragging particle i. The first concurrent drag reheats the
// simulation. The particle is pinned where it currently is.
func (d *Drag) Start(i int) bool {
	p, ok := d.particle(i)
	if !ok {
		return false
	}
	if len(d.active) == 0 {
		d.sim.SetAlphaTarget(DragAlphaTarget)
		d.sim.Restart()
	}
	d.active[i] = true
	p.Pin(p.X, p.Y)
	return true
}

// Move pins particle i at (x, y).
func (d *Drag) Move(i int, x, y float64) bool {
	p, ok := d.particle(i)
	if !ok || !isFinite(x) || !isFinite(y) {
		return false
	}
	p.Pin(x, y)
	return true
}

// End finishes dragging particle i. The particle stays pinned; once no drag
// remains active the simulation is allowed to cool again.
func (d *Drag) End(i int) bool {
	if !d.active[i] {
		return false
	}
	delete(d.active, i)
	if len(d.active) == 0 {
		d.sim.SetAlphaTarget(0)
	}
	return true
}

// Active reports whether any drag is in progress.
func (d *Drag) Active() bool { return len(d.active) > 0 }

// Unfreeze releases every pinned particle.
func (d *Drag) Unfreeze() {
	for _, p := range d.sim.Particles() {
		p.Unpin()
	}
}

func (d *Drag) particle(i int) (*Particle, bool) {
	ps := d.sim.Particles()
	if i < 0 || i >= len(ps) {
		return nil, false
	}
	return ps[i], true
}
