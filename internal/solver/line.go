package solver

// Element is a segment between two actor indices of the same line piece.
// It is the unit of tearing.
type Element struct {
	A, B int
}

// Line is one independently moving piece of a stem. Actor indices are
// meaningful only for the Line instance that produced them; after a tear
// the far piece is a new Line with renumbered actors.
type Line struct {
	id       int
	slots    []int // actor index -> particle slot
	elements []Element
	rest     []float64 // per-element rest length
	ready    bool
}

func (l *Line) ID() int { return l.id }

// ActiveParticleCount is the number of actors currently on this piece.
func (l *Line) ActiveParticleCount() int { return len(l.slots) }

// Elements returns the live segment list. Callers must not retain it
// across a tear.
func (l *Line) Elements() []Element { return l.elements }
