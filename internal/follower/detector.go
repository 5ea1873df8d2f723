package follower

// Detector implements the two-stage break hysteresis: a one-time arming
// gate, then a dwell timer that only accumulates while the stretch stays
// at or past the break distance.
type Detector struct {
	armThreshold  float64
	breakDistance float64
	breakDwell    float64

	armed bool
	dwell float64
}

func NewDetector(armThreshold, breakDistance, breakDwell float64) *Detector {
	return &Detector{
		armThreshold:  armThreshold,
		breakDistance: breakDistance,
		breakDwell:    breakDwell,
	}
}

// Arm makes the detector eligible to fracture, e.g. on grab.
func (d *Detector) Arm() { d.armed = true }

func (d *Detector) Armed() bool { return d.armed }

func (d *Detector) Dwell() float64 { return d.dwell }

// ObserveProximity arms the detector once the follower has come within
// the arm threshold of its bound particle. Prevents a follower spawned
// already stretched from detaching on its first frames.
func (d *Detector) ObserveProximity(dist float64) {
	if dist <= d.armThreshold {
		d.armed = true
	}
}

// Observe feeds one frame of stretch. It returns true when the break
// commits: armed, stretch at or past the break distance for breakDwell
// continuous seconds. Any frame below the break distance resets the
// timer to exactly zero. A zero dwell commits on the crossing frame.
func (d *Detector) Observe(stretch, dt float64) bool {
	if stretch < d.breakDistance {
		d.dwell = 0
		return false
	}
	if !d.armed {
		return false
	}
	d.dwell += dt
	return d.dwell >= d.breakDwell
}
