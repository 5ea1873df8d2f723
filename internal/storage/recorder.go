package storage

import "github.com/san-kum/tearline/internal/dynamo"

// EventRow is one recorded engine event.
type EventRow struct {
	T      float64 `json:"t"`
	Kind   string  `json:"kind"` // fracture, cut, impact
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Detail int     `json:"detail"` // torn actor index for cuts
}

// SeriesRow is one sampled stretch/dwell measurement.
type SeriesRow struct {
	T       float64
	Stretch float64
	Dwell   float64
}

// Recorder subscribes to a world's broker and logs everything it hears,
// stamped with simulation time.
type Recorder struct {
	clock  func() float64
	rows   []EventRow
	series []SeriesRow
}

// NewRecorder creates a recorder reading timestamps from clock, typically
// the world's Time method.
func NewRecorder(clock func() float64) *Recorder {
	if clock == nil {
		clock = func() float64 { return 0 }
	}
	return &Recorder{clock: clock}
}

func (r *Recorder) OnFracture(ev dynamo.FractureEvent) {
	r.rows = append(r.rows, EventRow{
		T: r.clock(), Kind: "fracture",
		X: ev.Position.X, Y: ev.Position.Y, Z: ev.Position.Z,
	})
}

func (r *Recorder) OnImpact(ev dynamo.ImpactEvent) {
	r.rows = append(r.rows, EventRow{
		T: r.clock(), Kind: "impact",
		X: ev.Position.X, Y: ev.Position.Y, Z: ev.Position.Z,
	})
}

func (r *Recorder) OnCut(ev dynamo.CutEvent) {
	r.rows = append(r.rows, EventRow{
		T: r.clock(), Kind: "cut",
		Detail: ev.TornActorIndex,
	})
}

// Sample logs one stretch/dwell measurement for the series plot.
func (r *Recorder) Sample(stretch, dwell float64) {
	r.series = append(r.series, SeriesRow{T: r.clock(), Stretch: stretch, Dwell: dwell})
}

func (r *Recorder) Rows() []EventRow    { return r.rows }
func (r *Recorder) Series() []SeriesRow { return r.series }

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, row := range r.rows {
		if row.Kind == kind {
			n++
		}
	}
	return n
}
