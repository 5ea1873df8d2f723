package world_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tearline/internal/dynamo"
	"github.com/san-kum/tearline/internal/follower"
	"github.com/san-kum/tearline/internal/geom"
	"github.com/san-kum/tearline/internal/world"
)

const dt = 0.01

type eventLog struct {
	fractures []dynamo.FractureEvent
	cuts      []dynamo.CutEvent
	impacts   []dynamo.ImpactEvent
}

func (e *eventLog) OnFracture(ev dynamo.FractureEvent) { e.fractures = append(e.fractures, ev) }
func (e *eventLog) OnCut(ev dynamo.CutEvent)           { e.cuts = append(e.cuts, ev) }
func (e *eventLog) OnImpact(ev dynamo.ImpactEvent)     { e.impacts = append(e.impacts, ev) }

func quietOptions() world.Options {
	opts := world.DefaultOptions()
	opts.Tuning.Gravity = geom.Vec3{}
	opts.Tuning.Ground = -100
	return opts
}

func idle() world.Pointer { return world.Pointer{} }

var _ = Describe("World", func() {
	var (
		w   *world.World
		log *eventLog
	)

	BeforeEach(func() {
		var err error
		w, err = world.New(quietOptions())
		Expect(err).NotTo(HaveOccurred())

		log = &eventLog{}
		w.Events().SubscribeFracture(log)
		w.Events().SubscribeCut(log)
		w.Events().SubscribeImpact(log)
	})

	Describe("pluck with dwell hysteresis", func() {
		var (
			f      *follower.Follower
			anchor geom.Vec3
		)

		BeforeEach(func() {
			line := w.SpawnStem(geom.Vec3{}, geom.Vec3{X: 1}, 6, 0.1)

			params := dynamo.DefaultParams()
			params.ArmThreshold = 0.03
			params.BreakDistance = 0.12
			params.BreakDwell = 0.05

			// Spawned 0.01 from its pin: within the arm threshold.
			var err error
			f, err = w.SpawnFollower(line, 4, geom.Vec3{X: 0.4, Y: 0.01}, params)
			Expect(err).NotTo(HaveOccurred())

			w.Step(dt, idle()) // first tick: line ready, follower arms
			Expect(f.Armed()).To(BeTrue())

			anchor = f.Position()
			w.Step(dt, world.Pointer{Down: true, Held: true, World: anchor})
			Expect(f.State()).To(Equal(dynamo.HeldAttached))
		})

		pull := func(stretch float64, ticks int) {
			hand := anchor.Add(geom.Vec3{Y: stretch})
			for i := 0; i < ticks; i++ {
				w.Step(dt, world.Pointer{Held: true, World: hand})
			}
		}

		It("never fractures while the dwell has not elapsed", func() {
			pull(0.20, 4) // 0.04s of overstretch, dwell is 0.05s
			Expect(log.fractures).To(BeEmpty())
			Expect(f.State()).To(Equal(dynamo.HeldAttached))
		})

		It("fractures exactly once after the dwell elapses", func() {
			pull(0.20, 8)
			Expect(log.fractures).To(HaveLen(1))
			Expect(f.State()).To(Equal(dynamo.HeldDetached))

			w.Step(dt, idle())
			Expect(f.Pin().Enabled()).To(BeFalse())
		})

		It("resets the dwell when the stretch relaxes", func() {
			pull(0.20, 4)
			Expect(f.Dwell()).To(BeNumerically(">", 0))

			pull(0.05, 1) // below the break distance
			Expect(f.Dwell()).To(BeZero())

			pull(0.20, 4)
			Expect(log.fractures).To(BeEmpty())
		})

		It("hands off to dynamics on release after fracture", func() {
			pull(0.20, 8)
			w.Step(dt, world.Pointer{Up: true})
			Expect(f.State()).To(Equal(dynamo.Free))

			w.Step(dt, idle())
			Expect(f.Kinematic()).To(BeFalse())
		})

		It("resumes riding on release without fracture", func() {
			pull(0.05, 3)
			w.Step(dt, world.Pointer{Up: true})
			Expect(f.State()).To(Equal(dynamo.RidingIdle))
			Expect(log.fractures).To(BeEmpty())
		})
	})

	Describe("sweep-cut", func() {
		BeforeEach(func() {
			// One element projecting to the screen segment (50,250)-(50,350).
			w.SpawnStem(geom.Vec3{X: 0.05, Y: 0.05}, geom.Vec3{Y: -1}, 2, 0.1)
			w.Step(dt, idle())
		})

		swipe := func() {
			w.Step(dt, world.Pointer{Down: true, Held: true, Screen: geom.Vec2{X: 0, Y: 300}})
			w.Step(dt, world.Pointer{Held: true, Screen: geom.Vec2{X: 400, Y: 300}})
			w.Step(dt, world.Pointer{Up: true})
		}

		It("tears exactly one element with one rebuild and one CutEvent", func() {
			swipe()

			Expect(log.cuts).To(HaveLen(1))
			Expect(log.cuts[0].TornActorIndex).To(Equal(0))
			Expect(w.Solver().Lines()).To(HaveLen(2))
			Expect(w.Solver().Rebuilds()).To(Equal(1))
		})
	})

	Describe("cut broadcast drop rule", func() {
		It("drops followers bound at or past the torn index", func() {
			line := w.SpawnStem(geom.Vec3{X: 0.05, Y: 0.25}, geom.Vec3{Y: -1}, 6, 0.1)
			w.Step(dt, idle())

			params := dynamo.DefaultParams()
			near, err := w.SpawnFollower(line, 1, geom.Vec3{X: 0.05, Y: 0.15}, params)
			Expect(err).NotTo(HaveOccurred())
			farSide, err := w.SpawnFollower(line, 4, geom.Vec3{X: 0.05, Y: -0.15}, params)
			Expect(err).NotTo(HaveOccurred())
			w.Step(dt, idle())

			// Swipe through the element between actors 2 and 3.
			w.Step(dt, world.Pointer{Down: true, Held: true, Screen: geom.Vec2{X: 0, Y: 300}})
			w.Step(dt, world.Pointer{Held: true, Screen: geom.Vec2{X: 400, Y: 300}})

			Expect(log.cuts).To(HaveLen(1))
			Expect(log.cuts[0].TornActorIndex).To(Equal(2))
			Expect(farSide.State()).To(Equal(dynamo.Free))
			Expect(near.State()).To(Equal(dynamo.RidingIdle))
		})
	})
})
