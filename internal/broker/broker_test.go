package broker

import (
	"testing"

	"github.com/san-kum/tearline/internal/dynamo"
)

type cutRecorder struct {
	id     string
	order  *[]string
	events []dynamo.CutEvent
}

func (r *cutRecorder) OnCut(ev dynamo.CutEvent) {
	r.events = append(r.events, ev)
	*r.order = append(*r.order, r.id)
}

func TestPublishCutOrder(t *testing.T) {
	b := New()
	var order []string
	first := &cutRecorder{id: "first", order: &order}
	second := &cutRecorder{id: "second", order: &order}
	b.SubscribeCut(first)
	b.SubscribeCut(second)

	ev := dynamo.CutEvent{LineID: 1, TornActorIndex: 4}
	b.PublishCut(ev)

	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatal("every subscriber should receive the event once")
	}
	if first.events[0] != ev {
		t.Errorf("expected %v, got %v", ev, first.events[0])
	}
	if order[0] != "first" || order[1] != "second" {
		t.Errorf("expected subscription order delivery, got %v", order)
	}
}

func TestUnsubscribeCut(t *testing.T) {
	b := New()
	var order []string
	sub := &cutRecorder{id: "a", order: &order}
	b.SubscribeCut(sub)
	b.UnsubscribeCut(sub)

	b.PublishCut(dynamo.CutEvent{LineID: 1})

	if len(sub.events) != 0 {
		t.Error("unsubscribed handler must not receive events")
	}
}

type fxRecorder struct {
	fractures []dynamo.FractureEvent
	impacts   []dynamo.ImpactEvent
}

func (r *fxRecorder) OnFracture(ev dynamo.FractureEvent) { r.fractures = append(r.fractures, ev) }
func (r *fxRecorder) OnImpact(ev dynamo.ImpactEvent)     { r.impacts = append(r.impacts, ev) }

func TestFractureAndImpactFanOut(t *testing.T) {
	b := New()
	rec := &fxRecorder{}
	b.SubscribeFracture(rec)
	b.SubscribeImpact(rec)

	b.OnFracture(dynamo.FractureEvent{})
	b.OnImpact(dynamo.ImpactEvent{})
	b.OnImpact(dynamo.ImpactEvent{})

	if len(rec.fractures) != 1 {
		t.Errorf("expected 1 fracture, got %d", len(rec.fractures))
	}
	if len(rec.impacts) != 2 {
		t.Errorf("expected 2 impacts, got %d", len(rec.impacts))
	}
}

func TestIndependentBrokers(t *testing.T) {
	var order []string
	b1, b2 := New(), New()
	sub := &cutRecorder{id: "a", order: &order}
	b1.SubscribeCut(sub)

	b2.PublishCut(dynamo.CutEvent{LineID: 9})

	if len(sub.events) != 0 {
		t.Error("events must not cross world instances")
	}
}
