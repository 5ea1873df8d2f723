// Package broker fans engine events out to subscribers.
//
// One Broker is owned per world instance and torn down with it, so tests
// can run independent worlds without cross-contamination. Delivery is
// synchronous, in subscription order; handlers must not depend on the
// order of other subscribers.
package broker

import "github.com/san-kum/tearline/internal/dynamo"

type Broker struct {
	cutSubs      []dynamo.CutHandler
	fractureSubs []dynamo.FractureSink
	impactSubs   []dynamo.ImpactSink
}

func New() *Broker {
	return &Broker{}
}

func (b *Broker) SubscribeCut(h dynamo.CutHandler) {
	b.cutSubs = append(b.cutSubs, h)
}

func (b *Broker) UnsubscribeCut(h dynamo.CutHandler) {
	kept := b.cutSubs[:0]
	for _, sub := range b.cutSubs {
		if sub != h {
			kept = append(kept, sub)
		}
	}
	b.cutSubs = kept
}

func (b *Broker) SubscribeFracture(s dynamo.FractureSink) {
	b.fractureSubs = append(b.fractureSubs, s)
}

func (b *Broker) SubscribeImpact(s dynamo.ImpactSink) {
	b.impactSubs = append(b.impactSubs, s)
}

// PublishCut delivers one tear notification to every subscriber.
// Called exactly once per torn element.
func (b *Broker) PublishCut(ev dynamo.CutEvent) {
	for _, sub := range b.cutSubs {
		sub.OnCut(ev)
	}
}

// OnFracture implements dynamo.FractureSink by fan-out.
func (b *Broker) OnFracture(ev dynamo.FractureEvent) {
	for _, sub := range b.fractureSubs {
		sub.OnFracture(ev)
	}
}

// OnImpact implements dynamo.ImpactSink by fan-out.
func (b *Broker) OnImpact(ev dynamo.ImpactEvent) {
	for _, sub := range b.impactSubs {
		sub.OnImpact(ev)
	}
}
