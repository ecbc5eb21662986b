package graph

import "sort"

type eventKind int

const (
	eventSet eventKind = iota
	eventRamp
)

type event struct {
	kind  eventKind
	time  float64
	value float64
}

// Param is an automatable value on a node. Changes are scheduled against the
// graph clock: a step with SetValueAtTime, a linear segment ending at a
// point with LinearRampToValueAtTime. Params are only touched with the
// owning graph locked.
type Param struct {
	initial float64
	events  []event
}

func newParam(v float64) *Param {
	return &Param{initial: v}
}

func (p *Param) insert(e event) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) setValueAtTime(v, t float64) {
	p.insert(event{kind: eventSet, time: t, value: v})
}

func (p *Param) linearRampToValueAtTime(v, t float64) {
	p.insert(event{kind: eventRamp, time: t, value: v})
}

// cancelAndHold drops every event after t and pins the value the param has
// at t, so a following ramp starts from the instantaneous level.
func (p *Param) cancelAndHold(t float64) {
	v := p.valueAt(t)
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > t })
	p.events = p.events[:i]
	p.insert(event{kind: eventSet, time: t, value: v})
}

func (p *Param) valueAt(t float64) float64 {
	v, from := p.initial, 0.0
	for _, e := range p.events {
		if e.time > t {
			if e.kind == eventRamp && e.time > from {
				return v + (e.value-v)*(t-from)/(e.time-from)
			}
			return v
		}
		v, from = e.value, e.time
	}
	return v
}

// prune folds events that ended before t into the initial value.
func (p *Param) prune(t float64) {
	n := 0
	for n < len(p.events) && p.events[n].time <= t {
		n++
	}
	// Keep the last passed event as the origin of a pending ramp.
	if n < 2 {
		return
	}
	p.initial = p.events[n-2].value
	p.events = p.events[n-1:]
}
