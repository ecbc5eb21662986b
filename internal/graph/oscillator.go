package graph

import (
	"github.com/tphakala/go-sound-bath/internal/mixer"
	"github.com/tphakala/go-sound-bath/internal/synth"
)

// ParamID selects an automatable parameter of an oscillator.
type ParamID int

const (
	// Frequency is the oscillator frequency in Hz.
	Frequency ParamID = iota

	// Level is the static gain stage in front of the envelope.
	Level

	// Gain is the envelope gain stage.
	Gain
)

// Oscillator is a handle on one generator in the graph. A chain is
// oscillator → level → envelope gain, with an optional modulator acting on
// the gain path.
type Oscillator struct {
	g  *Graph
	id uint64

	waveform  synth.Waveform
	frequency *Param
	level     *Param
	gain      *Param
	mod       *Modulator

	phase     float64
	start     float64
	stopAt    float64
	finalized bool
}

// ID returns the node identifier.
func (o *Oscillator) ID() uint64 {
	return o.id
}

func (o *Oscillator) param(id ParamID) *Param {
	switch id {
	case Frequency:
		return o.frequency
	case Level:
		return o.level
	default:
		return o.gain
	}
}

// SetValueAtTime schedules a step of param to v at graph time t.
func (o *Oscillator) SetValueAtTime(id ParamID, v, t float64) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	o.param(id).setValueAtTime(v, t)
}

// LinearRampToValueAtTime schedules a linear ramp of param reaching v at t.
func (o *Oscillator) LinearRampToValueAtTime(id ParamID, v, t float64) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	o.param(id).linearRampToValueAtTime(v, t)
}

// CancelAndHold removes automation after t, holding the value at t.
func (o *Oscillator) CancelAndHold(id ParamID, t float64) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	o.param(id).cancelAndHold(t)
}

// ValueAt returns the scheduled value of param at t.
func (o *Oscillator) ValueAt(id ParamID, t float64) float64 {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	return o.param(id).valueAt(t)
}

// SetWaveform changes the waveform of a running oscillator. Phase is kept so
// the switch does not restart the cycle.
func (o *Oscillator) SetWaveform(w synth.Waveform) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	o.waveform = w
}

// StopAt schedules the oscillator to finalize at graph time t.
func (o *Oscillator) StopAt(t float64) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	if o.stopAt < 0 || t < o.stopAt {
		o.stopAt = t
	}
}

// Finalized reports whether the oscillator has stopped producing sound.
func (o *Oscillator) Finalized() bool {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	return o.finalized
}

// Disconnect removes the oscillator from the graph immediately. It returns
// ErrHandleFinalized if the oscillator already stopped.
func (o *Oscillator) Disconnect() error {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	if o.finalized {
		return ErrHandleFinalized
	}
	for i, n := range o.g.nodes {
		if n == o {
			o.g.nodes = append(o.g.nodes[:i], o.g.nodes[i+1:]...)
			break
		}
	}
	o.finalize()
	return nil
}

func (o *Oscillator) finalize() {
	o.finalized = true
	if o.mod != nil {
		o.mod.finalized = true
	}
}

func (o *Oscillator) prune(t float64) {
	o.frequency.prune(t)
	o.level.prune(t)
	o.gain.prune(t)
}

// next returns the sample at t and advances the phase.
func (o *Oscillator) next(t, sampleRate float64) float64 {
	if t < o.start {
		return 0
	}
	s := synth.Sample(o.waveform, o.phase) * o.level.valueAt(t) * o.gain.valueAt(t)
	if o.mod != nil && !o.mod.finalized {
		s *= o.mod.m.Gain(t - o.mod.origin)
	}
	o.phase = synth.WrapPhase(o.phase + synth.PhaseStep(o.frequency.valueAt(t), sampleRate))
	return s
}

// Modulator is the beat sub-graph attached to an entrainment oscillator: a
// low-frequency oscillator driving the gain path.
type Modulator struct {
	osc       *Oscillator
	m         mixer.Modulation
	origin    float64
	finalized bool
}

// AttachModulator connects a beat modulator to the oscillator's gain path,
// replacing any previous one. The LFO phase is zero at graph time origin,
// so layers of one session share a beat phase whatever their onsets.
func (o *Oscillator) AttachModulator(m mixer.Modulation, origin float64) *Modulator {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	mod := &Modulator{osc: o, m: m, origin: origin, finalized: o.finalized}
	o.mod = mod
	return mod
}

// BeatHz returns the modulation rate.
func (m *Modulator) BeatHz() float64 {
	return m.m.BeatHz
}

// Disconnect detaches the modulator. It returns ErrHandleFinalized if it was
// already detached or its oscillator has finalized.
func (m *Modulator) Disconnect() error {
	m.osc.g.mu.Lock()
	defer m.osc.g.mu.Unlock()
	if m.finalized {
		return ErrHandleFinalized
	}
	m.finalized = true
	if m.osc.mod == m {
		m.osc.mod = nil
	}
	return nil
}

// ScheduleEnvelope lays envelope breakpoints on the gain stage as linear
// ramps, offset by start.
func (o *Oscillator) ScheduleEnvelope(points []synth.Point, start float64) {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	for i, p := range points {
		if i == 0 {
			o.gain.setValueAtTime(p.Gain, start+p.T)
			continue
		}
		o.gain.linearRampToValueAtTime(p.Gain, start+p.T)
	}
}

// Release ramps the gain stage from its value at t to silence over d
// seconds and stops the oscillator at the end of the ramp. It returns the
// gain the ramp started from.
func (o *Oscillator) Release(t, d float64) float64 {
	o.g.mu.Lock()
	defer o.g.mu.Unlock()
	from := o.gain.valueAt(t)
	o.gain.cancelAndHold(t)
	o.gain.linearRampToValueAtTime(0, t+d)
	if o.stopAt < 0 || t+d < o.stopAt {
		o.stopAt = t + d
	}
	return from
}
