package mixer

import (
	"fmt"
	"math"
	"time"

	"github.com/tphakala/go-sound-bath/internal/router"
	"github.com/tphakala/go-sound-bath/internal/synth"
)

// Voice is one generator contribution to a mix. All times are in seconds
// from the start of the session.
type Voice struct {
	// NominalHz is the requested frequency, kept for reporting.
	NominalHz float64

	// Hz is the oscillator frequency (the carrier for entrainment voices).
	Hz       float64
	Waveform synth.Waveform

	// Gain is the pre-attenuated linear gain applied before summation.
	Gain float64

	// Onset and Duration bound the interval in which the voice sounds.
	Onset    float64
	Duration float64

	// FadeIn is the voice's own onset ramp, independent of Envelope.
	FadeIn synth.FadeIn

	// Envelope is evaluated at t-EnvelopeStart.
	Envelope      synth.Envelope
	EnvelopeStart float64

	// Mod is set for entrainment voices.
	Mod *Modulation
}

// End returns the time at which the voice stops sounding.
func (v Voice) End() float64 {
	return v.Onset + v.Duration
}

// Active reports whether the voice sounds at t.
func (v Voice) Active(t float64) bool {
	return t >= v.Onset && t < v.End()
}

// Level returns the gain of the voice at t excluding the waveform itself:
// pre-attenuation, envelope, onset fade and modulation.
func (v Voice) Level(t float64) float64 {
	if !v.Active(t) {
		return 0
	}
	g := v.Envelope.Gain(t-v.EnvelopeStart) * v.FadeIn.Gain(t-v.Onset)
	if v.Mod != nil {
		g *= v.Mod.Gain(t)
	}
	return g
}

// BathMode selects how bath layers are laid out in time.
type BathMode int

const (
	// Blend starts every layer together.
	Blend BathMode = iota

	// Sequence plays the layers one after another.
	Sequence
)

func (m BathMode) String() string {
	switch m {
	case Blend:
		return "blend"
	case Sequence:
		return "sequence"
	default:
		return fmt.Sprintf("bathmode(%d)", int(m))
	}
}

// Layer is one routed frequency of a bath with its volume in [0, 1].
type Layer struct {
	Route    router.Route
	Waveform synth.Waveform
	Volume   float64
}

// Plan holds the timing parameters used to lay voices out.
type Plan struct {
	Duration time.Duration
	Fade     time.Duration
	Mode     BathMode

	// Progressive staggers blend layers by Stagger, each with its own
	// LayerFade onset ramp.
	Progressive bool
	Stagger     time.Duration
	LayerFade   time.Duration

	// Policy and Depth shape entrainment layers.
	Policy ModPolicy
	Depth  float64
}

// NormalizationGain is the per-layer gain for k concurrent layers at the
// given base volume: base/√k.
func NormalizationGain(base float64, k int) float64 {
	if k < 1 {
		k = 1
	}
	return base / math.Sqrt(float64(k))
}

// Voices lays layers out according to the plan. Blend layers share one
// envelope over the whole duration and are attenuated by 1/√k. Sequence
// layers each get an equal slot with their own envelope and, since only one
// sounds at a time, are not attenuated.
func (p Plan) Voices(layers []Layer) []Voice {
	if len(layers) == 0 {
		return nil
	}
	total := p.Duration.Seconds()
	voices := make([]Voice, len(layers))

	if p.Mode == Sequence {
		slot := p.Duration / time.Duration(len(layers))
		env := synth.NewEnvelope(slot, p.Fade, 1)
		for i, l := range layers {
			onset := float64(i) * slot.Seconds()
			voices[i] = p.voice(l, NormalizationGain(l.Volume, 1), onset, slot.Seconds(), env, onset)
		}
		return voices
	}

	env := synth.NewEnvelope(p.Duration, p.Fade, 1)
	for i, l := range layers {
		var onset float64
		if p.Progressive {
			onset = math.Min(float64(i)*p.Stagger.Seconds(), total)
		}
		v := p.voice(l, NormalizationGain(l.Volume, len(layers)), onset, total-onset, env, 0)
		if p.Progressive {
			v.FadeIn = synth.FadeIn{Duration: p.LayerFade.Seconds()}
		}
		voices[i] = v
	}
	return voices
}

func (p Plan) voice(l Layer, gain, onset, duration float64, env synth.Envelope, envStart float64) Voice {
	v := Voice{
		NominalHz:     l.Route.NominalHz,
		Hz:            l.Route.AudibleHz(),
		Waveform:      l.Waveform,
		Gain:          gain,
		Onset:         onset,
		Duration:      duration,
		Envelope:      env,
		EnvelopeStart: envStart,
	}
	if l.Route.Entrains() {
		v.Mod = &Modulation{BeatHz: l.Route.BeatHz, Policy: p.Policy, Depth: p.Depth}
	}
	return v
}

// Tone returns the single voice for a standalone tone or beat. Entrainment
// routes use policy; direct routes ignore it.
func Tone(r router.Route, w synth.Waveform, amplitude float64, d, fade time.Duration, policy ModPolicy, depth float64) Voice {
	p := Plan{Duration: d, Fade: fade, Policy: policy, Depth: depth}
	return p.Voices([]Layer{{Route: r, Waveform: w, Volume: amplitude}})[0]
}
