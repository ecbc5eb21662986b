package synth

import "time"

// Point is a gain breakpoint on an envelope, at T seconds from the start.
// Gain between consecutive points is linearly interpolated.
type Point struct {
	T    float64
	Gain float64
}

// Envelope is a linear attack/hold/release shape over a fixed duration.
//
// Gain rises from 0 to Target over [0, Fade], holds over [Fade, D-Fade] and
// falls back to 0 over [D-Fade, D]. When D <= 2*Fade there is no fall and
// the envelope ends on Target.
type Envelope struct {
	Duration float64 // seconds
	Fade     float64 // seconds
	Target   float64
}

// NewEnvelope builds an envelope for a voice of the given duration. The fade
// is minFade, or a quarter of the duration if that is shorter.
func NewEnvelope(duration, minFade time.Duration, target float64) Envelope {
	d := duration.Seconds()
	f := minFade.Seconds()
	if quarter := d / fadeDivisor; quarter < f {
		f = quarter
	}
	if f < 0 {
		f = 0
	}
	return Envelope{Duration: d, Fade: f, Target: target}
}

// HasFadeOut reports whether the envelope ramps back to zero at the end.
func (e Envelope) HasFadeOut() bool {
	return e.Duration > fadeOutFactor*e.Fade
}

// Gain returns the envelope value at t seconds. Outside [0, Duration] the
// gain is zero.
func (e Envelope) Gain(t float64) float64 {
	if t < 0 || t > e.Duration {
		return 0
	}
	if e.Fade > 0 && t < e.Fade {
		return e.Target * t / e.Fade
	}
	if !e.HasFadeOut() {
		return e.Target
	}
	if tail := e.Duration - t; e.Fade > 0 && tail < e.Fade {
		return e.Target * tail / e.Fade
	}
	return e.Target
}

// Points returns the breakpoints of the envelope in time order, suitable for
// scheduling as linear ramps on a live gain parameter.
func (e Envelope) Points() []Point {
	points := []Point{{T: 0, Gain: 0}, {T: e.Fade, Gain: e.Target}}
	if e.Fade == 0 {
		points[0].Gain = e.Target
	}
	if !e.HasFadeOut() {
		return points
	}
	return append(points,
		Point{T: e.Duration - e.Fade, Gain: e.Target},
		Point{T: e.Duration, Gain: 0},
	)
}

// Release is the short ramp applied when a voice is stopped early. It starts
// from the instantaneous gain at the moment of the stop.
type Release struct {
	From     float64
	Duration float64 // seconds
}

// NewRelease returns a release ramp from gain to silence.
func NewRelease(gain float64, d time.Duration) Release {
	return Release{From: gain, Duration: d.Seconds()}
}

// Gain returns the release value t seconds after the stop.
func (r Release) Gain(t float64) float64 {
	switch {
	case t <= 0:
		return r.From
	case r.Duration <= 0 || t >= r.Duration:
		return 0
	default:
		return r.From * (1 - t/r.Duration)
	}
}

// FadeIn is the individual onset ramp of a staggered bath layer. It runs
// independently of the global envelope.
type FadeIn struct {
	Duration float64 // seconds
}

// Gain returns the onset ramp value t seconds after the layer starts.
func (f FadeIn) Gain(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case f.Duration <= 0 || t >= f.Duration:
		return 1
	default:
		return t / f.Duration
	}
}
