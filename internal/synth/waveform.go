// Package synth implements the stateless signal generator and the envelope
// shapes applied to every generated voice.
package synth

import (
	"fmt"
	"math"
	"strings"
)

// Waveform selects the periodic function used by a generator.
type Waveform int

const (
	// Sine is a pure sinusoid.
	Sine Waveform = iota

	// Square is the sign of the sinusoid at the same phase.
	Square

	// Sawtooth rises linearly from -1 to 1 once per period.
	Sawtooth

	// Triangle rises and falls linearly once per period.
	Triangle
)

// waveformNames is indexed by Waveform.
var waveformNames = [...]string{"sine", "square", "sawtooth", "triangle"}

// String returns the lowercase name of the waveform.
func (w Waveform) String() string {
	if !w.Valid() {
		return fmt.Sprintf("waveform(%d)", int(w))
	}
	return waveformNames[w]
}

// Valid reports whether w is one of the defined waveforms.
func (w Waveform) Valid() bool {
	return w >= Sine && w <= Triangle
}

// Next cycles through the waveforms in declaration order.
func (w Waveform) Next() Waveform {
	return (w + 1) % Waveform(len(waveformNames))
}

// ParseWaveform converts a name such as "sine" or "saw" into a Waveform.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "square", "sqr":
		return Square, nil
	case "sawtooth", "saw":
		return Sawtooth, nil
	case "triangle", "tri":
		return Triangle, nil
	default:
		return Sine, fmt.Errorf("unknown waveform %q", name)
	}
}

// Sample returns the value of waveform w at the given phase in radians.
// The result is always within [-1, 1]. Phase may be any real number.
func Sample(w Waveform, phase float64) float64 {
	switch w {
	case Square:
		s := math.Sin(phase)
		switch {
		case s > 0:
			return 1
		case s < 0:
			return -1
		default:
			return 0
		}
	case Sawtooth:
		return 2*frac(phase/twoPi) - 1
	case Triangle:
		return 4*math.Abs(frac(phase/twoPi)-half) - 1
	default:
		return math.Sin(phase)
	}
}

// PhaseStep returns the per-sample phase increment in radians for a
// frequency at the given sample rate.
func PhaseStep(hz, sampleRate float64) float64 {
	return twoPi * hz / sampleRate
}

// WrapPhase folds phase back into [0, 2π) to keep long-running
// accumulators precise.
func WrapPhase(phase float64) float64 {
	if phase >= twoPi || phase < 0 {
		phase = math.Mod(phase, twoPi)
		if phase < 0 {
			phase += twoPi
		}
	}
	return phase
}

// frac returns the fractional part of x in [0, 1), also for negative x.
func frac(x float64) float64 {
	return x - math.Floor(x)
}
