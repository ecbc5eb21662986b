package mixer

import (
	"fmt"
	"math"
)

// ModPolicy selects how an entrainment beat shapes its carrier.
type ModPolicy int

const (
	// ModFullDepth is full amplitude modulation: the carrier swings between
	// silence and full level, (1+sin(2π·beat·t))/2. Used for standalone beats.
	ModFullDepth ModPolicy = iota

	// ModPartialDepth modulates the gain between 1-depth and 1 through a
	// separate gain path. Used for entrainment layers inside a bath.
	ModPartialDepth
)

func (p ModPolicy) String() string {
	switch p {
	case ModFullDepth:
		return "full"
	case ModPartialDepth:
		return "partial"
	default:
		return fmt.Sprintf("modpolicy(%d)", int(p))
	}
}

// Modulation is the beat applied to an entrainment carrier.
type Modulation struct {
	BeatHz float64
	Policy ModPolicy

	// Depth is used by ModPartialDepth only, in [0, 1].
	Depth float64
}

// Gain returns the modulation gain at t seconds.
func (m Modulation) Gain(t float64) float64 {
	lfo := math.Sin(2 * math.Pi * m.BeatHz * t)
	if m.Policy == ModPartialDepth {
		return ModulationBase(m.Depth) + m.Depth*halfDepth*lfo
	}
	return (1 + lfo) * halfBeat
}

// ModulationBase is the constant part of the partial-depth gain path, the
// value the modulated gain oscillates around.
func ModulationBase(depth float64) float64 {
	return 1 - depth*halfDepth
}
