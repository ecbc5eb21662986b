// Package router decides how a requested frequency is turned into sound.
//
// Frequencies that small speakers or human hearing cannot reproduce are
// never synthesized directly; they are rewritten as an audible carrier
// modulated at the requested rate (an isochronic beat).
package router

import (
	"errors"
	"fmt"
	"math"
)

// Default thresholds. These are product tuning values, not physical limits.
const (
	DefaultMinAudibleHz   = 20.0
	DefaultSpeakerMinHz   = 80.0
	DefaultMaxPracticalHz = 15000.0
	DefaultCarrierHz      = 200.0
)

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid router thresholds")

// Policy is the synthesis strategy chosen for a frequency.
type Policy int

const (
	// PolicyDirect plays the frequency as-is.
	PolicyDirect Policy = iota

	// PolicyClamp plays the frequency clamped to the practical maximum.
	PolicyClamp

	// PolicyEntrain rewrites the frequency as a carrier plus beat.
	PolicyEntrain
)

func (p Policy) String() string {
	switch p {
	case PolicyDirect:
		return "direct"
	case PolicyClamp:
		return "clamp"
	case PolicyEntrain:
		return "entrain"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Band names the threshold band a frequency fell into.
type Band int

const (
	// BandInaudible is below the audible floor.
	BandInaudible Band = iota

	// BandSubSpeaker is audible but below what small transducers reproduce.
	BandSubSpeaker

	// BandDirect is the directly playable range.
	BandDirect

	// BandAboveMax is above the practical maximum.
	BandAboveMax
)

func (b Band) String() string {
	switch b {
	case BandInaudible:
		return "inaudible"
	case BandSubSpeaker:
		return "sub-speaker"
	case BandDirect:
		return "direct"
	case BandAboveMax:
		return "above-max"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

// Thresholds holds the classification boundaries in Hz.
type Thresholds struct {
	// MinAudibleHz is the audible-practical floor.
	MinAudibleHz float64

	// SpeakerMinHz is the lowest frequency played directly. Frequencies in
	// [MinAudibleHz, SpeakerMinHz) are rewritten unconditionally.
	SpeakerMinHz float64

	// MaxPracticalHz is the clamp ceiling for direct playback.
	MaxPracticalHz float64

	// CarrierHz is the carrier used when a frequency is rewritten.
	CarrierHz float64
}

// Defaults returns the standard thresholds.
func Defaults() Thresholds {
	return Thresholds{
		MinAudibleHz:   DefaultMinAudibleHz,
		SpeakerMinHz:   DefaultSpeakerMinHz,
		MaxPracticalHz: DefaultMaxPracticalHz,
		CarrierHz:      DefaultCarrierHz,
	}
}

// Validate checks that the thresholds are ordered and the carrier is itself
// directly playable.
func (t Thresholds) Validate() error {
	if !(t.MinAudibleHz > 0) {
		return fmt.Errorf("%w: minimum audible frequency must be positive", ErrInvalidThresholds)
	}
	if t.SpeakerMinHz < t.MinAudibleHz {
		return fmt.Errorf("%w: speaker minimum %.1f Hz below audible floor %.1f Hz",
			ErrInvalidThresholds, t.SpeakerMinHz, t.MinAudibleHz)
	}
	if t.MaxPracticalHz <= t.SpeakerMinHz {
		return fmt.Errorf("%w: practical maximum must exceed speaker minimum", ErrInvalidThresholds)
	}
	if t.MaxBeatHz() < t.SpeakerMinHz {
		return fmt.Errorf("%w: playable range %.1f-%.1f Hz narrower than the speaker minimum, sub-floor beats would not fit",
			ErrInvalidThresholds, t.SpeakerMinHz, t.MaxPracticalHz)
	}
	if t.CarrierHz < t.SpeakerMinHz || t.CarrierHz > t.MaxPracticalHz {
		return fmt.Errorf("%w: carrier %.1f Hz outside [%.1f, %.1f]",
			ErrInvalidThresholds, t.CarrierHz, t.SpeakerMinHz, t.MaxPracticalHz)
	}
	return nil
}

// Route is the outcome of classifying one requested frequency.
type Route struct {
	Policy Policy
	Band   Band

	// NominalHz is the frequency that was asked for.
	NominalHz float64

	// PlayHz is the oscillator frequency for direct and clamped routes.
	PlayHz float64

	// CarrierHz and BeatHz are set for entrainment routes.
	CarrierHz float64
	BeatHz    float64
}

// Entrains reports whether the route synthesizes a carrier plus beat.
func (r Route) Entrains() bool {
	return r.Policy == PolicyEntrain
}

// AudibleHz is the frequency actually sounding: the carrier for
// entrainment routes, otherwise PlayHz.
func (r Route) AudibleHz() float64 {
	if r.Entrains() {
		return r.CarrierHz
	}
	return r.PlayHz
}

// Classify routes a positive frequency. Callers validate hz beforehand.
func (t Thresholds) Classify(hz float64) Route {
	r := Route{NominalHz: hz}
	switch {
	case hz < t.MinAudibleHz:
		r.Policy, r.Band = PolicyEntrain, BandInaudible
	case hz < t.SpeakerMinHz:
		r.Policy, r.Band = PolicyEntrain, BandSubSpeaker
	case hz > t.MaxPracticalHz:
		r.Policy, r.Band = PolicyClamp, BandAboveMax
		r.PlayHz = t.MaxPracticalHz
		return r
	default:
		r.Policy, r.Band = PolicyDirect, BandDirect
		r.PlayHz = hz
		return r
	}
	r.CarrierHz = t.BeatCarrier(t.CarrierHz, hz)
	r.BeatHz = hz
	return r
}

// Entrainment builds a route for an explicit carrier and beat request. The
// carrier is clamped with BeatCarrier; callers reject beats above MaxBeatHz.
func (t Thresholds) Entrainment(carrierHz, beatHz float64) Route {
	return Route{
		Policy:    PolicyEntrain,
		Band:      t.Classify(beatHz).Band,
		NominalHz: beatHz,
		CarrierHz: t.BeatCarrier(carrierHz, beatHz),
		BeatHz:    beatHz,
	}
}

// MaxBeatHz is the widest beat whose two sides still fit the playable
// range.
func (t Thresholds) MaxBeatHz() float64 {
	return t.MaxPracticalHz - t.SpeakerMinHz
}

// BeatCarrier clamps a carrier so that carrier±beat/2, the binaural sides
// and the sidebands of the modulated carrier, stay within
// [SpeakerMinHz, MaxPracticalHz]. For beats above MaxBeatHz the range is
// empty and the midpoint is returned.
func (t Thresholds) BeatCarrier(carrierHz, beatHz float64) float64 {
	half := beatHz / 2
	lo, hi := t.SpeakerMinHz+half, t.MaxPracticalHz-half
	if lo > hi {
		return (t.SpeakerMinHz + t.MaxPracticalHz) / 2
	}
	return math.Min(math.Max(carrierHz, lo), hi)
}
