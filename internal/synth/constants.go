package synth

import "math"

const (
	twoPi = 2 * math.Pi
	half  = 0.5

	// fadeDivisor caps the fade length at a quarter of the duration.
	fadeDivisor = 4

	// fadeOutFactor: the fade-out is dropped when duration <= fadeOutFactor*fade.
	fadeOutFactor = 2
)
