package mixer

import "time"

// Mixer defaults.
const (
	// DefaultDepth is the partial modulation depth used for entrainment
	// layers inside a bath.
	DefaultDepth = 0.4

	// DefaultStagger is the onset spacing between layers in progressive mode.
	DefaultStagger = 50 * time.Millisecond

	// DefaultLayerFade is the individual fade-in of a staggered layer.
	DefaultLayerFade = 100 * time.Millisecond
)

const (
	// renderBlock is the number of frames rendered between cancellation checks.
	renderBlock = 4096

	// pcmMax and pcmMin bound signed 16-bit PCM.
	pcmMax = 32767
	pcmMin = -32768

	// fullScale is the float bound of the final mix.
	fullScale = 1.0

	// onsetEpsilon is how far past an onset Headroom samples the active set,
	// so a slot ending at that onset is not counted twice.
	onsetEpsilon = 1e-9

	halfBeat  = 0.5
	halfDepth = 0.5

	stereoChannels = 2
)
