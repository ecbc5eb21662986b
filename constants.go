package soundbath

import (
	"time"

	"github.com/tphakala/go-sound-bath/internal/analyzer"
	"github.com/tphakala/go-sound-bath/internal/mixer"
	"github.com/tphakala/go-sound-bath/internal/router"
)

// Engine defaults.
const (
	DefaultSampleRate = 44100

	// DefaultMinFade is the envelope fade, shortened to a quarter of the
	// duration for short sounds.
	DefaultMinFade = 100 * time.Millisecond

	// DefaultRelease is the ramp to silence on an early stop.
	DefaultRelease = 50 * time.Millisecond

	// DefaultMaxRenderDuration is the longest session the rendered backend
	// and the Render functions accept.
	DefaultMaxRenderDuration = 10 * time.Minute

	// DefaultAmplitude is the tone level used by PlayTone and PlayEntrainment.
	DefaultAmplitude = 0.8

	// DefaultVolume is the bath layer volume when none is given.
	DefaultVolume = 80.0

	DefaultStagger         = mixer.DefaultStagger
	DefaultLayerFade       = mixer.DefaultLayerFade
	DefaultModulationDepth = mixer.DefaultDepth
)

// Router defaults.
const (
	DefaultMinAudibleHz   = router.DefaultMinAudibleHz
	DefaultSpeakerMinHz   = router.DefaultSpeakerMinHz
	DefaultMaxPracticalHz = router.DefaultMaxPracticalHz
	DefaultCarrierHz      = router.DefaultCarrierHz
)

// Analyzer defaults.
const (
	DefaultFFTSize       = analyzer.DefaultFFTSize
	DefaultBands         = analyzer.DefaultBands
	DefaultFloorDB       = analyzer.DefaultFloorDB
	DefaultCeilDB        = analyzer.DefaultCeilDB
	DefaultLockEpsilonHz = analyzer.DefaultLockEpsilonHz
)

// Limits
const (
	maxVolume     = 100.0
	maxSampleRate = 384000
	minSampleRate = 8000

	// tapBlocks is the capture ring size in analysis blocks.
	tapBlocks = 2
)
