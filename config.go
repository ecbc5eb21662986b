package soundbath

import (
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tphakala/go-sound-bath/internal/analyzer"
	"github.com/tphakala/go-sound-bath/internal/device"
	"github.com/tphakala/go-sound-bath/internal/router"
)

// Output is an opened audio device that plays interleaved stereo float32
// little-endian streams.
type Output = device.Output

// Player plays one stream on an Output.
type Player = device.Player

// Backend selects how sound reaches the output.
type Backend int

const (
	// BackendLive schedules oscillators on a graph pulled by the device.
	BackendLive Backend = iota

	// BackendRendered renders each session to PCM before playing it.
	BackendRendered
)

func (b Backend) String() string {
	switch b {
	case BackendLive:
		return "live"
	case BackendRendered:
		return "rendered"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// ParseBackend parses "live" or "rendered".
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "live", "graph":
		return BackendLive, nil
	case "rendered", "render", "wav":
		return BackendRendered, nil
	default:
		return 0, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, name)
	}
}

// Thresholds are the frequency routing limits in Hz. They are product
// tuning values and may be changed per engine.
type Thresholds struct {
	// MinAudibleHz is the floor of human hearing.
	MinAudibleHz float64

	// SpeakerMinHz is the lowest frequency played directly. Anything below
	// is rewritten as CarrierHz modulated at the requested rate.
	SpeakerMinHz float64

	// MaxPracticalHz is the highest frequency played; above it tones are
	// clamped.
	MaxPracticalHz float64

	// CarrierHz is the audible carrier for rewritten frequencies.
	CarrierHz float64
}

// DefaultThresholds returns 20 / 80 / 15000 Hz with a 200 Hz carrier.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAudibleHz:   DefaultMinAudibleHz,
		SpeakerMinHz:   DefaultSpeakerMinHz,
		MaxPracticalHz: DefaultMaxPracticalHz,
		CarrierHz:      DefaultCarrierHz,
	}
}

func (t Thresholds) router() router.Thresholds {
	return router.Thresholds(t)
}

// AnalysisConfig holds spectrum analyzer settings.
type AnalysisConfig struct {
	// FFTSize is the analysis block length; a power of two.
	FFTSize int

	// Bands is the number of reported spectrum bands.
	Bands int

	// FloorDB and CeilDB map band levels onto [0, 1].
	FloorDB float64
	CeilDB  float64

	// LockEpsilonHz is the minimum tolerance for the measured peak to count
	// as matching the intended frequency; the bin width is used when larger.
	LockEpsilonHz float64
}

func (a AnalysisConfig) analyzer() analyzer.Config {
	cfg := analyzer.DefaultConfig()
	cfg.FFTSize = a.FFTSize
	cfg.Bands = a.Bands
	cfg.FloorDB = a.FloorDB
	cfg.CeilDB = a.CeilDB
	cfg.LockEpsilonHz = a.LockEpsilonHz
	return cfg
}

// Config holds engine configuration.
type Config struct {
	// SampleRate is the requested output rate in Hz. The opened device's
	// rate takes precedence.
	SampleRate int

	Backend Backend

	Thresholds Thresholds

	// MinFade is the envelope fade length.
	MinFade time.Duration

	// Release is the ramp to silence on an early stop.
	Release time.Duration

	// Stagger and LayerFade shape progressive baths.
	Stagger   time.Duration
	LayerFade time.Duration

	// ModulationDepth is the partial depth for entrainment layers in a bath.
	ModulationDepth float64

	Analysis AnalysisConfig

	// Output, when set, is used instead of opening the platform device.
	Output Output

	// OpenOutput opens the platform device. Defaults to the oto backend.
	OpenOutput func(sampleRate int) (Output, error)

	// SimulatedTick is the pull period of the silent fallback output.
	SimulatedTick time.Duration

	// MaxRenderDuration bounds sessions rendered to PCM, whose buffers are
	// held in memory in full.
	MaxRenderDuration time.Duration

	// Logger receives engine logs. Defaults to a no-op logger.
	Logger *zap.Logger

	// Registerer receives the engine metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// DefaultConfig returns a configuration for the live backend at 44.1 kHz.
func DefaultConfig() Config {
	return Config{
		SampleRate:      DefaultSampleRate,
		Backend:         BackendLive,
		Thresholds:      DefaultThresholds(),
		MinFade:         DefaultMinFade,
		Release:         DefaultRelease,
		Stagger:         DefaultStagger,
		LayerFade:       DefaultLayerFade,
		ModulationDepth: DefaultModulationDepth,
		Analysis: AnalysisConfig{
			FFTSize:       DefaultFFTSize,
			Bands:         DefaultBands,
			FloorDB:       DefaultFloorDB,
			CeilDB:        DefaultCeilDB,
			LockEpsilonHz: DefaultLockEpsilonHz,
		},
		OpenOutput:        device.Open,
		SimulatedTick:     device.DefaultTick,
		MaxRenderDuration: DefaultMaxRenderDuration,
		Logger:            zap.NewNop(),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate < minSampleRate || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate %d outside [%d, %d]", ErrInvalidConfig, c.SampleRate, minSampleRate, maxSampleRate)
	}
	if c.Backend != BackendLive && c.Backend != BackendRendered {
		return fmt.Errorf("%w: unknown backend %d", ErrInvalidConfig, int(c.Backend))
	}
	if err := c.Thresholds.router().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.MinFade <= 0 || c.Release <= 0 {
		return fmt.Errorf("%w: fade %v and release %v must be positive", ErrInvalidConfig, c.MinFade, c.Release)
	}
	if c.Stagger < 0 || c.LayerFade < 0 || c.SimulatedTick < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	if c.MaxRenderDuration <= 0 {
		return fmt.Errorf("%w: max render duration %v must be positive", ErrInvalidConfig, c.MaxRenderDuration)
	}
	if c.ModulationDepth < 0 || c.ModulationDepth > 1 {
		return fmt.Errorf("%w: modulation depth must be in [0, 1]", ErrInvalidConfig)
	}
	if err := c.Analysis.analyzer().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Output == nil && c.OpenOutput == nil {
		return fmt.Errorf("%w: no output and no way to open one", ErrInvalidConfig)
	}
	return nil
}

// withDefaults fills zero fields of c from DefaultConfig, so Config{} is
// equivalent to DefaultConfig(). A modulation depth of zero cannot be asked
// for this way; it reads as unset.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = d.Thresholds
	}
	if c.MinFade == 0 {
		c.MinFade = d.MinFade
	}
	if c.Release == 0 {
		c.Release = d.Release
	}
	if c.Stagger == 0 {
		c.Stagger = d.Stagger
	}
	if c.LayerFade == 0 {
		c.LayerFade = d.LayerFade
	}
	if c.ModulationDepth == 0 {
		c.ModulationDepth = d.ModulationDepth
	}
	if c.Analysis == (AnalysisConfig{}) {
		c.Analysis = d.Analysis
	}
	if c.OpenOutput == nil {
		c.OpenOutput = d.OpenOutput
	}
	if c.SimulatedTick == 0 {
		c.SimulatedTick = d.SimulatedTick
	}
	if c.MaxRenderDuration == 0 {
		c.MaxRenderDuration = d.MaxRenderDuration
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}
