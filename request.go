package soundbath

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tphakala/go-sound-bath/internal/mixer"
	"github.com/tphakala/go-sound-bath/internal/router"
	"github.com/tphakala/go-sound-bath/internal/synth"
)

// Waveform is the oscillator shape.
type Waveform = synth.Waveform

// Supported waveforms.
const (
	Sine     = synth.Sine
	Square   = synth.Square
	Sawtooth = synth.Sawtooth
	Triangle = synth.Triangle
)

// ParseWaveform parses a waveform name such as "sine" or "saw".
func ParseWaveform(name string) (Waveform, error) {
	w, err := synth.ParseWaveform(name)
	if err != nil {
		return w, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return w, nil
}

// BathMode selects how bath layers are laid out in time.
type BathMode = mixer.BathMode

// Bath modes.
const (
	// Blend starts every layer at once.
	Blend = mixer.Blend

	// Sequence plays layers one after another in equal slots.
	Sequence = mixer.Sequence
)

// ParseBathMode parses "blend" or "sequence". An empty name is Blend.
func ParseBathMode(name string) (BathMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "blend":
		return Blend, nil
	case "sequence", "sequential":
		return Sequence, nil
	default:
		return Blend, fmt.Errorf("%w: unknown bath mode %q", ErrInvalidRequest, name)
	}
}

// ToneRequest asks for a single tone.
type ToneRequest struct {
	FrequencyHz float64
	Duration    time.Duration
	Waveform    Waveform

	// Amplitude is the peak level in [0, 1].
	Amplitude float64
}

// Validate checks the request.
func (r ToneRequest) Validate() error {
	if err := positiveHz("frequency", r.FrequencyHz); err != nil {
		return err
	}
	if err := positiveDuration(r.Duration); err != nil {
		return err
	}
	if !r.Waveform.Valid() {
		return fmt.Errorf("%w: unknown waveform %d", ErrInvalidRequest, int(r.Waveform))
	}
	if !(r.Amplitude >= 0 && r.Amplitude <= 1) {
		return fmt.Errorf("%w: amplitude %v outside [0, 1]", ErrInvalidRequest, r.Amplitude)
	}
	return nil
}

// EntrainmentRequest asks for a beat: an audible carrier modulated at
// the brainwave target rate.
type EntrainmentRequest struct {
	CarrierHz float64
	BeatHz    float64
	Duration  time.Duration
}

// Validate checks the request.
func (r EntrainmentRequest) Validate() error {
	if err := positiveHz("carrier", r.CarrierHz); err != nil {
		return err
	}
	if err := positiveHz("beat", r.BeatHz); err != nil {
		return err
	}
	if r.BeatHz >= r.CarrierHz {
		return fmt.Errorf("%w: beat %.2f Hz must be below carrier %.2f Hz", ErrInvalidRequest, r.BeatHz, r.CarrierHz)
	}
	return positiveDuration(r.Duration)
}

// BathOptions shapes a bath.
type BathOptions struct {
	Duration time.Duration
	Waveform Waveform

	// Volumes holds one volume in [0, 100] per frequency. Empty means
	// DefaultVolume for every layer.
	Volumes []float64

	Mode BathMode

	// Progressive staggers blend layers so they enter one after another.
	Progressive bool
}

// BathRequest asks for a set of layered frequencies.
type BathRequest struct {
	Frequencies []float64
	BathOptions
}

// Validate checks the request.
func (r BathRequest) Validate() error {
	if len(r.Frequencies) == 0 {
		return fmt.Errorf("%w: a bath needs at least one frequency", ErrInvalidRequest)
	}
	for i, hz := range r.Frequencies {
		if err := positiveHz(fmt.Sprintf("layer %d frequency", i), hz); err != nil {
			return err
		}
	}
	if err := positiveDuration(r.Duration); err != nil {
		return err
	}
	if !r.Waveform.Valid() {
		return fmt.Errorf("%w: unknown waveform %d", ErrInvalidRequest, int(r.Waveform))
	}
	if r.Mode != Blend && r.Mode != Sequence {
		return fmt.Errorf("%w: unknown bath mode %d", ErrInvalidRequest, int(r.Mode))
	}
	if len(r.Volumes) != 0 && len(r.Volumes) != len(r.Frequencies) {
		return fmt.Errorf("%w: %d volumes for %d frequencies", ErrInvalidRequest, len(r.Volumes), len(r.Frequencies))
	}
	for i, v := range r.Volumes {
		if !(v >= 0 && v <= maxVolume) {
			return fmt.Errorf("%w: layer %d volume %v outside [0, 100]", ErrInvalidRequest, i, v)
		}
	}
	return nil
}

func positiveHz(what string, hz float64) error {
	if !(hz > 0) || math.IsInf(hz, 1) {
		return fmt.Errorf("%w: %s %v Hz must be positive and finite", ErrInvalidRequest, what, hz)
	}
	return nil
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: duration %v must be positive", ErrInvalidRequest, d)
	}
	return nil
}

// sessionKind labels a plan for logs and metrics.
type sessionKind int

const (
	kindTone sessionKind = iota
	kindEntrainment
	kindBath
)

func (k sessionKind) String() string {
	switch k {
	case kindTone:
		return "tone"
	case kindEntrainment:
		return "entrainment"
	default:
		return "bath"
	}
}

// plan is a validated, routed request ready for a backend.
type plan struct {
	kind     sessionKind
	duration time.Duration
	voices   []mixer.Voice

	// nominalHz is reported by CurrentFrequency: the requested frequency,
	// or the beat for entrainment.
	nominalHz float64

	// intendedHz is what the analyzer expects to dominate: the sounding
	// frequency of the first voice.
	intendedHz float64

	// Standalone beats may render as binaural stereo.
	binaural bool
	route    router.Route

	// simpleTone marks a single direct tone whose waveform may change live.
	simpleTone bool
}

// planner turns requests into plans.
type planner struct {
	thresholds router.Thresholds
	minFade    time.Duration
	stagger    time.Duration
	layerFade  time.Duration
	depth      float64
}

func newPlanner(cfg Config) planner {
	return planner{
		thresholds: cfg.Thresholds.router(),
		minFade:    cfg.MinFade,
		stagger:    cfg.Stagger,
		layerFade:  cfg.LayerFade,
		depth:      cfg.ModulationDepth,
	}
}

func (p planner) tone(req ToneRequest) (*plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	route := p.thresholds.Classify(req.FrequencyHz)
	if route.Entrains() {
		return p.entrainmentRoute(route, req.Duration, req.Amplitude), nil
	}
	v := mixer.Tone(route, req.Waveform, req.Amplitude, req.Duration, p.minFade, mixer.ModFullDepth, p.depth)
	return &plan{
		kind:       kindTone,
		duration:   req.Duration,
		voices:     []mixer.Voice{v},
		nominalHz:  route.NominalHz,
		intendedHz: route.PlayHz,
		route:      route,
		simpleTone: true,
	}, nil
}

func (p planner) entrainment(req EntrainmentRequest, amplitude float64) (*plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if limit := p.thresholds.MaxBeatHz(); req.BeatHz > limit {
		return nil, fmt.Errorf("%w: beat %.2f Hz wider than the playable range allows (%.2f Hz)",
			ErrInvalidRequest, req.BeatHz, limit)
	}
	route := p.thresholds.Entrainment(req.CarrierHz, req.BeatHz)
	return p.entrainmentRoute(route, req.Duration, amplitude), nil
}

// entrainmentRoute builds a standalone beat with full-depth modulation.
func (p planner) entrainmentRoute(route router.Route, d time.Duration, amplitude float64) *plan {
	v := mixer.Tone(route, Sine, amplitude, d, p.minFade, mixer.ModFullDepth, p.depth)
	return &plan{
		kind:       kindEntrainment,
		duration:   d,
		voices:     []mixer.Voice{v},
		nominalHz:  route.BeatHz,
		intendedHz: route.CarrierHz,
		binaural:   true,
		route:      route,
	}
}

func (p planner) bath(req BathRequest) (*plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	layers := make([]mixer.Layer, len(req.Frequencies))
	for i, hz := range req.Frequencies {
		vol := DefaultVolume
		if len(req.Volumes) > 0 {
			vol = req.Volumes[i]
		}
		layers[i] = mixer.Layer{
			Route:    p.thresholds.Classify(hz),
			Waveform: req.Waveform,
			Volume:   vol / maxVolume,
		}
	}
	mp := mixer.Plan{
		Duration:    req.Duration,
		Fade:        p.minFade,
		Mode:        req.Mode,
		Progressive: req.Progressive,
		Stagger:     p.stagger,
		LayerFade:   p.layerFade,
		Policy:      mixer.ModPartialDepth,
		Depth:       p.depth,
	}
	return &plan{
		kind:       kindBath,
		duration:   req.Duration,
		voices:     mp.Voices(layers),
		nominalHz:  layers[0].Route.NominalHz,
		intendedHz: layers[0].Route.AudibleHz(),
		route:      layers[0].Route,
	}, nil
}
