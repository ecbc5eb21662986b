package soundbath

import (
	"context"
	"fmt"
	"time"

	"github.com/tphakala/go-sound-bath/internal/mixer"
	"github.com/tphakala/go-sound-bath/internal/wavfile"
)

// Rendered is a session rendered to interleaved 16-bit PCM.
type Rendered struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Frames returns the number of sample frames.
func (r *Rendered) Frames() int {
	return len(r.Samples) / r.Channels
}

// Duration returns the playing time.
func (r *Rendered) Duration() time.Duration {
	return time.Duration(r.Frames()) * time.Second / time.Duration(r.SampleRate)
}

// WAV encodes the samples as a canonical 44-byte-header WAV stream.
func (r *Rendered) WAV() ([]byte, error) {
	return wavfile.Bytes(r.Samples, r.SampleRate, r.Channels)
}

// WriteFile writes the samples to a WAV file.
func (r *Rendered) WriteFile(path string) error {
	return wavfile.WriteFile(path, r.Samples, r.SampleRate, r.Channels)
}

// RenderTone renders a tone offline. Frequencies below the speaker floor
// render as a binaural beat, exactly as RenderEntrainment would.
func RenderTone(ctx context.Context, cfg Config, req ToneRequest) (*Rendered, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := newPlanner(cfg).tone(req)
	if err != nil {
		return nil, err
	}
	return renderPlan(ctx, mixer.New(cfg.SampleRate), p, cfg.MaxRenderDuration)
}

// RenderEntrainment renders a binaural beat offline: the left channel
// plays carrier-beat/2 and the right carrier+beat/2.
func RenderEntrainment(ctx context.Context, cfg Config, req EntrainmentRequest) (*Rendered, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := newPlanner(cfg).entrainment(req, DefaultAmplitude)
	if err != nil {
		return nil, err
	}
	return renderPlan(ctx, mixer.New(cfg.SampleRate), p, cfg.MaxRenderDuration)
}

// RenderBath renders a bath offline as mono.
func RenderBath(ctx context.Context, cfg Config, frequencies []float64, opts BathOptions) (*Rendered, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := newPlanner(cfg).bath(BathRequest{Frequencies: frequencies, BathOptions: opts})
	if err != nil {
		return nil, err
	}
	return renderPlan(ctx, mixer.New(cfg.SampleRate), p, cfg.MaxRenderDuration)
}

// renderPlan renders a plan, as stereo for binaural plans and mono
// otherwise. Plans longer than limit are rejected before anything is
// allocated. Cancelling ctx aborts long renders.
func renderPlan(ctx context.Context, m *mixer.Mixer, p *plan, limit time.Duration) (*Rendered, error) {
	if p.duration > limit {
		return nil, fmt.Errorf("%w: %s of %v exceeds the render limit of %v", ErrInvalidRequest, p.kind, p.duration, limit)
	}
	frames := m.Frames(p.duration)

	if p.binaural {
		v := p.voices[0]
		left, right, err := m.RenderBinaural(ctx, p.route.CarrierHz, p.route.BeatHz, v.Gain, v.Waveform, v.Envelope, frames)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", p.kind, err)
		}
		return &Rendered{
			SampleRate: m.SampleRate(),
			Channels:   2,
			Samples:    mixer.ToPCM16(mixer.Interleave(left, right)),
		}, nil
	}

	bus, err := m.Render(ctx, p.voices, frames)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", p.kind, err)
	}
	return &Rendered{
		SampleRate: m.SampleRate(),
		Channels:   1,
		Samples:    mixer.ToPCM16(bus),
	}, nil
}
