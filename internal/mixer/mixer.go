// Package mixer renders routed voices into PCM. Rendering is a pure
// per-sample computation with no shared state; it can run on any worker and
// is cancellable through its context.
package mixer

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-sound-bath/internal/simdops"
	"github.com/tphakala/go-sound-bath/internal/synth"
)

// Mixer renders voices at a fixed sample rate.
type Mixer struct {
	sampleRate float64
	workers    int
	ops        *simdops.Ops[float64]
}

// New creates a mixer for the given sample rate.
func New(sampleRate int) *Mixer {
	return &Mixer{
		sampleRate: float64(sampleRate),
		workers:    runtime.GOMAXPROCS(0),
		ops:        simdops.Float64Ops(),
	}
}

// SampleRate returns the rendering rate in Hz.
func (m *Mixer) SampleRate() int {
	return int(m.sampleRate)
}

// Frames converts a duration into a frame count at the mixer rate.
func (m *Mixer) Frames(d time.Duration) int {
	return int(math.Round(d.Seconds() * m.sampleRate))
}

// RenderVoice renders a single voice over frames samples, already scaled by
// the voice's pre-attenuation gain.
func (m *Mixer) RenderVoice(ctx context.Context, v Voice, frames int) ([]float64, error) {
	out := make([]float64, frames)
	step := synth.PhaseStep(v.Hz, m.sampleRate)

	first := max(0, int(math.Ceil(v.Onset*m.sampleRate)))
	last := min(frames, int(math.Ceil(v.End()*m.sampleRate)))

	for start := first; start < last; start += renderBlock {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+renderBlock, last)
		for i := start; i < end; i++ {
			t := float64(i) / m.sampleRate
			// Phase is taken from the voice's own start so every voice
			// begins at a zero crossing.
			local := float64(i-first) * step
			out[i] = synth.Sample(v.Waveform, local) * v.Level(t)
		}
	}

	m.ops.Scale(out, out, v.Gain)
	return out, nil
}

// Render renders and sums voices into a mono bus of frames samples. Voices
// render concurrently and the sum is scaled by Headroom, so the final clamp
// only guards against rounding.
func (m *Mixer) Render(ctx context.Context, voices []Voice, frames int) ([]float64, error) {
	bus, err := m.mix(ctx, voices, frames)
	if err != nil {
		return nil, err
	}
	Clamp(bus)
	return bus, nil
}

// mix returns the unclamped bus. Each voice is added as soon as it is
// rendered, so at most one buffer per worker is alive besides the bus.
func (m *Mixer) mix(ctx context.Context, voices []Voice, frames int) ([]float64, error) {
	if frames < 0 {
		return nil, fmt.Errorf("negative frame count %d", frames)
	}
	bus := make([]float64, frames)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, v := range voices {
		g.Go(func() error {
			buf, err := m.RenderVoice(gctx, v, frames)
			if err != nil {
				return fmt.Errorf("voice %d (%.2f Hz): %w", i, v.NominalHz, err)
			}
			mu.Lock()
			simdops.Accumulate(bus, buf)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m.ops.Scale(bus, bus, Headroom(voices))
	return bus, nil
}

// Headroom is the bus gain that keeps a sum of voices within full scale.
// A voice never exceeds its Gain, so the worst case at any instant is the
// summed Gain of the voices sounding together. That sum only grows at an
// onset, so checking just after every onset covers the whole session.
func Headroom(voices []Voice) float64 {
	var worst float64
	for _, v := range voices {
		t := v.Onset + onsetEpsilon
		var sum float64
		for _, o := range voices {
			if o.Active(t) {
				sum += math.Abs(o.Gain)
			}
		}
		worst = math.Max(worst, sum)
	}
	if worst <= fullScale {
		return 1
	}
	return fullScale / worst
}

// RenderBinaural renders a stereo beat: the left channel plays
// carrier-beat/2 and the right channel carrier+beat/2, so the beat is
// perceived between the ears.
func (m *Mixer) RenderBinaural(ctx context.Context, carrierHz, beatHz, gain float64, w synth.Waveform, env synth.Envelope, frames int) (left, right []float64, err error) {
	base := Voice{Waveform: w, Gain: gain, Duration: env.Duration, Envelope: env}

	lv, rv := base, base
	lv.Hz, lv.NominalHz = carrierHz-beatHz*halfBeat, beatHz
	rv.Hz, rv.NominalHz = carrierHz+beatHz*halfBeat, beatHz

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		left, err = m.RenderVoice(gctx, lv, frames)
		return err
	})
	g.Go(func() (err error) {
		right, err = m.RenderVoice(gctx, rv, frames)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	Clamp(left)
	Clamp(right)
	return left, right, nil
}

// Interleave converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func Interleave(left, right []float64) []float64 {
	n := min(len(left), len(right))
	out := make([]float64, n*stereoChannels)
	simdops.Float64Ops().Interleave2(out, left[:n], right[:n])
	return out
}

// Clamp bounds samples to [-1, 1] in place.
func Clamp(samples []float64) {
	for i, s := range samples {
		if s > fullScale {
			samples[i] = fullScale
		} else if s < -fullScale {
			samples[i] = -fullScale
		}
	}
}

// ToPCM16 converts float samples to signed 16-bit PCM, clamping to the
// representable range.
func ToPCM16(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(s * pcmMax)
		if v > pcmMax {
			v = pcmMax
		} else if v < pcmMin {
			v = pcmMin
		}
		out[i] = int16(v)
	}
	return out
}

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(s))
	}
	return peak
}
