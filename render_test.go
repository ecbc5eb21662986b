package soundbath

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-sound-bath/internal/wavfile"
)

func TestRenderToneWAVHeader(t *testing.T) {
	r, err := RenderTone(context.Background(), DefaultConfig(), ToneRequest{
		FrequencyHz: 440,
		Duration:    time.Second,
		Waveform:    Sine,
		Amplitude:   DefaultAmplitude,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Channels)
	assert.Equal(t, time.Second, r.Duration())

	data, err := r.WAV()
	require.NoError(t, err)
	h, samples, err := wavfile.Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 44100, h.SampleRate)
	assert.Equal(t, 1, h.Channels)
	assert.Equal(t, 16, h.BitsPerSample)
	assert.Equal(t, 88200, h.DataLength)
	assert.Equal(t, r.Samples, samples)
}

func TestRenderEntrainmentIsStereo(t *testing.T) {
	r, err := RenderEntrainment(context.Background(), DefaultConfig(), EntrainmentRequest{
		CarrierHz: 200,
		BeatHz:    10,
		Duration:  500 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Channels)
	assert.Equal(t, 22050, r.Frames())
}

func TestRenderSubFloorToneMatchesEntrainment(t *testing.T) {
	ctx := context.Background()
	tone, err := RenderTone(ctx, DefaultConfig(), ToneRequest{FrequencyHz: 6, Duration: 300 * time.Millisecond, Amplitude: DefaultAmplitude})
	require.NoError(t, err)
	beat, err := RenderEntrainment(ctx, DefaultConfig(), EntrainmentRequest{CarrierHz: 200, BeatHz: 6, Duration: 300 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, beat, tone)
}

func TestRenderBathWriteFile(t *testing.T) {
	r, err := RenderBath(context.Background(), DefaultConfig(), []float64{4, 432, 528, 963}, BathOptions{
		Duration:    time.Second,
		Progressive: true,
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bath.wav")
	require.NoError(t, r.WriteFile(path))

	h, samples, err := wavfile.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Channels)
	assert.Equal(t, r.Samples, samples)
}

func TestRenderRejectsInvalid(t *testing.T) {
	_, err := RenderTone(context.Background(), DefaultConfig(), ToneRequest{FrequencyHz: 440})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	cfg := DefaultConfig()
	cfg.SampleRate = 10
	_, err = RenderBath(context.Background(), cfg, []float64{440}, BathOptions{Duration: time.Second})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RenderBath(ctx, DefaultConfig(), []float64{528}, BathOptions{Duration: 10 * time.Second})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestZeroConfigMatchesDefaults(t *testing.T) {
	d := DefaultConfig()
	z := Config{}.withDefaults()
	require.NoError(t, z.Validate())

	assert.Equal(t, d.SampleRate, z.SampleRate)
	assert.Equal(t, d.Backend, z.Backend)
	assert.Equal(t, d.Thresholds, z.Thresholds)
	assert.Equal(t, d.MinFade, z.MinFade)
	assert.Equal(t, d.Release, z.Release)
	assert.Equal(t, d.Stagger, z.Stagger)
	assert.Equal(t, d.LayerFade, z.LayerFade)
	assert.InDelta(t, d.ModulationDepth, z.ModulationDepth, 0)
	assert.Equal(t, d.Analysis, z.Analysis)
	assert.Equal(t, d.SimulatedTick, z.SimulatedTick)
	assert.Equal(t, d.MaxRenderDuration, z.MaxRenderDuration)
	assert.NotNil(t, z.OpenOutput)
	assert.NotNil(t, z.Logger)
}

func TestZeroConfigRendersLikeDefaults(t *testing.T) {
	ctx := context.Background()
	opts := BathOptions{Duration: time.Second}

	zero, err := RenderBath(ctx, Config{}, []float64{4}, opts)
	require.NoError(t, err)
	def, err := RenderBath(ctx, DefaultConfig(), []float64{4}, opts)
	require.NoError(t, err)
	require.Equal(t, def.Samples, zero.Samples)

	// The envelope fades in rather than starting near full scale.
	assert.Less(t, math.Abs(float64(zero.Samples[1])), 50.0)

	// The 4 Hz beat shows as a varying level across 10 ms windows.
	window := zero.SampleRate / 100
	lo, hi := math.Inf(1), 0.0
	for start := zero.SampleRate / 5; start+window <= 4*zero.SampleRate/5; start += window {
		var peak float64
		for _, s := range zero.Samples[start : start+window] {
			peak = math.Max(peak, math.Abs(float64(s)))
		}
		lo, hi = math.Min(lo, peak), math.Max(hi, peak)
	}
	assert.Greater(t, hi/lo, 1.4)
}

func TestConfigRejectsZeroRelease(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Release = 0
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Release = -time.Millisecond
	_, err := RenderTone(context.Background(), cfg, ToneRequest{FrequencyHz: 440, Duration: time.Second, Amplitude: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.MaxRenderDuration = -time.Second
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestRenderEntrainmentSidesStayPlayable(t *testing.T) {
	tests := []struct {
		name            string
		carrier, beat   float64
		leftHz, rightHz float64
	}{
		{"beat close to carrier at floor", 80, 79, 80, 159},
		{"wide beat at ceiling", 15000, 14000, 1000, 15000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := RenderEntrainment(context.Background(), DefaultConfig(), EntrainmentRequest{
				CarrierHz: tt.carrier,
				BeatHz:    tt.beat,
				Duration:  time.Second,
			})
			require.NoError(t, err)
			require.Equal(t, 2, r.Channels)

			// Past the fade-in the envelope is flat, so each channel is a
			// plain sine at its side frequency.
			rate := float64(r.SampleRate)
			for i := r.SampleRate / 4; i < r.SampleRate/4+2000; i++ {
				sec := float64(i) / rate
				wantL := math.Round(DefaultAmplitude * math.Sin(2*math.Pi*tt.leftHz*sec) * math.MaxInt16)
				wantR := math.Round(DefaultAmplitude * math.Sin(2*math.Pi*tt.rightHz*sec) * math.MaxInt16)
				require.InDelta(t, wantL, float64(r.Samples[2*i]), 2, "left frame %d", i)
				require.InDelta(t, wantR, float64(r.Samples[2*i+1]), 2, "right frame %d", i)
			}
		})
	}

	_, err := RenderEntrainment(context.Background(), DefaultConfig(), EntrainmentRequest{
		CarrierHz: 15000,
		BeatHz:    14999,
		Duration:  time.Second,
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRenderRejectsOverlongSession(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRenderDuration = time.Second

	_, err := RenderBath(context.Background(), cfg, []float64{4, 528}, BathOptions{Duration: 2 * time.Second})
	require.ErrorIs(t, err, ErrInvalidRequest)

	r, err := RenderTone(context.Background(), cfg, ToneRequest{FrequencyHz: 440, Duration: time.Second, Amplitude: 1})
	require.NoError(t, err)
	assert.Equal(t, time.Second, r.Duration())
}
