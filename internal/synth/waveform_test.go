package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sampleTolerance = 1e-12
	sweepSteps      = 4096
)

func TestSample_KnownValues(t *testing.T) {
	tests := []struct {
		name     string
		waveform Waveform
		phase    float64
		want     float64
	}{
		{"sine zero", Sine, 0, 0},
		{"sine quarter", Sine, math.Pi / 2, 1},
		{"sine three quarters", Sine, 3 * math.Pi / 2, -1},
		{"square first half", Square, math.Pi / 4, 1},
		{"square second half", Square, 5 * math.Pi / 4, -1},
		{"square zero crossing", Square, 0, 0},
		{"sawtooth start", Sawtooth, 0, -1},
		{"sawtooth middle", Sawtooth, math.Pi, 0},
		{"sawtooth near end", Sawtooth, 2*math.Pi - 1e-9, 1},
		{"triangle start", Triangle, 0, 1},
		{"triangle quarter", Triangle, math.Pi / 2, 0},
		{"triangle middle", Triangle, math.Pi, -1},
		{"triangle three quarters", Triangle, 3 * math.Pi / 2, 0},
		{"sawtooth negative phase", Sawtooth, -math.Pi, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Sample(tt.waveform, tt.phase), 1e-6)
		})
	}
}

func TestSample_StaysInRange(t *testing.T) {
	for _, w := range []Waveform{Sine, Square, Sawtooth, Triangle} {
		t.Run(w.String(), func(t *testing.T) {
			for i := -sweepSteps; i <= sweepSteps; i++ {
				phase := float64(i) * 4 * math.Pi / sweepSteps
				s := Sample(w, phase)
				require.GreaterOrEqual(t, s, -1.0, "phase %f", phase)
				require.LessOrEqual(t, s, 1.0, "phase %f", phase)
			}
		})
	}
}

func TestSample_Periodic(t *testing.T) {
	for _, w := range []Waveform{Sine, Sawtooth, Triangle} {
		for _, phase := range []float64{0.1, 1.3, 2.9, 5.5} {
			assert.InDelta(t, Sample(w, phase), Sample(w, phase+twoPi), 1e-9,
				"%s not periodic at phase %f", w, phase)
		}
	}
}

func TestParseWaveform(t *testing.T) {
	tests := []struct {
		in   string
		want Waveform
	}{
		{"sine", Sine},
		{"SQUARE", Square},
		{" saw ", Sawtooth},
		{"triangle", Triangle},
	}
	for _, tt := range tests {
		got, err := ParseWaveform(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseWaveform("noise")
	require.Error(t, err)
}

func TestWaveform_NextCycles(t *testing.T) {
	w := Sine
	seen := map[Waveform]bool{}
	for range 4 {
		seen[w] = true
		w = w.Next()
	}
	assert.Equal(t, Sine, w)
	assert.Len(t, seen, 4)
	assert.False(t, Waveform(9).Valid())
	assert.Equal(t, "waveform(9)", Waveform(9).String())
}

func TestWrapPhase(t *testing.T) {
	assert.InDelta(t, 1.0, WrapPhase(1.0+3*twoPi), sampleTolerance*100)
	assert.InDelta(t, twoPi-1.0, WrapPhase(-1.0), sampleTolerance*100)
	assert.InDelta(t, 0.5, WrapPhase(0.5), sampleTolerance)
}
