package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 44100

func sine(hz, amp float64, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*hz*float64(i)/testRate))
	}
	return out
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"FFT not power of two", func(c *Config) { c.FFTSize = 1000 }},
		{"zero bands", func(c *Config) { c.Bands = 0 }},
		{"too many bands", func(c *Config) { c.Bands = 4096 }},
		{"ceiling below floor", func(c *Config) { c.CeilDB = -130 }},
		{"negative epsilon", func(c *Config) { c.LockEpsilonHz = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestAnalyzePeakAndLock(t *testing.T) {
	a, err := New(DefaultConfig(), testRate)
	require.NoError(t, err)

	res, err := a.Analyze(sine(1000, 0.5, 4096), 1000)
	require.NoError(t, err)

	assert.InDelta(t, 1000, res.PeakHz, res.BinWidthHz)
	assert.True(t, res.Locked)
	assert.InDelta(t, 1000.0, res.DisplayHz, 1e-12)
	assert.Len(t, res.Bands, DefaultBands)
	for _, b := range res.Bands {
		assert.GreaterOrEqual(t, b, 0.0)
		assert.LessOrEqual(t, b, 1.0)
	}

	// 1 kHz lands in band floor(1000 / (22050/32)) = 1.
	assert.InDelta(t, 1.0, res.Bands[1], 1e-9)
	assert.InDelta(t, 20*math.Log10(0.5/math.Sqrt2), res.RMSDBFS, 0.1)
}

func TestAnalyzeNotLocked(t *testing.T) {
	a, err := New(DefaultConfig(), testRate)
	require.NoError(t, err)

	res, err := a.Analyze(sine(528, 0.5, 2048), 200)
	require.NoError(t, err)

	assert.False(t, res.Locked)
	assert.InDelta(t, res.PeakHz, res.DisplayHz, 1e-12)
	assert.InDelta(t, 528, res.PeakHz, res.BinWidthHz)
}

func TestAnalyzeSilence(t *testing.T) {
	a, err := New(DefaultConfig(), testRate)
	require.NoError(t, err)

	res, err := a.Analyze(make([]float32, 2048), 440)
	require.NoError(t, err)

	assert.Equal(t, silenceDBFS, res.RMSDBFS)
	for _, b := range res.Bands {
		assert.Zero(t, b)
	}
}

func TestAnalyzeShortBlock(t *testing.T) {
	a, err := New(DefaultConfig(), testRate)
	require.NoError(t, err)

	_, err = a.Analyze(make([]float32, 100), 440)
	assert.ErrorIs(t, err, ErrShortBlock)
}

func TestBinWidth(t *testing.T) {
	a, err := New(DefaultConfig(), testRate)
	require.NoError(t, err)
	assert.InDelta(t, testRate/2048.0, a.BinWidth(), 1e-12)
}
