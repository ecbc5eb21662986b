// Package analyzer turns a block of captured output into a coarse spectrum
// for visualization: per-band loudness, the dominant frequency and whether
// it agrees with the frequency that was asked for.
package analyzer

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-sound-bath/internal/mathutil"
	"github.com/tphakala/go-sound-bath/internal/simdops"
)

// Analyzer defaults.
const (
	DefaultFFTSize       = 2048
	DefaultBands         = 32
	DefaultFloorDB       = -120.0
	DefaultCeilDB        = -60.0
	DefaultLockEpsilonHz = 1.0

	// DefaultAttenuationDB is the sidelobe rejection the analysis window is
	// designed for.
	DefaultAttenuationDB = 90.0
)

const (
	halfSpectrum  = 2
	silenceDBFS   = -240.0
	minMeanSquare = 1e-24
)

var (
	// ErrInvalidConfig is returned for unusable analyzer settings.
	ErrInvalidConfig = errors.New("invalid analyzer configuration")

	// ErrShortBlock is returned when fewer than FFTSize samples are given.
	ErrShortBlock = errors.New("not enough samples for analysis")
)

// Config holds analyzer settings.
type Config struct {
	FFTSize       int
	Bands         int
	FloorDB       float64
	CeilDB        float64
	LockEpsilonHz float64
	AttenuationDB float64
}

// DefaultConfig returns the standard analyzer settings.
func DefaultConfig() Config {
	return Config{
		FFTSize:       DefaultFFTSize,
		Bands:         DefaultBands,
		FloorDB:       DefaultFloorDB,
		CeilDB:        DefaultCeilDB,
		LockEpsilonHz: DefaultLockEpsilonHz,
		AttenuationDB: DefaultAttenuationDB,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.FFTSize < halfSpectrum || c.FFTSize&(c.FFTSize-1) != 0 {
		return fmt.Errorf("%w: FFT size %d must be a power of two", ErrInvalidConfig, c.FFTSize)
	}
	if c.Bands < 1 || c.Bands > c.FFTSize/halfSpectrum {
		return fmt.Errorf("%w: band count %d outside [1, %d]", ErrInvalidConfig, c.Bands, c.FFTSize/halfSpectrum)
	}
	if c.CeilDB <= c.FloorDB {
		return fmt.Errorf("%w: ceiling %.1f dB must exceed floor %.1f dB", ErrInvalidConfig, c.CeilDB, c.FloorDB)
	}
	if c.LockEpsilonHz < 0 {
		return fmt.Errorf("%w: negative lock epsilon", ErrInvalidConfig)
	}
	return nil
}

// Result is one analysis of a block.
type Result struct {
	// PeakHz is the centre of the loudest bin.
	PeakHz  float64
	PeakBin int

	// DisplayHz is IntendedHz when Locked, otherwise PeakHz.
	IntendedHz float64
	DisplayHz  float64
	Locked     bool

	// Bands holds the normalized per-band loudness, each in [0, 1].
	Bands []float64

	// RMSDBFS is the block level relative to full scale.
	RMSDBFS float64

	BinWidthHz float64
}

// Analyzer computes spectra at a fixed size and sample rate. It is safe for
// concurrent use.
type Analyzer struct {
	cfg        Config
	sampleRate float64
	bins       int

	mu     sync.Mutex
	fft    *fourier.FFT
	window []float64
	gain   float64
	seq    []float64
	coeffs []complex128
	mags   []float64
}

// New creates an analyzer for output at sampleRate.
func New(cfg Config, sampleRate int) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, sampleRate)
	}

	window := mathutil.KaiserWindow(cfg.FFTSize, mathutil.KaiserBeta(cfg.AttenuationDB))
	var sum float64
	for _, w := range window {
		sum += w
	}

	bins := cfg.FFTSize / halfSpectrum
	return &Analyzer{
		cfg:        cfg,
		sampleRate: float64(sampleRate),
		bins:       bins,
		fft:        fourier.NewFFT(cfg.FFTSize),
		window:     window,
		gain:       sum,
		seq:        make([]float64, cfg.FFTSize),
		coeffs:     make([]complex128, bins+1),
		mags:       make([]float64, bins),
	}, nil
}

// Config returns the analyzer settings.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// BinWidth returns the frequency spacing of the spectrum bins in Hz.
func (a *Analyzer) BinWidth() float64 {
	return a.sampleRate / halfSpectrum / float64(a.bins)
}

// Analyze examines the most recent FFTSize samples of block. intendedHz is
// the frequency the caller expects to dominate.
func (a *Analyzer) Analyze(block []float32, intendedHz float64) (Result, error) {
	if len(block) < a.cfg.FFTSize {
		return Result{}, fmt.Errorf("%w: have %d, need %d", ErrShortBlock, len(block), a.cfg.FFTSize)
	}
	block = block[len(block)-a.cfg.FFTSize:]

	a.mu.Lock()
	defer a.mu.Unlock()

	for i, s := range block {
		a.seq[i] = float64(s) * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.seq)

	peakBin := 0
	for i := range a.mags {
		a.mags[i] = mathutil.MagnitudeDB(cmplx.Abs(a.coeffs[i]) / a.gain)
		if a.mags[i] > a.mags[peakBin] {
			peakBin = i
		}
	}

	res := Result{
		PeakBin:    peakBin,
		PeakHz:     float64(peakBin) * (a.sampleRate / halfSpectrum) / float64(a.bins),
		IntendedHz: intendedHz,
		Bands:      a.bandLevels(),
		RMSDBFS:    rmsDBFS(block),
		BinWidthHz: a.BinWidth(),
	}
	res.Locked = intendedHz > 0 &&
		math.Abs(res.PeakHz-intendedHz) <= math.Max(a.cfg.LockEpsilonHz, res.BinWidthHz)
	res.DisplayHz = res.PeakHz
	if res.Locked {
		res.DisplayHz = intendedHz
	}
	return res, nil
}

// bandLevels partitions the magnitude spectrum into equal-width bands, takes
// the maximum of each and maps it from [FloorDB, CeilDB] onto [0, 1].
func (a *Analyzer) bandLevels() []float64 {
	bands := make([]float64, a.cfg.Bands)
	per := a.bins / a.cfg.Bands
	span := a.cfg.CeilDB - a.cfg.FloorDB
	for b := range bands {
		start := b * per
		end := start + per
		if b == len(bands)-1 {
			end = a.bins
		}
		peak := math.Inf(-1)
		for _, m := range a.mags[start:end] {
			peak = math.Max(peak, m)
		}
		bands[b] = math.Min(1, math.Max(0, (peak-a.cfg.FloorDB)/span))
	}
	return bands
}

func rmsDBFS(block []float32) float64 {
	ms := float64(simdops.MeanSquare(block))
	if ms < minMeanSquare {
		return silenceDBFS
	}
	return 10 * math.Log10(ms)
}
