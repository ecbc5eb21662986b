// Package graph is a scheduled audio graph pulled by the platform output on
// its own clock. Callers create oscillator handles and schedule automation
// against the graph time; they never author the sample loop.
package graph

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/tphakala/go-sound-bath/internal/simdops"
	"github.com/tphakala/go-sound-bath/internal/synth"
	"github.com/tphakala/go-sound-bath/internal/tap"
)

// ErrHandleFinalized is returned when disconnecting a node that already
// finished on its own or was disconnected before.
var ErrHandleFinalized = errors.New("audio node already finalized")

const (
	// Channels is the output channel count of Read.
	Channels = 2

	bytesPerSample = 4
	bytesPerFrame  = Channels * bytesPerSample
)

// Graph mixes its live oscillators into one output stream.
type Graph struct {
	mu         sync.Mutex
	sampleRate float64
	frame      int64
	nextID     uint64
	nodes      []*Oscillator
	tap        *tap.Ring

	mono   []float32
	stereo []float32
}

// New creates an empty graph. When ring is non-nil every rendered mono
// block is copied into it.
func New(sampleRate int, ring *tap.Ring) *Graph {
	return &Graph{sampleRate: float64(sampleRate), tap: ring}
}

// SampleRate returns the graph rate in Hz.
func (g *Graph) SampleRate() int {
	return int(g.sampleRate)
}

// Now returns the graph clock in seconds: the time of the next frame to be
// rendered.
func (g *Graph) Now() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now()
}

func (g *Graph) now() float64 {
	return float64(g.frame) / g.sampleRate
}

// Active returns the number of oscillators that have not finalized.
func (g *Graph) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Render advances the clock by len(dst) frames and writes the mono mix.
func (g *Graph) Render(dst []float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.render(dst)
}

func (g *Graph) render(dst []float32) {
	for i := range dst {
		t := float64(g.frame+int64(i)) / g.sampleRate
		var sum float64
		for _, o := range g.nodes {
			sum += o.next(t, g.sampleRate)
		}
		dst[i] = float32(math.Max(-1, math.Min(1, sum)))
	}
	g.frame += int64(len(dst))
	g.collect()

	if g.tap != nil {
		g.tap.Write(dst)
	}
}

// collect finalizes oscillators whose stop time has passed and trims
// automation history.
func (g *Graph) collect() {
	now := g.now()
	live := g.nodes[:0]
	for _, o := range g.nodes {
		if o.stopAt >= 0 && now >= o.stopAt {
			o.finalize()
			continue
		}
		o.prune(now)
		live = append(live, o)
	}
	clear(g.nodes[len(live):])
	g.nodes = live
}

// Read implements io.Reader for the platform output: interleaved stereo
// float32 little-endian, the mono mix on both channels. It never blocks and
// never returns an error.
func (g *Graph) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if cap(g.mono) < frames {
		g.mono = make([]float32, frames)
		g.stereo = make([]float32, frames*Channels)
	}
	mono := g.mono[:frames]
	stereo := g.stereo[:frames*Channels]

	g.render(mono)
	simdops.Float32Ops().Interleave2(stereo, mono, mono)
	for i, s := range stereo {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(s))
	}
	return frames * bytesPerFrame, nil
}

// OscillatorOptions describes a new oscillator. Times are graph seconds.
type OscillatorOptions struct {
	Hz       float64
	Waveform synth.Waveform

	// Level is the static gain stage, typically the normalization gain.
	Level float64

	Start float64

	// Stop is the scheduled end; negative means no scheduled end.
	Stop float64
}

// NewOscillator adds an oscillator to the graph. Its envelope gain starts
// at 0 and must be scheduled.
func (g *Graph) NewOscillator(opts OscillatorOptions) *Oscillator {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	o := &Oscillator{
		g:         g,
		id:        g.nextID,
		waveform:  opts.Waveform,
		frequency: newParam(opts.Hz),
		level:     newParam(opts.Level),
		gain:      newParam(0),
		start:     opts.Start,
		stopAt:    opts.Stop,
	}
	g.nodes = append(g.nodes, o)
	return o
}
