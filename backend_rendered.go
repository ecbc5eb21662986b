package soundbath

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tphakala/go-sound-bath/internal/device"
	"github.com/tphakala/go-sound-bath/internal/metrics"
	"github.com/tphakala/go-sound-bath/internal/mixer"
	"github.com/tphakala/go-sound-bath/internal/tap"
	"github.com/tphakala/go-sound-bath/internal/wavfile"
)

// pcmScale converts 16-bit samples to [-1, 1).
const pcmScale = 1.0 / 32768

// renderedBackend renders each session up front and streams the WAV bytes.
type renderedBackend struct {
	out         Output
	mixer       *mixer.Mixer
	maxDuration time.Duration
	ring        *tap.Ring
	metrics     *metrics.Metrics
	log         *zap.Logger
}

func (b *renderedBackend) name() string {
	return BackendRendered.String()
}

func (b *renderedBackend) prepare(ctx context.Context, p *plan) (stream, error) {
	began := time.Now()
	r, err := renderPlan(ctx, b.mixer, p, b.maxDuration)
	if err != nil {
		return nil, err
	}
	wav, err := r.WAV()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.kind, err)
	}
	elapsed := time.Since(began)
	b.metrics.RenderSeconds.WithLabelValues(p.kind.String()).Observe(elapsed.Seconds())
	b.log.Debug("session rendered",
		zap.Stringer("kind", p.kind),
		zap.Int("channels", r.Channels),
		zap.Int("bytes", len(wav)),
		zap.Duration("took", elapsed))
	return &renderedStream{b: b, wav: wav}, nil
}

func (b *renderedBackend) close() error {
	return nil
}

type renderedStream struct {
	b      *renderedBackend
	wav    []byte
	pcm    *pcmStream
	player Player
}

// start parses the WAV bytes back like any other player would and streams
// them to the device.
func (s *renderedStream) start() error {
	h, samples, err := wavfile.Parse(s.wav)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	s.pcm = newPCMStream(h, samples, s.b.ring)
	s.player = s.b.out.NewPlayer(s.pcm)
	s.player.Play()
	return nil
}

func (s *renderedStream) release(d time.Duration) {
	if s.pcm != nil {
		s.pcm.release(int(math.Round(d.Seconds() * float64(s.pcm.sampleRate))))
	}
}

func (s *renderedStream) teardown() int {
	if s.player == nil {
		return 0
	}
	finished := s.pcm.exhausted()
	if err := s.player.Close(); err != nil {
		s.b.log.Debug("player close failed", zap.Error(err))
	}
	s.player = nil
	if finished {
		return 1
	}
	return 0
}

func (s *renderedStream) setWaveform(Waveform) bool {
	return false
}

func (s *renderedStream) generators() int {
	if s.player != nil && s.player.IsPlaying() {
		return 1
	}
	return 0
}

// pcmStream reads parsed PCM as interleaved stereo float32 for the device.
// An early stop ramps the remaining samples to silence and then ends the
// stream.
type pcmStream struct {
	channels   int
	sampleRate int
	samples    []int16
	ring       *tap.Ring

	mu        sync.Mutex
	pos       int // frames
	relStart  int // frame at which the release began, -1 if none
	relFrames int
	mono      []float32
}

func newPCMStream(h wavfile.Header, samples []int16, ring *tap.Ring) *pcmStream {
	return &pcmStream{
		channels:   h.Channels,
		sampleRate: h.SampleRate,
		samples:    samples,
		ring:       ring,
		relStart:   -1,
	}
}

func (p *pcmStream) frames() int {
	return len(p.samples) / p.channels
}

func (p *pcmStream) release(frames int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.relStart >= 0 {
		return
	}
	p.relStart = p.pos
	p.relFrames = max(frames, 1)
}

// exhausted reports whether every sample was played before any release.
func (p *pcmStream) exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos >= p.frames() && (p.relStart < 0 || p.relStart >= p.frames())
}

func (p *pcmStream) end() int {
	end := p.frames()
	if p.relStart >= 0 {
		end = min(end, p.relStart+p.relFrames)
	}
	return end
}

func (p *pcmStream) gain(frame int) float64 {
	if p.relStart < 0 {
		return 1
	}
	return math.Max(0, 1-float64(frame-p.relStart)/float64(p.relFrames))
}

func (p *pcmStream) Read(b []byte) (int, error) {
	if len(b) < device.BytesPerFrame {
		return 0, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	n := min(len(b)/device.BytesPerFrame, p.end()-p.pos)
	if n <= 0 {
		return 0, io.EOF
	}
	if cap(p.mono) < n {
		p.mono = make([]float32, n)
	}
	mono := p.mono[:n]

	for i := range n {
		frame := p.pos + i
		g := p.gain(frame) * pcmScale
		l := float64(p.samples[frame*p.channels]) * g
		r := l
		if p.channels > 1 {
			r = float64(p.samples[frame*p.channels+1]) * g
		}
		off := i * device.BytesPerFrame
		binary.LittleEndian.PutUint32(b[off:], math.Float32bits(float32(l)))
		binary.LittleEndian.PutUint32(b[off+device.BytesPerSample:], math.Float32bits(float32(r)))
		mono[i] = float32((l + r) / 2)
	}
	p.pos += n
	if p.ring != nil {
		p.ring.Write(mono)
	}
	return n * device.BytesPerFrame, nil
}
