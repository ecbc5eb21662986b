package soundbath

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tphakala/go-sound-bath/internal/analyzer"
	"github.com/tphakala/go-sound-bath/internal/device"
	"github.com/tphakala/go-sound-bath/internal/metrics"
	"github.com/tphakala/go-sound-bath/internal/mixer"
	"github.com/tphakala/go-sound-bath/internal/tap"
)

// State is the playback state of an Engine.
type State int32

const (
	// Idle means no session is active.
	Idle State = iota

	// Playing means a session is producing sound.
	Playing

	// Stopping means the session is releasing and tearing down.
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Stop reasons, used as metric labels.
const (
	reasonExplicit = "explicit"
	reasonDeadline = "deadline"
	reasonReplaced = "replaced"
	reasonClosed   = "closed"
)

// session is the single active playback session.
type session struct {
	id     uuid.UUID
	gen    uint64
	plan   *plan
	stream stream
	timer  *time.Timer
	done   chan struct{}
}

// Engine owns the audio output and at most one playback session. Play and
// stop requests are serialized: a new session only starts after the
// previous one is fully torn down. Create one per process and pass it to
// whatever needs sound.
type Engine struct {
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics
	planner planner

	out      Output
	degraded bool
	backend  backend

	ring     *tap.Ring
	analyzer *analyzer.Analyzer

	mu     sync.Mutex
	gen    uint64
	sess   *session
	closed bool

	state      atomic.Int32
	nominalHz  atomic.Uint64
	intendedHz atomic.Uint64
}

// New creates an engine and opens its output. If the audio device cannot be
// opened the engine falls back to a silent simulated output and reports
// Degraded; only configuration errors are returned.
func New(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		log:     cfg.Logger,
		metrics: metrics.New(cfg.Registerer),
		planner: newPlanner(cfg),
	}

	e.out = cfg.Output
	if e.out == nil {
		out, err := cfg.OpenOutput(cfg.SampleRate)
		if err != nil {
			e.log.Warn("audio output unavailable, continuing with simulated output",
				zap.Int("sample_rate", cfg.SampleRate),
				zap.Error(fmt.Errorf("%w: %w", ErrInitialization, err)))
			out = device.NewSimulated(cfg.SampleRate, cfg.SimulatedTick)
			e.degraded = true
			e.metrics.Degraded.Set(1)
		}
		e.out = out
	}
	rate := e.out.SampleRate()

	acfg := cfg.Analysis.analyzer()
	a, err := analyzer.New(acfg, rate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	e.analyzer = a
	e.ring = tap.New(acfg.FFTSize * tapBlocks)

	switch cfg.Backend {
	case BackendRendered:
		e.backend = &renderedBackend{
			out:         e.out,
			mixer:       mixer.New(rate),
			maxDuration: cfg.MaxRenderDuration,
			ring:        e.ring,
			metrics:     e.metrics,
			log:         e.log,
		}
	default:
		e.backend = newLiveBackend(e.out, e.ring, e.log)
	}

	e.log.Info("sound engine ready",
		zap.Stringer("backend", cfg.Backend),
		zap.Int("sample_rate", rate),
		zap.Bool("degraded", e.degraded))
	return e, nil
}

// PlayTone plays a tone at DefaultAmplitude. Frequencies below the speaker
// floor are played as an entrainment beat on the configured carrier;
// frequencies above the practical maximum are clamped.
func (e *Engine) PlayTone(ctx context.Context, hz float64, d time.Duration, w Waveform) error {
	return e.PlayToneRequest(ctx, ToneRequest{FrequencyHz: hz, Duration: d, Waveform: w, Amplitude: DefaultAmplitude})
}

// PlayToneRequest plays a tone with full control over its parameters.
func (e *Engine) PlayToneRequest(ctx context.Context, req ToneRequest) error {
	p, err := e.planner.tone(req)
	return e.play(ctx, p, err)
}

// PlayEntrainment plays carrierHz modulated at beatHz. The carrier is
// clamped into the directly playable range.
func (e *Engine) PlayEntrainment(ctx context.Context, carrierHz, beatHz float64, d time.Duration) error {
	p, err := e.planner.entrainment(EntrainmentRequest{CarrierHz: carrierHz, BeatHz: beatHz, Duration: d}, DefaultAmplitude)
	return e.play(ctx, p, err)
}

// PlayBath plays several frequencies as one session. Each is routed like a
// single tone; entrainment layers use partial-depth modulation.
func (e *Engine) PlayBath(ctx context.Context, hz []float64, opts BathOptions) error {
	p, err := e.planner.bath(BathRequest{Frequencies: hz, BathOptions: opts})
	return e.play(ctx, p, err)
}

func (e *Engine) play(ctx context.Context, p *plan, err error) error {
	if err != nil {
		e.metrics.RejectedTotal.Inc()
		return err
	}
	if e.isClosed() {
		return ErrClosed
	}

	// Rendering may take a while for long sessions; do it before taking
	// the lock so stop and status calls stay responsive.
	st, err := e.backend.prepare(ctx, p)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			e.metrics.RejectedTotal.Inc()
		}
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.stopLocked(reasonReplaced)

	e.ring.Reset()
	if err := st.start(); err != nil {
		_ = st.teardown()
		return err
	}

	e.gen++
	gen := e.gen
	s := &session{
		id:     uuid.New(),
		gen:    gen,
		plan:   p,
		stream: st,
		done:   make(chan struct{}),
	}
	s.timer = time.AfterFunc(p.duration, func() { e.expire(gen) })
	e.sess = s

	e.nominalHz.Store(math.Float64bits(p.nominalHz))
	e.intendedHz.Store(math.Float64bits(p.intendedHz))
	e.state.Store(int32(Playing))

	e.metrics.SessionsTotal.WithLabelValues(p.kind.String(), e.backend.name()).Inc()
	e.metrics.ActiveGenerators.Set(float64(len(p.voices)))
	e.log.Info("session started",
		zap.String("session", s.id.String()),
		zap.Stringer("kind", p.kind),
		zap.Float64("nominal_hz", p.nominalHz),
		zap.Float64("sounding_hz", p.intendedHz),
		zap.Int("voices", len(p.voices)),
		zap.Duration("duration", p.duration))
	return nil
}

// expire is the deadline callback. A callback for a replaced session does
// nothing.
func (e *Engine) expire(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil || e.sess.gen != gen {
		return
	}
	e.stopLocked(reasonDeadline)
}

// Stop ends the current session with a short release ramp and waits until
// every generator is disconnected. Without a session it does nothing.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(reasonExplicit)
}

func (e *Engine) stopLocked(reason string) {
	s := e.sess
	if s == nil {
		return
	}
	e.state.Store(int32(Stopping))
	s.timer.Stop()

	s.stream.release(e.cfg.Release)
	time.Sleep(e.cfg.Release)
	swallowed := s.stream.teardown()

	e.sess = nil
	e.state.Store(int32(Idle))
	close(s.done)

	e.metrics.StopsTotal.WithLabelValues(reason).Inc()
	e.metrics.ActiveGenerators.Set(0)
	if swallowed > 0 {
		e.metrics.TeardownSwallowedTotal.Add(float64(swallowed))
		e.log.Debug("ignored teardown of finalized handles",
			zap.String("session", s.id.String()),
			zap.Int("handles", swallowed))
	}
	e.log.Info("session stopped",
		zap.String("session", s.id.String()),
		zap.String("reason", reason))
}

// SetWaveform changes the waveform of a live simple tone. It reports false
// when no such tone is playing.
func (e *Engine) SetWaveform(w Waveform) bool {
	if !w.Valid() {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return false
	}
	return e.sess.stream.setWaveform(w)
}

// Wait blocks until the current session ends or ctx is done. It returns
// immediately when nothing is playing.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	s := e.sess
	e.mu.Unlock()
	if s == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsPlaying reports whether a session is active.
func (e *Engine) IsPlaying() bool {
	return e.State() == Playing
}

// State returns the playback state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// CurrentFrequency returns the last requested nominal frequency: the
// brainwave target for entrainment rather than its carrier, and the first
// layer of a bath. It is 0 before anything was played.
func (e *Engine) CurrentFrequency() float64 {
	return math.Float64frombits(e.nominalHz.Load())
}

// Degraded reports whether the engine runs on the simulated output.
func (e *Engine) Degraded() bool {
	return e.degraded
}

// SampleRate returns the output rate in Hz.
func (e *Engine) SampleRate() int {
	return e.out.SampleRate()
}

// Backend returns the active backend.
func (e *Engine) Backend() Backend {
	return e.cfg.Backend
}

// ActiveGenerators returns the number of generators of the current session
// still producing sound.
func (e *Engine) ActiveGenerators() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return 0
	}
	return e.sess.stream.generators()
}

// SessionID identifies the current session, or returns "" when idle.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return ""
	}
	return e.sess.id.String()
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Close stops playback and releases the output. Later requests fail with
// ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.stopLocked(reasonClosed)
	e.closed = true

	err := errors.Join(e.backend.close(), e.out.Close())
	e.log.Info("sound engine closed", zap.Error(err))
	return err
}
