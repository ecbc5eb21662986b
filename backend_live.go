package soundbath

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/tphakala/go-sound-bath/internal/graph"
	"github.com/tphakala/go-sound-bath/internal/mixer"
	"github.com/tphakala/go-sound-bath/internal/tap"
)

// liveBackend schedules oscillators on a graph the device pulls
// continuously.
type liveBackend struct {
	graph  *graph.Graph
	player Player
	log    *zap.Logger
}

func newLiveBackend(out Output, ring *tap.Ring, log *zap.Logger) *liveBackend {
	g := graph.New(out.SampleRate(), ring)
	p := out.NewPlayer(g)
	p.Play()
	return &liveBackend{graph: g, player: p, log: log}
}

func (b *liveBackend) name() string {
	return BackendLive.String()
}

func (b *liveBackend) prepare(_ context.Context, p *plan) (stream, error) {
	return &liveStream{b: b, plan: p}, nil
}

func (b *liveBackend) close() error {
	return b.player.Close()
}

type liveStream struct {
	b    *liveBackend
	plan *plan
	oscs []*graph.Oscillator
	mods []*graph.Modulator
}

func (s *liveStream) start() error {
	g := s.b.graph
	now := g.Now()
	headroom := mixer.Headroom(s.plan.voices)
	for _, v := range s.plan.voices {
		start := now + v.Onset
		gain := v.Gain * headroom
		level := gain
		if v.FadeIn.Duration > 0 {
			level = 0
		}
		osc := g.NewOscillator(graph.OscillatorOptions{
			Hz:       v.Hz,
			Waveform: v.Waveform,
			Level:    level,
			Start:    start,
			Stop:     now + v.End(),
		})
		if v.FadeIn.Duration > 0 {
			osc.SetValueAtTime(graph.Level, 0, start)
			osc.LinearRampToValueAtTime(graph.Level, gain, start+v.FadeIn.Duration)
		}
		osc.ScheduleEnvelope(v.Envelope.Points(), now+v.EnvelopeStart)
		if v.Mod != nil {
			s.mods = append(s.mods, osc.AttachModulator(*v.Mod, now))
		}
		s.oscs = append(s.oscs, osc)
	}
	return nil
}

func (s *liveStream) release(d time.Duration) {
	t := s.b.graph.Now()
	for _, o := range s.oscs {
		from := o.Release(t, d.Seconds())
		s.b.log.Debug("release scheduled",
			zap.Uint64("node", o.ID()),
			zap.Float64("from_gain", from),
			zap.Duration("ramp", d))
	}
}

func (s *liveStream) teardown() int {
	var swallowed int
	for _, m := range s.mods {
		swallowed += s.swallow(m.Disconnect())
	}
	for _, o := range s.oscs {
		swallowed += s.swallow(o.Disconnect())
	}
	s.oscs, s.mods = nil, nil
	return swallowed
}

func (s *liveStream) swallow(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, graph.ErrHandleFinalized) {
		return 1
	}
	s.b.log.Warn("disconnect failed", zap.Error(err))
	return 0
}

func (s *liveStream) setWaveform(w Waveform) bool {
	if !s.plan.simpleTone || len(s.oscs) == 0 {
		return false
	}
	for _, o := range s.oscs {
		o.SetWaveform(w)
	}
	return true
}

func (s *liveStream) generators() int {
	var n int
	for _, o := range s.oscs {
		if !o.Finalized() {
			n++
		}
	}
	return n
}
