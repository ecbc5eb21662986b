package device

import (
	"errors"
	"io"
	"sync"
	"time"
)

// DefaultTick is the pull period of simulated players.
const DefaultTick = 10 * time.Millisecond

// Simulated is a silent output that pulls streams at real-time pace and
// discards them. It stands in for a device that failed to open so the rest
// of the engine behaves as if audio were playing.
type Simulated struct {
	sampleRate int
	tick       time.Duration

	mu      sync.Mutex
	players map[*simPlayer]struct{}
}

// NewSimulated creates a simulated output. A non-positive tick uses
// DefaultTick.
func NewSimulated(sampleRate int, tick time.Duration) *Simulated {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Simulated{
		sampleRate: sampleRate,
		tick:       tick,
		players:    make(map[*simPlayer]struct{}),
	}
}

// SampleRate returns the simulated device rate.
func (s *Simulated) SampleRate() int {
	return s.sampleRate
}

// NewPlayer creates a paused player for r.
func (s *Simulated) NewPlayer(r io.Reader) Player {
	frames := max(1, int(s.tick.Seconds()*float64(s.sampleRate)))
	p := &simPlayer{
		out:  s,
		r:    r,
		tick: s.tick,
		buf:  make([]byte, frames*BytesPerFrame),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.players[p] = struct{}{}
	s.mu.Unlock()
	return p
}

// Close stops every player created by the output.
func (s *Simulated) Close() error {
	s.mu.Lock()
	players := make([]*simPlayer, 0, len(s.players))
	for p := range s.players {
		players = append(players, p)
	}
	s.mu.Unlock()

	for _, p := range players {
		_ = p.Close()
	}
	return nil
}

func (s *Simulated) forget(p *simPlayer) {
	s.mu.Lock()
	delete(s.players, p)
	s.mu.Unlock()
}

type simPlayer struct {
	out  *Simulated
	r    io.Reader
	tick time.Duration
	buf  []byte

	mu      sync.Mutex
	started bool
	playing bool
	err     error

	once sync.Once
	quit chan struct{}
	done chan struct{}
}

func (p *simPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started, p.playing = true, true
	go p.loop()
}

func (p *simPlayer) loop() {
	defer close(p.done)
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-p.quit:
			p.setStopped(nil)
			return
		case <-ticker.C:
			if _, err := io.ReadFull(p.r, p.buf); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					err = nil
				}
				p.setStopped(err)
				return
			}
		}
	}
}

func (p *simPlayer) setStopped(err error) {
	p.mu.Lock()
	p.playing = false
	p.err = err
	p.mu.Unlock()
}

func (p *simPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Err returns the read error that ended playback, if any.
func (p *simPlayer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *simPlayer) Close() error {
	p.once.Do(func() {
		close(p.quit)
		p.mu.Lock()
		started := p.started
		p.mu.Unlock()
		if started {
			<-p.done
		}
		p.out.forget(p)
	})
	return nil
}
