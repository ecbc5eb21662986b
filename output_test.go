package soundbath

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-sound-bath/internal/device"
)

const testRate = 8000

// manualOutput is an Output whose players are pulled by the test, so the
// audio clock only advances when the test says so.
type manualOutput struct {
	mu      sync.Mutex
	players []*manualPlayer
	closed  atomic.Bool
}

func (o *manualOutput) NewPlayer(r io.Reader) Player {
	p := &manualPlayer{r: r}
	o.mu.Lock()
	o.players = append(o.players, p)
	o.mu.Unlock()
	return p
}

func (o *manualOutput) SampleRate() int { return testRate }

func (o *manualOutput) Close() error {
	o.closed.Store(true)
	return nil
}

func (o *manualOutput) last() *manualPlayer {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.players) == 0 {
		return nil
	}
	return o.players[len(o.players)-1]
}

type manualPlayer struct {
	r       io.Reader
	playing atomic.Bool
	closed  atomic.Bool
}

func (p *manualPlayer) Play()           { p.playing.Store(true) }
func (p *manualPlayer) IsPlaying() bool { return p.playing.Load() && !p.closed.Load() }
func (p *manualPlayer) Close() error {
	p.closed.Store(true)
	return nil
}

// pull reads up to frames stereo frames and returns both channels.
func (p *manualPlayer) pull(t *testing.T, frames int) (left, right []float64, eof bool) {
	t.Helper()
	buf := make([]byte, frames*device.BytesPerFrame)
	got := 0
	for got < len(buf) {
		n, err := p.r.Read(buf[got:])
		got += n
		if errors.Is(err, io.EOF) {
			eof = true
			break
		}
		require.NoError(t, err)
		if n == 0 {
			break
		}
	}
	for off := 0; off+device.BytesPerFrame <= got; off += device.BytesPerFrame {
		left = append(left, float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))))
		right = append(right, float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+device.BytesPerSample:]))))
	}
	return left, right, eof
}

func testConfig(out Output, backend Backend) Config {
	cfg := DefaultConfig()
	cfg.SampleRate = testRate
	cfg.Backend = backend
	cfg.Release = 10 * time.Millisecond
	cfg.Output = out
	return cfg
}

func newTestEngine(t *testing.T, backend Backend) (*Engine, *manualOutput) {
	t.Helper()
	out := &manualOutput{}
	e, err := New(testConfig(out, backend))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, out
}

func metricValue(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}
