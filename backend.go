package soundbath

import (
	"context"
	"time"
)

// backend turns plans into sound on the output. prepare is pure and may
// run outside the engine lock; the returned stream is started under it.
type backend interface {
	name() string
	prepare(ctx context.Context, p *plan) (stream, error)
	close() error
}

// stream is the sound of one session.
type stream interface {
	// start begins playback.
	start() error

	// release ramps the output from its current level to silence over d.
	release(d time.Duration)

	// teardown disconnects every generator and modulation handle. It
	// returns how many handles had already finalized on their own.
	teardown() int

	// setWaveform changes the waveform of a live simple tone.
	setWaveform(w Waveform) bool

	// generators returns the number of handles still producing sound.
	generators() int
}
