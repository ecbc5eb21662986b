// Package device connects sample streams to the platform audio output.
//
// Streams are interleaved stereo float32 little-endian at the output rate.
package device

import (
	"errors"
	"io"
)

// Output stream format.
const (
	Channels       = 2
	BytesPerSample = 4
	BytesPerFrame  = Channels * BytesPerSample
)

// ErrUnavailable is returned when no audio device can be opened.
var ErrUnavailable = errors.New("audio output unavailable")

// Player plays one stream. *oto.Player satisfies it.
type Player interface {
	Play()
	IsPlaying() bool
	Close() error
}

// Output creates players on an opened audio device.
type Output interface {
	NewPlayer(r io.Reader) Player
	SampleRate() int
	Close() error
}
