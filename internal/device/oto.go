//go:build !headless

package device

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// otoBufferFrames keeps output latency near 20 ms at 48 kHz.
const otoBufferFrames = 1024

type otoOutput struct {
	ctx        *oto.Context
	sampleRate int
}

// Open opens the platform audio device. Only one device may be open per
// process.
func Open(sampleRate int) (Output, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferDuration(sampleRate),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	<-ready

	return &otoOutput{ctx: ctx, sampleRate: sampleRate}, nil
}

func (o *otoOutput) NewPlayer(r io.Reader) Player {
	return o.ctx.NewPlayer(r)
}

func (o *otoOutput) SampleRate() int {
	return o.sampleRate
}

// Close suspends the device; oto contexts live for the whole process.
func (o *otoOutput) Close() error {
	return o.ctx.Suspend()
}

func bufferDuration(sampleRate int) time.Duration {
	return time.Duration(otoBufferFrames) * time.Second / time.Duration(max(sampleRate, 1))
}
