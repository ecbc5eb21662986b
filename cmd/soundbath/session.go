package main

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	soundbath "github.com/tphakala/go-sound-bath"
)

// currentWave tracks the waveform cycled by the w key.
var currentWave = soundbath.Sine

type sessionOptions struct {
	duration    time.Duration
	wave        string
	mode        string
	progressive bool
	volumes     string
}

type startFunc func(ctx context.Context, e *soundbath.Engine) error

// parseSession turns the positional arguments into a session starter.
func parseSession(args []string, opts sessionOptions) (startFunc, error) {
	wave, err := soundbath.ParseWaveform(opts.wave)
	if err != nil {
		return nil, err
	}
	hz, err := parseFloats(args[1:])
	if err != nil {
		return nil, err
	}

	switch args[0] {
	case "tone":
		if len(hz) != 1 {
			return nil, fmt.Errorf("tone takes one frequency, got %d", len(hz))
		}
		currentWave = wave
		return func(ctx context.Context, e *soundbath.Engine) error {
			return e.PlayTone(ctx, hz[0], opts.duration, wave)
		}, nil

	case "beat":
		if len(hz) != 2 {
			return nil, fmt.Errorf("beat takes a carrier and a beat frequency, got %d values", len(hz))
		}
		return func(ctx context.Context, e *soundbath.Engine) error {
			return e.PlayEntrainment(ctx, hz[0], hz[1], opts.duration)
		}, nil

	case "bath":
		mode, err := soundbath.ParseBathMode(opts.mode)
		if err != nil {
			return nil, err
		}
		var volumes []float64
		if opts.volumes != "" {
			if volumes, err = parseFloats(strings.Split(opts.volumes, ",")); err != nil {
				return nil, err
			}
		}
		bath := soundbath.BathOptions{
			Duration:    opts.duration,
			Waveform:    wave,
			Volumes:     volumes,
			Mode:        mode,
			Progressive: opts.progressive,
		}
		return func(ctx context.Context, e *soundbath.Engine) error {
			return e.PlayBath(ctx, hz, bath)
		}, nil

	default:
		return nil, fmt.Errorf("unknown session %q: want tone, beat or bath", args[0])
	}
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", a, err)
		}
		out[i] = f
	}
	return out, nil
}

func nextWaveform(w soundbath.Waveform) soundbath.Waveform {
	return (w + 1) % (soundbath.Triangle + 1)
}

// formatSnapshot renders the spectrum as one bar per band.
func formatSnapshot(s soundbath.AnalysisSnapshot, width int) string {
	var b strings.Builder
	lock := "searching"
	if s.IsLocked {
		lock = "locked"
	}
	fmt.Fprintf(&b, "%.2f Hz (peak %.2f Hz, %s, %.1f dBFS)\r\n", s.DisplayHz, s.PeakHz, lock, s.LevelDBFS)
	for i, v := range s.NormalizedSpectrum {
		n := int(math.Round(v * float64(width)))
		fmt.Fprintf(&b, "%2d %s\r\n", i, strings.Repeat("#", n))
	}
	return b.String()
}
