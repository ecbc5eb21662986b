// Command soundbath-render writes tones, beats and baths to 16-bit WAV files.
//
// Usage:
//
//	soundbath-render -o tone.wav tone 440
//	soundbath-render -o beat.wav -duration 1m beat 200 7.83
//	soundbath-render -o bath.wav -progressive bath 4 432 528 963
//
// Beats are written as binaural stereo, everything else as mono.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	soundbath "github.com/tphakala/go-sound-bath"
)

const (
	// CLI defaults
	defaultDuration = 10 * time.Second
	minRequiredArgs = 2
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	output := flag.String("o", "out.wav", "Output WAV file")
	rate := flag.Int("rate", soundbath.DefaultSampleRate, "Sample rate in Hz")
	duration := flag.Duration("duration", defaultDuration, "Length of the rendering")
	wave := flag.String("wave", "sine", "Waveform: sine, square, saw, tri")
	amplitude := flag.Float64("amplitude", soundbath.DefaultAmplitude, "Tone amplitude, 0-1")
	mode := flag.String("mode", "blend", "Bath mode: blend or sequence")
	progressive := flag.Bool("progressive", false, "Stagger bath layers")
	maxRender := flag.Duration("max-render", soundbath.DefaultMaxRenderDuration, "Longest rendering accepted; it is held in memory")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] tone HZ | beat CARRIER BEAT | bath HZ...\n\n", os.Args[0])
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}

	w, err := soundbath.ParseWaveform(*wave)
	if err != nil {
		return err
	}
	hz := make([]float64, len(args)-1)
	for i, a := range args[1:] {
		if hz[i], err = strconv.ParseFloat(a, 64); err != nil {
			return fmt.Errorf("invalid frequency %q: %w", a, err)
		}
	}

	cfg := soundbath.DefaultConfig()
	cfg.SampleRate = *rate
	cfg.MaxRenderDuration = *maxRender

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	var r *soundbath.Rendered
	switch strings.ToLower(args[0]) {
	case "tone":
		if len(hz) != 1 {
			return fmt.Errorf("tone takes one frequency, got %d", len(hz))
		}
		r, err = soundbath.RenderTone(ctx, cfg, soundbath.ToneRequest{
			FrequencyHz: hz[0],
			Duration:    *duration,
			Waveform:    w,
			Amplitude:   *amplitude,
		})
	case "beat":
		if len(hz) != 2 {
			return fmt.Errorf("beat takes a carrier and a beat frequency, got %d values", len(hz))
		}
		r, err = soundbath.RenderEntrainment(ctx, cfg, soundbath.EntrainmentRequest{
			CarrierHz: hz[0],
			BeatHz:    hz[1],
			Duration:  *duration,
		})
	case "bath":
		m, perr := soundbath.ParseBathMode(*mode)
		if perr != nil {
			return perr
		}
		r, err = soundbath.RenderBath(ctx, cfg, hz, soundbath.BathOptions{
			Duration:    *duration,
			Waveform:    w,
			Mode:        m,
			Progressive: *progressive,
		})
	default:
		return fmt.Errorf("unknown session %q: want tone, beat or bath", args[0])
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := r.WriteFile(*output); err != nil {
		return err
	}

	fmt.Printf("Rendered %s -> %s\n", args[0], filepath.Base(*output))
	fmt.Printf("  %d Hz, %d channels, 16-bit, %v\n", r.SampleRate, r.Channels, r.Duration())
	fmt.Printf("  Speed: %.1fx realtime\n", r.Duration().Seconds()/elapsed.Seconds())
	return nil
}
