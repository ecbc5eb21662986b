// Command soundbath-analyze renders test signals, or reads a WAV file, and
// prints what the spectrum analyzer makes of them.
//
// Usage:
//
//	soundbath-analyze                 # sweep of routed test tones
//	soundbath-analyze 7.83 432 16000  # chosen frequencies
//	soundbath-analyze -in bath.wav    # analyse the middle of a file
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	soundbath "github.com/tphakala/go-sound-bath"
	"github.com/tphakala/go-sound-bath/internal/analyzer"
	"github.com/tphakala/go-sound-bath/internal/wavfile"
)

const (
	// Rendering length of each test tone.
	toneDuration = 500 * time.Millisecond

	// Display
	barWidth = 32
	int16Max = 32768.0
)

// sweep covers every routing band and both threshold edges.
var sweep = []float64{4, 19.99, 20, 79.99, 80, 440, 1000, 14999, 15000, 18000}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "", "Analyse a WAV file instead of test tones")
	rate := flag.Int("rate", soundbath.DefaultSampleRate, "Sample rate for test tones")
	fftSize := flag.Int("fft", analyzer.DefaultFFTSize, "FFT size")
	bars := flag.Bool("bars", false, "Print band bars")
	flag.Parse()

	acfg := analyzer.DefaultConfig()
	acfg.FFTSize = *fftSize

	if *in != "" {
		return analyzeFile(*in, acfg, *bars)
	}

	freqs := sweep
	if flag.NArg() > 0 {
		freqs = make([]float64, flag.NArg())
		for i, a := range flag.Args() {
			f, err := strconv.ParseFloat(a, 64)
			if err != nil {
				return fmt.Errorf("invalid frequency %q: %w", a, err)
			}
			freqs[i] = f
		}
	}

	a, err := analyzer.New(acfg, *rate)
	if err != nil {
		return err
	}
	fmt.Println("=== Analyzer lock per routed tone ===")
	fmt.Printf("FFT %d at %d Hz, bin width %.2f Hz\n\n", acfg.FFTSize, *rate, a.BinWidth())
	fmt.Printf("%10s %10s %10s %10s %8s\n", "requested", "sounding", "peak", "display", "locked")

	cfg := soundbath.DefaultConfig()
	cfg.SampleRate = *rate
	for _, hz := range freqs {
		r, err := soundbath.RenderTone(context.Background(), cfg, soundbath.ToneRequest{
			FrequencyHz: hz,
			Duration:    toneDuration,
			Amplitude:   soundbath.DefaultAmplitude,
		})
		if err != nil {
			return err
		}
		sounding := soundingHz(cfg, hz)
		res, err := a.Analyze(middleBlock(r.Samples, r.Channels, acfg.FFTSize), sounding)
		if err != nil {
			return err
		}
		fmt.Printf("%10.2f %10.2f %10.2f %10.2f %8t\n", hz, sounding, res.PeakHz, res.DisplayHz, res.Locked)
		if *bars {
			printBars(res.Bands)
		}
	}
	return nil
}

func analyzeFile(path string, acfg analyzer.Config, bars bool) error {
	h, samples, err := wavfile.ReadFile(path)
	if err != nil {
		return err
	}
	a, err := analyzer.New(acfg, h.SampleRate)
	if err != nil {
		return err
	}
	block := middleBlock(samples, h.Channels, acfg.FFTSize)
	res, err := a.Analyze(block, 0)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d Hz, %d channels, %d frames\n", path, h.SampleRate, h.Channels, h.Frames())
	fmt.Printf("  Peak: %.2f Hz (bin %d)\n", res.PeakHz, res.PeakBin)
	fmt.Printf("  Level: %.1f dBFS\n", res.RMSDBFS)
	if bars {
		printBars(res.Bands)
	}
	return nil
}

// soundingHz mirrors the routing so lock is judged against the carrier for
// sub-floor tones and the ceiling for clamped ones.
func soundingHz(cfg soundbath.Config, hz float64) float64 {
	t := cfg.Thresholds
	switch {
	case hz < t.SpeakerMinHz:
		return t.CarrierHz
	case hz > t.MaxPracticalHz:
		return t.MaxPracticalHz
	default:
		return hz
	}
}

// middleBlock takes size mono frames from the middle of interleaved PCM,
// using the first channel.
func middleBlock(samples []int16, channels, size int) []float32 {
	frames := len(samples) / channels
	start := max(0, (frames-size)/2)
	n := min(size, frames)
	block := make([]float32, n)
	for i := range n {
		block[i] = float32(samples[(start+i)*channels]) / int16Max
	}
	return block
}

func printBars(bands []float64) {
	for i, v := range bands {
		fmt.Printf("    %2d %s\n", i, strings.Repeat("#", int(math.Round(v*barWidth))))
	}
}
