// Command soundbath plays tones, entrainment beats and sound baths on the
// default audio device.
//
// Usage:
//
//	soundbath tone 528                         # 528 Hz sine for 30s
//	soundbath -wave tri -duration 2m tone 7.83 # sub-floor tone, played as a beat on 200 Hz
//	soundbath beat 200 10                      # 200 Hz carrier modulated at 10 Hz
//	soundbath -progressive bath 4 432 528      # layered bath, layers enter one by one
//
// When stdin is a terminal, keys control playback: w cycles the waveform of
// a simple tone, a prints the spectrum, s stops and q quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	soundbath "github.com/tphakala/go-sound-bath"
)

const (
	// CLI defaults
	defaultDuration = 30 * time.Second
	minRequiredArgs = 2

	// Width of the spectrum bars printed by the a key.
	barWidth = 40
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	duration := flag.Duration("duration", defaultDuration, "Session length")
	wave := flag.String("wave", "sine", "Waveform: sine, square, saw, tri")
	backend := flag.String("backend", "live", "Playback backend: live or rendered")
	mode := flag.String("mode", "blend", "Bath mode: blend or sequence")
	progressive := flag.Bool("progressive", false, "Stagger bath layers")
	volumes := flag.String("volumes", "", "Comma separated bath layer volumes, 0-100")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] tone HZ | beat CARRIER BEAT | bath HZ...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		return errors.New("insufficient arguments")
	}

	opts := sessionOptions{
		duration:    *duration,
		wave:        *wave,
		mode:        *mode,
		progressive: *progressive,
		volumes:     *volumes,
	}
	start, err := parseSession(args, opts)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer func() { _ = logger.Sync() }()

	cfg := soundbath.DefaultConfig()
	cfg.Logger = logger
	if cfg.Backend, err = soundbath.ParseBackend(*backend); err != nil {
		return err
	}

	engine, err := soundbath.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()
	if engine.Degraded() {
		fmt.Fprintln(os.Stderr, "warning: no audio device, playing silently")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := start(ctx, engine); err != nil {
		return err
	}
	fmt.Printf("Playing %.2f Hz (%s, %s backend) for %v\n",
		engine.CurrentFrequency(), args[0], engine.Backend(), *duration)

	done := make(chan struct{})
	go func() {
		_ = engine.Wait(ctx)
		close(done)
	}()

	keys, restore := readKeys()
	defer restore()

	for {
		select {
		case <-ctx.Done():
			engine.Stop()
			return nil
		case <-done:
			return nil
		case k := <-keys:
			if quit := handleKey(engine, k); quit {
				engine.Stop()
				return nil
			}
		}
	}
}

// handleKey applies one control key and reports whether to quit.
func handleKey(engine *soundbath.Engine, k byte) bool {
	switch k {
	case 'w':
		next := nextWaveform(currentWave)
		if engine.SetWaveform(next) {
			currentWave = next
			fmt.Printf("waveform: %s\r\n", next)
		} else {
			fmt.Print("waveform can only change on a simple tone\r\n")
		}
	case 'a':
		snap, ok := engine.AnalysisSnapshot()
		if !ok {
			fmt.Print("no analysis yet\r\n")
			return false
		}
		fmt.Print(formatSnapshot(snap, barWidth))
	case 's':
		engine.Stop()
		fmt.Print("stopped\r\n")
	case 'q', 3: // 3 is Ctrl-C in raw mode
		return true
	}
	return false
}
