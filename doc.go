// Package soundbath synthesizes and plays tones, brainwave-entrainment beats
// and multi-frequency sound baths.
//
// An [Engine] owns a single playback session. Starting new sound always stops
// whatever played before, with a short release ramp so nothing clicks.
//
// # Frequency routing
//
// Every requested frequency is classified before synthesis:
//
//   - Below the speaker floor (80 Hz by default, including inaudible rates
//     under 20 Hz) the frequency is played as an audible 200 Hz carrier
//     modulated at the requested rate.
//   - Between the floor and 15 kHz it is played as-is.
//   - Above 15 kHz it is clamped.
//
// The thresholds are configurable through [Thresholds].
//
// # Quick Start
//
//	engine, err := soundbath.New(soundbath.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	// A 528 Hz tone for ten seconds.
//	err = engine.PlayTone(ctx, 528, 10*time.Second, soundbath.Sine)
//
//	// A 4 Hz theta beat on the default carrier, blended with 528 Hz.
//	err = engine.PlayBath(ctx, []float64{4, 528}, soundbath.BathOptions{
//	    Duration: 10 * time.Minute,
//	    Mode:     soundbath.Blend,
//	})
//
//	engine.Wait(ctx)
//
// # Backends
//
// Two output backends sit behind the same API. [BackendLive] drives a
// scheduled oscillator graph pulled by the audio device on its own clock.
// [BackendRendered] renders the whole session to 16-bit PCM first, encodes
// it as WAV and streams that to the device. Standalone beats render as
// stereo binaural beats in this mode.
//
// When the audio device cannot be opened the engine degrades to a silent,
// real-time simulated output: requests are still accepted and
// [Engine.Degraded] reports true.
//
// # Offline rendering
//
// [RenderTone], [RenderEntrainment] and [RenderBath] produce PCM without
// touching any device, for export to WAV files.
package soundbath
