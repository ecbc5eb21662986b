// Package config loads the daemon configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	Development    bool

	SampleRate int
	Backend    string
	Headless   bool

	MinFade   time.Duration
	Release   time.Duration
	MaxRender time.Duration

	MinAudibleHz   float64
	SpeakerMinHz   float64
	MaxPracticalHz float64
	CarrierHz      float64

	ShutdownTimeout time.Duration
}

// Load reads the configuration, falling back to defaults for unset or
// unparsable variables.
func Load() *Config {
	return &Config{
		ListenAddr:      envStr("SOUNDBATH_LISTEN_ADDR", ":8080"),
		AllowedOrigins:  envList("SOUNDBATH_ALLOWED_ORIGINS", []string{"*"}),
		Development:     envBool("SOUNDBATH_DEV", false),
		SampleRate:      envInt("SOUNDBATH_SAMPLE_RATE", 44100),
		Backend:         envStr("SOUNDBATH_BACKEND", "live"),
		Headless:        envBool("SOUNDBATH_HEADLESS", false),
		MinFade:         envDuration("SOUNDBATH_MIN_FADE", 100*time.Millisecond),
		Release:         envDuration("SOUNDBATH_RELEASE", 50*time.Millisecond),
		MaxRender:       envDuration("SOUNDBATH_MAX_RENDER", 10*time.Minute),
		MinAudibleHz:    envFloat("SOUNDBATH_MIN_AUDIBLE_HZ", 20),
		SpeakerMinHz:    envFloat("SOUNDBATH_SPEAKER_MIN_HZ", 80),
		MaxPracticalHz:  envFloat("SOUNDBATH_MAX_PRACTICAL_HZ", 15000),
		CarrierHz:       envFloat("SOUNDBATH_CARRIER_HZ", 200),
		ShutdownTimeout: envDuration("SOUNDBATH_SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
