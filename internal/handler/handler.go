// Package handler implements the HTTP control API of the sound engine.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	soundbath "github.com/tphakala/go-sound-bath"
	"github.com/tphakala/go-sound-bath/internal/model"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 64 << 10

	// maxDuration bounds durationMs before it is converted, so huge values
	// cannot overflow time.Duration.
	maxDuration = 24 * time.Hour
)

// Player is the part of *soundbath.Engine the handlers drive.
type Player interface {
	PlayToneRequest(ctx context.Context, req soundbath.ToneRequest) error
	PlayEntrainment(ctx context.Context, carrierHz, beatHz float64, d time.Duration) error
	PlayBath(ctx context.Context, hz []float64, opts soundbath.BathOptions) error
	Stop()
	SetWaveform(w soundbath.Waveform) bool

	State() soundbath.State
	SessionID() string
	CurrentFrequency() float64
	Backend() soundbath.Backend
	SampleRate() int
	Degraded() bool
	ActiveGenerators() int
	AnalysisSnapshot() (soundbath.AnalysisSnapshot, bool)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	player Player
	log    *zap.Logger
}

// NewHandlers creates handlers driving player.
func NewHandlers(player Player, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{player: player, log: logger}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto status codes.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, soundbath.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, soundbath.ErrClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusRequestTimeout
	default:
		h.log.Error("playback request failed", zap.Error(err))
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func millis(ms int64) (time.Duration, error) {
	if ms < 0 || ms > maxDuration.Milliseconds() {
		return 0, fmt.Errorf("%w: durationMs %d outside [0, %d]", soundbath.ErrInvalidRequest, ms, maxDuration.Milliseconds())
	}
	return time.Duration(ms) * time.Millisecond, nil
}
