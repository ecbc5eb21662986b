package handler

import (
	"net/http"

	soundbath "github.com/tphakala/go-sound-bath"
	"github.com/tphakala/go-sound-bath/internal/model"
)

// Status handles GET /v1/status.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	state := h.player.State()
	writeJSON(w, http.StatusOK, model.StatusResponse{
		State:            state.String(),
		Playing:          state == soundbath.Playing,
		SessionID:        h.player.SessionID(),
		FrequencyHz:      h.player.CurrentFrequency(),
		Backend:          h.player.Backend().String(),
		SampleRate:       h.player.SampleRate(),
		Degraded:         h.player.Degraded(),
		ActiveGenerators: h.player.ActiveGenerators(),
	})
}

// Analysis handles GET /v1/analysis. It answers 204 while idle or before
// enough output has been captured.
func (h *Handlers) Analysis(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.player.AnalysisSnapshot()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, model.AnalysisResponse{
		PeakHz:     snap.PeakHz,
		DisplayHz:  snap.DisplayHz,
		IntendedHz: snap.IntendedHz,
		Locked:     snap.IsLocked,
		LevelDBFS:  snap.LevelDBFS,
		Spectrum:   snap.NormalizedSpectrum,
	})
}
