package handler

import (
	"net/http"

	soundbath "github.com/tphakala/go-sound-bath"
	"github.com/tphakala/go-sound-bath/internal/model"
)

// Tone handles POST /v1/tone.
func (h *Handlers) Tone(w http.ResponseWriter, r *http.Request) {
	var req model.ToneRequest
	if !decode(w, r, &req) {
		return
	}
	wave, err := parseWaveform(req.Waveform)
	if err != nil {
		h.writeError(w, err)
		return
	}
	d, err := millis(req.DurationMs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	amp := soundbath.DefaultAmplitude
	if req.Amplitude != nil {
		amp = *req.Amplitude
	}

	err = h.player.PlayToneRequest(r.Context(), soundbath.ToneRequest{
		FrequencyHz: req.FrequencyHz,
		Duration:    d,
		Waveform:    wave,
		Amplitude:   amp,
	})
	h.started(w, err)
}

// Entrainment handles POST /v1/entrainment.
func (h *Handlers) Entrainment(w http.ResponseWriter, r *http.Request) {
	var req model.EntrainmentRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := millis(req.DurationMs)
	if err != nil {
		h.writeError(w, err)
		return
	}
	err = h.player.PlayEntrainment(r.Context(), req.CarrierHz, req.BeatHz, d)
	h.started(w, err)
}

// Bath handles POST /v1/bath.
func (h *Handlers) Bath(w http.ResponseWriter, r *http.Request) {
	var req model.BathRequest
	if !decode(w, r, &req) {
		return
	}
	wave, err := parseWaveform(req.Waveform)
	if err != nil {
		h.writeError(w, err)
		return
	}
	mode, err := soundbath.ParseBathMode(req.Mode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	d, err := millis(req.DurationMs)
	if err != nil {
		h.writeError(w, err)
		return
	}

	err = h.player.PlayBath(r.Context(), req.Frequencies, soundbath.BathOptions{
		Duration:    d,
		Waveform:    wave,
		Volumes:     req.Volumes,
		Mode:        mode,
		Progressive: req.Progressive,
	})
	h.started(w, err)
}

func (h *Handlers) started(w http.ResponseWriter, err error) {
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.PlayResponse{
		SessionID:   h.player.SessionID(),
		FrequencyHz: h.player.CurrentFrequency(),
	})
}

// Stop handles POST /v1/stop. Stopping while idle is not an error.
func (h *Handlers) Stop(w http.ResponseWriter, r *http.Request) {
	h.player.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// Waveform handles PUT /v1/waveform. Only a playing simple tone accepts
// the change; otherwise the response reports applied=false.
func (h *Handlers) Waveform(w http.ResponseWriter, r *http.Request) {
	var req model.WaveformRequest
	if !decode(w, r, &req) {
		return
	}
	wave, err := soundbath.ParseWaveform(req.Waveform)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.WaveformResponse{Applied: h.player.SetWaveform(wave)})
}

// parseWaveform defaults an empty name to sine.
func parseWaveform(name string) (soundbath.Waveform, error) {
	if name == "" {
		return soundbath.Sine, nil
	}
	return soundbath.ParseWaveform(name)
}
