// Package model holds the JSON bodies of the control API.
package model

type ToneRequest struct {
	FrequencyHz float64  `json:"frequencyHz"`
	DurationMs  int64    `json:"durationMs"`
	Waveform    string   `json:"waveform,omitempty"`
	Amplitude   *float64 `json:"amplitude,omitempty"`
}

type EntrainmentRequest struct {
	CarrierHz  float64 `json:"carrierHz"`
	BeatHz     float64 `json:"beatHz"`
	DurationMs int64   `json:"durationMs"`
}

type BathRequest struct {
	Frequencies []float64 `json:"frequencies"`
	DurationMs  int64     `json:"durationMs"`
	Waveform    string    `json:"waveform,omitempty"`
	Volumes     []float64 `json:"volumes,omitempty"`
	Mode        string    `json:"mode,omitempty"`
	Progressive bool      `json:"progressive,omitempty"`
}

type WaveformRequest struct {
	Waveform string `json:"waveform"`
}

// PlayResponse is returned when a session starts.
type PlayResponse struct {
	SessionID   string  `json:"sessionId"`
	FrequencyHz float64 `json:"frequencyHz"`
}

type WaveformResponse struct {
	Applied bool `json:"applied"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
