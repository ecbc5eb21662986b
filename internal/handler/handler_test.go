package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	soundbath "github.com/tphakala/go-sound-bath"
	"github.com/tphakala/go-sound-bath/internal/middleware"
	"github.com/tphakala/go-sound-bath/internal/model"
)

// fakePlayer records calls and validates like the engine does.
type fakePlayer struct {
	tone   *soundbath.ToneRequest
	beat   *soundbath.EntrainmentRequest
	bath   *soundbath.BathRequest
	wave   soundbath.Waveform
	stops  int
	simple bool
	err    error
	snap   *soundbath.AnalysisSnapshot
}

func (f *fakePlayer) PlayToneRequest(_ context.Context, req soundbath.ToneRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	f.tone = &req
	return f.err
}

func (f *fakePlayer) PlayEntrainment(_ context.Context, c, b float64, d time.Duration) error {
	req := soundbath.EntrainmentRequest{CarrierHz: c, BeatHz: b, Duration: d}
	if err := req.Validate(); err != nil {
		return err
	}
	f.beat = &req
	return f.err
}

func (f *fakePlayer) PlayBath(_ context.Context, hz []float64, opts soundbath.BathOptions) error {
	req := soundbath.BathRequest{Frequencies: hz, BathOptions: opts}
	if err := req.Validate(); err != nil {
		return err
	}
	f.bath = &req
	return f.err
}

func (f *fakePlayer) Stop() { f.stops++ }

func (f *fakePlayer) SetWaveform(w soundbath.Waveform) bool {
	f.wave = w
	return f.simple
}

func (f *fakePlayer) State() soundbath.State {
	if f.tone != nil || f.beat != nil || f.bath != nil {
		return soundbath.Playing
	}
	return soundbath.Idle
}

func (f *fakePlayer) SessionID() string {
	if f.State() == soundbath.Playing {
		return "session-1"
	}
	return ""
}

func (f *fakePlayer) CurrentFrequency() float64 {
	if f.tone != nil {
		return f.tone.FrequencyHz
	}
	return 0
}

func (f *fakePlayer) Backend() soundbath.Backend { return soundbath.BackendLive }
func (f *fakePlayer) SampleRate() int            { return 44100 }
func (f *fakePlayer) Degraded() bool             { return true }
func (f *fakePlayer) ActiveGenerators() int      { return 1 }

func (f *fakePlayer) AnalysisSnapshot() (soundbath.AnalysisSnapshot, bool) {
	if f.snap == nil {
		return soundbath.AnalysisSnapshot{}, false
	}
	return *f.snap, true
}

func serve(t *testing.T, p Player, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := NewRouter(NewHandlers(p, nil), RouterOptions{})
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakePlayer{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestTone(t *testing.T) {
	p := &fakePlayer{}
	rec := serve(t, p, http.MethodPost, "/v1/tone", `{"frequencyHz":528,"durationMs":1500,"waveform":"tri"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NotNil(t, p.tone)
	assert.InDelta(t, 528.0, p.tone.FrequencyHz, 0)
	assert.Equal(t, 1500*time.Millisecond, p.tone.Duration)
	assert.Equal(t, soundbath.Triangle, p.tone.Waveform)
	assert.InDelta(t, soundbath.DefaultAmplitude, p.tone.Amplitude, 0)

	var resp model.PlayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session-1", resp.SessionID)
	assert.InDelta(t, 528.0, resp.FrequencyHz, 0)
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/v1/tone", `{"frequencyHz":`},
		{"unknown field", "/v1/tone", `{"frequencyHz":440,"durationMs":100,"pitch":3}`},
		{"zero frequency", "/v1/tone", `{"frequencyHz":0,"durationMs":100}`},
		{"zero duration", "/v1/tone", `{"frequencyHz":440}`},
		{"loud", "/v1/tone", `{"frequencyHz":440,"durationMs":100,"amplitude":1.5}`},
		{"unknown waveform", "/v1/tone", `{"frequencyHz":440,"durationMs":100,"waveform":"noise"}`},
		{"beat above carrier", "/v1/entrainment", `{"carrierHz":200,"beatHz":300,"durationMs":100}`},
		{"empty bath", "/v1/bath", `{"frequencies":[],"durationMs":100}`},
		{"bath volume", "/v1/bath", `{"frequencies":[440],"volumes":[120],"durationMs":100}`},
		{"bath mode", "/v1/bath", `{"frequencies":[440],"mode":"shuffle","durationMs":100}`},
		{"negative duration", "/v1/tone", `{"frequencyHz":440,"durationMs":-5}`},
		{"overflowing duration", "/v1/tone", `{"frequencyHz":440,"durationMs":9223372036854775807}`},
		{"day-long beat", "/v1/entrainment", `{"carrierHz":200,"beatHz":10,"durationMs":86400001}`},
		{"day-long bath", "/v1/bath", `{"frequencies":[440],"durationMs":86400001}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlayer{}
			rec := serve(t, p, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, soundbath.Idle, p.State())

			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestEntrainmentAndBath(t *testing.T) {
	p := &fakePlayer{}
	rec := serve(t, p, http.MethodPost, "/v1/entrainment", `{"carrierHz":200,"beatHz":10,"durationMs":2000}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, p.beat)
	assert.InDelta(t, 10.0, p.beat.BeatHz, 0)

	rec = serve(t, p, http.MethodPost, "/v1/bath",
		`{"frequencies":[4,528],"volumes":[100,50],"durationMs":10000,"mode":"sequence","progressive":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, p.bath)
	assert.Equal(t, []float64{4, 528}, p.bath.Frequencies)
	assert.Equal(t, []float64{100, 50}, p.bath.Volumes)
	assert.Equal(t, soundbath.Sequence, p.bath.Mode)
	assert.True(t, p.bath.Progressive)
	assert.Equal(t, 10*time.Second, p.bath.Duration)
}

func TestEngineErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{soundbath.ErrClosed, http.StatusServiceUnavailable},
		{context.Canceled, http.StatusRequestTimeout},
		{errors.New("device exploded"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := serve(t, &fakePlayer{err: tt.err}, http.MethodPost, "/v1/tone", `{"frequencyHz":440,"durationMs":100}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestStopAndWaveform(t *testing.T) {
	p := &fakePlayer{simple: true}
	rec := serve(t, p, http.MethodPost, "/v1/stop", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, p.stops)

	rec = serve(t, p, http.MethodPut, "/v1/waveform", `{"waveform":"square"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"applied":true}`, rec.Body.String())
	assert.Equal(t, soundbath.Square, p.wave)

	rec = serve(t, p, http.MethodPut, "/v1/waveform", `{"waveform":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusAndAnalysis(t *testing.T) {
	p := &fakePlayer{}
	rec := serve(t, p, http.MethodGet, "/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st model.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "idle", st.State)
	assert.False(t, st.Playing)
	assert.True(t, st.Degraded)
	assert.Equal(t, "live", st.Backend)

	rec = serve(t, p, http.MethodGet, "/v1/analysis", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	p.snap = &soundbath.AnalysisSnapshot{PeakHz: 441, DisplayHz: 440, IntendedHz: 440, IsLocked: true, NormalizedSpectrum: []float64{0, 1}}
	rec = serve(t, p, http.MethodGet, "/v1/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var a model.AnalysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.True(t, a.Locked)
	assert.InDelta(t, 440.0, a.DisplayHz, 0)
	assert.Equal(t, []float64{0, 1}, a.Spectrum)
}

func TestCORSPreflight(t *testing.T) {
	r := NewRouter(NewHandlers(&fakePlayer{}, nil), RouterOptions{AllowedOrigins: []string{"https://app.example"}})
	req := httptest.NewRequest(http.MethodOptions, "/v1/tone", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithEngine(t *testing.T) {
	cfg := soundbath.DefaultConfig()
	cfg.SampleRate = 8000
	cfg.OpenOutput = func(int) (soundbath.Output, error) { return nil, soundbath.ErrUnavailable }
	e, err := soundbath.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	require.True(t, e.Degraded())

	rec := serve(t, e, http.MethodPost, "/v1/tone", `{"frequencyHz":7.83,"durationMs":5000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(t, e, http.MethodGet, "/v1/status", "")
	var st model.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.Playing)
	assert.NotEmpty(t, st.SessionID)
	assert.InDelta(t, 7.83, st.FrequencyHz, 0)

	rec = serve(t, e, http.MethodPost, "/v1/stop", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, soundbath.Idle, e.State())
}
