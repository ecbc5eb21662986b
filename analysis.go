package soundbath

import "math"

// AnalysisSnapshot is a coarse view of the output for visualization.
type AnalysisSnapshot struct {
	// PeakHz is the measured dominant frequency.
	PeakHz float64

	// DisplayHz is the intended frequency when locked, else PeakHz.
	DisplayHz float64

	// IsLocked reports whether PeakHz matches the sounding frequency.
	IsLocked bool

	// NormalizedSpectrum holds per-band loudness in [0, 1].
	NormalizedSpectrum []float64

	// IntendedHz is the frequency expected to dominate: the tone, the
	// carrier of a beat or the first layer of a bath.
	IntendedHz float64

	// LevelDBFS is the RMS level of the analysed block.
	LevelDBFS float64
}

// AnalysisSnapshot analyses the most recent output. It reports false when
// idle or before a full analysis block has been captured.
func (e *Engine) AnalysisSnapshot() (AnalysisSnapshot, bool) {
	if !e.IsPlaying() {
		return AnalysisSnapshot{}, false
	}
	size := e.analyzer.Config().FFTSize
	block := e.ring.Latest(size)
	if len(block) < size {
		return AnalysisSnapshot{}, false
	}

	intended := math.Float64frombits(e.intendedHz.Load())
	res, err := e.analyzer.Analyze(block, intended)
	if err != nil {
		return AnalysisSnapshot{}, false
	}
	return AnalysisSnapshot{
		PeakHz:             res.PeakHz,
		DisplayHz:          res.DisplayHz,
		IsLocked:           res.Locked,
		NormalizedSpectrum: res.Bands,
		IntendedHz:         intended,
		LevelDBFS:          res.RMSDBFS,
	}, true
}
