package model

type StatusResponse struct {
	State            string  `json:"state"`
	Playing          bool    `json:"playing"`
	SessionID        string  `json:"sessionId,omitempty"`
	FrequencyHz      float64 `json:"frequencyHz"`
	Backend          string  `json:"backend"`
	SampleRate       int     `json:"sampleRate"`
	Degraded         bool    `json:"degraded"`
	ActiveGenerators int     `json:"activeGenerators"`
}

type AnalysisResponse struct {
	PeakHz     float64   `json:"peakHz"`
	DisplayHz  float64   `json:"displayHz"`
	IntendedHz float64   `json:"intendedHz"`
	Locked     bool      `json:"locked"`
	LevelDBFS  float64   `json:"levelDbfs"`
	Spectrum   []float64 `json:"spectrum"`
}
