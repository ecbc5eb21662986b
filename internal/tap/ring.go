// Package tap captures the most recent output of the engine so the spectrum
// analyzer can read it back without touching the audio path.
package tap

import "sync"

// Ring is a fixed-capacity circular buffer of mono samples. Writes never
// block or grow the buffer; once full, the oldest samples are overwritten.
// It is safe for one writer (the audio callback) and any number of readers.
type Ring struct {
	mu       sync.Mutex
	data     []float32
	capacity int
	size     int
	writePos int
	written  int64
}

// New creates a ring holding the last capacity samples.
func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		data:     make([]float32, capacity),
		capacity: capacity,
	}
}

// Write appends samples, overwriting the oldest ones when full.
func (r *Ring) Write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Only the tail can survive a write larger than the ring.
	if len(samples) > r.capacity {
		r.written += int64(len(samples) - r.capacity)
		samples = samples[len(samples)-r.capacity:]
	}
	for _, s := range samples {
		r.data[r.writePos] = s
		r.writePos = (r.writePos + 1) % r.capacity
	}
	r.size = min(r.size+len(samples), r.capacity)
	r.written += int64(len(samples))
}

// Latest returns up to n of the most recent samples in chronological order.
func (r *Ring) Latest(n int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	n = min(n, r.size)
	if n <= 0 {
		return []float32{}
	}
	out := make([]float32, n)
	start := (r.writePos - n + r.capacity) % r.capacity
	for i := range n {
		out[i] = r.data[(start+i)%r.capacity]
	}
	return out
}

// Len returns the number of samples currently held.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Written returns the total number of samples ever written.
func (r *Ring) Written() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Reset discards all captured samples.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.size = 0
	r.writePos = 0
	clear(r.data)
}

// Capacity returns the ring size in samples.
func (r *Ring) Capacity() int {
	return r.capacity
}
