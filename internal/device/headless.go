//go:build headless

package device

// Open always fails in headless builds.
func Open(sampleRate int) (Output, error) {
	return nil, ErrUnavailable
}
