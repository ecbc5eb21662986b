package soundbath

import (
	"errors"

	"github.com/tphakala/go-sound-bath/internal/device"
)

// Common errors returned by the engine.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrInvalidRequest indicates a play request that cannot be honored,
	// such as a non-positive frequency or duration. The current session is
	// left untouched.
	ErrInvalidRequest = errors.New("invalid playback request")

	// ErrInitialization indicates the output could not be started.
	ErrInitialization = errors.New("audio output initialization failed")

	// ErrUnavailable indicates that no audio device is available.
	ErrUnavailable = device.ErrUnavailable

	// ErrClosed is returned by requests made after Close.
	ErrClosed = errors.New("engine closed")
)
