package effect

import "errors"

var (
	// ErrCoreEffect indicates an operation is not allowed on a core effect
	ErrCoreEffect = errors.New("can't delete core effect")

	// ErrIndexOutOfRange indicates an effect index outside the list
	ErrIndexOutOfRange = errors.New("effect index out of range")

	// ErrNoJSONFactory indicates an effect type that cannot be rebuilt from JSON
	ErrNoJSONFactory = errors.New("no JSON factory for effect type")

	// ErrInitFailed indicates an effect failed to initialize
	ErrInitFailed = errors.New("effect initialization failed")

	// ErrUnknownSetting indicates a setting name the effect does not expose
	ErrUnknownSetting = errors.New("unknown setting")
)
