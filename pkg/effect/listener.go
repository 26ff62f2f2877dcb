package effect

import "time"

// Listener receives effect manager events. Callbacks run on the goroutine
// that made the change, after the manager lock is released.
type Listener interface {
	OnCurrentEffectChanged(index int)
	OnEffectListDirty()
	OnEffectEnabledStateChanged(index int, enabled bool)
	OnIntervalChanged(interval time.Duration)
}
