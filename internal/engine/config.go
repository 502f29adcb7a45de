package engine

import (
	"time"

	"github.com/tejashwikalptaru/mpcore/domain"
)

// Config mirrors an audio-engine configuration shape, generalized from
// sample-rate/buffer-size knobs to this domain's playback-step cadence
// and per-client capacity limits.
type Config struct {
	// TickInterval is the spacing between EventTick broadcasts while a
	// track is playing.
	TickInterval time.Duration
	// RingCapacity is the per-client event ring capacity passed to every
	// new client handle.
	RingCapacity int
	// DispatchQueueCapacity sizes the dispatch bridge's job channel.
	DispatchQueueCapacity int
}

// DefaultConfig returns production-sized defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval:          domain.DefaultTickInterval,
		RingCapacity:          domain.MaxEvents,
		DispatchQueueCapacity: 64,
	}
}
