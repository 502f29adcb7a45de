package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/mpcore/domain"
	"github.com/tejashwikalptaru/mpcore/internal/client"
	"github.com/tejashwikalptaru/mpcore/internal/dispatch"
)

// broadcaster is the minimal surface Core needs from the client registry
// to publish events. It is satisfied structurally by *registry.Registry;
// this package never imports registry, breaking what would otherwise be
// an import cycle (registry needs engine-provided log buffers, engine
// needs to broadcast through the registry).
type broadcaster interface {
	Broadcast(id domain.EventID, data any)
}

// Core is the stand-in for mpv's MPContext: the single piece of mutable
// playback state every client command and property access goes through,
// always on the dispatch bridge's engine goroutine.
type Core struct {
	log    *slog.Logger
	cfg    Config
	bridge *dispatch.Bridge
	reg    broadcaster

	config *memConfigStore
	props  *memPropertyStore
	parser *memCommandParser

	mu          sync.Mutex
	initialized bool
	playing     bool
	timePos     float64

	stopTick chan struct{}
	tickWG   sync.WaitGroup

	logSubs sync.Mutex
	logBufs []*memLogBuffer
}

// NewCore builds an uninitialized core. reg is the registry used to
// broadcast events once the playback-step loop starts; it is typed as the
// local broadcaster interface so this package never imports registry.
func NewCore(log *slog.Logger, cfg Config, reg broadcaster) *Core {
	c := &Core{
		log:    log,
		cfg:    cfg,
		bridge: dispatch.New(cfg.DispatchQueueCapacity),
		reg:    reg,
		config: newMemConfigStore(),
		props:  newMemPropertyStore(),
		parser: newMemCommandParser(),
	}
	return c
}

// Bridge exposes the dispatch bridge so the runner package can submit
// work to the engine goroutine.
func (c *Core) Bridge() *dispatch.Bridge {
	return c.bridge
}

// ConfigStore exposes the option store directly, used by SetOption before
// initialization (bypassing the dispatch bridge entirely, matching
// client.c's pre-init option path).
func (c *Core) ConfigStore() ConfigStore {
	return c.config
}

// Initialized reports whether Initialize has completed successfully.
func (c *Core) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Initialize starts the engine goroutine and the playback-step loop, and
// flips the core into the initialized state. Calling it twice is a no-op
// returning nil, matching mpv_initialize's idempotence.
func (c *Core) Initialize() error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	c.stopTick = make(chan struct{})
	c.mu.Unlock()

	c.bridge.Start(nil)

	c.tickWG.Add(1)
	go c.tickLoop()

	c.log.Info("engine initialized", slog.Duration("tick_interval", c.cfg.TickInterval))
	return nil
}

// Shutdown stops the playback-step loop and the dispatch bridge's engine
// goroutine. Safe to call on an uninitialized core.
func (c *Core) Shutdown() {
	c.mu.Lock()
	stopTick := c.stopTick
	c.mu.Unlock()
	if stopTick != nil {
		close(stopTick)
		c.tickWG.Wait()
	}
	c.bridge.Stop()
}

// tickLoop advances time-pos and broadcasts EventTick every
// cfg.TickInterval while a track is "playing". It runs independently of
// the dispatch bridge's own idle polling, so the broadcast cadence
// matches the configured tick interval exactly rather than the bridge's
// internal job-queue poll frequency; the step itself still only touches
// Core state through the bridge, keeping every mutation on the engine
// goroutine.
func (c *Core) tickLoop() {
	defer c.tickWG.Done()

	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopTick:
			return
		case <-ticker.C:
			c.bridge.RunAsync(c.stepTick)
		}
	}
}

func (c *Core) stepTick() {
	// A suspended engine skips its playback step; jobs still drain.
	if c.bridge.Suspended() {
		return
	}
	c.mu.Lock()
	playing := c.playing
	if playing {
		c.timePos += c.cfg.TickInterval.Seconds()
		c.props.set("time-pos", fmt.Sprintf("%.2f", c.timePos))
	}
	c.mu.Unlock()

	if playing {
		c.broadcastAll(domain.EventTick, nil)
	}
}

// RunCommand executes cmd on the engine goroutine's behalf. Callers
// (the runner package) are expected to already be running inside a
// dispatch.Bridge job; RunCommand itself does not submit to the bridge,
// to avoid deadlocking a job that calls it from within another job.
func (c *Core) RunCommand(cmd *Command) domain.ErrorCode {
	switch cmd.Name {
	case "loadfile":
		if len(cmd.Args) < 1 {
			return domain.InvalidParameter
		}
		c.mu.Lock()
		c.props.set("path", cmd.Args[0])
		c.props.set("filename", cmd.Args[0])
		c.props.set("idle", "no")
		c.timePos = 0
		c.playing = true
		c.mu.Unlock()
		c.broadcastAll(domain.EventStartFile, nil)
		c.broadcastAll(domain.EventPlaybackStart, nil)
		return domain.Success

	case "stop":
		c.mu.Lock()
		wasPlaying := c.playing
		c.playing = false
		c.props.set("idle", "yes")
		c.mu.Unlock()
		if wasPlaying {
			c.broadcastAll(domain.EventEndFile, nil)
		}
		c.broadcastAll(domain.EventIdle, nil)
		return domain.Success

	case "seek":
		if len(cmd.Args) < 1 {
			return domain.InvalidParameter
		}
		secs, err := parseSeconds(cmd.Args[0])
		if err != nil {
			return domain.InvalidParameter
		}
		c.mu.Lock()
		c.timePos = secs
		c.props.set("time-pos", fmt.Sprintf("%.2f", secs))
		c.mu.Unlock()
		return domain.Success

	case "set":
		if len(cmd.Args) < 2 {
			return domain.InvalidParameter
		}
		return c.props.set(cmd.Args[0], cmd.Args[1])

	case "quit":
		c.mu.Lock()
		c.playing = false
		c.mu.Unlock()
		c.broadcastAll(domain.EventShutdown, nil)
		return domain.Success

	default:
		return domain.InvalidParameter
	}
}

// Parser exposes the command parser to the runner package.
func (c *Core) Parser() CommandParser {
	return c.parser
}

// Properties exposes the property store to the runner package.
func (c *Core) Properties() PropertyStore {
	return c.props
}

// SetPropertyRaw is the engine-goroutine-side implementation of
// mpv_set_property: it validates against the known-property whitelist and
// mutates state, broadcasting EventPause/EventUnpause on the "pause"
// property exactly as client.c's setproperty_fn special-cases it.
func (c *Core) SetPropertyRaw(name, value string) domain.ErrorCode {
	status := c.props.set(name, value)
	if status != domain.Success {
		return status
	}
	if name == "pause" {
		if value == "yes" {
			c.broadcastAll(domain.EventPause, nil)
		} else {
			c.broadcastAll(domain.EventUnpause, nil)
		}
	}
	return domain.Success
}

func (c *Core) broadcastAll(id domain.EventID, data any) {
	if c.reg != nil {
		c.reg.Broadcast(id, data)
	}
}

// WakeupInput satisfies registry's engineHooks interface. The reference
// core has no separate input thread to wake (there is no blocking read
// loop beyond the dispatch bridge itself), so this is a documented no-op
// that only logs at debug level; a real embedder's playback thread would
// use this to interrupt a blocking poll.
func (c *Core) WakeupInput() {
	c.log.Debug("wakeup_input (no-op: no blocking input loop in the reference core)")
}

// NewLogBuffer creates a LogBuffer at the given minimum level and
// registers it to receive future PublishLog calls. It satisfies both
// registry.engineHooks and client.LogBufferFactory's return shape.
func (c *Core) NewLogBuffer(level string) (client.LogBuffer, error) {
	if !client.ValidLogLevel(level) || level == "no" {
		return nil, fmt.Errorf("engine: invalid log level %q", level)
	}
	buf := newMemLogBuffer(level, domain.MaxEvents)

	c.logSubs.Lock()
	c.logBufs = append(c.logBufs, buf)
	c.logSubs.Unlock()

	return buf, nil
}

// PublishLog feeds msg to every subscribed log buffer whose level accepts
// it, and prunes buffers that have been closed since the last publish.
func (c *Core) PublishLog(msg domain.LogMessage) {
	c.logSubs.Lock()
	defer c.logSubs.Unlock()

	live := c.logBufs[:0]
	for _, buf := range c.logBufs {
		if !buf.accepts(msg.Level) {
			if buf.isClosed() {
				continue
			}
			live = append(live, buf)
			continue
		}
		buf.push(msg)
		live = append(live, buf)
	}
	c.logBufs = live
}
