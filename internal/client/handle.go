// Package client implements the per-client handle: the private state a
// single client thread owns while talking to the engine — its event ring,
// event mask, reply-ID allocator, log tap, and wakeup plumbing. Grounded
// on the sync.RWMutex-guarded service state in
// internal/service/player_service.go, generalized from "one playback
// service per process" to "one handle per client."
package client

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/mpcore/domain"
	"github.com/tejashwikalptaru/mpcore/internal/ring"
)

// LogBuffer is the minimal log-tap source a Handle polls from WaitEvent.
// It is satisfied structurally by engine.Core's log buffer implementation;
// this package never imports engine.
type LogBuffer interface {
	Read() (domain.LogMessage, bool)
	Close() error
}

// LogBufferFactory creates a new LogBuffer at the given minimum level.
// "no" is never passed in; callers close the current tap instead of
// requesting a "no" level buffer.
type LogBufferFactory func(level string) (LogBuffer, error)

// Handle is the private state of a single client.
type Handle struct {
	// Immutable.
	name string
	log  *slog.Logger

	mu sync.Mutex
	cv *sync.Cond

	eventMask      uint64
	queuedWakeup   bool
	shutdown       bool
	choke          bool
	wakeupCB       func(ctx any)
	wakeupCBCtx    any
	nextReplyID    uint64
	reservedEvents int
	state          domain.ClientState

	logTap    LogBuffer
	logLevel  string
	newLogBuf LogBufferFactory

	events *ring.EventRing

	// currentEvent is read/written only by the single goroutine calling
	// WaitEvent; mu does not guard it, although WaitEvent happens to hold
	// mu while it sets it.
	currentEvent domain.EventRecord
}

// New creates a client handle named name, wired to newLogBuf for log-tap
// creation. capacity is the event ring's record capacity
// (domain.MaxEvents in production; tests use smaller values to make
// reservation exhaustion easy to trigger).
func New(name string, log *slog.Logger, capacity int, newLogBuf LogBufferFactory) *Handle {
	h := &Handle{
		name:      name,
		log:       log,
		eventMask: domain.AllEventsMask() &^ domain.EventTick.Bit(),
		events:    ring.New(capacity),
		newLogBuf: newLogBuf,
		state:     domain.StateUninitialized,
	}
	h.cv = sync.NewCond(&h.mu)
	return h
}

// Name returns the client's unique name.
func (h *Handle) Name() string {
	return h.name
}

// State returns the handle's current lifecycle state.
func (h *Handle) State() domain.ClientState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// SetState transitions the handle's lifecycle state. Called by the
// registry/runner layer, never by client code directly.
func (h *Handle) SetState(s domain.ClientState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// Log returns the handle's scoped logger.
func (h *Handle) Log() *slog.Logger {
	return h.log
}

// ReserveReply pre-claims a ring slot and allocates the reply ID that will
// correlate the eventual response, guaranteeing the response can never be
// dropped for lack of room.
func (h *Handle) ReserveReply() (uint64, *domain.Error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.reservedEvents >= h.events.Capacity() {
		return 0, domain.ErrEventBufferFull
	}
	h.reservedEvents++
	h.nextReplyID++
	return h.nextReplyID, nil
}

// SendEvent delivers an unsolicited event (InReplyTo == 0), subject to the
// client's event mask and available (non-reserved) ring capacity. It
// returns false only if the event was dropped because the ring has no
// free, un-reserved slot; such a drop logs a one-shot warning. An event
// whose kind the mask excludes is filtered out silently and reported as
// true.
func (h *Handle) SendEvent(id domain.EventID, data any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.eventMask&id.Bit() == 0 {
		return true // not subscribed: not a drop, just filtered
	}

	freeSlots := h.events.Available() - h.reservedEvents
	if freeSlots <= 0 {
		if !h.choke {
			h.log.Warn("too many events queued, dropping event", slog.String("event", id.Name()))
			h.choke = true
		}
		return false
	}

	ok := h.events.Write(domain.EventRecord{ID: id, Data: data})
	if !ok {
		// The free-slot check above guarantees this never happens; a
		// false return here means the reservation accounting and the
		// ring disagree, which is a broken invariant, not a normal drop.
		panic("client: event ring refused a write the reservation check allowed")
	}
	h.wakeupLocked()
	return true
}

// ReplyEvent is the shape SendReply/SendErrorReply/StatusReply build before
// writing it into the ring.
type ReplyEvent struct {
	ID    domain.EventID
	Error domain.ErrorCode
	Data  any
}

// SendReply writes the reply to a previously reserved reply ID. Capacity
// was guaranteed at reservation time, so a ring write failure here is a
// fatal invariant violation, not a drop.
func (h *Handle) SendReply(replyID uint64, ev ReplyEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.reservedEvents <= 0 {
		panic("client: SendReply called without a matching reserved slot")
	}
	h.reservedEvents--

	ok := h.events.Write(domain.EventRecord{
		InReplyTo: replyID,
		ID:        ev.ID,
		Error:     ev.Error,
		Data:      ev.Data,
	})
	if !ok {
		panic("client: reserved reply slot was not available at send time")
	}
	h.wakeupLocked()
}

// SendErrorReply sends an EventError reply carrying code.
func (h *Handle) SendErrorReply(replyID uint64, code domain.ErrorCode) {
	h.SendReply(replyID, ReplyEvent{ID: domain.EventError, Error: code})
}

// StatusReply sends an OK reply for status == domain.Success, or an error
// reply otherwise.
func (h *Handle) StatusReply(replyID uint64, status domain.ErrorCode) {
	if status != domain.Success {
		h.SendErrorReply(replyID, status)
		return
	}
	h.SendReply(replyID, ReplyEvent{ID: domain.EventOK})
}

// WaitEvent implements the six-step priority wait: ring first, then
// shutdown, then a polled log message, then a queued wakeup, then (if
// timeout allows) block on the condition variable until the deadline.
//
// WaitEvent has a single-consumer contract: calling it concurrently from
// two goroutines on the same handle is undefined.
func (h *Handle) WaitEvent(timeout time.Duration) domain.EventRecord {
	deadline := time.Now().Add(timeout)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentEvent = domain.EventRecord{}

	for {
		if rec, ok := h.events.Read(); ok {
			h.currentEvent = rec
			return h.currentEvent
		}

		if h.shutdown {
			h.currentEvent = domain.EventRecord{ID: domain.EventShutdown}
			return h.currentEvent
		}

		if h.logTap != nil {
			if msg, ok := h.logTap.Read(); ok {
				h.currentEvent = domain.EventRecord{ID: domain.EventLogMessage, Data: msg}
				return h.currentEvent
			}
		}

		if h.queuedWakeup {
			h.queuedWakeup = false
			h.currentEvent = domain.EventRecord{ID: domain.EventNone}
			return h.currentEvent
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			h.currentEvent = domain.EventRecord{ID: domain.EventNone}
			return h.currentEvent
		}

		h.waitCondUntil(deadline)
	}
}

// waitCondUntil blocks on the condition variable until either a signal
// arrives or deadline passes. mu must be held on entry and is held again
// on return (sync.Cond.Wait releases/reacquires it internally).
func (h *Handle) waitCondUntil(deadline time.Time) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return
	}

	timer := time.AfterFunc(remaining, func() {
		h.mu.Lock()
		h.cv.Broadcast()
		h.mu.Unlock()
	})
	defer timer.Stop()

	h.cv.Wait()
}

// wakeupLocked signals the condition variable and invokes the wakeup
// callback, if any, with the handle lock held. The callback must be
// wait-free and must never call back into this API.
func (h *Handle) wakeupLocked() {
	h.cv.Broadcast()
	if h.wakeupCB != nil {
		h.wakeupCB(h.wakeupCBCtx)
	}
}

// Wakeup sets the queued-wakeup flag and signals, the public
// mpv_wakeup-equivalent used to break a client out of WaitEvent from
// another goroutine.
func (h *Handle) Wakeup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queuedWakeup = true
	h.wakeupLocked()
}

// SetWakeupCallback installs cb, called with ctx under the handle lock on
// every wakeup. Passing a nil cb clears it.
func (h *Handle) SetWakeupCallback(cb func(ctx any), ctx any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wakeupCB = cb
	h.wakeupCBCtx = ctx
}

// SetShutdown marks the handle as shut down and wakes any waiter; called by
// the registry during engine teardown.
func (h *Handle) SetShutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shutdown = true
	h.cv.Broadcast()
}

// RequestEvent toggles the mask bit for id. Mask changes are not
// serialized against in-flight broadcasts: a client that just disabled a
// kind may still observe one already written into its ring before the
// change took effect. This is plausibly intentional rather than a bug.
func (h *Handle) RequestEvent(id domain.EventID, enable bool) *domain.Error {
	if !id.Valid() {
		return domain.ErrInvalidParameter
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if enable {
		h.eventMask |= id.Bit()
	} else {
		h.eventMask &^= id.Bit()
	}
	return nil
}

// logLevels is the fixed, ordered set of level names request_log_messages
// accepts, from quietest to loudest.
var logLevels = []string{"no", "fatal", "error", "warn", "info", "status", "v", "debug", "trace"}

// ValidLogLevel reports whether level is one of the fixed level names.
func ValidLogLevel(level string) bool {
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

// RequestLogMessages opens (or closes, for level == "no") a log tap at the
// given minimum level. Any change closes the existing tap, if any, before
// opening the new one.
func (h *Handle) RequestLogMessages(level string) *domain.Error {
	if !ValidLogLevel(level) {
		return domain.ErrInvalidParameter
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.logLevel == level {
		return nil
	}

	if h.logTap != nil {
		_ = h.logTap.Close()
		h.logTap = nil
	}
	h.logLevel = level

	if level == "no" {
		return nil
	}

	tap, err := h.newLogBuf(level)
	if err != nil {
		return domain.NewError(domain.InvalidParameter, "request_log_messages", err)
	}
	h.logTap = tap
	return nil
}

// Drain empties the ring, returning every buffered record so the caller
// (registry teardown) can let their payloads be reclaimed.
func (h *Handle) Drain() []domain.EventRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events.Drain()
}

// CloseLogTap closes any open log tap; called during teardown.
func (h *Handle) CloseLogTap() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.logTap != nil {
		_ = h.logTap.Close()
		h.logTap = nil
	}
}
