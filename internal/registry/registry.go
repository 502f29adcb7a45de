// Package registry owns the set of live client handles: it allocates
// unique client names, fans out broadcasts and targeted sends under a
// coarse lock, and brokers the two callbacks a handle needs from the
// engine (log-buffer creation and input-loop wakeup) without importing the
// engine package directly. Grounded on the sync event bus in
// internal/adapter/eventbus/sync.go, generalized from "one subscriber
// list" to "one named client per handle, with per-client masks."
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/mpcore/domain"
	"github.com/tejashwikalptaru/mpcore/internal/client"
)

// engineHooks is the minimal surface the registry needs back from the
// engine core. It is satisfied structurally by *engine.Core; this package
// never imports engine, breaking what would otherwise be an import cycle
// (engine needs to broadcast through the registry, the registry needs
// engine-provided log buffers and a wakeup hook).
type engineHooks interface {
	NewLogBuffer(level string) (client.LogBuffer, error)
	WakeupInput()
}

// Registry is the shared table of live client handles. The zero value is
// not usable; construct with New.
type Registry struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[string]*client.Handle
	engine  engineHooks

	// ringCapacity is threaded into every new Handle; overridable for
	// tests that want to provoke capacity exhaustion quickly.
	ringCapacity int
}

// New creates an empty registry. Call SetEngine once the owning engine
// core exists, before the first NewClient call that needs log-tap support.
func New(log *slog.Logger, ringCapacity int) *Registry {
	return &Registry{
		log:          log,
		clients:      make(map[string]*client.Handle),
		ringCapacity: ringCapacity,
	}
}

// SetEngine wires the engine hooks in after construction, breaking the
// registry/engine construction cycle the same way the event bus and mock
// engine elsewhere wire a logger in after construction via SetLogger.
func (r *Registry) SetEngine(e engineHooks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engine = e
}

// Count returns the number of live (non-destroyed) clients.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// NewClient creates a new client handle. If name is empty, an anonymous
// base name is used. If name (or the anonymous base) is already taken, a
// numeric suffix 2..999 is appended until a free name is found; beyond 999
// collisions NewClient gives up, mirroring the original's fixed retry
// bound.
func (r *Registry) NewClient(name string) (*client.Handle, *domain.Error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := name
	if base == "" {
		base = "anon"
	}

	unique, ok := r.allocateNameLocked(base)
	if !ok {
		return nil, domain.NewError(domain.NoMem, "new_client", fmt.Errorf("no free name derived from %q", base))
	}

	newLogBuf := func(level string) (client.LogBuffer, error) {
		if r.engine == nil {
			return nil, fmt.Errorf("registry: no engine wired for log buffer creation")
		}
		return r.engine.NewLogBuffer(level)
	}

	h := client.New(unique, r.log.With(slog.String("client", unique)), r.ringCapacity, newLogBuf)
	h.SetState(domain.StateInitialized)
	r.clients[unique] = h
	return h, nil
}

// allocateNameLocked must be called with mu held.
func (r *Registry) allocateNameLocked(base string) (string, bool) {
	if _, taken := r.clients[base]; !taken {
		return base, true
	}
	for suffix := 2; suffix <= 999; suffix++ {
		candidate := fmt.Sprintf("%s%d", base, suffix)
		if _, taken := r.clients[candidate]; !taken {
			return candidate, true
		}
	}
	return "", false
}

// Destroy removes h from the registry, marks it shut down, drains its
// ring, and closes any open log tap. It is idempotent: destroying an
// already-unregistered handle is a no-op. On success it wakes the
// engine's input loop so the engine can observe the reduced client
// count, matching mpv's client teardown path.
func (r *Registry) Destroy(h *client.Handle) {
	r.mu.Lock()
	_, ok := r.clients[h.Name()]
	if ok {
		delete(r.clients, h.Name())
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	h.SetState(domain.StateShuttingDown)
	h.SetShutdown()
	h.CloseLogTap()
	h.Drain()
	h.SetState(domain.StateDestroyed)
	r.WakeupInput()
}

// Broadcast delivers id/data to every registered client whose mask
// includes id. SendEvent is called on each handle while the registry lock
// is held (registry lock first, then each handle's lock), so concurrent
// broadcasts reach every client in the same order.
func (r *Registry) Broadcast(id domain.EventID, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range r.clients {
		h.SendEvent(id, data)
	}
}

// SendTo delivers id/data to exactly the named client, subject to that
// client's event mask like any other unsolicited event. It returns a
// domain.NotFound error if no client with that name is registered.
func (r *Registry) SendTo(name string, id domain.EventID, data any) *domain.Error {
	h := r.lookup(name)
	if h == nil {
		return domain.NewError(domain.NotFound, "send_to", fmt.Errorf("no client named %q", name))
	}
	h.SendEvent(id, data)
	return nil
}

func (r *Registry) lookup(name string) *client.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clients[name]
}

func (r *Registry) snapshot() []*client.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*client.Handle, 0, len(r.clients))
	for _, h := range r.clients {
		out = append(out, h)
	}
	return out
}

// WakeupInput forwards the engine's input-loop wakeup request. It exists
// so callers that only hold a *Registry (not the engine core) can still
// trigger it, matching how mpv routes mp_wakeup_core through the client
// API layer.
func (r *Registry) WakeupInput() {
	r.mu.Lock()
	e := r.engine
	r.mu.Unlock()
	if e != nil {
		e.WakeupInput()
	}
}

// Shutdown destroys every registered client, used when the owning engine
// is torn down while clients are still live.
func (r *Registry) Shutdown() {
	for _, h := range r.snapshot() {
		r.Destroy(h)
	}
}
