// Package mpcore is the public surface of the client API core: an
// embeddable media-player engine's client-handle lifecycle, command and
// property access, and event delivery, modeled on mpv's client API.
// Grounded on the internal/app.Application shape (construction wires
// dependencies, Run/Shutdown bookend the lifecycle), collapsed here to
// the narrower surface this module actually names.
package mpcore

import (
	"log/slog"
	"time"

	"github.com/tejashwikalptaru/mpcore/domain"
	"github.com/tejashwikalptaru/mpcore/internal/client"
	"github.com/tejashwikalptaru/mpcore/internal/engine"
	"github.com/tejashwikalptaru/mpcore/internal/logger"
	"github.com/tejashwikalptaru/mpcore/internal/registry"
	"github.com/tejashwikalptaru/mpcore/internal/runner"
)

// clientAPIMajor/clientAPIMinor are this module's ABI version numbers,
// packed by domain.ClientAPIVersion the way client_api.h's
// MPV_CLIENT_API_VERSION is built from MPV_CLIENT_API_VERSION_MAJOR/MINOR.
const (
	clientAPIMajor = 2
	clientAPIMinor = 0
)

// Context is the handle to a running engine: the first client created by
// Create, plus the engine and registry it is bound to. Every other client
// (if the embedder creates more via its own registry access) shares the
// same engine.
type Context struct {
	Handle *client.Handle

	core *engine.Core
	reg  *registry.Registry
	log  *slog.Logger
}

// Create builds a new, uninitialized engine core and registry, and a
// first client named "main". Default options (idle=yes, terminal=no,
// osc=no) are applied via SetOptionString before the engine is
// initialized, matching mpv_create's pre-init option seeding. If client
// creation fails, the partially built engine core is discarded rather
// than leaked.
func Create() (*Context, error) {
	log := logger.NewLogger(logger.DefaultConfig())
	return CreateWithLogger(log)
}

// CreateWithLogger is Create with an explicit logger, used by tests that
// want quiet output.
func CreateWithLogger(log *slog.Logger) (*Context, error) {
	reg := registry.New(log, engine.DefaultConfig().RingCapacity)
	core := engine.NewCore(log, engine.DefaultConfig(), reg)
	reg.SetEngine(core)

	h, derr := reg.NewClient("main")
	if derr != nil {
		core.Shutdown()
		return nil, derr
	}

	ctx := &Context{Handle: h, core: core, reg: reg, log: log}

	defaults := map[string]string{"idle": "yes", "terminal": "no", "osc": "no"}
	for name, value := range defaults {
		if err := runner.SetOptionString(core, h, name, value); err != nil {
			core.Shutdown()
			return nil, err
		}
	}
	return ctx, nil
}

// Initialize starts the engine goroutine bound to ctx. Calling it more
// than once is a no-op, matching mpv_initialize's idempotence.
func Initialize(ctx *Context) error {
	if err := ctx.core.Initialize(); err != nil {
		return domain.NewError(domain.InvalidParameter, "initialize", err)
	}
	return nil
}

// Destroy tears down ctx.Handle: if it was the last remaining client, the
// engine goroutine is stopped too. It does not destroy other clients
// created against the same engine; callers are expected to destroy every
// client they created.
func Destroy(ctx *Context) error {
	ctx.reg.Destroy(ctx.Handle)
	if ctx.reg.Count() == 0 {
		ctx.core.Shutdown()
	}
	return nil
}

// Suspend pauses the engine bound to ctx at its next safe point, matching
// mpv_suspend. It is reentrant and may be called from any client thread
// sharing ctx; the engine stays paused until Resume has been called the
// same number of times.
func Suspend(ctx *Context) {
	runner.Suspend(ctx.core)
}

// Resume reverses one Suspend call against ctx's engine, matching
// mpv_resume. Calling it more times than Suspend was called panics.
func Resume(ctx *Context) {
	runner.Resume(ctx.core)
}

// NewClient creates an additional client bound to the same engine as ctx.
func NewClient(ctx *Context, name string) (*client.Handle, error) {
	h, derr := ctx.reg.NewClient(name)
	if derr != nil {
		return nil, derr
	}
	return h, nil
}

// DestroyClient destroys h without affecting the rest of ctx's clients or
// stopping the engine, even if h happens to be the last one — callers
// that want engine teardown on last-client-destroyed should use Destroy.
func DestroyClient(ctx *Context, h *client.Handle) {
	ctx.reg.Destroy(h)
}

// Command runs a command synchronously against h's engine.
func Command(ctx *Context, h *client.Handle, args []string) error {
	return runner.Command(ctx.core, h, args)
}

// CommandString parses and runs a single command-line string
// synchronously.
func CommandString(ctx *Context, h *client.Handle, s string) error {
	return runner.CommandString(ctx.core, h, s)
}

// CommandAsync submits a command for asynchronous execution.
func CommandAsync(ctx *Context, h *client.Handle, args []string) (uint64, error) {
	return runner.CommandAsync(ctx.core, h, args)
}

// SetProperty sets a property synchronously.
func SetProperty(ctx *Context, h *client.Handle, name, value string) error {
	return runner.SetProperty(ctx.core, h, name, value)
}

// SetPropertyAsync sets a property asynchronously.
func SetPropertyAsync(ctx *Context, h *client.Handle, name, value string) (uint64, error) {
	return runner.SetPropertyAsync(ctx.core, h, name, value)
}

// SetOption sets an option, routed directly to the config store before
// Initialize and through SetProperty afterward.
func SetOption(ctx *Context, h *client.Handle, name, value string) error {
	return runner.SetOption(ctx.core, h, name, value)
}

// GetProperty reads a property synchronously.
func GetProperty(ctx *Context, h *client.Handle, name string, format domain.PropertyFormat) (string, error) {
	return runner.GetProperty(ctx.core, h, name, format)
}

// GetPropertyAsync reads a property asynchronously.
func GetPropertyAsync(ctx *Context, h *client.Handle, name string, format domain.PropertyFormat) (uint64, error) {
	return runner.GetPropertyAsync(ctx.core, h, name, format)
}

// WaitEvent blocks on h until an event is available or timeout elapses.
func WaitEvent(h *client.Handle, timeout time.Duration) domain.EventRecord {
	return h.WaitEvent(timeout)
}

// RequestEvent enables or disables delivery of one event kind on h.
func RequestEvent(h *client.Handle, id domain.EventID, enable bool) error {
	if derr := h.RequestEvent(id, enable); derr != nil {
		return derr
	}
	return nil
}

// RequestLogMessages opens or closes h's log tap at the given level.
func RequestLogMessages(h *client.Handle, level string) error {
	if derr := h.RequestLogMessages(level); derr != nil {
		return derr
	}
	return nil
}

// ClientName returns h's unique name.
func ClientName(h *client.Handle) string {
	return h.Name()
}

// ErrorString returns the stable, human-readable description of code.
func ErrorString(code domain.ErrorCode) string {
	return domain.ErrorString(code)
}

// EventName returns the stable lower-case name of an event kind.
func EventName(id domain.EventID) string {
	return id.Name()
}

// Free is a documented no-op: this API never hands out memory the caller
// must separately release, since Go's garbage collector already owns
// every value these functions return. Kept for wire-contract parity with
// mpv_free.
func Free(ptr any) {
	_ = ptr
}

// ClientAPIVersion returns this module's packed ABI version, high 16 bits
// major and low 16 bits minor, matching client_api.h's
// MPV_CLIENT_API_VERSION layout.
func ClientAPIVersion() uint32 {
	return domain.ClientAPIVersion(clientAPIMajor, clientAPIMinor)
}
