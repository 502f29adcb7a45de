// Package runner implements the synchronous and asynchronous request
// paths a client handle uses to reach the engine core: command
// execution, option/property setting, and property reading. Every path
// that touches engine state is submitted through the engine's dispatch
// bridge, so Core's internals are only ever mutated from the single
// engine goroutine. Grounded on client.c's run_client_command /
// mpv_set_property / mpv_get_property_async trio, and on the pattern of
// building a small request struct, running a closure under lock, then
// reading a status field back out seen in player_service.go.
package runner

import (
	"fmt"

	"github.com/tejashwikalptaru/mpcore/domain"
	"github.com/tejashwikalptaru/mpcore/internal/client"
	"github.com/tejashwikalptaru/mpcore/internal/dispatch"
	"github.com/tejashwikalptaru/mpcore/internal/engine"
)

// Core is the minimal surface the runner needs from engine.Core. Declared
// locally so test doubles can stand in for the real engine core.
type Core interface {
	Bridge() *dispatch.Bridge
	ConfigStore() engine.ConfigStore
	Parser() engine.CommandParser
	Properties() engine.PropertyStore
	Initialized() bool
	RunCommand(cmd *engine.Command) domain.ErrorCode
	SetPropertyRaw(name, value string) domain.ErrorCode
}

// Command runs cmd synchronously on the engine goroutine and returns its
// status as an error (nil on domain.Success).
func Command(c Core, h *client.Handle, args []string) error {
	return commandSync(c, h, func() (*engine.Command, error) {
		return c.Parser().Parse(args)
	})
}

// CommandString parses and runs a single command-line string
// synchronously.
func CommandString(c Core, h *client.Handle, s string) error {
	return commandSync(c, h, func() (*engine.Command, error) {
		return c.Parser().ParseString(s)
	})
}

func commandSync(c Core, h *client.Handle, parse func() (*engine.Command, error)) error {
	if !c.Initialized() {
		return domain.ErrUninitialized
	}
	cmd, err := parse()
	if err != nil {
		return domain.NewError(domain.InvalidParameter, "command", err)
	}

	var status domain.ErrorCode
	c.Bridge().RunLocked(func() {
		status = c.RunCommand(cmd)
	})
	return errFromStatus("command", status)
}

// CommandAsync parses cmd and submits it for asynchronous execution,
// returning the reply ID the eventual EventOK/EventError reply will
// carry. Submission-time errors
// (uninitialized core, a parse failure, or no room to reserve a reply)
// are returned synchronously without touching the dispatch bridge.
func CommandAsync(c Core, h *client.Handle, args []string) (uint64, error) {
	if !c.Initialized() {
		return 0, domain.ErrUninitialized
	}
	cmd, err := c.Parser().Parse(args)
	if err != nil {
		return 0, domain.NewError(domain.InvalidParameter, "command_async", err)
	}
	replyID, derr := h.ReserveReply()
	if derr != nil {
		return 0, derr
	}

	c.Bridge().RunAsync(func() {
		status := c.RunCommand(cmd)
		h.StatusReply(replyID, status)
	})
	return replyID, nil
}

// SetProperty sets name to value synchronously. Only FormatString input
// is supported, matching mpv_set_property's format check; this package
// exposes no other format, so there is nothing to reject here beyond
// uninitialized-core and not-found.
func SetProperty(c Core, h *client.Handle, name, value string) error {
	if !c.Initialized() {
		return domain.ErrUninitialized
	}
	var status domain.ErrorCode
	c.Bridge().RunLocked(func() {
		status = c.SetPropertyRaw(name, value)
	})
	return errFromStatus("set_property", status)
}

// SetPropertyAsync is SetProperty's asynchronous counterpart.
func SetPropertyAsync(c Core, h *client.Handle, name, value string) (uint64, error) {
	if !c.Initialized() {
		return 0, domain.ErrUninitialized
	}
	replyID, derr := h.ReserveReply()
	if derr != nil {
		return 0, derr
	}
	c.Bridge().RunAsync(func() {
		status := c.SetPropertyRaw(name, value)
		h.StatusReply(replyID, status)
	})
	return replyID, nil
}

// Suspend pauses the engine goroutine bound to c at its next safe point,
// matching mpv_suspend. It is reentrant and callable from any client
// thread sharing c; the engine stays paused until Resume has been called
// the same number of times.
func Suspend(c Core) {
	c.Bridge().Suspend()
}

// Resume reverses one Suspend call, matching mpv_resume. Calling it more
// times than Suspend was called panics, per dispatch.Bridge.Resume.
func Resume(c Core) {
	c.Bridge().Resume()
}

// SetOption sets option name to value. While the core is uninitialized
// this bypasses the dispatch bridge and calls the config store directly,
// exactly as client.c's mpv_set_option does before playback_thread
// exists; once initialized it is routed through SetProperty on the same
// bare name (the options/-prefixed string client.c builds here is dead
// code in the original and is deliberately not reproduced).
func SetOption(c Core, h *client.Handle, name, value string) error {
	if !c.Initialized() {
		status := c.ConfigStore().SetOption(name, value)
		return errFromStatus("set_option", status)
	}
	return SetProperty(c, h, name, value)
}

// SetOptionString is an alias kept for wire-contract parity with
// mpv_set_option_string, which in the original takes a raw string value
// with no format tag; this API only ever deals in strings, so it is
// identical to SetOption.
func SetOptionString(c Core, h *client.Handle, name, value string) error {
	return SetOption(c, h, name, value)
}

// GetProperty reads name synchronously in the given format.
func GetProperty(c Core, h *client.Handle, name string, format domain.PropertyFormat) (string, error) {
	if !c.Initialized() {
		return "", domain.ErrUninitialized
	}
	verb, err := propertyVerb(format)
	if err != nil {
		return "", domain.NewError(domain.InvalidParameter, "get_property", err)
	}

	var data string
	var status domain.ErrorCode
	c.Bridge().RunLocked(func() {
		status = c.Properties().Do(name, verb, &data)
	})
	if status != domain.Success {
		return "", errFromStatus("get_property", status)
	}
	return data, nil
}

// GetPropertyAsync reads name asynchronously, delivering a domain.Property
// payload on an EventProperty reply.
func GetPropertyAsync(c Core, h *client.Handle, name string, format domain.PropertyFormat) (uint64, error) {
	if !c.Initialized() {
		return 0, domain.ErrUninitialized
	}
	verb, err := propertyVerb(format)
	if err != nil {
		return 0, domain.NewError(domain.InvalidParameter, "get_property_async", err)
	}
	replyID, derr := h.ReserveReply()
	if derr != nil {
		return 0, derr
	}

	c.Bridge().RunAsync(func() {
		var data string
		status := c.Properties().Do(name, verb, &data)
		if status != domain.Success {
			h.StatusReply(replyID, status)
			return
		}
		h.SendReply(replyID, client.ReplyEvent{
			ID: domain.EventProperty,
			Data: domain.Property{
				Name:   name,
				Format: format,
				Data:   data,
			},
		})
	})
	return replyID, nil
}

func propertyVerb(format domain.PropertyFormat) (engine.PropertyVerb, error) {
	switch format {
	case domain.FormatString:
		return engine.PropertyGetString, nil
	case domain.FormatOSDString:
		return engine.PropertyPrint, nil
	default:
		return 0, fmt.Errorf("unsupported property format %v", format)
	}
}

func errFromStatus(op string, status domain.ErrorCode) error {
	if status == domain.Success {
		return nil
	}
	return domain.NewError(status, op, nil)
}
