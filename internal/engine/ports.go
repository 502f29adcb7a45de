// Package engine provides the collaborators the client API core treats as
// external — a configuration store, a property store, a command parser,
// and a log buffer — plus Core, a minimal but real implementation of all
// four so the rest of the system can be exercised end-to-end. A
// production embedder would replace Core's internals with the real
// playback engine while keeping the same ConfigStore/PropertyStore/
// CommandParser/LogBuffer seams.
package engine

import "github.com/tejashwikalptaru/mpcore/domain"

// PropertyVerb selects the operation PropertyStore.Do performs.
type PropertyVerb int

const (
	// PropertyGetString reads a property into a string.
	PropertyGetString PropertyVerb = iota
	// PropertyPrint reads a property into its "pretty" OSD string form.
	PropertyPrint
)

// ConfigStore sets options by name, returning one of the option-setting
// status codes.
type ConfigStore interface {
	SetOption(name, value string) domain.ErrorCode
}

// PropertyStore reads or prints a named property. data receives the result
// for GetString/Print verbs.
type PropertyStore interface {
	Do(name string, verb PropertyVerb, data *string) domain.ErrorCode
}

// Command is a parsed, ready-to-run command.
type Command struct {
	Name string
	Args []string
}

// CommandParser turns either an argv slice or a single command-line string
// into a Command.
type CommandParser interface {
	Parse(args []string) (*Command, error)
	ParseString(s string) (*Command, error)
}

// LogBuffer is a per-subscriber view onto the engine's log stream at a
// chosen minimum level.
type LogBuffer interface {
	Read() (domain.LogMessage, bool)
	Close() error
}
