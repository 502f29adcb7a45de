package engine

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/mpcore/domain"
)

// memConfigStore is an in-memory ConfigStore: it accepts any option name
// and records the last string value set for it.
type memConfigStore struct {
	mu      sync.Mutex
	options map[string]string
}

func newMemConfigStore() *memConfigStore {
	return &memConfigStore{options: make(map[string]string)}
}

// SetOption validates name/value minimally and records it. The reference
// store recognizes no option as structurally invalid; it only rejects an
// empty name, mirroring M_OPT_MISSING_PARAM for an unset option argument.
func (c *memConfigStore) SetOption(name, value string) domain.ErrorCode {
	if name == "" {
		return domain.InvalidParameter
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options[name] = value
	return domain.Success
}

func (c *memConfigStore) get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.options[name]
	return v, ok
}

// memPropertyStore is an in-memory PropertyStore backed by a plain string
// map; a handful of well-known properties (pause, time-pos, volume, path,
// idle) are pre-seeded so the reference engine has something real to
// report through get/set-property round trips.
type memPropertyStore struct {
	mu         sync.RWMutex
	properties map[string]string
	known      map[string]bool
}

func newMemPropertyStore() *memPropertyStore {
	return &memPropertyStore{
		properties: map[string]string{
			"pause":    "no",
			"time-pos": "0",
			"duration": "0",
			"volume":   "100",
			"path":     "",
			"idle":     "yes",
			"filename": "",
		},
		known: map[string]bool{
			"pause": true, "time-pos": true, "duration": true,
			"volume": true, "path": true, "idle": true, "filename": true,
		},
	}
}

func (p *memPropertyStore) set(name, value string) domain.ErrorCode {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.known[name] {
		return domain.NotFound
	}
	p.properties[name] = value
	return domain.Success
}

// Do implements PropertyStore. Only read verbs are supported here; writes
// go through set(), called directly by the engine core's command/property
// handling, matching mpv's separate mp_property_do verb for SET vs GET.
func (p *memPropertyStore) Do(name string, verb PropertyVerb, data *string) domain.ErrorCode {
	p.mu.RLock()
	defer p.mu.RUnlock()

	v, ok := p.properties[name]
	if !ok {
		return domain.NotFound
	}
	switch verb {
	case PropertyGetString:
		*data = v
	case PropertyPrint:
		*data = fmt.Sprintf("%s: %s", name, v)
	default:
		return domain.InvalidParameter
	}
	return domain.Success
}

// memCommandParser recognizes a small, fixed command vocabulary:
// loadfile <path>, stop, seek <seconds>, set <name> <value>, quit.
type memCommandParser struct{}

func newMemCommandParser() *memCommandParser {
	return &memCommandParser{}
}

func (p *memCommandParser) Parse(args []string) (*Command, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	if !knownCommand(args[0]) {
		return nil, fmt.Errorf("unknown command %q", args[0])
	}
	return &Command{Name: args[0], Args: args[1:]}, nil
}

func (p *memCommandParser) ParseString(s string) (*Command, error) {
	fields := strings.Fields(s)
	return p.Parse(fields)
}

func knownCommand(name string) bool {
	switch name {
	case "loadfile", "stop", "seek", "set", "quit":
		return true
	default:
		return false
	}
}

// memLogBuffer is an in-memory LogBuffer fed by Core's broadcast of log
// lines at or above a minimum level; it never blocks on Read, matching the
// "poll, don't wait" contract WaitEvent's step 3 relies on.
type memLogBuffer struct {
	mu     sync.Mutex
	level  string
	buf    []domain.LogMessage
	closed bool
}

var logLevelRank = map[string]int{
	"no": -1, "fatal": 0, "error": 1, "warn": 2, "info": 3,
	"status": 4, "v": 5, "debug": 6, "trace": 7,
}

func newMemLogBuffer(level string, capacity int) *memLogBuffer {
	return &memLogBuffer{level: level, buf: make([]domain.LogMessage, 0, capacity)}
}

func (b *memLogBuffer) accepts(level string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	return logLevelRank[level] <= logLevelRank[b.level]
}

func (b *memLogBuffer) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *memLogBuffer) push(msg domain.LogMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if cap(b.buf) > 0 && len(b.buf) >= cap(b.buf) {
		b.buf = b.buf[1:]
	}
	b.buf = append(b.buf, msg)
}

func (b *memLogBuffer) Read() (domain.LogMessage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.buf) == 0 {
		return domain.LogMessage{}, false
	}
	msg := b.buf[0]
	b.buf = b.buf[1:]
	return msg, true
}

func (b *memLogBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.buf = nil
	return nil
}

// parseSeconds is a small helper RunCommand uses for the "seek" command.
func parseSeconds(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
