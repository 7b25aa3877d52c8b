package lua

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormrepl/internal/console"
)

// Sandbox restricts Lua execution to safe operations and installs the
// console globals.
type Sandbox struct {
	L       *lua.LState
	console *console.Console

	capabilities map[Capability]bool
}

// Capability represents a permission that can be granted to scripts.
type Capability string

// Available capabilities.
const (
	CapabilityClock    Capability = "clock"           // os.time, os.clock, os.date
	CapabilityEnv      Capability = "env"             // os.getenv
	CapabilityFileRead Capability = "filesystem.read" // io.lines, io.readfile
	CapabilityUnsafe   Capability = "unsafe"          // debug library
)

var knownCapabilities = map[Capability]bool{
	CapabilityClock:    true,
	CapabilityEnv:      true,
	CapabilityFileRead: true,
	CapabilityUnsafe:   true,
}

// ParseCapability validates a capability name.
func ParseCapability(name string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(name)))
	if !knownCapabilities[c] {
		return c, &CapabilityError{Capability: c, Err: ErrUnknownCapability}
	}
	return c, nil
}

// NewSandbox creates a new sandbox for the Lua state. Console output goes to
// c.
func NewSandbox(L *lua.LState, c *console.Console) *Sandbox {
	if c == nil {
		c = console.New()
	}
	return &Sandbox{
		L:            L,
		console:      c,
		capabilities: make(map[Capability]bool),
	}
}

// Install sets up the sandbox restrictions and the script globals.
func (s *Sandbox) Install() {
	dangerousFuncs := []string{
		"dofile",     // Load and execute file
		"loadfile",   // Load file as function
		"load",       // Load string as function
		"loadstring", // Load string as function (deprecated but may exist)
	}
	for _, name := range dangerousFuncs {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.installConsole()
	s.installConstructors()
	s.installSafeRequire()
}

// installSafeRequire replaces require with a version that only allows safe
// built-in modules.
//
// package.path and package.cpath are cleared so nothing is loaded from disk.
func (s *Sandbox) installSafeRequire() {
	pkg, ok := s.L.GetGlobal("package").(*lua.LTable)
	if !ok {
		return
	}
	s.L.SetField(pkg, "path", lua.LString(""))
	s.L.SetField(pkg, "cpath", lua.LString(""))

	safeModules := map[string]bool{
		"string":    true,
		"table":     true,
		"math":      true,
		"coroutine": true,
	}
	gated := map[string]Capability{
		"os":    CapabilityClock,
		"io":    CapabilityFileRead,
		"debug": CapabilityUnsafe,
	}

	originalRequire := s.L.GetGlobal("require")

	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		modName := L.CheckString(1)

		if c, ok := gated[modName]; ok {
			if modName == "os" && s.capabilities[CapabilityEnv] {
				c = CapabilityEnv
			}
			if !s.capabilities[c] {
				L.RaiseError("module %q requires the %s capability", modName, c)
				return 0
			}
			L.Push(L.GetGlobal(modName))
			return 1
		}

		if !safeModules[modName] {
			L.RaiseError("module %q is not available", modName)
			return 0
		}

		L.Push(originalRequire)
		L.Push(lua.LString(modName))
		L.Call(1, 1)
		return 1
	}))
}

// Grant enables a capability and injects the matching library functions.
func (s *Sandbox) Grant(c Capability) error {
	if !knownCapabilities[c] {
		return &CapabilityError{Capability: c, Err: ErrUnknownCapability}
	}
	s.capabilities[c] = true

	switch c {
	case CapabilityClock:
		s.injectClockAPI()
	case CapabilityEnv:
		s.injectEnvAPI()
	case CapabilityFileRead:
		s.injectFileReadAPI()
	case CapabilityUnsafe:
		lua.OpenDebug(s.L)
	}
	return nil
}

// HasCapability returns true if the capability is granted.
func (s *Sandbox) HasCapability(c Capability) bool {
	return s.capabilities[c]
}

// Capabilities returns all granted capabilities, sorted.
func (s *Sandbox) Capabilities() []Capability {
	caps := make([]Capability, 0, len(s.capabilities))
	for c, granted := range s.capabilities {
		if granted {
			caps = append(caps, c)
		}
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// CheckCapability returns an error if the capability is not granted.
func (s *Sandbox) CheckCapability(c Capability) error {
	if !s.capabilities[c] {
		return &CapabilityError{Capability: c}
	}
	return nil
}

// osModule returns the restricted os table, creating it on first use.
func (s *Sandbox) osModule() *lua.LTable {
	if mod, ok := s.L.GetGlobal("os").(*lua.LTable); ok {
		return mod
	}
	mod := s.L.NewTable()
	s.L.SetGlobal("os", mod)
	return mod
}

func (s *Sandbox) injectClockAPI() {
	osMod := s.osModule()
	start := time.Now()

	s.L.SetField(osMod, "time", s.L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(time.Now().Unix()))
		return 1
	}))

	s.L.SetField(osMod, "clock", s.L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(time.Since(start).Seconds()))
		return 1
	}))

	// os.date([format [, time]]) supports the "!" UTC prefix and "*t".
	s.L.SetField(osMod, "date", s.L.NewFunction(func(L *lua.LState) int {
		format := L.OptString(1, "%c")
		t := time.Now()
		if L.GetTop() >= 2 {
			t = time.Unix(int64(L.CheckNumber(2)), 0)
		}
		if strings.HasPrefix(format, "!") {
			format = format[1:]
			t = t.UTC()
		}
		if format == "*t" {
			tbl := L.NewTable()
			tbl.RawSetString("year", lua.LNumber(t.Year()))
			tbl.RawSetString("month", lua.LNumber(t.Month()))
			tbl.RawSetString("day", lua.LNumber(t.Day()))
			tbl.RawSetString("hour", lua.LNumber(t.Hour()))
			tbl.RawSetString("min", lua.LNumber(t.Minute()))
			tbl.RawSetString("sec", lua.LNumber(t.Second()))
			tbl.RawSetString("wday", lua.LNumber(int(t.Weekday())+1))
			tbl.RawSetString("yday", lua.LNumber(t.YearDay()))
			L.Push(tbl)
			return 1
		}
		L.Push(lua.LString(strftime(format, t)))
		return 1
	}))
}

func (s *Sandbox) injectEnvAPI() {
	s.L.SetField(s.osModule(), "getenv", s.L.NewFunction(func(L *lua.LState) int {
		value, ok := os.LookupEnv(L.CheckString(1))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(value))
		return 1
	}))
}

func (s *Sandbox) injectFileReadAPI() {
	ioMod := s.L.NewTable()

	s.L.SetField(ioMod, "readfile", s.L.NewFunction(func(L *lua.LState) int {
		content, err := os.ReadFile(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		L.Push(lua.LString(content))
		return 1
	}))

	s.L.SetField(ioMod, "lines", s.L.NewFunction(func(L *lua.LState) int {
		content, err := os.ReadFile(L.CheckString(1))
		if err != nil {
			L.RaiseError("cannot open file: %s", err.Error())
			return 0
		}

		lines := splitLines(string(content))
		idx := 0
		L.Push(L.NewFunction(func(L *lua.LState) int {
			if idx >= len(lines) {
				return 0
			}
			L.Push(lua.LString(lines[idx]))
			idx++
			return 1
		}))
		return 1
	}))

	s.L.SetGlobal("io", ioMod)
}

// splitLines splits a string into lines, dropping carriage returns.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

var strftimeVerbs = map[byte]string{
	'a': "Mon",
	'A': "Monday",
	'b': "Jan",
	'B': "January",
	'c': "Mon Jan  2 15:04:05 2006",
	'd': "02",
	'H': "15",
	'I': "03",
	'm': "01",
	'M': "04",
	'p': "PM",
	'S': "05",
	'x': "01/02/06",
	'X': "15:04:05",
	'y': "06",
	'Y': "2006",
	'Z': "MST",
}

// strftime formats t with the subset of C strftime verbs Lua scripts use.
// Unknown verbs are copied through.
func strftime(format string, t time.Time) string {
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			sb.WriteByte(format[i])
			continue
		}
		i++
		switch verb := format[i]; verb {
		case '%':
			sb.WriteByte('%')
		case 'j':
			fmt.Fprintf(&sb, "%03d", t.YearDay())
		default:
			layout, ok := strftimeVerbs[verb]
			if !ok {
				sb.WriteByte('%')
				sb.WriteByte(verb)
				continue
			}
			sb.WriteString(t.Format(layout))
		}
	}
	return sb.String()
}
