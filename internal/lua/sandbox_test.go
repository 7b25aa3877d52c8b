package lua

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestState(t *testing.T, caps ...Capability) *State {
	t.Helper()
	state, err := NewState(WithCapabilities(caps...))
	if err != nil {
		t.Fatalf("NewState() error = %v", err)
	}
	t.Cleanup(func() { state.Close() })
	return state
}

func TestSandboxSafeRequire(t *testing.T) {
	state := newTestState(t)

	if err := state.DoString(context.Background(), `local s = require("string"); x = s.upper("a")`); err != nil {
		t.Fatalf("require(string) error = %v", err)
	}
	if got := state.GetGlobal("x").String(); got != "A" {
		t.Errorf("x = %q, want A", got)
	}

	blocked := []string{"os", "io", "debug", "socket"}
	for _, mod := range blocked {
		err := state.DoString(context.Background(), `require("`+mod+`")`)
		if err == nil {
			t.Errorf("require(%q) should fail without capability", mod)
		}
	}
}

func TestSandboxGrant(t *testing.T) {
	state := newTestState(t)
	sandbox := state.Sandbox()

	if sandbox.HasCapability(CapabilityEnv) {
		t.Error("HasCapability() = true before Grant")
	}
	if err := sandbox.Grant(CapabilityEnv); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if !sandbox.HasCapability(CapabilityEnv) {
		t.Error("HasCapability() = false after Grant")
	}

	err := sandbox.Grant("shell")
	var capErr *CapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("Grant(shell) error = %v, want *CapabilityError", err)
	}
	if capErr.Capability != "shell" {
		t.Errorf("CapabilityError.Capability = %v, want shell", capErr.Capability)
	}
}

func TestSandboxCapabilities(t *testing.T) {
	state := newTestState(t, CapabilityUnsafe, CapabilityClock)

	caps := state.Sandbox().Capabilities()
	if len(caps) != 2 || caps[0] != CapabilityClock || caps[1] != CapabilityUnsafe {
		t.Errorf("Capabilities() = %v, want [clock unsafe]", caps)
	}
}

func TestSandboxCheckCapability(t *testing.T) {
	state := newTestState(t)
	sandbox := state.Sandbox()

	err := sandbox.CheckCapability(CapabilityFileRead)
	capErr, ok := err.(*CapabilityError)
	if !ok {
		t.Fatalf("CheckCapability returned %T, want *CapabilityError", err)
	}
	if capErr.Capability != CapabilityFileRead {
		t.Errorf("CapabilityError.Capability = %v, want %v", capErr.Capability, CapabilityFileRead)
	}

	if err := sandbox.Grant(CapabilityFileRead); err != nil {
		t.Fatalf("Grant() error = %v", err)
	}
	if err := sandbox.CheckCapability(CapabilityFileRead); err != nil {
		t.Errorf("CheckCapability with capability error = %v", err)
	}
}

func TestCapabilityError(t *testing.T) {
	err := &CapabilityError{Capability: CapabilityEnv}
	if got, want := err.Error(), "capability not granted: env"; got != want {
		t.Errorf("CapabilityError.Error() = %q, want %q", got, want)
	}

	err = &CapabilityError{Capability: "shell", Err: ErrUnknownCapability}
	if got, want := err.Error(), "unknown capability: shell"; got != want {
		t.Errorf("CapabilityError.Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrUnknownCapability) {
		t.Error("CapabilityError should unwrap to ErrUnknownCapability")
	}
}

func TestParseCapability(t *testing.T) {
	tests := []struct {
		name    string
		want    Capability
		wantErr bool
	}{
		{"clock", CapabilityClock, false},
		{" ENV ", CapabilityEnv, false},
		{"filesystem.read", CapabilityFileRead, false},
		{"unsafe", CapabilityUnsafe, false},
		{"network", "network", true},
	}

	for _, tt := range tests {
		got, err := ParseCapability(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCapability(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseCapability(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSandboxClock(t *testing.T) {
	state := newTestState(t, CapabilityClock)

	err := state.DoString(context.Background(), `
		now = os.time()
		year = os.date("!%Y", 0)
		parts = os.date("!*t", 86400)
		elapsed = os.clock()
	`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if now := state.GetGlobal("now").String(); now == "" || now == "nil" {
		t.Errorf("os.time() = %q", now)
	}
	if got := state.GetGlobal("year").String(); got != "1970" {
		t.Errorf("os.date(!%%Y, 0) = %q, want 1970", got)
	}
	if err := state.DoString(context.Background(), `day = parts.day`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := state.GetGlobal("day").String(); got != "2" {
		t.Errorf("os.date(!*t).day = %q, want 2", got)
	}
}

func TestSandboxEnv(t *testing.T) {
	t.Setenv("STORMREPL_SANDBOX_TEST", "yes")
	state := newTestState(t, CapabilityEnv)

	err := state.DoString(context.Background(), `
		value = os.getenv("STORMREPL_SANDBOX_TEST")
		missing = os.getenv("STORMREPL_SANDBOX_MISSING") == nil
	`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := state.GetGlobal("value").String(); got != "yes" {
		t.Errorf("os.getenv() = %q, want yes", got)
	}
	if got := state.GetGlobal("missing").String(); got != "true" {
		t.Errorf("os.getenv(missing) == nil = %q, want true", got)
	}
	if state.GetGlobal("os").String() == "nil" {
		t.Error("os table should exist with env capability")
	}
}

func TestSandboxFileRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("one\r\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	state := newTestState(t, CapabilityFileRead)

	code := `
		content = io.readfile(PATH)
		lines = {}
		for line in io.lines(PATH) do lines[#lines + 1] = line end
		count = #lines
		first = lines[1]
	`
	code = strings.ReplaceAll(code, "PATH", "'"+filepath.ToSlash(path)+"'")
	if err := state.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if got := state.GetGlobal("count").String(); got != "2" {
		t.Errorf("line count = %q, want 2", got)
	}
	if got := state.GetGlobal("first").String(); got != "one" {
		t.Errorf("first line = %q, want one", got)
	}
	if got := state.GetGlobal("content").String(); got != "one\r\ntwo\n" {
		t.Errorf("readfile() = %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\nb\n", []string{"a", "b"}},
		{"a\r\nb", []string{"a", "b"}},
		{"a\n\nb", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		got := splitLines(tt.input)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("splitLines(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStrftime(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

	tests := []struct {
		format string
		want   string
	}{
		{"%Y-%m-%d", "2024-03-05"},
		{"%H:%M:%S", "14:07:09"},
		{"%j", "065"},
		{"%a %b", "Tue Mar"},
		{"100%%", "100%"},
		{"%Q", "%Q"},
		{"trailing %", "trailing %"},
	}

	for _, tt := range tests {
		if got := strftime(tt.format, ts); got != tt.want {
			t.Errorf("strftime(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
