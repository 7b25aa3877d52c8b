package loader

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultEnvPrefix is the prefix of recognised environment variables.
const DefaultEnvPrefix = "STORMREPL_"

// envAliases maps short variable names, without the prefix, to settings.
// Any other prefixed variable is read as SECTION_SETTING_NAME.
var envAliases = map[string]string{
	"DEPTH":           "inspect.depth",
	"UNLIMITED_DEPTH": "inspect.unlimited",
	"COLOR":           "inspect.colors",
	"COLORS":          "inspect.colors",
	"EVAL":            "repl.evaluate",
	"LISTING":         "repl.showListing",
	"TIMEOUT":         "repl.timeout",
	"CAPABILITIES":    "repl.capabilities",
	"DEBOUNCE":        "watch.debounce",
	"LOG_LEVEL":       "logging.level",
	"LOG_FORMAT":      "logging.format",
}

// EnvLoader reads settings from prefixed environment variables.
type EnvLoader struct {
	prefix  string
	aliases map[string]string
	environ func() []string
}

// NewEnvLoader creates a loader for variables starting with prefix. The
// prefix includes its trailing underscore, as in DefaultEnvPrefix.
func NewEnvLoader(prefix string) *EnvLoader {
	aliases := make(map[string]string, len(envAliases))
	for name, path := range envAliases {
		aliases[name] = path
	}
	return &EnvLoader{prefix: prefix, aliases: aliases, environ: os.Environ}
}

// Alias routes the variable prefix+name to a setting path.
func (l *EnvLoader) Alias(name, path string) {
	l.aliases[strings.TrimPrefix(name, l.prefix)] = path
}

// Load collects every prefixed variable. An empty value is still a value.
func (l *EnvLoader) Load() (map[string]any, error) {
	settings := make(map[string]any)
	for _, kv := range l.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, l.prefix) {
			continue
		}
		setByPath(settings, l.settingPath(key), parseValue(value))
	}
	return settings, nil
}

// settingPath turns STORMREPL_WATCH_DEBOUNCE_TIME into watch.debounceTime
// unless the variable has an alias.
func (l *EnvLoader) settingPath(key string) string {
	name := strings.TrimPrefix(key, l.prefix)
	if path, ok := l.aliases[name]; ok {
		return path
	}

	section, rest, found := strings.Cut(strings.ToLower(name), "_")
	if !found {
		return section
	}
	var b strings.Builder
	b.WriteString(section)
	b.WriteByte('.')
	for i, w := range strings.FieldsFunc(rest, func(r rune) bool { return r == '_' }) {
		if i > 0 {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		b.WriteString(w)
	}
	return b.String()
}

// parseValue guesses the type of a variable. Integers win over booleans,
// so "1" is a number. JSON arrays and objects decode to []any and
// map[string]any.
func parseValue(s string) any {
	if s == "" {
		return s
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if (s[0] == '[' || s[0] == '{') && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}
	return s
}

// setByPath stores value under a dotted path, creating maps on the way.
func setByPath(data map[string]any, path string, value any) {
	keys := strings.Split(path, ".")
	last := len(keys) - 1
	for _, key := range keys[:last] {
		child, ok := data[key].(map[string]any)
		if !ok {
			child = make(map[string]any)
			data[key] = child
		}
		data = child
	}
	data[keys[last]] = value
}
