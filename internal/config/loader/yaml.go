package loader

import (
	"errors"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// yaml.v3 only reports positions inside the message text.
var yamlLine = regexp.MustCompile(`line (\d+)`)

// YAML decodes YAML documents. Integers decode as int and an empty
// document is an empty map.
var YAML = Format{
	Name: "yaml",
	Decode: func(data []byte) (map[string]any, error) {
		m := make(map[string]any)
		err := yaml.Unmarshal(data, &m)
		return m, err
	},
	Position: func(err error) (int, int) {
		var te *yaml.TypeError
		msg := err.Error()
		if errors.As(err, &te) && len(te.Errors) > 0 {
			msg = te.Errors[0]
		}
		if m := yamlLine.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return line, 0
		}
		return 0, 0
	},
}
