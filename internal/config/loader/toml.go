package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// TOML decodes TOML documents. Integers decode as int64.
var TOML = Format{
	Name: "toml",
	Decode: func(data []byte) (map[string]any, error) {
		var m map[string]any
		err := toml.Unmarshal(data, &m)
		return m, err
	},
	Position: func(err error) (int, int) {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			return de.Position()
		}
		return 0, 0
	},
}
