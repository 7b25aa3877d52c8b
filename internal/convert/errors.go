package convert

import "errors"

// ErrInvalidJSON is returned when a document is not well-formed JSON.
var ErrInvalidJSON = errors.New("invalid JSON document")
