package convert

import (
	"github.com/tidwall/gjson"

	"github.com/dshills/stormrepl/internal/inspect"
)

// FromJSON parses data into an inspect value.
func FromJSON(data []byte) (inspect.Value, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// FromJSONString is FromJSON for string input.
func FromJSONString(s string) (inspect.Value, error) {
	return FromJSON([]byte(s))
}

func fromResult(r gjson.Result) inspect.Value {
	switch r.Type {
	case gjson.Null:
		return inspect.Null
	case gjson.False:
		return inspect.Bool(false)
	case gjson.True:
		return inspect.Bool(true)
	case gjson.Number:
		return inspect.Number(r.Num)
	case gjson.String:
		return inspect.String(r.Str)
	}

	if r.IsArray() {
		arr := inspect.NewArray()
		r.ForEach(func(_, v gjson.Result) bool {
			arr.Push(fromResult(v))
			return true
		})
		return arr
	}

	obj := inspect.NewObject()
	r.ForEach(func(k, v gjson.Result) bool {
		obj.Set(k.Str, fromResult(v))
		return true
	})
	return obj
}
