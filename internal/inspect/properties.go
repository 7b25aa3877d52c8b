package inspect

import (
	"strconv"
)

// Key names a property: either a string or a symbol.
type Key struct {
	name   string
	symbol *Symbol
}

// StringKey returns a key for a string property name.
func StringKey(name string) Key {
	return Key{name: name}
}

// SymbolKey returns a key for a symbol-tagged property.
func SymbolKey(s *Symbol) Key {
	return Key{symbol: s}
}

// IndexKey returns the key of array index i.
func IndexKey(i int) Key {
	return Key{name: strconv.Itoa(i)}
}

// IsSymbol reports whether k is a symbol key.
func (k Key) IsSymbol() bool {
	return k.symbol != nil
}

// Symbol returns the symbol of a symbol key, or nil.
func (k Key) Symbol() *Symbol {
	return k.symbol
}

// Name returns the string name of the key, or the symbol's display form.
func (k Key) Name() string {
	if k.symbol != nil {
		return k.symbol.String()
	}
	return k.name
}

// isIndex reports whether the key is made only of ASCII digits.
func (k Key) isIndex() bool {
	if k.symbol != nil || k.name == "" {
		return false
	}
	for i := 0; i < len(k.name); i++ {
		if k.name[i] < '0' || k.name[i] > '9' {
			return false
		}
	}
	return true
}

// index returns the numeric value of an index key, or -1.
func (k Key) index() int {
	if !k.isIndex() {
		return -1
	}
	n, err := strconv.Atoi(k.name)
	if err != nil {
		return -1
	}
	return n
}

// Descriptor describes one own property.
//
// A descriptor with Get or Set is an accessor; Value is ignored for accessors.
// Hidden marks a non-enumerable property.
type Descriptor struct {
	Value  Value
	Get    func() Value
	Set    func(Value)
	Hidden bool
}

// IsAccessor reports whether d is an accessor pair.
func (d Descriptor) IsAccessor() bool {
	return d.Get != nil || d.Set != nil
}

// Properties is an insertion-ordered table of own properties.
//
// The zero value is empty and ready to use.
type Properties struct {
	keys  []Key
	descs map[Key]*Descriptor
}

// Set stores a plain, enumerable property under a string name.
func (p *Properties) Set(name string, v Value) *Properties {
	return p.SetKey(StringKey(name), v)
}

// SetKey stores a plain, enumerable property. An existing property keeps its
// position.
func (p *Properties) SetKey(k Key, v Value) *Properties {
	return p.Define(k, Descriptor{Value: v})
}

// Define stores d under k. An existing property keeps its position.
func (p *Properties) Define(k Key, d Descriptor) *Properties {
	if p.descs == nil {
		p.descs = make(map[Key]*Descriptor)
	}
	if existing, ok := p.descs[k]; ok {
		*existing = d
		return p
	}
	p.keys = append(p.keys, k)
	p.descs[k] = &d
	return p
}

// Delete removes the property k.
func (p *Properties) Delete(k Key) {
	if _, ok := p.descs[k]; !ok {
		return
	}
	delete(p.descs, k)
	for i, key := range p.keys {
		if key == k {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			break
		}
	}
}

// Descriptor returns the descriptor of own property k.
func (p *Properties) Descriptor(k Key) (Descriptor, bool) {
	d, ok := p.descs[k]
	if !ok {
		return Descriptor{}, false
	}
	return *d, true
}

// Has reports whether k is an own property, enumerable or not.
func (p *Properties) Has(k Key) bool {
	_, ok := p.descs[k]
	return ok
}

// Keys returns the enumerable own keys in insertion order.
func (p *Properties) Keys() []Key {
	keys := make([]Key, 0, len(p.keys))
	for _, k := range p.keys {
		if !p.descs[k].Hidden {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of own properties, hidden ones included.
func (p *Properties) Len() int {
	return len(p.keys)
}
