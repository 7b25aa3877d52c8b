package lua

import (
	"fmt"
	"math"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/stormrepl/internal/inspect"
)

// handleTypeName is the registry name of the Handle metatable.
const handleTypeName = "stormrepl.handle"

// installConsole routes print and console.* into the capturing console and
// exposes inspect(v [, depth]).
func (s *Sandbox) installConsole() {
	log := s.L.NewFunction(func(L *lua.LState) int {
		b := NewBridge(L)
		args := make([]inspect.Value, L.GetTop())
		for i := range args {
			args[i] = b.ToInspectValue(L.Get(i + 1))
		}
		s.console.Log(args...)
		return 0
	})

	s.L.SetGlobal("print", log)

	con := s.L.NewTable()
	for _, name := range []string{"log", "info", "warn", "error", "debug"} {
		s.L.SetField(con, name, log)
	}
	s.L.SetGlobal("console", con)

	s.L.SetGlobal("inspect", s.L.NewFunction(s.luaInspect))
}

// luaInspect renders its first argument. A second argument sets the depth;
// math.huge removes the limit.
func (s *Sandbox) luaInspect(L *lua.LState) int {
	opts := s.console.InspectOptions()
	if L.GetTop() >= 2 && L.Get(2) != lua.LNil {
		depth := float64(L.CheckNumber(2))
		if math.IsNaN(depth) {
			L.ArgError(2, "depth must not be NaN")
		}
		if math.IsInf(depth, 1) {
			opts = append(opts, inspect.WithUnlimitedDepth())
		} else {
			opts = append(opts, inspect.WithDepth(int(depth)))
		}
	}
	L.Push(lua.LString(inspect.Inspect(ToInspectValue(L, L.Get(1)), opts...)))
	return 1
}

// installConstructors registers the constructors for values Lua has no
// native form for.
func (s *Sandbox) installConstructors() {
	mt := s.L.NewTypeMetatable(handleTypeName)
	s.L.SetField(mt, "__index", s.L.NewFunction(handleIndex))
	s.L.SetField(mt, "__newindex", s.L.NewFunction(handleNewIndex))
	s.L.SetField(mt, "__tostring", s.L.NewFunction(handleToString))

	s.L.SetGlobal("Date", s.L.NewFunction(newDate))
	s.L.SetGlobal("RegExp", s.L.NewFunction(newRegExp))
	s.L.SetGlobal("Error", s.L.NewFunction(newError))
	s.L.SetGlobal("box", s.L.NewFunction(newBoxed))
	s.L.SetGlobal("symbol", s.L.NewFunction(newSymbol))
	s.L.SetGlobal("defineProperty", s.L.NewFunction(defineProperty))
}

func pushHandle(L *lua.LState, h *Handle) int {
	ud := L.NewUserData()
	ud.Value = h
	L.SetMetatable(ud, L.GetTypeMetatable(handleTypeName))
	L.Push(ud)
	return 1
}

func checkHandle(L *lua.LState, n int) *Handle {
	ud := L.CheckUserData(n)
	h, ok := ud.Value.(*Handle)
	if !ok {
		L.ArgError(n, "handle expected")
		return nil
	}
	return h
}

// Date([ms | iso8601]) creates a date. Without arguments it is the current
// time; a NaN, infinite or unparsable argument makes an invalid date.
func newDate(L *lua.LState) int {
	var d *inspect.Date
	switch v := L.Get(1).(type) {
	case *lua.LNilType:
		d = inspect.NewDate(time.Now())
	case lua.LNumber:
		ms := float64(v)
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			d = inspect.NewInvalidDate()
		} else {
			d = inspect.NewDate(time.UnixMilli(int64(ms)))
		}
	case lua.LString:
		t, err := time.Parse(time.RFC3339Nano, string(v))
		if err != nil {
			d = inspect.NewInvalidDate()
		} else {
			d = inspect.NewDate(t)
		}
	default:
		L.ArgError(1, "number or string expected")
		return 0
	}
	return pushHandle(L, &Handle{Value: d})
}

// RegExp(source [, flags]) creates a pattern value.
func newRegExp(L *lua.LState) int {
	source := L.CheckString(1)
	flags := L.OptString(2, "")
	return pushHandle(L, &Handle{Value: inspect.NewRegExp(source, flags)})
}

// Error(message [, name]) creates an error value.
func newError(L *lua.LState) int {
	e := inspect.NewError(L.OptString(1, ""))
	if L.GetTop() >= 2 {
		e.Name = L.CheckString(2)
	}
	return pushHandle(L, &Handle{Value: e})
}

// box(v) wraps a primitive. A function argument becomes the
// convert-to-primitive hook; its errors are kept and make the value render
// as a plain object.
func newBoxed(L *lua.LState) int {
	switch v := L.Get(1).(type) {
	case lua.LString:
		p := inspect.String(string(v))
		return pushHandle(L, &Handle{Value: inspect.NewBoxed(p), primitive: p})
	case lua.LNumber:
		p := inspect.Number(float64(v))
		return pushHandle(L, &Handle{Value: inspect.NewBoxed(p), primitive: p})
	case lua.LBool:
		p := inspect.Bool(bool(v))
		return pushHandle(L, &Handle{Value: inspect.NewBoxed(p), primitive: p})
	case *lua.LFunction:
		hook := func() (inspect.Value, error) {
			if err := L.CallByParam(lua.P{Fn: v, NRet: 1, Protect: true}); err != nil {
				return nil, err
			}
			ret := L.Get(-1)
			L.Pop(1)
			return ToInspectValue(L, ret), nil
		}
		return pushHandle(L, &Handle{Value: &inspect.Boxed{ValueOf: hook}})
	default:
		L.ArgError(1, "primitive or function expected")
		return 0
	}
}

// symbol([description]) creates a unique symbol.
func newSymbol(L *lua.LState) int {
	return pushHandle(L, &Handle{Value: inspect.NewSymbol(L.OptString(1, ""))})
}

// handleIndex reads own fields first, then the read-only attributes of the
// prototype.
func handleIndex(L *lua.LState) int {
	h := checkHandle(L, 1)
	key := L.Get(2)

	if h.Fields != nil {
		if v := h.Fields.RawGet(key); v != lua.LNil {
			L.Push(v)
			return 1
		}
	}

	name, ok := key.(lua.LString)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	var v lua.LValue = lua.LNil
	switch p := h.Value.(type) {
	case *inspect.Date:
		if name == "time" {
			if p.Valid() {
				v = lua.LNumber(p.Time.UnixMilli())
			} else {
				v = lua.LNumber(math.NaN())
			}
		}
	case *inspect.RegExp:
		switch name {
		case "source":
			v = lua.LString(p.Source)
		case "flags":
			v = lua.LString(p.Flags)
		}
	case *inspect.Error:
		switch name {
		case "name":
			v = lua.LString(p.Name)
		case "message":
			v = lua.LString(p.Message)
		}
	case *inspect.Symbol:
		if name == "description" {
			v = lua.LString(p.Description)
		}
	}
	L.Push(v)
	return 1
}

// handleNewIndex stores an own field. Symbols take no fields.
func handleNewIndex(L *lua.LState) int {
	h := checkHandle(L, 1)
	if _, ok := h.Value.(*inspect.Symbol); ok {
		L.RaiseError("cannot set a field on a symbol")
		return 0
	}
	if h.Fields == nil {
		h.Fields = L.NewTable()
	}
	h.Fields.RawSet(L.CheckAny(2), L.CheckAny(3))
	return 0
}

func handleToString(L *lua.LState) int {
	ud := L.CheckUserData(1)
	L.Push(lua.LString(inspect.Inspect(ToInspectValue(L, ud))))
	return 1
}

// defineProperty(t, key, { get = fn, set = fn }) installs an accessor pair.
// Reads and writes of key go through the pair; inspection shows the pair
// without calling it.
func defineProperty(L *lua.LState) int {
	t := L.CheckTable(1)
	key := L.CheckAny(2)
	desc := L.CheckTable(3)

	get, hasGet := desc.RawGetString("get").(*lua.LFunction)
	set, hasSet := desc.RawGetString("set").(*lua.LFunction)
	if !hasGet && !hasSet {
		L.ArgError(3, "get or set function expected")
		return 0
	}

	mt, ok := t.Metatable.(*lua.LTable)
	if !ok {
		mt = L.NewTable()
		L.SetMetatable(t, mt)
	}

	accessors, ok := mt.RawGetString(accessorsField).(*lua.LTable)
	if !ok {
		accessors = L.NewTable()
		mt.RawSetString(accessorsField, accessors)
		installAccessorHooks(L, mt, accessors)
	}

	pair := L.NewTable()
	if hasGet {
		pair.RawSetString("get", get)
	}
	if hasSet {
		pair.RawSetString("set", set)
	}
	t.RawSet(key, lua.LNil)
	accessors.RawSet(key, pair)

	L.Push(t)
	return 1
}

func installAccessorHooks(L *lua.LState, mt, accessors *lua.LTable) {
	fallback := mt.RawGetString("__index")

	mt.RawSetString("__index", L.NewFunction(func(L *lua.LState) int {
		self, key := L.Get(1), L.Get(2)
		if pair, ok := accessors.RawGet(key).(*lua.LTable); ok {
			get, ok := pair.RawGetString("get").(*lua.LFunction)
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(get)
			L.Push(self)
			L.Call(1, 1)
			return 1
		}
		switch f := fallback.(type) {
		case *lua.LTable:
			L.Push(L.GetTable(f, key))
		case *lua.LFunction:
			L.Push(f)
			L.Push(self)
			L.Push(key)
			L.Call(2, 1)
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))

	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		self, key, value := L.CheckTable(1), L.Get(2), L.Get(3)
		pair, ok := accessors.RawGet(key).(*lua.LTable)
		if !ok {
			self.RawSet(key, value)
			return 0
		}
		set, ok := pair.RawGetString("set").(*lua.LFunction)
		if !ok {
			L.RaiseError("property %s has only a getter", fmt.Sprint(key))
			return 0
		}
		L.Push(set)
		L.Push(self)
		L.Push(value)
		L.Call(2, 0)
		return 0
	}))
}
