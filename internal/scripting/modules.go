package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/dicecalc/internal/dice"
)

// RegisterModules defines the dice global in L:
//
//	dice.calculate(expr) -> {min, max, average, generated, text} | nil, errmsg
//	dice.normalize(expr) -> string
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "calculate", L.NewFunction(m.luaCalculate))
	L.SetField(mod, "normalize", L.NewFunction(luaNormalize))
	L.SetGlobal("dice", mod)
}

func (m *Manager) luaCalculate(L *lua.LState) int {
	expr := L.CheckString(1)
	res, err := m.calc.Calculate(expr)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(resultTable(L, res))
	return 1
}

func luaNormalize(L *lua.LState) int {
	L.Push(lua.LString(dice.Normalize(L.CheckString(1))))
	return 1
}

func resultTable(L *lua.LState, r dice.Result) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "min", lua.LNumber(r.Min))
	L.SetField(t, "max", lua.LNumber(r.Max))
	L.SetField(t, "average", lua.LNumber(r.Average))
	L.SetField(t, "generated", lua.LNumber(r.Generated))
	L.SetField(t, "text", lua.LString(r.Text))
	return t
}
