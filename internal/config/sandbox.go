package config

import (
	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed from every configuration VM. They give access
// to the host (os, io), load outside code (require, dofile, loadfile, load,
// loadstring) or reach around the other restrictions (debug).
var blockedGlobals = []string{
	"os",
	"io",
	"debug",
	"require",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
}

// sandboxLuaVM strips the blocked globals from L. The string, table and math
// libraries and the basic functions stay available.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a Lua state for evaluating one configuration.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize:       256,
		IncludeGoStackTrace: false,
	})
	sandboxLuaVM(L)
	return L
}
