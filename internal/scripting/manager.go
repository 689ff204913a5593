package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicecalc/internal/dice"
)

// RewriteHook is the Lua global consulted by Rewrite.
const RewriteHook = "rewrite"

// Manager owns one sandboxed LState loaded from a script directory.
//
// Manager is safe for concurrent use; calls into the VM are serialized.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	calc      *dice.Calculator
	logger    *zap.Logger
}

// NewManager creates a Manager with no scripts loaded. Rewrite is the
// identity until Load succeeds.
//
// Precondition: calc and logger must be non-nil.
func NewManager(calc *dice.Calculator, logger *zap.Logger) *Manager {
	return &Manager{calc: calc, logger: logger}
}

// Load creates a fresh VM, registers modules, then executes every *.lua file
// in scriptDir in lexicographic order. A previously loaded VM is replaced only
// on success.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Returns an error on read or Lua load failure, leaving the
// previous VM active.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L := NewSandboxedState()
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := withBudget(L, instLimit, func() error { return L.DoFile(path) }); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.instLimit = instLimit
	m.mu.Unlock()

	m.logger.Info("scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// LoadString replaces the VM with one running src. Intended for tests and
// embedded defaults.
func (m *Manager) LoadString(src string, instLimit int) error {
	L := NewSandboxedState()
	m.RegisterModules(L)
	if err := withBudget(L, instLimit, func() error { return L.DoString(src) }); err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading source: %w", err)
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.instLimit = instLimit
	m.mu.Unlock()
	return nil
}

// Rewrite passes phrase through the Lua rewrite(phrase) hook. A string return
// replaces the phrase; any other return, a missing hook or a Lua runtime
// error leaves it unchanged. Runtime errors are logged at warn level.
func (m *Manager) Rewrite(phrase string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		return phrase
	}
	L := m.state
	fn := L.GetGlobal(RewriteHook)
	if fn.Type() != lua.LTFunction {
		return phrase
	}

	err := withBudget(L, m.instLimit, func() error {
		return L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(phrase))
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", RewriteHook),
			zap.String("phrase", phrase),
			zap.Error(err),
		)
		return phrase
	}

	ret := L.Get(-1)
	L.Pop(1)
	s, ok := ret.(lua.LString)
	if !ok {
		return phrase
	}
	if string(s) != phrase {
		m.logger.Debug("phrase rewritten",
			zap.String("from", phrase),
			zap.String("to", string(s)),
		)
	}
	return string(s)
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
