package loader

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/parley/engine/graph"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	games       []rawEntry
	actors      []rawEntry
	dialogues   []rawEntry
	expressions []rawEntry
	file        string // file currently executing
}

// Load reads every .lua and .yaml/.yml file in dir, compiles them into a
// dialogue graph, validates references and returns the graph. Validation
// warnings are logged; errors are returned as a *ValidationError.
func Load(dir string, logger *log.Logger) (*graph.Graph, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}

	var luaFiles, yamlFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".lua":
			luaFiles = append(luaFiles, e.Name())
		case ".yaml", ".yml":
			yamlFiles = append(yamlFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 && len(yamlFiles) == 0 {
		return nil, fmt.Errorf("no .lua or .yaml files found in %s", dir)
	}

	// game.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)
	sort.Strings(yamlFiles)

	b := newBuilder()

	if len(luaFiles) > 0 {
		if err := loadLua(dir, luaFiles, b); err != nil {
			return nil, err
		}
	}
	for _, f := range yamlFiles {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		if err := loadYAML(data, f, b); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
	}

	if err := validate(b, logger); err != nil {
		return nil, err
	}
	return b.g, nil
}

// loadLua runs the Lua files in a fresh sandboxed VM and compiles what they
// declared. The VM is closed before returning.
func loadLua(dir string, files []string, b *builder) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range files {
		coll.file = f
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
	}

	compile(coll, b)
	return nil
}

// LoadLuaString compiles a single Lua chunk into a validated graph.
func LoadLuaString(src string, logger *log.Logger) (*graph.Graph, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{file: "<string>"}
	registerAPI(L, coll)
	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("executing chunk: %w", err)
	}

	b := newBuilder()
	compile(coll, b)
	if err := validate(b, logger); err != nil {
		return nil, err
	}
	return b.g, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach the filesystem or bypass metatables.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Keep authored content deterministic.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
