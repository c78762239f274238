package slumber

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ModuleExt is appended to import uris that carry no extension.
const ModuleExt = ".sl"

var ErrModuleNotFound = errors.New("module not found")

// SourceLoader resolves the uri of an import statement to source text.
type SourceLoader interface {
	LoadSource(uri string) (*Source, error)
}

// FileLoader resolves imports against a list of search directories.
type FileLoader struct {
	Paths []string
}

func (l FileLoader) LoadSource(uri string) (*Source, error) {
	name, err := normalizeModuleURI(uri)
	if err != nil {
		return nil, err
	}
	for _, root := range l.Paths {
		full := filepath.Join(root, name)
		content, err := os.ReadFile(full)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("import %q: %w", uri, err)
		}
		return NewSource(full, string(content)), nil
	}
	return nil, fmt.Errorf("import %q: %w (searched %s)", uri, ErrModuleNotFound, strings.Join(l.Paths, ", "))
}

// MapLoader serves module sources from memory, keyed by import uri.
type MapLoader map[string]string

func (l MapLoader) LoadSource(uri string) (*Source, error) {
	text, ok := l[uri]
	if !ok {
		return nil, fmt.Errorf("import %q: %w", uri, ErrModuleNotFound)
	}
	return NewSource(uri, text), nil
}

func normalizeModuleURI(uri string) (string, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return "", fmt.Errorf("import: module uri must be non-empty")
	}
	name := filepath.FromSlash(trimmed)
	if filepath.Ext(name) == "" {
		name += ModuleExt
	}
	name = filepath.Clean(name)
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("import: module uri %q must be relative", uri)
	}
	if slices.Contains(strings.Split(filepath.ToSlash(name), "/"), "..") {
		return "", fmt.Errorf("import: module uri %q escapes search paths", uri)
	}
	return name, nil
}

// importModule runs the module named by uri once per runtime and
// returns its cached Module afterwards.
func (rt *Runtime) importModule(uri string) (*Object, error) {
	if module, ok := rt.modules[uri]; ok {
		rt.loaderLog.Debugf("module cache hit: %s", uri)
		return module, nil
	}
	if cycle, ok := moduleCycle(rt.loadStack, uri); ok {
		return nil, Errorf("import cycle detected: %s", strings.Join(cycle, " -> "))
	}
	src, err := rt.config.Loader.LoadSource(uri)
	if err != nil {
		return nil, err
	}

	rt.loadStack = append(rt.loadStack, uri)
	defer func() { rt.loadStack = rt.loadStack[:len(rt.loadStack)-1] }()

	rt.loaderLog.Debugf("module cache miss: %s, running %s", uri, src.URI)
	module, err := rt.Run(rt.context(), src, rt.globals.NewChild())
	if err != nil {
		return nil, err
	}
	rt.cacheModule(uri, module)
	return module, nil
}

func (rt *Runtime) cacheModule(uri string, module *Object) {
	for len(rt.moduleOrder) >= rt.config.MaxCachedModules {
		evicted := rt.moduleOrder[0]
		rt.moduleOrder = rt.moduleOrder[1:]
		delete(rt.modules, evicted)
		rt.loaderLog.Debugf("evicted module %s", evicted)
	}
	rt.modules[uri] = module
	rt.moduleOrder = append(rt.moduleOrder, uri)
}

func moduleCycle(stack []string, next string) ([]string, bool) {
	for i, uri := range stack {
		if uri == next {
			return append(append([]string(nil), stack[i:]...), next), true
		}
	}
	return nil, false
}

// Import runs a module through the configured loader outside of any
// script, for hosts that want a module's bindings directly.
func (rt *Runtime) Import(ctx context.Context, uri string) (*Object, error) {
	if rt.config.Loader == nil {
		return nil, fmt.Errorf("import %q: no loader configured", uri)
	}
	done := rt.beginExecution(ctx)
	defer done()
	return rt.importModule(uri)
}
