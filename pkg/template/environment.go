/*
Copyright (c) 2025 Jinja-Go Project

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package template

import (
	"sync"

	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/render"
	"github.com/work-obs/jinja-go/pkg/value"
)

// Extensions is the feature switch set of an environment.
type Extensions struct {
	// DoExt enables the `do` statement. Reserved; the statement itself is not
	// implemented yet.
	DoExt bool
}

// Settings are the global template environment settings. Only TrimBlocks and
// LstripBlocks influence the core pipeline.
type Settings struct {
	// UseLineStatements enables line statement syntax (not supported yet).
	UseLineStatements bool
	// TrimBlocks removes the first newline after a block tag.
	TrimBlocks bool
	// LstripBlocks strips whitespace from the start of a line to a block tag.
	LstripBlocks bool
	// CacheSize is stored with the settings; the environment keeps no
	// template cache, so it is not consulted.
	CacheSize int
	// AutoReload is stored with the settings and not consulted: LoadTemplate
	// reads through the handlers on every call.
	AutoReload bool
	// Extensions enabled for templates of this environment.
	Extensions Extensions
}

// DefaultSettings returns the settings a fresh environment starts with.
func DefaultSettings() Settings {
	return Settings{
		CacheSize:  400,
		AutoReload: true,
	}
}

// Environment owns global values, settings and the ordered filesystem
// handler list. It is safe for concurrent use; a given environment may back
// many templates and renders at once.
type Environment struct {
	mu       sync.RWMutex
	settings Settings
	globals  *render.Globals
	handlers []FileSystemHandler
}

// NewEnvironment creates an environment with default settings.
func NewEnvironment() *Environment {
	return &Environment{
		settings: DefaultSettings(),
		globals:  render.NewGlobals(),
	}
}

// Settings returns a copy of the current settings.
func (e *Environment) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// SetSettings replaces the settings.
func (e *Environment) SetSettings(s Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
}

// Globals returns the shared global store.
func (e *Environment) Globals() *render.Globals {
	return e.globals
}

// AddGlobal registers a global value, converting plain Go values on the way
// in.
func (e *Environment) AddGlobal(name string, val interface{}) {
	e.globals.Set(name, value.From(val))
}

// RemoveGlobal drops a global value.
func (e *Environment) RemoveGlobal(name string) {
	e.globals.Remove(name)
}

// AddFilesystemHandler appends a loader; the first handler that resolves a
// name wins.
func (e *Environment) AddFilesystemHandler(h FileSystemHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, h)
}

// LoadTemplate resolves a name through the registered handlers and parses
// the result.
func (e *Environment) LoadTemplate(name string) (*Template, error) {
	t, err := e.loadTemplate(name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (e *Environment) loadTemplate(name string) (*Template, *errs.Error) {
	body, ok := e.readSource(name)
	if !ok {
		return nil, errs.NewDetailed(errs.TemplateNotFound, name, errs.AtEnd())
	}
	t := New(e)
	t.SetName(name)
	if err := t.Load(body); err != nil {
		return nil, err.(*errs.Error)
	}
	return t, nil
}

// LoadIncluded implements render.TemplateCallback for include statements.
func (e *Environment) LoadIncluded(name string) (render.Renderer, *errs.Error) {
	t, err := e.loadTemplate(name)
	if err != nil {
		return nil, err
	}
	return includedTemplate{t: t}, nil
}

// ReadSource resolves a template name to its raw source through the
// registered handlers without parsing it.
func (e *Environment) ReadSource(name string) (string, bool) {
	return e.readSource(name)
}

func (e *Environment) readSource(name string) (string, bool) {
	e.mu.RLock()
	handlers := make([]FileSystemHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	for _, h := range handlers {
		if body, ok := readFromHandler(h, name); ok {
			return body, true
		}
	}
	return "", false
}
