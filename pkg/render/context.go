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

package render

import (
	"sync"

	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/value"
)

// Globals is the environment-owned, read-mostly mapping shared by every
// render. Access goes through a readers-writer lock so concurrent renders
// observe a consistent snapshot.
type Globals struct {
	mu     sync.RWMutex
	values map[string]value.Value
}

// NewGlobals creates an empty store.
func NewGlobals() *Globals {
	return &Globals{values: make(map[string]value.Value)}
}

// Get looks up a global by name.
func (g *Globals) Get(name string) (value.Value, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.values[name]
	return v, ok
}

// Set inserts or replaces a global.
func (g *Globals) Set(name string, v value.Value) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[name] = v
}

// Remove deletes a global.
func (g *Globals) Remove(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.values, name)
}

// TemplateCallback is the handle through which an include statement reaches
// back into the template environment to load sibling templates.
type TemplateCallback interface {
	LoadIncluded(name string) (Renderer, *errs.Error)
}

// Scope is one mapping frame pushed onto the context while a control
// renderer executes. Frames are shared by pointer so inner renderers observe
// bindings made by the structure that created the frame.
type Scope struct {
	values map[string]value.Value
}

// Set binds a name inside the frame.
func (s *Scope) Set(name string, v value.Value) {
	s.values[name] = v
}

// Context is the layered evaluation environment: an ordered stack of scoped
// frames (innermost last), the caller's external values, and the
// environment's shared globals.
type Context struct {
	scopes   []*Scope
	external map[string]value.Value
	globals  *Globals
	callback TemplateCallback
}

// NewContext creates a context for one render invocation.
func NewContext(external map[string]value.Value, globals *Globals, callback TemplateCallback) *Context {
	if external == nil {
		external = map[string]value.Value{}
	}
	return &Context{external: external, globals: globals, callback: callback}
}

// EnterScope pushes a fresh frame and returns it.
func (c *Context) EnterScope() *Scope {
	s := &Scope{values: make(map[string]value.Value)}
	c.scopes = append(c.scopes, s)
	return s
}

// ExitScope pops the innermost frame.
func (c *Context) ExitScope() {
	if len(c.scopes) > 0 {
		c.scopes = c.scopes[:len(c.scopes)-1]
	}
}

// Find resolves a name through the frames (innermost first), then the
// external values, then the globals. The second result reports whether the
// name was bound anywhere.
func (c *Context) Find(name string) (value.Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i].values[name]; ok {
			return v, true
		}
	}
	if v, ok := c.external[name]; ok {
		return v, true
	}
	if c.globals != nil {
		if v, ok := c.globals.Get(name); ok {
			return v, true
		}
	}
	return value.Empty(), false
}

// Callback returns the template environment handle, if any.
func (c *Context) Callback() TemplateCallback {
	return c.callback
}

// Fresh derives a context seeded only from the globals and the environment
// callback, used by include-without-context.
func (c *Context) Fresh() *Context {
	return NewContext(nil, c.globals, c.callback)
}
