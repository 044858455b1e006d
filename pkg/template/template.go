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

// Package template is the public surface of the engine: templates, the
// template environment with its globals and settings, and the filesystem
// loader abstraction.
package template

import (
	"io"
	"strings"

	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/render"
	"github.com/work-obs/jinja-go/pkg/scanner"
	"github.com/work-obs/jinja-go/pkg/value"
)

// Template is one parsed template. The renderer tree borrows slices of the
// body string, so the Template must stay alive as long as anything renders
// it. A compiled template is immutable after Load and safe to share across
// goroutines.
type Template struct {
	env  *Environment
	name string
	body string
	root *render.ComposedRenderer
}

// New creates an empty template bound to an environment. The environment may
// be nil, in which case include statements and globals are unavailable.
func New(env *Environment) *Template {
	return &Template{env: env}
}

// SetName sets the name used in error messages and by includes.
func (t *Template) SetName(name string) { t.name = name }

// Name returns the template name, or the placeholder used in error messages
// when none is set.
func (t *Template) Name() string {
	if t.name == "" {
		return errs.DefaultTemplateName
	}
	return t.name
}

// Load parses a template body. A failed parse leaves the template unloaded.
func (t *Template) Load(body string) error {
	var cfg scanner.Config
	if t.env != nil {
		settings := t.env.Settings()
		cfg = scanner.Config{
			TrimBlocks:   settings.TrimBlocks,
			LstripBlocks: settings.LstripBlocks,
		}
	}
	root, err := parseTemplate(body, cfg)
	if err != nil {
		err.SetFilename(t.name)
		t.root = nil
		return err
	}
	t.body = body
	t.root = root
	return nil
}

// Render writes the template against the given values.
func (t *Template) Render(out io.Writer, values map[string]value.Value) error {
	if t.root == nil {
		return errs.New(errs.TemplateNotParsed, errs.AtEnd())
	}
	var globals *render.Globals
	var callback render.TemplateCallback
	if t.env != nil {
		globals = t.env.Globals()
		callback = t.env
	}
	ctx := render.NewContext(values, globals, callback)
	if err := t.root.Render(out, ctx); err != nil {
		err.SetFilename(t.name)
		return err
	}
	return nil
}

// RenderAsString renders into a string.
func (t *Template) RenderAsString(values map[string]value.Value) (string, error) {
	var b strings.Builder
	if err := t.Render(&b, values); err != nil {
		return "", err
	}
	return b.String(), nil
}

// includedTemplate adapts a loaded template for use by include statements:
// it renders with the caller's context and stamps its own filename onto
// errors crossing the template boundary.
type includedTemplate struct {
	t *Template
}

func (it includedTemplate) Render(out io.Writer, ctx *render.Context) *errs.Error {
	if it.t.root == nil {
		return errs.New(errs.TemplateNotParsed, errs.AtEnd())
	}
	if err := it.t.root.Render(out, ctx); err != nil {
		err.SetFilename(it.t.name)
		return err
	}
	return nil
}
