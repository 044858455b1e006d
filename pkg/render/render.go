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

// Package render holds the renderer tree primitives and the evaluation
// context threaded through every render call.
package render

import (
	"io"

	"github.com/work-obs/jinja-go/pkg/errs"
)

// Renderer is a node of the compiled template tree. Rendering walks the tree
// in source order and writes into out.
type Renderer interface {
	Render(out io.Writer, ctx *Context) *errs.Error
}

// ComposedRenderer renders a sequence of children in order, propagating the
// first error.
type ComposedRenderer struct {
	renderers []Renderer
}

// NewComposed creates an empty composition.
func NewComposed() *ComposedRenderer {
	return &ComposedRenderer{}
}

// Add appends a child renderer.
func (c *ComposedRenderer) Add(r Renderer) {
	c.renderers = append(c.renderers, r)
}

// Render implements Renderer.
func (c *ComposedRenderer) Render(out io.Writer, ctx *Context) *errs.Error {
	for _, r := range c.renderers {
		if err := r.Render(out, ctx); err != nil {
			return err
		}
	}
	return nil
}

// RawTextRenderer writes a slice of the template source verbatim. The slice
// borrows from the owning template's body, which must outlive the tree.
type RawTextRenderer struct {
	content string
}

// NewRawText creates a raw text renderer over a source slice.
func NewRawText(content string) *RawTextRenderer {
	return &RawTextRenderer{content: content}
}

// Render implements Renderer.
func (r *RawTextRenderer) Render(out io.Writer, _ *Context) *errs.Error {
	if _, err := io.WriteString(out, r.content); err != nil {
		return errs.New(errs.Unspecified, errs.AtEnd())
	}
	return nil
}
