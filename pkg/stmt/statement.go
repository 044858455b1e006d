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

// Package stmt parses control statements and provides their renderers: the
// if/for/with/include nodes of the renderer tree.
package stmt

import (
	"io"

	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/expr"
	"github.com/work-obs/jinja-go/pkg/render"
	"github.com/work-obs/jinja-go/pkg/value"
)

// IfRenderer renders its body when the condition holds, otherwise the first
// matching else branch in source order.
type IfRenderer struct {
	Condition    expr.Expression
	Body         *render.ComposedRenderer
	ElseBranches []*ElseRenderer
}

// Render implements render.Renderer.
func (r *IfRenderer) Render(out io.Writer, ctx *render.Context) *errs.Error {
	cond, err := expr.Evaluate(r.Condition, ctx)
	if err != nil {
		return err
	}
	if cond.IsTrue() {
		return r.Body.Render(out, ctx)
	}
	for _, branch := range r.ElseBranches {
		take, err := branch.shouldRender(ctx)
		if err != nil {
			return err
		}
		if take {
			return branch.Render(out, ctx)
		}
	}
	return nil
}

// ElseRenderer is an elif branch (with condition) or a final else (without).
type ElseRenderer struct {
	Condition expr.Expression
	Body      *render.ComposedRenderer
}

func (r *ElseRenderer) shouldRender(ctx *render.Context) (bool, *errs.Error) {
	if r.Condition == nil {
		return true, nil
	}
	cond, err := expr.Evaluate(r.Condition, ctx)
	if err != nil {
		return false, err
	}
	return cond.IsTrue(), nil
}

// Render implements render.Renderer.
func (r *ElseRenderer) Render(out io.Writer, ctx *render.Context) *errs.Error {
	return r.Body.Render(out, ctx)
}

// ForRenderer iterates the coerced list form of its iterable, binding the
// loop variable and the `loop` mapping in a scope that is popped afterwards.
type ForRenderer struct {
	Vars     []string
	Iterable expr.Expression
	Body     *render.ComposedRenderer
}

// Render implements render.Renderer.
func (r *ForRenderer) Render(out io.Writer, ctx *render.Context) *errs.Error {
	loopValue, err := expr.Evaluate(r.Iterable, ctx)
	if err != nil {
		return err
	}
	if len(r.Vars) != 1 {
		// Tuple destructuring is accepted by the grammar but not by the
		// renderer.
		return errs.New(errs.InvalidOperation, errs.AtEnd())
	}

	items := loopValue.ToList()
	size := len(items)
	scope := ctx.EnterScope()
	defer ctx.ExitScope()
	for i, item := range items {
		scope.Set(r.Vars[0], item)
		scope.Set("loop", value.Map(map[string]value.Value{
			"index":  value.Integer(int64(i + 1)),
			"index0": value.Integer(int64(i)),
			"first":  value.Boolean(i == 0),
			"last":   value.Boolean(i == size-1),
		}))
		if err := r.Body.Render(out, ctx); err != nil {
			return err
		}
	}
	return nil
}

// WithRenderer binds names for the duration of its body. Every right-hand
// side is evaluated in the outer context before the scope is entered.
type WithRenderer struct {
	Names []string
	Exprs []expr.Expression
	Body  *render.ComposedRenderer
}

// Render implements render.Renderer.
func (r *WithRenderer) Render(out io.Writer, ctx *render.Context) *errs.Error {
	values := make([]value.Value, len(r.Exprs))
	for i, e := range r.Exprs {
		v, err := expr.Evaluate(e, ctx)
		if err != nil {
			return err
		}
		values[i] = v
	}
	scope := ctx.EnterScope()
	defer ctx.ExitScope()
	for i, name := range r.Names {
		scope.Set(name, values[i])
	}
	return r.Body.Render(out, ctx)
}

// IncludeRenderer loads a sibling template through the environment callback
// and renders it with the current context or a fresh globals-only one.
type IncludeRenderer struct {
	NameExpr      expr.Expression
	IgnoreMissing bool
	WithContext   bool
}

// Render implements render.Renderer.
func (r *IncludeRenderer) Render(out io.Writer, ctx *render.Context) *errs.Error {
	callback := ctx.Callback()
	if callback == nil {
		return errs.New(errs.TemplateEnvAbsent, errs.AtEnd())
	}
	name, err := expr.Evaluate(r.NameExpr, ctx)
	if err != nil {
		return err
	}
	included, err := callback.LoadIncluded(name.String())
	if err != nil {
		if r.IgnoreMissing {
			return nil
		}
		return err
	}
	if r.WithContext {
		return included.Render(out, ctx)
	}
	return included.Render(out, ctx.Fresh())
}
