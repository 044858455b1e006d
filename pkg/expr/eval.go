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

package expr

import (
	"io"

	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/render"
	"github.com/work-obs/jinja-go/pkg/value"
)

// Evaluate walks an expression tree against the context. A name that is not
// bound anywhere evaluates to Empty here; surfacing "undefined" is the
// responsibility of the spot that needs a concrete value (see
// ExpressionRenderer).
func Evaluate(e Expression, ctx *render.Context) (value.Value, *errs.Error) {
	switch node := e.(type) {
	case *Constant:
		return node.Value, nil

	case *ValueRef:
		v, _ := ctx.Find(node.Name)
		return v, nil

	case *Binary:
		left, err := Evaluate(node.Left, ctx)
		if err != nil {
			return value.Value{}, err
		}
		right, err := Evaluate(node.Right, ctx)
		if err != nil {
			return value.Value{}, err
		}
		return applyBinary(node.Op, left, right), nil

	case *Unary:
		operand, err := Evaluate(node.Operand, ctx)
		if err != nil {
			return value.Value{}, err
		}
		switch node.Op {
		case UnaryPlus:
			return value.Pos(operand), nil
		case UnaryMinus:
			return value.Neg(operand), nil
		default:
			return value.Not(operand), nil
		}

	case *Subscript:
		current, err := Evaluate(node.Base, ctx)
		if err != nil {
			return value.Value{}, err
		}
		for _, idx := range node.Indices {
			index, err := Evaluate(idx, ctx)
			if err != nil {
				return value.Value{}, err
			}
			current, err = applySubscript(current, index)
			if err != nil {
				return value.Value{}, err
			}
		}
		return current, nil

	case *Tuple:
		items := make([]value.Value, len(node.Items))
		for i, item := range node.Items {
			v, err := Evaluate(item, ctx)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.List(items...), nil

	case *Dict:
		m := make(map[string]value.Value, len(node.Keys))
		for i, k := range node.Keys {
			v, err := Evaluate(node.Values[i], ctx)
			if err != nil {
				return value.Value{}, err
			}
			m[k] = v
		}
		return value.Map(m), nil

	case *Filtered:
		base, err := Evaluate(node.Base, ctx)
		if err != nil {
			return value.Value{}, err
		}
		return node.Chain.apply(base, ctx)
	}
	return value.Value{}, errs.New(errs.Unspecified, errs.AtEnd())
}

func applyBinary(op BinaryOp, left, right value.Value) value.Value {
	switch op {
	case OpPlus:
		return value.Add(left, right)
	case OpMinus:
		return value.Sub(left, right)
	case OpMul:
		return value.Mul(left, right)
	case OpDiv:
		return value.Div(left, right)
	case OpDivInteger:
		return value.IntDiv(left, right)
	case OpModulo:
		return value.Mod(left, right)
	case OpPow:
		return value.Pow(left, right)
	case OpStringConcat:
		return value.Concat(left, right)
	case OpLogicalOr:
		return value.Boolean(left.IsTrue() || right.IsTrue())
	case OpLogicalAnd:
		return value.Boolean(left.IsTrue() && right.IsTrue())
	case OpLogicalEq:
		return value.Boolean(value.Equal(left, right))
	case OpLogicalNe:
		return value.Boolean(!value.Equal(left, right))
	case OpLogicalLt:
		return value.Boolean(value.Compare(left, right) < 0)
	case OpLogicalGt:
		return value.Boolean(value.Compare(left, right) > 0)
	case OpLogicalLe:
		return value.Boolean(value.Compare(left, right) <= 0)
	case OpLogicalGe:
		return value.Boolean(value.Compare(left, right) >= 0)
	}
	return value.Error()
}

// applySubscript indexes a string or list by integer and a map by string.
func applySubscript(base, index value.Value) (value.Value, *errs.Error) {
	switch base.Kind() {
	case value.KindString:
		if i, ok := index.AsInteger(); ok {
			s, _ := base.AsString()
			runes := []rune(s)
			if i < 0 || i >= int64(len(runes)) {
				return value.Value{}, errs.New(errs.InvalidOperation, errs.AtEnd())
			}
			return value.String(string(runes[i])), nil
		}
	case value.KindList:
		if i, ok := index.AsInteger(); ok {
			items, _ := base.AsList()
			if i < 0 || i >= int64(len(items)) {
				return value.Value{}, errs.New(errs.InvalidOperation, errs.AtEnd())
			}
			return items[i], nil
		}
	case value.KindMap:
		if key, ok := index.AsString(); ok {
			m, _ := base.AsMap()
			if v, ok := m[key]; ok {
				return v, nil
			}
			return value.Empty(), nil
		}
	}
	return value.Value{}, errs.New(errs.InvalidOperation, errs.AtEnd())
}

// Renderer writes the stringified result of an expression. A bare reference
// to an unbound name is the one place that must produce a concrete value, so
// it surfaces UndefinedValue.
type Renderer struct {
	Root Expression
}

// NewRenderer wraps a parsed expression for top-level rendering.
func NewRenderer(root Expression) *Renderer {
	return &Renderer{Root: root}
}

// Render implements render.Renderer.
func (r *Renderer) Render(out io.Writer, ctx *render.Context) *errs.Error {
	if ref, ok := r.Root.(*ValueRef); ok {
		if _, found := ctx.Find(ref.Name); !found {
			loc := ref.Loc
			if loc.Mode == errs.LocUnspecified {
				loc = errs.Span(ref.Span.Start, ref.Span.End)
			}
			return errs.NewDetailed(errs.UndefinedValue, ref.Name, loc)
		}
	}
	v, err := Evaluate(r.Root, ctx)
	if err != nil {
		return err
	}
	if _, werr := io.WriteString(out, v.String()); werr != nil {
		return errs.New(errs.Unspecified, errs.AtEnd())
	}
	return nil
}
