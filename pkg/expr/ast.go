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

// Package expr implements the expression grammar of the engine: a
// recursive-descent parser producing a small AST whose nodes are evaluated
// directly against the render context, plus the built-in filter set.
package expr

import (
	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/value"
)

// BinaryOp enumerates the binary operators.
type BinaryOp int

const (
	OpPlus BinaryOp = iota
	OpMinus
	OpMul
	OpDiv
	OpDivInteger
	OpModulo
	OpPow
	OpLogicalOr
	OpLogicalAnd
	OpLogicalEq
	OpLogicalNe
	OpLogicalLt
	OpLogicalGt
	OpLogicalGe
	OpLogicalLe
	OpStringConcat
)

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	UnaryPlus UnaryOp = iota
	UnaryMinus
	UnaryLogicalNot
)

// Expression is the closed set of AST node types. Evaluation dispatches on
// the concrete type in a single switch; the node set is fixed and small.
type Expression interface {
	exprNode()
}

// Constant is a literal value.
type Constant struct {
	Value value.Value
}

// Binary applies a binary operator to two sub-expressions.
type Binary struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

// Unary applies a unary operator to one sub-expression.
type Unary struct {
	Op      UnaryOp
	Operand Expression
}

// Subscript applies a chain of indices to a base expression, left to right.
type Subscript struct {
	Base    Expression
	Indices []Expression
}

// ValueRef resolves an identifier through the context. Span is relative to
// the parsed fragment; Loc, when set by the template parser, is the absolute
// position used for render-time undefined errors.
type ValueRef struct {
	Name string
	Span errs.Range
	Loc  errs.SourceLocation
}

// Tuple builds a list from its element expressions. Both "(a, b)" and
// "[a, b]" produce this node.
type Tuple struct {
	Items []Expression
}

// Dict builds a map from string-literal keys and element expressions.
type Dict struct {
	Keys   []string
	Values []Expression
}

// Filtered applies a filter chain to the result of a base expression.
type Filtered struct {
	Base  Expression
	Chain *FilterChain
}

func (*Constant) exprNode()  {}
func (*Binary) exprNode()    {}
func (*Unary) exprNode()     {}
func (*Subscript) exprNode() {}
func (*ValueRef) exprNode()  {}
func (*Tuple) exprNode()     {}
func (*Dict) exprNode()      {}
func (*Filtered) exprNode()  {}

// CallParams is the argument record of one filter invocation.
type CallParams struct {
	Positional []Expression
	Keyword    map[string]Expression
}

// FilterChain is a linked chain of filter applications; Parent points toward
// the chain root, which is applied first.
type FilterChain struct {
	Filter FilterKind
	Params *CallParams
	Parent *FilterChain

	filterName string
}
