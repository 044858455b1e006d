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
	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/lexer"
	"github.com/work-obs/jinja-go/pkg/value"
)

// Parse parses a whole expression fragment (the interior of an "{{ ... }}"
// block) and returns its top-level renderer. Error locations are byte ranges
// relative to the fragment; the template parser rebases them.
func Parse(text string) (*Renderer, *errs.Error) {
	lx := lexer.New(text)
	root, err := ParseFull(lx)
	if err != nil {
		return nil, err
	}
	tok, terr := lx.Next()
	if terr != nil {
		return nil, terr
	}
	if !tok.IsEOF() {
		return nil, errs.New(errs.UnexpectedToken, errs.Span(tok.Span.Start, tok.Span.End))
	}
	return NewRenderer(root), nil
}

// ParseFull parses one full expression from an already-positioned lexer,
// leaving trailing tokens unconsumed. The statement parser uses it for
// embedded expressions.
func ParseFull(lx *lexer.Lexer) (Expression, *errs.Error) {
	return parseOr(lx)
}

func parseOr(lx *lexer.Lexer) (Expression, *errs.Error) {
	left, err := parseAnd(lx)
	if err != nil {
		return nil, err
	}
	for {
		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind != lexer.TokOr {
			return left, nil
		}
		lx.Next()
		right, err := parseAnd(lx)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpLogicalOr, Left: left, Right: right}
	}
}

func parseAnd(lx *lexer.Lexer) (Expression, *errs.Error) {
	left, err := parseCompare(lx)
	if err != nil {
		return nil, err
	}
	for {
		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind != lexer.TokAnd {
			return left, nil
		}
		lx.Next()
		right, err := parseCompare(lx)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: OpLogicalAnd, Left: left, Right: right}
	}
}

// parseCompare is non-associative: at most one comparison per level.
func parseCompare(lx *lexer.Lexer) (Expression, *errs.Error) {
	left, err := parseConcat(lx)
	if err != nil {
		return nil, err
	}
	tok, terr := lx.Peek()
	if terr != nil {
		return nil, terr
	}
	var op BinaryOp
	switch tok.Kind {
	case lexer.TokEqual:
		op = OpLogicalEq
	case lexer.TokNotEqual:
		op = OpLogicalNe
	case lexer.TokLt:
		op = OpLogicalLt
	case lexer.TokGt:
		op = OpLogicalGt
	case lexer.TokLessEqual:
		op = OpLogicalLe
	case lexer.TokGreaterEqual:
		op = OpLogicalGe
	default:
		return left, nil
	}
	lx.Next()
	right, err := parseConcat(lx)
	if err != nil {
		return nil, err
	}
	return &Binary{Op: op, Left: left, Right: right}, nil
}

// parseConcat handles `~`, right-associatively.
func parseConcat(lx *lexer.Lexer) (Expression, *errs.Error) {
	left, err := parseAdditive(lx)
	if err != nil {
		return nil, err
	}
	tok, terr := lx.Peek()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind != lexer.TokTilde {
		return left, nil
	}
	lx.Next()
	right, err := parseConcat(lx)
	if err != nil {
		return nil, err
	}
	return &Binary{Op: OpStringConcat, Left: left, Right: right}, nil
}

func parseAdditive(lx *lexer.Lexer) (Expression, *errs.Error) {
	left, err := parseMultiplicative(lx)
	if err != nil {
		return nil, err
	}
	for {
		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		var op BinaryOp
		switch tok.Kind {
		case lexer.TokPlus:
			op = OpPlus
		case lexer.TokMinus:
			op = OpMinus
		default:
			return left, nil
		}
		lx.Next()
		right, err := parseMultiplicative(lx)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func parseMultiplicative(lx *lexer.Lexer) (Expression, *errs.Error) {
	left, err := parsePower(lx)
	if err != nil {
		return nil, err
	}
	for {
		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		var op BinaryOp
		switch tok.Kind {
		case lexer.TokMul:
			op = OpMul
		case lexer.TokDiv:
			op = OpDiv
		case lexer.TokDivDiv:
			op = OpDivInteger
		case lexer.TokPercent:
			op = OpModulo
		default:
			return left, nil
		}
		lx.Next()
		right, err := parsePower(lx)
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

// parsePower handles `**`, right-associatively.
func parsePower(lx *lexer.Lexer) (Expression, *errs.Error) {
	left, err := parseUnary(lx)
	if err != nil {
		return nil, err
	}
	tok, terr := lx.Peek()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind != lexer.TokMulMul {
		return left, nil
	}
	lx.Next()
	right, err := parsePower(lx)
	if err != nil {
		return nil, err
	}
	return &Binary{Op: OpPow, Left: left, Right: right}, nil
}

// parseUnary applies an optional unary operator to a primary and then
// attaches a trailing filter chain to the result.
func parseUnary(lx *lexer.Lexer) (Expression, *errs.Error) {
	tok, terr := lx.Peek()
	if terr != nil {
		return nil, terr
	}
	hasOp := true
	var op UnaryOp
	switch tok.Kind {
	case lexer.TokPlus:
		op = UnaryPlus
	case lexer.TokMinus:
		op = UnaryMinus
	case lexer.TokNot:
		op = UnaryLogicalNot
	default:
		hasOp = false
	}
	if hasOp {
		lx.Next()
	}

	result, err := parsePrimary(lx)
	if err != nil {
		return nil, err
	}
	if hasOp {
		result = &Unary{Op: op, Operand: result}
	}

	tok, terr = lx.Peek()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind == lexer.TokPipe {
		lx.Next()
		chain, err := parseFilterChain(lx)
		if err != nil {
			return nil, err
		}
		return &Filtered{Base: result, Chain: chain}, nil
	}
	return result, nil
}

func parseFilterChain(lx *lexer.Lexer) (*FilterChain, *errs.Error) {
	var result *FilterChain
	for {
		tok, terr := lx.Next()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind != lexer.TokIdentifier {
			return nil, errs.New(errs.ExpectedIdentifier, errs.Span(tok.Span.Start, tok.Span.End))
		}
		var params *CallParams
		next, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if next.Kind == lexer.TokLBracket {
			lx.Next()
			p, err := parseCallParams(lx)
			if err != nil {
				return nil, err
			}
			params = p
		}
		filter, err := newFilterChain(tok.Text, params, tok.Span)
		if err != nil {
			return nil, err
		}
		filter.Parent = result
		result = filter

		next, terr = lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if next.Kind != lexer.TokPipe {
			return result, nil
		}
		lx.Next()
	}
}

// parseCallParams parses "(a, k=v, ...)" after the opening bracket has been
// consumed. An identifier followed by `=` introduces a keyword argument.
func parseCallParams(lx *lexer.Lexer) (*CallParams, *errs.Error) {
	tok, terr := lx.Peek()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind == lexer.TokRBracket {
		lx.Next()
		return nil, nil
	}

	params := &CallParams{Keyword: map[string]Expression{}}
	for {
		name := ""
		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind == lexer.TokIdentifier {
			second, terr := lx.PeekSecond()
			if terr != nil {
				return nil, terr
			}
			if second.Kind == lexer.TokAssign {
				lx.Next()
				lx.Next()
				name = tok.Text
			}
		}
		arg, err := ParseFull(lx)
		if err != nil {
			return nil, err
		}
		if name != "" {
			params.Keyword[name] = arg
		} else {
			params.Positional = append(params.Positional, arg)
		}
		tok, terr = lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind != lexer.TokComma {
			break
		}
		lx.Next()
	}

	tok, terr = lx.Next()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind != lexer.TokRBracket {
		return nil, errs.NewDetailed(errs.ExpectedBracket, ")", errs.Span(tok.Span.Start, tok.Span.End))
	}
	return params, nil
}

// parsePrimary parses a literal, identifier, group, tuple or dict, then any
// trailing subscript or attribute chain.
func parsePrimary(lx *lexer.Lexer) (Expression, *errs.Error) {
	tok, terr := lx.Next()
	if terr != nil {
		return nil, terr
	}

	var result Expression
	switch tok.Kind {
	case lexer.TokInteger:
		result = &Constant{Value: value.Integer(tok.Int)}
	case lexer.TokFloat:
		result = &Constant{Value: value.Double(tok.Float)}
	case lexer.TokString:
		result = &Constant{Value: value.String(tok.Text)}
	case lexer.TokTrue:
		result = &Constant{Value: value.Boolean(true)}
	case lexer.TokFalse:
		result = &Constant{Value: value.Boolean(false)}
	case lexer.TokNone:
		result = &Constant{Value: value.Empty()}
	case lexer.TokIdentifier:
		result = &ValueRef{Name: tok.Text, Span: tok.Span}
	case lexer.TokLBracket:
		group, err := parseBracedOrTuple(lx)
		if err != nil {
			return nil, err
		}
		result = group
	case lexer.TokLSqBracket:
		list, err := parseTupleList(lx)
		if err != nil {
			return nil, err
		}
		result = list
	case lexer.TokLCrlBracket:
		dict, err := parseDict(lx)
		if err != nil {
			return nil, err
		}
		result = dict
	default:
		return nil, errs.New(errs.ExpectedExpression, errs.Span(tok.Span.Start, tok.Span.End))
	}

	next, terr := lx.Peek()
	if terr != nil {
		return nil, terr
	}
	switch next.Kind {
	case lexer.TokLSqBracket, lexer.TokPoint:
		return parseSubscript(lx, result)
	case lexer.TokLBracket:
		// Function-call syntax is a Jinja feature outside this grammar.
		return nil, errs.New(errs.YetUnsupported, errs.Span(next.Span.Start, next.Span.End))
	}
	return result, nil
}

// parseBracedOrTuple handles "(expr)" and "(a, b, ...)" after the opening
// bracket has been consumed; a comma anywhere turns the group into a tuple.
func parseBracedOrTuple(lx *lexer.Lexer) (Expression, *errs.Error) {
	isTuple := false
	var exprs []Expression
	for {
		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind == lexer.TokRBracket {
			lx.Next()
			break
		}
		item, err := parseOr(lx)
		if err != nil {
			if len(exprs) > 0 {
				return nil, errs.NewDetailed(errs.ExpectedBracket, ")", errs.AtEnd())
			}
			return nil, err
		}
		exprs = append(exprs, item)
		tok, terr = lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind == lexer.TokComma {
			lx.Next()
			isTuple = true
		}
	}
	if len(exprs) == 0 {
		span := lx.Span()
		return nil, errs.New(errs.ExpectedExpression, errs.Span(span.Start, span.End))
	}
	if isTuple {
		return &Tuple{Items: exprs}, nil
	}
	return exprs[0], nil
}

// parseTupleList handles "[a, b, ...]" after the opening bracket has been
// consumed.
func parseTupleList(lx *lexer.Lexer) (Expression, *errs.Error) {
	tok, terr := lx.Peek()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind == lexer.TokRSqBracket {
		lx.Next()
		return &Tuple{}, nil
	}

	var items []Expression
	for {
		item, err := ParseFull(lx)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind != lexer.TokComma {
			break
		}
		lx.Next()
	}

	tok, terr = lx.Next()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind != lexer.TokRSqBracket {
		return nil, errs.NewDetailed(errs.ExpectedBracket, "]", errs.Span(tok.Span.Start, tok.Span.End))
	}
	return &Tuple{Items: items}, nil
}

// parseDict handles `{"key": expr, ...}` after the opening bracket has been
// consumed; keys must be string literals.
func parseDict(lx *lexer.Lexer) (Expression, *errs.Error) {
	dict := &Dict{}
	tok, terr := lx.Peek()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind == lexer.TokRCrlBracket {
		lx.Next()
		return dict, nil
	}

	for {
		key, terr := lx.Next()
		if terr != nil {
			return nil, terr
		}
		if key.Kind != lexer.TokString {
			return nil, errs.New(errs.ExpectedStringLiteral, errs.Span(key.Span.Start, key.Span.End))
		}
		colon, terr := lx.Next()
		if terr != nil {
			return nil, terr
		}
		if colon.Kind != lexer.TokColon {
			return nil, errs.NewDetailed(errs.ExpectedToken, ":", errs.Span(colon.Span.Start, colon.Span.End))
		}
		item, err := ParseFull(lx)
		if err != nil {
			return nil, err
		}
		dict.Keys = append(dict.Keys, key.Text)
		dict.Values = append(dict.Values, item)

		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		if tok.Kind != lexer.TokComma {
			break
		}
		lx.Next()
	}

	tok, terr = lx.Next()
	if terr != nil {
		return nil, terr
	}
	if tok.Kind != lexer.TokRCrlBracket {
		return nil, errs.NewDetailed(errs.ExpectedBracket, "}", errs.Span(tok.Span.Start, tok.Span.End))
	}
	return dict, nil
}

// parseSubscript consumes a chain of "[expr]" and ".identifier" accessors.
func parseSubscript(lx *lexer.Lexer, base Expression) (Expression, *errs.Error) {
	subscript := &Subscript{Base: base}
	for {
		tok, terr := lx.Peek()
		if terr != nil {
			return nil, terr
		}
		switch tok.Kind {
		case lexer.TokLSqBracket:
			lx.Next()
			index, err := ParseFull(lx)
			if err != nil {
				return nil, err
			}
			closing, terr := lx.Next()
			if terr != nil {
				return nil, terr
			}
			if closing.Kind != lexer.TokRSqBracket {
				return nil, errs.NewDetailed(errs.ExpectedBracket, "]",
					errs.Span(closing.Span.Start, closing.Span.End))
			}
			subscript.Indices = append(subscript.Indices, index)
		case lexer.TokPoint:
			lx.Next()
			ident, terr := lx.Next()
			if terr != nil {
				return nil, terr
			}
			if ident.Kind != lexer.TokIdentifier {
				return nil, errs.New(errs.ExpectedIdentifier,
					errs.Span(ident.Span.Start, ident.Span.End))
			}
			subscript.Indices = append(subscript.Indices,
				&Constant{Value: value.String(ident.Text)})
		default:
			return subscript, nil
		}
	}
}
