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

package stmt

import (
	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/expr"
	"github.com/work-obs/jinja-go/pkg/lexer"
	"github.com/work-obs/jinja-go/pkg/render"
)

// InfoType tags what will eventually close a stack entry.
type InfoType int

const (
	TemplateRoot InfoType = iota
	IfStatement
	ElseIfStatement
	ForStatement
	WithStatement
)

// Info is one entry of the statement stack threaded through fine parsing. It
// owns the composition renderers accumulate into and, for open control
// statements, the renderer waiting for its body.
type Info struct {
	Mode        InfoType
	Composition *render.ComposedRenderer

	pendingIf   *IfRenderer
	pendingElse *ElseRenderer
	pendingFor  *ForRenderer
	pendingWith *WithRenderer
}

// Stack is the list of open statements, template root at the bottom.
type Stack struct {
	entries []*Info
}

// NewStack creates a stack holding the template root composition.
func NewStack(root *render.ComposedRenderer) *Stack {
	return &Stack{entries: []*Info{{Mode: TemplateRoot, Composition: root}}}
}

// Top returns the innermost open statement.
func (s *Stack) Top() *Info { return s.entries[len(s.entries)-1] }

// Depth returns the number of open entries including the root.
func (s *Stack) Depth() int { return len(s.entries) }

func (s *Stack) push(info *Info) { s.entries = append(s.entries, info) }

func (s *Stack) pop() *Info {
	info := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return info
}

// Parse parses one statement fragment (the interior of a "{% ... %}" block)
// against the stack. Error locations are relative to the fragment.
func Parse(text string, stack *Stack) *errs.Error {
	lx := lexer.New(text)
	tok, terr := lx.Next()
	if terr != nil {
		return terr
	}

	switch tok.Kind {
	case lexer.TokIf:
		return parseIf(lx, stack)
	case lexer.TokElIf:
		return parseElif(lx, stack)
	case lexer.TokElse:
		return parseElse(lx, stack)
	case lexer.TokEndIf:
		return parseEndif(lx, stack)
	case lexer.TokFor:
		return parseFor(lx, stack)
	case lexer.TokEndFor:
		return parseEndfor(lx, stack)
	case lexer.TokWith:
		return parseWith(lx, stack)
	case lexer.TokEndWith:
		return parseEndwith(lx, stack)
	case lexer.TokInclude:
		return parseInclude(lx, stack)
	case lexer.TokBlock, lexer.TokEndBlock, lexer.TokExtends, lexer.TokMacro,
		lexer.TokEndMacro, lexer.TokCall, lexer.TokEndCall, lexer.TokFilter,
		lexer.TokEndFilter, lexer.TokSet, lexer.TokEndSet, lexer.TokImport,
		lexer.TokFrom, lexer.TokDo:
		return errs.New(errs.YetUnsupported, errs.Span(tok.Span.Start, tok.Span.End))
	default:
		return errs.New(errs.UnexpectedToken, errs.Span(tok.Span.Start, tok.Span.End))
	}
}

// expectEnd fails unless the fragment is exhausted.
func expectEnd(lx *lexer.Lexer) *errs.Error {
	tok, terr := lx.Next()
	if terr != nil {
		return terr
	}
	if !tok.IsEOF() {
		return errs.New(errs.ExpectedEndOfStatement, errs.Span(tok.Span.Start, tok.Span.End))
	}
	return nil
}

func parseIf(lx *lexer.Lexer, stack *Stack) *errs.Error {
	condition, err := expr.ParseFull(lx)
	if err != nil {
		return err
	}
	if err := expectEnd(lx); err != nil {
		return err
	}
	stack.push(&Info{
		Mode:        IfStatement,
		Composition: render.NewComposed(),
		pendingIf:   &IfRenderer{Condition: condition},
	})
	return nil
}

func parseElif(lx *lexer.Lexer, stack *Stack) *errs.Error {
	condition, err := expr.ParseFull(lx)
	if err != nil {
		return err
	}
	if err := expectEnd(lx); err != nil {
		return err
	}
	stack.push(&Info{
		Mode:        ElseIfStatement,
		Composition: render.NewComposed(),
		pendingElse: &ElseRenderer{Condition: condition},
	})
	return nil
}

func parseElse(lx *lexer.Lexer, stack *Stack) *errs.Error {
	if err := expectEnd(lx); err != nil {
		return err
	}
	stack.push(&Info{
		Mode:        ElseIfStatement,
		Composition: render.NewComposed(),
		pendingElse: &ElseRenderer{},
	})
	return nil
}

// parseEndif pops accumulated else branches, attaches them to the open if in
// source order, and emits the finished renderer into the enclosing
// composition.
func parseEndif(lx *lexer.Lexer, stack *Stack) *errs.Error {
	if err := expectEnd(lx); err != nil {
		return err
	}
	if stack.Depth() <= 1 {
		return errs.New(errs.UnexpectedStatement, errs.Span(0, 0))
	}

	var branches []*ElseRenderer
	for {
		info := stack.pop()
		if info.Mode == IfStatement {
			info.pendingIf.Body = info.Composition
			for i := len(branches) - 1; i >= 0; i-- {
				info.pendingIf.ElseBranches = append(info.pendingIf.ElseBranches, branches[i])
			}
			stack.Top().Composition.Add(info.pendingIf)
			return nil
		}
		if info.Mode != ElseIfStatement {
			return errs.New(errs.UnexpectedStatement, errs.Span(0, 0))
		}
		info.pendingElse.Body = info.Composition
		branches = append(branches, info.pendingElse)
		if stack.Depth() <= 1 {
			return errs.New(errs.UnexpectedStatement, errs.Span(0, 0))
		}
	}
}

func parseFor(lx *lexer.Lexer, stack *Stack) *errs.Error {
	var vars []string
	for {
		tok, terr := lx.Next()
		if terr != nil {
			return terr
		}
		if tok.Kind != lexer.TokIdentifier {
			return errs.New(errs.ExpectedIdentifier, errs.Span(tok.Span.Start, tok.Span.End))
		}
		vars = append(vars, tok.Text)
		tok, terr = lx.Peek()
		if terr != nil {
			return terr
		}
		if tok.Kind != lexer.TokComma {
			break
		}
		lx.Next()
	}

	tok, terr := lx.Next()
	if terr != nil {
		return terr
	}
	if tok.Kind != lexer.TokIn {
		return errs.NewDetailed(errs.ExpectedToken, "in", errs.Span(tok.Span.Start, tok.Span.End))
	}
	iterable, err := expr.ParseFull(lx)
	if err != nil {
		return err
	}
	if err := expectEnd(lx); err != nil {
		return err
	}
	stack.push(&Info{
		Mode:        ForStatement,
		Composition: render.NewComposed(),
		pendingFor:  &ForRenderer{Vars: vars, Iterable: iterable},
	})
	return nil
}

func parseEndfor(lx *lexer.Lexer, stack *Stack) *errs.Error {
	if err := expectEnd(lx); err != nil {
		return err
	}
	if stack.Depth() <= 1 || stack.Top().Mode != ForStatement {
		return errs.New(errs.UnexpectedStatement, errs.Span(0, 0))
	}
	info := stack.pop()
	info.pendingFor.Body = info.Composition
	stack.Top().Composition.Add(info.pendingFor)
	return nil
}

func parseWith(lx *lexer.Lexer, stack *Stack) *errs.Error {
	renderer := &WithRenderer{}
	for {
		tok, terr := lx.Next()
		if terr != nil {
			return terr
		}
		if tok.Kind != lexer.TokIdentifier {
			return errs.New(errs.ExpectedIdentifier, errs.Span(tok.Span.Start, tok.Span.End))
		}
		name := tok.Text
		tok, terr = lx.Next()
		if terr != nil {
			return terr
		}
		if tok.Kind != lexer.TokAssign {
			return errs.NewDetailed(errs.ExpectedToken, "=", errs.Span(tok.Span.Start, tok.Span.End))
		}
		rhs, err := expr.ParseFull(lx)
		if err != nil {
			return err
		}
		renderer.Names = append(renderer.Names, name)
		renderer.Exprs = append(renderer.Exprs, rhs)

		tok, terr = lx.Peek()
		if terr != nil {
			return terr
		}
		if tok.Kind != lexer.TokComma {
			break
		}
		lx.Next()
	}
	if err := expectEnd(lx); err != nil {
		return err
	}
	stack.push(&Info{
		Mode:        WithStatement,
		Composition: render.NewComposed(),
		pendingWith: renderer,
	})
	return nil
}

func parseEndwith(lx *lexer.Lexer, stack *Stack) *errs.Error {
	if err := expectEnd(lx); err != nil {
		return err
	}
	if stack.Depth() <= 1 || stack.Top().Mode != WithStatement {
		return errs.New(errs.UnexpectedStatement, errs.Span(0, 0))
	}
	info := stack.pop()
	info.pendingWith.Body = info.Composition
	stack.Top().Composition.Add(info.pendingWith)
	return nil
}

// parseInclude handles `include expr [ignore missing] [with|without context]`
// and emits the renderer immediately; include has no body.
func parseInclude(lx *lexer.Lexer, stack *Stack) *errs.Error {
	nameExpr, err := expr.ParseFull(lx)
	if err != nil {
		return err
	}
	renderer := &IncludeRenderer{NameExpr: nameExpr, WithContext: true}

	tok, terr := lx.Peek()
	if terr != nil {
		return terr
	}
	if tok.Kind == lexer.TokIgnore {
		lx.Next()
		tok, terr = lx.Next()
		if terr != nil {
			return terr
		}
		if tok.Kind != lexer.TokMissing {
			return errs.NewDetailed(errs.ExpectedToken, "missing",
				errs.Span(tok.Span.Start, tok.Span.End))
		}
		renderer.IgnoreMissing = true
		tok, terr = lx.Peek()
		if terr != nil {
			return terr
		}
	}

	switch tok.Kind {
	case lexer.TokWith, lexer.TokWithout:
		withContext := tok.Kind == lexer.TokWith
		lx.Next()
		tok, terr = lx.Next()
		if terr != nil {
			return terr
		}
		if tok.Kind != lexer.TokContext {
			return errs.NewDetailed(errs.ExpectedToken, "context",
				errs.Span(tok.Span.Start, tok.Span.End))
		}
		renderer.WithContext = withContext
	}

	if err := expectEnd(lx); err != nil {
		return err
	}
	stack.Top().Composition.Add(renderer)
	return nil
}
