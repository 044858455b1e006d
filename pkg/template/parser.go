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
	"github.com/work-obs/jinja-go/pkg/errs"
	"github.com/work-obs/jinja-go/pkg/expr"
	"github.com/work-obs/jinja-go/pkg/render"
	"github.com/work-obs/jinja-go/pkg/scanner"
	"github.com/work-obs/jinja-go/pkg/stmt"
)

// parseTemplate runs the two-pass parse: the block scanner segments the body,
// then each block is fine-parsed into the renderer tree. Error locations
// coming out of the fragment parsers are rebased against the block offset.
func parseTemplate(body string, cfg scanner.Config) (*render.ComposedRenderer, *errs.Error) {
	sc := scanner.New(body, cfg)
	blocks, err := sc.Scan()
	if err != nil {
		return nil, err
	}

	root := render.NewComposed()
	stack := stmt.NewStack(root)
	for _, block := range blocks {
		switch block.Kind {
		case scanner.RawText, scanner.RawBlock:
			if block.Range.Size() == 0 {
				continue
			}
			stack.Top().Composition.Add(render.NewRawText(body[block.Range.Start:block.Range.End]))

		case scanner.Expression:
			renderer, err := expr.Parse(body[block.Range.Start:block.Range.End])
			if err != nil {
				return nil, rebase(err, block, sc)
			}
			// A bare name reference reports "undefined" while rendering, long
			// after the line table is gone; resolve its position now.
			if ref, ok := renderer.Root.(*expr.ValueRef); ok {
				ref.Loc = sc.SourceLocation(block.Range.Start + ref.Span.Start)
			}
			stack.Top().Composition.Add(renderer)

		case scanner.Statement:
			if err := stmt.Parse(body[block.Range.Start:block.Range.End], stack); err != nil {
				return nil, rebase(err, block, sc)
			}

		case scanner.Comment:
			// Dropped.
		}
	}

	if stack.Depth() != 1 {
		return nil, &errs.Error{Kind: errs.UnexpectedStatement, Location: errs.AtEnd()}
	}
	return root, nil
}

// rebase converts a fragment-relative error location into an absolute
// line/column through the scanner's line table.
func rebase(err *errs.Error, block scanner.Block, sc *scanner.Scanner) *errs.Error {
	switch err.Location.Mode {
	case errs.LocRange:
		err.Location = sc.SourceLocation(block.Range.Start + err.Location.Range.Start)
	case errs.LocEnd:
		err.Location = sc.SourceLocation(block.Range.End)
	}
	return err
}
