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

package scanner

import (
	"testing"

	"github.com/work-obs/jinja-go/pkg/errs"
)

func scan(t *testing.T, src string, cfg Config) []Block {
	t.Helper()
	sc := New(src, cfg)
	blocks, err := sc.Scan()
	if err != nil {
		t.Fatalf("scanning %q failed: %v", src, err)
	}
	return blocks
}

func nonEmpty(blocks []Block) []Block {
	var out []Block
	for _, b := range blocks {
		if b.Range.Size() > 0 {
			out = append(out, b)
		}
	}
	return out
}

func TestScanPlainText(t *testing.T) {
	blocks := nonEmpty(scan(t, "Hello, world!", Config{}))
	if len(blocks) != 1 || blocks[0].Kind != RawText {
		t.Fatalf("blocks = %+v", blocks)
	}
	if blocks[0].Range.Start != 0 || blocks[0].Range.End != 13 {
		t.Errorf("range = %+v", blocks[0].Range)
	}
}

func TestScanExpressionBlock(t *testing.T) {
	src := "a {{ x }} b"
	blocks := nonEmpty(scan(t, src, Config{}))
	if len(blocks) != 3 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if blocks[0].Kind != RawText || src[blocks[0].Range.Start:blocks[0].Range.End] != "a " {
		t.Errorf("block 0 = %+v", blocks[0])
	}
	if blocks[1].Kind != Expression || src[blocks[1].Range.Start:blocks[1].Range.End] != " x " {
		t.Errorf("block 1 = %+v", blocks[1])
	}
	if blocks[2].Kind != RawText || src[blocks[2].Range.Start:blocks[2].Range.End] != " b" {
		t.Errorf("block 2 = %+v", blocks[2])
	}
}

func TestScanStatementAndComment(t *testing.T) {
	src := "{% if x %}{# note #}{% endif %}"
	blocks := nonEmpty(scan(t, src, Config{}))
	if len(blocks) != 3 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if blocks[0].Kind != Statement || blocks[1].Kind != Comment || blocks[2].Kind != Statement {
		t.Errorf("kinds = %v %v %v", blocks[0].Kind, blocks[1].Kind, blocks[2].Kind)
	}
}

func TestScanRawBlock(t *testing.T) {
	src := "{% raw %} {{ 2 + 2 }} {% endraw %}"
	blocks := nonEmpty(scan(t, src, Config{}))
	if len(blocks) != 1 || blocks[0].Kind != RawBlock {
		t.Fatalf("blocks = %+v", blocks)
	}
	if src[blocks[0].Range.Start:blocks[0].Range.End] != " {{ 2 + 2 }} " {
		t.Errorf("raw content = %q", src[blocks[0].Range.Start:blocks[0].Range.End])
	}
}

func TestScanCommentSwallowsDelimiters(t *testing.T) {
	src := "a{# {{ x }} {% if %} {# nested #}b"
	blocks := nonEmpty(scan(t, src, Config{}))
	if len(blocks) != 3 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if blocks[1].Kind != Comment {
		t.Errorf("middle block = %+v", blocks[1])
	}
	if src[blocks[2].Range.Start:blocks[2].Range.End] != "b" {
		t.Errorf("trailing text = %q", src[blocks[2].Range.Start:blocks[2].Range.End])
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind errs.Kind
		line int
		col  int
	}{
		{"comment end", "end of comment #}", errs.UnexpectedCommentEnd, 1, 15},
		{"expr end", "   }}", errs.UnexpectedExprEnd, 1, 3},
		{"stmt end", "   %}", errs.UnexpectedStmtEnd, 1, 3},
		{"raw end", "{% raw %} {% endraw %} {% endraw %}", errs.UnexpectedRawEnd, 1, 23},
		{"missing endraw", "{% raw %} there is not endraw", errs.ExpectedRawEnd, 1, 29},
		{"raw in expr", "{{ {% raw %} }}", errs.UnexpectedRawBegin, 1, 3},
		{"second line", "ok\n #}", errs.UnexpectedCommentEnd, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := New(tt.src, Config{})
			_, err := sc.Scan()
			if err == nil {
				t.Fatalf("expected error scanning %q", tt.src)
			}
			if err.Kind != tt.kind {
				t.Errorf("kind = %v, expected %v", err.Kind, tt.kind)
			}
			if err.Location.Mode != errs.LocLineCol ||
				err.Location.Line != tt.line || err.Location.Col != tt.col {
				t.Errorf("location = %+v, expected %d:%d", err.Location, tt.line, tt.col)
			}
		})
	}
}

func TestWhitespaceControlMinus(t *testing.T) {
	src := "  {%- if x -%}    body\n    {%- endif %}"
	blocks := nonEmpty(scan(t, src, Config{}))
	if len(blocks) != 3 {
		t.Fatalf("blocks = %+v", blocks)
	}
	if blocks[0].Kind != Statement {
		t.Errorf("leading whitespace not stripped: %+v", blocks[0])
	}
	if got := src[blocks[1].Range.Start:blocks[1].Range.End]; got != "body" {
		t.Errorf("body = %q, expected %q", got, "body")
	}
}

func TestWhitespaceControlDefaults(t *testing.T) {
	src := "  {% if x %}\nbody{% endif %}"

	// Without settings, whitespace is preserved.
	blocks := nonEmpty(scan(t, src, Config{}))
	if got := src[blocks[0].Range.Start:blocks[0].Range.End]; got != "  " {
		t.Errorf("leading text = %q, expected preserved spaces", got)
	}
	if got := src[blocks[2].Range.Start:blocks[2].Range.End]; got != "\nbody" {
		t.Errorf("body text = %q, expected %q", got, "\nbody")
	}

	// lstrip_blocks strips the indent, trim_blocks the newline after the tag.
	blocks = nonEmpty(scan(t, src, Config{TrimBlocks: true, LstripBlocks: true}))
	if blocks[0].Kind != Statement {
		t.Errorf("indent not stripped: %+v", blocks[0])
	}
	if got := src[blocks[1].Range.Start:blocks[1].Range.End]; got != "body" {
		t.Errorf("body text = %q, expected %q", got, "body")
	}
}

func TestWhitespaceControlPlusOverridesDefaults(t *testing.T) {
	src := "  {%+ if x +%}\nbody{% endif %}"
	blocks := nonEmpty(scan(t, src, Config{TrimBlocks: true, LstripBlocks: true}))
	if got := src[blocks[0].Range.Start:blocks[0].Range.End]; got != "  " {
		t.Errorf("leading text = %q, expected preserved spaces", got)
	}
	found := false
	for _, b := range blocks {
		if b.Kind == RawText && src[b.Range.Start:b.Range.End] == "\nbody" {
			found = true
		}
	}
	if !found {
		t.Errorf("newline after +%%}} should be preserved: %+v", blocks)
	}
}

func TestSourceLocationMultiline(t *testing.T) {
	sc := New("one\ntwo\nthree", Config{})
	if _, err := sc.Scan(); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	loc := sc.SourceLocation(5) // 'w' in "two"
	if loc.Line != 2 || loc.Col != 1 {
		t.Errorf("location = %+v, expected 2:1", loc)
	}
	loc = sc.SourceLocation(0)
	if loc.Line != 1 || loc.Col != 0 {
		t.Errorf("location = %+v, expected 1:0", loc)
	}
}
