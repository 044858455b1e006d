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

// Package scanner segments raw template source into typed blocks (raw text,
// expression, statement, comment, raw literal), applying whitespace-control
// markers, and builds the line table used to turn byte offsets into
// line/column positions.
package scanner

import (
	"regexp"

	"github.com/work-obs/jinja-go/pkg/errs"
)

// BlockKind classifies a scanned region of template source.
type BlockKind int

const (
	RawText BlockKind = iota
	Expression
	Statement
	Comment
	RawBlock
	LineStatement
)

// Block is one contiguous region of a single kind. The range indexes into the
// template source; for Expression and Statement blocks it covers just the
// interior between the delimiters, already stripped of whitespace-control
// flags.
type Block struct {
	Kind  BlockKind
	Range errs.Range
}

// Config carries the environment settings that influence scanning.
type Config struct {
	TrimBlocks   bool
	LstripBlocks bool
}

// The rough tokenizer is an ordered alternation; the raw markers must be
// tried before the plain statement delimiters. First match wins at each
// position (Go regexp alternation is leftmost-first).
const (
	groupExprBegin = iota + 1
	groupExprEnd
	groupRawBegin
	groupRawEnd
	groupStmtBegin
	groupStmtEnd
	groupCommentBegin
	groupCommentEnd
	groupNewLine
)

var roughTokenizer = regexp.MustCompile(
	`(\{\{)|(\}\})|(\{%[+-]?\s+raw\s+[+-]?%\})|(\{%[+-]?\s+endraw\s+[+-]?%\})|(\{%)|(%\})|(\{#)|(#\})|(\n)`)

type lineInfo struct {
	rng    errs.Range
	number int
}

// Scanner splits one template body into blocks. It is single-use: create,
// Scan, then keep it around for SourceLocation lookups.
type Scanner struct {
	src     string
	cfg     Config
	blocks  []Block
	cur     Block
	lines   []lineInfo
	curLine lineInfo
}

// New creates a scanner over the template body.
func New(src string, cfg Config) *Scanner {
	return &Scanner{src: src, cfg: cfg}
}

// SourceLocation converts a byte offset into a 1-based line and a column
// counted in bytes from the line start.
func (s *Scanner) SourceLocation(offset int) errs.SourceLocation {
	for _, line := range s.lines {
		if line.rng.Start <= offset && offset <= line.rng.End {
			return errs.LineCol(line.number+1, offset-line.rng.Start)
		}
	}
	return errs.LineCol(s.curLine.number+1, offset-s.curLine.rng.Start)
}

// Scan segments the source. The first structural error aborts the scan.
func (s *Scanner) Scan() ([]Block, *errs.Error) {
	matches := roughTokenizer.FindAllStringSubmatchIndex(s.src, -1)
	for _, m := range matches {
		group := 0
		matchStart, matchEnd := 0, 0
		for g := groupExprBegin; g <= groupNewLine; g++ {
			if m[2*g] >= 0 {
				group = g
				matchStart = m[2*g]
				matchEnd = m[2*g+1]
				break
			}
		}

		switch group {
		case groupNewLine:
			s.finishCurrentLine(matchStart)
			s.curLine.rng.Start = s.curLine.rng.End + 1

		case groupCommentBegin:
			switch s.cur.Kind {
			case RawBlock, Comment:
				continue
			case RawText:
			default:
				return nil, errs.New(errs.UnexpectedCommentBegin, s.SourceLocation(matchStart))
			}
			s.finishCurrentBlock(matchStart, Comment, -1)
			s.cur.Range.Start = matchEnd

		case groupCommentEnd:
			switch s.cur.Kind {
			case RawBlock:
				continue
			case Comment:
			default:
				return nil, errs.New(errs.UnexpectedCommentEnd, s.SourceLocation(matchStart))
			}
			s.cur.Range.Start = s.finishCurrentBlock(matchStart, RawText, -1)

		case groupExprBegin:
			s.startControlBlock(Expression, matchStart, matchEnd)

		case groupExprEnd:
			switch s.cur.Kind {
			case RawText:
				return nil, errs.New(errs.UnexpectedExprEnd, s.SourceLocation(matchStart))
			case Expression:
			default:
				continue
			}
			s.cur.Range.Start = s.finishCurrentBlock(matchStart, RawText, -1)

		case groupStmtBegin:
			s.startControlBlock(Statement, matchStart, matchEnd)

		case groupStmtEnd:
			switch s.cur.Kind {
			case RawText:
				return nil, errs.New(errs.UnexpectedStmtEnd, s.SourceLocation(matchStart))
			case Statement:
			default:
				continue
			}
			s.cur.Range.Start = s.finishCurrentBlock(matchStart, RawText, -1)

		case groupRawBegin:
			switch s.cur.Kind {
			case RawBlock:
				continue
			case Comment, RawText:
			default:
				return nil, errs.New(errs.UnexpectedRawBegin, s.SourceLocation(matchStart))
			}
			s.startControlBlock(RawBlock, matchStart, matchEnd)

		case groupRawEnd:
			switch s.cur.Kind {
			case Comment:
				continue
			case RawBlock:
			default:
				return nil, errs.New(errs.UnexpectedRawEnd, s.SourceLocation(matchStart))
			}
			// The raw content ends where "{% endraw %}" begins; the closing
			// side of the marker drives trailing whitespace control.
			s.cur.Range.Start = s.finishCurrentBlock(matchEnd-2, RawText, matchStart)
		}
	}

	end := len(s.src)
	s.finishCurrentLine(end)
	if s.cur.Kind == RawBlock {
		return nil, errs.New(errs.ExpectedRawEnd, s.SourceLocation(end))
	}
	s.finishCurrentBlock(end, RawText, -1)
	return s.blocks, nil
}

// startControlBlock closes the running raw-text block and opens an
// expression, statement or raw-literal block. startOffset is the position
// right after the opening delimiter (for raw literals: after the whole
// marker).
func (s *Scanner) startControlBlock(mode BlockKind, matchStart, startOffset int) {
	if s.cur.Kind != RawText {
		return
	}
	ctrlCharPos := startOffset
	if mode == RawBlock {
		// The leading flag of "{%- raw %}" sits inside the marker.
		ctrlCharPos = matchStart + 2
	}
	endOffset := s.stripBlockLeft(ctrlCharPos, matchStart)
	s.finishCurrentBlock(endOffset, mode, -1)

	if mode != RawBlock {
		if startOffset < len(s.src) {
			if c := s.src[startOffset]; c == '+' || c == '-' {
				startOffset++
			}
		}
	} else {
		startOffset = s.stripBlockRight(startOffset - 2)
	}
	s.cur.Range.Start = startOffset
}

// finishCurrentBlock closes the running block at position, pushes it, and
// switches to the next kind. For a closing raw marker, rawEndMatchStart is
// where "{% endraw %}" begins. The return value is where following raw text
// resumes after trailing whitespace control.
func (s *Scanner) finishCurrentBlock(position int, next BlockKind, rawEndMatchStart int) int {
	newPosition := position
	switch s.cur.Kind {
	case RawBlock:
		current := position
		if rawEndMatchStart >= 0 {
			current = rawEndMatchStart
		}
		original := position
		position = s.stripBlockLeft(current+2, current)
		newPosition = s.stripBlockRight(original)
	case RawText:
		position = s.stripBlockLeft(position+2, position)
	default:
		if next == RawText {
			newPosition = s.stripBlockRight(position)
		}
		if position != 0 {
			if c := s.src[position-1]; c == '+' || c == '-' {
				position--
			}
		}
	}

	s.cur.Range.End = position
	s.blocks = append(s.blocks, s.cur)
	s.cur = Block{Kind: next, Range: errs.Range{Start: position, End: position}}
	return newPosition
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

// stripBlockLeft computes where the preceding raw text should end, honoring
// the leading whitespace-control flag at ctrlCharPos. A '-' strips all
// adjacent whitespace; the lstrip_blocks default strips a whitespace-only
// line prefix and keeps the newline.
func (s *Scanner) stripBlockLeft(ctrlCharPos, endOffset int) int {
	doTrim := s.cfg.LstripBlocks
	doTotalStrip := false
	if ctrlCharPos < len(s.src) {
		switch s.src[ctrlCharPos] {
		case '+':
			doTrim = false
		case '-':
			doTotalStrip = true
		}
		doTrim = doTrim || doTotalStrip
	}
	if !doTrim {
		return endOffset
	}
	if s.cur.Kind != RawText && s.cur.Kind != RawBlock {
		return endOffset
	}

	original := endOffset
	sameLine := true
	start := s.cur.Range.Start
	for i := original - 1; i >= start; i-- {
		ch := s.src[i]
		if !isSpaceByte(ch) {
			if !sameLine {
				break
			}
			if doTotalStrip {
				return endOffset
			}
			return original
		}
		if ch == '\n' {
			if !doTotalStrip {
				break
			}
			sameLine = false
		}
		endOffset--
	}
	return endOffset
}

// stripBlockRight computes where following raw text resumes after a closing
// delimiter starting at position, honoring the trailing flag just before it.
// Trimming consumes whitespace up to and including the first newline.
func (s *Scanner) stripBlockRight(position int) int {
	doTrim := s.cfg.TrimBlocks
	newPos := position + 2
	if position != 0 && s.cur.Kind != RawText {
		switch s.src[position-1] {
		case '-':
			doTrim = true
		case '+':
			doTrim = false
		}
	}
	if !doTrim {
		return newPos
	}
	for i := position + 2; i < len(s.src); i++ {
		ch := s.src[i]
		if ch == '\n' {
			newPos++
			break
		}
		if !isSpaceByte(ch) {
			break
		}
		newPos++
	}
	return newPos
}

func (s *Scanner) finishCurrentLine(position int) {
	s.curLine.rng.End = position
	s.lines = append(s.lines, s.curLine)
	s.curLine.number++
}
