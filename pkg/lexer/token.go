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

package lexer

import "github.com/work-obs/jinja-go/pkg/errs"

// TokenKind enumerates every token the expression and statement grammars use.
type TokenKind int

const (
	TokEOF TokenKind = iota

	// One-symbol operators
	TokLt
	TokGt
	TokPlus
	TokMinus
	TokPercent
	TokMul
	TokDiv
	TokLBracket
	TokRBracket
	TokLSqBracket
	TokRSqBracket
	TokLCrlBracket
	TokRCrlBracket
	TokAssign
	TokPoint
	TokComma
	TokColon
	TokPipe
	TokTilde

	// Two-symbol operators
	TokEqual
	TokNotEqual
	TokLessEqual
	TokGreaterEqual
	TokMulMul
	TokDivDiv

	// Literals and identifiers
	TokIdentifier
	TokInteger
	TokFloat
	TokString
	TokTrue
	TokFalse
	TokNone

	// Keywords
	TokOr
	TokAnd
	TokNot
	TokIn
	TokIs
	TokFor
	TokEndFor
	TokIf
	TokElse
	TokElIf
	TokEndIf
	TokBlock
	TokEndBlock
	TokExtends
	TokMacro
	TokEndMacro
	TokCall
	TokEndCall
	TokFilter
	TokEndFilter
	TokSet
	TokEndSet
	TokInclude
	TokImport
	TokRecursive
	TokScoped
	TokWith
	TokEndWith
	TokWithout
	TokIgnore
	TokMissing
	TokContext
	TokFrom
	TokAs
	TokDo
)

// keywords maps identifier spellings onto their keyword tokens. True/False
// accept both Python and lowercase spellings, as the original grammar does.
var keywords = map[string]TokenKind{
	"or":        TokOr,
	"and":       TokAnd,
	"not":       TokNot,
	"in":        TokIn,
	"is":        TokIs,
	"for":       TokFor,
	"endfor":    TokEndFor,
	"if":        TokIf,
	"else":      TokElse,
	"elif":      TokElIf,
	"endif":     TokEndIf,
	"block":     TokBlock,
	"endblock":  TokEndBlock,
	"extends":   TokExtends,
	"macro":     TokMacro,
	"endmacro":  TokEndMacro,
	"call":      TokCall,
	"endcall":   TokEndCall,
	"filter":    TokFilter,
	"endfilter": TokEndFilter,
	"set":       TokSet,
	"endset":    TokEndSet,
	"include":   TokInclude,
	"import":    TokImport,
	"recursive": TokRecursive,
	"scoped":    TokScoped,
	"with":      TokWith,
	"endwith":   TokEndWith,
	"without":   TokWithout,
	"ignore":    TokIgnore,
	"missing":   TokMissing,
	"context":   TokContext,
	"from":      TokFrom,
	"as":        TokAs,
	"do":        TokDo,
	"true":      TokTrue,
	"True":      TokTrue,
	"false":     TokFalse,
	"False":     TokFalse,
	"None":      TokNone,
}

// Token is a lexed token with its byte span inside the fragment.
type Token struct {
	Kind  TokenKind
	Text  string
	Int   int64
	Float float64
	Span  errs.Range
}

// IsEOF reports whether the token marks the end of the fragment.
func (t Token) IsEOF() bool { return t.Kind == TokEOF }
