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

package value

import (
	"math"
	"strings"
	"unicode"

	"github.com/work-obs/jinja-go/pkg/errs"
)

// Params carries the already-evaluated arguments of a filter call, keyed by
// the filter's declared parameter names.
type Params map[string]Value

func (p Params) get(name string, fallback Value) Value {
	if v, ok := p[name]; ok {
		return v
	}
	return fallback
}

func invalidOp() *errs.Error {
	return errs.New(errs.InvalidOperation, errs.AtEnd())
}

func invalidType() *errs.Error {
	return errs.New(errs.InvalidValueType, errs.AtEnd())
}

var htmlEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	"&", "&amp;",
	`"`, "&#34;",
	"'", "&#39;",
)

// Abs implements the `abs` filter on numerics.
func (v Value) Abs() (Value, *errs.Error) {
	switch v.kind {
	case KindInteger:
		if v.integer < 0 {
			return Integer(-v.integer), nil
		}
		return v, nil
	case KindDouble:
		return Double(math.Abs(v.double)), nil
	}
	return Value{}, invalidOp()
}

// Capitalize upper-cases the first character of a string and leaves the rest
// untouched.
func (v Value) Capitalize() (Value, *errs.Error) {
	s, ok := v.AsString()
	if !ok {
		return Value{}, invalidOp()
	}
	if s == "" {
		return v, nil
	}
	runes := []rune(s)
	return String(string(unicode.ToUpper(runes[0])) + string(runes[1:])), nil
}

// Center pads the rendered value with spaces on both sides up to `width`
// (default 80). Values longer than the width pass through unchanged.
func (v Value) Center(params Params) (Value, *errs.Error) {
	s := v.String()
	width := int(params.get("width", Integer(80)).asInt())
	if len(s) >= width {
		return v, nil
	}
	gap := width - len(s)
	left := (gap + 1) / 2
	right := gap / 2
	return String(strings.Repeat(" ", left) + s + strings.Repeat(" ", right)), nil
}

// Default substitutes `default_value` (default "") for the undefined sentinel.
func (v Value) Default(params Params) (Value, *errs.Error) {
	if v.kind == KindEmpty {
		return params.get("default_value", String("")), nil
	}
	return v, nil
}

// Escape replaces the HTML-significant characters of a string with entities.
func (v Value) Escape() (Value, *errs.Error) {
	s, ok := v.AsString()
	if !ok {
		return Value{}, invalidOp()
	}
	return String(htmlEscaper.Replace(s)), nil
}

// First returns the first character, element or (in key-sorted order) map
// value. Empty containers yield Empty.
func (v Value) First() (Value, *errs.Error) {
	empty, err := v.emptyContainer()
	if err != nil {
		return Value{}, err
	}
	if empty {
		return Empty(), nil
	}
	switch v.kind {
	case KindString:
		return String(string([]rune(v.str)[0])), nil
	case KindList:
		return v.list[0], nil
	case KindMap:
		return v.sortedValues()[0], nil
	}
	return Value{}, invalidOp()
}

// Last is the counterpart of First.
func (v Value) Last() (Value, *errs.Error) {
	empty, err := v.emptyContainer()
	if err != nil {
		return Value{}, err
	}
	if empty {
		return Empty(), nil
	}
	switch v.kind {
	case KindString:
		runes := []rune(v.str)
		return String(string(runes[len(runes)-1])), nil
	case KindList:
		return v.list[len(v.list)-1], nil
	case KindMap:
		values := v.sortedValues()
		return values[len(values)-1], nil
	}
	return Value{}, invalidOp()
}

// Float coerces numerics and booleans to a double; anything else takes the
// `default` parameter (default 0.0).
func (v Value) Float(params Params) (Value, *errs.Error) {
	switch v.kind {
	case KindInteger, KindDouble:
		return Double(v.asFloat()), nil
	case KindBoolean:
		return Double(v.asFloat()), nil
	}
	fallback := params.get("default", Double(0))
	switch fallback.kind {
	case KindInteger, KindDouble:
		return Double(fallback.asFloat()), nil
	}
	return Value{}, invalidOp()
}

// Int coerces numerics and booleans to an integer; anything else takes the
// `default` parameter (default 0).
func (v Value) Int(params Params) (Value, *errs.Error) {
	switch v.kind {
	case KindInteger, KindDouble, KindBoolean:
		return Integer(v.asInt()), nil
	}
	fallback := params.get("default", Integer(0))
	if fallback.kind == KindInteger {
		return fallback, nil
	}
	return Value{}, invalidOp()
}

// Length implements `length` (and its alias `count`) on strings, lists and
// maps.
func (v Value) Length() (Value, *errs.Error) {
	n, ok := v.Len()
	if !ok {
		return Value{}, invalidOp()
	}
	return Integer(int64(n)), nil
}

// Lower lower-cases a string.
func (v Value) Lower() (Value, *errs.Error) {
	s, ok := v.AsString()
	if !ok {
		return Value{}, invalidOp()
	}
	return String(strings.ToLower(s)), nil
}

// Upper upper-cases a string.
func (v Value) Upper() (Value, *errs.Error) {
	s, ok := v.AsString()
	if !ok {
		return Value{}, invalidOp()
	}
	return String(strings.ToUpper(s)), nil
}

// Max returns the largest element of a container. Map values are taken in
// key-sorted order and the last one wins.
func (v Value) Max() (Value, *errs.Error) {
	return v.extreme(true)
}

// Min is the counterpart of Max; for maps the first value in key-sorted order
// wins.
func (v Value) Min() (Value, *errs.Error) {
	return v.extreme(false)
}

func (v Value) extreme(wantMax bool) (Value, *errs.Error) {
	empty, err := v.emptyContainer()
	if err != nil {
		return Value{}, err
	}
	if empty {
		return Empty(), nil
	}
	switch v.kind {
	case KindString:
		runes := []rune(v.str)
		best := runes[0]
		for _, r := range runes[1:] {
			if (wantMax && r > best) || (!wantMax && r < best) {
				best = r
			}
		}
		return String(string(best)), nil
	case KindList:
		best := v.list[0]
		for _, item := range v.list[1:] {
			c := Compare(item, best)
			if (wantMax && c > 0) || (!wantMax && c < 0) {
				best = item
			}
		}
		return best, nil
	case KindMap:
		values := v.sortedValues()
		if wantMax {
			return values[len(values)-1], nil
		}
		return values[0], nil
	}
	return Value{}, invalidOp()
}

// Round implements the `round` filter with `precision` (default 0) and
// `method` of common, ceil or floor. Integers pass through.
func (v Value) Round(params Params) (Value, *errs.Error) {
	if v.kind == KindInteger {
		return v, nil
	}
	if v.kind != KindDouble {
		return Value{}, invalidType()
	}
	method, ok := params.get("method", String("common")).AsString()
	if !ok {
		return Value{}, invalidType()
	}
	precision := params.get("precision", Double(0))
	pow10 := math.Pow(10, precision.asFloat())
	scaled := v.double * pow10
	switch method {
	case "common":
		scaled = math.Round(scaled)
	case "ceil":
		scaled = math.Ceil(scaled)
	case "floor":
		scaled = math.Floor(scaled)
	default:
		return Value{}, invalidType()
	}
	return Double(scaled / pow10), nil
}

// Stringify implements the `string` filter.
func (v Value) Stringify() (Value, *errs.Error) {
	return String(v.String()), nil
}

// Sum adds up a list, coercing elements through their float representation.
func (v Value) Sum() (Value, *errs.Error) {
	items, ok := v.AsList()
	if !ok {
		return Value{}, invalidOp()
	}
	total := 0.0
	for _, item := range items {
		total += item.asFloat()
	}
	return Double(total), nil
}

// Title upper-cases the first letter of every alphanumeric run and
// lower-cases the rest. Non-strings pass through untouched.
func (v Value) Title() (Value, *errs.Error) {
	s, ok := v.AsString()
	if !ok {
		return v, nil
	}
	var b strings.Builder
	isDelim := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if isDelim {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			isDelim = false
		} else {
			isDelim = true
			b.WriteRune(r)
		}
	}
	return String(b.String()), nil
}

// Truncate cuts the rendered value down to `length` (default 150) bytes,
// appending `end` (default "...") when something was cut.
func (v Value) Truncate(params Params) (Value, *errs.Error) {
	s := v.String()
	length := int(params.get("length", Integer(150)).asInt())
	end := params.get("end", String("...")).String()
	if len(s) <= length {
		return String(s), nil
	}
	keep := length - len(end)
	if keep < 0 {
		keep = 0
	}
	return String(s[:keep] + end), nil
}

// WordCount counts alphanumeric runs in a string.
func (v Value) WordCount() (Value, *errs.Error) {
	s, ok := v.AsString()
	if !ok {
		return Value{}, invalidOp()
	}
	count := int64(0)
	isDelim := true
	for _, r := range s {
		alnum := unicode.IsLetter(r) || unicode.IsDigit(r)
		if alnum && isDelim {
			count++
		}
		isDelim = !alnum
	}
	return Integer(count), nil
}

// emptyContainer reports whether a container value has no elements. Values
// without a length are an invalid operation.
func (v Value) emptyContainer() (bool, *errs.Error) {
	if v.kind == KindEmpty {
		return true, nil
	}
	n, ok := v.Len()
	if !ok {
		return false, invalidOp()
	}
	return n == 0, nil
}
