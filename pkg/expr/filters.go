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
	"github.com/work-obs/jinja-go/pkg/render"
	"github.com/work-obs/jinja-go/pkg/value"
)

// FilterKind identifies a built-in filter.
type FilterKind int

const (
	FilterAbs FilterKind = iota
	FilterCapitalize
	FilterCenter
	FilterDefault
	FilterEscape
	FilterFirst
	FilterFloat
	FilterInt
	FilterLast
	FilterLength
	FilterLower
	FilterMax
	FilterMin
	FilterRound
	FilterString
	FilterSum
	FilterTitle
	FilterTruncate
	FilterUpper
	FilterWordCount
)

type filterSpec struct {
	kind   FilterKind
	params []string // declared parameter names, in positional order
}

var filterTable = map[string]filterSpec{
	"abs":        {FilterAbs, nil},
	"capitalize": {FilterCapitalize, nil},
	"center":     {FilterCenter, []string{"width"}},
	"count":      {FilterLength, nil},
	"default":    {FilterDefault, []string{"default_value"}},
	"escape":     {FilterEscape, nil},
	"first":      {FilterFirst, nil},
	"float":      {FilterFloat, []string{"default"}},
	"int":        {FilterInt, []string{"default"}},
	"last":       {FilterLast, nil},
	"length":     {FilterLength, nil},
	"lower":      {FilterLower, nil},
	"max":        {FilterMax, nil},
	"min":        {FilterMin, nil},
	"round":      {FilterRound, []string{"precision", "method"}},
	"string":     {FilterString, nil},
	"sum":        {FilterSum, nil},
	"title":      {FilterTitle, nil},
	"truncate":   {FilterTruncate, []string{"length", "end"}},
	"upper":      {FilterUpper, nil},
	"wordcount":  {FilterWordCount, nil},
}

// newFilterChain resolves a filter name, failing on unknown filters with the
// span of the offending identifier.
func newFilterChain(name string, params *CallParams, span errs.Range) (*FilterChain, *errs.Error) {
	spec, ok := filterTable[name]
	if !ok {
		return nil, errs.New(errs.UnexpectedToken, errs.Span(span.Start, span.End))
	}
	return &FilterChain{Filter: spec.kind, Params: params, filterName: name}, nil
}

// evalParams evaluates a call's arguments against the context and maps the
// positional ones onto the filter's declared parameter names.
func (f *FilterChain) evalParams(ctx *render.Context) (value.Params, *errs.Error) {
	params := value.Params{}
	if f.Params == nil {
		return params, nil
	}
	declared := filterParamNames(f.filterName)
	for i, arg := range f.Params.Positional {
		if i >= len(declared) {
			return nil, errs.New(errs.InvalidOperation, errs.AtEnd())
		}
		v, err := Evaluate(arg, ctx)
		if err != nil {
			return nil, err
		}
		params[declared[i]] = v
	}
	for name, arg := range f.Params.Keyword {
		v, err := Evaluate(arg, ctx)
		if err != nil {
			return nil, err
		}
		params[name] = v
	}
	return params, nil
}

func filterParamNames(name string) []string {
	return filterTable[name].params
}

// apply runs the whole chain, root first, over the base value.
func (f *FilterChain) apply(base value.Value, ctx *render.Context) (value.Value, *errs.Error) {
	if f == nil {
		return base, nil
	}
	current := base
	if f.Parent != nil {
		v, err := f.Parent.apply(base, ctx)
		if err != nil {
			return value.Value{}, err
		}
		current = v
	}
	params, err := f.evalParams(ctx)
	if err != nil {
		return value.Value{}, err
	}
	return f.applyOne(current, params)
}

func (f *FilterChain) applyOne(v value.Value, params value.Params) (value.Value, *errs.Error) {
	switch f.Filter {
	case FilterAbs:
		return v.Abs()
	case FilterCapitalize:
		return v.Capitalize()
	case FilterCenter:
		return v.Center(params)
	case FilterDefault:
		return v.Default(params)
	case FilterEscape:
		return v.Escape()
	case FilterFirst:
		return v.First()
	case FilterFloat:
		return v.Float(params)
	case FilterInt:
		return v.Int(params)
	case FilterLast:
		return v.Last()
	case FilterLength:
		return v.Length()
	case FilterLower:
		return v.Lower()
	case FilterMax:
		return v.Max()
	case FilterMin:
		return v.Min()
	case FilterRound:
		return v.Round(params)
	case FilterString:
		return v.Stringify()
	case FilterSum:
		return v.Sum()
	case FilterTitle:
		return v.Title()
	case FilterTruncate:
		return v.Truncate(params)
	case FilterUpper:
		return v.Upper()
	case FilterWordCount:
		return v.WordCount()
	}
	return value.Value{}, errs.New(errs.InvalidOperation, errs.AtEnd())
}
