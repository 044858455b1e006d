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
	"fmt"
	"sort"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindEmpty Kind = iota
	KindBoolean
	KindInteger
	KindDouble
	KindString
	KindList
	KindMap
	KindError
)

// Value is the runtime representation of every piece of data a template can
// touch. Values are immutable once constructed; operations return new values.
// The zero Value is Empty, which doubles as the "undefined" sentinel.
type Value struct {
	kind    Kind
	boolean bool
	integer int64
	double  float64
	str     string
	list    []Value
	mapping map[string]Value
}

// Empty returns the undefined sentinel.
func Empty() Value { return Value{} }

// Error returns the error sentinel produced by invalid operations.
func Error() Value { return Value{kind: KindError} }

// Boolean wraps a bool.
func Boolean(b bool) Value { return Value{kind: KindBoolean, boolean: b} }

// Integer wraps an int64.
func Integer(i int64) Value { return Value{kind: KindInteger, integer: i} }

// Double wraps a float64.
func Double(f float64) Value { return Value{kind: KindDouble, double: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, str: s} }

// List wraps an ordered sequence of values.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Map wraps a string-keyed mapping. Iteration over a map value is always in
// sorted key order.
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, mapping: m}
}

// Kind returns the runtime type tag.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is the undefined sentinel.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsError reports whether the value is the error sentinel.
func (v Value) IsError() bool { return v.kind == KindError }

// AsBoolean returns the wrapped bool; false for any other kind.
func (v Value) AsBoolean() bool { return v.kind == KindBoolean && v.boolean }

// AsInteger returns the wrapped int64 and whether the value is an integer.
func (v Value) AsInteger() (int64, bool) { return v.integer, v.kind == KindInteger }

// AsDouble returns the wrapped float64 and whether the value is a double.
func (v Value) AsDouble() (float64, bool) { return v.double, v.kind == KindDouble }

// AsString returns the wrapped string and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsList returns the wrapped list and whether the value is a list.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the wrapped mapping and whether the value is a map.
func (v Value) AsMap() (map[string]Value, bool) { return v.mapping, v.kind == KindMap }

// SortedKeys returns the keys of a map value in sorted order, or nil.
func (v Value) SortedKeys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.mapping))
	for k := range v.mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the element count of a string, list or map and whether the
// value has a length at all.
func (v Value) Len() (int, bool) {
	switch v.kind {
	case KindString:
		return len(v.str), true
	case KindList:
		return len(v.list), true
	case KindMap:
		return len(v.mapping), true
	}
	return 0, false
}

// IsTrue implements truthiness: true booleans, nonzero numerics and non-empty
// strings, lists and maps are true; Empty and Error are always false.
func (v Value) IsTrue() bool {
	switch v.kind {
	case KindBoolean:
		return v.boolean
	case KindInteger:
		return v.integer != 0
	case KindDouble:
		return v.double != 0
	case KindString:
		return v.str != ""
	case KindList:
		return len(v.list) > 0
	case KindMap:
		return len(v.mapping) > 0
	}
	return false
}

// ToList coerces a value into a list for iteration: a list is itself, a map
// becomes its keys in sorted order, a string becomes its characters, anything
// else becomes an empty list.
func (v Value) ToList() []Value {
	switch v.kind {
	case KindList:
		return v.list
	case KindMap:
		keys := v.SortedKeys()
		items := make([]Value, len(keys))
		for i, k := range keys {
			items[i] = String(k)
		}
		return items
	case KindString:
		items := make([]Value, 0, len(v.str))
		for _, ch := range v.str {
			items = append(items, String(string(ch)))
		}
		return items
	}
	return nil
}

// sortedValues returns a map's values in sorted key order.
func (v Value) sortedValues() []Value {
	keys := v.SortedKeys()
	items := make([]Value, len(keys))
	for i, k := range keys {
		items[i] = v.mapping[k]
	}
	return items
}

// From converts a plain Go value into a Value. Unknown types fall back to
// their fmt representation as a string.
func From(raw interface{}) Value {
	switch x := raw.(type) {
	case nil:
		return Empty()
	case Value:
		return x
	case bool:
		return Boolean(x)
	case int:
		return Integer(int64(x))
	case int8:
		return Integer(int64(x))
	case int16:
		return Integer(int64(x))
	case int32:
		return Integer(int64(x))
	case int64:
		return Integer(x)
	case uint:
		return Integer(int64(x))
	case uint8:
		return Integer(int64(x))
	case uint16:
		return Integer(int64(x))
	case uint32:
		return Integer(int64(x))
	case uint64:
		return Integer(int64(x))
	case float32:
		return Double(float64(x))
	case float64:
		return Double(x)
	case string:
		return String(x)
	case []Value:
		return List(x...)
	case []interface{}:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = From(item)
		}
		return List(items...)
	case []string:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = String(item)
		}
		return List(items...)
	case map[string]Value:
		return Map(x)
	case map[string]interface{}:
		m := make(map[string]Value, len(x))
		for k, item := range x {
			m[k] = From(item)
		}
		return Map(m)
	default:
		return String(fmt.Sprint(raw))
	}
}
