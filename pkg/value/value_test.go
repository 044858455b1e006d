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

import "testing"

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		left     Value
		right    Value
		expected Value
	}{
		{"int+int", Integer(10), Integer(1), Integer(11)},
		{"int+double", Integer(1), Double(0.33), Double(1.33)},
		{"double+int", Double(0.1), Integer(1), Double(1.1)},
		{"bool+int", Boolean(true), Integer(2), Integer(3)},
		{"string+string", String("hello"), String(" world"), String("hello world")},
		{"string+int", String("a"), Integer(1), Error()},
		{"list+list", List(), List(), Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Add(tt.left, tt.right)
			if !Equal(got, tt.expected) || got.Kind() != tt.expected.Kind() {
				t.Errorf("Add(%v, %v) = %v, expected %v", tt.left, tt.right, got, tt.expected)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		got      Value
		expected string
	}{
		{"sub", Sub(Integer(1), Integer(10)), "-9"},
		{"sub double", Sub(Double(0.1), Double(10.5)), "-10.4"},
		{"mul", Mul(Integer(2), Integer(10)), "20"},
		{"mul repeat", Mul(String("123"), Integer(3)), "123123123"},
		{"mul repeat zero", Mul(String("abc"), Integer(0)), ""},
		{"div", Div(Integer(10), Integer(4)), "2.5"},
		{"intdiv", IntDiv(Integer(10), Integer(4)), "2"},
		{"intdiv negative", IntDiv(Integer(-10), Integer(4)), "-3"},
		{"mod", Mod(Integer(10), Integer(3)), "1"},
		{"mod double", Mod(Double(10.5), Integer(3)), "1.5"},
		{"pow", Pow(Integer(2), Integer(3)), "8"},
		{"pow double", Pow(Double(2.5), Integer(2)), "6.25"},
		{"pow negative exponent", Pow(Integer(2), Integer(-1)), "0.5"},
		{"concat", Concat(String("hello "), Integer(123)), "hello 123"},
		{"concat bool", Concat(String("x"), Boolean(false)), "xfalse"},
		{"neg", Neg(Integer(1)), "-1"},
		{"not", Not(Boolean(false)), "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.String() != tt.expected {
				t.Errorf("got %q, expected %q", tt.got.String(), tt.expected)
			}
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	if !Div(Integer(1), Integer(0)).IsError() {
		t.Error("expected error value for division by zero")
	}
	if !IntDiv(Integer(1), Integer(0)).IsError() {
		t.Error("expected error value for integer division by zero")
	}
	if !Mod(Integer(1), Integer(0)).IsError() {
		t.Error("expected error value for modulo by zero")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		left     Value
		right    Value
		expected bool
	}{
		{"int==int", Integer(1), Integer(1), true},
		{"int==double", Integer(1), Double(1.0), true},
		{"bool==int", Boolean(true), Integer(1), true},
		{"string==string", String("foo"), String("foo"), true},
		{"string!=string", String("foo"), String("bar"), false},
		{"string!=int", String("1"), Integer(1), false},
		{"empty==empty", Empty(), Empty(), true},
		{"list==list", List(Integer(1)), List(Integer(1)), true},
		{"list!=list", List(Integer(1)), List(Integer(2)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.left, tt.right); got != tt.expected {
				t.Errorf("Equal(%v, %v) = %v", tt.left, tt.right, got)
			}
		})
	}
}

func TestCompareMixedKinds(t *testing.T) {
	// Kind rank keeps min/max total on heterogeneous lists.
	if Compare(Boolean(true), Integer(100)) >= 0 {
		t.Error("true should order below 100")
	}
	if Compare(Integer(-5), Boolean(false)) >= 0 {
		t.Error("-5 should order below false")
	}
	if Compare(Map(nil), Integer(0)) >= 0 {
		t.Error("maps order below numerics")
	}
	if Compare(Empty(), Map(nil)) >= 0 {
		t.Error("empty orders below maps")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		v        Value
		expected string
	}{
		{"empty", Empty(), ""},
		{"error", Error(), ""},
		{"true", Boolean(true), "true"},
		{"false", Boolean(false), "false"},
		{"integer", Integer(42), "42"},
		{"double whole", Double(3.0), "3.0"},
		{"double fraction", Double(38.4), "38.4"},
		{"double negative", Double(-1.0), "-1.0"},
		{"string", String("hi"), "hi"},
		{"list", List(String("a"), String("b"), String("c")), "[a, b, c]"},
		{"empty list", List(), "[]"},
		{"map sorted", Map(map[string]Value{"foo": String("bar"), "a": Integer(10)}), `{"a": 10, "foo": bar}`},
		{"empty map", Map(nil), "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.expected {
				t.Errorf("String() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestIsTrue(t *testing.T) {
	truthy := []Value{Boolean(true), Integer(1), Double(0.5), String("x"), List(Integer(0)), Map(map[string]Value{"k": Empty()})}
	falsy := []Value{Empty(), Error(), Boolean(false), Integer(0), Double(0), String(""), List(), Map(nil)}
	for _, v := range truthy {
		if !v.IsTrue() {
			t.Errorf("expected %v to be true", v)
		}
	}
	for _, v := range falsy {
		if v.IsTrue() {
			t.Errorf("expected %v to be false", v)
		}
	}
}

func TestToList(t *testing.T) {
	items := String("abc").ToList()
	if len(items) != 3 || items[0].String() != "a" {
		t.Errorf("string coercion produced %v", items)
	}
	keys := Map(map[string]Value{"b": Integer(1), "a": Integer(2)}).ToList()
	if len(keys) != 2 || keys[0].String() != "a" || keys[1].String() != "b" {
		t.Errorf("map coercion produced %v", keys)
	}
	if got := Integer(1).ToList(); len(got) != 0 {
		t.Errorf("numeric coercion produced %v", got)
	}
}

func TestFrom(t *testing.T) {
	v := From(map[string]interface{}{"n": 1, "s": "x", "l": []interface{}{true, 2.5}})
	m, ok := v.AsMap()
	if !ok {
		t.Fatalf("expected map, got %v", v)
	}
	if m["n"].String() != "1" || m["s"].String() != "x" {
		t.Errorf("unexpected conversion: %v", v)
	}
	if m["l"].String() != "[true, 2.5]" {
		t.Errorf("unexpected list conversion: %v", m["l"])
	}
	if !From(nil).IsEmpty() {
		t.Error("nil should convert to Empty")
	}
}
