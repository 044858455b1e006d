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
	"strconv"
	"strings"
)

// FormatDouble renders a float the way templates expect: the shortest decimal
// form that round-trips, with a trailing ".0" kept for whole values.
func FormatDouble(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// String renders the value as template output. Empty and Error render as the
// empty string; lists render as "[a, b, c]"; maps render with quoted keys in
// sorted order.
func (v Value) String() string {
	switch v.kind {
	case KindBoolean:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindDouble:
		return FormatDouble(v.double)
	case KindString:
		return v.str
	case KindList:
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		b.WriteByte(']')
		return b.String()
	case KindMap:
		var b strings.Builder
		b.WriteByte('{')
		for i, k := range v.SortedKeys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('"')
			b.WriteString(k)
			b.WriteString(`": `)
			b.WriteString(v.mapping[k].String())
		}
		b.WriteByte('}')
		return b.String()
	}
	return ""
}
