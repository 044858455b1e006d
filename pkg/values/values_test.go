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

package values

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/work-obs/jinja-go/pkg/value"
)

func TestParseYAML(t *testing.T) {
	doc := []byte("name: web01\nport: 8080\nratio: 0.5\nactive: true\ntags:\n  - a\n  - b\nmeta:\n  env: prod\n")
	values, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if values["name"].String() != "web01" {
		t.Errorf("name = %v", values["name"])
	}
	if v, ok := values["port"].AsInteger(); !ok || v != 8080 {
		t.Errorf("port = %v", values["port"])
	}
	if v, ok := values["ratio"].AsDouble(); !ok || v != 0.5 {
		t.Errorf("ratio = %v", values["ratio"])
	}
	if !values["active"].IsTrue() {
		t.Errorf("active = %v", values["active"])
	}
	if values["tags"].String() != "[a, b]" {
		t.Errorf("tags = %v", values["tags"])
	}
	meta, ok := values["meta"].AsMap()
	if !ok || meta["env"].String() != "prod" {
		t.Errorf("meta = %v", values["meta"])
	}
}

func TestParseJSON(t *testing.T) {
	values, err := Parse([]byte(`{"n": 1, "s": "x"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if values["n"].String() != "1" || values["s"].String() != "x" {
		t.Errorf("values = %v", values)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("not: [valid")); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "vars.yaml", []byte("greeting: hello\n"), 0o644); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}
	values, err := LoadFile(fs, "vars.yaml")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if values["greeting"].String() != "hello" {
		t.Errorf("greeting = %v", values["greeting"])
	}
	if _, err := LoadFile(fs, "missing.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestParseAssignments(t *testing.T) {
	values, err := ParseAssignments([]string{"n=42", "s=hello", "b=true"})
	if err != nil {
		t.Fatalf("ParseAssignments failed: %v", err)
	}
	if v, ok := values["n"].AsInteger(); !ok || v != 42 {
		t.Errorf("n = %v", values["n"])
	}
	if values["s"].Kind() != value.KindString {
		t.Errorf("s = %v", values["s"])
	}
	if values["b"].Kind() != value.KindBoolean || !values["b"].IsTrue() {
		t.Errorf("b = %v", values["b"])
	}
	if _, err := ParseAssignments([]string{"oops"}); err == nil {
		t.Fatal("expected an error for a malformed assignment")
	}
}
