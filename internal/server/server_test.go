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

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/work-obs/jinja-go/pkg/api"
	"github.com/work-obs/jinja-go/pkg/config"
	"github.com/work-obs/jinja-go/pkg/template"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:   "localhost",
		ServerPort:   0,
		JWTIssuer:    "jinja-go",
		JWTAudience:  []string{"jinja-go-api"},
		JWTTokenTTL:  time.Hour,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		IdleTimeout:  time.Second,
	}
}

func testEnv() *template.Environment {
	env := template.NewEnvironment()
	handler := template.NewMemoryFileSystem()
	handler.AddFile("greet.j2", "Hello {{ name }}!")
	env.AddFilesystemHandler(handler)
	return env
}

func doRequest(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s, err := New(testConfig(), testEnv())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w := doRequest(t, s, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRenderRequiresToken(t *testing.T) {
	s, err := New(testConfig(), testEnv())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", "", `{"template": "x"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, expected 401", w.Code)
	}
}

func TestRenderInlineTemplate(t *testing.T) {
	s, err := New(testConfig(), testEnv())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	token, err := s.IssueToken("tester", []string{"render"})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	body := `{"template": "{{ a + b }}", "values": {"a": 2, "b": 3}}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp api.RenderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Output != "5" {
		t.Errorf("output = %q, expected %q", resp.Output, "5")
	}
}

func TestRenderNamedTemplate(t *testing.T) {
	s, err := New(testConfig(), testEnv())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	token, _ := s.IssueToken("tester", []string{"render"})

	body := `{"name": "greet.j2", "values": {"name": "World"}}`
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp api.RenderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Output != "Hello World!" {
		t.Errorf("output = %q", resp.Output)
	}
}

func TestRenderBadTemplateReportsError(t *testing.T) {
	s, err := New(testConfig(), testEnv())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	token, _ := s.IssueToken("tester", []string{"render"})

	w := doRequest(t, s, http.MethodPost, "/api/v1/render", token, `{"template": "{{ }}"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, expected 422", w.Code)
	}
}

func TestRenderRoleRequired(t *testing.T) {
	s, err := New(testConfig(), testEnv())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	token, _ := s.IssueToken("tester", []string{"reader"})
	w := doRequest(t, s, http.MethodPost, "/api/v1/render", token, `{"template": "x"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, expected 403", w.Code)
	}
}

func TestGetTemplateSource(t *testing.T) {
	cfg := testConfig()
	cfg.DisableServerAuth = true
	s, err := New(cfg, testEnv())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w := doRequest(t, s, http.MethodGet, "/api/v1/templates/greet.j2", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp api.TemplateSourceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if resp.Source != "Hello {{ name }}!" {
		t.Errorf("source = %q", resp.Source)
	}

	w = doRequest(t, s, http.MethodGet, "/api/v1/templates/missing.j2", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, expected 404", w.Code)
	}
}
