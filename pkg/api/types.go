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

// Package api defines the request and response types of the render service.
package api

// ErrorResponse is the envelope for any API error.
type ErrorResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RenderRequest asks the service to render a template. Exactly one of Name
// (resolved through the environment's loaders) or Template (an inline body)
// must be set.
type RenderRequest struct {
	Name     string                 `json:"name,omitempty"`
	Template string                 `json:"template,omitempty"`
	Values   map[string]interface{} `json:"values,omitempty"`
}

// RenderResponse carries the rendered output.
type RenderResponse struct {
	Output string `json:"output"`
}

// TemplateSourceResponse returns the raw source of a stored template.
type TemplateSourceResponse struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// TokenRequest asks for an API token.
type TokenRequest struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles,omitempty"`
}

// TokenResponse carries a freshly issued API token.
type TokenResponse struct {
	Token string `json:"token"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}
