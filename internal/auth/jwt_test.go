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

package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	manager, err := NewJWTManager("jinja-go", []string{"jinja-go-api"}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create JWT manager: %v", err)
	}

	token, err := manager.GenerateToken("test-user", []string{"render"})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("Generated token is empty")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("Failed to validate generated token: %v", err)
	}
	if claims.UserID != "test-user" {
		t.Errorf("UserID = %q, expected %q", claims.UserID, "test-user")
	}
	if !claims.HasRole("render") {
		t.Error("expected the render role to be present")
	}
	if claims.HasRole("admin") {
		t.Error("unexpected admin role")
	}
}

func TestValidateInvalidToken(t *testing.T) {
	manager, err := NewJWTManager("jinja-go", []string{"jinja-go-api"}, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create JWT manager: %v", err)
	}
	if _, err := manager.ValidateToken("invalid.token.string"); err == nil {
		t.Fatal("expected an error for an invalid token")
	}
}

func TestTokensFromOtherManagersAreRejected(t *testing.T) {
	issuer, _ := NewJWTManager("jinja-go", []string{"jinja-go-api"}, time.Hour)
	other, _ := NewJWTManager("jinja-go", []string{"jinja-go-api"}, time.Hour)

	token, err := issuer.GenerateToken("user", nil)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected validation to fail with a different key pair")
	}
}
