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

package config

import (
	"testing"

	"github.com/spf13/afero"
)

func TestLoadConfigDefaults(t *testing.T) {
	m := NewManager(afero.NewMemMapFs())
	if err := m.LoadConfig(""); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg := m.GetConfig()
	if cfg.TrimBlocks || cfg.LstripBlocks {
		t.Error("whitespace settings should default to false")
	}
	if cfg.CacheSize != 400 {
		t.Errorf("CacheSize = %d, expected 400", cfg.CacheSize)
	}
	if !cfg.AutoReload {
		t.Error("AutoReload should default to true")
	}
	if cfg.ServerPort != 8443 {
		t.Errorf("ServerPort = %d, expected 8443", cfg.ServerPort)
	}
}

func TestLoadConfigFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	doc := []byte("trim_blocks: true\nlstrip_blocks: true\ntemplate_root: /srv/templates\nserver_port: 9000\n")
	if err := afero.WriteFile(fs, "jinja.yaml", doc, 0o644); err != nil {
		t.Fatalf("writing fixture failed: %v", err)
	}

	m := NewManager(fs)
	if err := m.LoadConfig("jinja.yaml"); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg := m.GetConfig()
	if !cfg.TrimBlocks || !cfg.LstripBlocks {
		t.Error("whitespace settings not read from file")
	}
	if cfg.TemplateRoot != "/srv/templates" {
		t.Errorf("TemplateRoot = %q", cfg.TemplateRoot)
	}
	if cfg.ServerPort != 9000 {
		t.Errorf("ServerPort = %d", cfg.ServerPort)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	m := NewManager(afero.NewMemMapFs())
	if err := m.LoadConfig("nope.yaml"); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestEngineSettings(t *testing.T) {
	cfg := &Config{TrimBlocks: true, CacheSize: 10, AutoReload: false}
	settings := cfg.EngineSettings()
	if !settings.TrimBlocks || settings.LstripBlocks {
		t.Errorf("settings = %+v", settings)
	}
	if settings.CacheSize != 10 {
		t.Errorf("CacheSize = %d", settings.CacheSize)
	}
	if settings.AutoReload {
		t.Error("AutoReload should be false")
	}
}

func TestSetValueOverride(t *testing.T) {
	m := NewManager(afero.NewMemMapFs())
	m.SetValue("server_port", 1234)
	if err := m.LoadConfig(""); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if m.GetConfig().ServerPort != 1234 {
		t.Errorf("ServerPort = %d, expected override to win", m.GetConfig().ServerPort)
	}
}
