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

// Package config loads tool configuration from config files, environment
// variables and defaults, with viper handling the precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/work-obs/jinja-go/pkg/template"
)

// Config is the complete configuration of the jinja tool.
type Config struct {
	// Engine settings
	TrimBlocks   bool `mapstructure:"trim_blocks"`
	LstripBlocks bool `mapstructure:"lstrip_blocks"`
	CacheSize    int  `mapstructure:"cache_size"`
	AutoReload   bool `mapstructure:"auto_reload"`

	// Template resolution
	TemplateRoot  string   `mapstructure:"template_root"`
	TemplatePaths []string `mapstructure:"template_paths"`

	// Server mode
	ServerHost        string        `mapstructure:"server_host"`
	ServerPort        int           `mapstructure:"server_port"`
	TLSCertFile       string        `mapstructure:"tls_cert_file"`
	TLSKeyFile        string        `mapstructure:"tls_key_file"`
	JWTIssuer         string        `mapstructure:"jwt_issuer"`
	JWTAudience       []string      `mapstructure:"jwt_audience"`
	JWTTokenTTL       time.Duration `mapstructure:"jwt_token_ttl"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	DisableServerAuth bool          `mapstructure:"disable_server_auth"`
}

// EngineSettings maps the engine-relevant part of the configuration onto
// template.Settings.
func (c *Config) EngineSettings() template.Settings {
	settings := template.DefaultSettings()
	settings.TrimBlocks = c.TrimBlocks
	settings.LstripBlocks = c.LstripBlocks
	if c.CacheSize > 0 {
		settings.CacheSize = c.CacheSize
	}
	settings.AutoReload = c.AutoReload
	return settings
}

// Manager handles configuration loading with multiple source support.
type Manager struct {
	config *Config
	viper  *viper.Viper
	fs     afero.Fs
}

// NewManager creates a configuration manager over the given filesystem.
func NewManager(fs afero.Fs) *Manager {
	v := viper.New()
	v.SetFs(fs)
	return &Manager{
		config: &Config{},
		viper:  v,
		fs:     fs,
	}
}

// LoadConfig loads configuration from defaults, an optional config file and
// JINJA_* environment variables, in increasing precedence.
func (m *Manager) LoadConfig(cfgFile string) error {
	m.setDefaults()

	if cfgFile != "" {
		m.viper.SetConfigFile(cfgFile)
	} else {
		m.viper.SetConfigName("jinja")
		m.viper.SetConfigType("yaml")
		m.viper.AddConfigPath(".")
		m.viper.AddConfigPath("$HOME/.config/jinja")
		m.viper.AddConfigPath("/etc/jinja")
	}

	m.viper.SetEnvPrefix("JINJA")
	m.viper.AutomaticEnv()
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults and environment apply.
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	return nil
}

// GetConfig returns the loaded configuration.
func (m *Manager) GetConfig() *Config {
	return m.config
}

// GetValue reads a raw configuration key.
func (m *Manager) GetValue(key string) interface{} {
	return m.viper.Get(key)
}

// SetValue overrides a configuration key.
func (m *Manager) SetValue(key string, value interface{}) {
	m.viper.Set(key, value)
}

func (m *Manager) setDefaults() {
	m.viper.SetDefault("trim_blocks", false)
	m.viper.SetDefault("lstrip_blocks", false)
	m.viper.SetDefault("cache_size", 400)
	m.viper.SetDefault("auto_reload", true)
	m.viper.SetDefault("template_root", ".")
	m.viper.SetDefault("server_host", "localhost")
	m.viper.SetDefault("server_port", 8443)
	m.viper.SetDefault("jwt_issuer", "jinja-go")
	m.viper.SetDefault("jwt_audience", []string{"jinja-go-api"})
	m.viper.SetDefault("jwt_token_ttl", time.Hour)
	m.viper.SetDefault("read_timeout", 30*time.Second)
	m.viper.SetDefault("write_timeout", 30*time.Second)
	m.viper.SetDefault("idle_timeout", 120*time.Second)
	m.viper.SetDefault("disable_server_auth", false)
}
