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

package template

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// FileSystemHandler resolves template names to source bytes. Handlers are
// consulted in registration order; the first stream wins.
type FileSystemHandler interface {
	// OpenStream returns a reader over the named template, or false when the
	// handler does not know the name.
	OpenStream(name string) (io.ReadCloser, bool)
	// LastModified reports when the named template changed, or false when
	// unknown.
	LastModified(name string) (time.Time, bool)
}

func readFromHandler(h FileSystemHandler, name string) (string, bool) {
	stream, ok := h.OpenStream(name)
	if !ok {
		return "", false
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// MemoryFileSystem serves templates from an in-process name → body map.
type MemoryFileSystem struct {
	files map[string]string
}

// NewMemoryFileSystem creates an empty in-memory handler.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{files: make(map[string]string)}
}

// AddFile registers a template body under a name.
func (m *MemoryFileSystem) AddFile(name, content string) {
	m.files[name] = content
}

// OpenStream implements FileSystemHandler.
func (m *MemoryFileSystem) OpenStream(name string) (io.ReadCloser, bool) {
	body, ok := m.files[name]
	if !ok {
		return nil, false
	}
	return io.NopCloser(strings.NewReader(body)), true
}

// LastModified implements FileSystemHandler.
func (m *MemoryFileSystem) LastModified(name string) (time.Time, bool) {
	if _, ok := m.files[name]; !ok {
		return time.Time{}, false
	}
	return time.Now(), true
}

// RealFileSystem serves templates from a root folder of an afero filesystem,
// which is the OS filesystem by default.
type RealFileSystem struct {
	fs   afero.Fs
	root string
}

// NewRealFileSystem creates a handler over the OS filesystem.
func NewRealFileSystem(root string) *RealFileSystem {
	return &RealFileSystem{fs: afero.NewOsFs(), root: root}
}

// NewRealFileSystemFrom creates a handler over any afero filesystem, which
// tests use with an in-memory one.
func NewRealFileSystemFrom(fs afero.Fs, root string) *RealFileSystem {
	return &RealFileSystem{fs: fs, root: root}
}

// SetRootFolder changes the root folder.
func (r *RealFileSystem) SetRootFolder(root string) { r.root = root }

// RootFolder returns the root folder.
func (r *RealFileSystem) RootFolder() string { return r.root }

func (r *RealFileSystem) fullPath(name string) string {
	return filepath.Join(r.root, name)
}

// OpenStream implements FileSystemHandler.
func (r *RealFileSystem) OpenStream(name string) (io.ReadCloser, bool) {
	f, err := r.fs.Open(r.fullPath(name))
	if err != nil {
		return nil, false
	}
	return f, true
}

// LastModified implements FileSystemHandler.
func (r *RealFileSystem) LastModified(name string) (time.Time, bool) {
	info, err := r.fs.Stat(r.fullPath(name))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
