package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/skein/compiler"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "test-app"
version = "0.1.0"

[compiler]
variadic = false
hoist-defines = false

[image]
output = "build/app.skbc"

[log]
verbosity = 2
file = "skein.log"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "test-app" {
		t.Errorf("project name = %q, want test-app", m.Project.Name)
	}
	if m.Project.Version != "0.1.0" {
		t.Errorf("project version = %q, want 0.1.0", m.Project.Version)
	}
	if m.Compiler.Variadic || m.Compiler.HoistDefines {
		t.Errorf("compiler = %+v, want both disabled", m.Compiler)
	}
	if got := m.ImagePath(); got != filepath.Join(m.Dir, "build", "app.skbc") {
		t.Errorf("ImagePath() = %q", got)
	}
	if m.Log.Verbosity != 2 {
		t.Errorf("log verbosity = %d, want 2", m.Log.Verbosity)
	}
	if p := m.LogPath(); p == nil || *p != filepath.Join(m.Dir, "skein.log") {
		t.Errorf("LogPath() = %v", p)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !m.Compiler.Variadic || !m.Compiler.HoistDefines {
		t.Errorf("compiler = %+v, want defaults enabled", m.Compiler)
	}
	if m.Image.Output != DefaultImageOutput {
		t.Errorf("image output = %q, want %q", m.Image.Output, DefaultImageOutput)
	}
	if m.LogPath() != nil {
		t.Errorf("LogPath() = %v, want nil", *m.LogPath())
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[project\nname = 1"},
		{"negative verbosity", "[log]\nverbosity = -1"},
		{"wrong type", "[compiler]\nvariadic = \"yes\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.content)
			if _, err := Load(dir); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no skein.toml exists")
	}
}

func TestSessionOptionsApply(t *testing.T) {
	m := Default()
	m.Compiler.Variadic = false
	m.Compiler.HoistDefines = false

	s := compiler.NewSession(m.SessionOptions()...)
	_, err := s.Compile(&compiler.Lambda{Rest: "xs", Body: []compiler.Node{&compiler.Reference{Name: "xs"}}})
	if err == nil {
		t.Error("variadic lambda should be rejected when disabled")
	}

	// Without hoisting a forward reference inside a begin is undefined.
	_, err = s.Compile(&compiler.Begin{Body: []compiler.Node{
		&compiler.Define{Name: "f", Value: &compiler.Reference{Name: "g"}},
		&compiler.Define{Name: "g", Value: &compiler.Reference{Name: "f"}},
	}})
	if err == nil {
		t.Error("forward reference should fail without hoisting")
	}
}

func TestImagePathAbsolute(t *testing.T) {
	m := Default()
	m.Dir = "/app"
	m.Image.Output = "/tmp/x.skbc"
	if got := m.ImagePath(); got != "/tmp/x.skbc" {
		t.Errorf("ImagePath() = %q", got)
	}
	m.Image.Output = "out.skbc"
	if got := m.ImagePath(); got != filepath.Join("/app", "out.skbc") {
		t.Errorf("ImagePath() = %q", got)
	}
}
