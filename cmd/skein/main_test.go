package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/chazu/skein/bytecode"
	"github.com/chazu/skein/compiler"
	"github.com/chazu/skein/manifest"
	"github.com/chazu/skein/value"
)

func TestHandleDisasm(t *testing.T) {
	s := compiler.NewSession()
	h := s.Intern(value.Integer(42))
	if _, err := s.Compile(&compiler.Define{Name: "answer", Value: &compiler.Quote{Handle: h}}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "out.skbc")
	if err := bytecode.WriteImageFile(path, s.Image()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := handleDisasm(&buf, path); err != nil {
		t.Fatalf("handleDisasm: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"answer", "42", "CONSTANT", "EXTEND_FRAME", s.ID()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHandleDump(t *testing.T) {
	s := compiler.NewSession()
	h := s.Intern(value.String("hi"))
	if _, err := s.Compile(&compiler.If{
		Cond: &compiler.Quote{Handle: h},
		Then: &compiler.Quote{Handle: h},
		Else: &compiler.Quote{Handle: h},
	}); err != nil {
		t.Fatal(err)
	}
	img := s.Image()
	path := filepath.Join(t.TempDir(), "out.skbc")
	if err := bytecode.WriteImageFile(path, img); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := handleDump(&buf, path); err != nil {
		t.Fatalf("handleDump: %v", err)
	}
	var d imageDump
	if err := yaml.Unmarshal(buf.Bytes(), &d); err != nil {
		t.Fatalf("dump is not valid YAML: %v\n%s", err, buf.String())
	}
	if d.Version != bytecode.ImageVersion || d.Session != s.ID() {
		t.Errorf("header = %d %q", d.Version, d.Session)
	}
	if d.CodeHash != bytecode.HashCode(img.Code).String() {
		t.Errorf("code_hash = %q", d.CodeHash)
	}
	if len(d.Constants) != 1 || d.Constants[0] != `"hi"` {
		t.Errorf("constants = %v", d.Constants)
	}
	if len(d.Code) != len(img.Code) {
		t.Fatalf("code has %d lines, want %d", len(d.Code), len(img.Code))
	}
	if !strings.Contains(d.Code[1], "JUMP_FALSE") || !strings.Contains(d.Code[1], "->") {
		t.Errorf("code[1] = %q, want a resolved JUMP_FALSE", d.Code[1])
	}
}

func TestHandleDisasmMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := handleDisasm(&buf, filepath.Join(t.TempDir(), "nope.skbc")); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestLoadManifestFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	m, err := loadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dir != dir || !m.Compiler.Variadic {
		t.Errorf("manifest = %+v, want defaults rooted at %s", m, dir)
	}
}

func TestPrintConfig(t *testing.T) {
	dir := t.TempDir()
	content := "[project]\nname = \"demo\"\n\n[compiler]\nhoist-defines = false\n"
	if err := os.WriteFile(filepath.Join(dir, manifest.FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := loadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printConfig(&buf, m)
	out := buf.String()
	for _, want := range []string{"demo", "hoist-defines:  false", "variadic:       true", "stderr"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
