package project

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
[project]
name = "plant"
files = ["src/*.json", "lib/io.json"]

[diagnostics]
config = "errors.toml"
format = "codespan"

[output]
header_dir = "include"
hardware_conf = "out/hw.json"
`)
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if p.Project.Name != "plant" {
		t.Errorf("name = %q", p.Project.Name)
	}
	if p.Dir != dir {
		t.Errorf("dir = %q, want %q", p.Dir, dir)
	}
	if want := filepath.Join(dir, "errors.toml"); p.Diagnostics.Config != want {
		t.Errorf("diagnostics config = %q, want %q", p.Diagnostics.Config, want)
	}
	if p.Diagnostics.Format != "codespan" {
		t.Errorf("format = %q", p.Diagnostics.Format)
	}
	if want := filepath.Join(dir, "include"); p.Output.HeaderDir != want {
		t.Errorf("header dir = %q, want %q", p.Output.HeaderDir, want)
	}
	if want := filepath.Join(dir, "out", "hw.json"); p.Output.HardwareConf != want {
		t.Errorf("hardware conf = %q, want %q", p.Output.HardwareConf, want)
	}
}

func TestUnits(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"src/b.json", "src/a.json", "lib/io.json"} {
		writeFile(t, filepath.Join(dir, f), "{}")
	}
	writeFile(t, filepath.Join(dir, FileName), `
[project]
name = "plant"
files = ["lib/io.json", "src/*.json", "src/a.json"]
`)
	p, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	units, err := p.Units()
	if err != nil {
		t.Fatalf("Units error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "lib", "io.json"),
		filepath.Join(dir, "src", "a.json"),
		filepath.Join(dir, "src", "b.json"),
	}
	if !reflect.DeepEqual(units, want) {
		t.Errorf("units = %v, want %v", units, want)
	}
}

func TestUnitsNoMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "[project]\nfiles = [\"missing/*.json\"]\n")
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, err := p.Units(); err == nil || !strings.Contains(err.Error(), "no files match") {
		t.Errorf("Units error = %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"no files", "[project]\nname = \"x\"\n", "no files"},
		{"unknown key", "[project]\nfiles = [\"a\"]\nsources = [\"b\"]\n", "sources"},
		{"syntax", "[project\n", "1:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("Parse succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	in := &Project{
		Project:     Settings{Name: "plant", Files: []string{"src/*.json"}},
		Diagnostics: Diagnostics{Format: "clang"},
	}
	if err := Save(dir, in); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	out, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(out.Project, in.Project) || out.Diagnostics != in.Diagnostics {
		t.Errorf("saved project = %+v", out)
	}
}
