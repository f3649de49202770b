package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/you-not-fish/stc/internal/driver"
)

const unitSrc = `{
  "globals": [{"kind": "Global", "vars": [{"name": "gCount", "type": "DINT"}]}],
  "types": [{"type": {"kind": "enum", "name": "Color", "elements": ["red", "green"]}}],
  "pous": [
    {"kind": "Function", "name": "Twice", "returnType": "INT", "varBlocks": [
      {"kind": "Input", "vars": [{"name": "v", "type": "INT"}]}
    ]}
  ],
  "implementations": [
    {"kind": "Function", "name": "Twice", "body": [
      {"kind": "assign", "lhs": "Twice", "rhs": {"kind": "op", "op": "*", "x": "v", "y": 2}}
    ]}
  ]
}`

func TestRunCompile(t *testing.T) {
	filename := writeTempUnit(t, "unit.json", unitSrc)
	code, out, errOut := captureOutput(t, func() int {
		return runCompile(driver.Options{Units: []string{filename}})
	})
	if code != 0 {
		t.Fatalf("runCompile exit=%d\nstderr:\n%s\nstdout:\n%s", code, errOut, out)
	}
	if errOut != "" {
		t.Fatalf("unexpected stderr:\n%s", errOut)
	}
}

func TestRunCompileReportsErrors(t *testing.T) {
	filename := writeTempUnit(t, "bad.json", `{
  "pous": [{"kind": "Program", "name": "Main"}],
  "implementations": [{"kind": "Program", "name": "Main", "pos": "4:3", "body": [
    {"kind": "assign", "lhs": "missing", "rhs": 1}
  ]}]
}`)
	code, _, errOut := captureOutput(t, func() int {
		return runCompile(driver.Options{Units: []string{filename}})
	})
	if code != 1 {
		t.Fatalf("runCompile exit=%d, want 1\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(errOut, "bad.json:4:3: error[E048]: Could not resolve reference to missing") {
		t.Fatalf("stderr missing diagnostic:\n%s", errOut)
	}
}

func TestRunCompileBadConfig(t *testing.T) {
	filename := writeTempUnit(t, "unit.json", unitSrc)
	code, _, errOut := captureOutput(t, func() int {
		return runCompile(driver.Options{Units: []string{filename}, Format: "xml"})
	})
	if code != 2 {
		t.Fatalf("runCompile exit=%d, want 2\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(errOut, `unknown diagnostics format "xml"`) {
		t.Fatalf("stderr:\n%s", errOut)
	}
}

func TestRunExplain(t *testing.T) {
	code, out, _ := captureOutput(t, func() int {
		return runExplain("e004")
	})
	if code != 0 {
		t.Fatalf("runExplain exit=%d", code)
	}
	if !strings.HasPrefix(out, "E004: ") || !strings.Contains(out, "Default severity: error") {
		t.Fatalf("explanation:\n%s", out)
	}

	code, _, errOut := captureOutput(t, func() int {
		return runExplain("E999")
	})
	if code != 1 || !strings.Contains(errOut, "unknown error code") {
		t.Fatalf("runExplain(E999) exit=%d stderr=%q", code, errOut)
	}
}

func TestRunDumpErrorConfig(t *testing.T) {
	cfg := writeTempUnit(t, "errors.json", `{"E048": "info"}`)
	code, out, errOut := captureOutput(t, func() int {
		return runDumpErrorConfig(cfg)
	})
	if code != 0 {
		t.Fatalf("runDumpErrorConfig exit=%d\nstderr:\n%s", code, errOut)
	}
	if !strings.Contains(out, "[errors]") {
		t.Fatalf("configuration lacks the errors table:\n%s", out)
	}
	severities := map[string]string{"E048": "info", "E004": "error"}
	for _, line := range strings.Split(out, "\n") {
		code, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if want, found := severities[strings.TrimSpace(code)]; found {
			if !strings.Contains(value, want) {
				t.Errorf("%s = %s, want %s", code, value, want)
			}
			delete(severities, strings.TrimSpace(code))
		}
	}
	for code := range severities {
		t.Errorf("configuration lacks %s:\n%s", code, out)
	}
}

func TestRunEmitIndex(t *testing.T) {
	filename := writeTempUnit(t, "unit.json", unitSrc)
	code, out, errOut := captureOutput(t, func() int {
		return runEmitIndex(filename)
	})
	if code != 0 {
		t.Fatalf("runEmitIndex exit=%d\nstderr:\n%s", code, errOut)
	}
	for _, want := range []string{"gCount", "Color", "(size: 4, align: 4)", "function", "Twice", ".v"} {
		if !strings.Contains(out, want) {
			t.Errorf("index output lacks %q:\n%s", want, out)
		}
	}
}

func TestRunEmitASTJSON(t *testing.T) {
	filename := writeTempUnit(t, "unit.json", unitSrc)
	old := *astFormat
	*astFormat = "json"
	defer func() { *astFormat = old }()

	code, out, errOut := captureOutput(t, func() int {
		return runEmitAST(filename)
	})
	if code != 0 {
		t.Fatalf("runEmitAST exit=%d\nstderr:\n%s", code, errOut)
	}
	// the dump is itself a readable unit
	again := writeTempUnit(t, "again.json", out)
	if code, _, errOut := captureOutput(t, func() int { return runEmitAST(again) }); code != 0 {
		t.Fatalf("re-reading the dump failed: %s", errOut)
	}
}

func TestOptionsFromProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "unit.json"), unitSrc)
	writeFile(t, filepath.Join(dir, "stc.toml"), `
[project]
name = "demo"
files = ["src/*.json"]

[diagnostics]
format = "codespan"

[output]
header_dir = "include"
`)
	old := *projectFile
	*projectFile = dir
	defer func() { *projectFile = old }()

	opts, err := options(nil)
	if err != nil {
		t.Fatalf("options error: %v", err)
	}
	if len(opts.Units) != 1 || opts.Units[0] != filepath.Join(dir, "src", "unit.json") {
		t.Errorf("units = %v", opts.Units)
	}
	if opts.Format != "codespan" {
		t.Errorf("format = %q", opts.Format)
	}
	if opts.HeaderDir != filepath.Join(dir, "include") {
		t.Errorf("header dir = %q", opts.HeaderDir)
	}

	opts, err = options([]string{"other.json"})
	if err != nil {
		t.Fatalf("options error: %v", err)
	}
	if len(opts.Units) != 1 || opts.Units[0] != "other.json" {
		t.Errorf("command line units = %v", opts.Units)
	}
}

func TestOptionsNoInput(t *testing.T) {
	if _, err := options(nil); err == nil {
		t.Fatal("options succeeded without input files")
	}
}

func writeFile(t *testing.T, path, src string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
}

func writeTempUnit(t *testing.T, name, src string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	writeFile(t, filename, src)
	return filename
}

func captureOutput(t *testing.T, fn func() int) (code int, stdout string, stderr string) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stdout: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe stderr: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code = fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	outBytes, _ := io.ReadAll(rOut)
	errBytes, _ := io.ReadAll(rErr)
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}
