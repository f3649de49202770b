package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/do"

	"github.com/you-not-fish/stc/internal/diag"
)

const library = `{
  "globals": [{"kind": "Global", "vars": [
    {"name": "lamp", "type": "BOOL", "at": {"direction": "Output", "access": "Bit", "address": [0, 1]}}
  ]}],
  "pous": [
    {"kind": "FunctionBlock", "name": "Motor", "varBlocks": [
      {"kind": "Input", "vars": [{"name": "speed", "type": "INT"}]},
      {"kind": "Output", "vars": [{"name": "running", "type": "BOOL"}]}
    ]}
  ],
  "implementations": [
    {"kind": "FunctionBlock", "name": "Motor", "body": [
      {"kind": "assign", "lhs": "running", "rhs": {"kind": "op", "op": ">", "x": "speed", "y": 0}}
    ]}
  ]
}`

const application = `{
  "pous": [
    {"kind": "Program", "name": "Main", "varBlocks": [
      {"kind": "Local", "vars": [{"name": "m", "type": "Motor"}]}
    ]}
  ],
  "implementations": [
    {"kind": "Program", "name": "Main", "pos": "10:1", "body": [
      {"kind": "expr", "x": {"kind": "call", "fun": "m", "args": [{"kind": "namedArg", "name": "speed", "value": 10}]}},
      {"kind": "assign", "lhs": "lamp", "rhs": {"kind": "member", "x": "m", "sel": "running"}}
    ]}
  ]
}`

func broken(name string) string {
	return `{
  "pous": [{"kind": "Program", "name": "` + name + `"}],
  "implementations": [
    {"kind": "Program", "name": "` + name + `", "pos": "2:1", "body": [
      {"kind": "assign", "lhs": "nope", "rhs": 1}
    ]}
  ]
}`
}

// writeUnits writes srcs as name/content pairs into a temporary directory
// and returns their paths.
func writeUnits(t *testing.T, srcs ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i := 0; i+1 < len(srcs); i += 2 {
		path := filepath.Join(dir, srcs[i])
		if err := os.WriteFile(path, []byte(srcs[i+1]), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}
	return dir, paths
}

func run(t *testing.T, opts Options) (*Result, string, error) {
	t.Helper()
	var diags, logs bytes.Buffer
	opts.Diagnostics = &diags
	opts.Log = &logs
	res, err := Run(context.Background(), opts)
	return res, diags.String(), err
}

func TestRun(t *testing.T) {
	dir, units := writeUnits(t, "lib.json", library, "main.json", application)
	opts := Options{
		Units:        units,
		HeaderDir:    filepath.Join(dir, "include"),
		HardwareConf: filepath.Join(dir, "out", "hw.json"),
		Jobs:         2,
	}
	res, diags, err := run(t, opts)
	if err != nil {
		t.Fatalf("Run error: %v\n%s", err, diags)
	}
	if diags != "" {
		t.Errorf("unexpected diagnostics:\n%s", diags)
	}
	if len(res.Units) != 2 || res.Units[0].FileName != units[0] || res.Units[1].FileName != units[1] {
		t.Errorf("units out of order: %v", res.Units)
	}
	if res.Index.FindPou("Motor") == nil || res.Index.FindPou("Main") == nil {
		t.Error("merged index lacks the POUs of both units")
	}
	if len(res.Info.UsesOf("Motor.speed")) == 0 {
		t.Error("no uses recorded for Motor.speed")
	}

	for _, h := range []string{"lib.h", "main.h"} {
		if _, err := os.Stat(filepath.Join(opts.HeaderDir, h)); err != nil {
			t.Errorf("header %s not written: %v", h, err)
		}
	}
	data, err := os.ReadFile(opts.HardwareConf)
	if err != nil {
		t.Fatalf("hardware configuration not written: %v", err)
	}
	var hw struct {
		HardwareConfiguration []struct {
			Name string `json:"name"`
		}
	}
	if err := json.Unmarshal(data, &hw); err != nil {
		t.Fatalf("invalid hardware configuration: %v", err)
	}
	if len(hw.HardwareConfiguration) != 1 || hw.HardwareConfiguration[0].Name != "lamp" {
		t.Errorf("hardware configuration = %s", data)
	}
}

func TestRunReportsInUnitOrder(t *testing.T) {
	_, units := writeUnits(t, "a.json", broken("A"), "b.json", broken("B"), "c.json", broken("C"))
	res, diags, err := run(t, Options{Units: units, Jobs: 3})
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("Run error = %v, want ErrFailed", err)
	}
	if res.Severity != diag.Error {
		t.Errorf("severity = %s", res.Severity)
	}
	lines := strings.Split(strings.TrimSpace(diags), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 diagnostics, got:\n%s", diags)
	}
	for i, name := range []string{"a.json", "b.json", "c.json"} {
		want := name + ":2:1: error[E048]: Could not resolve reference to nope"
		if !strings.HasSuffix(lines[i], want) {
			t.Errorf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
}

func TestRunErrorConfig(t *testing.T) {
	dir, units := writeUnits(t, "a.json", broken("A"), "errors.toml", "[errors]\nE048 = \"warning\"\n")
	res, diags, err := run(t, Options{Units: units[:1], ErrorConfig: filepath.Join(dir, "errors.toml")})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Severity != diag.Warning {
		t.Errorf("severity = %s, want warning", res.Severity)
	}
	if !strings.Contains(diags, "warning[E048]") {
		t.Errorf("diagnostics = %q", diags)
	}
}

func TestRunMissingUnit(t *testing.T) {
	dir, units := writeUnits(t, "lib.json", library)
	units = append(units, filepath.Join(dir, "missing.json"))
	_, diags, err := run(t, Options{Units: units})
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("Run error = %v, want ErrFailed", err)
	}
	if !strings.Contains(diags, "error[E002]") || !strings.Contains(diags, "missing.json") {
		t.Errorf("diagnostics = %q", diags)
	}
}

func TestContainer(t *testing.T) {
	var logs bytes.Buffer
	i := NewContainer(Options{Format: "codespan", Log: &logs, Verbose: true})
	defer i.Shutdown()

	r, err := do.Invoke[diag.Reporter](i)
	if err != nil {
		t.Fatalf("Invoke reporter: %v", err)
	}
	if _, ok := r.(*diag.CodespanReporter); !ok {
		t.Errorf("reporter = %T, want *diag.CodespanReporter", r)
	}
	if _, err := do.Invoke[*Pipeline](i); err != nil {
		t.Fatalf("Invoke pipeline: %v", err)
	}

	bad := NewContainer(Options{Format: "xml", Log: &logs})
	defer bad.Shutdown()
	if _, err := do.Invoke[*Pipeline](bad); err == nil {
		t.Error("pipeline built with an unknown diagnostics format")
	}
}
