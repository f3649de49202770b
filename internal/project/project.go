// Package project reads stc.toml, the file describing which compilation
// units make up a project and where its outputs go.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the name of the project file looked up in a directory.
const FileName = "stc.toml"

// Project is the decoded content of a project file. Paths are relative to
// Dir until Load resolves them.
type Project struct {
	Project     Settings    `toml:"project"`
	Diagnostics Diagnostics `toml:"diagnostics"`
	Output      Output      `toml:"output"`

	// Dir is the directory holding the project file.
	Dir string `toml:"-"`
}

type Settings struct {
	Name  string   `toml:"name"`
	Files []string `toml:"files"` // file names or glob patterns
}

type Diagnostics struct {
	Config string `toml:"config,omitempty"` // error configuration, TOML or JSON
	Format string `toml:"format,omitempty"` // clang, codespan or none
}

type Output struct {
	HeaderDir    string `toml:"header_dir,omitempty"`
	HardwareConf string `toml:"hardware_conf,omitempty"`
}

// Load reads the project file at path. If path is a directory, the stc.toml
// inside it is read. Relative paths in the file are resolved against the
// directory of the file.
func Load(path string) (*Project, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	p.Dir = filepath.Dir(path)
	p.resolve()
	return p, nil
}

// Parse decodes a project file. Unknown keys are rejected.
func Parse(data []byte) (*Project, error) {
	var p Project
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		var (
			de  *toml.DecodeError
			sme *toml.StrictMissingError
		)
		if errors.As(err, &sme) {
			return nil, errors.New(sme.String())
		}
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, fmt.Errorf("%d:%d: %s", row, col, de.Error())
		}
		return nil, err
	}
	if len(p.Project.Files) == 0 {
		return nil, errors.New("project lists no files")
	}
	return &p, nil
}

func (p *Project) resolve() {
	abs := func(s string) string {
		if s == "" || filepath.IsAbs(s) {
			return s
		}
		return filepath.Join(p.Dir, s)
	}
	for i, f := range p.Project.Files {
		p.Project.Files[i] = abs(f)
	}
	p.Diagnostics.Config = abs(p.Diagnostics.Config)
	p.Output.HeaderDir = abs(p.Output.HeaderDir)
	p.Output.HardwareConf = abs(p.Output.HardwareConf)
}

// Units expands the file patterns of p into the list of unit files.
// Patterns matching nothing are an error; every file appears once, in
// pattern order and sorted within a pattern.
func (p *Project) Units() ([]string, error) {
	var units []string
	seen := make(map[string]bool)
	for _, pattern := range p.Project.Files {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad file pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				units = append(units, m)
			}
		}
	}
	return units, nil
}

// Save writes p as stc.toml into dir.
func Save(dir string, p *Project) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}
