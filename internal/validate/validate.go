// Package validate performs the semantic checks that need the complete,
// merged index: name conflicts across the project, recursive data
// structures and the rules for POU and type declarations.
package validate

import (
	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
)

// ErrorHandler is called for each problem found.
type ErrorHandler func(d *diag.Diagnostic)

// Config specifies the configuration for validation.
type Config struct {
	// Error is called for each diagnostic.
	// If nil, diagnostics are only counted.
	Error ErrorHandler
}

// validator collects the diagnostics of one Validate call.
type validator struct {
	idx  *index.Index
	conf *Config

	errors int
	first  *diag.Diagnostic
}

// Validate checks idx as a whole and then the declarations of every unit.
// It returns the first diagnostic reported, if any.
func Validate(idx *index.Index, units []*syntax.CompilationUnit, conf *Config) error {
	if conf == nil {
		conf = &Config{}
	}
	v := &validator{idx: idx, conf: conf}
	v.global()
	v.recursive()
	for _, u := range units {
		v.unit(u)
	}
	if v.errors > 0 {
		return v.first
	}
	return nil
}

func (v *validator) errorf(code string, span syntax.Span, format string, args ...interface{}) *diag.Diagnostic {
	d := diag.Errorf(code, span, format, args...)
	v.report(d)
	return d
}

func (v *validator) report(d *diag.Diagnostic) {
	if v.errors == 0 {
		v.first = d
	}
	v.errors++
	if v.conf.Error != nil {
		v.conf.Error(d)
	}
}

func (v *validator) unit(u *syntax.CompilationUnit) {
	for _, t := range u.UserTypes {
		v.dataType(t.Def)
	}
	for _, p := range u.Pous {
		if p.Linkage != syntax.ExternalLinkage {
			v.pou(p)
		}
	}
	for _, impl := range u.Implementations {
		v.implementation(impl)
	}
}
