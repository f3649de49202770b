// Package driver runs the compilation pipeline over a set of units:
// load and index them in parallel, merge the indexes, link, validate and
// write the requested outputs.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/header"
	"github.com/you-not-fish/stc/internal/hwconf"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/indexer"
	"github.com/you-not-fish/stc/internal/linker"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/validate"
)

// ErrFailed is returned when diagnostics of error severity were reported.
var ErrFailed = errors.New("compilation failed")

// Result is the outcome of a pipeline run.
type Result struct {
	Units []*syntax.CompilationUnit
	Index *index.Index
	Info  *linker.Info

	// Severity is the highest severity reported.
	Severity diag.Severity
}

// Pipeline runs the stages over the units named in its options.
type Pipeline struct {
	opts   Options
	log    *Logger
	diag   *diag.Diagnostician
	result Result
}

// NewPipeline builds a pipeline from the services of i.
func NewPipeline(i *do.Injector) (*Pipeline, error) {
	d, err := do.Invoke[*diag.Diagnostician](i)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		opts: do.MustInvoke[Options](i),
		log:  do.MustInvoke[*Logger](i),
		diag: d,
	}, nil
}

// Run executes all stages. It stops after the first stage that reports
// an error and returns ErrFailed; problems that are not diagnostics, such
// as failing to write an output, are returned as they are.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"index", p.index},
		{"link", p.link},
		{"validate", p.validate},
		{"output", p.output},
	}
	for _, s := range stages {
		start := time.Now()
		err := s.run(ctx)
		p.log.debugf("%s: %v", s.name, time.Since(start))
		if err != nil {
			return &p.result, err
		}
		if p.result.Severity >= diag.Error {
			return &p.result, ErrFailed
		}
	}
	return &p.result, nil
}

func (p *Pipeline) jobs() int {
	if p.opts.Jobs > 0 {
		return p.opts.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (p *Pipeline) handle(ds []*diag.Diagnostic) {
	if sev := p.diag.Handle(ds); sev > p.result.Severity {
		p.result.Severity = sev
	}
}

// index reads and indexes every unit concurrently and merges the results
// in unit order after the builtins.
func (p *Pipeline) index(ctx context.Context) error {
	units := make([]*syntax.CompilationUnit, len(p.opts.Units))
	indexes := make([]*index.Index, len(p.opts.Units))
	loadErrs := make([]*diag.Diagnostic, len(p.opts.Units))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs())
	for i, name := range p.opts.Units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u, err := readUnit(name)
			if err != nil {
				loadErrs[i] = diag.New(err.Error()).WithCode(diag.CodeIO).WithErr(err)
				return nil
			}
			units[i] = u
			indexes[i] = indexer.Index(u)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var failed []*diag.Diagnostic
	for _, d := range loadErrs {
		if d != nil {
			failed = append(failed, d)
		}
	}
	if len(failed) > 0 {
		p.handle(failed)
		return nil
	}

	idx := index.New()
	idx.Import(indexer.Builtins())
	for _, ui := range indexes {
		idx.Import(ui)
	}
	for _, t := range indexer.ResolveConstants(idx) {
		p.log.debugf("unresolved constants in type %s", t.Name)
	}
	p.result.Units = units
	p.result.Index = idx
	if p.log.verbose {
		for _, u := range units {
			p.log.debugf("%s: %d statements", u.FileName, countStmts(u))
		}
	}
	return nil
}

func countStmts(u *syntax.CompilationUnit) int {
	n := 0
	syntax.Inspect(u, func(node syntax.Node) bool {
		if _, ok := node.(syntax.Stmt); ok {
			n++
		}
		return true
	})
	return n
}

func readUnit(name string) (*syntax.CompilationUnit, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return syntax.ReadUnit(name, f)
}

// link resolves every unit concurrently against the merged index. The
// index is not modified while linking. Annotations and diagnostics are
// merged in unit order.
func (p *Pipeline) link(ctx context.Context) error {
	n := len(p.result.Units)
	infos := make([]*linker.Info, n)
	errs := make([][]*diag.Diagnostic, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.jobs())
	for i, u := range p.result.Units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			conf := &linker.Config{Error: func(d *diag.Diagnostic) {
				errs[i] = append(errs[i], d)
			}}
			// the error is the first diagnostic, already collected in errs[i]
			infos[i], _ = linker.Link(p.result.Index, []*syntax.CompilationUnit{u}, conf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	info := linker.NewInfo()
	for i := range infos {
		info.Merge(infos[i])
		p.handle(errs[i])
	}
	p.result.Info = info
	return nil
}

func (p *Pipeline) validate(context.Context) error {
	var ds []*diag.Diagnostic
	conf := &validate.Config{Error: func(d *diag.Diagnostic) {
		ds = append(ds, d)
	}}
	// the returned error repeats the first of ds
	_ = validate.Validate(p.result.Index, p.result.Units, conf)
	p.handle(ds)
	return nil
}

func (p *Pipeline) output(context.Context) error {
	if p.opts.HardwareConf != "" {
		if err := p.writeHardwareConf(); err != nil {
			var d *diag.Diagnostic
			if errors.As(err, &d) {
				p.handle([]*diag.Diagnostic{d})
				return nil
			}
			return err
		}
	}
	if p.opts.HeaderDir != "" {
		return p.writeHeaders()
	}
	return nil
}

func (p *Pipeline) writeHardwareConf() error {
	conf, err := hwconf.Collect(p.result.Index)
	if err != nil {
		return err
	}
	path := p.opts.HardwareConf
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create hardware configuration: %w", err)
	}
	if err := conf.Encode(f, hwconf.FormatOf(path)); err != nil {
		f.Close()
		return err
	}
	p.log.debugf("wrote %d hardware bindings to %s", len(conf.HardwareConfiguration), path)
	return f.Close()
}

func (p *Pipeline) writeHeaders() error {
	if err := os.MkdirAll(p.opts.HeaderDir, 0755); err != nil {
		return fmt.Errorf("failed to create header directory: %w", err)
	}
	for _, u := range p.result.Units {
		path := filepath.Join(p.opts.HeaderDir, header.FileName(u.FileName))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create header: %w", err)
		}
		if err := header.Generate(f, p.result.Index, u); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		p.log.debugf("wrote %s", path)
	}
	return nil
}
