// Package header generates C header files declaring the types, globals and
// POUs of a compilation unit, so that C code can link against it.
package header

import (
	"embed"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

//go:embed templates/header.h.tmpl
var templates embed.FS

var headerTemplate = template.Must(template.New("header.h.tmpl").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templates, "templates/header.h.tmpl"))

// maxTypeDepth bounds alias chains while mapping types.
const maxTypeDepth = 32

type enumElement struct {
	Name  string
	Value int64
}

type enum struct {
	Name     string
	Elements []enumElement
}

type record struct {
	Name   string
	Fields []string
}

type function struct {
	Return string
	Name   string
	Params []string
}

// file is the data the header template renders.
type file struct {
	Guard     string
	Aliases   []string
	Enums     []enum
	Structs   []record
	Globals   []string
	Functions []function
}

// FileName returns the name of the header generated for the unit read from
// unit, e.g. motor.h for src/motor.st.
func FileName(unit string) string {
	base := filepath.Base(unit)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".h"
}

// Generate writes the C header of u to w. Types are looked up in idx, which
// must contain the entries of u.
func Generate(w io.Writer, idx *index.Index, u *syntax.CompilationUnit) error {
	g := &generator{idx: idx, declared: make(map[string]bool)}
	g.f.Guard = guard(FileName(u.FileName))
	g.unit(u)
	if err := headerTemplate.Execute(w, &g.f); err != nil {
		return fmt.Errorf("failed to generate header for %s: %w", u.FileName, err)
	}
	return nil
}

func guard(name string) string {
	var b strings.Builder
	b.WriteString("__")
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

type generator struct {
	idx      *index.Index
	f        file
	declared map[string]bool // lower-cased names of emitted typedefs
}

func (g *generator) unit(u *syntax.CompilationUnit) {
	for _, ut := range u.UserTypes {
		if t := g.idx.FindType(ut.Def.TypeName()); t != nil {
			g.typedef(t)
		}
	}
	for _, b := range u.GlobalVars {
		if b.Kind != syntax.Global {
			continue
		}
		for _, v := range b.Vars {
			if e := g.idx.FindGlobalVariable(v.Name.Value); e != nil {
				g.f.Globals = append(g.f.Globals, g.decl(e.TypeName, e.Name))
			}
		}
	}
	for _, p := range u.Pous {
		if p.Generic {
			continue
		}
		switch p.Kind {
		case syntax.Function:
			g.function(p.Name.Value)
		case syntax.FunctionBlock:
			g.stateful(p.Name.Value)
		case syntax.Program:
			g.stateful(p.Name.Value)
			if e := g.idx.FindPou(p.Name.Value); e != nil && e.InstanceVariable != nil {
				g.f.Globals = append(g.f.Globals, p.Name.Value+"_type "+e.InstanceVariable.Name)
			}
		}
	}
}

func (g *generator) function(name string) {
	e := g.idx.FindPou(name)
	if e == nil {
		return
	}
	fn := function{Return: "void", Name: e.Name}
	if e.ReturnType != "" {
		base, suffix := g.ctype(e.ReturnType, 0)
		fn.Return = base + suffix
	}
	for _, p := range g.idx.DeclaredParameters(e.Name) {
		fn.Params = append(fn.Params, g.decl(p.TypeName, p.Name))
	}
	if g.idx.VariadicMember(e.Name) != nil {
		fn.Params = append(fn.Params, "...")
	}
	g.f.Functions = append(g.f.Functions, fn)
}

// stateful declares the instance struct of a program or function block and
// the function running its body.
func (g *generator) stateful(name string) {
	typeName := name + "_type"
	r := record{Name: typeName}
	for _, m := range g.idx.ContainerMembers(name) {
		switch m.VariableType() {
		case index.Input, index.Output, index.InOut, index.Local:
			r.Fields = append(r.Fields, g.decl(m.TypeName, m.Name))
		}
	}
	g.f.Structs = append(g.f.Structs, r)
	g.f.Functions = append(g.f.Functions, function{
		Return: "void",
		Name:   name,
		Params: []string{typeName + "* self"},
	})
}

// typedef declares the user type t once.
func (g *generator) typedef(t *types.DataType) {
	k := strings.ToLower(t.Name)
	if g.declared[k] {
		return
	}
	g.declared[k] = true

	switch info := t.Info.(type) {
	case *types.Struct:
		r := record{Name: t.Name}
		for _, f := range info.Fields {
			r.Fields = append(r.Fields, g.decl(f.TypeName, f.Name))
		}
		g.f.Structs = append(g.f.Structs, r)
	case *types.Enum:
		e := enum{Name: t.Name}
		for _, el := range info.Elements {
			var value int64
			if v := g.idx.FindEnumElement(t.Name, el); v != nil {
				value, _ = g.idx.ConstInt(v.Init, "")
			}
			e.Elements = append(e.Elements, enumElement{Name: el, Value: value})
		}
		g.f.Enums = append(g.f.Enums, e)
	default:
		base, suffix := g.structure(t, 0)
		g.f.Aliases = append(g.f.Aliases, base+" "+t.Name+suffix)
	}
}

// decl returns the C declaration of name with the type called typeName.
func (g *generator) decl(typeName, name string) string {
	base, suffix := g.ctype(typeName, 0)
	return base + " " + name + suffix
}

// ctype maps a type to its C form. Arrays and strings put their extent in
// suffix. User types keep their name.
func (g *generator) ctype(name string, depth int) (base, suffix string) {
	t := g.idx.FindType(name)
	if t == nil {
		return name, ""
	}
	if s, ok := t.Info.(*types.Struct); ok && s.FromPou {
		return t.Name + "_type", ""
	}
	if !t.IsInternal() && !t.Builtin {
		return t.Name, ""
	}
	return g.structure(t, depth)
}

func (g *generator) structure(t *types.DataType, depth int) (base, suffix string) {
	if depth > maxTypeDepth {
		return "void", ""
	}
	switch info := t.Info.(type) {
	case *types.Integer:
		switch {
		case strings.EqualFold(t.Name, types.BOOL):
			return "bool", ""
		case info.Semantic != "":
			return "time_t", ""
		case info.Signed:
			return fmt.Sprintf("int%d_t", info.Size), ""
		}
		return fmt.Sprintf("uint%d_t", info.Size), ""
	case *types.Float:
		if info.Size == 32 {
			return "float_t", ""
		}
		return "double_t", ""
	case *types.String:
		if info.Encoding == types.UTF16 {
			return "int16_t", fmt.Sprintf("[%d]", info.Size)
		}
		return "char", fmt.Sprintf("[%d]", info.Size)
	case *types.Alias:
		return g.ctype(info.Referenced, depth+1)
	case *types.SubRange:
		return g.ctype(info.Referenced, depth+1)
	case *types.Array:
		base, inner := g.ctype(info.Inner, depth+1)
		var b strings.Builder
		for _, d := range info.Dims {
			if n, ok := d.Len(); ok {
				fmt.Fprintf(&b, "[%d]", n)
			} else {
				b.WriteString("[]")
			}
		}
		return base, b.String() + inner
	case *types.Pointer:
		base, inner := g.ctype(info.Inner, depth+1)
		return base + "*", inner
	case *types.Struct, *types.Enum:
		// inline definitions get a typedef of their own
		g.typedef(t)
		return t.Name, ""
	}
	return "void", ""
}
