package validate

import (
	"strings"

	"github.com/you-not-fish/stc/internal/diag"
	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
)

// dataType checks a type declaration and the inline types inside it.
func (v *validator) dataType(def syntax.DataType) {
	switch def := def.(type) {
	case *syntax.StructType:
		if len(def.Vars) == 0 {
			v.errorf(diag.CodeEmptyBlock, syntax.SpanOf(def), "Variable block is empty")
		}
		for _, m := range def.Vars {
			if m.Type != nil && m.Type.IsInline() {
				v.dataType(m.Type.Def)
			}
		}
	case *syntax.EnumType:
		if len(def.Elements) == 0 {
			v.errorf(diag.CodeEmptyBlock, syntax.SpanOf(def), "Variable block is empty")
		}
	case *syntax.ArrayType:
		if def.Elem != nil && def.Elem.IsInline() {
			v.dataType(def.Elem.Def)
		}
	}
}

func (v *validator) pou(p *syntax.Pou) {
	name := syntax.SpanOf(p.Name)

	if p.Kind == syntax.Class {
		for _, b := range p.VarBlocks {
			if b.Kind == syntax.Input || b.Kind == syntax.Output || b.Kind == syntax.InOut {
				v.errorf(diag.CodeClassBlocks, name, "A class cannot contain `VAR_INPUT`, `VAR_IN_OUT`, or `VAR_OUTPUT` blocks")
				break
			}
		}
	}
	if p.ReturnType != nil && p.Kind != syntax.Function && p.Kind != syntax.Method {
		v.errorf(diag.CodeReturnType, syntax.SpanOf(p.ReturnType), "POU Type %s does not support a return type", p.Kind)
	}

	canExtend := p.Kind == syntax.FunctionBlock || p.Kind == syntax.Class
	if p.Extends != nil && !canExtend {
		v.errorf(diag.CodeSubclassing, name, "Subclassing is only allowed in `CLASS` and `FUNCTION_BLOCK`")
	}
	if len(p.Implements) > 0 {
		if !canExtend {
			v.errorf(diag.CodeSubclassing, syntax.SpanOf(p.Implements[0]), "Interfaces can only be implemented by `CLASS` or `FUNCTION_BLOCK`")
		} else {
			v.interfaceMethods(p)
		}
	}
}

// interfaceMethods reports the methods of the interfaces p implements that
// neither p nor one of its bases declares.
func (v *validator) interfaceMethods(p *syntax.Pou) {
	chain := v.idx.SuperChain(p.Name.Value)
	for _, iface := range v.interfaces(p.Implements) {
		for _, qualified := range iface.Methods {
			m := qualified[strings.LastIndexByte(qualified, '.')+1:]
			if v.hasMethod(chain, m) {
				continue
			}
			d := diag.Errorf(diag.CodeInterfaceMember, syntax.SpanOf(p.Name),
				"%s defined in interface `%s` is missing in POU `%s`", m, iface.Name, p.Name.Value)
			if decl := v.idx.FindPou(qualified); decl != nil {
				d = d.WithSecondary(decl.Span)
			}
			v.report(d)
		}
	}
}

// interfaces returns the named interfaces and the ones they extend, each
// once. Unknown interfaces are skipped; the linker reports them.
func (v *validator) interfaces(names []*syntax.Name) []*index.InterfaceEntry {
	var out []*index.InterfaceEntry
	seen := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		i := v.idx.FindInterface(name)
		if i == nil || seen[strings.ToLower(i.Name)] {
			return
		}
		seen[strings.ToLower(i.Name)] = true
		out = append(out, i)
		for _, e := range i.Extends {
			visit(e)
		}
	}
	for _, n := range names {
		visit(n.Value)
	}
	return out
}

func (v *validator) hasMethod(chain []string, method string) bool {
	for _, c := range chain {
		if m := v.idx.FindPou(c + "." + method); m != nil && m.Kind == syntax.Method && !m.Abstract {
			return true
		}
	}
	return false
}

// implementation checks the body of a POU.
func (v *validator) implementation(impl *syntax.Implementation) {
	span := syntax.SpanOf(impl)
	if impl.Kind == syntax.Class && len(impl.Body) > 0 {
		v.errorf(diag.CodeClassImpl, span, "A class cannot have an implementation")
	}
	if impl.Linkage == syntax.ExternalLinkage || impl.Kind != syntax.Action {
		return
	}
	i := strings.LastIndexByte(impl.Name, '.')
	if i <= 0 || v.idx.FindPou(impl.Name[:i]) == nil {
		v.errorf(diag.CodeMissingAction, span, "Missing Actions Container Name")
	}
}
