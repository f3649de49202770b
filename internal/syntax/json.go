package syntax

import (
	"encoding/json"
	"fmt"
	"io"
)

// FprintJSON writes a JSON representation of the AST to w. The output of
// a CompilationUnit can be read back with ReadUnit.
func FprintJSON(w io.Writer, node Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(node))
}

// spanJSON adds the "pos" and "end" keys of n to m.
func spanJSON(m map[string]interface{}, n Node) map[string]interface{} {
	if p := n.Pos(); p.IsValid() {
		m["pos"] = fmt.Sprintf("%d:%d", p.Line(), p.Col())
	}
	if e := n.End(); e.IsValid() && e != n.Pos() {
		m["end"] = fmt.Sprintf("%d:%d", e.Line(), e.Col())
	}
	return m
}

func toJSON(node Node) interface{} {
	if isNil(node) {
		return nil
	}

	switch n := node.(type) {
	case *CompilationUnit:
		return map[string]interface{}{
			"globals":         mapSlice(n.GlobalVars, func(b *VarBlock) interface{} { return toJSON(b) }),
			"types":           mapSlice(n.UserTypes, func(t *UserType) interface{} { return toJSON(t) }),
			"interfaces":      mapSlice(n.Interfaces, func(i *Interface) interface{} { return toJSON(i) }),
			"pous":            mapSlice(n.Pous, func(p *Pou) interface{} { return toJSON(p) }),
			"implementations": mapSlice(n.Implementations, func(i *Implementation) interface{} { return toJSON(i) }),
		}

	case *Pou:
		m := map[string]interface{}{
			"kind":      n.Kind.String(),
			"name":      n.Name.Value,
			"varBlocks": mapSlice(n.VarBlocks, func(b *VarBlock) interface{} { return toJSON(b) }),
		}
		if n.Parent != "" {
			m["parent"] = n.Parent
		}
		if n.ReturnType != nil {
			m["returnType"] = typeRefJSON(n.ReturnType)
		}
		if n.Extends != nil {
			m["extends"] = n.Extends.Value
		}
		if len(n.Implements) > 0 {
			m["implements"] = mapSlice(n.Implements, func(i *Name) interface{} { return i.Value })
		}
		if n.Linkage != Internal {
			m["linkage"] = n.Linkage.String()
		}
		if n.Generic {
			m["generic"] = true
		}
		return spanJSON(m, n)

	case *Interface:
		return spanJSON(map[string]interface{}{
			"name":    n.Name.Value,
			"extends": mapSlice(n.Extends, func(e *Name) interface{} { return e.Value }),
			"methods": mapSlice(n.Methods, func(p *Pou) interface{} { return toJSON(p) }),
		}, n)

	case *Implementation:
		m := map[string]interface{}{
			"kind":     n.Kind.String(),
			"name":     n.Name,
			"typeName": n.TypeName,
			"body":     stmtsJSON(n.Body),
		}
		if n.Linkage != Internal {
			m["linkage"] = n.Linkage.String()
		}
		return spanJSON(m, n)

	case *VarBlock:
		m := map[string]interface{}{
			"kind": n.Kind.String(),
			"vars": mapSlice(n.Vars, func(v *Variable) interface{} { return toJSON(v) }),
		}
		if n.ByRef {
			m["byRef"] = true
		}
		if n.Constant {
			m["constant"] = true
		}
		if n.Retain {
			m["retain"] = true
		}
		return spanJSON(m, n)

	case *Variable:
		m := map[string]interface{}{
			"name": n.Name.Value,
			"type": typeRefJSON(n.Type),
		}
		if n.Init != nil {
			m["init"] = toJSON(n.Init)
		}
		if b := n.Binding; b != nil {
			m["at"] = spanJSON(map[string]interface{}{
				"direction": b.Direction.String(),
				"access":    b.Access.String(),
				"address":   exprsJSON(b.Address),
			}, b)
		}
		return spanJSON(m, n)

	case *UserType:
		m := map[string]interface{}{"type": toJSON(n.Def)}
		if n.Init != nil {
			m["init"] = toJSON(n.Init)
		}
		if n.Scope != "" {
			m["scope"] = n.Scope
		}
		return m

	case *StructType:
		return dataTypeJSON("struct", n, map[string]interface{}{
			"vars": mapSlice(n.Vars, func(v *Variable) interface{} { return toJSON(v) }),
		})

	case *EnumType:
		m := map[string]interface{}{
			"elements": mapSlice(n.Elements, func(e *EnumElement) interface{} {
				em := map[string]interface{}{"name": e.Name}
				if e.Value != nil {
					em["value"] = toJSON(e.Value)
				}
				return spanJSON(em, e)
			}),
		}
		if n.NumericType != "" {
			m["numericType"] = n.NumericType
		}
		return dataTypeJSON("enum", n, m)

	case *ArrayType:
		return dataTypeJSON("array", n, map[string]interface{}{
			"dims": mapSlice(n.Dims, func(d *Dimension) interface{} {
				return spanJSON(map[string]interface{}{
					"lower": toJSON(d.Lower),
					"upper": toJSON(d.Upper),
				}, d)
			}),
			"of": typeRefJSON(n.Elem),
		})

	case *SubRangeType:
		return dataTypeJSON("subrange", n, map[string]interface{}{
			"base":  n.Base,
			"lower": toJSON(n.Lower),
			"upper": toJSON(n.Upper),
		})

	case *PointerType:
		m := map[string]interface{}{"to": typeRefJSON(n.Target)}
		if n.AutoDeref {
			m["autoDeref"] = true
		}
		return dataTypeJSON("pointer", n, m)

	case *StringType:
		m := map[string]interface{}{}
		if n.Wide {
			m["wide"] = true
		}
		if n.Size != nil {
			m["size"] = toJSON(n.Size)
		}
		return dataTypeJSON("string", n, m)

	case *AliasType:
		return dataTypeJSON("alias", n, map[string]interface{}{"target": n.Target})

	case *AssignStmt:
		return spanJSON(map[string]interface{}{
			"kind": "assign",
			"lhs":  toJSON(n.LHS),
			"rhs":  toJSON(n.RHS),
		}, n)

	case *ExprStmt:
		return spanJSON(map[string]interface{}{"kind": "expr", "x": toJSON(n.X)}, n)

	case *IfStmt:
		return spanJSON(map[string]interface{}{
			"kind": "if",
			"cond": toJSON(n.Cond),
			"then": stmtsJSON(n.Then),
			"else": stmtsJSON(n.Else),
		}, n)

	case *CaseStmt:
		return spanJSON(map[string]interface{}{
			"kind":     "case",
			"selector": toJSON(n.Selector),
			"branches": mapSlice(n.Branches, func(b *CaseBranch) interface{} {
				return spanJSON(map[string]interface{}{
					"labels": exprsJSON(b.Labels),
					"body":   stmtsJSON(b.Body),
				}, b)
			}),
			"else": stmtsJSON(n.Else),
		}, n)

	case *ForStmt:
		m := map[string]interface{}{
			"kind":    "for",
			"counter": toJSON(n.Counter),
			"from":    toJSON(n.From),
			"to":      toJSON(n.To),
			"body":    stmtsJSON(n.Body),
		}
		if n.Step != nil {
			m["by"] = toJSON(n.Step)
		}
		return spanJSON(m, n)

	case *WhileStmt:
		return spanJSON(map[string]interface{}{
			"kind": "while",
			"cond": toJSON(n.Cond),
			"body": stmtsJSON(n.Body),
		}, n)

	case *RepeatStmt:
		return spanJSON(map[string]interface{}{
			"kind":  "repeat",
			"body":  stmtsJSON(n.Body),
			"until": toJSON(n.Cond),
		}, n)

	case *ReturnStmt:
		return spanJSON(map[string]interface{}{"kind": "return"}, n)

	case *ExitStmt:
		return spanJSON(map[string]interface{}{"kind": "exit"}, n)

	case *ContinueStmt:
		return spanJSON(map[string]interface{}{"kind": "continue"}, n)

	case *Name:
		return spanJSON(map[string]interface{}{"kind": "name", "name": n.Value}, n)

	case *BasicLit:
		return spanJSON(map[string]interface{}{
			"kind":  "literal",
			"type":  n.Kind.String(),
			"value": n.Value,
		}, n)

	case *Operation:
		m := map[string]interface{}{
			"kind": "op",
			"op":   n.Op.String(),
			"x":    toJSON(n.X),
		}
		if n.Y != nil {
			m["y"] = toJSON(n.Y)
		}
		return spanJSON(m, n)

	case *MemberExpr:
		return spanJSON(map[string]interface{}{
			"kind": "member",
			"x":    toJSON(n.X),
			"sel":  n.Sel.Value,
		}, n)

	case *IndexExpr:
		return spanJSON(map[string]interface{}{
			"kind":  "index",
			"x":     toJSON(n.X),
			"index": exprsJSON(n.Index),
		}, n)

	case *DerefExpr:
		return spanJSON(map[string]interface{}{"kind": "deref", "x": toJSON(n.X)}, n)

	case *CallExpr:
		return spanJSON(map[string]interface{}{
			"kind": "call",
			"fun":  toJSON(n.Fun),
			"args": exprsJSON(n.Args),
		}, n)

	case *NamedArg:
		m := map[string]interface{}{
			"kind":  "namedArg",
			"name":  n.Name.Value,
			"value": toJSON(n.Value),
		}
		if n.Output {
			m["output"] = true
		}
		return spanJSON(m, n)

	case *CastExpr:
		return spanJSON(map[string]interface{}{
			"kind": "cast",
			"type": n.Type.Value,
			"x":    toJSON(n.X),
		}, n)

	default:
		return map[string]interface{}{
			"kind": fmt.Sprintf("<%T>", node),
		}
	}
}

func dataTypeJSON(kind string, n DataType, m map[string]interface{}) interface{} {
	m["kind"] = kind
	if name := n.TypeName(); name != "" {
		m["name"] = name
	}
	return spanJSON(m, n)
}

func typeRefJSON(r *TypeRef) interface{} {
	if r == nil {
		return nil
	}
	if r.Def != nil {
		return toJSON(r.Def)
	}
	return r.Name
}

func stmtsJSON(list []Stmt) []interface{} {
	return mapSlice(list, func(s Stmt) interface{} { return toJSON(s) })
}

// mapSlice applies f to each element of slice and returns the results.
func mapSlice[T any](slice []T, f func(T) interface{}) []interface{} {
	result := make([]interface{}, len(slice))
	for i, v := range slice {
		result[i] = f(v)
	}
	return result
}

func exprsJSON(list []Expr) []interface{} {
	return mapSlice(list, func(e Expr) interface{} { return toJSON(e) })
}
