package index

import (
	"go/constant"
	"go/token"
	"strings"

	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// maxConstDepth bounds the chain of constants referring to constants.
const maxConstDepth = 32

// ConstInt evaluates e as a constant integer. Names are looked up as
// constant members of scope, then as constant globals and enum elements.
func (idx *Index) ConstInt(e syntax.Expr, scope string) (int64, bool) {
	v := idx.ConstValue(e, scope)
	if v.Kind() != constant.Int {
		return 0, false
	}
	return constant.Int64Val(v)
}

// ConstValue evaluates e as a constant expression. The result has kind
// constant.Unknown if e is not constant.
func (idx *Index) ConstValue(e syntax.Expr, scope string) constant.Value {
	return idx.eval(e, scope, 0)
}

func (idx *Index) eval(e syntax.Expr, scope string, depth int) constant.Value {
	unknown := constant.MakeUnknown()
	if e == nil || depth > maxConstDepth {
		return unknown
	}

	switch e := e.(type) {
	case *syntax.BasicLit:
		return literalValue(e)

	case *syntax.Name:
		return idx.evalVariable(idx.constantNamed(scope, e.Value), depth)

	case *syntax.MemberExpr:
		if x, ok := e.X.(*syntax.Name); ok {
			if v := idx.FindEnumElement(x.Value, e.Sel.Value); v != nil {
				return idx.evalVariable(v, depth)
			}
			if v := idx.FindMember(x.Value, e.Sel.Value); v != nil && v.Constant {
				return idx.evalVariable(v, depth)
			}
		}
		return unknown

	case *syntax.CastExpr:
		if t := idx.FindEffectiveType(e.Type.Value); t != nil {
			if _, ok := t.Info.(*types.Enum); ok {
				if n, ok := e.X.(*syntax.Name); ok {
					return idx.evalVariable(idx.FindEnumElement(t.Name, n.Value), depth)
				}
			}
		}
		return idx.eval(e.X, scope, depth+1)

	case *syntax.Operation:
		x := idx.eval(e.X, scope, depth+1)
		if x.Kind() == constant.Unknown {
			return unknown
		}
		if e.Y == nil {
			return unaryOp(e.Op, x)
		}
		y := idx.eval(e.Y, scope, depth+1)
		if y.Kind() == constant.Unknown {
			return unknown
		}
		return binaryOp(e.Op, x, y)
	}
	return unknown
}

func (idx *Index) constantNamed(scope, name string) *VariableEntry {
	if scope != "" {
		if v := idx.FindMember(scope, name); v != nil {
			if v.Constant {
				return v
			}
			return nil
		}
	}
	if v := idx.FindGlobalVariable(name); v != nil && v.Constant {
		return v
	}
	return nil
}

func (idx *Index) evalVariable(v *VariableEntry, depth int) constant.Value {
	if v == nil || v.Init == nil {
		return constant.MakeUnknown()
	}
	scope := ""
	if i := strings.LastIndexByte(v.QualifiedName, '.'); i >= 0 {
		scope = v.QualifiedName[:i]
	}
	return idx.eval(v.Init, scope, depth+1)
}

// literalValue converts a literal. Integers may carry a base (16#FF), a
// type prefix (INT#5) and underscores (1_000).
func literalValue(lit *syntax.BasicLit) constant.Value {
	switch lit.Kind {
	case syntax.IntLit:
		return intLiteral(lit.Value)
	case syntax.RealLit:
		s := strings.ReplaceAll(lit.Value, "_", "")
		if i := strings.LastIndexByte(s, '#'); i >= 0 {
			s = s[i+1:]
		}
		return constant.MakeFromLiteral(s, token.FLOAT, 0)
	case syntax.BoolLit:
		return constant.MakeBool(strings.EqualFold(lit.Value, "TRUE"))
	case syntax.StringLit, syntax.WStringLit:
		return constant.MakeString(lit.Value)
	}
	return constant.MakeUnknown()
}

func intLiteral(s string) constant.Value {
	s = strings.ReplaceAll(s, "_", "")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")

	parts := strings.Split(s, "#")
	prefix := ""
	switch len(parts) {
	case 1:
	case 2:
		if base := basePrefix(parts[0]); base != "" {
			prefix = base
		}
		s = parts[1]
	case 3:
		prefix = basePrefix(parts[1])
		s = parts[2]
	default:
		return constant.MakeUnknown()
	}
	if strings.EqualFold(s, "TRUE") {
		s = "1"
	} else if strings.EqualFold(s, "FALSE") {
		s = "0"
	}
	v := constant.MakeFromLiteral(prefix+s, token.INT, 0)
	if neg && v.Kind() == constant.Int {
		v = constant.UnaryOp(token.SUB, v, 0)
	}
	return v
}

func basePrefix(base string) string {
	switch base {
	case "2":
		return "0b"
	case "8":
		return "0o"
	case "16":
		return "0x"
	}
	return ""
}

func unaryOp(op syntax.Operator, x constant.Value) constant.Value {
	switch op {
	case syntax.OpSub:
		if x.Kind() == constant.Int || x.Kind() == constant.Float {
			return constant.UnaryOp(token.SUB, x, 0)
		}
	case syntax.OpNot:
		switch x.Kind() {
		case constant.Bool:
			return constant.UnaryOp(token.NOT, x, 0)
		case constant.Int:
			return constant.UnaryOp(token.XOR, x, 0)
		}
	}
	return constant.MakeUnknown()
}

var arithmetic = map[syntax.Operator]token.Token{
	syntax.OpAdd: token.ADD,
	syntax.OpSub: token.SUB,
	syntax.OpMul: token.MUL,
	syntax.OpDiv: token.QUO,
	syntax.OpMod: token.REM,
}

var comparisons = map[syntax.Operator]token.Token{
	syntax.OpEql: token.EQL,
	syntax.OpNeq: token.NEQ,
	syntax.OpLss: token.LSS,
	syntax.OpLeq: token.LEQ,
	syntax.OpGtr: token.GTR,
	syntax.OpGeq: token.GEQ,
}

func binaryOp(op syntax.Operator, x, y constant.Value) constant.Value {
	unknown := constant.MakeUnknown()

	if tok, ok := comparisons[op]; ok {
		if x.Kind() != y.Kind() && !(numeric(x) && numeric(y)) {
			return unknown
		}
		if x.Kind() == constant.Bool && y.Kind() == constant.Bool && tok != token.EQL && tok != token.NEQ {
			return unknown
		}
		return constant.MakeBool(constant.Compare(x, tok, y))
	}

	switch op {
	case syntax.OpAnd, syntax.OpOr, syntax.OpXor:
		if x.Kind() == constant.Bool && y.Kind() == constant.Bool {
			a, b := constant.BoolVal(x), constant.BoolVal(y)
			switch op {
			case syntax.OpAnd:
				return constant.MakeBool(a && b)
			case syntax.OpOr:
				return constant.MakeBool(a || b)
			}
			return constant.MakeBool(a != b)
		}
		if x.Kind() == constant.Int && y.Kind() == constant.Int {
			tok := map[syntax.Operator]token.Token{syntax.OpAnd: token.AND, syntax.OpOr: token.OR, syntax.OpXor: token.XOR}[op]
			return constant.BinaryOp(x, tok, y)
		}
		return unknown
	case syntax.OpPow:
		return power(x, y)
	}

	tok, ok := arithmetic[op]
	if !ok || !numeric(x) || !numeric(y) {
		return unknown
	}
	if (tok == token.QUO || tok == token.REM) && constant.Sign(y) == 0 {
		return unknown
	}
	if x.Kind() == constant.Int && y.Kind() == constant.Int {
		if tok == token.QUO {
			tok = token.QUO_ASSIGN // integer division
		}
		return constant.BinaryOp(x, tok, y)
	}
	if tok == token.REM {
		return unknown
	}
	return constant.BinaryOp(constant.ToFloat(x), tok, constant.ToFloat(y))
}

func power(x, y constant.Value) constant.Value {
	if x.Kind() != constant.Int || y.Kind() != constant.Int {
		return constant.MakeUnknown()
	}
	n, ok := constant.Int64Val(y)
	if !ok || n < 0 || n > 64 {
		return constant.MakeUnknown()
	}
	r := constant.MakeInt64(1)
	for i := int64(0); i < n; i++ {
		r = constant.BinaryOp(r, token.MUL, x)
	}
	return r
}

func numeric(v constant.Value) bool {
	return v.Kind() == constant.Int || v.Kind() == constant.Float
}
