package indexer

import (
	"strings"

	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

// defaultEnumType is the numeric type of enums that declare none.
const defaultEnumType = types.DINT

var builtinNatures = func() map[string]types.Nature {
	m := make(map[string]types.Nature)
	for _, t := range types.Builtins() {
		m[strings.ToUpper(t.Name)] = t.Nature
	}
	return m
}()

// natureOf returns the nature of the builtin type name, or Derived.
func natureOf(name string) types.Nature {
	if n, ok := builtinNatures[strings.ToUpper(name)]; ok {
		return n
	}
	return types.Derived
}

func (ix *indexer) userType(t *syntax.UserType) {
	ix.dataType(t.Def, t.Def.TypeName(), t.Init, t.Scope)
}

// dataType indexes the definition def under name. init is the declared
// initial value of the type, scope the POU it was declared in.
func (ix *indexer) dataType(def syntax.DataType, name string, init syntax.Expr, scope string) {
	dt := &types.DataType{Name: name, InitialValue: init, Pos: def.Pos()}

	switch def := def.(type) {
	case *syntax.StructType:
		var fields []types.Field
		for i, v := range def.Vars {
			typeName := ix.typeRef(v.Type, inlineName(name, v.Name.Value), scope)
			ix.idx.RegisterMember(name, &index.VariableEntry{
				Name:          v.Name.Value,
				QualifiedName: name + "." + v.Name.Value,
				Init:          v.Init,
				Argument:      index.ByVal(index.Input),
				TypeName:      typeName,
				Location:      uint32(i),
				Binding:       v.Binding,
				Span:          syntax.SpanOf(v),
			})
			fields = append(fields, types.Field{Name: v.Name.Value, TypeName: typeName})
		}
		dt.Info = &types.Struct{Fields: fields}
		dt.Nature = types.Derived
		ix.initializer(name, init, syntax.SpanOf(def))

	case *syntax.EnumType:
		numeric := def.NumericType
		if numeric == "" {
			numeric = defaultEnumType
		}
		var elements []string
		var prev string
		for i, el := range def.Elements {
			value := el.Value
			if value == nil {
				value = implicitEnumValue(name, prev, i, el.Pos())
			}
			e := index.NewGlobal(el.Name, name+"."+el.Name, name, syntax.SpanOf(el))
			e.Constant = true
			e.Init = value
			ix.idx.RegisterEnumElement(e)
			elements = append(elements, el.Name)
			prev = el.Name
		}
		dt.Info = &types.Enum{Referenced: numeric, Elements: elements}
		dt.Nature = types.Int

	case *syntax.ArrayType:
		inner := ix.typeRef(def.Elem, nestedName(name), scope)
		dims := make([]types.Dim, len(def.Dims))
		for i, d := range def.Dims {
			dims[i] = types.Dim{StartExpr: d.Lower, EndExpr: d.Upper}
			dims[i].Start, dims[i].End, dims[i].Resolved = ix.bounds(d.Lower, d.Upper, scope)
		}
		dt.Info = &types.Array{Inner: inner, Dims: dims, Scope: scope}
		dt.Nature = types.Any
		if init != nil {
			ix.initializer(name, init, syntax.SpanOf(def))
		}

	case *syntax.SubRangeType:
		sr := &types.SubRange{Referenced: def.Base, StartExpr: def.Lower, EndExpr: def.Upper, Scope: scope}
		sr.Start, sr.End, sr.Resolved = ix.bounds(def.Lower, def.Upper, scope)
		dt.Info = sr
		dt.Nature = natureOf(def.Base)

	case *syntax.PointerType:
		inner := ix.typeRef(def.Target, nestedName(name), scope)
		dt.Info = &types.Pointer{Inner: inner, AutoDeref: def.AutoDeref}
		dt.Nature = types.Any

	case *syntax.StringType:
		length := int64(types.DefaultStringLen)
		if def.Size != nil {
			if n, ok := ix.idx.ConstInt(def.Size, scope); ok && n > 0 {
				length = n
			}
		}
		enc := types.UTF8
		if def.Wide {
			enc = types.UTF16
		}
		dt.Info = types.NewStringInfo(length, enc)
		dt.Nature = types.StringNature
		if init != nil {
			ix.initializer(name, init, syntax.SpanOf(def))
		}

	case *syntax.AliasType:
		dt.Info = &types.Alias{Referenced: def.Target}
		dt.Nature = natureOf(def.Target)

	default:
		return
	}
	ix.idx.RegisterType(dt)
}

// implicitEnumValue returns the value of the i-th element when it declares
// none: zero for the first element, the previous element plus one after.
func implicitEnumValue(enum, prev string, i int, pos syntax.Pos) syntax.Expr {
	if i == 0 {
		return literal("0", pos)
	}
	cast := &syntax.CastExpr{Type: syntax.NewName(enum, pos), X: syntax.NewName(prev, pos)}
	cast.SetSpan(pos, pos)
	op := &syntax.Operation{Op: syntax.OpAdd, X: cast, Y: literal("1", pos)}
	op.SetSpan(pos, pos)
	return op
}

func literal(value string, pos syntax.Pos) *syntax.BasicLit {
	lit := &syntax.BasicLit{Kind: syntax.IntLit, Value: value}
	lit.SetSpan(pos, pos)
	return lit
}

// bounds evaluates a constant range. Bounds referring to constants of other
// units stay unresolved until ResolveConstants runs on the merged index.
func (ix *indexer) bounds(start, end syntax.Expr, scope string) (int64, int64, bool) {
	s, ok1 := ix.idx.ConstInt(start, scope)
	e, ok2 := ix.idx.ConstInt(end, scope)
	if !ok1 || !ok2 {
		return 0, 0, false
	}
	return s, e, true
}

// ResolveConstants evaluates the array and subrange bounds that could not
// be evaluated while their unit was indexed alone. It returns the types
// whose bounds are still not constant.
func ResolveConstants(idx *index.Index) []*types.DataType {
	var unresolved []*types.DataType
	for _, dt := range idx.Types().Values() {
		switch info := dt.Info.(type) {
		case *types.Array:
			ok := true
			for i := range info.Dims {
				d := &info.Dims[i]
				if d.Resolved {
					continue
				}
				s, ok1 := idx.ConstInt(d.StartExpr, info.Scope)
				e, ok2 := idx.ConstInt(d.EndExpr, info.Scope)
				if ok1 && ok2 {
					d.Start, d.End, d.Resolved = s, e, true
				} else {
					ok = false
				}
			}
			if !ok {
				unresolved = append(unresolved, dt)
			}
		case *types.SubRange:
			if info.Resolved {
				continue
			}
			s, ok1 := idx.ConstInt(info.StartExpr, info.Scope)
			e, ok2 := idx.ConstInt(info.EndExpr, info.Scope)
			if ok1 && ok2 {
				info.Start, info.End, info.Resolved = s, e, true
			} else {
				unresolved = append(unresolved, dt)
			}
		}
	}
	return unresolved
}
