package syntax

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ReadUnit decodes the JSON encoding of a compilation unit from r.
//
// The encoding mirrors FprintJSON. Polymorphic objects carry a "kind" key;
// positions are "line:col" strings under "pos" and "end". As shorthand, a
// type reference may be a bare string naming the type, and an expression
// may be a bare string (a name), number or boolean (a literal).
func ReadUnit(filename string, r io.Reader) (*CompilationUnit, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
	}
	d := &decoder{filename: filename}
	u := d.unit(raw)
	if d.err != nil {
		return nil, d.err
	}
	return u, nil
}

// decoder converts generic JSON values into nodes. Only the first error is
// kept; later calls return zero values once it is set.
type decoder struct {
	filename string
	err      error
}

func (d *decoder) errorf(at Pos, format string, args ...interface{}) {
	if d.err != nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if at.IsValid() {
		d.err = fmt.Errorf("%s: %s", at, msg)
	} else {
		d.err = fmt.Errorf("%s: %s", d.filename, msg)
	}
}

// ----------------------------------------------------------------------------
// Generic value access

func (d *decoder) object(v interface{}, at Pos, what string) map[string]interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		d.errorf(at, "%s must be an object, got %s", what, jsonKind(v))
		return nil
	}
	return m
}

func (d *decoder) list(m map[string]interface{}, key string, at Pos) []interface{} {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	l, ok := v.([]interface{})
	if !ok {
		d.errorf(at, "%q must be an array, got %s", key, jsonKind(v))
		return nil
	}
	return l
}

func (d *decoder) str(m map[string]interface{}, key string, at Pos) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.errorf(at, "%q must be a string, got %s", key, jsonKind(v))
	}
	return s
}

func (d *decoder) required(m map[string]interface{}, key string, at Pos, what string) string {
	s := d.str(m, key, at)
	if s == "" {
		d.errorf(at, "%s is missing %q", what, key)
	}
	return s
}

func (d *decoder) flag(m map[string]interface{}, key string, at Pos) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.errorf(at, "%q must be a boolean, got %s", key, jsonKind(v))
	}
	return b
}

// span reads "pos" and "end", defaulting to outer for missing positions.
func (d *decoder) span(m map[string]interface{}, outer Pos) (Pos, Pos) {
	pos, end := outer, NoPos
	if s := d.str(m, "pos", outer); s != "" {
		p, err := ParsePos(d.filename, s)
		if err != nil {
			d.errorf(outer, "%v", err)
		}
		pos = p
	}
	if s := d.str(m, "end", pos); s != "" {
		e, err := ParsePos(d.filename, s)
		if err != nil {
			d.errorf(pos, "%v", err)
		}
		end = e
	}
	return pos, end
}

func (d *decoder) names(m map[string]interface{}, key string, at Pos) []*Name {
	var out []*Name
	for _, v := range d.list(m, key, at) {
		s, ok := v.(string)
		if !ok {
			d.errorf(at, "%q entries must be strings, got %s", key, jsonKind(v))
			continue
		}
		out = append(out, NewName(s, at))
	}
	return out
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}

// ----------------------------------------------------------------------------
// Declarations

func (d *decoder) unit(m map[string]interface{}) *CompilationUnit {
	u := &CompilationUnit{FileName: d.filename}
	u.pos = NewPos(d.filename, 1, 1)
	for _, v := range d.list(m, "globals", NoPos) {
		if b := d.varBlock(v, u.pos); b != nil {
			u.GlobalVars = append(u.GlobalVars, b)
		}
	}
	for _, v := range d.list(m, "types", NoPos) {
		if t := d.userType(v); t != nil {
			u.UserTypes = append(u.UserTypes, t)
		}
	}
	for _, v := range d.list(m, "interfaces", NoPos) {
		if i := d.iface(v); i != nil {
			u.Interfaces = append(u.Interfaces, i)
		}
	}
	for _, v := range d.list(m, "pous", NoPos) {
		if p := d.pou(v, NoPos); p != nil {
			u.Pous = append(u.Pous, p)
		}
	}
	for _, v := range d.list(m, "implementations", NoPos) {
		if i := d.implementation(v); i != nil {
			u.Implementations = append(u.Implementations, i)
		}
	}
	return u
}

func (d *decoder) pou(v interface{}, outer Pos) *Pou {
	m := d.object(v, outer, "pou")
	if m == nil {
		return nil
	}
	p := &Pou{}
	p.pos, p.end = d.span(m, outer)
	p.Name = NewName(d.required(m, "name", p.pos, "pou"), p.pos)
	kind, ok := lookupName[PouKind](pouKindNames[:], d.required(m, "kind", p.pos, "pou"))
	if !ok {
		d.errorf(p.pos, "unknown pou kind %q", m["kind"])
	}
	p.Kind = kind
	p.Parent = d.str(m, "parent", p.pos)
	p.Linkage = d.linkage(m, p.pos)
	p.Generic = d.flag(m, "generic", p.pos)
	for _, b := range d.list(m, "varBlocks", p.pos) {
		if vb := d.varBlock(b, p.pos); vb != nil {
			p.VarBlocks = append(p.VarBlocks, vb)
		}
	}
	if rt, ok := m["returnType"]; ok && rt != nil {
		p.ReturnType = d.typeRef(rt, p.pos)
	}
	if ext := d.str(m, "extends", p.pos); ext != "" {
		p.Extends = NewName(ext, p.pos)
	}
	p.Implements = d.names(m, "implements", p.pos)
	return p
}

func (d *decoder) iface(v interface{}) *Interface {
	m := d.object(v, NoPos, "interface")
	if m == nil {
		return nil
	}
	i := &Interface{}
	i.pos, i.end = d.span(m, NoPos)
	i.Name = NewName(d.required(m, "name", i.pos, "interface"), i.pos)
	i.Extends = d.names(m, "extends", i.pos)
	for _, mv := range d.list(m, "methods", i.pos) {
		if p := d.pou(mv, i.pos); p != nil {
			if p.Parent == "" {
				p.Parent = i.Name.Value
			}
			i.Methods = append(i.Methods, p)
		}
	}
	return i
}

func (d *decoder) implementation(v interface{}) *Implementation {
	m := d.object(v, NoPos, "implementation")
	if m == nil {
		return nil
	}
	impl := &Implementation{}
	impl.pos, impl.end = d.span(m, NoPos)
	impl.Name = d.required(m, "name", impl.pos, "implementation")
	impl.TypeName = d.str(m, "typeName", impl.pos)
	if impl.TypeName == "" {
		impl.TypeName = impl.Name
	}
	kind, ok := lookupName[PouKind](pouKindNames[:], d.required(m, "kind", impl.pos, "implementation"))
	if !ok {
		d.errorf(impl.pos, "unknown pou kind %q", m["kind"])
	}
	impl.Kind = kind
	impl.Linkage = d.linkage(m, impl.pos)
	impl.Body = d.stmts(m, "body", impl.pos)
	return impl
}

func (d *decoder) linkage(m map[string]interface{}, at Pos) Linkage {
	s := d.str(m, "linkage", at)
	if s == "" {
		return Internal
	}
	l, ok := lookupName[Linkage](linkageNames[:], s)
	if !ok {
		d.errorf(at, "unknown linkage %q", s)
	}
	return l
}

func (d *decoder) varBlock(v interface{}, outer Pos) *VarBlock {
	m := d.object(v, outer, "variable block")
	if m == nil {
		return nil
	}
	b := &VarBlock{}
	b.pos, b.end = d.span(m, outer)
	kind, ok := lookupName[VarBlockKind](varBlockKindNames[:], d.required(m, "kind", b.pos, "variable block"))
	if !ok {
		d.errorf(b.pos, "unknown variable block kind %q", m["kind"])
	}
	b.Kind = kind
	b.ByRef = d.flag(m, "byRef", b.pos)
	b.Constant = d.flag(m, "constant", b.pos)
	b.Retain = d.flag(m, "retain", b.pos)
	b.Vars = d.variables(m, "vars", b.pos)
	return b
}

func (d *decoder) variables(m map[string]interface{}, key string, at Pos) []*Variable {
	var out []*Variable
	for _, vv := range d.list(m, key, at) {
		if v := d.variable(vv, at); v != nil {
			out = append(out, v)
		}
	}
	return out
}

func (d *decoder) variable(v interface{}, outer Pos) *Variable {
	m := d.object(v, outer, "variable")
	if m == nil {
		return nil
	}
	vr := &Variable{}
	vr.pos, vr.end = d.span(m, outer)
	vr.Name = NewName(d.required(m, "name", vr.pos, "variable"), vr.pos)
	t, ok := m["type"]
	if !ok || t == nil {
		d.errorf(vr.pos, "variable %s has no type", vr.Name.Value)
		return nil
	}
	vr.Type = d.typeRef(t, vr.pos)
	vr.Init = d.optExpr(m, "init", vr.pos)
	if at, ok := m["at"]; ok && at != nil {
		vr.Binding = d.binding(at, vr.pos)
	}
	return vr
}

func (d *decoder) binding(v interface{}, outer Pos) *HardwareBinding {
	m := d.object(v, outer, "hardware binding")
	if m == nil {
		return nil
	}
	b := &HardwareBinding{}
	b.pos, b.end = d.span(m, outer)
	dir, ok := lookupName[Direction](directionNames[:], d.required(m, "direction", b.pos, "hardware binding"))
	if !ok {
		d.errorf(b.pos, "unknown direction %q", m["direction"])
	}
	b.Direction = dir
	acc, ok := lookupName[Access](accessNames[:], d.required(m, "access", b.pos, "hardware binding"))
	if !ok {
		d.errorf(b.pos, "unknown access %q", m["access"])
	}
	b.Access = acc
	b.Address = d.exprs(m, "address", b.pos)
	return b
}

func (d *decoder) userType(v interface{}) *UserType {
	m := d.object(v, NoPos, "type declaration")
	if m == nil {
		return nil
	}
	ut := &UserType{}
	ut.pos, ut.end = d.span(m, NoPos)
	tv, ok := m["type"]
	if !ok {
		d.errorf(ut.pos, "type declaration has no \"type\"")
		return nil
	}
	def := d.dataType(tv, ut.pos)
	if def == nil {
		return nil
	}
	if def.TypeName() == "" {
		d.errorf(def.Pos(), "type declaration has no name")
	}
	ut.Def = def
	if !ut.pos.IsValid() {
		ut.pos, ut.end = def.Pos(), def.End()
	}
	ut.Init = d.optExpr(m, "init", ut.pos)
	ut.Scope = d.str(m, "scope", ut.pos)
	return ut
}

// ----------------------------------------------------------------------------
// Data types

func (d *decoder) typeRef(v interface{}, outer Pos) *TypeRef {
	r := &TypeRef{}
	r.pos = outer
	switch t := v.(type) {
	case string:
		if t == "" {
			d.errorf(outer, "empty type name")
		}
		r.Name = t
	case map[string]interface{}:
		r.Def = d.dataType(t, outer)
		if r.Def != nil {
			r.pos, r.end = r.Def.Pos(), r.Def.End()
		}
	default:
		d.errorf(outer, "type must be a name or an object, got %s", jsonKind(v))
	}
	return r
}

func (d *decoder) dataType(v interface{}, outer Pos) DataType {
	m := d.object(v, outer, "data type")
	if m == nil {
		return nil
	}
	pos, end := d.span(m, outer)
	base := dataType{Name: d.str(m, "name", pos)}
	base.pos, base.end = pos, end

	switch kind := d.required(m, "kind", pos, "data type"); strings.ToLower(kind) {
	case "struct":
		return &StructType{dataType: base, Vars: d.variables(m, "vars", pos)}

	case "enum":
		t := &EnumType{dataType: base, NumericType: d.str(m, "numericType", pos)}
		for _, ev := range d.list(m, "elements", pos) {
			if el := d.enumElement(ev, pos); el != nil {
				t.Elements = append(t.Elements, el)
			}
		}
		return t

	case "array":
		t := &ArrayType{dataType: base}
		for _, dv := range d.list(m, "dims", pos) {
			dm := d.object(dv, pos, "array dimension")
			if dm == nil {
				continue
			}
			dim := &Dimension{}
			dim.pos, dim.end = d.span(dm, pos)
			dim.Lower = d.reqExpr(dm, "lower", dim.pos)
			dim.Upper = d.reqExpr(dm, "upper", dim.pos)
			t.Dims = append(t.Dims, dim)
		}
		if len(t.Dims) == 0 {
			d.errorf(pos, "array type has no dimensions")
		}
		of, ok := m["of"]
		if !ok {
			d.errorf(pos, "array type is missing \"of\"")
			return nil
		}
		t.Elem = d.typeRef(of, pos)
		return t

	case "subrange":
		return &SubRangeType{
			dataType: base,
			Base:     d.required(m, "base", pos, "subrange type"),
			Lower:    d.reqExpr(m, "lower", pos),
			Upper:    d.reqExpr(m, "upper", pos),
		}

	case "pointer":
		to, ok := m["to"]
		if !ok {
			d.errorf(pos, "pointer type is missing \"to\"")
			return nil
		}
		return &PointerType{
			dataType:  base,
			Target:    d.typeRef(to, pos),
			AutoDeref: d.flag(m, "autoDeref", pos),
		}

	case "string":
		return &StringType{
			dataType: base,
			Wide:     d.flag(m, "wide", pos),
			Size:     d.optExpr(m, "size", pos),
		}

	case "alias":
		return &AliasType{dataType: base, Target: d.required(m, "target", pos, "alias type")}

	default:
		d.errorf(pos, "unknown data type kind %q", kind)
		return nil
	}
}

func (d *decoder) enumElement(v interface{}, outer Pos) *EnumElement {
	if s, ok := v.(string); ok {
		el := &EnumElement{Name: s}
		el.pos = outer
		return el
	}
	m := d.object(v, outer, "enum element")
	if m == nil {
		return nil
	}
	el := &EnumElement{}
	el.pos, el.end = d.span(m, outer)
	el.Name = d.required(m, "name", el.pos, "enum element")
	el.Value = d.optExpr(m, "value", el.pos)
	return el
}

// ----------------------------------------------------------------------------
// Statements

func (d *decoder) stmts(m map[string]interface{}, key string, at Pos) []Stmt {
	var out []Stmt
	for _, sv := range d.list(m, key, at) {
		if s := d.stmt(sv, at); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (d *decoder) stmt(v interface{}, outer Pos) Stmt {
	m := d.object(v, outer, "statement")
	if m == nil {
		return nil
	}
	pos, end := d.span(m, outer)
	base := stmt{node{pos: pos, end: end}}

	switch kind := d.required(m, "kind", pos, "statement"); kind {
	case "assign":
		return &AssignStmt{stmt: base, LHS: d.reqExpr(m, "lhs", pos), RHS: d.reqExpr(m, "rhs", pos)}
	case "expr":
		return &ExprStmt{stmt: base, X: d.reqExpr(m, "x", pos)}
	case "if":
		return &IfStmt{
			stmt: base,
			Cond: d.reqExpr(m, "cond", pos),
			Then: d.stmts(m, "then", pos),
			Else: d.stmts(m, "else", pos),
		}
	case "case":
		s := &CaseStmt{stmt: base, Selector: d.reqExpr(m, "selector", pos), Else: d.stmts(m, "else", pos)}
		for _, bv := range d.list(m, "branches", pos) {
			bm := d.object(bv, pos, "case branch")
			if bm == nil {
				continue
			}
			b := &CaseBranch{}
			b.pos, b.end = d.span(bm, pos)
			b.Labels = d.exprs(bm, "labels", b.pos)
			b.Body = d.stmts(bm, "body", b.pos)
			s.Branches = append(s.Branches, b)
		}
		return s
	case "for":
		return &ForStmt{
			stmt:    base,
			Counter: d.reqExpr(m, "counter", pos),
			From:    d.reqExpr(m, "from", pos),
			To:      d.reqExpr(m, "to", pos),
			Step:    d.optExpr(m, "by", pos),
			Body:    d.stmts(m, "body", pos),
		}
	case "while":
		return &WhileStmt{stmt: base, Cond: d.reqExpr(m, "cond", pos), Body: d.stmts(m, "body", pos)}
	case "repeat":
		return &RepeatStmt{stmt: base, Body: d.stmts(m, "body", pos), Cond: d.reqExpr(m, "until", pos)}
	case "return":
		return &ReturnStmt{stmt: base}
	case "exit":
		return &ExitStmt{stmt: base}
	case "continue":
		return &ContinueStmt{stmt: base}
	default:
		d.errorf(pos, "unknown statement kind %q", kind)
		return nil
	}
}

// ----------------------------------------------------------------------------
// Expressions

func (d *decoder) exprs(m map[string]interface{}, key string, at Pos) []Expr {
	var out []Expr
	for _, ev := range d.list(m, key, at) {
		if e := d.expr(ev, at); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (d *decoder) optExpr(m map[string]interface{}, key string, at Pos) Expr {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	return d.expr(v, at)
}

func (d *decoder) reqExpr(m map[string]interface{}, key string, at Pos) Expr {
	v, ok := m[key]
	if !ok || v == nil {
		d.errorf(at, "missing expression %q", key)
		return nil
	}
	return d.expr(v, at)
}

func (d *decoder) expr(v interface{}, outer Pos) Expr {
	switch t := v.(type) {
	case string:
		return NewName(t, outer)
	case json.Number:
		lit := &BasicLit{Kind: IntLit, Value: t.String()}
		if strings.ContainsAny(t.String(), ".eE") {
			lit.Kind = RealLit
		}
		lit.pos = outer
		return lit
	case bool:
		lit := &BasicLit{Kind: BoolLit, Value: "FALSE"}
		if t {
			lit.Value = "TRUE"
		}
		lit.pos = outer
		return lit
	}

	m := d.object(v, outer, "expression")
	if m == nil {
		return nil
	}
	pos, end := d.span(m, outer)
	base := expr{node{pos: pos, end: end}}

	switch kind := d.required(m, "kind", pos, "expression"); kind {
	case "name":
		return &Name{expr: base, Value: d.required(m, "name", pos, "name")}
	case "member":
		selPos := end
		if !selPos.IsValid() {
			selPos = pos
		}
		return &MemberExpr{
			expr: base,
			X:    d.reqExpr(m, "x", pos),
			Sel:  NewName(d.required(m, "sel", pos, "member access"), selPos),
		}
	case "index":
		e := &IndexExpr{expr: base, X: d.reqExpr(m, "x", pos), Index: d.exprs(m, "index", pos)}
		if len(e.Index) == 0 {
			d.errorf(pos, "index expression without index")
		}
		return e
	case "deref":
		return &DerefExpr{expr: base, X: d.reqExpr(m, "x", pos)}
	case "call":
		return &CallExpr{expr: base, Fun: d.reqExpr(m, "fun", pos), Args: d.exprs(m, "args", pos)}
	case "namedArg":
		return &NamedArg{
			expr:   base,
			Name:   NewName(d.required(m, "name", pos, "named argument"), pos),
			Value:  d.reqExpr(m, "value", pos),
			Output: d.flag(m, "output", pos),
		}
	case "cast":
		return &CastExpr{
			expr: base,
			Type: NewName(d.required(m, "type", pos, "cast"), pos),
			X:    d.reqExpr(m, "x", pos),
		}
	case "literal":
		lk, ok := lookupName[LitKind](litKindNames[:], d.required(m, "type", pos, "literal"))
		if !ok {
			d.errorf(pos, "unknown literal type %q", m["type"])
		}
		return &BasicLit{expr: base, Kind: lk, Value: d.str(m, "value", pos)}
	case "op":
		op, ok := lookupName[Operator](operatorNames[:], d.required(m, "op", pos, "operation"))
		if !ok {
			d.errorf(pos, "unknown operator %q", m["op"])
		}
		return &Operation{expr: base, Op: op, X: d.reqExpr(m, "x", pos), Y: d.optExpr(m, "y", pos)}
	default:
		d.errorf(pos, "unknown expression kind %q", kind)
		return nil
	}
}
