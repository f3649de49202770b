package indexer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/you-not-fish/stc/internal/index"
	"github.com/you-not-fish/stc/internal/syntax"
	"github.com/you-not-fish/stc/internal/types"
)

func indexSource(t *testing.T, src string) *index.Index {
	t.Helper()
	u, err := syntax.ReadUnit("test.st", strings.NewReader(src))
	if err != nil {
		t.Fatalf("ReadUnit error: %v", err)
	}
	return Index(u)
}

func TestGlobals(t *testing.T) {
	idx := indexSource(t, `{
  "globals": [
    {"kind": "Global", "constant": true, "vars": [
      {"name": "MAX", "type": "INT", "init": 10}
    ]},
    {"kind": "Global", "vars": [
      {"name": "buf", "type": {"kind": "array", "dims": [{"lower": 1, "upper": "MAX"}], "of": "BYTE"}},
      {"name": "lamp", "type": "BOOL", "at": {"direction": "Output", "access": "Bit", "address": [0, 1]}}
    ]},
    {"kind": "External", "vars": [{"name": "ext", "type": "DINT"}]}
  ]
}`)

	limit := idx.FindGlobalVariable("max")
	if limit == nil || !limit.Constant || limit.VariableType() != index.Global {
		t.Fatalf("MAX = %v", limit)
	}
	buf := idx.FindGlobalVariable("buf")
	if buf == nil || buf.TypeName != "__global_buf" {
		t.Fatalf("buf = %v", buf)
	}
	arr, ok := idx.FindType("__global_buf").Info.(*types.Array)
	if !ok {
		t.Fatalf("__global_buf is not an array")
	}
	if d := arr.Dims[0]; !d.Resolved || d.Start != 1 || d.End != 10 {
		t.Errorf("dims = %v, want 1..10", arr.Dims)
	}
	if lamp := idx.FindGlobalVariable("lamp"); lamp.Binding == nil || lamp.Binding.Direction != syntax.DirOutput {
		t.Errorf("lamp binding = %+v", lamp.Binding)
	}
	if ext := idx.FindGlobalVariable("ext"); !ext.IsExternal() {
		t.Errorf("ext linkage = %s", ext.Linkage)
	}
}

const motorUnit = `{
  "pous": [
    {"kind": "FunctionBlock", "name": "Motor", "pos": "1:1", "varBlocks": [
      {"kind": "Input", "vars": [{"name": "speed", "type": "INT"}]},
      {"kind": "Input", "byRef": true, "vars": [{"name": "cfg", "type": "DINT"}]},
      {"kind": "Output", "vars": [{"name": "running", "type": "BOOL"}]},
      {"kind": "InOut", "vars": [{"name": "shared", "type": "INT"}]},
      {"kind": "Local", "vars": [{"name": "hist", "type": {"kind": "array", "dims": [{"lower": 0, "upper": 3}], "of": "INT"}}]}
    ]},
    {"kind": "Action", "name": "stop", "parent": "Motor", "pos": "10:1"},
    {"kind": "Function", "name": "Scale", "pos": "12:1", "returnType": "REAL", "varBlocks": [
      {"kind": "Input", "vars": [{"name": "x", "type": "REAL"}]},
      {"kind": "Output", "vars": [{"name": "clipped", "type": "BOOL"}]}
    ]},
    {"kind": "Function", "name": "Log", "pos": "20:1", "varBlocks": []},
    {"kind": "Program", "name": "Main", "pos": "30:1", "varBlocks": [
      {"kind": "Local", "vars": [{"name": "m", "type": "Motor"}]}
    ]},
    {"kind": "Class", "name": "Counter", "pos": "40:1", "varBlocks": [
      {"kind": "Local", "vars": [{"name": "n", "type": "DINT"}]}
    ]},
    {"kind": "Method", "name": "inc", "parent": "Counter", "pos": "45:1", "returnType": "DINT"}
  ],
  "implementations": [
    {"kind": "FunctionBlock", "name": "Motor"},
    {"kind": "Action", "name": "Motor.stop", "typeName": "Motor"},
    {"kind": "Method", "name": "Counter.inc", "typeName": "Counter"}
  ]
}`

func TestPouMembers(t *testing.T) {
	idx := indexSource(t, motorUnit)

	tests := []struct {
		container, name string
		arg             string
		typ             string
		location        uint32
	}{
		{"Motor", "speed", "ByVal(Input)", "INT", 0},
		{"Motor", "cfg", "ByRef(Input)", "__auto_pointer_to_DINT", 1},
		{"Motor", "running", "ByVal(Output)", "BOOL", 2},
		{"Motor", "shared", "ByRef(InOut)", "__auto_pointer_to_INT", 3},
		{"Motor", "hist", "ByVal(Local)", "__Motor_hist", 4},
		{"Scale", "x", "ByVal(Input)", "REAL", 0},
		{"Scale", "clipped", "ByRef(Output)", "__auto_pointer_to_BOOL", 1},
		{"Scale", "Scale", "ByVal(Return)", "REAL", 2},
		{"Log", "Log", "ByVal(Return)", "VOID", 0},
		{"Counter.inc", "inc", "ByVal(Return)", "DINT", 0},
	}
	for _, tt := range tests {
		m := idx.FindMember(tt.container, tt.name)
		if m == nil {
			t.Errorf("%s.%s not indexed", tt.container, tt.name)
			continue
		}
		if got := m.Argument.String(); got != tt.arg {
			t.Errorf("%s.%s argument = %s, want %s", tt.container, tt.name, got, tt.arg)
		}
		if m.TypeName != tt.typ {
			t.Errorf("%s.%s type = %s, want %s", tt.container, tt.name, m.TypeName, tt.typ)
		}
		if m.Location != tt.location {
			t.Errorf("%s.%s location = %d, want %d", tt.container, tt.name, m.Location, tt.location)
		}
	}

	ptr, ok := idx.FindType("__auto_pointer_to_INT").Info.(*types.Pointer)
	if !ok || !ptr.AutoDeref || ptr.Inner != "INT" {
		t.Errorf("auto pointer = %v", idx.FindType("__auto_pointer_to_INT"))
	}
}

func TestPouEntries(t *testing.T) {
	idx := indexSource(t, motorUnit)

	stop := idx.FindPou("Motor.stop")
	if stop == nil || stop.Kind != syntax.Action || stop.Container() != "Motor" || stop.InstanceStruct != "Motor" {
		t.Errorf("Motor.stop = %+v", stop)
	}
	if inc := idx.FindPou("counter.INC"); inc == nil || inc.ReturnType != "DINT" || inc.Parent != "Counter" {
		t.Errorf("Counter.inc = %+v", inc)
	}

	main := idx.FindPou("Main")
	if main.InstanceVariable == nil || main.InstanceVariable.Name != "Main_instance" || main.InstanceVariable.QualifiedName != "Main" {
		t.Fatalf("Main instance = %+v", main.InstanceVariable)
	}
	if got := idx.ProgramInstances(); len(got) != 1 {
		t.Errorf("ProgramInstances() = %v", got)
	}

	st, ok := idx.FindPouType("Motor").Info.(*types.Struct)
	if !ok || !st.FromPou || st.PouKind != syntax.FunctionBlock || st.NumFields() != 5 {
		t.Errorf("Motor struct = %v", idx.FindPouType("Motor"))
	}
	if idx.FindPouType("Motor.stop") != nil {
		t.Error("actions must not get an instance struct")
	}

	for _, name := range []string{"__Motor__init", "__Counter__init"} {
		if g := idx.FindGlobalInitializer(name); g == nil || !g.Constant {
			t.Errorf("initializer %s = %v", name, g)
		}
	}
	if idx.FindGlobalInitializer("__Main__init") != nil {
		t.Error("programs get no initializer")
	}

	impl := idx.FindImplementationByName("motor.stop")
	if impl == nil || impl.AssociatedClass != "Motor" || impl.TypeName != "Motor" {
		t.Errorf("Motor.stop implementation = %+v", impl)
	}
	if impl := idx.FindImplementationByName("Motor"); impl.AssociatedClass != "" {
		t.Errorf("Motor implementation associated with %q", impl.AssociatedClass)
	}
}

func TestUserTypes(t *testing.T) {
	idx := indexSource(t, `{
  "types": [
    {"type": {"kind": "struct", "name": "Point", "vars": [
      {"name": "x", "type": "REAL"},
      {"name": "tags", "type": {"kind": "string", "size": 10}}
    ]}, "init": {"kind": "name", "name": "origin"}},
    {"type": {"kind": "enum", "name": "Color", "elements": ["red", {"name": "green", "value": 5}, "blue"]}},
    {"type": {"kind": "enum", "name": "Small", "numericType": "SINT", "elements": ["a"]}},
    {"type": {"kind": "subrange", "name": "Percent", "base": "INT", "lower": 0, "upper": 100}},
    {"type": {"kind": "pointer", "name": "PPoint", "to": "Point"}},
    {"type": {"kind": "string", "name": "Name", "wide": true}},
    {"type": {"kind": "alias", "name": "Meters", "target": "LREAL"}},
    {"type": {"kind": "array", "name": "Grid", "dims": [{"lower": 0, "upper": 1}, {"lower": 0, "upper": 2}],
      "of": {"kind": "array", "dims": [{"lower": 1, "upper": 2}], "of": "INT"}}}
  ]
}`)

	if m := idx.FindMember("Point", "x"); m == nil || m.Argument.String() != "ByVal(Input)" {
		t.Errorf("Point.x = %v", m)
	}
	if m := idx.FindMember("Point", "tags"); m == nil || m.TypeName != "__Point_tags" || m.Location != 1 {
		t.Errorf("Point.tags = %v", m)
	}
	if s, ok := idx.FindType("__Point_tags").Info.(*types.String); !ok || s.Size != 11 {
		t.Errorf("__Point_tags = %v", idx.FindType("__Point_tags"))
	}
	if g := idx.FindGlobalInitializer("__Point__init"); g == nil || g.Init == nil {
		t.Errorf("Point initializer = %v", g)
	}

	values := map[string]int64{"red": 0, "green": 5, "blue": 6}
	for name, want := range values {
		el := idx.FindEnumElement("Color", name)
		if el == nil {
			t.Errorf("Color.%s not indexed", name)
			continue
		}
		if got, ok := idx.ConstInt(el.Init, ""); !ok || got != want {
			t.Errorf("Color.%s = %d, %v, want %d", name, got, ok, want)
		}
	}
	if el := idx.FindGlobalVariable("blue"); el == nil || el.TypeName != "Color" {
		t.Errorf("blue as global = %v", el)
	}
	if got := idx.FindType("Color").Info.(*types.Enum).Referenced; got != "DINT" {
		t.Errorf("Color numeric type = %s, want DINT", got)
	}
	if got := idx.FindType("Small").Info.(*types.Enum).Referenced; got != "SINT" {
		t.Errorf("Small numeric type = %s, want SINT", got)
	}

	sr := idx.FindType("Percent")
	if info := sr.Info.(*types.SubRange); !info.Resolved || info.End != 100 || sr.Nature != types.Signed {
		t.Errorf("Percent = %v nature %s", info, sr.Nature)
	}
	if p := idx.FindType("PPoint").Info.(*types.Pointer); p.Inner != "Point" || p.AutoDeref {
		t.Errorf("PPoint = %v", p)
	}
	if s := idx.FindType("Name").Info.(*types.String); s.Size != 81 || s.Encoding != types.UTF16 {
		t.Errorf("Name = %v", s)
	}
	if a := idx.FindType("Meters").Info.(*types.Alias); a.Referenced != "LREAL" {
		t.Errorf("Meters = %v", a)
	}

	grid := idx.FindType("Grid").Info.(*types.Array)
	if grid.Inner != "__Grid_" || len(grid.Dims) != 2 {
		t.Fatalf("Grid = %v", grid)
	}
	if inner := idx.FindType("__Grid_").Info.(*types.Array); inner.Inner != "INT" {
		t.Errorf("__Grid_ = %v", inner)
	}
}

func TestResolveConstants(t *testing.T) {
	consts := indexSource(t, `{"globals": [{"kind": "Global", "constant": true, "vars": [{"name": "N", "type": "INT", "init": 4}]}]}`)
	user := indexSource(t, `{"types": [
    {"type": {"kind": "array", "name": "Buf", "dims": [{"lower": 0, "upper": {"kind": "op", "op": "-", "x": "N", "y": 1}}], "of": "BYTE"}},
    {"type": {"kind": "array", "name": "Open", "dims": [{"lower": 0, "upper": "M"}], "of": "BYTE"}}
  ]}`)
	if user.FindType("Buf").Info.(*types.Array).Dims[0].Resolved {
		t.Fatal("N resolved before merging")
	}

	idx := index.New()
	idx.Import(consts)
	idx.Import(user)
	unresolved := ResolveConstants(idx)

	d := idx.FindType("Buf").Info.(*types.Array).Dims[0]
	if !d.Resolved || d.Start != 0 || d.End != 3 {
		t.Errorf("Buf dim = %+v", d)
	}
	if len(unresolved) != 1 || unresolved[0].Name != "Open" {
		t.Errorf("unresolved = %v", unresolved)
	}
}

func TestInterfaces(t *testing.T) {
	idx := indexSource(t, `{
  "interfaces": [
    {"name": "IRun", "extends": ["IBase"], "methods": [
      {"kind": "Method", "name": "run", "returnType": "BOOL", "varBlocks": [
        {"kind": "Input", "vars": [{"name": "speed", "type": "INT"}]}
      ]}
    ]}
  ]
}`)

	i := idx.FindInterface("irun")
	if i == nil || !reflect.DeepEqual(i.Extends, []string{"IBase"}) || !reflect.DeepEqual(i.Methods, []string{"IRun.run"}) {
		t.Fatalf("IRun = %+v", i)
	}
	m := idx.FindPou("IRun.run")
	if m == nil || !m.Abstract || m.Parent != "IRun" {
		t.Errorf("IRun.run = %+v", m)
	}
	if p := idx.FindMember("IRun.run", "speed"); p == nil {
		t.Error("IRun.run.speed not indexed")
	}
}

func TestBuiltins(t *testing.T) {
	idx := Builtins()

	for _, name := range []string{"ADR", "REF", "MUX", "SEL", "MOVE", "SIZEOF", "LOWER_BOUND", "UPPER_BOUND"} {
		p := idx.FindPou(name)
		if p == nil {
			t.Errorf("%s missing", name)
			continue
		}
		if !p.Generated || p.Linkage != syntax.BuiltIn || !p.IsGeneric() {
			t.Errorf("%s = %+v", name, p)
		}
	}
	if idx.FindType("DINT") == nil || idx.FindType("wstring") == nil {
		t.Error("builtin types missing")
	}

	if g, ok := idx.FindType("__MUX__U").Info.(*types.Generic); !ok || g.Nature != types.Any {
		t.Errorf("__MUX__U = %v", idx.FindType("__MUX__U"))
	}
	mux := idx.FindPou("MUX")
	if !mux.Variadic {
		t.Error("MUX is not variadic")
	}
	if va := idx.VariadicMember("MUX"); va == nil || !va.Varargs.Sized || va.TypeName != "__MUX__U" {
		t.Errorf("MUX variadic = %v", va)
	}
	if got := len(idx.DeclaredParameters("MUX")); got != 1 {
		t.Errorf("MUX has %d declared parameters, want 1", got)
	}

	if r := idx.FindReturnType("REF"); r == nil || r.Info.(*types.Pointer).Inner != "__REF__U" {
		t.Errorf("REF returns %v", r)
	}
	if r := idx.FindReturnType("ADR"); r == nil || r.Name != "LWORD" {
		t.Errorf("ADR returns %v", r)
	}
	arr := idx.FindMember("LOWER_BOUND", "arr")
	if arr == nil || !arr.Argument.ByRef || arr.VariableType() != index.InOut {
		t.Errorf("LOWER_BOUND.arr = %v", arr)
	}
	if dim := idx.FindType("__LOWER_BOUND__T"); dim == nil || dim.Nature != types.Int {
		t.Errorf("__LOWER_BOUND__T = %v", dim)
	}
}
