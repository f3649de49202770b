package types

import "testing"

func TestPredicates(t *testing.T) {
	enum := &Enum{Referenced: DINT, Elements: []string{"a"}}
	tests := []struct {
		name string
		info Info
		pred func(Info) bool
		want bool
	}{
		{"int is int", &Integer{Signed: true, Size: 16}, IsInt, true},
		{"enum is int", enum, IsInt, true},
		{"enum is numerical", enum, IsNumerical, true},
		{"float is numerical", &Float{Size: 32}, IsNumerical, true},
		{"string is not numerical", &String{Size: 81}, IsNumerical, false},
		{"bool", &Integer{Signed: true, Size: 1}, IsBool, true},
		{"byte is not bool", &Integer{Size: 8}, IsBool, false},
		{"unsigned", &Integer{Size: 8}, IsUnsignedInt, true},
		{"signed", &Integer{Signed: true, Size: 8}, IsSignedInt, true},
		{"struct aggregate", &Struct{}, IsAggregate, true},
		{"array aggregate", &Array{Inner: INT}, IsAggregate, true},
		{"string aggregate", &String{Size: 81}, IsAggregate, true},
		{"pointer not aggregate", &Pointer{Inner: INT}, IsAggregate, false},
		{"pointer", &Pointer{Inner: INT}, IsPointer, true},
		{"enum", enum, IsEnum, true},
		{"void", &Void{}, IsVoid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.info); got != tt.want {
				t.Errorf("predicate(%s) = %v, want %v", tt.info, got, tt.want)
			}
		})
	}
}

func TestSignedType(t *testing.T) {
	tests := []struct{ in, want string }{
		{BYTE, SINT},
		{USINT, SINT},
		{WORD, INT},
		{UINT, INT},
		{DWORD, DINT},
		{UDINT, DINT},
		{LWORD, LINT},
		{ULINT, LINT},
		{INT, INT},
		{LINT, LINT},
	}
	for _, tt := range tests {
		got, ok := SignedType(findBuiltin(t, tt.in))
		if !ok || got != tt.want {
			t.Errorf("SignedType(%s) = %q, %v, want %q", tt.in, got, ok, tt.want)
		}
	}

	if _, ok := SignedType(findBuiltin(t, STRING)); ok {
		t.Error("SignedType(STRING) succeeded")
	}
}

func TestBiggerType(t *testing.T) {
	tests := []struct{ l, r, want string }{
		{INT, DINT, DINT},
		{DINT, INT, DINT},
		{UINT, INT, INT},
		{INT, UINT, INT},
		{SINT, USINT, SINT},
		{REAL, LREAL, LREAL},
		{LREAL, REAL, LREAL},
		{INT, REAL, REAL},
		{DINT, REAL, REAL},
		{LINT, REAL, LREAL},
		{REAL, ULINT, LREAL},
	}
	for _, tt := range tests {
		got := BiggerType(findBuiltin(t, tt.l), findBuiltin(t, tt.r))
		if got.Name != tt.want {
			t.Errorf("BiggerType(%s, %s) = %s, want %s", tt.l, tt.r, got.Name, tt.want)
		}
	}
}
