package types

// Predicates work on the structural Info of a type. Aliases and subranges
// must be resolved by the caller (see index.IntrinsicType).

// IsInt reports whether i is an integer. Enums count as integers because
// they are represented by their numeric type.
func IsInt(i Info) bool {
	switch i.(type) {
	case *Integer, *Enum:
		return true
	}
	return false
}

// IsSignedInt reports whether i is a signed integer.
func IsSignedInt(i Info) bool {
	n, ok := i.(*Integer)
	return ok && n.Signed
}

// IsUnsignedInt reports whether i is an unsigned integer.
func IsUnsignedInt(i Info) bool {
	n, ok := i.(*Integer)
	return ok && !n.Signed
}

// IsFloat reports whether i is REAL or LREAL.
func IsFloat(i Info) bool {
	_, ok := i.(*Float)
	return ok
}

// IsNumerical reports whether i supports arithmetic.
func IsNumerical(i Info) bool {
	return IsInt(i) || IsFloat(i)
}

// IsBool reports whether i is the 1 bit BOOL integer.
func IsBool(i Info) bool {
	n, ok := i.(*Integer)
	return ok && n.Size == 1
}

// IsString reports whether i is STRING or WSTRING.
func IsString(i Info) bool {
	_, ok := i.(*String)
	return ok
}

// IsArray reports whether i is an array.
func IsArray(i Info) bool {
	_, ok := i.(*Array)
	return ok
}

// IsStruct reports whether i is a struct, including POU instance structs.
func IsStruct(i Info) bool {
	_, ok := i.(*Struct)
	return ok
}

// IsPointer reports whether i is a pointer.
func IsPointer(i Info) bool {
	_, ok := i.(*Pointer)
	return ok
}

// IsEnum reports whether i is an enum.
func IsEnum(i Info) bool {
	_, ok := i.(*Enum)
	return ok
}

// IsVoid reports whether i is VOID.
func IsVoid(i Info) bool {
	_, ok := i.(*Void)
	return ok
}

// IsAggregate reports whether values of i are passed around in memory
// rather than in registers.
func IsAggregate(i Info) bool {
	switch i.(type) {
	case *Struct, *Array, *String:
		return true
	}
	return false
}

// signedTypes maps unsigned and bit types to the signed integer of the
// same width.
var signedTypes = map[string]string{
	BYTE:  SINT,
	USINT: SINT,
	WORD:  INT,
	UINT:  INT,
	DWORD: DINT,
	UDINT: DINT,
	LWORD: LINT,
	ULINT: LINT,
}

// SignedType returns the name of the signed counterpart of the integer type
// t. Signed integers map to themselves. ok is false if t is no integer.
func SignedType(t *DataType) (name string, ok bool) {
	if t == nil || !IsInt(t.Info) {
		return "", false
	}
	if s, found := signedTypes[t.Name]; found {
		return s, true
	}
	return t.Name, true
}

// rank orders numeric types for BiggerType.
func rank(i Info) uint32 {
	switch t := i.(type) {
	case *Integer:
		if t.Signed {
			return t.Size + 1
		}
		return t.Size
	case *Float:
		return t.Size + 1000
	case *Enum:
		return 33 // DINT
	}
	return 0
}

// bitSize returns the width of a numeric type in bits.
func bitSize(i Info) uint32 {
	switch t := i.(type) {
	case *Integer:
		return t.Size
	case *Float:
		return t.Size
	case *Enum:
		return 32
	}
	return 0
}

// BiggerType returns the type an operation on l and r is computed in.
// Two integers or two floats yield the higher ranked of both, preferring l
// on ties. Mixing integers and floats yields REAL, or LREAL when one side
// is wider than 32 bits.
func BiggerType(l, r *DataType) *DataType {
	if (IsInt(l.Info) && IsInt(r.Info)) || (IsFloat(l.Info) && IsFloat(r.Info)) {
		if rank(l.Info) < rank(r.Info) {
			return r
		}
		return l
	}
	if bitSize(l.Info) > 32 || bitSize(r.Info) > 32 {
		return builtin(LREAL)
	}
	return builtin(REAL)
}

func builtin(name string) *DataType {
	for _, t := range universe {
		if t.Name == name {
			c := *t
			return &c
		}
	}
	return nil
}
