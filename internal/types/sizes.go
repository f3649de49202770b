package types

// Lookup resolves type names. FindEffectiveType follows aliases and returns
// nil for unknown names.
type Lookup interface {
	FindEffectiveType(name string) *DataType
}

// PointerSize is the size and alignment of pointers in bytes.
const PointerSize = 8

// Sizes computes sizes and alignments of data types in bytes.
type Sizes struct {
	Types Lookup
}

// NewSizes returns a Sizes resolving type names through types.
func NewSizes(types Lookup) *Sizes {
	return &Sizes{Types: types}
}

// Sizeof returns the size of t in bytes. Unknown and recursive types have
// size 0.
func (s *Sizes) Sizeof(t *DataType) int64 {
	size, _ := s.layout(t, map[string]bool{})
	return size
}

// Alignof returns the alignment of t in bytes.
func (s *Sizes) Alignof(t *DataType) int64 {
	_, align := s.layout(t, map[string]bool{})
	return align
}

// Offsets returns the byte offset of each field of the struct type t.
func (s *Sizes) Offsets(t *DataType) []int64 {
	st, ok := t.Info.(*Struct)
	if !ok {
		return nil
	}
	offsets := make([]int64, len(st.Fields))
	var offset int64
	for i, f := range st.Fields {
		size, align := s.named(f.TypeName, map[string]bool{t.Name: true})
		offset = alignUp(offset, align)
		offsets[i] = offset
		offset += size
	}
	return offsets
}

func (s *Sizes) named(name string, visiting map[string]bool) (size, align int64) {
	if s.Types == nil {
		return 0, 1
	}
	t := s.Types.FindEffectiveType(name)
	if t == nil {
		return 0, 1
	}
	return s.layout(t, visiting)
}

func (s *Sizes) layout(t *DataType, visiting map[string]bool) (size, align int64) {
	if t == nil || visiting[t.Name] {
		return 0, 1
	}

	switch i := t.Info.(type) {
	case *Integer:
		bytes := int64(i.Size+7) / 8
		return bytes, bytes
	case *Float:
		bytes := int64(i.Size) / 8
		return bytes, bytes
	case *String:
		return i.Size * i.Encoding.BytesPerChar(), i.Encoding.BytesPerChar()
	case *Pointer:
		return PointerSize, PointerSize
	case *Enum:
		return s.named(i.Referenced, visiting)
	case *Alias:
		return s.named(i.Referenced, visiting)
	case *SubRange:
		return s.named(i.Referenced, visiting)
	case *Array:
		n, ok := i.Len()
		if !ok {
			return 0, 1
		}
		visiting[t.Name] = true
		defer delete(visiting, t.Name)
		elemSize, elemAlign := s.named(i.Inner, visiting)
		return n * elemSize, elemAlign
	case *Struct:
		visiting[t.Name] = true
		defer delete(visiting, t.Name)
		var offset int64
		var maxAlign int64 = 1
		for _, f := range i.Fields {
			fieldSize, fieldAlign := s.named(f.TypeName, visiting)
			offset = alignUp(offset, fieldAlign)
			offset += fieldSize
			if fieldAlign > maxAlign {
				maxAlign = fieldAlign
			}
		}
		return alignUp(offset, maxAlign), maxAlign
	}
	return 0, 1
}

// alignUp rounds x up to a multiple of a.
func alignUp(x, a int64) int64 {
	if a <= 1 {
		return x
	}
	return (x + a - 1) / a * a
}
