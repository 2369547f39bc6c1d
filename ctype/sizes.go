package ctype

// sizeAlign gives the x86-64 System V size and alignment, in bytes, for
// every basic class. Bitfield storage never consults this table: bitfields
// are constraint-checked only, never laid out.
var sizeAlign = map[Class][2]int64{
	Bool:             {1, 1},
	Char:             {1, 1},
	SignedChar:       {1, 1},
	UnsignedChar:     {1, 1},
	Short:            {2, 2},
	UnsignedShort:    {2, 2},
	Int:              {4, 4},
	UnsignedInt:      {4, 4},
	Long:             {8, 8},
	UnsignedLong:     {8, 8},
	LongLong:         {8, 8},
	UnsignedLongLong: {8, 8},
	Float:            {4, 4},
	Double:           {8, 8},
	Pointer:          {8, 8},
}

// Size returns sizeof(t). It panics if t is not a complete object type;
// callers (the analyzer, the initializer elaborator) must check IsComplete
// and IsObjectType first.
func (t *Type) Size() int64 {
	if !t.IsObjectType() || !t.IsComplete() {
		panic("ctype: Size of incomplete or non-object type " + t.String())
	}
	switch t.Class {
	case Array:
		return t.ArrayLength * t.Elem.Size()
	case Struct:
		return structSize(t)
	case Union:
		return unionSize(t)
	case Enum:
		return sizeAlign[Int][0]
	}
	if sa, ok := sizeAlign[t.Class]; ok {
		return sa[0]
	}
	panic("ctype: no size entry for class")
}

// Alignment returns the alignment requirement of t, under the same
// completeness preconditions as Size.
func (t *Type) Alignment() int64 {
	if !t.IsObjectType() || !t.IsComplete() {
		panic("ctype: Alignment of incomplete or non-object type " + t.String())
	}
	switch t.Class {
	case Array:
		return t.Elem.Alignment()
	case Struct, Union:
		return structUnionAlignment(t)
	case Enum:
		return sizeAlign[Int][1]
	}
	if sa, ok := sizeAlign[t.Class]; ok {
		return sa[1]
	}
	panic("ctype: no alignment entry for class")
}

func alignUp(offset, align int64) int64 {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

func structUnionAlignment(t *Type) int64 {
	var max int64 = 1
	for _, m := range t.Members {
		mt := m.Type
		if mt.Class == Array && mt.ArrayLengthKind == LengthUnspecified {
			mt = mt.Elem
		}
		if a := mt.Alignment(); a > max {
			max = a
		}
	}
	return max
}

// structSize computes the size of a struct including trailing padding to
// its alignment, per ISO 6.7.2.1. Flexible array members (size-0 trailing
// array) contribute zero size of their own.
func structSize(t *Type) int64 {
	var offset int64
	for i, m := range t.Members {
		isFlexible := i == len(t.Members)-1 && m.Type.Class == Array && m.Type.ArrayLengthKind == LengthUnspecified
		if isFlexible {
			continue
		}
		offset = alignUp(offset, m.Type.Alignment())
		offset += m.Type.Size()
	}
	return alignUp(offset, structUnionAlignment(t))
}

func unionSize(t *Type) int64 {
	var max int64
	for _, m := range t.Members {
		if s := m.Type.Size(); s > max {
			max = s
		}
	}
	return alignUp(max, structUnionAlignment(t))
}

// MemberOffset returns the byte offset of the named member within t (a
// struct or union) and its index, or (-1, -1) if no such member exists.
func (t *Type) MemberOffset(name string) (offset int64, index int) {
	if t.Class == Union {
		for i, m := range t.Members {
			if m.Name == name {
				return 0, i
			}
		}
		return -1, -1
	}
	var off int64
	for i, m := range t.Members {
		off = alignUp(off, m.Type.Alignment())
		if m.Name == name {
			return off, i
		}
		off += m.Type.Size()
	}
	return -1, -1
}
