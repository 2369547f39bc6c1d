package ctype

import "testing"

func TestCompatibleSymmetric(t *testing.T) {
	tests := []struct {
		name string
		a, b *Type
	}{
		{"same basic", Basic(Int), Basic(Int)},
		{"different basic", Basic(Int), Basic(Long)},
		{"pointer to same", MakePointer(Basic(Char)), MakePointer(Basic(Char))},
		{"pointer to different", MakePointer(Basic(Char)), MakePointer(Basic(Int))},
		{"qualified vs unqualified", Qualified(Basic(Int), QualConst), Basic(Int)},
		{"arrays same length", MakeArray(Basic(Int), 4), MakeArray(Basic(Int), 4)},
		{"arrays different length", MakeArray(Basic(Int), 4), MakeArray(Basic(Int), 8)},
		{"error poisons", MakeError(), Basic(Int)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Compatible(tt.a, tt.b) != Compatible(tt.b, tt.a) {
				t.Fatalf("Compatible(a,b)=%v but Compatible(b,a)=%v", Compatible(tt.a, tt.b), Compatible(tt.b, tt.a))
			}
		})
	}
}

func TestCompatibleArrayElementQualifiers(t *testing.T) {
	plain := MakeArray(Basic(Int), 5)
	constElem := MakeArray(Qualified(Basic(Int), QualConst), 5)
	if Compatible(plain, constElem) {
		t.Fatal("int[5] and const int[5] must not be compatible")
	}
	if !Compatible(constElem, MakeArray(Qualified(Basic(Int), QualConst), 5)) {
		t.Fatal("identically qualified array types must be compatible")
	}
}

func TestUsualArithmeticConversionsEqualWidthPrefersUnsigned(t *testing.T) {
	// unsigned long and long long are both 8 bytes on this target; a
	// signed 64-bit type cannot represent all unsigned 64-bit values, so
	// the result must be the signed type's unsigned counterpart.
	got := UsualArithmeticConversionsResultType(Basic(UnsignedLong), Basic(LongLong))
	if got.Class != UnsignedLongLong {
		t.Fatalf("usual(unsigned long, long long) = %v, want unsigned long long", got)
	}
	// A genuinely wider signed type still wins: long can hold every
	// unsigned int value.
	got = UsualArithmeticConversionsResultType(Basic(UnsignedInt), Basic(Long))
	if got.Class != Long {
		t.Fatalf("usual(unsigned int, long) = %v, want long", got)
	}
}

func TestUsualArithmeticConversionsCommutativeRank(t *testing.T) {
	pairs := [][2]*Type{
		{Basic(Int), Basic(UnsignedInt)},
		{Basic(Long), Basic(UnsignedInt)},
		{Basic(Int), Basic(Long)},
		{Basic(UnsignedLong), Basic(Long)},
		{Basic(Char), Basic(Int)},
		{Basic(Float), Basic(Double)},
	}
	for _, p := range pairs {
		ab := UsualArithmeticConversionsResultType(p[0], p[1])
		ba := UsualArithmeticConversionsResultType(p[1], p[0])
		if IntegerConversionRank(ab) != IntegerConversionRank(ba) || ab.IsUnsigned() != ba.IsUnsigned() {
			t.Fatalf("usual(%v,%v)=%v but usual(%v,%v)=%v", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestSizeAlignmentDivides(t *testing.T) {
	types := []*Type{
		Basic(Char), Basic(Short), Basic(Int), Basic(Long), Basic(Float), Basic(Double),
		MakePointer(Basic(Int)),
		MakeArray(Basic(Int), 5),
		MakeStruct("", []Member{{Name: "a", Type: Basic(Char)}, {Name: "b", Type: Basic(Int)}}),
	}
	for _, ty := range types {
		size, align := ty.Size(), ty.Alignment()
		if size%align != 0 {
			t.Errorf("%v: size %d not a multiple of alignment %d", ty, size, align)
		}
	}
}

func TestArraySizeIsElementCountTimesElementSize(t *testing.T) {
	arr := MakeArray(Basic(Int), 10)
	if arr.Size() != 10*Basic(Int).Size() {
		t.Fatalf("got %d, want %d", arr.Size(), 10*Basic(Int).Size())
	}
}

func TestStructWithBracedInitOffsets(t *testing.T) {
	st := MakeStruct("p", []Member{
		{Name: "a", Type: Basic(Int)},
		{Name: "b", Type: Basic(Int)},
	})
	off, idx := st.MemberOffset("b")
	if off != 4 || idx != 1 {
		t.Fatalf("got offset=%d index=%d, want 4,1", off, idx)
	}
}

func TestDecayExceptions(t *testing.T) {
	if ShouldDecay(ContextSizeofOperand) {
		t.Error("sizeof operand must not decay")
	}
	if ShouldDecay(ContextAddressOfOperand) {
		t.Error("address-of operand must not decay")
	}
	if !ShouldDecay(ContextOrdinary) {
		t.Error("ordinary expression position must decay")
	}
}
