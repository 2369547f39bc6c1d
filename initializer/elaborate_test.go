package initializer

import (
	"testing"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

func scalarInit(v int64) *ast.Node {
	return &ast.Node{Kind: ast.KindIntegerConstant, IntValue: v, Type: ctype.Basic(ctype.Int)}
}

// struct {int a; int b;} p = {.b=7}; -> image 00 00 00 00 07 00 00 00
func TestStructDesignatedInit(t *testing.T) {
	st := ctype.MakeStruct("", []ctype.Member{
		{Name: "a", Type: ctype.Basic(ctype.Int)},
		{Name: "b", Type: ctype.Basic(ctype.Int)},
	})
	designation := &ast.Node{Kind: ast.KindDesignation, DesignatorChain: []*ast.Designator{{IsMember: true, Member: "b"}}}
	list := &ast.Node{
		Kind:         ast.KindInitializerList,
		Designators:  []*ast.Node{designation},
		Initializers: []*ast.Node{scalarInit(7)},
	}
	diags := Elaborate(list, st)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	init := list.Initializers[0]
	if init.InitializerOffset != 4 {
		t.Fatalf("got offset %d, want 4", init.InitializerOffset)
	}

	sym := &symtab.Symbol{Data: make([]byte, st.Size())}
	if d := EmitStatic(list, sym, 0, nil); len(d) != 0 {
		t.Fatalf("unexpected emit diagnostics: %+v", d)
	}
	want := []byte{0, 0, 0, 0, 7, 0, 0, 0}
	for i := range want {
		if sym.Data[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x (full: %v)", i, sym.Data[i], want[i], sym.Data)
		}
	}
}

// An initializer list for an array of unspecified length must finalize the
// length to the running maximum index touched (byte-image assertions live
// in the analyzer tests, which have string-literal byte resolution).
func TestArrayUnspecifiedLengthFinalizes(t *testing.T) {
	arr := ctype.MakeUnspecifiedArray(ctype.Basic(ctype.Int))
	list := &ast.Node{
		Kind:         ast.KindInitializerList,
		Initializers: []*ast.Node{scalarInit(1), scalarInit(2), scalarInit(3)},
		Designators:  make([]*ast.Node, 3),
	}
	diags := Elaborate(list, arr)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if arr.ArrayLengthKind != ctype.LengthKnown || arr.ArrayLength != 3 {
		t.Fatalf("got kind=%v length=%d, want known/3", arr.ArrayLengthKind, arr.ArrayLength)
	}
}

func TestOutOfBoundsInitializerReportsOnce(t *testing.T) {
	st := ctype.MakeStruct("", []ctype.Member{{Name: "a", Type: ctype.Basic(ctype.Int)}})
	list := &ast.Node{
		Kind:         ast.KindInitializerList,
		Initializers: []*ast.Node{scalarInit(1), scalarInit(2)},
		Designators:  make([]*ast.Node, 2),
	}
	diags := Elaborate(list, st)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want exactly 1: %+v", len(diags), diags)
	}
	if list.Initializers[1].InitializerOffset != -1 {
		t.Fatalf("expected the second initializer's offset to be -1")
	}
}

func TestInitializerOffsetsMonotone(t *testing.T) {
	st := ctype.MakeStruct("", []ctype.Member{
		{Name: "a", Type: ctype.Basic(ctype.Char)},
		{Name: "b", Type: ctype.Basic(ctype.Int)},
		{Name: "c", Type: ctype.Basic(ctype.Char)},
	})
	list := &ast.Node{
		Kind:         ast.KindInitializerList,
		Initializers: []*ast.Node{scalarInit(1), scalarInit(2), scalarInit(3)},
		Designators:  make([]*ast.Node, 3),
	}
	diags := Elaborate(list, st)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	var last int64 = -1
	for _, init := range list.Initializers {
		if init.InitializerOffset < last {
			t.Fatalf("offsets not monotone: %d after %d", init.InitializerOffset, last)
		}
		last = init.InitializerOffset
	}
}
