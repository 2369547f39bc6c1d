package initializer

import (
	"encoding/binary"
	"testing"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

// withAddressResolver installs f as the address resolver for the duration
// of the test and restores the no-op default on cleanup, the same pattern
// the analyzer uses to install the real resolver via SetAddressResolver.
func withAddressResolver(t *testing.T, f func(*ast.Node) (*symtab.Symbol, bool)) {
	SetAddressResolver(f)
	t.Cleanup(func() { SetAddressResolver(defaultAddressResolver) })
}

func identifierNode(id string) *ast.Node {
	return &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, ID: id}
}

// A bare "&g" with no pointer-arithmetic offset must produce a relocation
// with a zero addend.
func TestEmitStaticAddressOfObject(t *testing.T) {
	g := &symtab.Symbol{Name: "g", Type: ctype.Basic(ctype.Int)}
	withAddressResolver(t, func(n *ast.Node) (*symtab.Symbol, bool) {
		if n.Kind == ast.KindPrimaryExpressionIdentifier && n.ID == "g" {
			return g, true
		}
		return nil, false
	})

	ref := &ast.Node{Kind: ast.KindReferenceExpression, Operand: identifierNode("g"), Type: ctype.MakePointer(g.Type)}
	p := &symtab.Symbol{Data: make([]byte, 8)}
	diags := EmitStatic(ref, p, 0, nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(p.Relocs) != 1 {
		t.Fatalf("got %d relocations, want 1", len(p.Relocs))
	}
	rel := p.Relocs[0]
	if rel.DataOffset != 0 || rel.TargetSymbol != g || rel.Addend != 0 {
		t.Fatalf("unexpected relocation: %+v", rel)
	}
	if got := binary.LittleEndian.Uint64(p.Data); got != 0 {
		t.Fatalf("got addend image %#x, want 0", got)
	}
}

// int *p = &x + 2; where sizeof(int)==4 -> relocation (0, x, +8), image
// 08 00 00 00 00 00 00 00.
func TestEmitStaticAddressOfObjectPlusOffset(t *testing.T) {
	x := &symtab.Symbol{Name: "x", Type: ctype.Basic(ctype.Int)}
	withAddressResolver(t, func(n *ast.Node) (*symtab.Symbol, bool) {
		if n.Kind == ast.KindPrimaryExpressionIdentifier && n.ID == "x" {
			return x, true
		}
		return nil, false
	})

	intPtr := ctype.MakePointer(x.Type)
	ref := &ast.Node{Kind: ast.KindReferenceExpression, Operand: identifierNode("x"), Type: intPtr}
	two := &ast.Node{Kind: ast.KindIntegerConstant, IntValue: 2, Type: ctype.Basic(ctype.Int)}
	add := &ast.Node{Kind: ast.KindAdditionExpression, LHS: ref, RHS: two, Type: intPtr}

	p := &symtab.Symbol{Data: make([]byte, 8)}
	diags := EmitStatic(add, p, 0, nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(p.Relocs) != 1 {
		t.Fatalf("got %d relocations, want 1", len(p.Relocs))
	}
	rel := p.Relocs[0]
	if rel.DataOffset != 0 || rel.TargetSymbol != x || rel.Addend != 8 {
		t.Fatalf("unexpected relocation: %+v, want (0, x, +8)", rel)
	}
	want := []byte{0x08, 0, 0, 0, 0, 0, 0, 0}
	for i := range want {
		if p.Data[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x (full: %v)", i, p.Data[i], want[i], p.Data)
		}
	}
}
