package analyzer

import (
	"testing"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

// newPassWithVaList returns a Pass with __ecc_va_list bound to a trivial
// struct, mirroring the built-in prelude BindVaList expects to have been
// installed before any va_* intrinsic call is decorated.
func newPassWithVaList() *Pass {
	p := New()
	vaListT := ctype.MakeStruct("__ecc_va_list", []ctype.Member{
		{Name: "gp_offset", Type: ctype.Basic(ctype.UnsignedInt)},
	})
	sym := symtab.NewObjectSymbol("__ecc_va_list", vaListT, nil, symtab.DeclContext{})
	p.BindVaList(sym)
	return p
}

func vaListArg(p *Pass) *ast.Node {
	return &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: p.vaListPointerType()}
}

func typeNameArg(t *ctype.Type) *ast.Node {
	return &ast.Node{Kind: ast.KindTypeName, Type: t}
}

func TestVaArgRequiresTwoArguments(t *testing.T) {
	p := newPassWithVaList()
	n := &ast.Node{Kind: ast.KindIntrinsicCallExpression, ID: "__ecc_va_arg", Args: []*ast.Node{vaListArg(p)}}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("va_arg with one argument should be a type error")
	}
	if len(p.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %+v", p.Errors)
	}
}

func TestVaArgResultTypeIsTheNamedType(t *testing.T) {
	p := newPassWithVaList()
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_va_arg",
		Args: []*ast.Node{vaListArg(p), typeNameArg(ctype.Basic(ctype.Double))},
	}
	p.DecorateExpression(n)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	if n.Type == nil || n.Type.Class != ctype.Double {
		t.Fatalf("expected the result type to be double (the named type), got %v", n.Type)
	}
}

func TestVaArgRejectsNonTypeNameSecondArgument(t *testing.T) {
	p := newPassWithVaList()
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_va_arg",
		Args: []*ast.Node{vaListArg(p), intLit(0)},
	}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("second argument of va_arg that is not a type name should be a type error")
	}
}

func TestVaArgRejectsStructResultType(t *testing.T) {
	p := newPassWithVaList()
	structT := ctype.MakeStruct("point", []ctype.Member{{Name: "x", Type: ctype.Basic(ctype.Int)}})
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_va_arg",
		Args: []*ast.Node{vaListArg(p), typeNameArg(structT)},
	}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("va_arg naming a struct type should be rejected as unsupported")
	}
}

func TestVaArgRejectsWrongFirstArgumentType(t *testing.T) {
	p := newPassWithVaList()
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_va_arg",
		Args: []*ast.Node{intLit(7), typeNameArg(ctype.Basic(ctype.Int))},
	}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("va_arg's first argument must be a va_list")
	}
}

func TestVaStartRequiresTwoArguments(t *testing.T) {
	p := newPassWithVaList()
	n := &ast.Node{Kind: ast.KindIntrinsicCallExpression, ID: "__ecc_va_start", Args: []*ast.Node{vaListArg(p)}}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("va_start with one argument should be a type error")
	}
}

func TestVaStartResultIsVoidAndDoesNotTypeCheckSecondArgument(t *testing.T) {
	p := newPassWithVaList()
	lastParam := &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: ctype.MakePointer(ctype.Basic(ctype.Int))}
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_va_start",
		Args: []*ast.Node{vaListArg(p), lastParam},
	}
	p.DecorateExpression(n)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	if n.Type == nil || !n.Type.IsVoid() {
		t.Fatalf("expected va_start to decorate as void, got %v", n.Type)
	}
}

func TestVaStartRejectsWrongFirstArgumentType(t *testing.T) {
	p := newPassWithVaList()
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_va_start",
		Args: []*ast.Node{intLit(7), intLit(0)},
	}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("va_start's first argument must be a va_list")
	}
}

func TestVaEndRequiresOneArgument(t *testing.T) {
	p := newPassWithVaList()
	n := &ast.Node{Kind: ast.KindIntrinsicCallExpression, ID: "__ecc_va_end"}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("va_end with no arguments should be a type error")
	}
}

func TestVaEndAcceptsVaListAndResultsVoid(t *testing.T) {
	p := newPassWithVaList()
	n := &ast.Node{Kind: ast.KindIntrinsicCallExpression, ID: "__ecc_va_end", Args: []*ast.Node{vaListArg(p)}}
	p.DecorateExpression(n)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	if n.Type == nil || !n.Type.IsVoid() {
		t.Fatalf("expected va_end to decorate as void, got %v", n.Type)
	}
}

func pathArg() *ast.Node {
	return &ast.Node{Kind: ast.KindStringLiteral, Type: ctype.MakePointer(ctype.Qualified(ctype.Basic(ctype.Char), ctype.QualConst))}
}

func TestLsysOpenRequiresThreeArguments(t *testing.T) {
	p := New()
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_lsys_open",
		Args: []*ast.Node{pathArg(), intLit(0)},
	}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("lsys_open with two arguments should be a type error (mode is required)")
	}
}

func TestLsysOpenAcceptsPathFlagsModeAndResultsInt(t *testing.T) {
	p := New()
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_lsys_open",
		Args: []*ast.Node{pathArg(), intLit(0), intLit(0)},
	}
	p.DecorateExpression(n)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	if n.Type == nil || n.Type.Class != ctype.Int {
		t.Fatalf("expected lsys_open to decorate as int, got %v", n.Type)
	}
}

func TestLsysCloseAcceptsIntAndResultsInt(t *testing.T) {
	p := New()
	n := &ast.Node{Kind: ast.KindIntrinsicCallExpression, ID: "__ecc_lsys_close", Args: []*ast.Node{intLit(3)}}
	p.DecorateExpression(n)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	if n.Type == nil || n.Type.Class != ctype.Int {
		t.Fatalf("expected lsys_close to decorate as int, got %v", n.Type)
	}
}

func TestLsysReadRequiresThreeArguments(t *testing.T) {
	p := New()
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_lsys_read",
		Args: []*ast.Node{intLit(0), &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: ctype.MakePointer(ctype.Basic(ctype.Char))}},
	}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("lsys_read with two arguments should be a type error")
	}
}

func TestLsysReadAcceptsFdBufCountAndResultsLong(t *testing.T) {
	p := New()
	buf := &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: ctype.MakePointer(ctype.Basic(ctype.Char))}
	n := &ast.Node{
		Kind: ast.KindIntrinsicCallExpression,
		ID:   "__ecc_lsys_read",
		Args: []*ast.Node{intLit(0), buf, intLit(8)},
	}
	p.DecorateExpression(n)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	if n.Type == nil || n.Type.Class != ctype.Long {
		t.Fatalf("expected lsys_read to decorate as long int, got %v", n.Type)
	}
}

func TestUnrecognizedIntrinsicIsAnError(t *testing.T) {
	p := New()
	n := &ast.Node{Kind: ast.KindIntrinsicCallExpression, ID: "__ecc_not_real"}
	p.DecorateExpression(n)
	if !n.Type.IsError() {
		t.Fatal("an unrecognized intrinsic name should be a type error")
	}
}
