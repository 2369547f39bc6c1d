package analyzer

import (
	"testing"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
)

func TestCanAssignArithmetic(t *testing.T) {
	if !CanAssign(ctype.Basic(ctype.Double), ctype.Basic(ctype.Int), nil) {
		t.Fatal("int should be assignable to double")
	}
}

func TestCanAssignNullPointerConstant(t *testing.T) {
	zero := &ast.Node{Kind: ast.KindIntegerConstant, IntValue: 0, Type: ctype.Basic(ctype.Int)}
	ptr := ctype.MakePointer(ctype.Basic(ctype.Int))
	if !CanAssign(ptr, ctype.Basic(ctype.Int), zero) {
		t.Fatal("null pointer constant should be assignable to any pointer")
	}
}

func TestCanAssignVoidPointerRequiresQualifierSuperset(t *testing.T) {
	voidPtr := ctype.MakePointer(ctype.Basic(ctype.Void))
	constIntPtr := ctype.MakePointer(ctype.Qualified(ctype.Basic(ctype.Int), ctype.QualConst))
	if CanAssign(voidPtr, constIntPtr, nil) {
		t.Fatal("assigning away const through void* should be rejected")
	}
	if !CanAssign(constIntPtr, voidPtr, nil) {
		t.Fatal("plain void* should still be assignable into a const-qualified target")
	}
}

func TestCanAssignBoolFromPointer(t *testing.T) {
	if !CanAssign(ctype.Basic(ctype.Bool), ctype.MakePointer(ctype.Basic(ctype.Int)), nil) {
		t.Fatal("_Bool should accept any pointer")
	}
}

func intLit(v int64) *ast.Node {
	return &ast.Node{Kind: ast.KindIntegerConstant, IntValue: v, Type: ctype.Basic(ctype.Int)}
}

func TestDecorateAdditiveArithmetic(t *testing.T) {
	p := New()
	add := &ast.Node{Kind: ast.KindAdditionExpression, LHS: intLit(1), RHS: intLit(2)}
	p.DecorateExpression(add)
	if add.Type == nil || add.Type.IsError() {
		t.Fatalf("expected a decorated arithmetic type, got %v", add.Type)
	}
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
}

func TestDecorateAdditionRejectsTwoPointers(t *testing.T) {
	p := New()
	ptrT := ctype.MakePointer(ctype.Basic(ctype.Int))
	a := &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: ptrT}
	b := &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: ptrT}
	add := &ast.Node{Kind: ast.KindAdditionExpression, LHS: a, RHS: b}
	p.DecorateExpression(add)
	if !add.Type.IsError() {
		t.Fatal("pointer + pointer should be a type error")
	}
	if len(p.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(p.Errors))
	}
}

func TestDecorateConditionalComposesPointerQualifiers(t *testing.T) {
	p := New()
	cond := intLit(1)
	constIntPtr := ctype.MakePointer(ctype.Qualified(ctype.Basic(ctype.Int), ctype.QualConst))
	plainIntPtr := ctype.MakePointer(ctype.Basic(ctype.Int))
	then := &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: constIntPtr}
	els := &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: plainIntPtr}
	n := &ast.Node{Kind: ast.KindConditionalExpression, Cond: cond, Then: then, Else: els}
	p.DecorateExpression(n)
	if n.Type == nil || n.Type.Class != ctype.Pointer {
		t.Fatalf("expected a pointer result type, got %v", n.Type)
	}
	if n.Type.Elem.Qualifiers&ctype.QualConst == 0 {
		t.Fatalf("composite type should carry const from either branch")
	}
}

func TestComputeEnumeratorValuesDefaultsAndExplicit(t *testing.T) {
	p := New()
	n := &ast.Node{
		Kind: ast.KindEnumSpecifier,
		Enumerators: []*ast.Node{
			{ID: "RED"},
			{ID: "GREEN", EnumeratorInit: intLit(5)},
			{ID: "BLUE"},
		},
	}
	vals := p.ComputeEnumeratorValues(n)
	want := []int64{0, 5, 6}
	for i, v := range want {
		if vals[i].Value != v {
			t.Fatalf("enumerator %d: got %d, want %d", i, vals[i].Value, v)
		}
	}
}

func TestCheckSwitchDetectsDuplicateCase(t *testing.T) {
	p := New()
	caseA := &ast.Node{Kind: ast.KindLabeledStatement, CaseValue: intLit(1)}
	caseB := &ast.Node{Kind: ast.KindLabeledStatement, CaseValue: intLit(1)}
	body := &ast.Node{Kind: ast.KindCompoundStatement, Children: []*ast.Node{caseA, caseB}}
	sw := &ast.Node{Kind: ast.KindSwitchStatement, Cond: intLit(0), Body: body}
	p.checkSwitch(sw)
	if len(p.Errors) != 1 {
		t.Fatalf("expected exactly one duplicate-case error, got %d: %+v", len(p.Errors), p.Errors)
	}
}

func TestCheckSwitchIgnoresNestedSwitchCases(t *testing.T) {
	p := New()
	innerCaseA := &ast.Node{Kind: ast.KindLabeledStatement, CaseValue: intLit(1)}
	inner := &ast.Node{Kind: ast.KindSwitchStatement, Cond: intLit(0), Body: &ast.Node{
		Kind: ast.KindCompoundStatement, Children: []*ast.Node{innerCaseA},
	}}
	outerCaseA := &ast.Node{Kind: ast.KindLabeledStatement, CaseValue: intLit(1)}
	body := &ast.Node{Kind: ast.KindCompoundStatement, Children: []*ast.Node{outerCaseA, inner}}
	sw := &ast.Node{Kind: ast.KindSwitchStatement, Cond: intLit(0), Body: body}
	p.checkSwitch(sw)
	if len(p.Errors) != 0 {
		t.Fatalf("case 1 inside a nested switch must not collide with the outer switch's case 1: %+v", p.Errors)
	}
}

func TestDeclareVLAIsUnsupported(t *testing.T) {
	p := New()
	decl := &ast.Node{Kind: ast.KindDeclaratorIdentifier, ID: "v"}
	vla := ctype.MakeExpressionArray(ctype.Basic(ctype.Int))
	p.DeclareObject(nil, decl, nil, vla)
	if len(p.Errors) != 1 || p.Errors[0].Kind != KindUnsupportedConstruct {
		t.Fatalf("expected one unsupported-construct error, got %+v", p.Errors)
	}
}

func TestDeclareLongDoubleIsUnsupported(t *testing.T) {
	p := New()
	decl := &ast.Node{Kind: ast.KindDeclaratorIdentifier, ID: "ld"}
	p.DeclareObject(nil, decl, nil, ctype.Basic(ctype.LongDouble))
	if len(p.Errors) != 1 || p.Errors[0].Kind != KindUnsupportedConstruct {
		t.Fatalf("expected one unsupported-construct error, got %+v", p.Errors)
	}
}

func TestBitFieldWiderThanTypeIsAnError(t *testing.T) {
	p := New()
	n := &ast.Node{Kind: ast.KindStructUnionSpecifier, ID: "struct"}
	members := []ctype.Member{{Name: "f", Type: ctype.Basic(ctype.Int), BitWidth: 33}}
	p.CheckStructMembers(n, members, false)
	if len(p.Errors) != 1 || p.Errors[0].Kind != KindConstraintViolation {
		t.Fatalf("expected a bit-field width constraint violation, got %+v", p.Errors)
	}
}

func TestForInitDeclarationRejectsStaticStorage(t *testing.T) {
	p := New()
	decl := &ast.Node{
		Kind:            ast.KindDeclaration,
		DeclSpecifiers:  []*ast.Node{{Kind: ast.KindStorageClassSpecifier, ID: "static"}},
		InitDeclarators: []*ast.Node{{Kind: ast.KindDeclaratorIdentifier, ID: "i", Type: ctype.Basic(ctype.Int)}},
	}
	loop := &ast.Node{Kind: ast.KindForStatement, Init: decl, Cond: intLit(1)}
	p.checkForInitDeclaration(loop.Init)
	if len(p.Errors) != 1 || p.Errors[0].Kind != KindConstraintViolation {
		t.Fatalf("expected a storage-class constraint violation for the static for-init, got %+v", p.Errors)
	}
}

func TestForStatementDecoratesInitCondAndPost(t *testing.T) {
	p := New()
	init := &ast.Node{Kind: ast.KindAssignmentExpression,
		Target: &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: ctype.Basic(ctype.Int)},
		Value:  intLit(0)}
	post := &ast.Node{Kind: ast.KindAdditionExpression, LHS: intLit(1), RHS: intLit(2)}
	loop := &ast.Node{Kind: ast.KindForStatement, Init: init, Cond: intLit(1), Post: post}
	p.walkStatement(loop)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	if init.Type == nil || post.Type == nil {
		t.Fatalf("for init and post expressions must be decorated, got init=%v post=%v", init.Type, post.Type)
	}
}

func TestBreakOutsideLoopOrSwitchIsAnError(t *testing.T) {
	p := New()
	brk := &ast.Node{Kind: ast.KindBreakStatement}
	p.CheckStatement(brk)
	if len(p.Errors) != 1 {
		t.Fatalf("expected break-outside-loop error, got %+v", p.Errors)
	}
}

// TestStaticInitializerAddressOfObject covers "int g; int *p = &g;" at file
// scope, the address-constant static-initializer path wired through
// resolveAddressOperand/initializer.SetAddressResolver.
func TestStaticInitializerAddressOfObject(t *testing.T) {
	p := New()
	intT := ctype.Basic(ctype.Int)
	gDecl := &ast.Node{Kind: ast.KindDeclaratorIdentifier, ID: "g"}
	gSym := p.DeclareObject(nil, gDecl, nil, intT)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors declaring g: %+v", p.Errors)
	}

	ptrT := ctype.MakePointer(intT)
	ref := &ast.Node{Kind: ast.KindReferenceExpression, Operand: &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, ID: "g"}}
	pDecl := &ast.Node{Kind: ast.KindDeclaratorIdentifier, ID: "p"}
	pSym := p.DeclareObject(nil, pDecl, ref, ptrT)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors declaring p: %+v", p.Errors)
	}
	if len(pSym.Relocs) != 1 || pSym.Relocs[0].TargetSymbol != gSym || pSym.Relocs[0].Addend != 0 {
		t.Fatalf("expected a zero-addend relocation targeting g, got %+v", pSym.Relocs)
	}
}

// TestStaticInitializerFoldsArithmetic covers "int x = 2 + 3 * 4;" at file
// scope: the static image must hold little-endian 14.
func TestStaticInitializerFoldsArithmetic(t *testing.T) {
	p := New()
	mul := &ast.Node{Kind: ast.KindMultiplicationExpression, LHS: intLit(3), RHS: intLit(4)}
	add := &ast.Node{Kind: ast.KindAdditionExpression, LHS: intLit(2), RHS: mul}
	decl := &ast.Node{Kind: ast.KindDeclaratorIdentifier, ID: "x"}
	sym := p.DeclareObject(nil, decl, add, ctype.Basic(ctype.Int))
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	want := []byte{0x0E, 0x00, 0x00, 0x00}
	if len(sym.Data) != 4 {
		t.Fatalf("got %d image bytes, want 4", len(sym.Data))
	}
	for i := range want {
		if sym.Data[i] != want[i] {
			t.Fatalf("byte %d: got %#x, want %#x (full: %v)", i, sym.Data[i], want[i], sym.Data)
		}
	}
}

// TestStaticInitializerStringLiteral covers `char s[] = "ab";`: the array
// length becomes 3 and the image holds the literal bytes plus the NUL.
func TestStaticInitializerStringLiteral(t *testing.T) {
	p := New()
	arrT := ctype.MakeUnspecifiedArray(ctype.Basic(ctype.Char))
	lit := &ast.Node{Kind: ast.KindStringLiteral, StringValue: []byte("ab")}
	decl := &ast.Node{Kind: ast.KindDeclaratorIdentifier, ID: "s"}
	sym := p.DeclareObject(nil, decl, lit, arrT)
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", p.Errors)
	}
	if arrT.ArrayLengthKind != ctype.LengthKnown || arrT.ArrayLength != 3 {
		t.Fatalf("got kind=%v length=%d, want known/3", arrT.ArrayLengthKind, arrT.ArrayLength)
	}
	want := []byte{0x61, 0x62, 0x00}
	if len(sym.Data) != 3 {
		t.Fatalf("got %d image bytes, want 3", len(sym.Data))
	}
	for i := range want {
		if sym.Data[i] != want[i] {
			t.Fatalf("byte %d: got %#x, want %#x (full: %v)", i, sym.Data[i], want[i], sym.Data)
		}
	}
}

// TestArrayArgumentDecaysForAssignability covers "int *p; int a[5]; p = a;":
// an array-typed rhs must decay to a pointer before CanAssign is consulted.
func TestArrayArgumentDecaysForAssignability(t *testing.T) {
	p := New()
	arrT := ctype.MakeArray(ctype.Basic(ctype.Int), 5)
	ptrT := ctype.MakePointer(ctype.Basic(ctype.Int))
	target := &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: ptrT}
	value := &ast.Node{Kind: ast.KindPrimaryExpressionIdentifier, Type: arrT}
	assign := &ast.Node{Kind: ast.KindAssignmentExpression, Target: target, Value: value}
	p.DecorateExpression(assign)
	if len(p.Errors) != 0 {
		t.Fatalf("assigning an array to a compatible pointer should decay, not error: %+v", p.Errors)
	}
}

// TestReturnArrayDecaysForAssignability covers "return a;" from a function
// returning int*, where a is an array of int.
func TestReturnArrayDecaysForAssignability(t *testing.T) {
	p := New()
	arrT := ctype.MakeArray(ctype.Basic(ctype.Int), 5)
	fn := &ast.Node{Kind: ast.KindFunctionDefinition, Type: ctype.MakeFunction(ctype.MakePointer(ctype.Basic(ctype.Int)), nil, false)}
	ret := &ast.Node{Kind: ast.KindReturnStatement, Parent: fn, Value: &ast.Node{Type: arrT}}
	p.checkReturn(ret)
	if len(p.Errors) != 0 {
		t.Fatalf("returning an array from a function returning a compatible pointer should decay, not error: %+v", p.Errors)
	}
}

func TestReturnTypeMismatchIsAnError(t *testing.T) {
	p := New()
	fn := &ast.Node{Kind: ast.KindFunctionDefinition, Type: ctype.MakeFunction(ctype.Basic(ctype.Int), nil, false)}
	ret := &ast.Node{Kind: ast.KindReturnStatement, Parent: fn, Value: &ast.Node{Type: ctype.MakePointer(ctype.Basic(ctype.Int))}}
	p.checkReturn(ret)
	if len(p.Errors) != 1 {
		t.Fatalf("expected a return-type-mismatch error, got %+v", p.Errors)
	}
}
