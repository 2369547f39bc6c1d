package analyzer

import (
	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/constexpr"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

// DecorateExpression assigns n.Type (or Error on a constraint violation),
// dispatching per ISO 6.5 on n.Kind. Each handler decorates its operands
// first by calling DecorateExpression on them; a node whose Type is
// already set is left as it is, so each node is decorated once.
func (p *Pass) DecorateExpression(n *ast.Node) {
	if n == nil || n.Type != nil {
		return
	}
	switch n.Kind {
	case ast.KindIntegerConstant:
		if n.Type == nil {
			n.Type = ctype.Basic(ctype.Int)
		}
	case ast.KindFloatingConstant:
		p.decorateFloatingConstant(n)
	case ast.KindStringLiteral:
		p.decorateStringLiteral(n)
	case ast.KindCompoundLiteral:
		p.decorateCompoundLiteral(n)
	case ast.KindPrimaryExpressionIdentifier:
		p.decorateIdentifier(n)
	case ast.KindPrimaryExpressionEnumerationConstant:
		p.decorateEnumerationConstantRef(n)
	case ast.KindSubscriptExpression:
		p.decorateSubscript(n)
	case ast.KindFunctionCallExpression:
		p.decorateCall(n)
	case ast.KindIntrinsicCallExpression:
		p.decorateIntrinsicCall(n)
	case ast.KindMemberExpression, ast.KindDereferenceMemberExpression:
		p.decorateMember(n)
	case ast.KindPostfixIncrementExpression, ast.KindPostfixDecrementExpression,
		ast.KindPrefixIncrementExpression, ast.KindPrefixDecrementExpression:
		p.decorateIncrDecr(n)
	case ast.KindReferenceExpression:
		p.decorateAddressOf(n)
	case ast.KindDereferenceExpression:
		p.decorateDereference(n)
	case ast.KindPlusExpression, ast.KindMinusExpression:
		p.decorateUnaryArith(n)
	case ast.KindComplementExpression:
		p.decorateComplement(n)
	case ast.KindNotExpression:
		p.DecorateExpression(n.Operand)
		n.Type = ctype.Basic(ctype.Int)
		if !operandType(n).IsScalar() {
			p.error(n, KindTypeMismatch, "logical not requires a scalar operand")
			p.fail(n)
		}
	case ast.KindSizeofExpression, ast.KindSizeofTypeExpression:
		p.decorateSizeof(n)
	case ast.KindCastExpression:
		p.decorateCast(n)
	case ast.KindMultiplicationExpression, ast.KindDivisionExpression, ast.KindModularExpression:
		p.decorateMultiplicative(n)
	case ast.KindAdditionExpression, ast.KindSubtractionExpression:
		p.decorateAdditive(n)
	case ast.KindBitwiseLeftExpression, ast.KindBitwiseRightExpression:
		p.decorateShift(n)
	case ast.KindLessExpression, ast.KindGreaterExpression, ast.KindLessEqualExpression,
		ast.KindGreaterEqualExpression, ast.KindEqualityExpression, ast.KindInequalityExpression:
		p.decorateRelational(n)
	case ast.KindBitwiseAndExpression, ast.KindBitwiseXorExpression, ast.KindBitwiseOrExpression:
		p.decorateBitwise(n)
	case ast.KindLogicalAndExpression, ast.KindLogicalOrExpression:
		p.decorateLogical(n)
	case ast.KindConditionalExpression:
		p.decorateConditional(n)
	case ast.KindAssignmentExpression:
		p.decorateAssignment(n)
	case ast.KindMultiplicationAssignmentExpression, ast.KindDivisionAssignmentExpression,
		ast.KindModularAssignmentExpression, ast.KindAdditionAssignmentExpression,
		ast.KindSubtractionAssignmentExpression, ast.KindBitwiseLeftAssignmentExpression,
		ast.KindBitwiseRightAssignmentExpression, ast.KindBitwiseAndAssignmentExpression,
		ast.KindBitwiseXorAssignmentExpression, ast.KindBitwiseOrAssignmentExpression:
		p.decorateCompoundAssignment(n)
	case ast.KindExpression:
		p.DecorateExpression(n.LHS)
		p.DecorateExpression(n.RHS)
		n.Type = n.RHS.Type
	default:
		n.Type = ctype.MakeError()
	}
}

func operandType(n *ast.Node) *ctype.Type {
	if n.Operand != nil && n.Operand.Type != nil {
		return n.Operand.Type
	}
	return ctype.MakeError()
}

func (p *Pass) decorateFloatingConstant(n *ast.Node) {
	sym := p.synthesizeFloatingConstant(n)
	n.Type = sym.Type
}

func (p *Pass) decorateStringLiteral(n *ast.Node) {
	elem := ctype.Basic(ctype.Char)
	if n.StringIsWide {
		elem = ctype.Basic(ctype.Int)
	}
	// +1 for the terminating NUL, per 6.4.5p5.
	n.Type = ctype.MakeArray(elem, int64(len(n.StringValue))+1)
	p.synthesizeStringLiteral(n)
}

func (p *Pass) decorateCompoundLiteral(n *ast.Node) {
	ct := n.CastType.Type
	n.Type = ct
	p.synthesizeCompoundLiteral(n, ct)
}

func (p *Pass) decorateIdentifier(n *ast.Node) {
	sym := p.scope.Lookup(n.ID, symtab.NamespaceOrdinary)
	if sym == nil {
		p.error(n, KindUndeclaredIdentifier, "use of undeclared identifier '"+n.ID+"'")
		p.fail(n)
		return
	}
	n.Type = sym.Type
}

// decorateEnumerationConstantRef types a reference to an enumeration
// constant as plain int, per ISO 6.4.4.3p2.
func (p *Pass) decorateEnumerationConstantRef(n *ast.Node) {
	sym := p.scope.Lookup(n.ID, symtab.NamespaceOrdinary)
	if sym == nil {
		p.error(n, KindUndeclaredIdentifier, "use of undeclared enumeration constant '"+n.ID+"'")
		p.fail(n)
		return
	}
	n.Type = ctype.Basic(ctype.Int)
}

func (p *Pass) decorateSubscript(n *ast.Node) {
	p.DecorateExpression(n.Primary)
	p.DecorateExpression(n.Index)
	pt := decayed(n.Primary.Type)
	it := n.Index.Type
	if !pt.IsPointer() || it == nil || !it.IsInteger() {
		if !pt.IsError() && it != nil && !it.IsError() {
			p.error(n, KindTypeMismatch, "subscripted value requires a pointer/array operand and an integer index")
		}
		p.fail(n)
		return
	}
	n.Type = decayIfNeeded(pt.Elem, ctype.ContextOrdinary)
}

func decayed(t *ctype.Type) *ctype.Type {
	if t == nil {
		return ctype.MakeError()
	}
	if t.Class == ctype.Array {
		return ctype.MakePointer(t.Elem)
	}
	return t
}

func decayIfNeeded(t *ctype.Type, ctx ctype.DecayContext) *ctype.Type {
	if ctype.ShouldDecay(ctx) && (t.Class == ctype.Array || t.Class == ctype.Function) {
		return ctype.Decay(t)
	}
	return t
}

func (p *Pass) decorateCall(n *ast.Node) {
	p.DecorateExpression(n.Primary)
	for _, a := range n.Args {
		p.DecorateExpression(a)
	}
	ft := n.Primary.Type
	if ft.Class == ctype.Pointer {
		ft = ft.Elem
	}
	if ft == nil || ft.Class != ctype.Function {
		if ft != nil && !ft.IsError() {
			p.error(n, KindTypeMismatch, "called object is not a function or function pointer")
		}
		p.fail(n)
		return
	}
	if len(n.Args) < len(ft.Params) || (!ft.Variadic && len(n.Args) != len(ft.Params)) {
		p.error(n, KindConstraintViolation, "too few/many arguments to function call")
		p.fail(n)
		return
	}
	for i, param := range ft.Params {
		argType := decayIfNeeded(n.Args[i].Type, ctype.ContextOrdinary)
		if !CanAssign(param, argType, n.Args[i]) {
			p.error(n.Args[i], KindTypeMismatch, "argument type does not match parameter type")
			p.fail(n)
			return
		}
	}
	n.Type = ft.Return
}

func (p *Pass) decorateMember(n *ast.Node) {
	p.DecorateExpression(n.Primary)
	st := n.Primary.Type
	if n.Kind == ast.KindDereferenceMemberExpression {
		if st.Class != ctype.Pointer {
			p.error(n, KindTypeMismatch, "member reference type is not a pointer")
			p.fail(n)
			return
		}
		st = st.Elem
	}
	if st.Class != ctype.Struct && st.Class != ctype.Union {
		if !st.IsError() {
			p.error(n, KindTypeMismatch, "member reference base type is not a struct or union")
		}
		p.fail(n)
		return
	}
	_, idx := st.MemberOffset(n.Member)
	if idx == -1 {
		p.error(n, KindTypeMismatch, "no member named '"+n.Member+"' in struct/union")
		p.fail(n)
		return
	}
	n.Type = st.Members[idx].Type
}

func (p *Pass) decorateIncrDecr(n *ast.Node) {
	p.DecorateExpression(n.Operand)
	t := n.Operand.Type
	if !t.IsScalar() {
		p.error(n, KindTypeMismatch, "increment/decrement requires a scalar lvalue")
		p.fail(n)
		return
	}
	n.Type = ctype.Unqualified(t)
}

func (p *Pass) decorateAddressOf(n *ast.Node) {
	p.DecorateExpression(n.Operand)
	if n.Operand.Kind == ast.KindPrimaryExpressionIdentifier {
		if sym := p.scope.Lookup(n.Operand.ID, symtab.NamespaceOrdinary); sym != nil && p.isRegisterSymbol(sym) {
			p.error(n, KindConstraintViolation, "address of register-storage object requested")
			p.fail(n)
			return
		}
	}
	n.Type = ctype.MakePointer(n.Operand.Type)
}

// isRegisterSymbol reports whether sym was declared with the register
// storage class, per the per-Pass side table decl.go populates.
func (p *Pass) isRegisterSymbol(sym *symtab.Symbol) bool {
	return p.registerSymbols[sym]
}

func (p *Pass) decorateDereference(n *ast.Node) {
	p.DecorateExpression(n.Operand)
	t := decayed(n.Operand.Type)
	if t.Class != ctype.Pointer {
		if !t.IsError() {
			p.error(n, KindTypeMismatch, "indirection requires a pointer operand")
		}
		p.fail(n)
		return
	}
	n.Type = t.Elem
}

func (p *Pass) decorateUnaryArith(n *ast.Node) {
	p.DecorateExpression(n.Operand)
	t := n.Operand.Type
	if !t.IsArithmetic() {
		p.error(n, KindTypeMismatch, "unary +/- requires an arithmetic operand")
		p.fail(n)
		return
	}
	if t.IsInteger() {
		n.Type = ctype.IntegerPromotions(t)
	} else {
		n.Type = ctype.Unqualified(t)
	}
}

func (p *Pass) decorateComplement(n *ast.Node) {
	p.DecorateExpression(n.Operand)
	t := n.Operand.Type
	if !t.IsInteger() {
		p.error(n, KindTypeMismatch, "~ requires an integer operand")
		p.fail(n)
		return
	}
	n.Type = ctype.IntegerPromotions(t)
}

func (p *Pass) decorateSizeof(n *ast.Node) {
	n.Type = ctype.Basic(ctype.UnsignedLong)
	var t *ctype.Type
	if n.Kind == ast.KindSizeofTypeExpression {
		t = n.TypeName.Type
	} else {
		p.DecorateExpression(n.Operand)
		t = n.Operand.Type
	}
	if t == nil || !t.IsObjectType() || !t.IsComplete() {
		p.error(n, KindConstraintViolation, "sizeof of an incomplete or non-object type")
		p.fail(n)
	}
}

func (p *Pass) decorateCast(n *ast.Node) {
	p.DecorateExpression(n.Operand)
	t := n.CastType.Type
	n.Type = t
	if t.IsVoid() {
		return
	}
	if !t.IsScalar() {
		p.error(n, KindTypeMismatch, "cast target must be void, arithmetic, or pointer")
		p.fail(n)
	}
}

func (p *Pass) decorateMultiplicative(n *ast.Node) {
	p.DecorateExpression(n.LHS)
	p.DecorateExpression(n.RHS)
	if !n.LHS.Type.IsArithmetic() || !n.RHS.Type.IsArithmetic() {
		p.error(n, KindTypeMismatch, "multiplicative operator requires arithmetic operands")
		p.fail(n)
		return
	}
	if n.Kind == ast.KindModularExpression && (n.LHS.Type.IsFloating() || n.RHS.Type.IsFloating()) {
		p.error(n, KindTypeMismatch, "% requires integer operands")
		p.fail(n)
		return
	}
	n.Type = ctype.UsualArithmeticConversionsResultType(n.LHS.Type, n.RHS.Type)
}

func (p *Pass) decorateAdditive(n *ast.Node) {
	p.DecorateExpression(n.LHS)
	p.DecorateExpression(n.RHS)
	lt, rt := decayed(n.LHS.Type), decayed(n.RHS.Type)
	switch {
	case lt.IsArithmetic() && rt.IsArithmetic():
		n.Type = ctype.UsualArithmeticConversionsResultType(lt, rt)
	case lt.Class == ctype.Pointer && rt.IsInteger():
		n.Type = lt
	case n.Kind == ast.KindAdditionExpression && lt.IsInteger() && rt.Class == ctype.Pointer:
		n.Type = rt
	case n.Kind == ast.KindSubtractionExpression && lt.Class == ctype.Pointer && rt.Class == ctype.Pointer:
		if !ctype.CompatibleIgnoringQualifiers(lt.Elem, rt.Elem) {
			p.error(n, KindTypeMismatch, "pointer subtraction requires compatible pointee types")
			p.fail(n)
			return
		}
		n.Type = ctype.Basic(ctype.Long)
	default:
		p.error(n, KindTypeMismatch, "invalid operands to additive operator")
		p.fail(n)
	}
}

func (p *Pass) decorateShift(n *ast.Node) {
	p.DecorateExpression(n.LHS)
	p.DecorateExpression(n.RHS)
	if !n.LHS.Type.IsInteger() || !n.RHS.Type.IsInteger() {
		p.error(n, KindTypeMismatch, "shift requires integer operands")
		p.fail(n)
		return
	}
	n.Type = ctype.IntegerPromotions(n.LHS.Type)
}

func (p *Pass) decorateRelational(n *ast.Node) {
	p.DecorateExpression(n.LHS)
	p.DecorateExpression(n.RHS)
	n.Type = ctype.Basic(ctype.Int)
	lt, rt := decayed(n.LHS.Type), decayed(n.RHS.Type)
	switch {
	case lt.IsArithmetic() && rt.IsArithmetic():
	case lt.Class == ctype.Pointer && rt.Class == ctype.Pointer:
		if isEqualityKind(n.Kind) {
			if lt.Elem.IsVoid() || rt.Elem.IsVoid() {
				break
			}
			if constexpr.IsNullPointerConstant(n.LHS) || constexpr.IsNullPointerConstant(n.RHS) {
				break
			}
		}
		if !ctype.CompatibleIgnoringQualifiers(lt.Elem, rt.Elem) {
			p.error(n, KindTypeMismatch, "comparison of incompatible pointer types")
			p.fail(n)
		}
	case isEqualityKind(n.Kind) && lt.Class == ctype.Pointer && constexpr.IsNullPointerConstant(n.RHS):
	case isEqualityKind(n.Kind) && rt.Class == ctype.Pointer && constexpr.IsNullPointerConstant(n.LHS):
	default:
		p.error(n, KindTypeMismatch, "invalid operands to relational/equality operator")
		p.fail(n)
	}
}

func isEqualityKind(k ast.Kind) bool {
	return k == ast.KindEqualityExpression || k == ast.KindInequalityExpression
}

func (p *Pass) decorateBitwise(n *ast.Node) {
	p.DecorateExpression(n.LHS)
	p.DecorateExpression(n.RHS)
	if !n.LHS.Type.IsInteger() || !n.RHS.Type.IsInteger() {
		p.error(n, KindTypeMismatch, "bitwise operator requires integer operands")
		p.fail(n)
		return
	}
	n.Type = ctype.UsualArithmeticConversionsResultType(n.LHS.Type, n.RHS.Type)
}

func (p *Pass) decorateLogical(n *ast.Node) {
	p.DecorateExpression(n.LHS)
	p.DecorateExpression(n.RHS)
	n.Type = ctype.Basic(ctype.Int)
	if !n.LHS.Type.IsScalar() || !n.RHS.Type.IsScalar() {
		p.error(n, KindTypeMismatch, "&&/|| requires scalar operands")
		p.fail(n)
	}
}

// decorateConditional computes the composite type across the two branches,
// including null-pointer and void* rules, per ISO 6.5.15.
func (p *Pass) decorateConditional(n *ast.Node) {
	p.DecorateExpression(n.Cond)
	p.DecorateExpression(n.Then)
	p.DecorateExpression(n.Else)
	if !n.Cond.Type.IsScalar() {
		p.error(n, KindTypeMismatch, "conditional's controlling expression must be scalar")
		p.fail(n)
		return
	}
	lt, rt := decayed(n.Then.Type), decayed(n.Else.Type)
	switch {
	case lt.IsArithmetic() && rt.IsArithmetic():
		n.Type = ctype.UsualArithmeticConversionsResultType(lt, rt)
	case lt.Class == ctype.Struct && rt.Class == ctype.Struct, lt.Class == ctype.Union && rt.Class == ctype.Union:
		if !ctype.Compatible(lt, rt) {
			p.error(n, KindTypeMismatch, "conditional branches have incompatible struct/union types")
			p.fail(n)
			return
		}
		n.Type = lt
	case lt.IsVoid() && rt.IsVoid():
		n.Type = lt
	case lt.Class == ctype.Pointer && constexpr.IsNullPointerConstant(n.Else):
		n.Type = lt
	case rt.Class == ctype.Pointer && constexpr.IsNullPointerConstant(n.Then):
		n.Type = rt
	case lt.Class == ctype.Pointer && rt.Class == ctype.Pointer:
		if lt.Elem.IsVoid() {
			n.Type = ctype.MakePointer(rt.Elem)
		} else if rt.Elem.IsVoid() {
			n.Type = ctype.MakePointer(lt.Elem)
		} else if ctype.CompatibleIgnoringQualifiers(lt.Elem, rt.Elem) {
			n.Type = ctype.MakePointer(ctype.Qualified(ctype.Compose(lt.Elem, rt.Elem), lt.Elem.Qualifiers|rt.Elem.Qualifiers))
		} else {
			p.error(n, KindTypeMismatch, "conditional branches have incompatible pointer types")
			p.fail(n)
		}
	default:
		p.error(n, KindTypeMismatch, "conditional branches have incompatible types")
		p.fail(n)
	}
}

func (p *Pass) decorateAssignment(n *ast.Node) {
	p.DecorateExpression(n.Target)
	p.DecorateExpression(n.Value)
	lt := n.Target.Type
	n.Type = ctype.Unqualified(lt)
	rt := decayIfNeeded(n.Value.Type, ctype.ContextOrdinary)
	if !CanAssign(lt, rt, n.Value) {
		p.error(n, KindTypeMismatch, "assignment to incompatible type")
		p.fail(n)
	}
}

// decorateCompoundAssignment treats "a op= b" as "a = a op b" for typing
// purposes, per the usual desugaring; the backend lowers it directly rather
// than rewriting the tree.
func (p *Pass) decorateCompoundAssignment(n *ast.Node) {
	p.DecorateExpression(n.Target)
	p.DecorateExpression(n.Value)
	lt := n.Target.Type
	rt := decayIfNeeded(n.Value.Type, ctype.ContextOrdinary)
	n.Type = ctype.Unqualified(lt)
	isPtrOp := n.Kind == ast.KindAdditionAssignmentExpression || n.Kind == ast.KindSubtractionAssignmentExpression
	if lt.Class == ctype.Pointer && isPtrOp && rt.IsInteger() {
		return
	}
	if !lt.IsArithmetic() || !rt.IsArithmetic() {
		p.error(n, KindTypeMismatch, "compound assignment requires arithmetic operands")
		p.fail(n)
	}
}
