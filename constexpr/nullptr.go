package constexpr

import "github.com/ripleymj/ecc/ast"

// IsNullPointerConstant implements the ISO 6.3.2.3p3 recognition rule: any
// integer constant expression evaluating to zero, or a cast of such to
// void* with no qualifiers.
func IsNullPointerConstant(n *node) bool {
	expr := n
	if expr == nil {
		return false
	}
	if expr.Kind == ast.KindCastExpression {
		if !isUnqualifiedVoidPointerCastType(expr.CastType) {
			return false
		}
		expr = expr.Operand
	}
	r := EvaluateInteger(expr)
	if !r.Succeeded() {
		return false
	}
	return r.AsU64() == 0
}

// isUnqualifiedVoidPointerCastType reports whether a type-name node spells
// exactly "void *" with no qualifiers on the pointer.
func isUnqualifiedVoidPointerCastType(typeName *node) bool {
	if typeName == nil || typeName.Type == nil {
		return false
	}
	t := typeName.Type
	return t.IsVoidPointer() && t.Qualifiers == 0 && t.Elem.Qualifiers == 0
}
