package analyzer

import (
	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/constexpr"
	"github.com/ripleymj/ecc/ctype"
)

// CanAssign implements the six-condition assignability relation of ISO
// 6.5.16.1p1.
func CanAssign(lhs, rhs *ctype.Type, rhsExpr *ast.Node) bool {
	if lhs == nil || rhs == nil {
		return false
	}
	if lhs.IsError() || rhs.IsError() {
		return true
	}

	// (1) both arithmetic
	if lhs.IsArithmetic() && rhs.IsArithmetic() {
		return true
	}

	// (2) compatible struct/union ignoring qualifiers
	if (lhs.Class == ctype.Struct || lhs.Class == ctype.Union) && lhs.Class == rhs.Class {
		return ctype.CompatibleIgnoringQualifiers(lhs, rhs)
	}

	// (6) lhs is _Bool and rhs is any pointer
	if lhs.Class == ctype.Bool && rhs.Class == ctype.Pointer {
		return true
	}

	if lhs.Class == ctype.Pointer {
		// (5) rhs is a null pointer constant
		if rhsExpr != nil && constexpr.IsNullPointerConstant(rhsExpr) {
			return true
		}
		if rhs.Class != ctype.Pointer {
			return false
		}
		// (4) one side void*, other object/incomplete pointer, with
		// qualifier superset still required.
		if lhs.Elem.IsVoid() != rhs.Elem.IsVoid() {
			if !qualifierSuperset(lhs.Elem.Qualifiers, rhs.Elem.Qualifiers) {
				return false
			}
			return true
		}
		// (3) both pointers to compatible types, lhs qualifiers superset
		if !qualifierSuperset(lhs.Elem.Qualifiers, rhs.Elem.Qualifiers) {
			return false
		}
		return ctype.CompatibleIgnoringQualifiers(lhs.Elem, rhs.Elem)
	}

	return false
}

func qualifierSuperset(lhs, rhs ctype.Qualifier) bool {
	return lhs&rhs == rhs
}
