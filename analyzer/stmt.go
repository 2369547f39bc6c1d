package analyzer

import (
	"fmt"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/constexpr"
	"github.com/ripleymj/ecc/ctype"
)

// CheckStatement validates the ISO 6.8 constraints for one statement
// node. Every subexpression reachable from n must already be
// decorated by the caller's traversal.
func (p *Pass) CheckStatement(n *ast.Node) {
	switch n.Kind {
	case ast.KindIfStatement, ast.KindWhileStatement, ast.KindDoStatement:
		p.requireScalarController(n.Cond)
	case ast.KindForStatement:
		if n.Cond != nil {
			p.requireScalarController(n.Cond)
		}
		p.checkForInitDeclaration(n.Init)
	case ast.KindSwitchStatement:
		p.checkSwitch(n)
	case ast.KindContinueStatement:
		if ast.NearestLoop(n) == nil {
			p.error(n, KindConstraintViolation, "continue statement not within a loop")
		}
	case ast.KindBreakStatement:
		if ast.NearestLoopOrSwitch(n) == nil {
			p.error(n, KindConstraintViolation, "break statement not within a loop or switch")
		}
	case ast.KindReturnStatement:
		p.checkReturn(n)
	case ast.KindGotoStatement, ast.KindLabeledStatement, ast.KindCompoundStatement:
		// no type constraint of their own; label uniqueness is not checked:
		// no pass records labels in the label namespace.
	}
}

// checkForInitDeclaration enforces ISO 6.8.5p3: a declaration in a for
// statement's init clause may only declare identifiers of storage class
// auto or register.
func (p *Pass) checkForInitDeclaration(init *ast.Node) {
	if init == nil || init.Kind != ast.KindDeclaration {
		return
	}
	for _, class := range storageClassSpecifiers(init.DeclSpecifiers) {
		if class != "auto" && class != "register" {
			p.error(init, KindConstraintViolation, "declaration in a for statement's init clause may only use auto or register storage")
		}
	}
}

func (p *Pass) requireScalarController(cond *ast.Node) {
	if cond.Type == nil || !cond.Type.IsScalar() {
		p.error(cond, KindTypeMismatch, "controlling expression must have scalar type")
	}
}

// checkSwitch validates the controller is an integer type and scans the
// switch's immediate body (not descending into nested switches) for
// duplicate case values or more than one default label. An outer switch's
// case set does not include an inner switch's labels.
func (p *Pass) checkSwitch(n *ast.Node) {
	if n.Cond.Type == nil || !n.Cond.Type.IsInteger() {
		p.error(n.Cond, KindTypeMismatch, "switch controller must have integer type")
	}
	seen := make(map[int64]bool)
	var defaults int
	var walk func(*ast.Node)
	walk = func(cur *ast.Node) {
		if cur == nil {
			return
		}
		if cur.Kind == ast.KindSwitchStatement && cur != n {
			return
		}
		if cur.Kind == ast.KindLabeledStatement {
			if cur.IsDefault {
				defaults++
				if defaults > 1 {
					p.error(cur, KindConstraintViolation, "multiple default labels in one switch")
				}
			} else if cur.CaseValue != nil {
				r := constexpr.EvaluateInteger(cur.CaseValue)
				if r.Succeeded() {
					v := r.AsI64()
					if seen[v] {
						p.error(cur, KindConstraintViolation, fmt.Sprintf("duplicate case value %d in switch", v))
					}
					seen[v] = true
				} else {
					p.error(cur.CaseValue, KindConstantExpressionRequired, "case label requires an integer constant expression")
				}
			}
		}
		for _, child := range cur.Children {
			walk(child)
		}
		if cur.Body != nil {
			walk(cur.Body)
		}
		if cur.Body2 != nil {
			walk(cur.Body2)
		}
	}
	walk(n.Body)
}

// checkReturn validates a return statement's value (if any) is assignable
// to the enclosing function's return type, and that void functions do not
// return a value while non-void functions do.
func (p *Pass) checkReturn(n *ast.Node) {
	fn := ast.NearestFunctionDefinition(n)
	if fn == nil {
		p.error(n, KindConstraintViolation, "return statement outside of a function")
		return
	}
	ret := fn.Type.Return
	if ret.IsVoid() {
		if n.Value != nil {
			p.error(n, KindConstraintViolation, "void function must not return a value")
		}
		return
	}
	if n.Value == nil {
		p.error(n, KindConstraintViolation, "non-void function must return a value")
		return
	}
	rt := decayIfNeeded(n.Value.Type, ctype.ContextOrdinary)
	if !CanAssign(ret, rt, n.Value) {
		p.error(n, KindTypeMismatch, "return value type does not match function return type")
	}
}
