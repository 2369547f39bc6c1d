// Package analyzer implements the semantic analysis pass: a generic
// pre/post traversal over the syntax tree that decorates every expression
// with a type, processes declarations, computes enumerator values, checks
// statement constraints, and synthesizes compound-literal/string-literal/
// floating-constant symbols.
package analyzer

import (
	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/initializer"
	"github.com/ripleymj/ecc/internal/elog"
	"github.com/ripleymj/ecc/symtab"
)

// ErrorKind taxonomizes a diagnostic.
type ErrorKind int

const (
	KindTypeMismatch ErrorKind = iota
	KindUndeclaredIdentifier
	KindRedeclarationConflict
	KindConstraintViolation
	KindConstantExpressionRequired
	KindOutOfBoundsInitializer
	KindUnsupportedConstruct
	KindInternalInvariantFailure
)

// AnalysisError is one diagnostic produced by the pass.
type AnalysisError struct {
	Row       int
	Col       int
	Message   string
	Kind      ErrorKind
	IsWarning bool
}

// Pass owns every piece of state a single translation unit's analysis
// mutates: the error list, the scope stack, and the monotonic counters for
// synthesized names.
type Pass struct {
	Errors []AnalysisError

	FileScope *symtab.Scope
	scope     *symtab.Scope

	clCounter int
	slCounter int
	fcCounter int

	// vaList is the struct symbol __ecc_va_list intrinsic calls reference.
	vaList *symtab.Symbol

	// tentative collects file-scope object symbols declared without an
	// initializer, promoted to defined at FinalizeTentativeDefinitions.
	tentative []*symtab.Symbol

	// registerSymbols marks which object symbols were declared with the
	// register storage class, consulted by decorateAddressOf's constraint
	// check. Lives on Pass so it never outlives one translation unit.
	registerSymbols map[*symtab.Symbol]bool
}

// New creates a Pass with a fresh file scope and installs the initializer
// package's designator-index evaluator and address resolver; the
// __ecc_va_list symbol is bound separately through BindVaList.
func New() *Pass {
	file := symtab.NewScope(nil)
	p := &Pass{FileScope: file, scope: file, registerSymbols: make(map[*symtab.Symbol]bool)}
	initializer.SetIndexEvaluator(p.evaluateDesignatorIndex)
	initializer.SetAddressResolver(p.resolveAddressOperand)
	return p
}

func (p *Pass) error(n *ast.Node, kind ErrorKind, msg string) {
	row, col := 0, 0
	if n != nil {
		row, col = n.Row, n.Col
	}
	p.Errors = append(p.Errors, AnalysisError{Row: row, Col: col, Message: msg, Kind: kind})
	elog.Trace().Debugw("analysis error", "row", row, "col", col, "kind", kind, "message", msg)
}

func (p *Pass) warn(n *ast.Node, kind ErrorKind, msg string) {
	row, col := 0, 0
	if n != nil {
		row, col = n.Row, n.Col
	}
	p.Errors = append(p.Errors, AnalysisError{Row: row, Col: col, Message: msg, Kind: kind, IsWarning: true})
}

func (p *Pass) fail(n *ast.Node) {
	n.Type = ctype.MakeError()
}

// pushScope/popScope implement block-scope nesting for compound statements
// and function bodies.
func (p *Pass) pushScope() *symtab.Scope {
	p.scope = symtab.NewScope(p.scope)
	return p.scope
}

func (p *Pass) popScope(outer *symtab.Scope) {
	p.scope = outer
}

func (p *Pass) atFileScope() bool {
	return p.scope == p.FileScope
}

// BindVaList installs the struct symbol the intrinsic-call checker
// validates __ecc_va_arg/__ecc_va_start/__ecc_va_end's first argument
// against.
func (p *Pass) BindVaList(sym *symtab.Symbol) {
	p.vaList = sym
}

// FinalizeTentativeDefinitions promotes every file-scope tentative object
// symbol still undefined at end-of-translation-unit to a zero-initialized
// definition, in declaration order, as ISO 6.9.2p2 requires.
func (p *Pass) FinalizeTentativeDefinitions() {
	for _, sym := range p.tentative {
		if sym.Defined {
			continue
		}
		if sym.Data == nil {
			sym.Data = make([]byte, sym.Type.Size())
		}
		sym.Defined = true
	}
}
