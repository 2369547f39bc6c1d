package analyzer

import (
	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/constexpr"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/initializer"
	"github.com/ripleymj/ecc/symtab"
)

// elaborateInitializer decorates syn's leaves before delegating to
// initializer.Elaborate, since elaboration needs every leaf's type already
// assigned to decide scalar/char-array enclosure.
func (p *Pass) elaborateInitializer(syn *ast.Node, ct *ctype.Type) []initializer.Diagnostic {
	p.decorateInitializerLeaves(syn)
	if syn.Kind != ast.KindInitializerList {
		// A scalar expression or a string literal initializing an array:
		// no list walk is needed, but an unspecified char/wchar array's
		// length is still fixed by the literal (bytes plus the NUL).
		if syn.Kind == ast.KindStringLiteral && ct.Class == ctype.Array &&
			ct.ArrayLengthKind == ctype.LengthUnspecified {
			ct.ArrayLength = int64(len(syn.StringValue)) + 1
			ct.ArrayLengthKind = ctype.LengthKnown
		}
		syn.InitializerOffset = 0
		syn.InitializerCtype = ct
		return nil
	}
	return initializer.Elaborate(syn, ct)
}

func (p *Pass) decorateInitializerLeaves(syn *ast.Node) {
	if syn.Kind == ast.KindInitializerList {
		for _, init := range syn.Initializers {
			p.decorateInitializerLeaves(init)
		}
		return
	}
	p.DecorateExpression(syn)
}

// emitStaticImage wires the resolved-symbol address-constant path into
// initializer.EmitStatic: the analyzer is the only package that knows how
// to turn "&x" into a resolved symtab.Symbol, so it supplies the string-byte
// accessor here rather than inside the initializer package.
func (p *Pass) emitStaticImage(syn *ast.Node, sym *symtab.Symbol, base int64) {
	diags := initializer.EmitStatic(syn, sym, base, p.stringLiteralBytes)
	for _, d := range diags {
		p.error(d.Node, KindConstantExpressionRequired, d.Message)
	}
}

func (p *Pass) stringLiteralBytes(n *ast.Node) []byte {
	if n.Kind != ast.KindStringLiteral {
		return nil
	}
	return append(append([]byte(nil), n.StringValue...), 0)
}

// evaluateDesignatorIndex implements initializer.SetIndexEvaluator: folds an
// array designator's index expression to an integer constant.
func (p *Pass) evaluateDesignatorIndex(n *ast.Node) *int64 {
	p.DecorateExpression(n)
	r := constexpr.EvaluateInteger(n)
	if !r.Succeeded() {
		return nil
	}
	v := r.AsI64()
	return &v
}

// resolveAddressOperand folds "&identifier" (optionally offset by a
// constant) to an address constant against the symbol table, used by
// static-initializer evaluation for pointer-valued initializers.
func (p *Pass) resolveAddressOperand(n *ast.Node) (*symtab.Symbol, bool) {
	switch n.Kind {
	case ast.KindPrimaryExpressionIdentifier:
		sym := p.scope.Lookup(n.ID, symtab.NamespaceOrdinary)
		return sym, sym != nil
	case ast.KindStringLiteral:
		return p.symbolFor(n), true
	case ast.KindCompoundLiteral:
		return p.symbolFor(n), true
	case ast.KindSubscriptExpression:
		return p.resolveAddressOperand(n.Primary)
	}
	return nil, false
}

func (p *Pass) symbolFor(n *ast.Node) *symtab.Symbol {
	sym, _ := p.FileScope.GetBySyntax(n)
	return sym
}
