package analyzer

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/constexpr"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/internal/elog"
	"github.com/ripleymj/ecc/symtab"
)

// Analyze runs the full semantic pass over a translation unit: it walks
// every top-level declaration and function definition, then promotes
// remaining tentative definitions.
//
// A panic during traversal is treated as an internal invariant failure:
// it is wrapped with its triggering cause, recorded as one
// AnalysisError, and the pass aborts at that point rather than continuing:
// the one failure category this pass does not recover from.
func (p *Pass) Analyze(tu *ast.Node) (err error) {
	elog.Trace().Debug("analysis pass starting")
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = errors.Wrap(cause, "analyzer: internal invariant failure")
			p.Errors = append(p.Errors, AnalysisError{Message: err.Error(), Kind: KindInternalInvariantFailure})
		}
	}()
	for _, child := range tu.Children {
		p.analyzeTopLevel(child)
	}
	p.FinalizeTentativeDefinitions()
	elog.Trace().Debugw("analysis pass finished", "errors", len(p.Errors))
	return nil
}

func (p *Pass) analyzeTopLevel(n *ast.Node) {
	switch n.Kind {
	case ast.KindDeclaration:
		p.analyzeDeclaration(n)
	case ast.KindFunctionDefinition:
		p.analyzeFunctionDefinition(n)
	}
}

func (p *Pass) analyzeDeclaration(n *ast.Node) {
	for _, spec := range n.DeclSpecifiers {
		p.analyzeTagSpecifier(spec)
	}
	for _, id := range n.InitDeclarators {
		declarator := id.Declarator
		if declarator == nil {
			declarator = id
		}
		t := declarator.Type
		if t == nil {
			t = ctype.MakeError()
		}
		p.DeclareObject(n.DeclSpecifiers, declarator, id.Initializer, t)
	}
}

// analyzeTagSpecifier processes a struct/union/enum specifier appearing
// among a declaration's specifiers: struct/union specifiers get their
// members validated; enum specifiers get their enumerator values computed.
func (p *Pass) analyzeTagSpecifier(spec *ast.Node) {
	switch spec.Kind {
	case ast.KindStructUnionSpecifier:
		if len(spec.Members) > 0 {
			p.analyzeAggregateTag(spec)
		}
	case ast.KindEnumSpecifier:
		if spec.Type != nil {
			spec.Type.Enumerators = p.ComputeEnumeratorValues(spec)
		}
	}
}

func (p *Pass) analyzeAggregateTag(n *ast.Node) {
	isUnion := n.Kind == ast.KindStructUnionSpecifier && n.ID == "union"
	var members []ctype.Member
	for _, m := range n.Members {
		width := -1
		if m.BitWidthExpr != nil {
			p.DecorateExpression(m.BitWidthExpr)
			r := constexpr.EvaluateInteger(m.BitWidthExpr)
			if !r.Succeeded() {
				p.error(m.BitWidthExpr, KindConstantExpressionRequired, "bit-field width must be an integer constant expression")
			} else {
				width = int(r.AsI64())
				if width < 0 {
					p.error(m.BitWidthExpr, KindConstraintViolation, "bit-field width may not be negative")
					width = -1
				}
			}
		}
		members = append(members, ctype.Member{Name: m.ID, Type: m.Type, BitWidth: width})
	}
	p.CheckStructMembers(n, members, isUnion)
}

func (p *Pass) analyzeFunctionDefinition(n *ast.Node) {
	ft := n.Type
	if ft == nil {
		ft = ctype.MakeError()
		n.Type = ft
	}
	p.CheckFunctionDefinitionShape(n, ft)

	ctx := symtab.DeclContext{AtFileScope: true, IsFunction: true, StorageClass: storageClassOf(n.DeclSpecifiers)}
	sym := symtab.NewObjectSymbol(n.ID, ft, n, ctx)
	sym.Defined = true
	p.FileScope.Add(n.ID, symtab.NamespaceOrdinary, sym)

	outer := p.scope
	p.pushScope()
	for i, param := range n.Params {
		if param.ID == "" {
			continue
		}
		paramType := ft.Return // placeholder overwritten below if params carry types
		if i < len(ft.Params) {
			paramType = ft.Params[i]
		}
		psym := symtab.NewObjectSymbol(param.ID, paramType, param, symtab.DeclContext{})
		psym.Defined = true
		p.scope.Add(param.ID, symtab.NamespaceOrdinary, psym)
	}
	if n.FunctionBody != nil {
		p.walkStatement(n.FunctionBody)
	}
	p.popScope(outer)
}

func storageClassOf(specs []*ast.Node) symtab.StorageClass {
	classes := storageClassSpecifiers(specs)
	if len(classes) == 0 {
		return symtab.StorageClassNone
	}
	return toStorageClass(classes[0])
}

// walkStatement performs the pre/post traversal over a statement subtree:
// expressions are decorated bottom-up and compound statements introduce a
// new scope. if, while, do, for, return, continue, break and goto
// statements are passed to CheckStatement once their own expressions are
// decorated and before any body is walked; a switch is checked after its
// body. Compound and labeled statements are not passed to CheckStatement.
func (p *Pass) walkStatement(n *ast.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.KindCompoundStatement:
		outer := p.scope
		p.pushScope()
		for _, child := range n.Children {
			if child.Kind == ast.KindDeclaration {
				p.analyzeDeclaration(child)
			} else {
				p.walkStatement(child)
			}
		}
		p.popScope(outer)
	case ast.KindIfStatement:
		p.DecorateExpression(n.Cond)
		p.CheckStatement(n)
		p.walkStatement(n.Body)
		p.walkStatement(n.Body2)
	case ast.KindWhileStatement, ast.KindDoStatement:
		p.DecorateExpression(n.Cond)
		p.CheckStatement(n)
		p.walkStatement(n.Body)
	case ast.KindForStatement:
		// A for-init declaration's identifiers scope to the loop (6.8.5p5).
		outer := p.scope
		p.pushScope()
		if n.Init != nil {
			if n.Init.Kind == ast.KindDeclaration {
				p.analyzeDeclaration(n.Init)
			} else {
				p.DecorateExpression(n.Init)
			}
		}
		if n.Cond != nil {
			p.DecorateExpression(n.Cond)
		}
		if n.Post != nil {
			p.DecorateExpression(n.Post)
		}
		p.CheckStatement(n)
		p.walkStatement(n.Body)
		p.popScope(outer)
	case ast.KindSwitchStatement:
		p.DecorateExpression(n.Cond)
		p.walkStatement(n.Body)
		p.CheckStatement(n)
	case ast.KindLabeledStatement:
		if n.CaseValue != nil {
			p.DecorateExpression(n.CaseValue)
		}
		p.walkStatement(n.Body)
	case ast.KindReturnStatement:
		if n.Value != nil {
			p.DecorateExpression(n.Value)
		}
		p.CheckStatement(n)
	case ast.KindContinueStatement, ast.KindBreakStatement, ast.KindGotoStatement:
		p.CheckStatement(n)
	default:
		// bare expression statement
		p.DecorateExpression(n)
	}
}
