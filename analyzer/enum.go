package analyzer

import (
	"math"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/constexpr"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

// ComputeEnumeratorValues assigns each enumerator in n.Enumerators its
// value: an explicit initializer folds to an integer constant expression;
// otherwise it is the previous enumerator's value plus one, or zero for the
// first with no initializer. Every value is bound in scope and must fit
// in int.
func (p *Pass) ComputeEnumeratorValues(n *ast.Node) []ctype.Enumerator {
	var out []ctype.Enumerator
	var next int64
	for _, e := range n.Enumerators {
		value := next
		if e.EnumeratorInit != nil {
			p.DecorateExpression(e.EnumeratorInit)
			r := constexpr.EvaluateInteger(e.EnumeratorInit)
			if !r.Succeeded() {
				p.error(e.EnumeratorInit, KindConstantExpressionRequired, "enumerator value must be an integer constant expression")
				value = next
			} else {
				value = r.AsI64()
			}
		}
		if value < math.MinInt32 || value > math.MaxInt32 {
			p.error(e, KindConstraintViolation, "enumerator value does not fit in int")
		}
		out = append(out, ctype.Enumerator{Name: e.ID, Value: value})
		next = value + 1

		sym := symtab.NewObjectSymbol(e.ID, ctype.Basic(ctype.Int), e, symtab.DeclContext{AtFileScope: p.atFileScope()})
		sym.Defined = true
		p.scope.Add(e.ID, symtab.NamespaceOrdinary, sym)
	}
	return out
}
