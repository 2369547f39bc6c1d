package analyzer

import (
	"fmt"
	"math"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

// synthesizeCompoundLiteral installs a static-duration symbol named
// "__cl<n>" for n and elaborates its initializer against ct.
func (p *Pass) synthesizeCompoundLiteral(n *ast.Node, ct *ctype.Type) *symtab.Symbol {
	name := fmt.Sprintf("__cl%d", p.clCounter)
	p.clCounter++
	sym := symtab.NewObjectSymbol(name, ct, n, symtab.DeclContext{AtFileScope: true})
	sym.Duration = symtab.DurationStatic
	p.FileScope.Add(name, symtab.NamespaceOrdinary, sym)

	if n.Initializer != nil {
		diags := p.elaborateInitializer(n.Initializer, ct)
		for _, d := range diags {
			p.error(d.Node, KindOutOfBoundsInitializer, d.Message)
		}
		if ct.IsComplete() {
			sym.Data = make([]byte, ct.Size())
			p.emitStaticImage(n.Initializer, sym, 0)
		}
	}
	return sym
}

// synthesizeStringLiteral installs a static-duration symbol named
// "__sl<n>" holding the literal's bytes (plus terminating NUL).
func (p *Pass) synthesizeStringLiteral(n *ast.Node) *symtab.Symbol {
	name := fmt.Sprintf("__sl%d", p.slCounter)
	p.slCounter++
	sym := symtab.NewObjectSymbol(name, n.Type, n, symtab.DeclContext{AtFileScope: true})
	sym.Duration = symtab.DurationStatic
	sym.Data = append(append([]byte(nil), n.StringValue...), 0)
	p.FileScope.Add(name, symtab.NamespaceOrdinary, sym)
	return sym
}

// synthesizeFloatingConstant installs a static-duration symbol named
// "__fc<n>" holding the constant's bit pattern, since floating-point
// literals are loaded from memory on this target rather than materialized
// with an immediate move.
func (p *Pass) synthesizeFloatingConstant(n *ast.Node) *symtab.Symbol {
	name := fmt.Sprintf("__fc%d", p.fcCounter)
	p.fcCounter++
	t := ctype.Basic(ctype.Double)
	sym := symtab.NewObjectSymbol(name, t, n, symtab.DeclContext{AtFileScope: true})
	sym.Duration = symtab.DurationStatic
	sym.Data = float64Bytes(n.FloatValue)
	p.FileScope.Add(name, symtab.NamespaceOrdinary, sym)
	return sym
}

func float64Bytes(v float64) []byte {
	bits := math.Float64bits(v)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
	return b
}
