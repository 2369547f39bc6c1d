package initializer

import (
	"encoding/binary"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/constexpr"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

// EmitStatic writes the static image for syn (an elaborated initializer,
// possibly nested) into sym.Data at sym.Data[base:], appending relocation
// entries to sym.Relocs for any address constant encountered.
func EmitStatic(syn *ast.Node, sym *symtab.Symbol, base int64, stringBytes func(*ast.Node) []byte) []Diagnostic {
	var diags []Diagnostic

	if sb := stringLiteralInitializingArray(syn, stringBytes); sb != nil {
		copy(sym.Data[base:], sb)
		return diags
	}

	if syn.Kind != ast.KindInitializerList {
		r := evaluateStaticInitializer(syn)
		if !r.Succeeded() {
			diags = append(diags, Diagnostic{Node: syn, Message: "in static initialization: " + r.Message})
			return diags
		}
		switch r.Kind {
		case constexpr.KindInteger, constexpr.KindArithmetic:
			copy(sym.Data[base:], r.Bytes)
		case constexpr.KindAddress:
			sym.Relocs = append(sym.Relocs, symtab.Relocation{
				DataOffset:   base,
				TargetSymbol: r.Symbol,
				Addend:       signedOffset(r),
			})
			binary.LittleEndian.PutUint64(sym.Data[base:base+8], uint64(signedOffset(r)))
		}
		return diags
	}

	for _, init := range syn.Initializers {
		if init.InitializerOffset == -1 {
			continue
		}
		diags = append(diags, EmitStatic(init, sym, base+init.InitializerOffset, stringBytes)...)
	}
	return diags
}

func signedOffset(r constexpr.Result) int64 {
	if r.Negative {
		return -r.Offset
	}
	return r.Offset
}

// addressResolver is a seam for resolving an address-yielding operand (a
// bare identifier, string literal, compound literal, or a subscript on one
// of those) against the symbol table. Wired by the analyzer via
// SetAddressResolver, mirroring SetIndexEvaluator's seam for designator
// indices, to avoid an import cycle between initializer and the analyzer's
// scope-aware symbol resolution.
var addressResolver func(*ast.Node) (*symtab.Symbol, bool) = defaultAddressResolver

func defaultAddressResolver(n *ast.Node) (*symtab.Symbol, bool) {
	return nil, false
}

// SetAddressResolver installs the real symbol-table-backed resolver used to
// fold "&x" (with or without a pointer-arithmetic offset) to an address
// constant during static-initializer evaluation.
func SetAddressResolver(f func(*ast.Node) (*symtab.Symbol, bool)) {
	addressResolver = f
}

// resolveAddressExpr folds n to an address constant when it denotes (or, for
// "&operand", wraps) a resolvable static-storage object. Falls back to the
// ordinary evaluator otherwise.
func resolveAddressExpr(n *ast.Node) constexpr.Result {
	if n.Kind == ast.KindReferenceExpression {
		if sym, ok := addressResolver(n.Operand); ok {
			return constexpr.ResolveAddressConstant(sym, 0, nil, true)
		}
		return constexpr.Evaluate(n)
	}
	if sym, ok := addressResolver(n); ok {
		return constexpr.ResolveAddressConstant(sym, 0, nil, true)
	}
	return constexpr.Evaluate(n)
}

// evaluateStaticInitializer is the seam to the constant evaluator; handles
// address plus/minus integer-constant-offset shapes (e.g. "&x + 2"), a
// bare "&x", and plain arithmetic folds.
var evaluateStaticInitializer = func(n *ast.Node) constexpr.Result {
	switch n.Kind {
	case ast.KindAdditionExpression, ast.KindSubtractionExpression:
		lhsPtr := n.LHS.Type != nil && n.LHS.Type.Class == ctype.Pointer
		rhsPtr := n.Kind == ast.KindAdditionExpression && n.RHS.Type != nil && n.RHS.Type.Class == ctype.Pointer
		if lhsPtr || rhsPtr {
			ptrSide, offsetSide := n.LHS, n.RHS
			if rhsPtr {
				ptrSide, offsetSide = n.RHS, n.LHS
			}
			ptrResult := resolveAddressExpr(ptrSide)
			if ptrResult.Kind != constexpr.KindAddress {
				return ptrResult
			}
			elemSize := ptrSide.Type.Elem.Size()
			return constexpr.ResolveAddressConstant(ptrResult.Symbol, elemSize, offsetSide, n.Kind == ast.KindAdditionExpression)
		}
	case ast.KindReferenceExpression:
		return resolveAddressExpr(n)
	}
	return constexpr.Evaluate(n)
}

func stringLiteralInitializingArray(n *ast.Node, stringBytes func(*ast.Node) []byte) []byte {
	if n.Kind != ast.KindStringLiteral || stringBytes == nil {
		return nil
	}
	return stringBytes(n)
}
