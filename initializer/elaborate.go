// Package initializer elaborates an initializer-list syntax node against a
// target type, assigning every leaf a (target type, byte offset) pair and,
// for static-duration objects, writing a byte image with relocations.
package initializer

import (
	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
)

// Diagnostic is one error produced while elaborating; the caller (the
// analyzer) is responsible for turning these into AnalysisErrors; this
// package has no dependency on the analyzer's error list so it can be
// tested standalone.
type Diagnostic struct {
	Node    *ast.Node
	Message string
}

type frame struct {
	containerType *ctype.Type
	elementIndex  int64
}

// Elaborate walks syn (a KindInitializerList node) against target ct, assigning
// InitializerOffset/InitializerCtype to every leaf and InlistHasSemantics
// to every list node touched, maintaining a container-type stack and an
// element-index stack that designators reset and plain initializers advance.
// If ct is an array of unspecified length, ct.ArrayLength is finalized to
// the running maximum element count (one past the highest element index
// touched) once elaboration completes.
func Elaborate(syn *ast.Node, ct *ctype.Type) []Diagnostic {
	if syn.InlistHasSemantics {
		return nil
	}
	syn.InlistHasSemantics = true

	var diags []Diagnostic
	report := func(n *ast.Node, msg string) {
		diags = append(diags, Diagnostic{Node: n, Message: msg})
	}

	cotStack := []frame{{containerType: ct}}
	var offset int64
	var maxLen int64 = 1

	for i, init := range syn.Initializers {
		desig := (*ast.Node)(nil)
		if i < len(syn.Designators) {
			desig = syn.Designators[i]
		}

		if desig != nil {
			offset = 0
			cotStack = []frame{{containerType: ct}}
			nav := ct
			ok := true
			for _, d := range desig.DesignatorChain {
				cotStack = append(cotStack, frame{containerType: nav})
				if d.IsMember {
					if nav.Class != ctype.Struct && nav.Class != ctype.Union {
						report(desig, "struct initialization designators may not be used to initialize non-struct and non-union types")
						ok = false
						break
					}
					off, idx := nav.MemberOffset(d.Member)
					if idx == -1 {
						report(desig, "struct initialization designators must specify a valid member of the struct or union it is initializing")
						ok = false
						break
					}
					cotStack[len(cotStack)-1].elementIndex = int64(idx)
					offset += off
					nav = nav.Members[idx].Type
				} else {
					if nav.Class != ctype.Array {
						report(desig, "array initialization designators may not be used to initialize non-array types")
						ok = false
						break
					}
					ce := evaluateIndex(d.Index)
					if ce == nil {
						report(desig, "array initialization designators must have a constant expression for its index")
						ok = false
						break
					}
					if *ce < 0 {
						report(desig, "array initialization designators must have a non-negative index")
						ok = false
						break
					}
					cotStack[len(cotStack)-1].elementIndex = *ce
					offset += nav.Elem.Size() * *ce
					nav = nav.Elem
				}
			}
			if !ok {
				continue
			}
		}

		top := &cotStack[len(cotStack)-1]
		if top.containerType == nil {
			init.InitializerOffset = -1
			report(init, "this initializer and any after it would write outside the object being initialized")
			break
		}

		ei := top.elementIndex
		cot := top.containerType
		var et *ctype.Type
		if cot.Class == ctype.Array {
			et = cot.Elem
		} else {
			et = cot.Members[ei].Type
		}

		if !et.IsObjectType() || (et.Class == ctype.Array && et.IsVLA()) {
			report(init, "initialization target must be an object type or an array of unknown size that is not variable-length")
			return diags
		}

		isScalar := et.IsScalar()
		isCharArray := et.Class == ctype.Array && et.Elem.IsCharacter()

		alignment := et.Alignment()
		if alignment > 0 {
			offset += (alignment - (offset % alignment)) % alignment
		}
		init.InitializerOffset = offset

		leaf := init
		enclosed := false
		if leaf.Kind == ast.KindInitializerList && isScalar && len(leaf.Initializers) == 1 {
			leaf = leaf.Initializers[0]
			enclosed = true
		}
		if leaf.Kind == ast.KindInitializerList && isCharArray && len(leaf.Initializers) == 1 {
			if inner := leaf.Initializers[0]; inner.Kind == ast.KindStringLiteral && !inner.StringIsWide {
				leaf = inner
				enclosed = true
			}
		}

		if leaf.Kind == ast.KindInitializerList && !enclosed {
			diags = append(diags, Elaborate(leaf, et)...)
		} else {
			for et.Class == ctype.Struct || et.Class == ctype.Union || et.Class == ctype.Array {
				if et.Class == ctype.Array && et.Elem.IsCharacter() && leaf.Kind == ast.KindStringLiteral && !leaf.StringIsWide {
					break
				}
				cotStack = append(cotStack, frame{containerType: et})
				ei = 0
				cot = et
				if et.Class == ctype.Array {
					et = et.Elem
				} else {
					et = et.Members[0].Type
				}
			}
			leaf.InitializerCtype = et
		}

		offset += et.Size()

		for {
			ei++
			top = &cotStack[len(cotStack)-1]
			top.elementIndex = ei
			count := aggregateElementCount(cot)
			if count == -1 {
				if cot == ct && ei > maxLen {
					maxLen = ei
				}
				break
			}
			if ei >= count {
				cotStack = cotStack[:len(cotStack)-1]
				if len(cotStack) == 0 {
					// The object is full: a frame with no container makes the
					// next initializer report as out of bounds.
					cotStack = append(cotStack, frame{})
					break
				}
				cot = cotStack[len(cotStack)-1].containerType
				ei = cotStack[len(cotStack)-1].elementIndex
			} else {
				if i == len(syn.Initializers)-1 && cot != ct {
					maxLen++
				}
				break
			}
		}
	}

	if ct.Class == ctype.Array && ct.ArrayLengthKind == ctype.LengthUnspecified {
		ct.ArrayLength = maxLen
		ct.ArrayLengthKind = ctype.LengthKnown
	}

	return diags
}

func aggregateElementCount(ct *ctype.Type) int64 {
	switch ct.Class {
	case ctype.Union:
		return 1
	case ctype.Struct:
		return int64(len(ct.Members))
	case ctype.Array:
		if ct.ArrayLengthKind != ctype.LengthKnown {
			return -1
		}
		return ct.ArrayLength
	}
	return 0
}

// evaluateIndex is a seam for the constant-expression evaluator; wired by
// the analyzer via SetIndexEvaluator to avoid an import cycle between
// initializer and constexpr's ast-dependent symbol resolution.
var indexEvaluator func(*ast.Node) *int64 = defaultIndexEvaluator

func defaultIndexEvaluator(n *ast.Node) *int64 {
	if n == nil || n.Type == nil {
		return nil
	}
	v := n.IntValue
	return &v
}

func evaluateIndex(n *ast.Node) *int64 {
	return indexEvaluator(n)
}

// SetIndexEvaluator installs the real constant-expression-backed evaluator
// used for array designator indices.
func SetIndexEvaluator(f func(*ast.Node) *int64) {
	indexEvaluator = f
}
