package analyzer

import (
	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

// storageClassSpecifiers returns every KindStorageClassSpecifier's keyword
// text out of specs (the declaration-specifier list), used both to enforce
// one-storage-class-per-declaration and to derive the symtab.StorageClass.
func storageClassSpecifiers(specs []*ast.Node) []string {
	var out []string
	for _, s := range specs {
		if s.Kind == ast.KindStorageClassSpecifier {
			out = append(out, s.ID)
		}
	}
	return out
}

func hasInlineSpecifier(specs []*ast.Node) bool {
	for _, s := range specs {
		if s.Kind == ast.KindStorageClassSpecifier && s.ID == "inline" {
			return true
		}
	}
	return false
}

func toStorageClass(keyword string) symtab.StorageClass {
	switch keyword {
	case "static":
		return symtab.StorageClassStatic
	case "extern":
		return symtab.StorageClassExtern
	case "auto":
		return symtab.StorageClassAuto
	case "register":
		return symtab.StorageClassRegister
	case "typedef":
		return symtab.StorageClassTypedef
	}
	return symtab.StorageClassNone
}

// DeclareObject processes one init-declarator: validates storage-class
// placement, creates or merges the symbol, and (if an initializer is
// present) elaborates it.
func (p *Pass) DeclareObject(declSpecs []*ast.Node, declarator *ast.Node, init *ast.Node, t *ctype.Type) *symtab.Symbol {
	classes := storageClassSpecifiers(declSpecs)
	if len(classes) > 1 {
		p.error(declarator, KindConstraintViolation, "declaration specifies more than one storage class")
	}
	class := symtab.StorageClassNone
	if len(classes) > 0 {
		class = toStorageClass(classes[0])
	}

	atFile := p.atFileScope()
	if atFile && (class == symtab.StorageClassAuto || class == symtab.StorageClassRegister) {
		p.error(declarator, KindConstraintViolation, "file-scope declaration may not be auto or register")
	}
	if unsupported := unsupportedTypeConstruct(t); unsupported != "" {
		p.error(declarator, KindUnsupportedConstruct, unsupported)
		t = ctype.MakeError()
	}

	ctx := symtab.DeclContext{AtFileScope: atFile, StorageClass: class, IsFunction: t.Class == ctype.Function}
	prior := p.scope.Lookup(declarator.ID, symtab.NamespaceOrdinary)
	if prior != nil {
		ctx.HasPriorVisible = true
		ctx.PriorVisibleLinkage = prior.Linkage
		if !ctype.Compatible(prior.Type, t) {
			p.error(declarator, KindRedeclarationConflict, "redeclaration of '"+declarator.ID+"' with incompatible type")
		}
	}

	sym := symtab.NewObjectSymbol(declarator.ID, t, declarator, ctx)
	if prior != nil {
		sym.Linkage = symtab.MergeLinkage(prior.Linkage, sym.Linkage)
	}
	if class == symtab.StorageClassRegister {
		p.registerSymbols[sym] = true
	}
	p.scope.Add(declarator.ID, symtab.NamespaceOrdinary, sym)

	if init != nil {
		diags := p.elaborateInitializer(init, t)
		for _, d := range diags {
			p.error(d.Node, KindOutOfBoundsInitializer, d.Message)
		}
		sym.Defined = true
		if sym.Duration == symtab.DurationStatic && t.IsComplete() {
			sym.Data = make([]byte, t.Size())
			p.emitStaticImage(init, sym, 0)
		}
	} else if atFile && t.IsObjectType() && class != symtab.StorageClassExtern && class != symtab.StorageClassTypedef {
		sym.Tentative = true
		p.tentative = append(p.tentative, sym)
	}

	return sym
}

// unsupportedTypeConstruct reports the first construct in t this compiler
// does not accept (variable-length arrays, long double), or "" if t is
// fully supported. Pointee/element/return types are walked; struct and
// union members were already checked when their tag was declared.
func unsupportedTypeConstruct(t *ctype.Type) string {
	for ; t != nil; t = t.Elem {
		if t.IsVLA() {
			return "variable-length arrays are not supported"
		}
		if t.Class == ctype.LongDouble {
			return "long double is not supported"
		}
		if t.Class == ctype.Function {
			if msg := unsupportedTypeConstruct(t.Return); msg != "" {
				return msg
			}
			for _, param := range t.Params {
				if msg := unsupportedTypeConstruct(param); msg != "" {
					return msg
				}
			}
		}
	}
	return ""
}

// CheckFunctionDefinitionShape validates the ISO 6.9.1 constraints on a
// function definition: the declarator must denote a function, every
// parameter must be named exactly once, and no parameter name repeats.
func (p *Pass) CheckFunctionDefinitionShape(n *ast.Node, ft *ctype.Type) {
	if ft.Class != ctype.Function {
		p.error(n, KindConstraintViolation, "function definition's declarator does not denote a function type")
		return
	}
	seen := make(map[string]bool)
	for _, param := range n.Params {
		if param.ID == "" {
			p.error(param, KindConstraintViolation, "parameter in a function definition must be named")
			continue
		}
		if seen[param.ID] {
			p.error(param, KindConstraintViolation, "duplicate parameter name '"+param.ID+"' in function definition")
		}
		seen[param.ID] = true
	}
	if n.ID == "main" {
		p.checkMainSignature(n, ft)
		if hasInlineSpecifier(n.DeclSpecifiers) {
			p.error(n, KindConstraintViolation, "main may not be declared inline")
		}
	}
}

// checkMainSignature verifies main's signature is int(void) or
// int(int, char**).
func (p *Pass) checkMainSignature(n *ast.Node, ft *ctype.Type) {
	if ft.Return == nil || ft.Return.Class != ctype.Int {
		p.error(n, KindConstraintViolation, "main must return int")
	}
	switch len(ft.Params) {
	case 0:
		return
	case 2:
		if ft.Params[0].Class != ctype.Int {
			p.error(n, KindConstraintViolation, "main's first parameter must be int")
		}
		argv := ft.Params[1]
		if argv.Class != ctype.Pointer || argv.Elem.Class != ctype.Pointer || argv.Elem.Elem.Class != ctype.Char {
			p.error(n, KindConstraintViolation, "main's second parameter must be char**")
		}
	default:
		p.error(n, KindConstraintViolation, "main must take no parameters or (int, char**)")
	}
}

// CheckStructMembers validates member completeness and flexible-array-
// member placement: (1) an
// unspecified-length array may appear only as the last member of a struct
// that has at least one other named member, (2) never as an array element
// type, and (3) never inside a union.
func (p *Pass) CheckStructMembers(n *ast.Node, members []ctype.Member, isUnion bool) {
	for i, m := range members {
		if m.BitWidth >= 0 {
			if !m.Type.IsInteger() {
				p.error(n, KindConstraintViolation, "bit-field '"+m.Name+"' must have an integer type")
			} else if int64(m.BitWidth) > m.Type.Size()*8 {
				p.error(n, KindConstraintViolation, "bit-field '"+m.Name+"' is wider than its type")
			} else if m.BitWidth == 0 && m.Name != "" {
				p.error(n, KindConstraintViolation, "a named bit-field may not have zero width")
			}
		}
		if unsupported := unsupportedTypeConstruct(m.Type); unsupported != "" {
			p.error(n, KindUnsupportedConstruct, unsupported)
			continue
		}
		isFlexible := m.Type.Class == ctype.Array && m.Type.ArrayLengthKind == ctype.LengthUnspecified
		if isFlexible {
			if isUnion {
				p.error(n, KindConstraintViolation, "flexible array member may not appear in a union")
				continue
			}
			if i != len(members)-1 {
				p.error(n, KindConstraintViolation, "flexible array member must be the last member of a struct")
				continue
			}
			if len(members) < 2 {
				p.error(n, KindConstraintViolation, "flexible array member requires at least one other named member")
			}
			continue
		}
		if m.Type.Class == ctype.Array && m.Type.Elem.Class == ctype.Array && m.Type.Elem.ArrayLengthKind == ctype.LengthUnspecified {
			p.error(n, KindConstraintViolation, "an array element type may not itself be an incomplete array")
		}
		if !m.Type.IsComplete() && !(m.Type.Class == ctype.Array && m.Type.ArrayLengthKind == ctype.LengthUnspecified && i == len(members)-1) {
			p.error(n, KindConstraintViolation, "struct/union member must have a complete type")
		}
	}
}
