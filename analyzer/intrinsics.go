package analyzer

import (
	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
)

// intrinsicTemplate describes one intrinsic's fixed arity and per-argument
// type template. va_arg and va_start are not represented here: each needs
// bespoke handling of its second argument (a type name, or an argument
// exempt from type-checking) that this uniform arity/CanAssign shape can't
// express, so decorateIntrinsicCall special-cases them before consulting
// this table.
type intrinsicTemplate struct {
	arity      int
	argBuilder func(p *Pass) []*ctype.Type
	result     func(p *Pass) *ctype.Type
}

func (p *Pass) intrinsics() map[string]intrinsicTemplate {
	constCharPtr := ctype.MakePointer(ctype.Qualified(ctype.Basic(ctype.Char), ctype.QualConst))
	charPtr := ctype.MakePointer(ctype.Basic(ctype.Char))
	intT := ctype.Basic(ctype.Int)
	return map[string]intrinsicTemplate{
		"__ecc_va_end": {
			arity: 1,
			argBuilder: func(p *Pass) []*ctype.Type {
				return []*ctype.Type{p.vaListPointerType()}
			},
			result: func(p *Pass) *ctype.Type { return ctype.Basic(ctype.Void) },
		},
		// __ecc_lsys_open(const char *path, int flags, unsigned int mode).
		"__ecc_lsys_open": {
			arity: 3,
			argBuilder: func(p *Pass) []*ctype.Type {
				return []*ctype.Type{constCharPtr, intT, ctype.Basic(ctype.UnsignedInt)}
			},
			result: func(p *Pass) *ctype.Type { return intT },
		},
		"__ecc_lsys_close": {
			arity: 1,
			argBuilder: func(p *Pass) []*ctype.Type {
				return []*ctype.Type{intT}
			},
			result: func(p *Pass) *ctype.Type { return intT },
		},
		// __ecc_lsys_read(int fd, char *buf, size_t count).
		"__ecc_lsys_read": {
			arity: 3,
			argBuilder: func(p *Pass) []*ctype.Type {
				return []*ctype.Type{intT, charPtr, ctype.Basic(ctype.UnsignedLong)}
			},
			result: func(p *Pass) *ctype.Type { return ctype.Basic(ctype.Long) },
		},
	}
}

// vaListPointerType returns a pointer to the built-in __ecc_va_list struct
// registered via BindVaList.
func (p *Pass) vaListPointerType() *ctype.Type {
	if p.vaList == nil {
		return ctype.MakePointer(ctype.MakeError())
	}
	return ctype.MakePointer(p.vaList.Type)
}

// decorateIntrinsicCall checks one of the six fixed-arity/type-template
// intrinsic calls. va_arg and va_start are special-cased (the former's
// second argument is a type name, not a value expression, whose resolved
// type drives the call's result type; the latter's second argument is
// required but not type-checked); the rest go through the uniform
// arity+CanAssign table in intrinsics().
func (p *Pass) decorateIntrinsicCall(n *ast.Node) {
	switch n.ID {
	case "__ecc_va_arg":
		p.decorateVaArg(n)
		return
	case "__ecc_va_start":
		p.decorateVaStart(n)
		return
	}

	for _, a := range n.Args {
		p.DecorateExpression(a)
	}
	tmpl, ok := p.intrinsics()[n.ID]
	if !ok {
		p.error(n, KindUndeclaredIdentifier, "unrecognized intrinsic '"+n.ID+"'")
		p.fail(n)
		return
	}
	if len(n.Args) != tmpl.arity {
		p.error(n, KindConstraintViolation, "intrinsic '"+n.ID+"' called with wrong number of arguments")
		p.fail(n)
		return
	}
	params := tmpl.argBuilder(p)
	for i, param := range params {
		argType := decayIfNeeded(n.Args[i].Type, ctype.ContextOrdinary)
		if !CanAssign(param, argType, n.Args[i]) {
			p.error(n.Args[i], KindTypeMismatch, "argument to intrinsic '"+n.ID+"' has the wrong type")
			p.fail(n)
			return
		}
	}
	n.Type = tmpl.result(p)
}

// decorateVaArg checks __ecc_va_arg(ap, type-name). The
// first argument must be a va_list; the second must be an undecorated type
// name whose resolved type becomes the call's result type, excluding
// struct/union/long-double results this backend does not support.
func (p *Pass) decorateVaArg(n *ast.Node) {
	if len(n.Args) != 2 {
		p.error(n, KindConstraintViolation, "va_arg invocation requires two arguments: a va_list and a type for the argument returned")
		p.fail(n)
		return
	}
	argAp, argType := n.Args[0], n.Args[1]
	p.DecorateExpression(argAp)
	apType := decayIfNeeded(argAp.Type, ctype.ContextOrdinary)
	if !CanAssign(p.vaListPointerType(), apType, argAp) {
		p.error(n, KindTypeMismatch, "first parameter of va_arg invocation must be a va_list")
		p.fail(n)
		return
	}
	if argType.Kind != ast.KindTypeName {
		p.error(n, KindConstraintViolation, "second parameter of va_arg invocation must be a type name")
		p.fail(n)
		return
	}
	t := argType.Type
	if t == nil || t.IsError() {
		p.fail(n)
		return
	}
	if t.Class == ctype.Struct || t.Class == ctype.Union || t.Class == ctype.LongDouble {
		p.error(n, KindUnsupportedConstruct, "this type is not yet supported by va_arg")
		p.fail(n)
		return
	}
	n.Type = t
}

// decorateVaStart checks __ecc_va_start(ap, parmN). Only the first
// argument (the va_list) is type-checked; the second (the last named
// parameter before the ellipsis) is required to be present but is not
// otherwise checked.
func (p *Pass) decorateVaStart(n *ast.Node) {
	if len(n.Args) != 2 {
		p.error(n, KindConstraintViolation, "va_start invocation requires two arguments: a va_list and the last non-variadic parameter of this function")
		p.fail(n)
		return
	}
	argAp := n.Args[0]
	p.DecorateExpression(argAp)
	p.DecorateExpression(n.Args[1])
	apType := decayIfNeeded(argAp.Type, ctype.ContextOrdinary)
	if !CanAssign(p.vaListPointerType(), apType, argAp) {
		p.error(n, KindTypeMismatch, "first parameter of va_start invocation must be a va_list")
		p.fail(n)
		return
	}
	n.Type = ctype.Basic(ctype.Void)
}
