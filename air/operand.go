// Package air implements AIR, the machine-independent intermediate
// representation the analyzer's output is lowered to before x86asm
// translates it to assembly text.
package air

import "github.com/ripleymj/ecc/ctype"

// OperandKind tags which AIR operand variant a value holds.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandIndirectRegister
	OperandSymbol
	OperandIndirectSymbol
	OperandImmediateInteger
	OperandFloatingConstant
	OperandLabel
	OperandTypeOperand
)

// LabelKind distinguishes the origin of a Label operand: one introduced by
// the producer feeding this IR (printed ".L<disambiguator><id>"), versus
// one the backend invents for its own control flow (printed ".LGEN<n>").
type LabelKind int

const (
	LabelProducer LabelKind = iota
	LabelBackendGenerated
)

// Symbol is the minimal identity AIR needs for a symbol operand: a stable
// name and the C type the operand represents. It deliberately does not
// reuse symtab.Symbol: AIR is meant to be a narrow machine-independent
// handoff format, not a second owner of the full symbol table.
type Symbol struct {
	Name     string
	Type     *ctype.Type
	ReadOnly bool

	// Automatic marks a symbol of automatic storage duration: the backend
	// assigns it an rbp-relative stack slot rather than a .data/.rodata
	// label.
	Automatic bool
}

// Operand is a tagged value: one of Register(vreg_id), IndirectRegister,
// Symbol/IndirectSymbol, ImmediateInteger, FloatingConstant, Label, or
// TypeOperand, each carrying the C type it represents.
type Operand struct {
	Kind OperandKind
	Type *ctype.Type

	// Register, IndirectRegister
	Reg      int
	HasIndex bool
	Index    int
	Scale    int
	Disp     int64

	// Symbol, IndirectSymbol
	Sym *Symbol

	// ImmediateInteger
	ImmU64 uint64

	// FloatingConstant
	Float float64

	// Label
	LabelKind LabelKind
	LabelID   int
	LabelTag  string

	// TypeOperand
	TypeValue *ctype.Type
}

func Register(vreg int, t *ctype.Type) Operand {
	return Operand{Kind: OperandRegister, Reg: vreg, Type: t}
}

func IndirectRegister(base int, disp int64, t *ctype.Type) Operand {
	return Operand{Kind: OperandIndirectRegister, Reg: base, Disp: disp, Type: t}
}

func IndirectRegisterIndexed(base, index, scale int, disp int64, t *ctype.Type) Operand {
	return Operand{Kind: OperandIndirectRegister, Reg: base, HasIndex: true, Index: index, Scale: scale, Disp: disp, Type: t}
}

func SymbolOperand(sym *Symbol) Operand {
	return Operand{Kind: OperandSymbol, Sym: sym, Type: sym.Type}
}

func IndirectSymbolOperand(sym *Symbol, disp int64) Operand {
	return Operand{Kind: OperandIndirectSymbol, Sym: sym, Disp: disp, Type: sym.Type}
}

func ImmediateInteger(v uint64, t *ctype.Type) Operand {
	return Operand{Kind: OperandImmediateInteger, ImmU64: v, Type: t}
}

func FloatingConstant(v float64, t *ctype.Type) Operand {
	return Operand{Kind: OperandFloatingConstant, Float: v, Type: t}
}

func Label(kind LabelKind, id int, tag string) Operand {
	return Operand{Kind: OperandLabel, LabelKind: kind, LabelID: id, LabelTag: tag}
}

func TypeOperand(t *ctype.Type) Operand {
	return Operand{Kind: OperandTypeOperand, TypeValue: t}
}
