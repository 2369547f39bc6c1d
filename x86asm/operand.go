// Package x86asm implements the x86-64 System V backend: it lowers AIR
// (package air) into AT&T-syntax assembly text.
package x86asm

import "fmt"

// Reg enumerates the general-purpose and SSE registers this backend
// addresses.
type Reg int

const (
	RAX Reg = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	XMM0
	XMM1
	XMM2
	XMM3
	XMM4
	XMM5
	XMM6
	XMM7
)

// Size is an operand width, used both for register-name selection and
// instruction suffixing.
type Size int

const (
	Byte Size = iota
	Word
	Dword
	Qword
)

// Char returns the AT&T size suffix character for s.
func (s Size) Char() byte {
	switch s {
	case Byte:
		return 'b'
	case Word:
		return 'w'
	case Dword:
		return 'l'
	default:
		return 'q'
	}
}

var gpNames = map[Reg][4]string{
	RAX: {"al", "ax", "eax", "rax"},
	RBX: {"bl", "bx", "ebx", "rbx"},
	RCX: {"cl", "cx", "ecx", "rcx"},
	RDX: {"dl", "dx", "edx", "rdx"},
	RSI: {"sil", "si", "esi", "rsi"},
	RDI: {"dil", "di", "edi", "rdi"},
	RBP: {"bpl", "bp", "ebp", "rbp"},
	RSP: {"spl", "sp", "esp", "rsp"},
	R8:  {"r8b", "r8w", "r8d", "r8"},
	R9:  {"r9b", "r9w", "r9d", "r9"},
	R10: {"r10b", "r10w", "r10d", "r10"},
	R11: {"r11b", "r11w", "r11d", "r11"},
	R12: {"r12b", "r12w", "r12d", "r12"},
	R13: {"r13b", "r13w", "r13d", "r13"},
	R14: {"r14b", "r14w", "r14d", "r14"},
	R15: {"r15b", "r15w", "r15d", "r15"},
}

var sseNames = map[Reg]string{
	XMM0: "xmm0", XMM1: "xmm1", XMM2: "xmm2", XMM3: "xmm3",
	XMM4: "xmm4", XMM5: "xmm5", XMM6: "xmm6", XMM7: "xmm7",
}

// IsSSE reports whether r is one of the xmm registers.
func (r Reg) IsSSE() bool {
	_, ok := sseNames[r]
	return ok
}

// RegisterName returns the AT&T register name (without the leading '%')
// for r at the given size. SSE registers ignore size.
func RegisterName(r Reg, size Size) string {
	if name, ok := sseNames[r]; ok {
		return name
	}
	if names, ok := gpNames[r]; ok {
		return names[size]
	}
	return "?"
}

// OperandKind tags which addressing-mode variant an Operand holds.
type OperandKind int

const (
	OpKindRegister OperandKind = iota
	OpKindPtrRegister
	OpKindIndirectRegister
	OpKindIndirectIndexed
	OpKindLabel
	OpKindLabelRef
	OpKindImmediate
	OpKindText
)

// Operand is one AT&T-syntax operand. When HasSize is false, a register
// operand is printed at the instruction's size.
type Operand struct {
	Kind OperandKind

	Reg     Reg
	HasSize bool
	Size    Size

	// IndirectRegister, IndirectIndexed
	Disp  int64
	Index Reg

	// IndirectIndexed
	HasIndex bool
	Scale    int64

	Label  string
	Offset int64 // LabelRef

	Imm uint64

	Text string
}

func RegOperand(r Reg) Operand { return Operand{Kind: OpKindRegister, Reg: r} }

func RegOperandSized(r Reg, size Size) Operand {
	return Operand{Kind: OpKindRegister, Reg: r, HasSize: true, Size: size}
}

func PtrRegOperand(r Reg) Operand { return Operand{Kind: OpKindPtrRegister, Reg: r} }

func IndirectOperand(base Reg, disp int64) Operand {
	return Operand{Kind: OpKindIndirectRegister, Reg: base, Disp: disp}
}

func IndirectIndexedOperand(base, index Reg, scale, disp int64) Operand {
	return Operand{Kind: OpKindIndirectIndexed, Reg: base, Index: index, HasIndex: true, Scale: scale, Disp: disp}
}

func LabelOperand(name string) Operand { return Operand{Kind: OpKindLabel, Label: name} }

func LabelRefOperand(name string, offset int64) Operand {
	return Operand{Kind: OpKindLabelRef, Label: name, Offset: offset}
}

func ImmediateOperand(v uint64) Operand { return Operand{Kind: OpKindImmediate, Imm: v} }

func TextOperand(s string) Operand { return Operand{Kind: OpKindText, Text: s} }

// WriteOperand prints op in AT&T syntax at the given fallback size.
func WriteOperand(buf *[]byte, op Operand, size Size) {
	switch op.Kind {
	case OpKindRegister:
		s := size
		if op.HasSize {
			s = op.Size
		}
		*buf = append(*buf, '%')
		*buf = append(*buf, RegisterName(op.Reg, s)...)
	case OpKindPtrRegister:
		s := size
		if op.HasSize {
			s = op.Size
		}
		*buf = append(*buf, '*', '%')
		*buf = append(*buf, RegisterName(op.Reg, s)...)
	case OpKindIndirectRegister:
		if op.Disp != 0 {
			*buf = append(*buf, fmt.Sprintf("%d", op.Disp)...)
		}
		*buf = append(*buf, '(', '%')
		*buf = append(*buf, RegisterName(op.Reg, Qword)...)
		*buf = append(*buf, ')')
	case OpKindIndirectIndexed:
		if op.Disp != 0 {
			*buf = append(*buf, fmt.Sprintf("%d", op.Disp)...)
		}
		*buf = append(*buf, '(', '%')
		*buf = append(*buf, RegisterName(op.Reg, Qword)...)
		*buf = append(*buf, ',', ' ', '%')
		*buf = append(*buf, RegisterName(op.Index, Qword)...)
		*buf = append(*buf, fmt.Sprintf(", %d)", op.Scale)...)
	case OpKindLabel:
		*buf = append(*buf, op.Label...)
	case OpKindLabelRef:
		switch {
		case op.Offset > 0:
			*buf = append(*buf, fmt.Sprintf("%s+%d(%%rip)", op.Label, op.Offset)...)
		case op.Offset < 0:
			*buf = append(*buf, fmt.Sprintf("%s-%d(%%rip)", op.Label, -op.Offset)...)
		default:
			*buf = append(*buf, fmt.Sprintf("%s(%%rip)", op.Label)...)
		}
	case OpKindImmediate:
		*buf = append(*buf, fmt.Sprintf("$%d", op.Imm)...)
	case OpKindText:
		*buf = append(*buf, op.Text...)
	}
}

// FormatOperand renders op as a standalone string.
func FormatOperand(op Operand, size Size) string {
	var buf []byte
	WriteOperand(&buf, op, size)
	return string(buf)
}
