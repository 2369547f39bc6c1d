package x86asm

import "fmt"

// Opcode enumerates the x86-64 AT&T mnemonics this backend emits.
type Opcode int

const (
	OpLabelInsn Opcode = iota
	OpLeave
	OpRet
	OpStc
	OpNop
	OpSyscall
	OpCall
	OpJmp
	OpJe
	OpJne
	OpJnb
	OpJs
	OpSete
	OpSetne
	OpSetle
	OpSetl
	OpSetge
	OpSetg
	OpSeta
	OpSetnb
	OpSetb
	OpSetbe
	OpSetp
	OpSetnp
	OpPush
	OpPop
	OpNeg
	OpMov
	OpMovss
	OpMovsd
	OpMovsx
	OpMovzx
	OpMovaps
	OpLea
	OpAnd
	OpOr
	OpCmp
	OpNot
	OpAdd
	OpAddss
	OpAddsd
	OpSub
	OpSubss
	OpSubsd
	OpMul
	OpImul
	OpMulss
	OpMulsd
	OpDiv
	OpIdiv
	OpDivss
	OpDivsd
	OpXor
	OpXorps
	OpXorpd
	OpCvtsd2ss
	OpCvtss2sd
	OpCvtsi2ss
	OpCvtsi2sd
	OpCvttss2si
	OpCvttsd2si
	OpComiss
	OpComisd
	OpUcomiss
	OpUcomisd
	OpTest
	OpPtest
	OpRepStosb
	OpShl
	OpShr
	OpSar
	OpRor
	OpCdq
	OpCqo
)

var mnemonics = map[Opcode]string{
	OpLeave: "leave", OpRet: "ret", OpStc: "stc", OpNop: "nop", OpSyscall: "syscall",
	OpCall: "call", OpJmp: "jmp", OpJe: "je", OpJne: "jne", OpJnb: "jnb", OpJs: "js",
	OpSete: "sete", OpSetne: "setne", OpSetle: "setle", OpSetl: "setl", OpSetge: "setge",
	OpSetg: "setg", OpSeta: "seta", OpSetnb: "setnb", OpSetb: "setb", OpSetbe: "setbe",
	OpSetp: "setp", OpSetnp: "setnp",
	OpPush: "push", OpPop: "pop", OpNeg: "neg", OpMov: "mov", OpMovss: "movss", OpMovsd: "movsd",
	OpMovsx: "movsx", OpMovzx: "movzx", OpMovaps: "movaps", OpLea: "lea", OpAnd: "and",
	OpOr: "or", OpCmp: "cmp", OpNot: "not", OpAdd: "add", OpAddss: "addss", OpAddsd: "addsd",
	OpSub: "sub", OpSubss: "subss", OpSubsd: "subsd", OpMul: "mul", OpImul: "imul",
	OpMulss: "mulss", OpMulsd: "mulsd", OpDiv: "div", OpIdiv: "idiv", OpDivss: "divss",
	OpDivsd: "divsd", OpXor: "xor", OpXorps: "xorps", OpXorpd: "xorpd",
	OpCvtsd2ss: "cvtsd2ss", OpCvtss2sd: "cvtss2sd", OpCvtsi2ss: "cvtsi2ss",
	OpCvtsi2sd: "cvtsi2sd", OpCvttss2si: "cvttss2si", OpCvttsd2si: "cvttsd2si",
	OpComiss: "comiss", OpComisd: "comisd", OpUcomiss: "ucomiss", OpUcomisd: "ucomisd",
	OpTest: "test", OpPtest: "ptest", OpShl: "shl", OpShr: "shr", OpSar: "sar", OpRor: "ror",
	OpCdq: "cdq", OpCqo: "cqo",
}

// suffixed is the set of opcodes that take a b/w/l/q size suffix:
// arithmetic/logic/move ops do; SSE ops, lea, jumps, call, leave, ret,
// nop, setcc, and syscall do not.
var suffixed = map[Opcode]bool{
	OpMov: true, OpMovsx: true, OpMovzx: true, OpAnd: true, OpOr: true, OpCmp: true,
	OpNot: true, OpAdd: true, OpSub: true, OpMul: true, OpImul: true, OpDiv: true,
	OpIdiv: true, OpXor: true, OpTest: true, OpShl: true, OpShr: true, OpSar: true,
	OpRor: true, OpPush: true, OpPop: true, OpNeg: true,
}

func usesSuffix(op Opcode) bool { return suffixed[op] }

// Instruction is one lowered x86-64 instruction: an opcode, up to three
// operands, and the operand size governing suffix/register width.
type Instruction struct {
	Op   Opcode
	Op1  *Operand
	Op2  *Operand
	Op3  *Operand
	Size Size

	// Comment, when set, is appended as a trailing "# ..." annotation
	// (ECC_BACKEND_COMMENTS, see internal/elog.BackendComments).
	Comment string
}

func Insn0(op Opcode) Instruction { return Instruction{Op: op} }

func Insn1(op Opcode, a Operand) Instruction { return Instruction{Op: op, Op1: &a} }

func Insn1Sized(op Opcode, a Operand, size Size) Instruction {
	return Instruction{Op: op, Op1: &a, Size: size}
}

func Insn2(op Opcode, a, b Operand, size Size) Instruction {
	return Instruction{Op: op, Op1: &a, Op2: &b, Size: size}
}

// shiftLike lists opcodes whose shift-count operand (always byte-sized)
// is printed first.
var shiftLike = map[Opcode]bool{OpShl: true, OpShr: true, OpSar: true, OpRor: true}

// WriteInstruction prints insn in AT&T syntax, one line.
func WriteInstruction(buf *[]byte, insn Instruction) {
	const indent = "    "
	var suffix string
	if usesSuffix(insn.Op) {
		suffix = string(insn.Size.Char())
	}
	writeMnemonic := func(name string) {
		*buf = append(*buf, indent...)
		*buf = append(*buf, name...)
		*buf = append(*buf, suffix...)
		*buf = append(*buf, ' ')
	}

	switch insn.Op {
	case OpLabelInsn:
		*buf = append(*buf, insn.Op1.Label...)
		*buf = append(*buf, ':')
		return
	case OpLeave, OpRet, OpStc, OpNop, OpSyscall, OpCdq, OpCqo:
		*buf = append(*buf, indent...)
		*buf = append(*buf, mnemonics[insn.Op]...)
	case OpRepStosb:
		*buf = append(*buf, indent...)
		*buf = append(*buf, "rep stosb"...)
	case OpCall, OpJmp, OpJe, OpJne, OpJnb, OpJs:
		*buf = append(*buf, indent...)
		*buf = append(*buf, mnemonics[insn.Op]...)
		*buf = append(*buf, ' ')
		WriteOperand(buf, *insn.Op1, Qword)
	case OpSete, OpSetne, OpSetle, OpSetl, OpSetge, OpSetg, OpSeta, OpSetnb, OpSetb, OpSetbe, OpSetp, OpSetnp:
		*buf = append(*buf, indent...)
		*buf = append(*buf, mnemonics[insn.Op]...)
		*buf = append(*buf, ' ')
		WriteOperand(buf, *insn.Op1, Byte)
	case OpPush, OpPop, OpNeg, OpMul, OpDiv, OpIdiv:
		writeMnemonic(mnemonics[insn.Op])
		WriteOperand(buf, *insn.Op1, insn.Size)
	default:
		if shiftLike[insn.Op] {
			writeMnemonic(mnemonics[insn.Op])
			WriteOperand(buf, *insn.Op1, Byte)
			*buf = append(*buf, ',', ' ')
			WriteOperand(buf, *insn.Op2, insn.Size)
			break
		}
		name, ok := mnemonics[insn.Op]
		if !ok {
			break
		}
		writeMnemonic(name)
		WriteOperand(buf, *insn.Op1, insn.Size)
		if insn.Op2 != nil {
			*buf = append(*buf, ',', ' ')
			WriteOperand(buf, *insn.Op2, insn.Size)
		}
	}
	if insn.Comment != "" {
		*buf = append(*buf, fmt.Sprintf("  # %s", insn.Comment)...)
	}
}

// FormatInstruction renders insn as a standalone line, without a trailing
// newline.
func FormatInstruction(insn Instruction) string {
	var buf []byte
	WriteInstruction(&buf, insn)
	return string(buf)
}
