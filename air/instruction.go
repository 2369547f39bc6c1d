package air

import "github.com/ripleymj/ecc/ctype"

// Opcode enumerates AIR's instruction set.
type Opcode int

const (
	OpLoad Opcode = iota
	OpStore

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	// Direct variants overwrite operand 1 in place rather than producing a
	// fresh result register, matching the backend's trivial-move elision.
	OpAddDirect
	OpSubDirect
	OpMulDirect
	OpDivDirect
	OpModDirect

	OpNeg
	OpComplement
	OpLogicalNot

	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr

	OpCmpEq
	OpCmpNeq
	OpCmpLt
	OpCmpGt
	OpCmpLeq
	OpCmpGeq

	OpZeroExtend
	OpSignExtend
	OpTruncate

	// SSE<->integer conversions.
	OpIntToFloat
	OpFloatToInt
	OpUIntToFloat
	OpFloatToUInt
	OpFloatToFloat

	OpJmp
	OpJz
	OpJnz
	OpLabel
	OpReturn
	OpFuncCall
	OpPush

	OpMemset

	OpDeclare

	OpSyscall
)

// Instruction is opcode + up to three operands + a result type.
// Instructions are owned by their containing Routine and live until the
// backend has consumed them.
type Instruction struct {
	Op     Opcode
	Op1    Operand
	Op2    Operand
	Op3    Operand
	NumOps int
	Result *ctype.Type
}

// NewInst0 constructs a zero-operand instruction (e.g. OpLabel, OpReturn
// with no value).
func NewInst0(op Opcode, result *ctype.Type) Instruction {
	return Instruction{Op: op, Result: result}
}

func NewInst1(op Opcode, a Operand, result *ctype.Type) Instruction {
	return Instruction{Op: op, Op1: a, NumOps: 1, Result: result}
}

func NewInst2(op Opcode, a, b Operand, result *ctype.Type) Instruction {
	return Instruction{Op: op, Op1: a, Op2: b, NumOps: 2, Result: result}
}

func NewInst3(op Opcode, a, b, c Operand, result *ctype.Type) Instruction {
	return Instruction{Op: op, Op1: a, Op2: b, Op3: c, NumOps: 3, Result: result}
}
