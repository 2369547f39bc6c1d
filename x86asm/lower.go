package x86asm

import (
	"fmt"

	"github.com/ripleymj/ecc/air"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/internal/elog"
	"github.com/ripleymj/ecc/symtab"
)

// gpPool and ssePool approximate register allocation: each AIR virtual
// register id is assigned a fixed physical register by taking its id
// modulo the pool size. A real allocator would track liveness and spill;
// this backend instead gives every vreg a stable,
// deterministic physical home for the routine's lifetime, which is
// sufficient for AIR produced by a single-pass, non-overlapping-lifetime
// producer and keeps lowering a pure function of the instruction stream.
var gpPool = []Reg{RAX, RCX, RDX, RSI, RDI, R8, R9, R10, R11, RBX, R12, R13, R14, R15}
var ssePool = []Reg{XMM0, XMM1, XMM2, XMM3, XMM4, XMM5, XMM6, XMM7}

func physicalRegister(vreg int, isFloat bool) Reg {
	if isFloat {
		return ssePool[vreg%len(ssePool)]
	}
	return gpPool[vreg%len(gpPool)]
}

// sizeOf maps a C type to the x86 operand size used to select a register
// name/suffix.
func sizeOf(t *ctype.Type) Size {
	if t == nil {
		return Qword
	}
	switch t.Size() {
	case 1:
		return Byte
	case 2:
		return Word
	case 4:
		return Dword
	default:
		return Qword
	}
}

// lowerer carries the per-routine state (label/local bookkeeping) needed
// while translating one Routine's AIR instructions.
type lowerer struct {
	file   *File
	layout *RoutineLayout
}

// operand converts one AIR operand to its x86 addressing-mode equivalent,
// using the physical-register approximation above.
func (lw *lowerer) operand(op air.Operand) Operand {
	switch op.Kind {
	case air.OperandRegister:
		r := physicalRegister(op.Reg, op.Type != nil && op.Type.IsSSEFloating())
		return RegOperand(r)
	case air.OperandIndirectRegister:
		base := physicalRegister(op.Reg, false)
		if op.HasIndex {
			idx := physicalRegister(op.Index, false)
			return IndirectIndexedOperand(base, idx, int64(op.Scale), op.Disp)
		}
		return IndirectOperand(base, op.Disp)
	case air.OperandSymbol:
		if op.Sym != nil && op.Sym.Automatic {
			off := lw.layout.Slot(op.Sym, op.Sym.Type.Size(), op.Sym.Type.Alignment())
			return IndirectOperand(RBP, off)
		}
		return LabelRefOperand(op.Sym.Name, 0)
	case air.OperandIndirectSymbol:
		if op.Sym != nil && op.Sym.Automatic {
			off := lw.layout.Slot(op.Sym, op.Sym.Type.Size(), op.Sym.Type.Alignment())
			return IndirectOperand(RBP, off+op.Disp)
		}
		return LabelRefOperand(op.Sym.Name, op.Disp)
	case air.OperandImmediateInteger:
		return ImmediateOperand(op.ImmU64)
	case air.OperandFloatingConstant:
		isFloat := op.Type != nil && op.Type.Class == ctype.Float
		d := lw.file.FloatConstant(op.Float, isFloat)
		return LabelRefOperand(d.Label, 0)
	case air.OperandLabel:
		if op.LabelKind == air.LabelBackendGenerated {
			return LabelOperand(fmt.Sprintf(".LGEN%d", op.LabelID))
		}
		return LabelOperand(op.LabelTag)
	case air.OperandTypeOperand:
		return Operand{}
	}
	return Operand{}
}

func operandsEqual(a, b Operand) bool {
	return a.Kind == b.Kind && a.Reg == b.Reg && a.Disp == b.Disp && a.Label == b.Label
}

func moveOpcode(isFloat bool, isDouble bool) Opcode {
	if !isFloat {
		return OpMov
	}
	if isDouble {
		return OpMovsd
	}
	return OpMovss
}

// LowerModule translates an AIR module into an assembled File: every
// routine's instructions and every data/rodata object. One lowerer per
// routine; the shared File accumulates the rodata pool.
func LowerModule(mod *air.Module) *File {
	f := NewFile()
	for _, d := range mod.Data {
		f.Data = append(f.Data, lowerData(d))
	}
	for _, d := range mod.RoData {
		f.RoData = append(f.RoData, lowerData(d))
	}
	for i, r := range mod.Routines {
		f.Routines = append(f.Routines, lowerRoutine(f, i+1, r))
	}
	return f
}

func lowerData(d *air.DataObject) *DataObject {
	out := &DataObject{Label: d.Sym.Name, ReadOnly: d.ReadOnly, Bytes: d.Bytes}
	if d.Sym.Type != nil && d.Sym.Type.IsObjectType() && d.Sym.Type.IsComplete() {
		out.Alignment = d.Sym.Type.Alignment()
	} else {
		out.Alignment = 1
	}
	for _, rel := range d.Relocs {
		out.Relocs = append(out.Relocs, Reloc{Offset: rel.DataOffset, Label: rel.TargetSymbol.Name, Addend: rel.Addend})
	}
	return out
}

func lowerRoutine(f *File, id int, r *air.Routine) *Routine {
	lw := &lowerer{file: f, layout: NewRoutineLayout()}
	if r.UsesVararg {
		lw.layout.ReserveVarargsSaveArea()
	}
	out := &Routine{ID: id, Label: r.Sym.Name, Global: r.Sym.Linkage == symtab.LinkageExternal, UsesVarargs: r.UsesVararg}

	annotate := elog.BackendComments()
	var insns []Instruction
	for _, ai := range r.Insns {
		lowered := lw.lowerInstruction(id, ai)
		if annotate && len(lowered) > 0 {
			lowered[0].Comment = fmt.Sprintf("air op %d", ai.Op)
		}
		insns = append(insns, lowered...)
	}
	out.Insns = insns
	out.UsedNonvolatiles = FindUsedNonvolatiles(insns)
	out.StackAlloc = lw.layout.StackAllocSize()
	return out
}

var directToPlain = map[air.Opcode]air.Opcode{
	air.OpAddDirect: air.OpAdd, air.OpSubDirect: air.OpSub,
}

var directMulDivMod = map[air.Opcode]air.Opcode{
	air.OpMulDirect: air.OpMul, air.OpDivDirect: air.OpDiv, air.OpModDirect: air.OpMod,
}

var intBinaryOp = map[air.Opcode]Opcode{
	air.OpAdd: OpAdd, air.OpSub: OpSub, air.OpAnd: OpAnd, air.OpOr: OpOr, air.OpXor: OpXor,
	air.OpShl: OpShl, air.OpShr: OpShr,
}

var sseBinaryOp = map[air.Opcode]struct{ Single, Double Opcode }{
	air.OpAdd: {OpAddss, OpAddsd}, air.OpSub: {OpSubss, OpSubsd},
	air.OpMul: {OpMulss, OpMulsd}, air.OpDiv: {OpDivss, OpDivsd},
}

var cmpSet = map[air.Opcode]Opcode{
	air.OpCmpEq: OpSete, air.OpCmpNeq: OpSetne, air.OpCmpLt: OpSetl,
	air.OpCmpGt: OpSetg, air.OpCmpLeq: OpSetle, air.OpCmpGeq: OpSetge,
}

// lowerInstruction dispatches one AIR instruction to its lowering recipe.
func (lw *lowerer) lowerInstruction(routineID int, ai air.Instruction) []Instruction {
	if plain, ok := directToPlain[ai.Op]; ok {
		return lw.lowerBinaryDirect(plain, ai)
	}
	if plain, ok := directMulDivMod[ai.Op]; ok {
		return lw.lowerMulDivModDirect(plain, ai)
	}
	switch ai.Op {
	case air.OpLoad:
		return []Instruction{Insn2(OpMov, lw.operand(ai.Op2), lw.operand(ai.Op1), sizeOf(ai.Result))}
	case air.OpStore:
		return []Instruction{Insn2(OpMov, lw.operand(ai.Op2), lw.operand(ai.Op1), sizeOf(ai.Result))}
	case air.OpAdd, air.OpSub, air.OpAnd, air.OpOr, air.OpXor, air.OpShl, air.OpShr:
		return lw.lowerBinaryTriple(ai)
	case air.OpMul, air.OpDiv, air.OpMod:
		return lw.lowerMulDivMod(ai)
	case air.OpNeg:
		return lw.lowerNegate(ai)
	case air.OpLogicalNot:
		return lw.lowerLogicalNot(ai)
	case air.OpComplement:
		size := sizeOf(ai.Result)
		dst := lw.operand(ai.Op1)
		return []Instruction{Insn2(OpNot, dst, dst, size)}
	case air.OpCmpEq, air.OpCmpNeq, air.OpCmpLt, air.OpCmpGt, air.OpCmpLeq, air.OpCmpGeq:
		return lw.lowerCompare(ai)
	case air.OpZeroExtend:
		return lw.lowerExtend(ai, OpMovzx)
	case air.OpSignExtend:
		return lw.lowerExtend(ai, OpMovsx)
	case air.OpTruncate:
		return []Instruction{Insn2(OpMov, lw.operand(ai.Op2), lw.operand(ai.Op1), sizeOf(ai.Result))}
	case air.OpIntToFloat:
		return lw.lowerSignedToSSE(ai)
	case air.OpFloatToInt:
		return lw.lowerSSEToSigned(ai)
	case air.OpUIntToFloat:
		return lw.lowerUnsignedToSSE(ai)
	case air.OpFloatToUInt:
		return lw.lowerSSEToUnsigned(ai)
	case air.OpFloatToFloat:
		return lw.lowerFloatToFloat(ai)
	case air.OpJmp:
		return []Instruction{Insn1(OpJmp, lw.operand(ai.Op1))}
	case air.OpJz:
		cmp := Insn2(OpCmp, ImmediateOperand(0), lw.operand(ai.Op1), sizeOf(ai.Result))
		return []Instruction{cmp, Insn1(OpJe, lw.operand(ai.Op2))}
	case air.OpJnz:
		cmp := Insn2(OpCmp, ImmediateOperand(0), lw.operand(ai.Op1), sizeOf(ai.Result))
		return []Instruction{cmp, Insn1(OpJne, lw.operand(ai.Op2))}
	case air.OpLabel:
		return []Instruction{Insn1(OpLabelInsn, lw.operand(ai.Op1))}
	case air.OpReturn:
		return []Instruction{Insn1(OpJmp, LabelOperand(fmt.Sprintf(".LR%d", routineID)))}
	case air.OpFuncCall:
		return []Instruction{Insn1(OpCall, lw.operand(ai.Op1))}
	case air.OpPush:
		return []Instruction{Insn1Sized(OpPush, lw.operand(ai.Op1), Qword)}
	case air.OpSyscall:
		return []Instruction{Insn0(OpSyscall)}
	case air.OpMemset:
		// rep stosb: rdi = destination, al = fill byte, rcx = count.
		return []Instruction{
			Insn2(OpLea, lw.operand(ai.Op1), RegOperand(RDI), Qword),
			Insn2(OpMov, lw.operand(ai.Op2), RegOperand(RAX), Byte),
			Insn2(OpMov, lw.operand(ai.Op3), RegOperand(RCX), Qword),
			Insn0(OpRepStosb),
		}
	case air.OpDeclare:
		// Allocation bookkeeping only; no code is emitted; the stack slot
		// is reserved lazily by lw.operand on first reference.
		return nil
	}
	return nil
}

func (lw *lowerer) lowerBinaryTriple(ai air.Instruction) []Instruction {
	isFloat := ai.Result != nil && ai.Result.IsSSEFloating()
	size := sizeOf(ai.Result)
	dst := lw.operand(ai.Op1)
	src1 := lw.operand(ai.Op2)
	src2 := lw.operand(ai.Op3)

	var op Opcode
	if isFloat {
		pair := sseBinaryOp[ai.Op]
		if ai.Result.Class == ctype.Double {
			op = pair.Double
		} else {
			op = pair.Single
		}
	} else {
		op = intBinaryOp[ai.Op]
	}

	var out []Instruction
	out = append(out, Insn2(op, src2, src1, size))
	if !operandsEqual(src1, dst) {
		out = append(out, Insn2(moveOpcode(isFloat, ai.Result.Class == ctype.Double), src1, dst, size))
	}
	return out
}

// lowerBinaryDirect implements the two-operand binary-op form: emit
// "op src2, src1_or_dst", then a mov to the destination unless the
// destination already holds the result.
func (lw *lowerer) lowerBinaryDirect(plain air.Opcode, ai air.Instruction) []Instruction {
	isFloat := ai.Result != nil && ai.Result.IsSSEFloating()
	size := sizeOf(ai.Result)
	src1 := lw.operand(ai.Op1)
	src2 := lw.operand(ai.Op2)

	var op Opcode
	if isFloat {
		pair := sseBinaryOp[plain]
		if ai.Result.Class == ctype.Double {
			op = pair.Double
		} else {
			op = pair.Single
		}
	} else {
		op = intBinaryOp[plain]
	}
	return []Instruction{Insn2(op, src2, src1, size)}
}

// lowerMulDivModDirect implements the two-operand ("direct", overwrite
// op1 in place) form of multiply/divide/modulo. Integer multiply has a
// genuine two-operand imul encoding, so it reuses lowerBinaryDirect's
// shape; divide and modulo only exist as one-operand forms that read/write
// rax:rdx, so they still need the same rax staging as the three-operand
// form, just reading and writing the same AIR operand.
func (lw *lowerer) lowerMulDivModDirect(plain air.Opcode, ai air.Instruction) []Instruction {
	isFloat := ai.Result != nil && ai.Result.IsSSEFloating()
	size := sizeOf(ai.Result)
	dst := lw.operand(ai.Op1)
	src2 := lw.operand(ai.Op2)

	if isFloat {
		var op Opcode
		switch {
		case plain == air.OpMul && ai.Result.Class == ctype.Double:
			op = OpMulsd
		case plain == air.OpMul:
			op = OpMulss
		case ai.Result.Class == ctype.Double:
			op = OpDivsd
		default:
			op = OpDivss
		}
		return []Instruction{Insn2(op, src2, dst, size)}
	}

	if plain == air.OpMul {
		return []Instruction{Insn2(OpImul, src2, dst, size)}
	}

	signed := ai.Result.IsSigned()
	var insns []Instruction
	insns = append(insns, Insn2(OpMov, dst, RegOperand(RAX), size))
	if signed {
		if size == Qword {
			insns = append(insns, Insn0(OpCqo))
		} else {
			insns = append(insns, Insn0(OpCdq))
		}
	} else {
		insns = append(insns, Insn2(OpXor, RegOperand(RDX), RegOperand(RDX), size))
	}
	divOp := OpDiv
	if signed {
		divOp = OpIdiv
	}
	insns = append(insns, Insn1Sized(divOp, src2, size))
	if plain == air.OpMod {
		insns = append(insns, Insn2(OpMov, RegOperand(RDX), dst, size))
	} else {
		insns = append(insns, Insn2(OpMov, RegOperand(RAX), dst, size))
	}
	return insns
}

// lowerMulDivMod implements the three-operand (dst, src1, src2) forms:
// signed and floating multiply reuse the ordinary
// two-operand binary-operator shape (imul has a real two-operand
// encoding); unsigned multiply, and every division/modulo regardless of
// signedness, only exist as one-operand mul/div/idiv forms that read and
// write rax:rdx.
func (lw *lowerer) lowerMulDivMod(ai air.Instruction) []Instruction {
	isFloat := ai.Result != nil && ai.Result.IsSSEFloating()
	size := sizeOf(ai.Result)
	dst := lw.operand(ai.Op1)
	src1 := lw.operand(ai.Op2)
	src2 := lw.operand(ai.Op3)

	if isFloat {
		var op Opcode
		switch {
		case ai.Op == air.OpMul && ai.Result.Class == ctype.Double:
			op = OpMulsd
		case ai.Op == air.OpMul:
			op = OpMulss
		case ai.Result.Class == ctype.Double:
			op = OpDivsd
		default:
			op = OpDivss
		}
		out := []Instruction{Insn2(op, src2, src1, size)}
		if !operandsEqual(src1, dst) {
			out = append(out, Insn2(moveOpcode(true, ai.Result.Class == ctype.Double), src1, dst, size))
		}
		return out
	}

	if ai.Op == air.OpMul && ai.Result.IsSigned() {
		out := []Instruction{Insn2(OpImul, src2, src1, size)}
		if !operandsEqual(src1, dst) {
			out = append(out, Insn2(OpMov, src1, dst, size))
		}
		return out
	}

	signed := ai.Result.IsSigned()
	var insns []Instruction
	insns = append(insns, Insn2(OpMov, src1, RegOperand(RAX), size))
	if ai.Op == air.OpMul {
		insns = append(insns, Insn1Sized(OpMul, src2, size))
		insns = append(insns, Insn2(OpMov, RegOperand(RAX), dst, size))
		return insns
	}
	// idiv/div reads the dividend from rdx:rax (edx:eax for 32-bit), so rdx
	// must hold the sign (or zero) extension of rax before dividing.
	if signed {
		if size == Qword {
			insns = append(insns, Insn0(OpCqo))
		} else {
			insns = append(insns, Insn0(OpCdq))
		}
	} else {
		insns = append(insns, Insn2(OpXor, RegOperand(RDX), RegOperand(RDX), size))
	}
	divOp := OpDiv
	if signed {
		divOp = OpIdiv
	}
	insns = append(insns, Insn1Sized(divOp, src2, size))
	if ai.Op == air.OpMod {
		insns = append(insns, Insn2(OpMov, RegOperand(RDX), dst, size))
	} else {
		insns = append(insns, Insn2(OpMov, RegOperand(RAX), dst, size))
	}
	return insns
}

func (lw *lowerer) lowerNegate(ai air.Instruction) []Instruction {
	size := sizeOf(ai.Result)
	if ai.Result != nil && ai.Result.IsSSEFloating() {
		src := lw.operand(ai.Op2)
		dst := lw.operand(ai.Op1)
		subOp := OpSubss
		xorOp := OpXorps
		if ai.Result.Class == ctype.Double {
			subOp, xorOp = OpSubsd, OpXorpd
		}
		// dst = 0 - src; xorps/xorpd zeroes the destination first.
		return []Instruction{Insn2(xorOp, dst, dst, size), Insn2(subOp, src, dst, size)}
	}
	dst := lw.operand(ai.Op1)
	src := lw.operand(ai.Op2)
	insns := []Instruction{Insn2(OpMov, src, dst, size)}
	return append(insns, Insn1Sized(OpNeg, dst, size))
}

// lowerLogicalNot: integers compare against zero and sete; SSE operands
// test against a lazily-created zero-checker mask via ptest.
func (lw *lowerer) lowerLogicalNot(ai air.Instruction) []Instruction {
	size := sizeOf(ai.Op2.Type)
	dst := lw.operand(ai.Op1)
	if ai.Op2.Type != nil && ai.Op2.Type.IsSSEFloating() {
		checker := lw.file.ZeroChecker(ai.Op2.Type.Class == ctype.Float)
		cmp := Insn2(OpPtest, LabelRefOperand(checker.Label, 0), lw.operand(ai.Op2), size)
		return []Instruction{cmp, Insn1(OpSete, dst)}
	}
	cmp := Insn2(OpCmp, ImmediateOperand(0), lw.operand(ai.Op2), size)
	return []Instruction{cmp, Insn1(OpSete, dst)}
}

func (lw *lowerer) lowerCompare(ai air.Instruction) []Instruction {
	opt := ai.Op2.Type
	dst := lw.operand(ai.Op1)
	if opt != nil && opt.IsSSEFloating() {
		if ai.Op == air.OpCmpEq || ai.Op == air.OpCmpNeq {
			return lw.lowerSSEEquality(ai)
		}
		return lw.lowerSSEOrdering(ai)
	}
	size := sizeOf(opt)
	cmp := Insn2(OpCmp, lw.operand(ai.Op3), lw.operand(ai.Op2), size)
	return []Instruction{cmp, Insn1(cmpSet[ai.Op], dst)}
}

// sseOrderingSet maps a relational comparison to the setcc that reads the
// unsigned flags ucomiss/ucomisd leaves behind (CF/ZF, as if an unsigned
// cmp of op3 against op2 had run).
var sseOrderingSet = map[air.Opcode]Opcode{
	air.OpCmpLt: OpSetb, air.OpCmpLeq: OpSetbe, air.OpCmpGt: OpSeta, air.OpCmpGeq: OpSetnb,
}

// lowerSSEOrdering implements relational (non-equality) comparisons on SSE
// operands via ucomiss/ucomisd, which compare like an unsigned integer cmp
// on the CF/ZF flags. Unordered (NaN) operands set PF, which this recipe
// does not special-case since ordered relational comparisons are the
// common case this backend targets.
func (lw *lowerer) lowerSSEOrdering(ai air.Instruction) []Instruction {
	opt := ai.Op2.Type
	op := OpUcomiss
	if opt.Class == ctype.Double {
		op = OpUcomisd
	}
	dst := lw.operand(ai.Op1)
	cmp := Insn2(op, lw.operand(ai.Op3), lw.operand(ai.Op2), sizeOf(opt))
	return []Instruction{cmp, Insn1(sseOrderingSet[ai.Op], dst)}
}

// lowerSSEEquality handles ==/!= on SSE operands: one ucomiss/ucomisd
// whose zero flag and parity flag (unordered/NaN) are combined through a
// short branch, since the zero flag alone does not distinguish "equal"
// from "unordered".
func (lw *lowerer) lowerSSEEquality(ai air.Instruction) []Instruction {
	opt := ai.Op2.Type
	isDouble := opt.Class == ctype.Double
	op := OpUcomiss
	if isDouble {
		op = OpUcomisd
	}
	size := sizeOf(opt)
	dst := lw.operand(ai.Op1)
	cmp := Insn2(op, lw.operand(ai.Op3), lw.operand(ai.Op2), size)
	done := lw.file.NextLabel()
	if ai.Op == air.OpCmpNeq {
		// ZF clear: ordered and unequal; ZF set: true only when unordered.
		return []Instruction{cmp, Insn1(OpSetne, dst), Insn1(OpJne, LabelOperand(done)),
			Insn1(OpSetp, dst), Insn1(OpLabelInsn, LabelOperand(done))}
	}
	// ZF clear: unequal; ZF set: true only when ordered.
	return []Instruction{cmp, Insn1(OpSete, dst), Insn1(OpJne, LabelOperand(done)),
		Insn1(OpSetnp, dst), Insn1(OpLabelInsn, LabelOperand(done))}
}

// lowerExtend emits movsx/movzx with source
// and destination sizes from the two AIR operand types. Zero-extending a
// 32-to-64-bit value emits a plain 32-bit mov instead of movzx (the
// 32-bit write already clears the upper half on this ABI).
func (lw *lowerer) lowerExtend(ai air.Instruction, op Opcode) []Instruction {
	dstSize := sizeOf(ai.Result)
	srcSize := sizeOf(ai.Op2.Type)
	if op == OpMovzx && srcSize == Dword && dstSize == Qword {
		return []Instruction{Insn2(OpMov, lw.operand(ai.Op2), lw.operand(ai.Op1), Dword)}
	}
	src := lw.operand(ai.Op2)
	src.HasSize = true
	src.Size = srcSize
	return []Instruction{Insn2(op, src, lw.operand(ai.Op1), dstSize)}
}

func (lw *lowerer) lowerFloatToFloat(ai air.Instruction) []Instruction {
	toDouble := ai.Result.Class == ctype.Double
	op := OpCvtss2sd
	if !toDouble {
		op = OpCvtsd2ss
	}
	return []Instruction{Insn2(op, lw.operand(ai.Op2), lw.operand(ai.Op1), sizeOf(ai.Result))}
}

// lowerSSEToSigned: float/double -> signed integer type via
// cvttss2si/cvttsd2si.
func (lw *lowerer) lowerSSEToSigned(ai air.Instruction) []Instruction {
	opt := ai.Op2.Type
	op := OpCvttss2si
	if opt.Class == ctype.Double {
		op = OpCvttsd2si
	}
	size := sizeOf(ai.Result)
	if size < Dword {
		size = Dword
	}
	return []Instruction{Insn2(op, lw.operand(ai.Op2), lw.operand(ai.Op1), size)}
}

// lowerSignedToSSE: signed integer type -> float/double, sign-extending
// sub-int operands to int width first.
func (lw *lowerer) lowerSignedToSSE(ai air.Instruction) []Instruction {
	opt := ai.Op2.Type
	var insns []Instruction
	src := lw.operand(ai.Op2)
	if opt.IsInteger() && sizeOf(opt) < Dword {
		sized := src
		sized.HasSize = true
		sized.Size = sizeOf(opt)
		insns = append(insns, Insn2(OpMovsx, sized, src, Dword))
	}
	op := OpCvtsi2ss
	if ai.Result.Class == ctype.Double {
		op = OpCvtsi2sd
	}
	size := sizeOf(opt)
	if size < Dword {
		size = Dword
	}
	insns = append(insns, Insn2(op, src, lw.operand(ai.Op1), size))
	return insns
}

// lowerSSEToUnsigned converts float/double to an unsigned integer: a
// branchful comiss-against-the-i64-limit sequence for a 64-bit
// destination, and a direct 64-bit cvtt conversion for narrower
// destinations (every value of a narrower unsigned type fits the signed
// 64-bit result, so the sign-bit concern only applies once the destination
// itself is 64 bits wide).
func (lw *lowerer) lowerSSEToUnsigned(ai air.Instruction) []Instruction {
	dstSize := sizeOf(ai.Result)
	opt := ai.Op2.Type
	isFloat := opt.Class == ctype.Float
	if dstSize != Qword {
		op := OpCvttss2si
		if !isFloat {
			op = OpCvttsd2si
		}
		return []Instruction{Insn2(op, lw.operand(ai.Op2), lw.operand(ai.Op1), Qword)}
	}

	limit := lw.file.I64Limit(isFloat)
	gteLabel := lw.file.NextLabel()
	afterLabel := lw.file.NextLabel()
	cmpOp := OpComiss
	subOp := OpSubss
	cvtOp := OpCvttss2si
	if !isFloat {
		cmpOp, subOp, cvtOp = OpComisd, OpSubsd, OpCvttsd2si
	}
	src := lw.operand(ai.Op2)
	dst := lw.operand(ai.Op1)

	return []Instruction{
		Insn2(cmpOp, LabelRefOperand(limit.Label, 0), src, sizeOf(opt)),
		Insn1(OpJnb, LabelOperand(gteLabel)),
		Insn2(cvtOp, src, dst, Qword),
		Insn1(OpJmp, LabelOperand(afterLabel)),
		Insn1(OpLabelInsn, LabelOperand(gteLabel)),
		Insn2(subOp, LabelRefOperand(limit.Label, 0), src, sizeOf(opt)),
		Insn2(cvtOp, src, dst, Qword),
		Insn2(OpShl, ImmediateOperand(1), dst, Qword),
		Insn2(OpOr, ImmediateOperand(1), dst, Byte),
		Insn2(OpRor, ImmediateOperand(1), dst, Qword),
		Insn1(OpLabelInsn, LabelOperand(afterLabel)),
	}
}

// lowerUnsignedToSSE converts an unsigned integer to float/double: the
// 64-bit source case branches on the sign bit (shift right, convert, add
// the i64-limit constant when set); narrower unsigned sources are
// zero-extended first and converted directly since they never set the
// sign bit of a 64-bit register.
func (lw *lowerer) lowerUnsignedToSSE(ai air.Instruction) []Instruction {
	opt := ai.Op2.Type
	isFloat := ai.Result.Class == ctype.Float
	cvtOp := OpCvtsi2sd
	xorOp := OpXorpd
	if isFloat {
		cvtOp, xorOp = OpCvtsi2ss, OpXorps
	}
	dst := lw.operand(ai.Op1)
	src := lw.operand(ai.Op2)

	if sizeOf(opt) != Qword {
		widen := Insn2(OpMov, src, src, Dword)
		if sizeOf(opt) < Dword {
			sized := src
			sized.HasSize = true
			sized.Size = sizeOf(opt)
			widen = Insn2(OpMovzx, sized, src, Dword)
		}
		return []Instruction{widen, Insn2(xorOp, dst, dst, sizeOf(ai.Result)), Insn2(cvtOp, src, dst, Qword)}
	}

	limit := lw.file.I64Limit(isFloat)
	gteLabel := lw.file.NextLabel()
	afterLabel := lw.file.NextLabel()
	addOp := OpAddsd
	if isFloat {
		addOp = OpAddss
	}

	return []Instruction{
		Insn2(xorOp, dst, dst, sizeOf(ai.Result)),
		Insn2(OpTest, src, src, Qword),
		Insn1(OpJs, LabelOperand(gteLabel)),
		Insn2(cvtOp, src, dst, Qword),
		Insn1(OpJmp, LabelOperand(afterLabel)),
		Insn1(OpLabelInsn, LabelOperand(gteLabel)),
		Insn2(OpShl, ImmediateOperand(1), src, Qword),
		Insn2(OpShr, ImmediateOperand(1), src, Qword),
		Insn2(cvtOp, src, dst, Qword),
		Insn2(addOp, LabelRefOperand(limit.Label, 0), dst, sizeOf(opt)),
		Insn1(OpLabelInsn, LabelOperand(afterLabel)),
	}
}
