package x86asm

import (
	"fmt"
	"strings"
)

// WriteTo renders the complete assembly file text, section by section:
// .data, .section .rodata, then .text.
func (f *File) WriteTo() string {
	var sb strings.Builder
	if len(f.Data) > 0 {
		sb.WriteString("    .data\n")
		for _, d := range f.Data {
			writeData(&sb, d)
		}
	}
	if len(f.RoData) > 0 {
		sb.WriteString("    .section .rodata\n")
		for _, d := range f.RoData {
			writeData(&sb, d)
		}
	}
	if len(f.Routines) > 0 {
		sb.WriteString("    .text\n")
		for _, r := range f.Routines {
			writeRoutine(&sb, r)
		}
	}
	return sb.String()
}

// writeData emits one data object: an alignment directive, its label, and
// the byte image walked left to right, switching to ".quad label[+/-off]"
// at each relocation and otherwise emitting the largest-aligned chunk that
// fits.
func writeData(sb *strings.Builder, d *DataObject) {
	fmt.Fprintf(sb, "    .align %d\n", d.Alignment)
	fmt.Fprintf(sb, "%s:\n", d.Label)

	relocAt := make(map[int64]Reloc, len(d.Relocs))
	for _, r := range d.Relocs {
		relocAt[r.Offset] = r
	}

	i := int64(0)
	n := int64(len(d.Bytes))
	for i < n {
		if r, ok := relocAt[i]; ok {
			switch {
			case r.Addend > 0:
				fmt.Fprintf(sb, "    .quad %s+%d\n", r.Label, r.Addend)
			case r.Addend < 0:
				fmt.Fprintf(sb, "    .quad %s-%d\n", r.Label, -r.Addend)
			default:
				fmt.Fprintf(sb, "    .quad %s\n", r.Label)
			}
			i += 8
			continue
		}
		switch {
		case i+8 <= n:
			fmt.Fprintf(sb, "    .quad 0x%X\n", leU64(d.Bytes[i:i+8]))
			i += 8
		case i+4 <= n:
			fmt.Fprintf(sb, "    .long 0x%X\n", leU32(d.Bytes[i:i+4]))
			i += 4
		case i+2 <= n:
			fmt.Fprintf(sb, "    .word 0x%X\n", leU16(d.Bytes[i:i+2]))
			i += 2
		default:
			fmt.Fprintf(sb, "    .byte 0x%X\n", d.Bytes[i])
			i++
		}
	}
}

func leU64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func leU32(b []byte) uint32 {
	var v uint32
	for i := 3; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}
	return v
}

func leU16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// writeVarargsSetup emits the System V register save area for a variadic
// routine's entry: the six integer-argument registers followed by the
// eight XMM argument registers, at non-overlapping offsets within the
// reserved 176 bytes. Each register gets its own slot; a later va_arg
// walk depends on none of them colliding.
func writeVarargsSetup(sb *strings.Builder) {
	intRegs := []struct {
		name string
		off  int
	}{
		{"rdi", -48}, {"rsi", -40}, {"rdx", -32}, {"rcx", -24}, {"r8", -16}, {"r9", -8},
	}
	for _, r := range intRegs {
		fmt.Fprintf(sb, "    movq %%%s, %d(%%rbp)\n", r.name, r.off)
	}
	xmmOff := -64
	for i := 7; i >= 0; i-- {
		fmt.Fprintf(sb, "    movaps %%xmm%d, %d(%%rbp)\n", i, xmmOff)
		xmmOff -= 16
	}
}

// writeRoutine emits one function: prologue (push rbp, set up frame,
// allocate locals, push nonvolatiles, varargs save area), body, the shared
// return label, nonvolatile pops, and leave/ret.
func writeRoutine(sb *strings.Builder, r *Routine) {
	if r.Global {
		fmt.Fprintf(sb, "    .globl %s\n", r.Label)
	}
	fmt.Fprintf(sb, "%s:\n", r.Label)
	sb.WriteString("    pushq %rbp\n")
	sb.WriteString("    movq %rsp, %rbp\n")
	if r.StackAlloc > 0 {
		fmt.Fprintf(sb, "    subq $%d, %%rsp\n", r.StackAlloc)
	}
	for _, insn := range WritePushNonvolatiles(r.UsedNonvolatiles) {
		writeLine(sb, insn)
	}
	if r.UsesVarargs {
		writeVarargsSetup(sb)
	}

	lrLabel := fmt.Sprintf(".LR%d", r.ID)
	lrJumps := 0
	for i, insn := range r.Insns {
		if insn.Op == OpJmp && insn.Op1 != nil && insn.Op1.Kind == OpKindLabel &&
			strings.EqualFold(insn.Op1.Label, lrLabel) {
			if i == len(r.Insns)-1 {
				continue
			}
			lrJumps++
		}
		writeLine(sb, insn)
	}
	if lrJumps > 0 {
		fmt.Fprintf(sb, "%s:\n", lrLabel)
	}

	for _, insn := range WritePopNonvolatiles(r.UsedNonvolatiles) {
		writeLine(sb, insn)
	}
	sb.WriteString("    leave\n")
	sb.WriteString("    ret\n")
}

func writeLine(sb *strings.Builder, insn Instruction) {
	sb.WriteString(FormatInstruction(insn))
	sb.WriteByte('\n')
}
