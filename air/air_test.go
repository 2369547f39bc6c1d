package air

import (
	"testing"

	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

func TestAddDirectElidesExtraOperand(t *testing.T) {
	intT := ctype.Basic(ctype.Int)
	a := Register(1, intT)
	b := Register(2, intT)
	inst := NewInst2(OpAddDirect, a, b, intT)
	if inst.NumOps != 2 {
		t.Fatalf("got %d operands, want 2", inst.NumOps)
	}
	if inst.Op1.Reg != 1 || inst.Op2.Reg != 2 {
		t.Fatalf("operands not wired correctly: %+v", inst)
	}
}

func TestModuleOrdersDataByReadOnly(t *testing.T) {
	m := &Module{}
	roSym := &symtab.Symbol{Name: "__sl0", Type: ctype.MakeArray(ctype.Basic(ctype.Char), 3), Data: []byte("ab")}
	rwSym := &symtab.Symbol{Name: "g", Type: ctype.Basic(ctype.Int), Data: make([]byte, 4)}
	m.AddData(roSym, true)
	m.AddData(rwSym, false)
	if len(m.RoData) != 1 || m.RoData[0].Sym.Name != "__sl0" {
		t.Fatalf("expected __sl0 in rodata, got %+v", m.RoData)
	}
	if len(m.Data) != 1 || m.Data[0].Sym.Name != "g" {
		t.Fatalf("expected g in data, got %+v", m.Data)
	}
}

func TestAddRoutinePreservesOrder(t *testing.T) {
	m := &Module{}
	fnA := &symtab.Symbol{Name: "a"}
	fnB := &symtab.Symbol{Name: "b"}
	m.AddRoutine(fnA, nil, false)
	m.AddRoutine(fnB, nil, true)
	if len(m.Routines) != 2 || m.Routines[0].Sym.Name != "a" || m.Routines[1].Sym.Name != "b" {
		t.Fatalf("routine order not preserved: %+v", m.Routines)
	}
	if !m.Routines[1].UsesVararg {
		t.Fatal("expected routine b to carry UsesVararg")
	}
}
