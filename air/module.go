package air

import "github.com/ripleymj/ecc/symtab"

// Routine is one compiled function in AIR form: a symbol, its instructions
// in emission order, and whether it needs the variadic save area.
type Routine struct {
	Sym        *symtab.Symbol
	Insns      []Instruction
	UsesVararg bool
}

// DataObject is one static-storage object destined for .data or .rodata:
// its symbol, byte image, relocation list, and read-only flag.
type DataObject struct {
	Sym      *symtab.Symbol
	Bytes    []byte
	Relocs   []symtab.Relocation
	ReadOnly bool
}

// Module holds everything one translation unit's backend input comprises:
// routines, data objects, and the rodata pool.
type Module struct {
	Routines []*Routine
	Data     []*DataObject
	RoData   []*DataObject
}

// AddRoutine appends a routine built from sym's instructions to the
// module, in the order routines are finished lowering; output order must
// be a pure function of traversal order.
func (m *Module) AddRoutine(sym *symtab.Symbol, insns []Instruction, usesVararg bool) *Routine {
	r := &Routine{Sym: sym, Insns: insns, UsesVararg: usesVararg}
	m.Routines = append(m.Routines, r)
	return r
}

// AddData appends a data object to either .data or .rodata depending on
// readOnly.
func (m *Module) AddData(sym *symtab.Symbol, readOnly bool) *DataObject {
	d := &DataObject{Sym: sym, Bytes: sym.Data, Relocs: sym.Relocs, ReadOnly: readOnly}
	if readOnly {
		m.RoData = append(m.RoData, d)
	} else {
		m.Data = append(m.Data, d)
	}
	return d
}
