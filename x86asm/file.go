package x86asm

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ripleymj/ecc/internal/elog"
)

// Reloc is one relocation entry in a DataObject's image: at Offset, emit
// the address of Label plus Addend.
type Reloc struct {
	Offset int64
	Label  string
	Addend int64
}

// DataObject is one assembled .data/.rodata entry.
type DataObject struct {
	Label     string
	ReadOnly  bool
	Alignment int64
	Bytes     []byte
	Relocs    []Reloc
}

// Routine is one assembled function body plus everything its prologue/
// epilogue needs.
type Routine struct {
	ID               int
	Label            string
	Global           bool
	Insns            []Instruction
	StackAlloc       int64
	UsesVarargs      bool
	UsedNonvolatiles NonvolatileMask
}

// File is the complete assembled translation unit, ready for text
// emission.
type File struct {
	Data     []*DataObject
	RoData   []*DataObject
	Routines []*Routine

	labelCounter int

	sse32ZeroChecker *DataObject
	sse64ZeroChecker *DataObject
	sse32I64Limit    *DataObject
	sse64I64Limit    *DataObject

	floatConstants map[uint64]*DataObject
	floatConstSeq  int
}

func NewFile() *File { return &File{} }

// NextLabel mints the next backend-generated intra-file label
// (".LGEN<n>").
func (f *File) NextLabel() string {
	f.labelCounter++
	return fmt.Sprintf(".LGEN%d", f.labelCounter)
}

// ZeroChecker returns the lazily-created "__sseNN_zero_checker" rodata
// mask used by logical-NOT on SSE operands: a 16-byte mask with just the
// sign bits of the float/double lanes zeroed.
func (f *File) ZeroChecker(isFloat bool) *DataObject {
	if isFloat {
		if f.sse32ZeroChecker == nil {
			f.sse32ZeroChecker = f.addZeroChecker("__sse32_zero_checker", 0x7FFFFFFF)
		}
		return f.sse32ZeroChecker
	}
	if f.sse64ZeroChecker == nil {
		f.sse64ZeroChecker = f.addZeroChecker("__sse64_zero_checker", 0x7FFFFFFFFFFFFFFF)
	}
	return f.sse64ZeroChecker
}

func (f *File) addZeroChecker(name string, hi uint64) *DataObject {
	bytes := make([]byte, 16)
	for i := 0; i < 8; i++ {
		bytes[i] = byte(hi >> (8 * i))
	}
	d := &DataObject{Label: name, ReadOnly: true, Alignment: 16, Bytes: bytes}
	f.RoData = append(f.RoData, d)
	elog.Trace().Debugw("allocated sse zero checker", zap.String("label", name), zap.String("size", humanize.Bytes(uint64(len(bytes)))))
	return d
}

// I64Limit returns the lazily-created "__sseNN_i64_limit" rodata constant
// (9223372036854775808.0, as float or double) used by the unsigned-64
// conversion recipes.
func (f *File) I64Limit(isFloat bool) *DataObject {
	if isFloat {
		if f.sse32I64Limit == nil {
			f.sse32I64Limit = f.addI64Limit("__sse32_i64_limit", true)
		}
		return f.sse32I64Limit
	}
	if f.sse64I64Limit == nil {
		f.sse64I64Limit = f.addI64Limit("__sse64_i64_limit", false)
	}
	return f.sse64I64Limit
}

func (f *File) addI64Limit(name string, isFloat bool) *DataObject {
	var bytes []byte
	if isFloat {
		bytes = float32Bytes(9223372036854775808.0)
	} else {
		bytes = float64Bytes(9223372036854775808.0)
	}
	d := &DataObject{Label: name, ReadOnly: true, Alignment: int64(len(bytes)), Bytes: bytes}
	f.RoData = append(f.RoData, d)
	elog.Trace().Debugw("allocated sse i64 limit", zap.String("label", name), zap.String("size", humanize.Bytes(uint64(len(bytes)))))
	return d
}

// FloatConstant returns the rodata label holding the bit pattern of v (as
// a 4-byte float or 8-byte double), creating the data object on first use
// of that exact value. Floating-point immediates have no encoding in
// x86-64 SSE instructions, so every literal operand must round-trip
// through memory.
func (f *File) FloatConstant(v float64, isFloat bool) *DataObject {
	if f.floatConstants == nil {
		f.floatConstants = make(map[uint64]*DataObject)
	}
	var key uint64
	var bytes []byte
	if isFloat {
		key = uint64(math.Float32bits(float32(v))) | 1<<32
		bytes = float32Bytes(float32(v))
	} else {
		key = math.Float64bits(v)
		bytes = float64Bytes(v)
	}
	if d, ok := f.floatConstants[key]; ok {
		return d
	}
	f.floatConstSeq++
	label := fmt.Sprintf("__fc%d", f.floatConstSeq)
	d := &DataObject{Label: label, ReadOnly: true, Alignment: int64(len(bytes)), Bytes: bytes}
	f.RoData = append(f.RoData, d)
	f.floatConstants[key] = d
	return d
}

func float32Bytes(v float32) []byte {
	bits := math.Float32bits(v)
	return []byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}

func float64Bytes(v float64) []byte {
	bits := math.Float64bits(v)
	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(bits >> (8 * i))
	}
	return out
}
