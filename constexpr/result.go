// Package constexpr implements the constant-expression evaluator: folding
// of arithmetic, bitwise, comparison, conditional, cast, sizeof, and
// address constant expressions.
package constexpr

import (
	"encoding/binary"

	"github.com/ripleymj/ecc/ast"
	"github.com/ripleymj/ecc/ctype"
	"github.com/ripleymj/ecc/symtab"
)

// Kind distinguishes the four Result variants.
type Kind int

const (
	KindInteger Kind = iota
	KindArithmetic
	KindAddress
	KindFailure
)

// FailureReason taxonomizes why a fold failed.
type FailureReason int

const (
	ReasonNone FailureReason = iota
	ReasonNotConstant
	ReasonSignedOverflow
	ReasonDivisionByZero
	ReasonInvalidOperand
	ReasonNotAnAddressConstant
)

func (r FailureReason) String() string {
	switch r {
	case ReasonNotConstant:
		return "not a constant expression"
	case ReasonSignedOverflow:
		return "signed_overflow"
	case ReasonDivisionByZero:
		return "division by zero in constant expression"
	case ReasonInvalidOperand:
		return "invalid operand to constant expression"
	case ReasonNotAnAddressConstant:
		return "not an address constant"
	}
	return "unknown failure"
}

// Result is the outcome of folding one expression subtree.
type Result struct {
	Kind  Kind
	Type  *ctype.Type
	Bytes []byte // little-endian image for Integer/Arithmetic

	// Address
	Symbol   *symtab.Symbol
	Offset   int64
	Negative bool

	// Failure
	Reason  FailureReason
	Message string
}

func failuref(reason FailureReason, msg string) Result {
	return Result{Kind: KindFailure, Reason: reason, Message: msg}
}

func (r Result) Succeeded() bool { return r.Kind != KindFailure }

// AsI64 extracts the integer value, sign-extending it from the result's
// width when the result's type is signed.
func (r Result) AsI64() int64 {
	v := r.AsU64()
	if r.Type != nil && r.Type.IsSigned() && len(r.Bytes) > 0 && len(r.Bytes) < 8 {
		shift := uint(64 - 8*len(r.Bytes))
		return int64(v<<shift) >> shift
	}
	return int64(v)
}

func (r Result) AsU64() uint64 {
	var buf [8]byte
	copy(buf[:], r.Bytes)
	return binary.LittleEndian.Uint64(buf[:])
}

func integerResult(value uint64, t *ctype.Type) Result {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	width := t.Size()
	return Result{Kind: KindInteger, Type: t, Bytes: buf[:width]}
}

func arithmeticResult(value float64, t *ctype.Type) Result {
	buf := make([]byte, 8)
	if t.Class == ctype.Float {
		binary.LittleEndian.PutUint32(buf, uint32(float32Bits(float32(value))))
		return Result{Kind: KindArithmetic, Type: t, Bytes: buf[:4]}
	}
	binary.LittleEndian.PutUint64(buf, float64Bits(value))
	return Result{Kind: KindArithmetic, Type: t, Bytes: buf}
}

func addressResult(sym *symtab.Symbol, offset int64, negative bool, t *ctype.Type) Result {
	return Result{Kind: KindAddress, Type: t, Symbol: sym, Offset: offset, Negative: negative}
}

// node is the minimal subset of *ast.Node this package needs; defined as a
// local alias purely for readability at call sites.
type node = ast.Node
