// Package ctype implements the C type system: representation, compatibility,
// composition, size/alignment, and the arithmetic-conversion rules of ISO
// C99 6.2.7 and 6.3.
package ctype

import "fmt"

// Class identifies the class of a Type.
type Class int

const (
	Void Class = iota
	Bool
	Char
	SignedChar
	UnsignedChar
	Short
	UnsignedShort
	Int
	UnsignedInt
	Long
	UnsignedLong
	LongLong
	UnsignedLongLong
	Float
	Double
	LongDouble
	Pointer
	Array
	Function
	Struct
	Union
	Enum
	Label
	Error
)

// Qualifier is a bitmask of const/volatile/restrict.
type Qualifier int

const (
	QualNone     Qualifier = 0
	QualConst    Qualifier = 1 << iota
	QualVolatile Qualifier = 1 << iota
	QualRestrict Qualifier = 1 << iota
)

// ArrayLengthKind distinguishes a known array length from an unspecified
// ("incomplete until initializer elaboration fixes it") or
// expression-governed (VLA, never completed by this module) length.
type ArrayLengthKind int

const (
	LengthKnown ArrayLengthKind = iota
	LengthUnspecified
	LengthExpression
)

// Member describes one struct/union member.
type Member struct {
	Name     string
	Type     *Type
	BitWidth int // -1 if not a bitfield
}

// Enumerator is one named constant of an enum type.
type Enumerator struct {
	Name  string
	Value int64
}

// Type is a tagged value describing a C type. Types are value-like; callers
// that need an independent copy must call Clone explicitly; nothing in this
// package aliases a Type behind the caller's back.
type Type struct {
	Class      Class
	Qualifiers Qualifier

	// Pointer, Array
	Elem *Type

	// Array
	ArrayLengthKind ArrayLengthKind
	ArrayLength     int64

	// Function
	Return     *Type
	Params     []*Type
	Variadic   bool
	InlineFunc bool

	// Struct, Union
	Members []Member
	Tag     string

	// Enum
	Enumerators []Enumerator
}

// Basic constructs a type of the given scalar/void class with no qualifiers.
func Basic(class Class) *Type {
	return &Type{Class: class}
}

// Qualified returns a copy of t with q merged into its qualifier set.
func Qualified(t *Type, q Qualifier) *Type {
	c := t.Clone()
	c.Qualifiers |= q
	return c
}

// Clone produces an independent copy of t. Element/return/member types are
// shared by pointer since Type trees are conceptually immutable once built;
// callers that mutate a cloned type's nested type must clone those too.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	c := *t
	c.Params = append([]*Type(nil), t.Params...)
	c.Members = append([]Member(nil), t.Members...)
	c.Enumerators = append([]Enumerator(nil), t.Enumerators...)
	return &c
}

// Unqualified returns a copy of t with all qualifiers stripped.
func Unqualified(t *Type) *Type {
	c := t.Clone()
	c.Qualifiers = QualNone
	return c
}

func MakePointer(to *Type) *Type {
	return &Type{Class: Pointer, Elem: to}
}

// MakeArray constructs an array of the given element type with a known
// length. Use MakeUnspecifiedArray for the incomplete "T[]" form.
func MakeArray(elem *Type, length int64) *Type {
	return &Type{Class: Array, Elem: elem, ArrayLengthKind: LengthKnown, ArrayLength: length}
}

func MakeUnspecifiedArray(elem *Type) *Type {
	return &Type{Class: Array, Elem: elem, ArrayLengthKind: LengthUnspecified}
}

func MakeExpressionArray(elem *Type) *Type {
	return &Type{Class: Array, Elem: elem, ArrayLengthKind: LengthExpression}
}

func MakeFunction(ret *Type, params []*Type, variadic bool) *Type {
	return &Type{Class: Function, Return: ret, Params: params, Variadic: variadic}
}

func MakeStruct(tag string, members []Member) *Type {
	return &Type{Class: Struct, Tag: tag, Members: members}
}

func MakeUnion(tag string, members []Member) *Type {
	return &Type{Class: Union, Tag: tag, Members: members}
}

func MakeEnum(tag string, enumerators []Enumerator) *Type {
	return &Type{Class: Enum, Tag: tag, Enumerators: enumerators}
}

func MakeError() *Type {
	return &Type{Class: Error}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Class {
	case Void:
		return "void"
	case Bool:
		return "_Bool"
	case Char:
		return "char"
	case SignedChar:
		return "signed char"
	case UnsignedChar:
		return "unsigned char"
	case Short:
		return "short"
	case UnsignedShort:
		return "unsigned short"
	case Int:
		return "int"
	case UnsignedInt:
		return "unsigned int"
	case Long:
		return "long"
	case UnsignedLong:
		return "unsigned long"
	case LongLong:
		return "long long"
	case UnsignedLongLong:
		return "unsigned long long"
	case Float:
		return "float"
	case Double:
		return "double"
	case LongDouble:
		return "long double"
	case Pointer:
		return fmt.Sprintf("%s*", t.Elem)
	case Array:
		switch t.ArrayLengthKind {
		case LengthKnown:
			return fmt.Sprintf("%s[%d]", t.Elem, t.ArrayLength)
		default:
			return fmt.Sprintf("%s[]", t.Elem)
		}
	case Function:
		return fmt.Sprintf("%s(...)", t.Return)
	case Struct:
		return "struct " + t.Tag
	case Union:
		return "union " + t.Tag
	case Enum:
		return "enum " + t.Tag
	case Label:
		return "<label>"
	case Error:
		return "<error>"
	}
	return "<unknown>"
}
