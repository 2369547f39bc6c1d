package ctype

// Compatible implements ISO 6.2.7: type compatibility is qualifier-
// sensitive, reflexive, and symmetric. Error is treated as compatible with
// everything so a single bad subexpression does not cascade.
func Compatible(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Class == Error || b.Class == Error {
		return true
	}
	if a.Qualifiers != b.Qualifiers {
		return false
	}
	return compatibleIgnoringClassQualifiers(a, b)
}

// CompatibleIgnoringQualifiers implements the same structural test as
// Compatible but does not require the top-level qualifier sets to match
// (used by can_assign's struct/union and pointee rules).
func CompatibleIgnoringQualifiers(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Class == Error || b.Class == Error {
		return true
	}
	return compatibleIgnoringClassQualifiers(a, b)
}

func compatibleIgnoringClassQualifiers(a, b *Type) bool {
	if a.Class != b.Class {
		return false
	}
	switch a.Class {
	case Pointer:
		return Compatible(a.Elem, b.Elem)
	case Array:
		if a.ArrayLengthKind == LengthKnown && b.ArrayLengthKind == LengthKnown && a.ArrayLength != b.ArrayLength {
			return false
		}
		return Compatible(a.Elem, b.Elem)
	case Function:
		if a.Variadic != b.Variadic {
			return false
		}
		if !Compatible(a.Return, b.Return) {
			return false
		}
		if len(a.Params) > 0 && len(b.Params) > 0 {
			if len(a.Params) != len(b.Params) {
				return false
			}
			for i := range a.Params {
				if !Compatible(a.Params[i], b.Params[i]) {
					return false
				}
			}
		}
		return true
	case Struct, Union, Enum:
		// Distinct tagged declarations are distinct types unless they are
		// literally the same declaration; within one translation unit a tag
		// identifies a unique Type, so pointer/value identity via Tag
		// suffices here.
		return a.Tag != "" && a.Tag == b.Tag
	default:
		return true
	}
}

// Compose implements ISO 6.2.7p3: the composite type of two compatible
// types, combining completeness/size information from both. Compose must
// only be called on types already known Compatible.
func Compose(a, b *Type) *Type {
	if a.Class == Error {
		return b
	}
	if b.Class == Error {
		return a
	}
	switch a.Class {
	case Pointer:
		return &Type{Class: Pointer, Qualifiers: a.Qualifiers, Elem: Compose(a.Elem, b.Elem)}
	case Array:
		elem := Compose(a.Elem, b.Elem)
		switch {
		case a.ArrayLengthKind == LengthKnown:
			return MakeArray(elem, a.ArrayLength)
		case b.ArrayLengthKind == LengthKnown:
			return MakeArray(elem, b.ArrayLength)
		default:
			return MakeUnspecifiedArray(elem)
		}
	case Function:
		params := a.Params
		if len(params) == 0 {
			params = b.Params
		}
		composedParams := make([]*Type, len(params))
		for i := range params {
			if i < len(a.Params) && i < len(b.Params) {
				composedParams[i] = Compose(a.Params[i], b.Params[i])
			} else {
				composedParams[i] = params[i]
			}
		}
		return &Type{Class: Function, Return: Compose(a.Return, b.Return), Params: composedParams, Variadic: a.Variadic}
	default:
		return a.Clone()
	}
}
