package symtab

import "github.com/ripleymj/ecc/ctype"

// StorageClass mirrors the subset of ISO 6.7.1 storage-class specifiers
// relevant to linkage/duration derivation.
type StorageClass int

const (
	StorageClassNone StorageClass = iota
	StorageClassStatic
	StorageClassExtern
	StorageClassAuto
	StorageClassRegister
	StorageClassTypedef
)

// DeclContext is the caller-supplied description of one declaration's
// context, consumed by DeriveLinkage and DeriveStorageDuration.
type DeclContext struct {
	AtFileScope  bool
	StorageClass StorageClass
	IsFunction   bool
	// PriorVisibleLinkage is the linkage of an earlier visible declaration
	// of the same identifier, if any; extern inherits it when present.
	PriorVisibleLinkage Linkage
	HasPriorVisible     bool
}

// DeriveLinkage implements the ISO 6.2.2 linkage rules: file-scope static
// gets internal linkage, extern inherits any prior visible linkage or else
// external, functions without a storage class get external linkage, and
// block-scope objects without extern have none.
func DeriveLinkage(ctx DeclContext) Linkage {
	switch {
	case ctx.AtFileScope && ctx.StorageClass == StorageClassStatic:
		return LinkageInternal
	case ctx.StorageClass == StorageClassExtern:
		if ctx.HasPriorVisible {
			return ctx.PriorVisibleLinkage
		}
		return LinkageExternal
	case ctx.AtFileScope && ctx.IsFunction && ctx.StorageClass == StorageClassNone:
		return LinkageExternal
	case ctx.AtFileScope && ctx.StorageClass == StorageClassNone:
		return LinkageExternal
	case !ctx.AtFileScope && ctx.IsFunction && ctx.StorageClass == StorageClassNone:
		return LinkageExternal
	default:
		return LinkageNone
	}
}

// DeriveStorageDuration implements the ISO 6.2.4 storage-duration rules:
// static and every file-scope object get static duration, block-scope
// objects without extern or static get automatic duration.
func DeriveStorageDuration(ctx DeclContext) StorageDuration {
	if ctx.StorageClass == StorageClassStatic || ctx.AtFileScope {
		return DurationStatic
	}
	if ctx.StorageClass == StorageClassExtern {
		return DurationStatic
	}
	return DurationAutomatic
}

// NewObjectSymbol constructs a Symbol for a declared object/function,
// deriving linkage and storage duration from ctx.
func NewObjectSymbol(name string, t *ctype.Type, declarer interface{}, ctx DeclContext) *Symbol {
	return &Symbol{
		Name:     name,
		Type:     t,
		Declarer: declarer,
		Linkage:  DeriveLinkage(ctx),
		Duration: DeriveStorageDuration(ctx),
	}
}

// MergeLinkage merges the linkage of a redeclaration with a prior
// compatible one: an identifier declared extern after a prior
// internal-linkage declaration inherits internal linkage, never regresses
// to external.
func MergeLinkage(existing, incoming Linkage) Linkage {
	if existing == LinkageInternal {
		return LinkageInternal
	}
	if incoming == LinkageNone {
		return existing
	}
	return incoming
}
