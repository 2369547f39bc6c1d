// Package symtab implements the scoped, namespaced symbol table shared by
// every pass in the analyzer: insertion order is preserved so static
// initializers and tentative-definition promotion see symbols in
// declaration order.
package symtab

import "github.com/ripleymj/ecc/ctype"

// Namespace is one of the four C namespaces (ISO 6.2.3).
type Namespace int

const (
	NamespaceOrdinary Namespace = iota
	NamespaceLabel
	NamespaceTag
	NamespaceMember
)

type StorageDuration int

const (
	DurationNone StorageDuration = iota
	DurationStatic
	DurationAutomatic
	DurationAllocated
)

type Linkage int

const (
	LinkageNone Linkage = iota
	LinkageInternal
	LinkageExternal
)

// Relocation is one entry of a static image's relocation table: at
// DataOffset, write the address of TargetSymbol plus Addend.
type Relocation struct {
	DataOffset   int64
	TargetSymbol *Symbol
	Addend       int64
}

// Symbol owns everything one declared (or synthesized) identifier needs
// across the rest of the pipeline: its type, namespace, linkage, storage
// duration, optional static image, and a lazily assigned stack offset.
type Symbol struct {
	Name          string
	Type          *ctype.Type
	Namespace     Namespace
	Declarer      interface{} // the syntax node that introduced this symbol
	Duration      StorageDuration
	Linkage       Linkage
	Data          []byte
	Relocs        []Relocation
	StackOffset   int64
	StackAssigned bool

	// Tentative marks a file-scope object declaration without an
	// initializer; FinalizeTentativeDefinitions promotes these to
	// definitions at end-of-translation-unit.
	Tentative bool
	Defined   bool
}

type scopeKey struct {
	name string
	ns   Namespace
}

// Scope is one block/function/file lexical scope.
type Scope struct {
	parent  *Scope
	symbols map[scopeKey][]*Symbol
	order   []*Symbol // file-scope insertion order, used for static image emission
	bySyn   map[interface{}]*Symbol
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[scopeKey][]*Symbol),
		bySyn:   make(map[interface{}]*Symbol),
	}
}

// Add appends sym to this scope's binding list for (name, ns), preserving
// insertion order. It does not check for conflicts; callers (the analyzer)
// run redeclaration checks before calling Add.
func (s *Scope) Add(name string, ns Namespace, sym *Symbol) {
	k := scopeKey{name, ns}
	s.symbols[k] = append(s.symbols[k], sym)
	s.order = append(s.order, sym)
	if sym.Declarer != nil {
		s.bySyn[sym.Declarer] = sym
	}
}

// Lookup walks outward from this scope looking for a binding of (name, ns),
// returning the most recent one found.
func (s *Scope) Lookup(name string, ns Namespace) *Symbol {
	for scope := s; scope != nil; scope = scope.parent {
		if list := scope.symbols[scopeKey{name, ns}]; len(list) > 0 {
			return list[len(list)-1]
		}
	}
	return nil
}

// Count returns every symbol bound to (name, ns) in this scope (not
// ancestors) plus whether this is the first binding at this exact scope.
func (s *Scope) Count(name string, ns Namespace) (list []*Symbol, isFirstInScope bool) {
	list = s.symbols[scopeKey{name, ns}]
	return list, len(list) == 0
}

// GetBySyntax retrieves the symbol bound to a declarator/node in this exact
// scope (not ancestors).
func (s *Scope) GetBySyntax(node interface{}) (*Symbol, bool) {
	sym, ok := s.bySyn[node]
	return sym, ok
}

// GetByClasses walks outward looking for a symbol of the given class/name
// in the given namespace, used to find built-in helpers such as the
// __ecc_va_list struct installed by the runtime prelude.
func (s *Scope) GetByClasses(name string, class ctype.Class, ns Namespace) *Symbol {
	sym := s.Lookup(name, ns)
	if sym != nil && sym.Type != nil && sym.Type.Class == class {
		return sym
	}
	return nil
}

// AllInOrder returns every symbol added directly to this scope, in
// insertion order.
func (s *Scope) AllInOrder() []*Symbol {
	return s.order
}

func (s *Symbol) GetStorageDuration() StorageDuration {
	return s.Duration
}
