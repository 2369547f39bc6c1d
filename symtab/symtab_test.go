package symtab

import (
	"testing"

	"github.com/ripleymj/ecc/ctype"
)

func TestLookupWalksOutward(t *testing.T) {
	file := NewScope(nil)
	outer := &Symbol{Name: "x", Type: ctype.Basic(ctype.Int)}
	file.Add("x", NamespaceOrdinary, outer)

	block := NewScope(file)
	if got := block.Lookup("x", NamespaceOrdinary); got != outer {
		t.Fatalf("lookup from inner scope should find the file-scope binding, got %+v", got)
	}

	inner := &Symbol{Name: "x", Type: ctype.Basic(ctype.Long)}
	block.Add("x", NamespaceOrdinary, inner)
	if got := block.Lookup("x", NamespaceOrdinary); got != inner {
		t.Fatal("inner binding should shadow the outer one")
	}
	if got := file.Lookup("x", NamespaceOrdinary); got != outer {
		t.Fatal("file scope must not see the block-scope binding")
	}
}

func TestLookupIsNamespaceSensitive(t *testing.T) {
	s := NewScope(nil)
	tag := &Symbol{Name: "s", Namespace: NamespaceTag}
	s.Add("s", NamespaceTag, tag)
	if got := s.Lookup("s", NamespaceOrdinary); got != nil {
		t.Fatalf("tag binding must be invisible in the ordinary namespace, got %+v", got)
	}
	if got := s.Lookup("s", NamespaceTag); got != tag {
		t.Fatal("tag binding should be found in the tag namespace")
	}
}

func TestCountReportsFirstInScope(t *testing.T) {
	s := NewScope(nil)
	if _, first := s.Count("y", NamespaceOrdinary); !first {
		t.Fatal("no bindings yet, expected first-in-scope")
	}
	s.Add("y", NamespaceOrdinary, &Symbol{Name: "y"})
	list, first := s.Count("y", NamespaceOrdinary)
	if first || len(list) != 1 {
		t.Fatalf("expected one prior binding, got %d (first=%v)", len(list), first)
	}
}

func TestDeriveLinkage(t *testing.T) {
	tests := []struct {
		name string
		ctx  DeclContext
		want Linkage
	}{
		{"file-scope static", DeclContext{AtFileScope: true, StorageClass: StorageClassStatic}, LinkageInternal},
		{"extern inherits prior", DeclContext{StorageClass: StorageClassExtern, HasPriorVisible: true, PriorVisibleLinkage: LinkageInternal}, LinkageInternal},
		{"extern without prior", DeclContext{StorageClass: StorageClassExtern}, LinkageExternal},
		{"function without storage class", DeclContext{AtFileScope: true, IsFunction: true}, LinkageExternal},
		{"file-scope object", DeclContext{AtFileScope: true}, LinkageExternal},
		{"block-scope object", DeclContext{}, LinkageNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveLinkage(tt.ctx); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeLinkageNeverRegressesInternal(t *testing.T) {
	if MergeLinkage(LinkageInternal, LinkageExternal) != LinkageInternal {
		t.Fatal("a later extern declaration must keep internal linkage")
	}
	if MergeLinkage(LinkageExternal, LinkageNone) != LinkageExternal {
		t.Fatal("no-linkage redeclaration must not clear external linkage")
	}
}

func TestDeriveStorageDuration(t *testing.T) {
	if DeriveStorageDuration(DeclContext{AtFileScope: true}) != DurationStatic {
		t.Fatal("file-scope objects have static duration")
	}
	if DeriveStorageDuration(DeclContext{StorageClass: StorageClassStatic}) != DurationStatic {
		t.Fatal("static at block scope has static duration")
	}
	if DeriveStorageDuration(DeclContext{}) != DurationAutomatic {
		t.Fatal("block-scope objects without extern/static are automatic")
	}
}
