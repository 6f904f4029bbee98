package runtime

import "testing"

func TestScan_MetaclassSharesClassEntry(t *testing.T) {
	data := []byte("_OBJC_CLASS_$_Foo\x00_OBJC_METACLASS_$_Foo\x00")
	r := Scan(data, Options{})
	if len(r.Classes) != 1 {
		t.Fatalf("got %d classes, want 1 (metaclass corroborates the same entry)", len(r.Classes))
	}
	if r.Classes[0].Name != "Foo" || !r.Classes[0].IsMetaclass {
		t.Fatalf("class entry = %+v, want Name=Foo IsMetaclass=true", r.Classes[0])
	}
}

func TestScan_CategoryKeyedByClassAndCategoryPair(t *testing.T) {
	data := []byte("_OBJC_CATEGORY_$_Foo_$_Networking\x00_OBJC_CATEGORY_$_Bar_$_Networking\x00")
	r := Scan(data, Options{})
	if len(r.Categories) != 2 {
		t.Fatalf("got %d categories, want 2 (same category name, different classes)", len(r.Categories))
	}
}

func TestScan_DuplicateClassSymbolDeduplicates(t *testing.T) {
	data := []byte("_OBJC_CLASS_$_Foo\x00_OBJC_CLASS_$_Foo\x00_OBJC_CLASS_$_Foo\x00")
	r := Scan(data, Options{})
	if len(r.Classes) != 1 {
		t.Fatalf("got %d classes, want 1 after dedup", len(r.Classes))
	}
}

func TestScan_IvarAttachesToClassCreatingItIfMissing(t *testing.T) {
	data := []byte("_OBJC_IVAR_$_Foo.count\x00")
	r := Scan(data, Options{})
	c := r.findClass("Foo")
	if c == nil {
		t.Fatalf("ivar scan did not create class Foo")
	}
	if len(c.Ivars) != 1 || c.Ivars[0] != "count" {
		t.Fatalf("ivars = %v, want [count]", c.Ivars)
	}
}

func TestScan_BracketedInstanceAndClassMethods(t *testing.T) {
	data := []byte("-[Foo bar]+[Foo baz]")
	r := Scan(data, Options{})
	c := r.findClass("Foo")
	if c == nil {
		t.Fatalf("method scan did not create class Foo")
	}
	if len(c.InstanceMethods) != 1 || c.InstanceMethods[0] != "bar" {
		t.Fatalf("instance methods = %v, want [bar]", c.InstanceMethods)
	}
	if len(c.ClassMethods) != 1 || c.ClassMethods[0] != "baz" {
		t.Fatalf("class methods = %v, want [baz]", c.ClassMethods)
	}
}

func TestScan_BracketedMethodWithCategorySuffixGoesToCategory(t *testing.T) {
	data := []byte("-[Foo(Networking) fetch]")
	r := Scan(data, Options{})
	if len(r.Classes) != 0 {
		t.Fatalf("categorized method must not create a bare class entry, got %v", r.Classes)
	}
	cat := r.findCategory("Foo", "Networking")
	if cat == nil {
		t.Fatalf("method scan did not create category Foo(Networking)")
	}
	if len(cat.InstanceMethods) != 1 || cat.InstanceMethods[0] != "fetch" {
		t.Fatalf("category instance methods = %v, want [fetch]", cat.InstanceMethods)
	}
}

func TestScan_FallbackOffByDefaultProducesNothing(t *testing.T) {
	data := []byte("some init alloc release garbage with no objc symbols")
	r := Scan(data, Options{EnableFallback: false})
	if len(r.Classes) != 0 || r.UsedFallback {
		t.Fatalf("fallback fired despite EnableFallback=false: %+v", r)
	}
}

func TestScan_FallbackFiresOnlyWhenEnabledAndNothingFound(t *testing.T) {
	data := []byte("this binary calls init and alloc and release somewhere")
	r := Scan(data, Options{EnableFallback: true})
	if !r.UsedFallback {
		t.Fatalf("expected fallback to fire")
	}
	if len(r.Classes) != 1 || r.Classes[0].Name != "SampleClass" {
		t.Fatalf("fallback classes = %v, want [SampleClass]", r.Classes)
	}
	if len(r.Categories) != 1 || r.Categories[0].CategoryName != "SampleCategory" {
		t.Fatalf("fallback categories = %v, want SampleCategory", r.Categories)
	}
	if len(r.Protocols) != 1 || r.Protocols[0].Name != "SampleProtocol" {
		t.Fatalf("fallback protocols = %v, want SampleProtocol", r.Protocols)
	}
}

func TestScan_FallbackSkippedWhenRealEntitiesFound(t *testing.T) {
	data := []byte("_OBJC_CLASS_$_Foo\x00 also contains init and alloc")
	r := Scan(data, Options{EnableFallback: true})
	if r.UsedFallback {
		t.Fatalf("fallback must not fire when real entities were found")
	}
	if len(r.Classes) != 1 {
		t.Fatalf("got %d classes, want 1", len(r.Classes))
	}
}

func TestScan_SwiftNameDetection(t *testing.T) {
	data := []byte("_OBJC_CLASS_$__TtC7MyAppMySwiftClass\x00")
	r := Scan(data, Options{})
	c := r.findClass("_TtC7MyAppMySwiftClass")
	if c == nil || !c.IsSwift {
		t.Fatalf("expected Swift-mangled class to be flagged IsSwift")
	}
}

func TestScan_SwiftVersionCorroboratesWeakName(t *testing.T) {
	data := []byte("_OBJC_CLASS_$_SwiftUtils\x00")

	r := Scan(data, Options{})
	c := r.findClass("SwiftUtils")
	if c == nil || c.IsSwift {
		t.Fatalf("expected unconfirmed Swift-looking name to stay unmarked")
	}

	r = Scan(data, Options{SwiftVersion: "5"})
	c = r.findClass("SwiftUtils")
	if c == nil || !c.IsSwift {
		t.Fatalf("expected SwiftVersion corroboration to mark IsSwift")
	}
}

func TestBuildScopeBuffer_FalseWhenNoSectionsResolve(t *testing.T) {
	_, ok := BuildScopeBuffer(fakeProvider{})
	if ok {
		t.Fatalf("expected ok=false when provider has no matching sections")
	}
}

type fakeProvider struct{}

func (fakeProvider) Section(segment, name string) ([]byte, uint64, bool, bool) {
	return nil, 0, false, false
}
