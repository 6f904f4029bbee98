package typeinfo

import "testing"

func TestClassify_ObjCClassPrefixHighConfidence(t *testing.T) {
	rt := Classify("_OBJC_CLASS_$_MyViewController", 0x1000)
	if rt.Category != CategoryClass {
		t.Fatalf("category = %v, want class", rt.Category)
	}
	if rt.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", rt.Confidence)
	}
	if rt.Size != 200 {
		t.Fatalf("size = %d, want 200 (View/Controller heuristic)", rt.Size)
	}
}

func TestClassify_SwiftManglingLowerConfidence(t *testing.T) {
	rt := Classify("_TtC7MyAppMyClass", 0)
	if rt.Category != CategoryClass || rt.Confidence != 0.85 {
		t.Fatalf("got %v/%v, want class/0.85", rt.Category, rt.Confidence)
	}
}

func TestClassify_StructAndEnum(t *testing.T) {
	if rt := Classify("MyStruct", 0); rt.Category != CategoryStruct || rt.Confidence != 0.75 {
		t.Fatalf("struct: got %v/%v", rt.Category, rt.Confidence)
	}
	if rt := Classify("MyEnum", 0); rt.Category != CategoryEnum || rt.Confidence != 0.75 {
		t.Fatalf("enum: got %v/%v", rt.Category, rt.Confidence)
	}
}

func TestClassify_ProtocolLowestClassifiedConfidence(t *testing.T) {
	rt := Classify("SomeProtocol", 0)
	if rt.Category != CategoryProtocol || rt.Confidence != 0.7 {
		t.Fatalf("got %v/%v, want protocol/0.7", rt.Category, rt.Confidence)
	}
}

func TestClassify_UnknownFallback(t *testing.T) {
	rt := Classify("nothing_special", 0)
	if rt.Category != CategoryUnknown || rt.Confidence != 0.6 {
		t.Fatalf("got %v/%v, want unknown/0.6", rt.Category, rt.Confidence)
	}
	if rt.Size != 24 {
		t.Fatalf("size = %d, want default 24 for unknown", rt.Size)
	}
}

func TestClassify_SizeHeuristics(t *testing.T) {
	cases := []struct {
		name string
		want uint32
	}{
		{"CGPoint", 16},
		{"CGSize", 16},
		{"CGRect", 32},
		{"MyStruct", 64},
		{"MyEnum", 4},
	}
	for _, c := range cases {
		if rt := Classify(c.name, 0); rt.Size != c.want {
			t.Fatalf("Classify(%q).Size = %d, want %d", c.name, rt.Size, c.want)
		}
	}
}

func TestClassifyAll_PreservesOrder(t *testing.T) {
	syms := []Symbol{
		{Name: "_OBJC_CLASS_$_Foo", Address: 1},
		{Name: "MyStruct", Address: 2},
		{Name: "nothing_special", Address: 3},
	}
	out := ClassifyAll(syms)
	if len(out) != 3 || out[0].Name != "_OBJC_CLASS_$_Foo" || out[2].Name != "nothing_special" {
		t.Fatalf("order not preserved: %+v", out)
	}
}
