package header

import (
	"strings"
	"testing"

	"github.com/machoscope/machoscope/runtime"
)

func TestGenerate_BannerAndImports(t *testing.T) {
	out := Generate("/tmp/binary", runtime.Result{})
	if !strings.HasPrefix(out, "//\n") {
		t.Fatalf("output does not start with comment banner: %q", out[:20])
	}
	if !strings.Contains(out, "#import <Foundation/Foundation.h>") {
		t.Fatalf("missing Foundation import")
	}
	if !strings.Contains(out, "#import <UIKit/UIKit.h>") {
		t.Fatalf("missing UIKit import")
	}
}

func TestGenerate_ClassWithIvarsAndMethods(t *testing.T) {
	result := runtime.Result{
		Classes: []runtime.Class{{
			Name:            "Foo",
			SuperclassName:  "NSObject",
			Ivars:           []string{"counter"},
			InstanceMethods: []string{"tick"},
		}},
	}
	out := Generate("/tmp/binary", result)
	if !strings.Contains(out, "@interface Foo : NSObject") {
		t.Fatalf("missing class interface line: %q", out)
	}
	if !strings.Contains(out, "id counter;") {
		t.Fatalf("missing ivar declaration: %q", out)
	}
	if !strings.Contains(out, "- (void)tick;") {
		t.Fatalf("missing instance method declaration: %q", out)
	}
	if !strings.Contains(out, "@end") {
		t.Fatalf("missing @end: %q", out)
	}
}

func TestGenerate_CategoryAndProtocol(t *testing.T) {
	result := runtime.Result{
		Categories: []runtime.Category{{ClassName: "Foo", CategoryName: "Networking", ClassMethods: []string{"shared"}}},
		Protocols:  []runtime.Protocol{{Name: "FooDelegate", Methods: []string{"didFinish"}}},
	}
	out := Generate("/tmp/binary", result)
	if !strings.Contains(out, "@interface Foo (Networking)") {
		t.Fatalf("missing category interface line: %q", out)
	}
	if !strings.Contains(out, "+ (void)shared;") {
		t.Fatalf("missing category class method: %q", out)
	}
	if !strings.Contains(out, "@protocol FooDelegate") {
		t.Fatalf("missing protocol declaration: %q", out)
	}
}
