// Package header renders the runtime scanner's discovered classes,
// categories, and protocols as a pseudo Objective-C header: the output
// format ClassDumpC.c's class_dump_generate_header family produces,
// reproduced byte-for-byte down to the banner, import lines, and the
// "[ClassDumpC]" log prefix external tooling may grep for.
package header

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/machoscope/machoscope/runtime"
)

// classDumpLog preserves the original tool's "[ClassDumpC]" log prefix
// verbatim so external scripts that grep for it keep working.
var classDumpLog = log.New(os.Stdout, "[ClassDumpC] ", 0)

// Generate renders the full pseudo header document for binaryPath's
// scan result: banner, imports, classes, categories, protocols in that
// order. Property and method types default to id/void since real types
// are not extracted by the runtime scanner.
func Generate(binaryPath string, result runtime.Result) string {
	var b strings.Builder

	b.WriteString("//\n")
	b.WriteString("//  Generated by machoscope class dump\n")
	b.WriteString("//  Binary: ")
	b.WriteString(binaryPath)
	b.WriteString("\n")
	b.WriteString("//\n\n")
	b.WriteString("#import <Foundation/Foundation.h>\n")
	b.WriteString("#import <UIKit/UIKit.h>\n\n")

	for _, c := range result.Classes {
		b.WriteString(classHeader(c))
	}
	for _, c := range result.Categories {
		b.WriteString(categoryHeader(c))
	}
	for _, p := range result.Protocols {
		b.WriteString(protocolHeader(p))
	}

	classDumpLog.Print("Header generated successfully")
	return b.String()
}

func classHeader(c runtime.Class) string {
	var b strings.Builder
	b.WriteString("@interface ")
	b.WriteString(c.Name)
	if c.SuperclassName != "" {
		b.WriteString(" : ")
		b.WriteString(c.SuperclassName)
	}
	if len(c.Protocols) > 0 {
		b.WriteString(" <")
		b.WriteString(strings.Join(c.Protocols, ", "))
		b.WriteString(">")
	}
	b.WriteString("\n")

	if len(c.Ivars) > 0 {
		b.WriteString("{\n")
		for _, ivar := range c.Ivars {
			fmt.Fprintf(&b, "    id %s;\n", ivar)
		}
		b.WriteString("}\n")
	}

	for _, m := range c.InstanceMethods {
		fmt.Fprintf(&b, "- (void)%s;\n", m)
	}
	for _, m := range c.ClassMethods {
		fmt.Fprintf(&b, "+ (void)%s;\n", m)
	}

	b.WriteString("@end\n\n")
	return b.String()
}

func categoryHeader(c runtime.Category) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@interface %s (%s)\n", c.ClassName, c.CategoryName)
	for _, m := range c.InstanceMethods {
		fmt.Fprintf(&b, "- (void)%s;\n", m)
	}
	for _, m := range c.ClassMethods {
		fmt.Fprintf(&b, "+ (void)%s;\n", m)
	}
	b.WriteString("@end\n\n")
	return b.String()
}

func protocolHeader(p runtime.Protocol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@protocol %s\n", p.Name)
	for _, m := range p.Methods {
		fmt.Fprintf(&b, "- (void)%s;\n", m)
	}
	b.WriteString("@end\n\n")
	return b.String()
}
