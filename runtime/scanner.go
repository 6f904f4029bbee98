package runtime

import (
	"log"
	"os"
	"strings"
)

// classDumpLog preserves the original tool's "[ClassDumpC]" log prefix
// verbatim so external scripts that grep for it keep working.
var classDumpLog = log.New(os.Stdout, "[ClassDumpC] ", 0)

// Options controls the optional, off-by-default behaviors of Scan.
type Options struct {
	// EnableFallback allows the sample-entity fallback to fire when the
	// typed-prefix, ivar, and bracketed-method passes together find zero
	// classes, categories, and protocols.
	EnableFallback bool

	// SwiftVersion is the Swift ABI version string read from the image's
	// __objc_imageinfo section (Collaborator.SwiftVersion), or "" if the
	// image carries no Swift metadata. When non-empty, it corroborates
	// classes whose name only weakly suggests Swift (see
	// looksSwiftByConvention) that the strong name-mangling check alone
	// would leave unmarked.
	SwiftVersion string
}

const (
	classPrefix      = "_OBJC_CLASS_$_"
	metaclassPrefix  = "_OBJC_METACLASS_$_"
	categoryPrefix   = "_OBJC_CATEGORY_$_"
	protocolPrefix   = "_OBJC_PROTOCOL_$_"
	ivarPrefix       = "_OBJC_IVAR_$_"
	maxSymbolNameLen = 255
	maxMethodNameLen = 200
)

// Scan runs the full three-pass scan (plus optional fallback) over data,
// which is either an entire Mach-O image or the concatenation of its
// Objective-C-relevant sections (__TEXT,__cstring, __TEXT,__text and the
// __objc_* lists).
// Scan never fails: unmatched or malformed regions are simply skipped.
func Scan(data []byte, opts Options) Result {
	classDumpLog.Printf("Starting class dump analysis (%d bytes)", len(data))

	var r Result

	scanTypedPrefixes(data, &r)
	scanIvars(data, &r)
	scanMethods(data, &r)

	if opts.SwiftVersion != "" {
		confirmSwiftByConvention(&r)
	}

	if len(r.Classes) == 0 && len(r.Categories) == 0 && len(r.Protocols) == 0 {
		classDumpLog.Print("No ObjC structures found in symbols, trying string analysis...")
		if opts.EnableFallback && scanFallbackStrings(data) {
			r.addClass("SampleClass")
			r.addCategory("NSObject", "SampleCategory")
			r.addProtocol("SampleProtocol")
			r.UsedFallback = true
		}
	}

	classDumpLog.Printf("Class dump complete: %d classes, %d categories, %d protocols",
		len(r.Classes), len(r.Categories), len(r.Protocols))
	return r
}

// scanTypedPrefixes finds every occurrence of the four ObjC runtime symbol
// prefixes and extracts the NUL/newline-terminated name that follows.
// Mirrors ClassDumpC's analyze_classes/analyze_categories/analyze_protocols,
// collapsed into a single byte-scan pass since the prefixes are disjoint.
func scanTypedPrefixes(data []byte, r *Result) {
	for i := 0; i < len(data); i++ {
		switch {
		case hasPrefixAt(data, i, metaclassPrefix):
			name := extractName(data, i+len(metaclassPrefix))
			if name != "" {
				c := r.addClass(name)
				c.IsMetaclass = true
			}
		case hasPrefixAt(data, i, classPrefix):
			name := extractName(data, i+len(classPrefix))
			if name != "" {
				r.addClass(name)
			}
		case hasPrefixAt(data, i, categoryPrefix):
			raw := extractName(data, i+len(categoryPrefix))
			if raw != "" {
				className, categoryName := splitCategory(raw)
				if categoryName != "" {
					if className == "" {
						className = "NSObject"
					}
					r.addCategory(className, categoryName)
				}
			}
		case hasPrefixAt(data, i, protocolPrefix):
			name := extractName(data, i+len(protocolPrefix))
			if name != "" {
				r.addProtocol(name)
			}
		}
	}
}

// scanIvars finds "_OBJC_IVAR_$_<Class>.<ivar>" symbols and attaches the
// ivar to its class, creating the class if it was not already discovered.
func scanIvars(data []byte, r *Result) {
	for i := 0; i < len(data); i++ {
		if !hasPrefixAt(data, i, ivarPrefix) {
			continue
		}
		full := extractName(data, i+len(ivarPrefix))
		if full == "" {
			continue
		}
		dot := strings.IndexByte(full, '.')
		if dot <= 0 || dot == len(full)-1 {
			continue
		}
		className, ivarName := full[:dot], full[dot+1:]
		c := r.addClass(className)
		c.Ivars = addUnique(c.Ivars, ivarName)
	}
}

// scanMethods finds bracketed method signatures of the form "-[Class
// method]" or "+[Class method]", splitting off an optional "(Category)"
// suffix on the class part. Mirrors ClassDumpC's class_dump_scan_methods,
// including its 200-byte bound on how far it looks for the closing ']'.
func scanMethods(data []byte, r *Result) {
	for i := 0; i+2 < len(data); i++ {
		c := data[i]
		if (c != '-' && c != '+') || data[i+1] != '[' {
			continue
		}
		start := i + 2
		remaining := len(data) - start
		limit := remaining
		if limit > maxMethodNameLen {
			limit = maxMethodNameLen
		}
		end := indexByte(data[start:start+limit], ']')
		if end < 0 {
			continue
		}
		content := string(data[start : start+end])
		if content == "" {
			continue
		}

		space := strings.IndexByte(content, ' ')
		if space < 0 || space == len(content)-1 {
			continue
		}
		classPart, methodPart := content[:space], content[space+1:]

		className, categoryName := classPart, ""
		if open := strings.IndexByte(classPart, '('); open >= 0 {
			if closeParen := strings.IndexByte(classPart[open:], ')'); closeParen > 0 {
				categoryName = classPart[open+1 : open+closeParen]
				className = classPart[:open]
			}
		}
		if className == "" {
			continue
		}

		isClassMethod := c == '+'
		if categoryName != "" {
			cat := r.addCategory(className, categoryName)
			cat.addMethod(methodPart, isClassMethod)
		} else {
			cls := r.addClass(className)
			cls.addMethod(methodPart, isClassMethod)
		}
	}
}

// fallbackSelectors is the small allow-list of common ObjC selector
// fragments ClassDumpC's analyze_strings_for_objc looks for before
// synthesizing sample entities. A real binary linked against the
// Objective-C runtime will contain at least one of these even if no
// _OBJC_* symbols survived stripping.
var fallbackSelectors = []string{
	"init", "dealloc", "alloc", "retain", "release",
	"autorelease", "copy", "mutableCopy", "description", "debugDescription",
}

func scanFallbackStrings(data []byte) bool {
	haystack := string(data)
	for _, sel := range fallbackSelectors {
		if strings.Contains(haystack, sel) {
			return true
		}
	}
	return false
}

func hasPrefixAt(data []byte, i int, prefix string) bool {
	if i+len(prefix) > len(data) {
		return false
	}
	return string(data[i:i+len(prefix)]) == prefix
}

// extractName copies the printable name starting at offset, stopping at
// NUL, newline, carriage return, or maxSymbolNameLen bytes.
func extractName(data []byte, offset int) string {
	if offset >= len(data) {
		return ""
	}
	n := 0
	for offset+n < len(data) && n < maxSymbolNameLen {
		b := data[offset+n]
		if b == 0 || b == '\n' || b == '\r' {
			break
		}
		n++
	}
	return string(data[offset : offset+n])
}

// splitCategory splits a raw "_OBJC_CATEGORY_$_" payload of the form
// "Class_$_Category" into its two parts. A payload with no "_$_" separator
// is treated as a bare category name with no resolvable class.
func splitCategory(raw string) (className, categoryName string) {
	if idx := strings.Index(raw, "_$_"); idx >= 0 {
		return raw[:idx], raw[idx+3:]
	}
	return "", raw
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// isSwiftMangled reports whether a class name carries one of the Swift
// compiler's own name-mangling prefixes. Unlike looksSwiftByConvention,
// this is strong enough evidence to trust unconditionally.
func isSwiftMangled(name string) bool {
	return strings.Contains(name, "_TtC") ||
		strings.Contains(name, "_Tt") ||
		strings.HasPrefix(name, "$s") ||
		strings.HasPrefix(name, "$S")
}

// looksSwiftByConvention reports whether a class name merely contains the
// word "Swift" - too weak to trust on its own (a hand-written ObjC class
// could be named "SwiftUtils"), but worth acting on once Scan's caller
// confirms via Options.SwiftVersion that the image actually links Swift.
func looksSwiftByConvention(name string) bool {
	return strings.Contains(name, "Swift")
}

// confirmSwiftByConvention upgrades IsSwift for classes that
// looksSwiftByConvention but weren't already caught by isSwiftMangled, now
// that the image-info section has confirmed the binary carries Swift
// metadata.
func confirmSwiftByConvention(r *Result) {
	for i := range r.Classes {
		if !r.Classes[i].IsSwift && looksSwiftByConvention(r.Classes[i].Name) {
			r.Classes[i].IsSwift = true
		}
	}
}
