// Package typeinfo classifies symbol-table entries into a coarse type
// category with a confidence score and a placeholder size estimate.
// Grounded on original_source/ReDyne/Models/TypeAnalyzerC.{c,h}:
// c_type_category_t becomes Category, c_reconstructed_type_t becomes
// ReconstructedType, and c_confidence_for_symbol / the three
// c_estimate_*_size helpers are carried over as literal constants — the
// spec calls these numbers placeholders that must stay bit-compatible
// with existing callers, so they are not "improved" here.
package typeinfo

import "strings"

// Category is the coarse type classification assigned to a symbol name.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryClass
	CategoryStruct
	CategoryEnum
	CategoryProtocol
)

func (c Category) String() string {
	switch c {
	case CategoryClass:
		return "class"
	case CategoryStruct:
		return "struct"
	case CategoryEnum:
		return "enum"
	case CategoryProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// ReconstructedType is one classified symbol-table entry.
type ReconstructedType struct {
	Name       string
	Address    uint64
	Size       uint32
	Category   Category
	Confidence float64
}

// Classify decides a symbol's Category, Confidence, and estimated Size
// from its name alone. Pattern precedence matches TypeAnalyzerC.c: class
// tests run first, then struct, then enum, then protocol; a name matching
// none of them is CategoryUnknown at confidence 0.6.
func Classify(name string, addr uint64) ReconstructedType {
	rt := ReconstructedType{Name: name, Address: addr}

	switch {
	case strings.Contains(name, "_OBJC_CLASS_$_") || strings.Contains(name, "objc_class"):
		rt.Category = CategoryClass
		rt.Confidence = 0.9
	case strings.Contains(name, "_TtC"):
		rt.Category = CategoryClass
		rt.Confidence = 0.85
	case strings.Contains(name, "struct") || strings.Contains(name, "Struct") || strings.Contains(name, "_struct_"):
		rt.Category = CategoryStruct
		rt.Confidence = 0.75
	case strings.Contains(name, "enum") || strings.Contains(name, "Enum") || strings.Contains(name, "_enum_"):
		rt.Category = CategoryEnum
		rt.Confidence = 0.75
	case strings.Contains(name, "protocol") || strings.Contains(name, "Protocol") || strings.Contains(name, "_protocol_"):
		rt.Category = CategoryProtocol
		rt.Confidence = 0.7
	default:
		rt.Category = CategoryUnknown
		rt.Confidence = 0.6
	}

	rt.Size = estimateSize(name, rt.Category)
	return rt
}

// estimateSize is a name-heuristic placeholder, not a real layout
// computation — preserved verbatim from TypeAnalyzerC.c's
// c_estimate_class_size / c_estimate_struct_size / c_estimate_enum_size.
func estimateSize(name string, category Category) uint32 {
	switch {
	case strings.Contains(name, "View") || strings.Contains(name, "Controller"):
		return 200
	case strings.Contains(name, "Point") || strings.Contains(name, "Size"):
		return 16
	case strings.Contains(name, "Rect"):
		return 32
	}
	switch category {
	case CategoryClass:
		return 24
	case CategoryStruct:
		return 64
	case CategoryEnum:
		return 4
	default:
		return 24
	}
}

// ClassifyAll classifies every (name, address) pair from the symbol table
// in order, preserving symbol-table order in the returned slice.
func ClassifyAll(symbols []Symbol) []ReconstructedType {
	out := make([]ReconstructedType, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, Classify(s.Name, s.Address))
	}
	return out
}

// Symbol is the narrow (name, address) shape ClassifyAll consumes —
// satisfied directly by macho.Symbol without an import-time dependency
// on the macho package.
type Symbol struct {
	Name    string
	Address uint64
}
