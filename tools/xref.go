// Cross-reference builder (component I): turns a decoded instruction
// vector into an address-keyed index of who branches to, calls, loads
// from, or takes the address of where. Adapted from the teacher's xref.go, which built the same kind of
// index over assembly-source symbol definitions and uses; here the index
// keys are addresses in a decoded Mach-O image instead of source labels.
package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/machoscope/machoscope/disasm"
)

// ReferenceKind says how one instruction refers to another address.
type ReferenceKind int

const (
	RefBranch ReferenceKind = iota
	RefCall
	RefLoad
	RefStore
	RefData
)

func (k ReferenceKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefCall:
		return "call"
	case RefLoad:
		return "load"
	case RefStore:
		return "store"
	case RefData:
		return "data"
	default:
		return "unknown"
	}
}

// Reference is one instruction's reference to a target address.
type Reference struct {
	Kind ReferenceKind
	From uint32
	To   uint32
}

// XRefIndex answers "who refers here" / "what does this refer to"
// queries over a decoded instruction vector.
type XRefIndex struct {
	to   map[uint32][]Reference // target address -> incoming references
	from map[uint32][]Reference // source address -> outgoing references
}

// BuildXRefIndex walks instructions once, recording a Reference for every
// record with HasBranchTarget set. Method-symbol correlation (resolving a
// BL's target against a bracketed-method symbol address) is the caller's
// job once it has both a disasm vector and a symbol table; this index
// only needs the vector.
func BuildXRefIndex(instructions []disasm.Instruction) *XRefIndex {
	idx := &XRefIndex{
		to:   make(map[uint32][]Reference),
		from: make(map[uint32][]Reference),
	}
	for _, inst := range instructions {
		if !inst.HasBranchTarget {
			continue
		}
		kind := RefBranch
		switch {
		case inst.BranchType == disasm.BranchCall:
			kind = RefCall
		case !inst.HasBranch && inst.Category == disasm.CategoryLoadStore:
			kind = RefLoad // LDR (literal)
		case !inst.HasBranch:
			kind = RefData // ADR/ADRP
		}
		ref := Reference{Kind: kind, From: inst.Address, To: inst.BranchTarget}
		idx.to[ref.To] = append(idx.to[ref.To], ref)
		idx.from[ref.From] = append(idx.from[ref.From], ref)
	}
	return idx
}

// ReferencesTo returns every reference whose target is addr, in the
// order they were encountered in the instruction vector.
func (x *XRefIndex) ReferencesTo(addr uint32) []Reference {
	return x.to[addr]
}

// ReferencesFrom returns every reference originating at addr.
func (x *XRefIndex) ReferencesFrom(addr uint32) []Reference {
	return x.from[addr]
}

// CountInRange reports how many incoming references land on any address
// in [start, end).
func (x *XRefIndex) CountInRange(start, end uint32) int {
	n := 0
	for addr, refs := range x.to {
		if addr >= start && addr < end {
			n += len(refs)
		}
	}
	return n
}

// Targets returns every distinct address that has at least one incoming
// reference, sorted ascending.
func (x *XRefIndex) Targets() []uint32 {
	out := make([]uint32, 0, len(x.to))
	for addr := range x.to {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Report renders a text summary of every target with incoming
// references, most-referenced first.
func (x *XRefIndex) Report() string {
	var b strings.Builder
	b.WriteString("Cross-Reference Report\n")
	b.WriteString("=======================\n\n")

	targets := x.Targets()
	sort.Slice(targets, func(i, j int) bool {
		return len(x.to[targets[i]]) > len(x.to[targets[j]])
	})

	for _, addr := range targets {
		refs := x.to[addr]
		fmt.Fprintf(&b, "%#08x: %d reference(s)\n", addr, len(refs))
		for _, ref := range refs {
			fmt.Fprintf(&b, "    %-8s from %#08x\n", ref.Kind, ref.From)
		}
	}
	return b.String()
}
