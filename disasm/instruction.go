// Package disasm decodes AArch64 and x86-64 machine code into a flat,
// fully-addressable Instruction record and drives sequential decoding of a
// loaded code section.
package disasm

import "fmt"

// Category classifies an Instruction by the kind of work it does.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryDataProcessing
	CategoryLoadStore
	CategoryBranch
	CategorySystem
	CategorySIMD
)

func (c Category) String() string {
	switch c {
	case CategoryDataProcessing:
		return "data-processing"
	case CategoryLoadStore:
		return "load-store"
	case CategoryBranch:
		return "branch"
	case CategorySystem:
		return "system"
	case CategorySIMD:
		return "SIMD"
	default:
		return "unknown"
	}
}

// BranchType narrows Category == CategoryBranch to a control-transfer kind.
type BranchType int

const (
	BranchNone BranchType = iota
	BranchCall
	BranchUnconditional
	BranchConditional
	BranchReturn
)

func (b BranchType) String() string {
	switch b {
	case BranchCall:
		return "call"
	case BranchUnconditional:
		return "unconditional"
	case BranchConditional:
		return "conditional"
	case BranchReturn:
		return "return"
	default:
		return "none"
	}
}

// Arch names the instruction set an Instruction was decoded under.
type Arch int

const (
	ArchUnknown Arch = iota
	ArchAArch64
	ArchX86_64
)

func (a Arch) String() string {
	switch a {
	case ArchAArch64:
		return "arm64"
	case ArchX86_64:
		return "x86_64"
	default:
		return "unknown"
	}
}

// Register index space: 0-30 are the AArch64 general registers (30 doubles
// as the link register by convention), 31 is context-dependent SP or XZR.
const (
	RegLR = 30
	RegSP = 31
)

// RegMask is a 64-bit bitmask over the 0-31 register index space.
type RegMask uint64

// Set returns a copy of m with bit n set. Indices outside 0-31 are ignored,
// matching the base spec's "never fail on a malformed instruction" policy.
func (m RegMask) Set(n uint8) RegMask {
	if n > 31 {
		return m
	}
	return m | (1 << n)
}

// Has reports whether bit n is set.
func (m RegMask) Has(n uint8) bool {
	if n > 31 {
		return false
	}
	return m&(1<<n) != 0
}

// Flags is the NZCV condition-flag nibble: bit 3 = N, bit 2 = Z, bit 1 = C, bit 0 = V.
type Flags uint8

const FlagsNZCV Flags = 0xF

// Instruction is the single record type produced by every decoder, AArch64
// or x86-64. Fields meaningless for a given instruction are left at their
// zero value rather than split into a tagged variant, matching the
// teacher's own flat vm.Instruction/Type-discriminant shape.
type Instruction struct {
	Address uint32
	Arch    Arch

	RawBytes []byte
	Length   int

	Mnemonic   string
	Operands   string
	FullDisasm string

	Category Category

	HasBranch       bool
	BranchType      BranchType
	HasBranchTarget bool
	BranchTarget    uint32
	BranchOffset    int32

	UpdatesPC bool

	RegsRead    RegMask
	RegsWritten RegMask

	FlagsWritten Flags

	IsFunctionStart bool
	IsFunctionEnd   bool

	IsValid bool
}

// compose fills FullDisasm from the current Address/Mnemonic/Operands. Every
// decode path must call this as its last step before returning.
func (i *Instruction) compose() {
	if i.Operands == "" {
		i.FullDisasm = fmt.Sprintf("%#x: %s", i.Address, i.Mnemonic)
		return
	}
	i.FullDisasm = fmt.Sprintf("%#x: %s %s", i.Address, i.Mnemonic, i.Operands)
}
