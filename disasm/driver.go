package disasm

import (
	"encoding/binary"
	"fmt"
)

// CodeSection is the minimal view of a Mach-O section the driver needs: its
// raw bytes and its base virtual address. Built by the macho package's
// collaborator (component G); kept narrow here so disasm has no import-time
// dependency on a Mach-O parsing library.
type CodeSection struct {
	Name      string
	Bytes     []byte
	BaseAddr  uint32
	BigEndian bool
}

// Driver iterates a CodeSection, invoking the per-architecture decoder and
// growing an append-only instruction vector. Created once per analysis;
// mutated only by Run/RunRange.
type Driver struct {
	Arch        Arch
	Context     *Context
	section     CodeSection
	Instructions []Instruction
}

// NewDriver builds a Driver over the given section for the given
// architecture. ctx supplies the heuristic flags consulted by the decoder;
// a nil ctx is replaced with DefaultContext().
func NewDriver(arch Arch, section CodeSection, ctx *Context) *Driver {
	if ctx == nil {
		ctx = DefaultContext()
	}
	return &Driver{Arch: arch, Context: ctx, section: section}
}

// Run decodes the entire section sequentially, appending every record to
// d.Instructions in address order.
func (d *Driver) Run() {
	d.RunRange(d.section.BaseAddr, d.section.BaseAddr+uint32(len(d.section.Bytes)))
}

// RunRange decodes only the sub-range [startVA, endVA) of the section,
// appending records to d.Instructions.
func (d *Driver) RunRange(startVA, endVA uint32) {
	if startVA < d.section.BaseAddr {
		startVA = d.section.BaseAddr
	}
	sectionEnd := d.section.BaseAddr + uint32(len(d.section.Bytes))
	if endVA > sectionEnd {
		endVA = sectionEnd
	}

	offset := int(startVA - d.section.BaseAddr)
	limit := int(endVA - d.section.BaseAddr)

	switch d.Arch {
	case ArchAArch64:
		for offset+4 <= limit {
			word := d.readWord(offset)
			addr := d.section.BaseAddr + uint32(offset)
			inst := DecodeAArch64(word, addr, d.Context)
			d.Instructions = append(d.Instructions, inst)
			offset += 4
		}
	case ArchX86_64:
		for offset < limit {
			addr := d.section.BaseAddr + uint32(offset)
			inst := DecodeX86_64(d.section.Bytes[offset:limit], addr, d.Context)
			if inst.Length == 0 {
				break
			}
			d.Instructions = append(d.Instructions, inst)
			offset += inst.Length
		}
	}
}

func (d *Driver) readWord(offset int) uint32 {
	b := d.section.Bytes[offset : offset+4]
	if d.section.BigEndian {
		return binary.BigEndian.Uint32(b)
	}
	return binary.LittleEndian.Uint32(b)
}

// FunctionCount returns the number of records flagged IsFunctionStart.
func (d *Driver) FunctionCount() int {
	n := 0
	for _, inst := range d.Instructions {
		if inst.IsFunctionStart {
			n++
		}
	}
	return n
}

// Lookup finds the record at the given address by linear scan, preserving
// the driver's documented contract that the main vector stays in insertion
// (address) order.
func (d *Driver) Lookup(addr uint32) (Instruction, bool) {
	for _, inst := range d.Instructions {
		if inst.Address == addr {
			return inst, true
		}
	}
	return Instruction{}, false
}

// LoadSection copies a named section's raw bytes out of a Mach-O section
// provider (see macho.Collaborator) into an owned CodeSection. Returns an
// error only when the section cannot be found, per the base spec's
// Code-Loader contract.
func LoadSection(finder SectionFinder, segment, name string) (CodeSection, error) {
	data, addr, bigEndian, ok := finder.Section(segment, name)
	if !ok {
		return CodeSection{}, fmt.Errorf("disasm: section %s,%s not found", segment, name)
	}
	return CodeSection{
		Name:      name,
		Bytes:     append([]byte(nil), data...),
		BaseAddr:  uint32(addr),
		BigEndian: bigEndian,
	}, nil
}

// SectionFinder is the narrow capability the Code Loader needs from a
// Mach-O collaborator: look up a section's raw bytes, base VA, and
// byte-swap need by segment+name.
type SectionFinder interface {
	Section(segment, name string) (data []byte, addr uint64, bigEndian bool, ok bool)
}
