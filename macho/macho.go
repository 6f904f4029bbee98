// Package macho wraps github.com/blacktop/go-macho behind the narrow
// surface the rest of the module needs: architecture identification,
// section lookup and raw reads, and symbol-table iteration. The base spec
// treats Mach-O parsing as an external collaborator rather than something
// to hand-roll, so this package is a thin adapter, not a parser.
package macho

import (
	"encoding/binary"
	"fmt"

	gomacho "github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"
	"github.com/blacktop/go-macho/types/objc"
)

// Arch names the CPU architecture of an opened Mach-O image.
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

// Symbol is a single (name, address) pair out of the symbol table.
type Symbol struct {
	Name    string
	Address uint64
}

// Section describes one Mach-O section: its owning segment, name, base
// virtual address, and size. Byte contents are fetched on demand via
// Collaborator.Section to avoid holding every section's bytes in memory at
// once for binaries with many large segments.
type Section struct {
	Segment string
	Name    string
	Addr    uint64
	Size    uint64
}

// Collaborator is the adapter around a single opened Mach-O image. For a
// fat binary, see Open for how the parsed slice is chosen.
type Collaborator struct {
	file      *gomacho.File
	arch      Arch
	bigEndian bool
	path      string
}

// ErrNoMatchingSlice reports that a fat binary was opened but none of its
// architecture slices matched the caller's requested architecture. Callers
// that want to degrade-and-report instead of aborting (loader.Analyze)
// check for this with errors.As.
type ErrNoMatchingSlice struct {
	Requested Arch
}

func (e *ErrNoMatchingSlice) Error() string {
	return fmt.Sprintf("macho: no fat slice matches architecture %s", e.Requested)
}

// Open parses the Mach-O (or fat binary) at path. For a fat binary it
// checks that some slice matches wantArch (any slice when wantArch is
// ArchUnknown) and returns ErrNoMatchingSlice if none does; it then opens
// path with gomacho.Open, so the slice parsed is go-macho's default, not
// necessarily the one that matched.
func Open(path string, wantArch Arch) (*Collaborator, error) {
	fat, err := gomacho.OpenFat(path)
	if err == nil {
		defer fat.Close()
		for _, a := range fat.Arches {
			if archFromCPU(a.CPU) == wantArch || wantArch == ArchUnknown {
				f, ferr := gomacho.Open(path)
				if ferr != nil {
					return nil, fmt.Errorf("macho: open fat slice: %w", ferr)
				}
				return newCollaborator(f, path), nil
			}
		}
		return nil, &ErrNoMatchingSlice{Requested: wantArch}
	}

	f, ferr := gomacho.Open(path)
	if ferr != nil {
		return nil, fmt.Errorf("macho: open %s: %w", path, ferr)
	}
	return newCollaborator(f, path), nil
}

func newCollaborator(f *gomacho.File, path string) *Collaborator {
	return &Collaborator{
		file:      f,
		arch:      archFromCPU(f.CPU),
		bigEndian: f.ByteOrder != nil && f.ByteOrder.String() == "BigEndian",
		path:      path,
	}
}

func archFromCPU(cpu types.CPU) Arch {
	switch cpu {
	case types.CPUArm64:
		return ArchAArch64
	case types.CPUAmd64:
		return ArchX86_64
	default:
		return ArchUnknown
	}
}

// Close releases the underlying file handle.
func (c *Collaborator) Close() error {
	return c.file.Close()
}

// Architecture reports the CPU architecture of the opened slice.
func (c *Collaborator) Architecture() Arch {
	return c.arch
}

// BigEndian reports whether words in this image need byte-swapping.
func (c *Collaborator) BigEndian() bool {
	return c.bigEndian
}

// Sections returns every section across every segment.
func (c *Collaborator) Sections() []Section {
	var out []Section
	for _, s := range c.file.Sections {
		out = append(out, Section{
			Segment: s.Seg,
			Name:    s.Name,
			Addr:    s.Addr,
			Size:    s.Size,
		})
	}
	return out
}

// Section implements disasm.SectionFinder: it looks up a section by
// segment+name and returns its raw bytes, base VA, and byte-swap need.
func (c *Collaborator) Section(segment, name string) (data []byte, addr uint64, bigEndian bool, ok bool) {
	for _, s := range c.file.Sections {
		if s.Seg == segment && s.Name == name {
			raw, err := s.Data()
			if err != nil {
				return nil, 0, false, false
			}
			return raw, s.Addr, c.bigEndian, true
		}
	}
	return nil, 0, false, false
}

// FindSection reports whether a section exists, without reading its bytes.
// Used by the linter (§K); the runtime scanner's section-scoping reads
// bytes through Section instead.
func (c *Collaborator) FindSection(segment, name string) (Section, bool) {
	for _, s := range c.file.Sections {
		if s.Seg == segment && s.Name == name {
			return Section{Segment: s.Seg, Name: s.Name, Addr: s.Addr, Size: s.Size}, true
		}
	}
	return Section{}, false
}

// Symbols returns every (name, address) pair in the symbol table.
func (c *Collaborator) Symbols() []Symbol {
	if c.file.Symtab == nil {
		return nil
	}
	out := make([]Symbol, 0, len(c.file.Symtab.Syms))
	for _, s := range c.file.Symtab.Syms {
		out = append(out, Symbol{Name: s.Name, Address: s.Value})
	}
	return out
}

// CPUType reports the raw CPU type field from the Mach-O header, used by
// the linter (§K) to report unrecognized types without failing analysis.
func (c *Collaborator) CPUType() types.CPU {
	return c.file.CPU
}

// SwiftVersion reports the Swift ABI version string encoded in
// __DATA,__objc_imageinfo, or "" if the image carries no image-info
// section or no Swift metadata. Used to corroborate the runtime scanner's
// name-based is_swift heuristic.
func (c *Collaborator) SwiftVersion() string {
	data, _, _, ok := c.Section("__DATA", "__objc_imageinfo")
	if !ok {
		data, _, _, ok = c.Section("__DATA_CONST", "__objc_imageinfo")
	}
	if !ok || len(data) < 8 {
		return ""
	}
	order := binary.ByteOrder(binary.LittleEndian)
	if c.bigEndian {
		order = binary.BigEndian
	}
	flags := objc.ImageInfoFlag(order.Uint32(data[4:8]))
	return flags.SwiftVersion()
}
