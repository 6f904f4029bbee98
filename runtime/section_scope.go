package runtime

// SectionProvider is the narrow capability the section-scoped scan needs
// from a Mach-O collaborator: read a named section's raw bytes, or report
// that it is absent. Satisfied by *macho.Collaborator.
type SectionProvider interface {
	Section(segment, name string) (data []byte, addr uint64, bigEndian bool, ok bool)
}

// scopedSections lists the sections known to carry the strings and symbol
// stubs the scanner looks for. Restricting the scan to these when they
// resolve keeps the scan fast and avoids false matches in unrelated data
// segments of a large binary.
var scopedSections = [][2]string{
	{"__TEXT", "__cstring"},
	{"__DATA", "__objc_classlist"},
	{"__DATA", "__objc_catlist"},
	{"__DATA", "__objc_protolist"},
	{"__DATA_CONST", "__objc_classlist"},
	{"__DATA_CONST", "__objc_catlist"},
	{"__DATA_CONST", "__objc_protolist"},
	{"__TEXT", "__text"},
}

// BuildScopeBuffer concatenates the bytes of every resolvable section in
// scopedSections. If none resolve, ok is false and callers should fall
// back to scanning the whole file.
func BuildScopeBuffer(p SectionProvider) (buf []byte, ok bool) {
	found := false
	for _, sn := range scopedSections {
		data, _, _, present := p.Section(sn[0], sn[1])
		if !present || len(data) == 0 {
			continue
		}
		found = true
		buf = append(buf, data...)
		buf = append(buf, 0) // separator: prevents two sections' bytes from fusing into one false symbol
	}
	return buf, found
}
